package constants

import "time"

var DefaultPaths = struct {
	MembersFile  string
	TalentsFile  string
	ScheduleFile string
	ProfileDir   string
	ProfilesFile string
	BackupDir    string
}{
	MembersFile:  "data/members.json",
	TalentsFile:  "data/official_talents.json",
	ScheduleFile: "data/official_japanese_names.json",
	ProfileDir:   "data/official_profiles_ko",
	ProfilesFile: "data/official_profiles_ko.json",
	BackupDir:    "data/backups",
}

var SourceURLs = struct {
	Talents  string
	Schedule string
}{
	Talents:  "https://hololive.hololivepro.com/talents",
	Schedule: "https://schedule.hololive.tv/lives/hololive",
}

var ScraperConfig = struct {
	UserAgent   string
	Timeout     time.Duration
	MaxBodySize int64
}{
	UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	Timeout:     30 * time.Second,
	MaxBodySize: 10 << 20, // 10MB
}

var RetryConfig = struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration
}{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	Jitter:      250 * time.Millisecond,
}

var StoreConfig = struct {
	ProfileWorkers  int
	FileMode        uint32
	DirMode         uint32
	BackupTimestamp string
}{
	ProfileWorkers:  8,
	FileMode:        0o644,
	DirMode:         0o755,
	BackupTimestamp: "20060102-150405",
}

var DatabaseConfig = struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
	QueryTimeout    time.Duration
}{
	MaxOpenConns:    5,
	MaxIdleConns:    2,
	ConnMaxLifetime: 5 * time.Minute,
	PingTimeout:     5 * time.Second,
	QueryTimeout:    30 * time.Second,
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
	ScanCount    int64
}{
	ReadyTimeout: 5 * time.Second,
	ScanCount:    100,
}

var CacheKeys = struct {
	MemberPattern string
}{
	MemberPattern: "member:*",
}
