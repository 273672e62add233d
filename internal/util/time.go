package util

import "time"

var kstLocation *time.Location

func init() {
	var err error
	kstLocation, err = time.LoadLocation("Asia/Seoul")
	if err != nil {
		kstLocation = time.FixedZone("KST", 9*60*60)
	}
}

// NowKST returns the current time in Korea Standard Time, the zone the
// member file's lastUpdated stamp is written in.
func NowKST() time.Time {
	return time.Now().In(kstLocation)
}
