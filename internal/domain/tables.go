package domain

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

const (
	labelRulesFile  = "label_rules.yaml"
	koreanNamesFile = "korean_names.yaml"
	rosterFile      = "roster.yaml"
)

//go:embed data/*.yaml
var tablesFS embed.FS

// LabelRule substitutes Pattern with Replacement inside a profile value.
type LabelRule struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

type LabelTable struct {
	Rules         []LabelRule `yaml:"rules"`
	HashtagLabels []string    `yaml:"hashtag_labels"`
}

type KoreanNameTable struct {
	Overrides    map[string]string `yaml:"overrides"`
	Romanization map[string]string `yaml:"romanization"`
}

type RosterTable struct {
	EnglishFixups    map[string]string `yaml:"english_fixups"`
	ScheduleDenylist []string          `yaml:"schedule_denylist"`
}

// Tables bundles the static lookup data the reconciliation engine is configured with.
type Tables struct {
	Labels      LabelTable
	KoreanNames KoreanNameTable
	Roster      RosterTable
}

// LoadTables reads the lookup tables. Files present in dir replace the
// embedded defaults one file at a time; an empty dir uses the defaults only.
func LoadTables(dir string) (*Tables, error) {
	tables := &Tables{}

	if err := loadTable(dir, labelRulesFile, &tables.Labels); err != nil {
		return nil, err
	}
	if err := loadTable(dir, koreanNamesFile, &tables.KoreanNames); err != nil {
		return nil, err
	}
	if err := loadTable(dir, rosterFile, &tables.Roster); err != nil {
		return nil, err
	}

	return tables, nil
}

func loadTable(dir, name string, dest any) error {
	data, err := readTable(dir, name)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func readTable(dir, name string) ([]byte, error) {
	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
	}

	data, err := tablesFS.ReadFile("data/" + name)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded %s: %w", name, err)
	}
	return data, nil
}
