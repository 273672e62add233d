package domain

import (
	"encoding/json"
)

// Language codes used as alias list keys.
const (
	LangEnglish  = "en"
	LangJapanese = "ja"
	LangKorean   = "ko"
)

// Aliases maps a language code to the ordered alias list for that language.
type Aliases map[string][]string

type Member struct {
	ChannelID   string  `json:"channelId"`
	Name        string  `json:"name"`
	Aliases     Aliases `json:"aliases,omitempty"`
	NameJa      string  `json:"nameJa,omitempty"`
	NameKo      string  `json:"nameKo,omitempty"`
	IsGraduated bool    `json:"isGraduated,omitempty"`
}

type MembersData struct {
	Version     string    `json:"version"`
	LastUpdated string    `json:"lastUpdated"`
	Sources     []string  `json:"sources"`
	Members     []*Member `json:"members"`
}

// PrimaryName returns the name field that is canonical for lang.
func (m *Member) PrimaryName(lang string) string {
	switch lang {
	case LangJapanese:
		return m.NameJa
	case LangKorean:
		return m.NameKo
	default:
		return m.Name
	}
}

// AliasList returns the alias list for lang. The slice is shared with the member.
func (m *Member) AliasList(lang string) []string {
	if m.Aliases == nil {
		return nil
	}
	return m.Aliases[lang]
}

func (m *Member) SetAliasList(lang string, list []string) {
	if m.Aliases == nil {
		m.Aliases = make(Aliases)
	}
	m.Aliases[lang] = list
}

func (m *Member) GetAllAliases() []string {
	all := make([]string, 0, len(m.Aliases[LangKorean])+len(m.Aliases[LangJapanese]))
	all = append(all, m.Aliases[LangKorean]...)
	all = append(all, m.Aliases[LangJapanese]...)
	return all
}

func (m *Member) HasAlias(name string) bool {
	for _, list := range m.Aliases {
		for _, alias := range list {
			if alias == name {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy, alias lists included.
func (m *Member) Clone() *Member {
	if m == nil {
		return nil
	}
	clone := *m
	if m.Aliases != nil {
		clone.Aliases = make(Aliases, len(m.Aliases))
		for lang, list := range m.Aliases {
			clone.Aliases[lang] = append([]string(nil), list...)
		}
	}
	return &clone
}

func ParseMembersData(raw []byte) (*MembersData, error) {
	var data MembersData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (md *MembersData) GetAllMembers() []*Member {
	return md.Members
}
