package domain

import (
	"net/url"
	"path"
	"strings"

	"github.com/kapu/hololive-member-sync/internal/util"
)

// OfficialTalent is one row of the official talent roster. English is the
// canonical member name, Japanese the authoritative native-script name.
type OfficialTalent struct {
	Japanese string `json:"japanese"`
	English  string `json:"english"`
	Link     string `json:"link,omitempty"`
	Status   string `json:"status,omitempty"`
}

// ScheduleName is a native-script member name observed on the schedule site.
type ScheduleName struct {
	MemberName string `json:"member_name"`
}

func (ot *OfficialTalent) Slug() string {
	if ot == nil {
		return ""
	}

	if ot.Link != "" {
		u, err := url.Parse(ot.Link)
		if err == nil {
			segment := strings.Trim(path.Base(u.Path), "/")
			if segment != "" && segment != "." && segment != "/" {
				return segment
			}
		}
	}

	return util.Slugify(ot.English)
}
