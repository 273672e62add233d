package scraper

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kapu/hololive-member-sync/internal/domain"
)

// Selectors of the official talents page.
const (
	talentItemSelector = ".talent_list li"
	talentLinkSelector = "a"
	talentNameSelector = "h3"
	graduatedClass     = "graduate"
)

// Selectors of the schedule page.
const (
	streamSelector     = "a.thumbnail"
	streamNameSelector = ".name"
)

// StructureChangedError means the page parsed but none of the expected
// elements were found.
type StructureChangedError struct {
	Message     string
	ParseErrors int
}

func (e *StructureChangedError) Error() string {
	return fmt.Sprintf("%s (parse errors: %d)", e.Message, e.ParseErrors)
}

// ParseTalents reads the talents list page. Each card holds the Japanese
// name as the heading text and the English name in a nested span. Relative
// links are resolved against baseURL.
func ParseTalents(r io.Reader, baseURL string) ([]*domain.OfficialTalent, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("HTML parse failed: %w", err)
	}

	base, _ := url.Parse(baseURL)

	talents := make([]*domain.OfficialTalent, 0)
	parseErrors := 0
	doc.Find(talentItemSelector).Each(func(_ int, item *goquery.Selection) {
		heading := item.Find(talentNameSelector).First()
		japanese := normalizeText(heading.Clone().Children().Remove().End().Text())
		english := normalizeText(heading.Find("span").First().Text())
		if japanese == "" || english == "" {
			parseErrors++
			return
		}

		talent := &domain.OfficialTalent{Japanese: japanese, English: english}
		if href, ok := item.Find(talentLinkSelector).First().Attr("href"); ok {
			talent.Link = resolveLink(base, href)
		}
		if item.HasClass(graduatedClass) {
			talent.Status = "graduated"
		}
		talents = append(talents, talent)
	})

	if len(talents) == 0 {
		return nil, &StructureChangedError{
			Message:     "No talents found - HTML structure may have changed",
			ParseErrors: parseErrors,
		}
	}
	return talents, nil
}

// ParseScheduleNames collects the member names shown on schedule cards, in
// first-seen order without duplicates. The onclick analytics category wins
// over the visible name when both are present.
func ParseScheduleNames(r io.Reader) ([]*domain.ScheduleName, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("HTML parse failed: %w", err)
	}

	names := make([]*domain.ScheduleName, 0)
	seen := make(map[string]bool)
	cards := doc.Find(streamSelector)
	cards.Each(func(_ int, sel *goquery.Selection) {
		name := normalizeText(sel.Find(streamNameSelector).Text())
		if onclick, ok := sel.Attr("onclick"); ok {
			if extracted := extractMemberFromOnClick(onclick); extracted != "" {
				name = extracted
			}
		}
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, &domain.ScheduleName{MemberName: name})
	})

	if cards.Length() == 0 {
		return nil, &StructureChangedError{Message: "No schedule entries found - HTML structure may have changed"}
	}
	return names, nil
}

func extractMemberFromOnClick(onclick string) string {
	startMarker := "event_category':'"
	startIdx := strings.Index(onclick, startMarker)
	if startIdx == -1 {
		startMarker = `event_category":"`
		startIdx = strings.Index(onclick, startMarker)
	}

	if startIdx == -1 {
		return ""
	}

	startIdx += len(startMarker)
	endIdx := strings.IndexAny(onclick[startIdx:], `'"`)
	if endIdx == -1 {
		return ""
	}

	return strings.TrimSpace(onclick[startIdx : startIdx+endIdx])
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// normalizeText collapses all whitespace runs (non-breaking spaces included)
// into single spaces.
func normalizeText(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
