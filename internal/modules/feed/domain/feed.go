package domain

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

type Named struct {
	ID   int
	Name string
}

// Publication is one report in the citizen's history.
type Publication struct {
	ID          int
	Code        string
	Title       string
	Description string
	PublishedAt string
	User        Named
	Status      Named
	Category    Named
	Location    string
}

type Image struct {
	ID        int
	URL       string
	Date      string
	Extension string
}

type Announcement struct {
	ID          int
	Title       string
	Subtitle    string
	Status      string
	Description string
	Date        string
	Category    Named
	User        Named
	Images      []Image
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts the timestamp shapes the backend emits.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortNewestFirst orders items by descending date. The sort is stable and
// items whose date does not parse keep their relative order at the end.
func SortNewestFirst[T any](items []T, date func(T) string) {
	type keyed struct {
		item T
		at   time.Time
		ok   bool
	}
	keys := make([]keyed, len(items))
	for i, it := range items {
		at, ok := ParseDate(date(it))
		keys[i] = keyed{item: it, at: at, ok: ok}
	}
	slices.SortStableFunc(keys, func(a, b keyed) int {
		switch {
		case a.ok && b.ok:
			return b.at.Compare(a.at)
		case a.ok:
			return -1
		case b.ok:
			return 1
		}
		return 0
	})
	for i := range keys {
		items[i] = keys[i].item
	}
}

// NormalizeStatus renders a backend status label in title case with
// whitespace collapsed.
func NormalizeStatus(raw string) string {
	fields := strings.Fields(norm.NFC.String(raw))
	if len(fields) == 0 {
		return ""
	}
	// a Caser keeps state between calls
	return cases.Title(language.Spanish).String(strings.ToLower(strings.Join(fields, " ")))
}
