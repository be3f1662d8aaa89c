package normalize

import (
	"slices"
	"strings"
	"time"

	"github.com/leozw/domain-inspector/internal/core"
)

// MultiValueSeparator joins entries of a multi-valued field for display.
const MultiValueSeparator = "\n    "

const dateLayout = "2006-01-02"

// WHOIS servers disagree on date formats; these cover the common ones.
var dateFormats = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05-07:00",
	dateLayout,
	"02-Jan-2006",
	"02-Jan-2006 15:04:05",
	"2006.01.02 15:04:05",
	"2006.01.02",
	"2006/01/02",
}

// Date picks the earliest entry and renders it as YYYY-MM-DD for timestamps,
// or as the first whitespace-delimited token for text. Ties keep the first
// occurrence. Entries whose time cannot be determined only compete when no
// entry has one, and then by string order.
func Date(v Value) string {
	entries := v.present()
	if len(entries) == 0 {
		return core.Unknown
	}

	best := -1
	var bestTime time.Time
	for i, entry := range entries {
		t, ok := entry.asTime()
		if !ok {
			continue
		}
		if best < 0 || t.Before(bestTime) {
			best, bestTime = i, t
		}
	}

	if best < 0 {
		best = 0
		for i := 1; i < len(entries); i++ {
			if entries[i].String() < entries[best].String() {
				best = i
			}
		}
	}

	return formatDate(entries[best])
}

func (s Scalar) asTime() (time.Time, bool) {
	switch s.kind {
	case scalarTime:
		return s.time, true
	case scalarText:
		return parseDate(strings.TrimSpace(s.text))
	default:
		return time.Time{}, false
	}
}

func parseDate(raw string) (time.Time, bool) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatDate(s Scalar) string {
	if s.kind == scalarTime {
		return s.time.Format(dateLayout)
	}
	fields := strings.Fields(s.String())
	if len(fields) == 0 {
		return core.Unknown
	}
	return fields[0]
}

// Status drops tracking URLs and parenthesised notes from every entry, then
// deduplicates and sorts what is left.
func Status(v Value) string {
	set := make(map[string]struct{})
	for _, entry := range v.present() {
		if name := cleanStatus(entry.String()); name != "" {
			set[name] = struct{}{}
		}
	}
	return joinSorted(set)
}

func cleanStatus(s string) string {
	if i := strings.Index(s, "https://"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "("); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// NameServers lowercases, deduplicates and sorts name-server hosts.
func NameServers(v Value) string {
	set := make(map[string]struct{})
	for _, entry := range v.present() {
		set[strings.ToLower(strings.TrimSpace(entry.String()))] = struct{}{}
	}
	return joinSorted(set)
}

// Registrar uses the first entry of a list, or the single value.
func Registrar(v Value) string {
	first, ok := v.First()
	if !ok || first.IsNull() {
		return core.Unknown
	}
	return strings.TrimSpace(first.String())
}

func joinSorted(set map[string]struct{}) string {
	if len(set) == 0 {
		return core.Unknown
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	slices.Sort(out)
	return strings.Join(out, MultiValueSeparator)
}
