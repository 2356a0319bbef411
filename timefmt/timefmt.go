// Package timefmt renders instants as single-line diagnostic strings.
package timefmt

import (
	"strings"
	"time"
	"unicode"
)

// Layout is the classic asctime shape. The day of month is space padded,
// which Normalize collapses.
const Layout = "Mon Jan _2 15:04:05 2006"

// Format renders t in the local time zone.
func Format(t time.Time) string {
	return FormatIn(t, time.Local)
}

// FormatIn renders t in loc. A nil loc means UTC.
func FormatIn(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return Normalize(t.In(loc).Format(Layout))
}

// Normalize strips trailing whitespace and collapses every run of spaces to a
// single space. Everything else, including weekday and month names, passes
// through unchanged.
func Normalize(s string) string {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	if !strings.Contains(s, "  ") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' && prevSpace {
			continue
		}
		prevSpace = c == ' '
		b.WriteByte(c)
	}
	return b.String()
}
