package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Strict layouts tried first. The compact form is what the format prescribes;
// ISO variants appear in files written by newer tools.
var isoDateLayouts = []string{
	"20060102",
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"20060102T150405",
}

// Day-before-month layouts, the Scandinavian convention used by most field
// equipment. Single-digit day and month verbs also accept two digits.
var dayFirstDateLayouts = []string{
	"2.1.2006",
	"2/1/2006",
	"2-1-2006",
	"2.1.06",
	"2/1/06",
	"2-1-06",
}

var dayFirstDateTimeLayouts = []string{
	"2.1.2006 15:04:05",
	"2.1.2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2-1-2006 15:04:05",
	"2-1-2006 15:04",
	"2.1.06 15:04",
	"2/1/06 15:04",
}

var isoDateTimeLayouts = []string{
	"200601021504",
	"20060102150405",
	"2006010215",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"20060102T150405",
	"20060102T1504",
}

// Date returns the codec for fields of type date. Decoded values are
// midnight UTC.
func Date() Codec[time.Time] { return dateCodec{} }

type dateCodec struct{}

func (dateCodec) Decode(s string) (time.Time, error) { return ParseDate(s) }
func (dateCodec) Encode(t time.Time) string        { return FormatDate(t) }

// DateTime returns the codec for fields of type datetime. With millis set the
// encoder writes YYYYMMDDhhmmssSSS instead of YYYYMMDDhhmm.
func DateTime(millis bool) Codec[time.Time] { return dateTimeCodec{millis: millis} }

type dateTimeCodec struct{ millis bool }

func (dateTimeCodec) Decode(s string) (time.Time, error) { return ParseDateTime(s) }
func (c dateTimeCodec) Encode(t time.Time) string        { return FormatDateTime(t, c.millis) }

// ParseDate parses a calendar date. Strict ISO and compact layouts are tried
// first, then day-first layouts, then a fuzzy parser that prefers day-first
// when the order is ambiguous.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date %q: %w", s, ErrNoMatch)
	}
	if len(s) >= 8 {
		if t, ok := tryLayouts(isoDateLayouts, s); ok {
			return truncateDay(t), nil
		}
	}
	if t, ok := tryLayouts(dayFirstDateLayouts, s); ok {
		return truncateDay(t), nil
	}
	if t, ok := tryLayouts(dayFirstDateTimeLayouts, s); ok {
		return truncateDay(t), nil
	}
	t, err := fuzzy(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w: %v", s, ErrNoMatch, err)
	}
	return truncateDay(t), nil
}

// ParseDateTime parses a date with time of day. Compact forms with minute,
// second and millisecond resolution are accepted along with ISO and day-first
// layouts; a bare date yields midnight.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("datetime %q: %w", s, ErrNoMatch)
	}
	if len(s) == 17 && isDigits(s) {
		if t, err := time.ParseInLocation("20060102150405", s[:14], time.UTC); err == nil {
			ms := int(s[14]-'0')*100 + int(s[15]-'0')*10 + int(s[16]-'0')
			return t.Add(time.Duration(ms) * time.Millisecond), nil
		}
	}
	if t, ok := tryLayouts(isoDateTimeLayouts, s); ok {
		return t, nil
	}
	if t, ok := tryLayouts(dayFirstDateTimeLayouts, s); ok {
		return t, nil
	}
	if t, ok := tryLayouts(isoDateLayouts, s); ok {
		return t, nil
	}
	if t, ok := tryLayouts(dayFirstDateLayouts, s); ok {
		return t, nil
	}
	t, err := fuzzy(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("datetime %q: %w: %v", s, ErrNoMatch, err)
	}
	return t, nil
}

// FormatDate renders YYYYMMDD.
func FormatDate(t time.Time) string { return t.Format("20060102") }

// FormatDateTime renders YYYYMMDDhhmm, or YYYYMMDDhhmmssSSS with millis.
func FormatDateTime(t time.Time, millis bool) string {
	if millis {
		return t.Format("20060102150405") + fmt.Sprintf("%03d", t.Nanosecond()/int(time.Millisecond))
	}
	return t.Format("200601021504")
}

// ---- helpers ----

func tryLayouts(layouts []string, s string) (time.Time, bool) {
	for _, l := range layouts {
		if t, err := time.ParseInLocation(l, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func fuzzy(s string) (time.Time, error) {
	return dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
