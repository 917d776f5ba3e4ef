package attendance

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimeValue is a normalized clock reading: absent, the OFF flag, or a canonical "HH:MM".
type TimeValue struct {
	Clock string
	Off   bool
}

var (
	offTime    = TimeValue{Off: true}
	absentTime = TimeValue{}
)

func clockValue(hour, minute int) TimeValue {
	return TimeValue{Clock: fmt.Sprintf("%02d:%02d", hour, minute)}
}

// IsAbsent reports whether no usable clock reading is present.
func (t TimeValue) IsAbsent() bool {
	return !t.Off && t.Clock == ""
}

// Ptr returns the clock as a pointer, nil when absent or OFF.
func (t TimeValue) Ptr() *string {
	if t.Clock == "" || t.Off {
		return nil
	}
	c := t.Clock
	return &c
}

func (t TimeValue) String() string {
	switch {
	case t.Off:
		return "OFF"
	case t.Clock == "":
		return ""
	default:
		return t.Clock
	}
}

var (
	isoTimeRegex   = regexp.MustCompile(`T(\d{2}):(\d{2})`)
	hhmmRegex      = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	hhmmssRegex    = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})$`)
	meridiemRegex  = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})(?::(\d{2}))?\s*(AM|PM)$`)
	looseTimeRegex = regexp.MustCompile(`(\d{1,2})[:.](\d{2})`)
	slashDateRegex = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

var nullLike = []string{"", "null", "n/a", "undefined"}

// spreadsheetEpoch is day zero of the 1900 date system as used by spreadsheet serials.
var spreadsheetEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

var genericDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2006/01/02",
}

// NormalizeTime converts a raw clock value from an import or a stored row into a TimeValue.
// Accepted inputs are nil, strings, numeric spreadsheet serials and time.Time.
func NormalizeTime(v any) TimeValue {
	switch t := v.(type) {
	case nil:
		return absentTime
	case *string:
		if t == nil {
			return absentTime
		}
		return normalizeTimeString(*t)
	case string:
		return normalizeTimeString(t)
	case time.Time:
		if t.IsZero() {
			return absentTime
		}
		return clockValue(t.Hour(), t.Minute())
	case float64:
		return normalizeSerialTime(t)
	case float32:
		return normalizeSerialTime(float64(t))
	case int:
		return normalizeSerialTime(float64(t))
	case int64:
		return normalizeSerialTime(float64(t))
	default:
		return absentTime
	}
}

func normalizeSerialTime(v float64) TimeValue {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return absentTime
	}
	if v >= 1 {
		frac := v - math.Floor(v)
		if frac == 0 {
			return absentTime
		}
		v = frac
	}
	// The epsilon absorbs binary float noise on serials that encode whole minutes.
	minutes := int(math.Floor(v*1440 + 1e-9))
	if minutes >= 1440 {
		minutes = 1439
	}
	return clockValue(minutes/60, minutes%60)
}

func normalizeTimeString(raw string) TimeValue {
	s := strings.TrimSpace(raw)
	for _, n := range nullLike {
		if strings.EqualFold(s, n) {
			return absentTime
		}
	}
	if strings.EqualFold(s, "OFF") {
		return offTime
	}

	if m := isoTimeRegex.FindStringSubmatch(s); m != nil {
		if tv, ok := validClock(m[1], m[2]); ok {
			return tv
		}
	}

	if m := meridiemRegex.FindStringSubmatch(s); m != nil {
		if tv, ok := meridiemClock(m[1], m[2], m[4]); ok {
			return tv
		}
	}

	// "2025-11-01 08:12" style values carry the clock in the last token.
	candidate := s
	if idx := strings.LastIndexAny(s, " \t"); idx >= 0 {
		candidate = s[idx+1:]
	}
	if m := hhmmRegex.FindStringSubmatch(candidate); m != nil {
		if tv, ok := validClock(m[1], m[2]); ok {
			return tv
		}
	}
	if m := hhmmssRegex.FindStringSubmatch(candidate); m != nil {
		if tv, ok := validClock(m[1], m[2]); ok {
			return tv
		}
	}

	if m := looseTimeRegex.FindStringSubmatch(s); m != nil {
		if tv, ok := validClock(m[1], m[2]); ok {
			return tv
		}
	}

	return absentTime
}

func validClock(hourStr, minuteStr string) (TimeValue, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return absentTime, false
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil {
		return absentTime, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return absentTime, false
	}
	return clockValue(hour, minute), true
}

func meridiemClock(hourStr, minuteStr, meridiem string) (TimeValue, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 1 || hour > 12 {
		return absentTime, false
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil || minute < 0 || minute > 59 {
		return absentTime, false
	}
	pm := strings.EqualFold(meridiem, "PM")
	switch {
	case !pm && hour == 12:
		hour = 0
	case pm && hour != 12:
		hour += 12
	}
	return clockValue(hour, minute), true
}

// NormalizeDate converts a raw date cell into a calendar date (UTC midnight).
func NormalizeDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if d.IsZero() {
			return time.Time{}, false
		}
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
	case float64:
		return serialDate(d)
	case float32:
		return serialDate(float64(d))
	case int:
		return serialDate(float64(d))
	case int64:
		return serialDate(float64(d))
	case string:
		return normalizeDateString(d)
	case *string:
		if d == nil {
			return time.Time{}, false
		}
		return normalizeDateString(*d)
	default:
		return time.Time{}, false
	}
}

func serialDate(v float64) (time.Time, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 1 {
		return time.Time{}, false
	}
	return spreadsheetEpoch.AddDate(0, 0, int(math.Floor(v))), true
}

func normalizeDateString(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if m := slashDateRegex.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			if date.Day() == day && int(date.Month()) == month {
				return date, true
			}
		}
	}

	for _, layout := range genericDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// DeriveMark maps a normalized (time_in, time_out) pair to the stored mark and times.
// ok is false for a check-out without a check-in, which import rejects.
func DeriveMark(in, out TimeValue) (mark Mark, checkIn, checkOut *string, ok bool) {
	switch {
	case in.Off || out.Off:
		return MarkOff, nil, nil, true
	case !in.IsAbsent() && out.IsAbsent():
		return MarkNoSignOut, in.Ptr(), nil, true
	case in.IsAbsent() && out.IsAbsent():
		return MarkAbsent, nil, nil, true
	case !in.IsAbsent() && !out.IsAbsent():
		return MarkPresent, in.Ptr(), out.Ptr(), true
	default:
		return "", nil, nil, false
	}
}

// ClockMinutes parses a canonical or raw clock reading into minutes after midnight.
func ClockMinutes(v any) (int, bool) {
	tv := NormalizeTime(v)
	if tv.Off || tv.Clock == "" {
		return 0, false
	}
	hour, _ := strconv.Atoi(tv.Clock[:2])
	minute, _ := strconv.Atoi(tv.Clock[3:])
	return hour*60 + minute, true
}

// WorkedHours returns the span between two clock readings in hours.
// ok is false when either reading is unusable; the span may be negative.
func WorkedHours(checkIn, checkOut any) (float64, bool) {
	in, ok := ClockMinutes(checkIn)
	if !ok {
		return 0, false
	}
	out, ok := ClockMinutes(checkOut)
	if !ok {
		return 0, false
	}
	return float64(out-in) / 60, true
}

// RoundHalfUp rounds to the nearest integer with ties going toward positive infinity,
// so -2.5 becomes -2 and 2.5 becomes 3.
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// FormatForDisplay renders a stored TIME value ("08:12:00") as "HH:MM", nil when empty.
func FormatForDisplay(stored *string) *string {
	return NormalizeTime(stored).Ptr()
}
