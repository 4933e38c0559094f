package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// Day is a calendar day with no time-of-day component. Two Days compare
// equal iff they name the same calendar date, regardless of the source
// workbook's timezone — no timezone conversion is performed, so
// comparisons are done on the wall-clock date alone.
type Day struct {
	time.Time
}

// NewDay truncates t to a calendar day.
func NewDay(t time.Time) Day {
	return Day{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDay implements the Normaliser's date-parsing contract: ISO
// ("YYYY-MM-DD"), slash forms, and spreadsheet-serial numeric dates.
// Unparseable input returns ok=false so the caller can drop the row and
// emit a warning, per the ROW_DEFECT policy.
func ParseDay(raw string) (Day, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Day{}, false
	}

	layouts := []string{
		"2006-01-02",
		"2006/01/02",
		"2006-01-02 15:04:05",
		"2006/1/2",
		"2006-1-2",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return NewDay(t), true
		}
	}

	// Excel/spreadsheet serial date: days since 1899-12-30 (the classic
	// Lotus 1-2-3 epoch bug Excel preserves for compatibility).
	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil {
		epoch := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
		t := epoch.AddDate(0, 0, int(serial))
		return NewDay(t), true
	}

	return Day{}, false
}

// DiffDays returns a-b in whole days (can be negative).
func (d Day) DiffDays(other Day) int {
	return int(d.Time.Sub(other.Time).Hours() / 24)
}

// YearMonth returns the "YYYY-MM" tag for this day.
func (d Day) YearMonth() YearMonth { return NewYearMonth(d.Time) }

// String renders as "YYYY-MM-DD".
func (d Day) String() string { return d.Time.Format(dayLayout) }

// MarshalJSON renders "YYYY-MM-DD".
func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(dayLayout) + `"`), nil
}

// UnmarshalJSON parses "YYYY-MM-DD".
func (d *Day) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	t, err := time.ParseInLocation(dayLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("unmarshal day %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Value implements driver.Valuer.
func (d Day) Value() (driver.Value, error) {
	return d.Time.Format(dayLayout), nil
}

// Scan implements sql.Scanner.
func (d *Day) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = NewDay(v).Time
		return nil
	case string:
		t, err := time.ParseInLocation(dayLayout, v, time.UTC)
		if err != nil {
			return fmt.Errorf("scan day %q: %w", v, err)
		}
		d.Time = t
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("unsupported day scan type %T", src)
	}
}

// ClockTime is a time-of-day value (hours/minutes/seconds), used for
// checkout_time and the "checkout_time > 19:30" late-checkout rule.
type ClockTime struct {
	Hour   int
	Minute int
	Second int
}

// ParseClockTime accepts "HH:MM" and "HH:MM:SS".
func ParseClockTime(raw string) (ClockTime, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ClockTime{}, false
	}
	parts := strings.Split(trimmed, ":")
	if len(parts) < 2 {
		return ClockTime{}, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	s := 0
	var err3 error
	if len(parts) >= 3 {
		s, err3 = strconv.Atoi(parts[2])
	}
	if err1 != nil || err2 != nil || err3 != nil {
		return ClockTime{}, false
	}
	return ClockTime{Hour: h, Minute: m, Second: s}, true
}

// Minutes returns the time-of-day as minutes-since-midnight, for comparison.
func (c ClockTime) Minutes() int { return c.Hour*60 + c.Minute }

// After reports whether c is strictly later in the day than other.
func (c ClockTime) After(other ClockTime) bool {
	return c.Minutes()*60+c.Second > other.Minutes()*60+other.Second
}

// String renders "HH:MM:SS".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// Value implements driver.Valuer.
func (c ClockTime) Value() (driver.Value, error) {
	return c.String(), nil
}

// Scan implements sql.Scanner.
func (c *ClockTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		parsed, ok := ParseClockTime(v)
		if !ok {
			return fmt.Errorf("scan clock time %q", v)
		}
		*c = parsed
		return nil
	case []byte:
		return c.Scan(string(v))
	default:
		return fmt.Errorf("unsupported clock time scan type %T", src)
	}
}

// MarshalJSON renders "HH:MM:SS".
func (c ClockTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}
