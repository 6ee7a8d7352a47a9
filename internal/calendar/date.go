// Package calendar holds the calendar-date type used by the ledger, and the
// conversions between it and the legacy MM/DD/YYYY boundary format.
package calendar

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// LayoutBoundary is the date format exchanged with operators and import files.
	LayoutBoundary = "01/02/2006"
	// LayoutISO is the storage format; it sorts lexically in date order.
	LayoutISO = "2006-01-02"
	// LayoutMonth labels monthly aggregates.
	LayoutMonth = "01/2006"
)

var ErrMalformedDate = errors.New("malformed_date")

// Date is a calendar day without time of day or zone.
type Date struct {
	t time.Time
}

func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates t to its calendar day in t's own location.
func FromTime(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return New(y, m, d)
}

// Parse reads a boundary MM/DD/YYYY value.
func Parse(value string) (Date, error) {
	return parseLayout(LayoutBoundary, value)
}

// ParseISO reads a YYYY-MM-DD value.
func ParseISO(value string) (Date, error) {
	return parseLayout(LayoutISO, value)
}

// Normalize accepts either the boundary format or ISO, the two formats found
// in legacy data.
func Normalize(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if d, err := Parse(value); err == nil {
		return d, nil
	}
	if d, err := ParseISO(value); err == nil {
		return d, nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrMalformedDate, value)
}

func parseLayout(layout, value string) (Date, error) {
	t, err := time.Parse(layout, strings.TrimSpace(value))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrMalformedDate, value)
	}
	return FromTime(t), nil
}

// String renders the boundary format.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(LayoutBoundary)
}

func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(LayoutISO)
}

// MonthKey renders MM/YYYY.
func (d Date) MonthKey() string {
	return d.t.Format(LayoutMonth)
}

func (d Date) Time() time.Time { return d.t }

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

func (d Date) After(o Date) bool { return d.t.After(o.t) }

func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int { return d.t.Compare(o.t) }

// SameMonth reports whether both dates fall in the same calendar month.
func (d Date) SameMonth(o Date) bool {
	return d.t.Year() == o.t.Year() && d.t.Month() == o.t.Month()
}

// Value stores the date as ISO text.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.ISO(), nil
}

// Scan accepts ISO text or a driver-parsed time.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = FromTime(v.UTC())
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("calendar: cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		*d = Date{}
		return nil
	}
	if len(v) > len(LayoutISO) {
		v = v[:len(LayoutISO)]
	}
	parsed, err := Normalize(v)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.ISO()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	return d.scanString(string(b))
}
