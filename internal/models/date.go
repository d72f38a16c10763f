package models

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"time"
)

const DateLayout = "2006-01-02"

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// Date is a calendar day in YYYY-MM-DD form. The empty value maps to NULL.
type Date string

func ParseDate(s string) (Date, error) {
	if !datePattern.MatchString(s) {
		return "", fmt.Errorf("date %q must look like YYYY-MM-DD", s)
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("date %q: %w", s, err)
	}
	return Date(s), nil
}

func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

func (d Date) String() string { return string(d) }

func (d Date) IsZero() bool { return d == "" }

func (d Date) Time() (time.Time, error) {
	return time.Parse(DateLayout, string(d))
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = DateOf(v)
	case string:
		*d = Date(trimDate(v))
	case []byte:
		*d = Date(trimDate(string(v)))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}
	return string(d), nil
}

// trimDate drops a time suffix some drivers append to DATE columns.
func trimDate(s string) string {
	if len(s) > len(DateLayout) {
		return s[:len(DateLayout)]
	}
	return s
}

// ValidShowTime reports whether s is an HH:MM wall-clock time.
func ValidShowTime(s string) bool {
	return timePattern.MatchString(s)
}

func Ptr[T any](v T) *T {
	return &v
}
