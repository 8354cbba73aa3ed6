package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ThiagoRGoveia/treatment-records/internal/schema"
)

// DateTime is the calendar timestamp carried by records. It is a value type
// so it can key mappings.
type DateTime struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

func NewDateTime() DateTime {
	return DateTime{Month: 1, Day: 1}
}

func DateTimeFrom(t time.Time) DateTime {
	return DateTime{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

func (d *DateTime) TypeName() string { return "DateTimeClass" }

func (d *DateTime) SetDefaults() { *d = NewDateTime() }

func (d *DateTime) Fields() []schema.Field {
	return []schema.Field{
		schema.Int("year", &d.Year),
		schema.Int("month", &d.Month),
		schema.Int("day", &d.Day),
		schema.Int("hour", &d.Hour),
		schema.Int("minute", &d.Minute),
		schema.Int("second", &d.Second),
	}
}

// Time converts d to a time.Time in loc.
func (d DateTime) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, d.Hour, d.Minute, d.Second, 0, loc)
}

// Sub returns d - other.
func (d DateTime) Sub(other DateTime) time.Duration {
	return d.Time(time.UTC).Sub(other.Time(time.UTC))
}

// Stamp renders d to minute precision without zero padding, the form used in
// record filenames: year.month.day.hour.minute.
func (d DateTime) Stamp() string {
	return fmt.Sprintf("%d.%d.%d.%d.%d", d.Year, d.Month, d.Day, d.Hour, d.Minute)
}

// ParseStamp is the inverse of Stamp. Seconds are zero.
func ParseStamp(s string) (DateTime, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 5 {
		return DateTime{}, fmt.Errorf("invalid timestamp %q: want year.month.day.hour.minute", s)
	}
	values := make([]int, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return DateTime{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		values[i] = v
	}
	return DateTime{Year: values[0], Month: values[1], Day: values[2], Hour: values[3], Minute: values[4]}, nil
}

func (d DateTime) String() string {
	return fmt.Sprintf("%d/%d/%d", d.Month, d.Day, d.Year)
}
