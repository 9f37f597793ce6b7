package domain

import (
	"fmt"
	"time"
)

// Day is a calendar day. It marshals as YYYY-MM-DD and accepts the date
// formats ad platforms are known to emit.
type Day struct {
	time.Time
}

const dayLayout = "2006-01-02"

var dayFormats = []string{
	dayLayout,
	"2006/01/02",
	"01/02/2006",
	time.RFC3339,
}

func DayOf(t time.Time) Day {
	y, m, d := t.UTC().Date()
	return Day{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDay(s string) (Day, error) {
	for _, format := range dayFormats {
		if t, err := time.Parse(format, s); err == nil {
			return DayOf(t), nil
		}
	}
	return Day{}, fmt.Errorf("unrecognized date %q", s)
}

func MustDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Day) Key() string {
	return d.Format(dayLayout)
}

func (d Day) Next() Day {
	return Day{d.AddDate(0, 0, 1)}
}

func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dayLayout) + `"`), nil
}

func (d *Day) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	parsed, err := ParseDay(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
