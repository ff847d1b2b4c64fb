package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is one calendar month, rendered as "YYYY-MM".
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses "YYYY-MM".
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	y, m, ok := strings.Cut(s, "-")
	if !ok || len(y) != 4 || len(m) != 2 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	month, err := strconv.Atoi(m)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	p := Period{Year: year, Month: time.Month(month)}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

func (p Period) Validate() error {
	if p.Year < 1 || p.Year > 9999 || p.Month < time.January || p.Month > time.December {
		return ErrInvalidPeriod
	}
	return nil
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start is the first day of the month.
func (p Period) Start() Date {
	return NewDate(p.Year, int(p.Month), 1)
}

// End is the last day of the month.
func (p Period) End() Date {
	return NewDate(p.Year, int(p.Month)+1, 0)
}

// Days returns the number of days in the month.
func (p Period) Days() int {
	return p.End().Day()
}

func (p Period) Contains(d Date) bool {
	return d.Year() == p.Year && d.Time.Month() == p.Month
}

func (p Period) Next() Period {
	return PeriodOf(p.Start().AddDate(0, 1, 0))
}

func (p Period) Prev() Period {
	return PeriodOf(p.Start().AddDate(0, -1, 0))
}

func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Period) UnmarshalText(b []byte) error {
	parsed, err := ParsePeriod(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
