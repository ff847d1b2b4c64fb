package core

import (
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		in   string
		want Period
		ok   bool
	}{
		{"2025-03", Period{2025, time.March}, true},
		{"1999-12", Period{1999, time.December}, true},
		{"2025-13", Period{}, false},
		{"2025-3", Period{}, false},
		{"202503", Period{}, false},
		{"", Period{}, false},
	}
	for _, tc := range cases {
		got, err := ParsePeriod(tc.in)
		if tc.ok != (err == nil) {
			t.Fatalf("%q expected ok=%v, got err=%v", tc.in, tc.ok, err)
		}
		if tc.ok && got != tc.want {
			t.Fatalf("%q expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestPeriodBounds(t *testing.T) {
	cases := []struct {
		p    Period
		days int
		end  string
	}{
		{Period{2024, time.February}, 29, "2024-02-29"},
		{Period{2025, time.February}, 28, "2025-02-28"},
		{Period{2025, time.April}, 30, "2025-04-30"},
		{Period{2025, time.December}, 31, "2025-12-31"},
	}
	for _, tc := range cases {
		if tc.p.Days() != tc.days {
			t.Errorf("%s days = %d, want %d", tc.p, tc.p.Days(), tc.days)
		}
		if tc.p.End().String() != tc.end {
			t.Errorf("%s end = %s, want %s", tc.p, tc.p.End(), tc.end)
		}
		if tc.p.Start().Day() != 1 {
			t.Errorf("%s start day = %d", tc.p, tc.p.Start().Day())
		}
	}
}

func TestPeriodNavigation(t *testing.T) {
	p := Period{2025, time.December}
	if got := p.Next(); got != (Period{2026, time.January}) {
		t.Fatalf("Next() = %v", got)
	}
	if got := (Period{2025, time.January}).Prev(); got != (Period{2024, time.December}) {
		t.Fatalf("Prev() = %v", got)
	}
	if !p.Contains(NewDate(2025, 12, 31)) || p.Contains(NewDate(2026, 1, 1)) {
		t.Fatalf("Contains() wrong at month edges")
	}
	if p.String() != "2025-12" {
		t.Fatalf("String() = %s", p.String())
	}
}
