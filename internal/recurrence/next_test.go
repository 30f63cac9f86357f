package recurrence

import (
	"testing"
	"time"
)

// 2026-08-24 is a Monday.
func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestNextWeeklyWithinCurrentWeek(t *testing.T) {
	rule := Rule{Type: Weekly, Repeat: []int{1, 3, 5}}

	tests := []struct {
		today time.Time
		want  time.Time
	}{
		{date(2026, 8, 24), date(2026, 8, 26)}, // Mon -> Wed
		{date(2026, 8, 25), date(2026, 8, 26)}, // Tue -> Wed
		{date(2026, 8, 26), date(2026, 8, 28)}, // Wed -> Fri
		{date(2026, 8, 27), date(2026, 8, 28)}, // Thu -> Fri
	}

	for _, tt := range tests {
		got := NextStartDate(rule, tt.today)
		if !got.Equal(tt.want) {
			t.Errorf("NextStartDate(%v) = %v, want %v", tt.today, got, tt.want)
		}
	}
}

func TestNextWeeklyWrapsToFirstEntry(t *testing.T) {
	// No weekday in the rule exceeds Friday (5), so the result is the
	// first list entry in the following week.
	rule := Rule{Type: Weekly, Repeat: []int{1, 3, 5}}

	got := NextStartDate(rule, date(2026, 8, 28)) // Friday
	want := date(2026, 8, 31)                     // next Monday
	if !got.Equal(want) {
		t.Errorf("NextStartDate(Fri) = %v, want %v", got, want)
	}

	got = NextStartDate(rule, date(2026, 8, 30)) // Sunday
	if !got.Equal(want) {
		t.Errorf("NextStartDate(Sun) = %v, want %v", got, want)
	}
}

func TestNextWeeklyWrapUsesListOrderNotMinimum(t *testing.T) {
	// The wrap branch takes Repeat[0] as stored, not the smallest value.
	rule := Rule{Type: Weekly, Repeat: []int{5, 1}}

	got := NextStartDate(rule, date(2026, 8, 29)) // Saturday
	want := date(2026, 9, 4)                      // Friday next week, not Monday
	if !got.Equal(want) {
		t.Errorf("NextStartDate = %v, want %v", got, want)
	}
}

func TestNextMonthlyWithinCurrentMonth(t *testing.T) {
	rule := Rule{Type: Monthly, Repeat: []int{1, 15, 28}}

	got := NextStartDate(rule, date(2026, 8, 10))
	want := date(2026, 8, 15)
	if !got.Equal(want) {
		t.Errorf("NextStartDate = %v, want %v", got, want)
	}

	got = NextStartDate(rule, date(2026, 8, 15))
	want = date(2026, 8, 28)
	if !got.Equal(want) {
		t.Errorf("NextStartDate = %v, want %v", got, want)
	}
}

func TestNextMonthlyWrapsToFirstEntry(t *testing.T) {
	rule := Rule{Type: Monthly, Repeat: []int{1, 15}}

	got := NextStartDate(rule, date(2026, 8, 28))
	want := date(2026, 9, 1)
	if !got.Equal(want) {
		t.Errorf("NextStartDate = %v, want %v", got, want)
	}
}

func TestNextMonthlyDayOverflowNormalizes(t *testing.T) {
	rule := Rule{Type: Monthly, Repeat: []int{31}}

	// January 31 -> "February 31" normalizes into early March.
	got := NextStartDate(rule, date(2026, 1, 31))
	want := date(2026, 3, 3)
	if !got.Equal(want) {
		t.Errorf("NextStartDate = %v, want %v", got, want)
	}
}

func TestNextDailyIsTomorrow(t *testing.T) {
	for _, rule := range []Rule{{Type: Daily}, {Type: None}} {
		for day := 24; day <= 30; day++ {
			today := date(2026, 8, day)
			got := NextStartDate(rule, today)
			want := today.AddDate(0, 0, 1)
			if !got.Equal(want) {
				t.Errorf("NextStartDate(%v, %v) = %v, want %v", rule.Type, today, got, want)
			}
		}
	}
}

func TestNextStripsTimeOfDay(t *testing.T) {
	rule := Rule{Type: Weekly, Repeat: []int{3}}

	today := time.Date(2026, 8, 24, 17, 45, 12, 0, time.Local)
	got := NextStartDate(rule, today)
	want := date(2026, 8, 26)
	if !got.Equal(want) {
		t.Errorf("NextStartDate = %v, want %v", got, want)
	}
}
