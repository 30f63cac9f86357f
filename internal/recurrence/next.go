package recurrence

import "time"

var fullWeek = []int{1, 2, 3, 4, 5, 6, 7}

// NextStartDate computes the next concrete calendar date satisfying the
// rule, strictly after today. Dates are compared on local wall-clock day
// boundaries; the result is midnight local time.
//
// Weekly picks the smallest ISO weekday in Repeat strictly greater than
// today's weekday; when today's weekday is at or past the maximum, the
// date falls to Repeat[0] in the following week. Monthly applies the same
// logic over days of the month. Daily and None run the Weekly algorithm
// over the full week, so the next occurrence is always tomorrow.
func NextStartDate(rule Rule, today time.Time) time.Time {
	today = startOfDay(today)

	switch rule.Type {
	case Monthly:
		return nextMonthly(rule.Repeat, today)
	case Weekly:
		return nextWeekly(rule.Repeat, today)
	default:
		return nextWeekly(fullWeek, today)
	}
}

func nextWeekly(repeat []int, today time.Time) time.Time {
	d := isoWeekday(today)

	next := 0
	for _, day := range repeat {
		if day > d && (next == 0 || day < next) {
			next = day
		}
	}
	if next != 0 {
		return today.AddDate(0, 0, next-d)
	}
	// Wrap to the first entry of the list in the following week. The first
	// entry is used as-is, not the minimum of the set.
	return today.AddDate(0, 0, 7-d+repeat[0])
}

func nextMonthly(repeat []int, today time.Time) time.Time {
	d := today.Day()

	next := 0
	for _, day := range repeat {
		if day > d && (next == 0 || day < next) {
			next = day
		}
	}
	if next != 0 {
		return time.Date(today.Year(), today.Month(), next, 0, 0, 0, 0, today.Location())
	}
	// First entry of the list in the following month. Out-of-range days
	// normalize forward per time.Date (e.g. Feb 31 becomes early March).
	return time.Date(today.Year(), today.Month()+1, repeat[0], 0, 0, 0, 0, today.Location())
}

// isoWeekday returns the ISO-8601 weekday number (1=Mon..7=Sun).
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
