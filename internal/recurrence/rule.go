package recurrence

import (
	"fmt"
	"strconv"
	"strings"
)

type Type int

const (
	None Type = iota
	Daily
	Weekly
	Monthly
)

var typeNames = map[Type]string{
	None:    "None",
	Daily:   "Daily",
	Weekly:  "Weekly",
	Monthly: "Monthly",
}

var typeFromName = map[string]Type{
	"None":    None,
	"Daily":   Daily,
	"Weekly":  Weekly,
	"Monthly": Monthly,
}

// Rule describes how often new task occurrences are generated.
// For Weekly, Repeat holds ISO weekdays (1=Mon..7=Sun); for Monthly,
// days of the month (1-31). Daily and None ignore Repeat.
type Rule struct {
	Type   Type
	Repeat []int
}

// Parse parses a rule string like "Weekly:1,3,5" or "Monthly:1,15".
// Daily and None carry no day selector.
func Parse(rule string) (Rule, error) {
	if rule == "" {
		return Rule{}, fmt.Errorf("empty rule")
	}

	name, selector, hasSelector := strings.Cut(rule, ":")
	t, ok := typeFromName[name]
	if !ok {
		return Rule{}, fmt.Errorf("unknown recurrence type: %q", name)
	}

	r := Rule{Type: t}
	if !hasSelector {
		if t == Weekly || t == Monthly {
			return Rule{}, fmt.Errorf("%s rule requires a day selector", name)
		}
		return r, nil
	}

	if t == None || t == Daily {
		return Rule{}, fmt.Errorf("%s rule takes no day selector", name)
	}

	max := 7
	if t == Monthly {
		max = 31
	}
	for _, part := range strings.Split(selector, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > max {
			return Rule{}, fmt.Errorf("invalid day value: %q", part)
		}
		r.Repeat = append(r.Repeat, n)
	}
	if len(r.Repeat) == 0 {
		return Rule{}, fmt.Errorf("%s rule requires at least one day", name)
	}

	return r, nil
}

// New builds a validated Rule from a type name and day selector, the
// shape API clients submit.
func New(name string, repeat []int) (Rule, error) {
	t, ok := typeFromName[name]
	if !ok {
		return Rule{}, fmt.Errorf("unknown recurrence type: %q", name)
	}

	switch t {
	case None, Daily:
		if len(repeat) != 0 {
			return Rule{}, fmt.Errorf("%s rule takes no day selector", name)
		}
		return Rule{Type: t}, nil
	}

	if len(repeat) == 0 {
		return Rule{}, fmt.Errorf("%s rule requires at least one day", name)
	}
	max := 7
	if t == Monthly {
		max = 31
	}
	for _, n := range repeat {
		if n < 1 || n > max {
			return Rule{}, fmt.Errorf("invalid day value: %d", n)
		}
	}
	return Rule{Type: t, Repeat: repeat}, nil
}

// String serializes the rule back to its storage form.
func (r Rule) String() string {
	name := typeNames[r.Type]
	if len(r.Repeat) == 0 {
		return name
	}
	days := make([]string, len(r.Repeat))
	for i, d := range r.Repeat {
		days[i] = strconv.Itoa(d)
	}
	return name + ":" + strings.Join(days, ",")
}

var weekdayShort = [...]string{1: "Mon", 2: "Tue", 3: "Wed", 4: "Thu", 5: "Fri", 6: "Sat", 7: "Sun"}

// Describe returns a human-readable description of the rule.
func (r Rule) Describe() string {
	switch r.Type {
	case Daily:
		return "Repeats daily"
	case Weekly:
		var names []string
		for _, d := range r.Repeat {
			if d >= 1 && d <= 7 {
				names = append(names, weekdayShort[d])
			}
		}
		return "Repeats weekly on " + strings.Join(names, ", ")
	case Monthly:
		var days []string
		for _, d := range r.Repeat {
			days = append(days, strconv.Itoa(d))
		}
		return "Repeats monthly on day " + strings.Join(days, ", ")
	}
	return "Does not repeat"
}
