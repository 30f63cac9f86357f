package recurrence

import "testing"

func TestParseTypes(t *testing.T) {
	tests := []struct {
		input string
		typ   Type
		days  int
	}{
		{"None", None, 0},
		{"Daily", Daily, 0},
		{"Weekly:1,3,5", Weekly, 3},
		{"Monthly:1,15,28", Monthly, 3},
	}

	for _, tt := range tests {
		r, err := Parse(tt.input)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.input, err)
			continue
		}
		if r.Type != tt.typ {
			t.Errorf("Parse(%q).Type = %d, want %d", tt.input, r.Type, tt.typ)
		}
		if len(r.Repeat) != tt.days {
			t.Errorf("Parse(%q) repeat len = %d, want %d", tt.input, len(r.Repeat), tt.days)
		}
	}
}

func TestParsePreservesOrder(t *testing.T) {
	r, err := Parse("Weekly:5,1,3")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := []int{5, 1, 3}
	for i, d := range r.Repeat {
		if d != want[i] {
			t.Errorf("Repeat[%d] = %d, want %d", i, d, want[i])
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"Hourly",
		"Weekly",         // missing selector
		"Monthly",        // missing selector
		"Daily:1",        // selector not allowed
		"None:1",         // selector not allowed
		"Weekly:0",       // below range
		"Weekly:8",       // above range
		"Monthly:32",     // above range
		"Weekly:1,,3",    // empty entry
		"Weekly:monday",  // not a number
	}

	for _, input := range tests {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) should error", input)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	tests := []string{"None", "Daily", "Weekly:1,3,5", "Monthly:1,15"}

	for _, input := range tests {
		r, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", input, err)
		}
		if got := r.String(); got != input {
			t.Errorf("Parse(%q).String() = %q", input, got)
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"None", "Does not repeat"},
		{"Daily", "Repeats daily"},
		{"Weekly:1,3", "Repeats weekly on Mon, Wed"},
		{"Monthly:1,15", "Repeats monthly on day 1, 15"},
	}

	for _, tt := range tests {
		r, err := Parse(tt.input)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tt.input, err)
		}
		if got := r.Describe(); got != tt.want {
			t.Errorf("Describe(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
