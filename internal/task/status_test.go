package task

import (
	"errors"
	"testing"
)

func TestLegalTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
	}{
		{StatusUnfinished, StatusFinished},
		{StatusFinished, StatusUnfinished},
		{StatusFinished, StatusPaid},
	}

	for _, tt := range tests {
		got, err := tt.from.Transition(tt.to)
		if err != nil {
			t.Errorf("Transition(%s -> %s) error: %v", tt.from, tt.to, err)
		}
		if got != tt.to {
			t.Errorf("Transition(%s -> %s) = %s", tt.from, tt.to, got)
		}
	}
}

func TestIllegalTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
	}{
		{StatusUnfinished, StatusPaid},
		{StatusUnfinished, StatusUnfinished},
		{StatusPaid, StatusUnfinished},
		{StatusPaid, StatusFinished},
		{StatusPaid, StatusPaid},
		{StatusFinished, StatusFinished},
	}

	for _, tt := range tests {
		got, err := tt.from.Transition(tt.to)
		if !errors.Is(err, ErrIllegalTransition) {
			t.Errorf("Transition(%s -> %s) error = %v, want ErrIllegalTransition", tt.from, tt.to, err)
		}
		if got != tt.from {
			t.Errorf("Transition(%s -> %s) moved to %s on error", tt.from, tt.to, got)
		}
	}
}

func TestUnknownStatusRejected(t *testing.T) {
	if _, err := StatusUnfinished.Transition(Status("done")); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("unknown status error = %v, want ErrIllegalTransition", err)
	}
	if Status("done").Valid() {
		t.Error("Status(\"done\").Valid() = true")
	}
}
