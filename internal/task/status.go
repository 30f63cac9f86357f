package task

import (
	"errors"
	"fmt"
)

// Status is the lifecycle state of a task occurrence. The paid state is
// terminal: a paid_date, once set, is never cleared.
type Status string

const (
	StatusUnfinished Status = "unfinished"
	StatusFinished   Status = "finished"
	StatusPaid       Status = "paid"
)

var ErrIllegalTransition = errors.New("illegal task status transition")

var legalTransitions = map[Status][]Status{
	StatusUnfinished: {StatusFinished},
	StatusFinished:   {StatusUnfinished, StatusPaid},
	StatusPaid:       {},
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	_, ok := legalTransitions[s]
	return ok
}

// CanTransition reports whether moving from s to next is legal.
func (s Status) CanTransition(next Status) bool {
	for _, t := range legalTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Transition validates the move from s to next, returning next on success.
func (s Status) Transition(next Status) (Status, error) {
	if !next.Valid() {
		return s, fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, next)
	}
	if !s.CanTransition(next) {
		return s, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s, next)
	}
	return next, nil
}
