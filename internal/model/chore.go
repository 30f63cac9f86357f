package model

import "time"

type Chore struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	Name        string    `json:"name"`
	Points      int       `json:"points"`
	AssignedTo  []int64   `json:"assignedTo"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Recurrence governs when new Task occurrences are generated for a Chore.
// Rule is the serialized recurrence rule (see internal/recurrence).
type Recurrence struct {
	ID        int64     `json:"id"`
	ChoreID   int64     `json:"chore"`
	Rule      string    `json:"rule"`
	StartDate time.Time `json:"startDate"`
	CreatedAt time.Time `json:"created_at"`
}
