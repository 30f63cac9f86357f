package model

import "time"

type Task struct {
	ID           int64      `json:"id"`
	ChoreID      *int64     `json:"chore"`
	OwnerID      int64      `json:"owner"`
	StartDate    time.Time  `json:"startDate"`
	FinishedDate *time.Time `json:"finishedDate,omitempty"`
	PaidDate     *time.Time `json:"paidDate,omitempty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TaskWithChore is a task joined with its chore and owner, the denormalized
// shape the pages and the v1 assignment view consume.
type TaskWithChore struct {
	Task
	ChoreName   string `json:"choreName"`
	ChorePoints int    `json:"chorePoints"`
	OwnerName   string `json:"ownerName"`
}
