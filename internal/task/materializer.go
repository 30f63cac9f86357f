package task

import (
	"time"

	"github.com/choreme/choreme/internal/model"
)

// Batcher creates a dated task for every owner in one transaction.
// *store.TaskStore satisfies it.
type Batcher interface {
	CreateBatch(choreID int64, ownerIDs []int64, startDate time.Time) ([]model.Task, error)
}

// Materialize turns one occurrence of the chore into concrete tasks, one
// unfinished task per assignee, all dated startDate. A chore with no
// assignees produces nothing.
func Materialize(batcher Batcher, chore *model.Chore, startDate time.Time) ([]model.Task, error) {
	if len(chore.AssignedTo) == 0 {
		return nil, nil
	}
	return batcher.CreateBatch(chore.ID, chore.AssignedTo, startDate)
}
