package apiv1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/choreme/choreme/internal/model"
	"github.com/choreme/choreme/internal/task"
	"github.com/choreme/choreme/internal/websocket"
)

// getAssignments returns the caller's own tasks for children and every
// household member's tasks for parents.
func (s *Server) getAssignments(c *gin.Context) {
	claims := getClaims(c)

	var (
		tasks []model.TaskWithChore
		err   error
	)
	if claims.Role.IsParental() {
		tasks, err = s.tasks.ListWithChoreByHousehold(claims.HouseholdID)
	} else {
		tasks, err = s.tasks.ListWithChoreByOwner(claims.UserID)
	}
	if err != nil {
		s.logger.Error("list assignments", "error", err)
		internalError(c, "failed to list assignments")
		return
	}
	if tasks == nil {
		tasks = []model.TaskWithChore{}
	}
	success(c, tasks)
}

// loadVisibleTask fetches the task and enforces visibility: owners see
// their own tasks, parents see any task in their household. Writes the
// error response itself on failure.
func (s *Server) loadVisibleTask(c *gin.Context, id int64) *model.Task {
	claims := getClaims(c)

	t, err := s.tasks.GetByID(id)
	if err != nil {
		s.logger.Error("get task", "error", err)
		internalError(c, "failed to load assignment")
		return nil
	}
	if t == nil {
		notFound(c, "assignment not found")
		return nil
	}

	if t.OwnerID != claims.UserID {
		if !claims.Role.IsParental() {
			notFound(c, "assignment not found")
			return nil
		}
		owner, err := s.users.GetByID(t.OwnerID)
		if err != nil {
			s.logger.Error("get task owner", "error", err)
			internalError(c, "failed to load assignment")
			return nil
		}
		if owner == nil || owner.HouseholdID != claims.HouseholdID {
			notFound(c, "assignment not found")
			return nil
		}
	}
	return t
}

func (s *Server) getAssignment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	t := s.loadVisibleTask(c, id)
	if t == nil {
		return
	}
	success(c, t)
}

// completeAssignment marks the task finished, pending parent approval.
func (s *Server) completeAssignment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if s.loadVisibleTask(c, id) == nil {
		return
	}

	t, err := s.tasks.SetStatus(id, task.StatusFinished, time.Now())
	if err != nil {
		if errors.Is(err, task.ErrIllegalTransition) {
			fail(c, http.StatusConflict, "assignment cannot be completed in its current state")
			return
		}
		s.logger.Error("complete assignment", "error", err)
		internalError(c, "failed to complete assignment")
		return
	}

	s.hub.Broadcast(getClaims(c).HouseholdID, websocket.NewMessage("task", "finished", id, nil))
	success(c, t)
}

// approveAssignment pays out a finished task: the status moves to paid,
// the chore's points are credited to the owner, and an earn entry lands
// in the ledger.
func (s *Server) approveAssignment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if s.loadVisibleTask(c, id) == nil {
		return
	}

	t, err := s.tasks.SetStatus(id, task.StatusPaid, time.Now())
	if err != nil {
		if errors.Is(err, task.ErrIllegalTransition) {
			fail(c, http.StatusConflict, "assignment must be completed before approval")
			return
		}
		s.logger.Error("approve assignment", "error", err)
		internalError(c, "failed to approve assignment")
		return
	}

	choreName := ""
	points := 0
	if t.ChoreID != nil {
		chore, err := s.chores.GetByID(*t.ChoreID)
		if err != nil {
			s.logger.Error("get chore", "error", err)
		} else if chore != nil {
			choreName = chore.Name
			points = chore.Points
		}
	}

	if points > 0 {
		amount := decimal.NewFromInt(int64(points))
		if _, err := s.users.AddPoints(t.OwnerID, amount); err != nil {
			s.logger.Error("credit points", "task_id", id, "error", err)
		}
		if _, err := s.ledger.Append(t.OwnerID, model.LedgerEarn, amount, choreName, &t.ID, nil); err != nil {
			s.logger.Error("append ledger entry", "task_id", id, "error", err)
		}
		if s.notifier != nil {
			s.notifier.TaskPaid(t.OwnerID, choreName, points)
		}
	}

	s.hub.Broadcast(getClaims(c).HouseholdID, websocket.NewMessage("task", "paid", id, nil))
	success(c, t)
}

// rejectAssignment sends a finished task back to unfinished.
func (s *Server) rejectAssignment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if s.loadVisibleTask(c, id) == nil {
		return
	}

	t, err := s.tasks.SetStatus(id, task.StatusUnfinished, time.Now())
	if err != nil {
		if errors.Is(err, task.ErrIllegalTransition) {
			fail(c, http.StatusConflict, "assignment cannot be rejected in its current state")
			return
		}
		s.logger.Error("reject assignment", "error", err)
		internalError(c, "failed to reject assignment")
		return
	}

	s.hub.Broadcast(getClaims(c).HouseholdID, websocket.NewMessage("task", "unfinished", id, nil))
	success(c, t)
}
