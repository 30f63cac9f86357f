package apiv1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/choreme/choreme/internal/model"
	"github.com/choreme/choreme/internal/store"
	"github.com/choreme/choreme/internal/task"
	"github.com/choreme/choreme/internal/websocket"
)

type choreRequest struct {
	Name       string  `json:"name" binding:"required"`
	Points     int     `json:"points" binding:"min=0"`
	AssignedTo []int64 `json:"assigned_to"`
	Recurrence string  `json:"recurrence" binding:"required,rrule"`
	StartDate  string  `json:"start_date"`
}

// choreView is a chore together with its recurrence rule.
type choreView struct {
	model.Chore
	Recurrence string    `json:"recurrence"`
	StartDate  time.Time `json:"start_date"`
}

func (s *Server) choreView(chore *model.Chore) (choreView, error) {
	view := choreView{Chore: *chore}
	rec, err := s.chores.GetRecurrence(chore.ID)
	if err != nil {
		return view, err
	}
	if rec != nil {
		view.Recurrence = rec.Rule
		view.StartDate = rec.StartDate
	}
	return view, nil
}

// parseStartDate accepts a bare date or RFC 3339, defaulting to now.
func parseStartDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Now(), true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func (s *Server) getChores(c *gin.Context) {
	claims := getClaims(c)

	chores, err := s.chores.ListByHousehold(claims.HouseholdID)
	if err != nil {
		s.logger.Error("list chores", "error", err)
		internalError(c, "failed to list chores")
		return
	}

	views := make([]choreView, 0, len(chores))
	for i := range chores {
		view, err := s.choreView(&chores[i])
		if err != nil {
			s.logger.Error("get recurrence", "error", err)
			internalError(c, "failed to list chores")
			return
		}
		views = append(views, view)
	}
	success(c, views)
}

func (s *Server) createChore(c *gin.Context) {
	claims := getClaims(c)

	var req choreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	startDate, ok := parseStartDate(req.StartDate)
	if !ok {
		badRequest(c, "invalid start_date")
		return
	}

	chore, err := s.chores.Create(claims.HouseholdID, req.Name, req.Points, req.AssignedTo, req.Recurrence, startDate)
	if err != nil {
		if store.IsDuplicateChore(err) {
			fail(c, http.StatusConflict, "chore already exists")
			return
		}
		s.logger.Error("create chore", "error", err)
		internalError(c, "failed to create chore")
		return
	}

	if _, err := task.Materialize(s.tasks, chore, startDate); err != nil {
		s.logger.Error("materialize tasks", "chore_id", chore.ID, "error", err)
		internalError(c, "failed to create tasks")
		return
	}

	s.hub.Broadcast(claims.HouseholdID, websocket.NewMessage("chore", "created", chore.ID, nil))

	view, err := s.choreView(chore)
	if err != nil {
		s.logger.Error("get recurrence", "error", err)
		internalError(c, "failed to load chore")
		return
	}
	created(c, view)
}

// loadHouseholdChore fetches the chore and enforces household ownership,
// writing the error response itself on failure.
func (s *Server) loadHouseholdChore(c *gin.Context, id int64) *model.Chore {
	chore, err := s.chores.GetByID(id)
	if err != nil {
		s.logger.Error("get chore", "error", err)
		internalError(c, "failed to load chore")
		return nil
	}
	if chore == nil || chore.HouseholdID != getClaims(c).HouseholdID {
		notFound(c, "chore not found")
		return nil
	}
	return chore
}

func (s *Server) getChore(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	chore := s.loadHouseholdChore(c, id)
	if chore == nil {
		return
	}

	view, err := s.choreView(chore)
	if err != nil {
		s.logger.Error("get recurrence", "error", err)
		internalError(c, "failed to load chore")
		return
	}
	success(c, view)
}

func (s *Server) updateChore(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if s.loadHouseholdChore(c, id) == nil {
		return
	}

	var req choreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	startDate, ok := parseStartDate(req.StartDate)
	if !ok {
		badRequest(c, "invalid start_date")
		return
	}

	chore, err := s.chores.Update(id, req.Name, req.Points, req.AssignedTo)
	if err != nil {
		if store.IsDuplicateChore(err) {
			fail(c, http.StatusConflict, "chore already exists")
			return
		}
		s.logger.Error("update chore", "error", err)
		internalError(c, "failed to update chore")
		return
	}

	if err := s.chores.UpdateRecurrence(id, req.Recurrence, startDate); err != nil {
		s.logger.Error("update recurrence", "error", err)
		internalError(c, "failed to update chore")
		return
	}

	s.hub.Broadcast(getClaims(c).HouseholdID, websocket.NewMessage("chore", "updated", id, nil))

	view, err := s.choreView(chore)
	if err != nil {
		s.logger.Error("get recurrence", "error", err)
		internalError(c, "failed to load chore")
		return
	}
	success(c, view)
}

func (s *Server) deleteChore(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if s.loadHouseholdChore(c, id) == nil {
		return
	}

	if err := s.chores.Delete(id); err != nil {
		s.logger.Error("delete chore", "error", err)
		internalError(c, "failed to delete chore")
		return
	}

	s.hub.Broadcast(getClaims(c).HouseholdID, websocket.NewMessage("chore", "deleted", id, nil))
	success(c, gin.H{"deleted": id})
}
