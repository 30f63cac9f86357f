package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/choreme/choreme/internal/auth"
	"github.com/choreme/choreme/internal/recurrence"
	"github.com/choreme/choreme/internal/store"
	"github.com/choreme/choreme/internal/task"
	"github.com/choreme/choreme/internal/websocket"
)

type ChoreHandler struct {
	chores *store.ChoreStore
	tasks  *store.TaskStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewChoreHandler(chores *store.ChoreStore, tasks *store.TaskStore, hub *websocket.Hub, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{
		chores: chores,
		tasks:  tasks,
		hub:    hub,
		logger: logger.With("component", "chore"),
	}
}

type choreBody struct {
	Name       string  `json:"name"`
	Points     int     `json:"points"`
	AssignedTo []int64 `json:"assignedTo"`
}

type recurrenceBody struct {
	Type      string `json:"type"`
	Repeat    []int  `json:"repeat"`
	StartDate string `json:"startDate"`
}

// Create makes the chore, its recurrence, and the first batch of tasks.
func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Chore      choreBody      `json:"chore"`
		Recurrence recurrenceBody `json:"recurrence"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid Data")
		return
	}

	req.Chore.Name = strings.TrimSpace(req.Chore.Name)
	if req.Chore.Name == "" || req.Chore.Points < 0 {
		writeMessage(w, http.StatusBadRequest, "Invalid Data")
		return
	}

	rule, err := recurrence.New(req.Recurrence.Type, req.Recurrence.Repeat)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid Data")
		return
	}

	startDate := time.Now()
	if req.Recurrence.StartDate != "" {
		startDate, err = parseDate(req.Recurrence.StartDate)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid Data")
			return
		}
	}

	householdID := auth.HouseholdID(r.Context())
	chore, err := h.chores.Create(householdID, req.Chore.Name, req.Chore.Points, req.Chore.AssignedTo, rule.String(), startDate)
	if err != nil {
		if store.IsDuplicateChore(err) {
			writeMessage(w, http.StatusBadRequest, "Chore already exists")
			return
		}
		h.logger.Error("create chore", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	if _, err := task.Materialize(h.tasks, chore, startDate); err != nil {
		h.logger.Error("materialize tasks", "chore_id", chore.ID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("chore", "created", chore.ID, nil))
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Chore created",
		"chore":   chore,
	})
}

// Update applies a partial chore and recurrence edit. The recurrence is
// only rewritten when the submitted type actually repeats.
func (h *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid Data")
		return
	}

	var req struct {
		Chore      *choreBody      `json:"chore"`
		Recurrence *recurrenceBody `json:"recurrence"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid Data")
		return
	}

	existing, err := h.chores.GetByID(id)
	if err != nil {
		h.logger.Error("get chore", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if existing == nil {
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	if req.Chore != nil {
		name := existing.Name
		if strings.TrimSpace(req.Chore.Name) != "" {
			name = strings.TrimSpace(req.Chore.Name)
		}
		points := existing.Points
		if req.Chore.Points > 0 {
			points = req.Chore.Points
		}
		assignees := existing.AssignedTo
		if req.Chore.AssignedTo != nil {
			assignees = req.Chore.AssignedTo
		}
		if _, err := h.chores.Update(id, name, points, assignees); err != nil {
			h.logger.Error("update chore", "error", err)
			writeMessage(w, http.StatusInternalServerError, "Something went wrong")
			return
		}
	}

	if req.Recurrence != nil && req.Recurrence.Type != "" && req.Recurrence.Type != "None" {
		rule, err := recurrence.New(req.Recurrence.Type, req.Recurrence.Repeat)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid Data")
			return
		}

		startDate := time.Now()
		if req.Recurrence.StartDate != "" {
			startDate, err = parseDate(req.Recurrence.StartDate)
			if err != nil {
				writeMessage(w, http.StatusBadRequest, "Invalid Data")
				return
			}
		}

		if err := h.chores.UpdateRecurrence(id, rule.String(), startDate); err != nil {
			h.logger.Error("update recurrence", "error", err)
			writeMessage(w, http.StatusInternalServerError, "Something went wrong")
			return
		}
	}

	h.hub.Broadcast(auth.HouseholdID(r.Context()), websocket.NewMessage("chore", "updated", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes the chore. Its existing tasks are kept.
func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid Data")
		return
	}

	if err := h.chores.Delete(id); err != nil {
		h.logger.Error("delete chore", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	h.hub.Broadcast(auth.HouseholdID(r.Context()), websocket.NewMessage("chore", "deleted", id, nil))
	writeMessage(w, http.StatusAccepted, "Chore deleted")
}

// List returns the household's chores with their recurrence rules.
func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())

	chores, err := h.chores.ListByHousehold(householdID)
	if err != nil {
		h.logger.Error("list chores", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	type choreWithRecurrence struct {
		Chore     any    `json:"chore"`
		Rule      string `json:"rule,omitempty"`
		Describes string `json:"describes,omitempty"`
		StartDate string `json:"startDate,omitempty"`
	}

	out := make([]choreWithRecurrence, 0, len(chores))
	for _, c := range chores {
		item := choreWithRecurrence{Chore: c}
		if rec, err := h.chores.GetRecurrence(c.ID); err == nil && rec != nil {
			item.Rule = rec.Rule
			item.StartDate = rec.StartDate.Format("2006-01-02")
			if rule, err := recurrence.Parse(rec.Rule); err == nil {
				item.Describes = rule.Describe()
			}
		}
		out = append(out, item)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Chores found",
		"chores":  out,
	})
}
