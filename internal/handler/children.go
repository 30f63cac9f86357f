package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/choreme/choreme/internal/auth"
	"github.com/choreme/choreme/internal/model"
	"github.com/choreme/choreme/internal/store"
	"github.com/choreme/choreme/internal/task"
	"github.com/choreme/choreme/internal/websocket"
)

type ChildrenHandler struct {
	tasks  *store.TaskStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewChildrenHandler(tasks *store.TaskStore, hub *websocket.Hub, logger *slog.Logger) *ChildrenHandler {
	return &ChildrenHandler{
		tasks:  tasks,
		hub:    hub,
		logger: logger.With("component", "children"),
	}
}

// Finish marks the caller's task done. Only the task's owner may finish it.
func (h *ChildrenHandler) Finish(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid Data")
		return
	}

	t, err := h.tasks.GetByID(id)
	if err != nil {
		h.logger.Error("get task", "task_id", id, "error", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if t == nil || t.OwnerID != auth.UserID(r.Context()) {
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	if _, err := h.tasks.SetStatus(id, task.StatusFinished, time.Now()); err != nil {
		if errors.Is(err, task.ErrIllegalTransition) {
			writeMessage(w, http.StatusConflict, "Illegal task transition")
			return
		}
		h.logger.Error("finish task", "task_id", id, "error", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	h.hub.Broadcast(auth.HouseholdID(r.Context()), websocket.NewMessage("task", "finished", id, nil))
	writeMessage(w, http.StatusCreated, "Chore finished")
}

// Tasks lists the caller's tasks joined with their chores.
func (h *ChildrenHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListWithChoreByOwner(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if tasks == nil {
		tasks = []model.TaskWithChore{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Tasks found",
		"tasks":   tasks,
	})
}

// Owed reports the caller's finished-unpaid and paid point totals.
func (h *ChildrenHandler) Owed(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	owed, err := h.tasks.Owed(userID)
	if err != nil {
		h.logger.Error("sum owed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	rewarded, err := h.tasks.Rewarded(userID)
	if err != nil {
		h.logger.Error("sum rewarded", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Totals found",
		"owed":     owed,
		"rewarded": rewarded,
	})
}
