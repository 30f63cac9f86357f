package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/choreme/choreme/internal/auth"
	"github.com/choreme/choreme/internal/store"
	"github.com/choreme/choreme/internal/task"
	"github.com/choreme/choreme/internal/websocket"
)

type TaskHandler struct {
	tasks  *store.TaskStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewTaskHandler(tasks *store.TaskStore, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		hub:    hub,
		logger: logger.With("component", "task"),
	}
}

// Update applies a partial task edit from the parent pages. Status moves
// run through the transition rules; an illegal move is a 409. The
// original wrote fields straight to the document, so `paid: true` and
// `status` are both accepted and mean the same machine.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid Data")
		return
	}

	var req struct {
		Status string `json:"status"`
		Paid   bool   `json:"paid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid Data")
		return
	}

	next := task.Status(req.Status)
	if req.Paid {
		next = task.StatusPaid
	}
	if !next.Valid() {
		writeMessage(w, http.StatusBadRequest, "Invalid Data")
		return
	}

	updated, err := h.tasks.SetStatus(id, next, time.Now())
	if err != nil {
		if errors.Is(err, task.ErrIllegalTransition) {
			writeMessage(w, http.StatusConflict, "Illegal task transition")
			return
		}
		h.logger.Error("update task", "task_id", id, "error", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if updated == nil {
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	h.hub.Broadcast(auth.HouseholdID(r.Context()), websocket.NewMessage("task", string(next), id, nil))
	w.WriteHeader(http.StatusNoContent)
}
