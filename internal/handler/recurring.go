package handler

import (
	"log/slog"
	"net/http"

	"github.com/choreme/choreme/internal/scheduler"
)

type RecurringHandler struct {
	scheduler *scheduler.Scheduler
	logger    *slog.Logger
}

func NewRecurringHandler(s *scheduler.Scheduler, logger *slog.Logger) *RecurringHandler {
	return &RecurringHandler{
		scheduler: s,
		logger:    logger.With("component", "recurring"),
	}
}

// Run triggers one recurrence pass on demand. The scheduler also runs
// this on its own ticker; the endpoint remains for external cron setups.
func (h *RecurringHandler) Run(w http.ResponseWriter, r *http.Request) {
	outcomes, err := h.scheduler.Run(r.Context())
	if err != nil {
		h.logger.Error("recurrence pass", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if outcomes == nil {
		outcomes = []scheduler.Outcome{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Recurring chores checked",
		"result":  outcomes,
	})
}
