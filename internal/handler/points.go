package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/choreme/choreme/internal/model"
	"github.com/choreme/choreme/internal/store"
)

type PointsHandler struct {
	users  *store.UserStore
	ledger *store.LedgerStore
	logger *slog.Logger
}

func NewPointsHandler(users *store.UserStore, ledger *store.LedgerStore, logger *slog.Logger) *PointsHandler {
	return &PointsHandler{
		users:  users,
		ledger: ledger,
		logger: logger.With("component", "points"),
	}
}

// Add splits a point total evenly across the given users, crediting each
// user's balance and recording an adjust ledger entry per user.
func (h *PointsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserIDs []int64 `json:"userIds"`
		Points  int     `json:"points"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid Data")
		return
	}
	if len(req.UserIDs) == 0 {
		writeMessage(w, http.StatusBadRequest, "Invalid Data")
		return
	}

	share := decimal.NewFromInt(int64(req.Points)).
		Div(decimal.NewFromInt(int64(len(req.UserIDs))))

	for _, userID := range req.UserIDs {
		user, err := h.users.AddPoints(userID, share)
		if err != nil {
			h.logger.Error("add points", "user_id", userID, "error", err)
			writeMessage(w, http.StatusInternalServerError, "Something went wrong")
			return
		}
		if user == nil {
			writeMessage(w, http.StatusInternalServerError, "Something went wrong")
			return
		}

		if _, err := h.ledger.Append(userID, model.LedgerAdjust, share, "Points added by parent", nil, nil); err != nil {
			h.logger.Error("append ledger entry", "user_id", userID, "error", err)
			writeMessage(w, http.StatusInternalServerError, "Something went wrong")
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
