package apiv1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/choreme/choreme/internal/model"
)

// getLedger returns the caller's own ledger, or another household
// member's when a parent passes ?user_id=.
func (s *Server) getLedger(c *gin.Context) {
	userID, ok := s.ledgerSubject(c)
	if !ok {
		return
	}

	entries, err := s.ledger.ListByUser(userID)
	if err != nil {
		s.logger.Error("list ledger", "error", err)
		internalError(c, "failed to list ledger entries")
		return
	}
	if entries == nil {
		entries = []model.LedgerEntry{}
	}
	success(c, entries)
}

func (s *Server) getBalance(c *gin.Context) {
	userID, ok := s.ledgerSubject(c)
	if !ok {
		return
	}

	balance, err := s.ledger.Balance(userID)
	if err != nil {
		s.logger.Error("ledger balance", "error", err)
		internalError(c, "failed to compute balance")
		return
	}
	success(c, gin.H{"user_id": userID, "balance": balance})
}

// ledgerSubject resolves whose ledger the request targets. Children may
// only see their own; parents may name any household member.
func (s *Server) ledgerSubject(c *gin.Context) (int64, bool) {
	claims := getClaims(c)

	raw := c.Query("user_id")
	if raw == "" {
		return claims.UserID, true
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		badRequest(c, "invalid user_id")
		return 0, false
	}
	if userID == claims.UserID {
		return userID, true
	}
	if !claims.Role.IsParental() {
		fail(c, http.StatusForbidden, "cannot view another user's ledger")
		return 0, false
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		s.logger.Error("get user", "error", err)
		internalError(c, "failed to load user")
		return 0, false
	}
	if user == nil || user.HouseholdID != claims.HouseholdID {
		notFound(c, "user not found")
		return 0, false
	}
	return userID, true
}

type adjustRequest struct {
	UserID      int64           `json:"user_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
}

// adjustLedger lets a parent grant or revoke points outside the normal
// chore flow, keeping points_owned and the ledger in step.
func (s *Server) adjustLedger(c *gin.Context) {
	claims := getClaims(c)

	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := s.users.GetByID(req.UserID)
	if err != nil {
		s.logger.Error("get user", "error", err)
		internalError(c, "failed to load user")
		return
	}
	if user == nil || user.HouseholdID != claims.HouseholdID {
		notFound(c, "user not found")
		return
	}

	description := req.Description
	if description == "" {
		description = "Manual adjustment"
	}

	if _, err := s.users.AddPoints(req.UserID, req.Amount); err != nil {
		s.logger.Error("adjust points", "error", err)
		internalError(c, "failed to adjust points")
		return
	}
	entry, err := s.ledger.Append(req.UserID, model.LedgerAdjust, req.Amount, description, nil, nil)
	if err != nil {
		s.logger.Error("append ledger entry", "error", err)
		internalError(c, "failed to record adjustment")
		return
	}
	created(c, entry)
}
