package apiv1

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/choreme/choreme/internal/model"
	"github.com/choreme/choreme/internal/store"
)

// getRedemptions lists the household's redemptions for parents and the
// caller's own for children.
func (s *Server) getRedemptions(c *gin.Context) {
	claims := getClaims(c)

	var (
		redemptions []model.Redemption
		err         error
	)
	if claims.Role.IsParental() {
		redemptions, err = s.rewards.ListRedemptionsByHousehold(claims.HouseholdID)
	} else {
		redemptions, err = s.rewards.ListRedemptionsByUser(claims.UserID)
	}
	if err != nil {
		s.logger.Error("list redemptions", "error", err)
		internalError(c, "failed to list redemptions")
		return
	}
	if redemptions == nil {
		redemptions = []model.Redemption{}
	}
	success(c, redemptions)
}

// loadHouseholdRedemption fetches the redemption and checks that its
// reward belongs to the caller's household, writing the error response
// itself on failure.
func (s *Server) loadHouseholdRedemption(c *gin.Context, id int64) *model.Redemption {
	redemption, err := s.rewards.GetRedemption(id)
	if err != nil {
		s.logger.Error("get redemption", "error", err)
		internalError(c, "failed to load redemption")
		return nil
	}
	if redemption == nil {
		notFound(c, "redemption not found")
		return nil
	}

	reward, err := s.rewards.GetByID(redemption.RewardID)
	if err != nil {
		s.logger.Error("get reward", "error", err)
		internalError(c, "failed to load redemption")
		return nil
	}
	if reward == nil || reward.HouseholdID != getClaims(c).HouseholdID {
		notFound(c, "redemption not found")
		return nil
	}
	return redemption
}

// approveRedemption resolves a pending redemption, debits the points from
// the redeemer, and records a spend entry in the ledger.
func (s *Server) approveRedemption(c *gin.Context) {
	s.resolveRedemption(c, model.RedemptionApproved)
}

// rejectRedemption declines a pending redemption without touching points.
func (s *Server) rejectRedemption(c *gin.Context) {
	s.resolveRedemption(c, model.RedemptionRejected)
}

func (s *Server) resolveRedemption(c *gin.Context, status model.RedemptionStatus) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if s.loadHouseholdRedemption(c, id) == nil {
		return
	}

	redemption, err := s.rewards.SetRedemptionStatus(id, status, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotPending) {
			badRequest(c, "redemption already resolved")
			return
		}
		s.logger.Error("resolve redemption", "error", err)
		internalError(c, "failed to resolve redemption")
		return
	}

	approved := status == model.RedemptionApproved
	if approved {
		amount := decimal.NewFromInt(int64(redemption.PointsSpent))
		if _, err := s.users.AddPoints(redemption.UserID, amount.Neg()); err != nil {
			s.logger.Error("debit points", "redemption_id", id, "error", err)
		}
		if _, err := s.ledger.Append(redemption.UserID, model.LedgerSpend, amount.Neg(), redemption.RewardTitle, nil, &redemption.ID); err != nil {
			s.logger.Error("append ledger entry", "redemption_id", id, "error", err)
		}
	}

	if s.notifier != nil {
		s.notifier.RedemptionResolved(redemption.UserID, redemption.RewardTitle, approved)
	}
	success(c, redemption)
}
