package apiv1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/choreme/choreme/internal/model"
)

type rewardRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	PointCost   int    `json:"point_cost" binding:"required,min=1"`
	Active      *bool  `json:"active"`
}

func (r rewardRequest) active() bool {
	if r.Active == nil {
		return true
	}
	return *r.Active
}

func (s *Server) getRewards(c *gin.Context) {
	claims := getClaims(c)

	rewards, err := s.rewards.ListByHousehold(claims.HouseholdID)
	if err != nil {
		s.logger.Error("list rewards", "error", err)
		internalError(c, "failed to list rewards")
		return
	}
	if rewards == nil {
		rewards = []model.Reward{}
	}
	success(c, rewards)
}

func (s *Server) createReward(c *gin.Context) {
	claims := getClaims(c)

	var req rewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	reward, err := s.rewards.Create(claims.HouseholdID, req.Title, req.Description, req.PointCost, req.active())
	if err != nil {
		s.logger.Error("create reward", "error", err)
		internalError(c, "failed to create reward")
		return
	}
	created(c, reward)
}

// loadHouseholdReward fetches the reward and enforces household ownership,
// writing the error response itself on failure.
func (s *Server) loadHouseholdReward(c *gin.Context, id int64) *model.Reward {
	reward, err := s.rewards.GetByID(id)
	if err != nil {
		s.logger.Error("get reward", "error", err)
		internalError(c, "failed to load reward")
		return nil
	}
	if reward == nil || reward.HouseholdID != getClaims(c).HouseholdID {
		notFound(c, "reward not found")
		return nil
	}
	return reward
}

func (s *Server) getReward(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	reward := s.loadHouseholdReward(c, id)
	if reward == nil {
		return
	}
	success(c, reward)
}

func (s *Server) updateReward(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if s.loadHouseholdReward(c, id) == nil {
		return
	}

	var req rewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	reward, err := s.rewards.Update(id, req.Title, req.Description, req.PointCost, req.active())
	if err != nil {
		s.logger.Error("update reward", "error", err)
		internalError(c, "failed to update reward")
		return
	}
	success(c, reward)
}

func (s *Server) deleteReward(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if s.loadHouseholdReward(c, id) == nil {
		return
	}

	if err := s.rewards.Delete(id); err != nil {
		s.logger.Error("delete reward", "error", err)
		internalError(c, "failed to delete reward")
		return
	}
	success(c, gin.H{"deleted": id})
}

// redeemReward records a pending redemption if the caller's ledger
// balance covers the reward's cost. Points are only deducted once a
// parent approves.
func (s *Server) redeemReward(c *gin.Context) {
	claims := getClaims(c)

	id, ok := idParam(c)
	if !ok {
		return
	}
	reward := s.loadHouseholdReward(c, id)
	if reward == nil {
		return
	}
	if !reward.Active {
		badRequest(c, "reward is not active")
		return
	}

	balance, err := s.ledger.Balance(claims.UserID)
	if err != nil {
		s.logger.Error("ledger balance", "error", err)
		internalError(c, "failed to check balance")
		return
	}
	if balance.LessThan(decimal.NewFromInt(int64(reward.PointCost))) {
		fail(c, http.StatusUnprocessableEntity, "not enough points")
		return
	}

	redemption, err := s.rewards.CreateRedemption(reward.ID, claims.UserID, reward.PointCost)
	if err != nil {
		s.logger.Error("create redemption", "error", err)
		internalError(c, "failed to redeem reward")
		return
	}
	created(c, redemption)
}
