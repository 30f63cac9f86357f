package model

import "time"

type Reward struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PointCost   int       `json:"point_cost"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

type RedemptionStatus string

const (
	RedemptionPending  RedemptionStatus = "pending"
	RedemptionApproved RedemptionStatus = "approved"
	RedemptionRejected RedemptionStatus = "rejected"
)

type Redemption struct {
	ID          int64            `json:"id"`
	RewardID    int64            `json:"reward_id"`
	UserID      int64            `json:"user_id"`
	Status      RedemptionStatus `json:"status"`
	PointsSpent int              `json:"points_spent"`
	RedeemedAt  time.Time        `json:"redeemed_at"`
	ApprovedAt  *time.Time       `json:"approved_at,omitempty"`

	RewardTitle string `json:"reward_title,omitempty"`
}
