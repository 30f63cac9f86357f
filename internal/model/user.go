package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role controls which API surfaces a user may exercise.
type Role string

const (
	RoleParent   Role = "parent"
	RoleChildren Role = "children"
	RoleAdmin    Role = "admin"
)

// IsParental reports whether the role may perform parent-side actions
// (chore management, paying tasks, approving redemptions).
func (r Role) IsParental() bool {
	return r == RoleParent || r == RoleAdmin
}

type User struct {
	ID           int64           `json:"id"`
	HouseholdID  int64           `json:"household_id"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Role         Role            `json:"role"`
	PointsOwned  decimal.Decimal `json:"pointsOwned"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type Household struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"-"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
