package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type LedgerType string

const (
	LedgerEarn   LedgerType = "earn"
	LedgerSpend  LedgerType = "spend"
	LedgerAdjust LedgerType = "adjust"
)

type LedgerEntry struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	Type         LedgerType      `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	TaskID       *int64          `json:"task_id,omitempty"`
	RedemptionID *int64          `json:"redemption_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
