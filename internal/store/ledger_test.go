package store

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/choreme/choreme/internal/model"
)

func TestLedgerAppendAndBalance(t *testing.T) {
	db := setupTestDB(t)
	h := seedHousehold(t, db)
	frodo := seedUser(t, db, h.ID, "Frodo", "frodo@shire.test", "children")

	ls := NewLedgerStore(db)

	if _, err := ls.Append(frodo.ID, model.LedgerEarn, decimal.NewFromInt(5), "Dishes", nil, nil); err != nil {
		t.Fatalf("append earn: %v", err)
	}
	if _, err := ls.Append(frodo.ID, model.LedgerAdjust, decimal.RequireFromString("2.5"), "Points split", nil, nil); err != nil {
		t.Fatalf("append adjust: %v", err)
	}
	if _, err := ls.Append(frodo.ID, model.LedgerSpend, decimal.NewFromInt(-3), "Movie night", nil, nil); err != nil {
		t.Fatalf("append spend: %v", err)
	}

	balance, err := ls.Balance(frodo.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.String() != "4.5" {
		t.Errorf("balance = %s, want 4.5", balance)
	}

	entries, err := ls.ListByUser(frodo.ID)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
}

func TestLedgerEntryReferences(t *testing.T) {
	db := setupTestDB(t)
	h := seedHousehold(t, db)
	frodo := seedUser(t, db, h.ID, "Frodo", "frodo@shire.test", "children")
	c := seedChore(t, db, h.ID, "Dishes", 5, []int64{frodo.ID})

	tasks, err := NewTaskStore(db).CreateBatch(c.ID, []int64{frodo.ID}, time.Now())
	if err != nil {
		t.Fatalf("create tasks: %v", err)
	}

	ls := NewLedgerStore(db)
	e, err := ls.Append(frodo.ID, model.LedgerEarn, decimal.NewFromInt(5), "Dishes", &tasks[0].ID, nil)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if e.TaskID == nil || *e.TaskID != tasks[0].ID {
		t.Errorf("task reference = %v, want %d", e.TaskID, tasks[0].ID)
	}
	if e.RedemptionID != nil {
		t.Error("redemption reference set unexpectedly")
	}
}

func TestLedgerBalanceEmpty(t *testing.T) {
	db := setupTestDB(t)
	h := seedHousehold(t, db)
	frodo := seedUser(t, db, h.ID, "Frodo", "frodo@shire.test", "children")

	balance, err := NewLedgerStore(db).Balance(frodo.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.IsZero() {
		t.Errorf("balance = %s, want 0", balance)
	}
}
