package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/choreme/choreme/internal/database"
	"github.com/choreme/choreme/internal/model"
	"github.com/choreme/choreme/internal/store"
)

func setupScheduler(t *testing.T) (*Scheduler, *sql.DB, *model.User) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h, err := store.NewHouseholdStore(db).Create("Baggins")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	u, err := store.NewUserStore(db).Create(h.ID, "Frodo", "Baggins", "frodo@shire.test", "x", "children")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	s := New(store.NewChoreStore(db), store.NewTaskStore(db), slog.Default())
	return s, db, u
}

func TestRunMaterializesDueChore(t *testing.T) {
	s, db, u := setupScheduler(t)

	// Monday.
	today := time.Date(2026, 8, 24, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return today }

	cs := store.NewChoreStore(db)
	chore, err := cs.Create(u.HouseholdID, "Dishes", 5, []int64{u.ID}, "Weekly:1,3,5", today)
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}

	outcomes, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("outcomes = %d, want 1", len(outcomes))
	}

	// Next weekly slot after Monday in {1,3,5} is Wednesday.
	if got := outcomes[0].StartDate.Format("2006-01-02"); got != "2026-08-26" {
		t.Errorf("next start = %s, want 2026-08-26", got)
	}
	if len(outcomes[0].Tasks) != 1 {
		t.Errorf("tasks = %d, want 1", len(outcomes[0].Tasks))
	}

	rec, err := cs.GetRecurrence(chore.ID)
	if err != nil {
		t.Fatalf("get recurrence: %v", err)
	}
	if got := rec.StartDate.Format("2006-01-02"); got != "2026-08-26" {
		t.Errorf("stored start = %s, want 2026-08-26", got)
	}
}

func TestRunSkipsNonRepeating(t *testing.T) {
	s, db, u := setupScheduler(t)

	cs := store.NewChoreStore(db)
	if _, err := cs.Create(u.HouseholdID, "One-off", 5, []int64{u.ID}, "None", time.Now()); err != nil {
		t.Fatalf("create chore: %v", err)
	}

	outcomes, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(outcomes) != 0 {
		t.Errorf("outcomes = %d, want 0 for non-repeating chore", len(outcomes))
	}
}

func TestRunSkipsChoreWithFutureTask(t *testing.T) {
	s, db, u := setupScheduler(t)

	today := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return today }

	cs := store.NewChoreStore(db)
	chore, err := cs.Create(u.HouseholdID, "Dishes", 5, []int64{u.ID}, "Daily", today)
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}

	// A task already exists for tomorrow, so the pass must not double up.
	ts := store.NewTaskStore(db)
	if _, err := ts.CreateBatch(chore.ID, []int64{u.ID}, today.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("create task: %v", err)
	}

	outcomes, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(outcomes) != 0 {
		t.Errorf("outcomes = %d, want 0 when a future task exists", len(outcomes))
	}

	tasks, err := ts.ListByChore(chore.ID)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("tasks = %d, want the pre-existing one only", len(tasks))
	}
}

func TestRunIsolatesBadRules(t *testing.T) {
	s, db, u := setupScheduler(t)

	today := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return today }

	cs := store.NewChoreStore(db)
	if _, err := cs.Create(u.HouseholdID, "Broken", 5, []int64{u.ID}, "None", today); err != nil {
		t.Fatalf("create chore: %v", err)
	}
	// Corrupt the stored rule directly.
	if _, err := db.Exec(`UPDATE recurrences SET rule = 'Fortnightly:2'`); err != nil {
		t.Fatalf("corrupt rule: %v", err)
	}
	if _, err := cs.Create(u.HouseholdID, "Dishes", 5, []int64{u.ID}, "Daily", today); err != nil {
		t.Fatalf("create chore: %v", err)
	}

	outcomes, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("outcomes = %d, want the healthy chore despite the broken rule", len(outcomes))
	}
	if outcomes[0].ChoreName != "Dishes" {
		t.Errorf("advanced chore = %q, want Dishes", outcomes[0].ChoreName)
	}
}

func TestStartStop(t *testing.T) {
	s, _, _ := setupScheduler(t)
	s.interval = 10 * time.Millisecond

	s.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	s.Stop()
}
