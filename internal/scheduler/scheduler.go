package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/choreme/choreme/internal/model"
	"github.com/choreme/choreme/internal/recurrence"
	"github.com/choreme/choreme/internal/store"
	"github.com/choreme/choreme/internal/task"
)

// maxConcurrent bounds how many recurrences one pass advances at a time.
const maxConcurrent = 4

// Notifier receives task assignment events. *push.Notifier satisfies it.
type Notifier interface {
	TaskAssigned(ownerID int64, choreName string, startDate time.Time)
}

// Outcome describes one chore whose recurrence was advanced during a pass.
type Outcome struct {
	ChoreID   int64        `json:"chore"`
	ChoreName string       `json:"choreName"`
	Rule      string       `json:"rule"`
	StartDate time.Time    `json:"startDate"`
	Tasks     []model.Task `json:"tasks"`
}

// Scheduler advances recurring chores: when a chore's latest task is due
// or overdue, it computes the next occurrence date and materializes a
// fresh batch of tasks. It runs on a ticker and can also be driven
// directly through Run.
type Scheduler struct {
	mu       sync.RWMutex
	chores   *store.ChoreStore
	tasks    *store.TaskStore
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
	notifier Notifier
	cancel   context.CancelFunc
	done     chan struct{}
}

func New(chores *store.ChoreStore, tasks *store.TaskStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		chores:   chores,
		tasks:    tasks,
		logger:   logger.With("component", "scheduler"),
		interval: time.Hour,
		now:      time.Now,
	}
}

// SetNotifier wires an optional notifier that is told about every task
// the scheduler materializes.
func (s *Scheduler) SetNotifier(n Notifier) {
	s.notifier = n
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Run(ctx); err != nil {
					s.logger.Error("recurrence pass failed", "error", err)
				}
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Run performs one materialization pass over every stored recurrence and
// returns the chores it advanced. A failure on one chore is logged and
// skipped; it never aborts the rest of the pass.
func (s *Scheduler) Run(ctx context.Context) ([]Outcome, error) {
	recs, err := s.chores.ListRecurrences()
	if err != nil {
		return nil, err
	}

	today := s.now()

	var mu sync.Mutex
	var outcomes []Outcome

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for _, rec := range recs {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outcome, err := s.advance(rec, today)
			if err != nil {
				s.logger.Error("advance recurrence failed",
					"chore_id", rec.ChoreID, "rule", rec.Rule, "error", err)
				return nil
			}
			if outcome != nil {
				mu.Lock()
				outcomes = append(outcomes, *outcome)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	return outcomes, nil
}

// advance moves one recurrence forward if it is due. It returns nil when
// the recurrence does not repeat, its chore is gone, or tasks for a
// future occurrence already exist.
func (s *Scheduler) advance(rec model.Recurrence, today time.Time) (*Outcome, error) {
	rule, err := recurrence.Parse(rec.Rule)
	if err != nil {
		return nil, err
	}
	if rule.Type == recurrence.None {
		return nil, nil
	}

	chore, err := s.chores.GetByID(rec.ChoreID)
	if err != nil {
		return nil, err
	}
	if chore == nil {
		s.logger.Warn("recurrence references missing chore", "chore_id", rec.ChoreID)
		return nil, nil
	}

	// Already materialized past today, nothing to do yet.
	pending, err := s.tasks.HasTaskAfter(chore.ID, today)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, nil
	}

	next := recurrence.NextStartDate(rule, today)
	if err := s.chores.UpdateRecurrenceStartDate(chore.ID, next); err != nil {
		return nil, err
	}

	tasks, err := task.Materialize(s.tasks, chore, next)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		for _, tk := range tasks {
			s.notifier.TaskAssigned(tk.OwnerID, chore.Name, next)
		}
	}

	s.logger.Info("materialized recurring chore",
		"chore_id", chore.ID, "name", chore.Name, "next", next.Format("2006-01-02"), "tasks", len(tasks))

	return &Outcome{
		ChoreID:   chore.ID,
		ChoreName: chore.Name,
		Rule:      rec.Rule,
		StartDate: next,
		Tasks:     tasks,
	}, nil
}
