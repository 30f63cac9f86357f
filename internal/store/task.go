package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/choreme/choreme/internal/model"
	"github.com/choreme/choreme/internal/task"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var choreID sql.NullInt64
	var finished, paid sql.NullTime

	err := scanner.Scan(
		&t.ID, &choreID, &t.OwnerID, &t.StartDate,
		&finished, &paid, &t.Status, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if choreID.Valid {
		t.ChoreID = &choreID.Int64
	}
	if finished.Valid {
		t.FinishedDate = &finished.Time
	}
	if paid.Valid {
		t.PaidDate = &paid.Time
	}
	return &t, nil
}

const taskCols = `id, chore_id, owner_id, start_date, finished_date, paid_date, status, created_at`

// CreateBatch inserts one unfinished task per owner, all dated startDate,
// in a single transaction. Either every assignee gets a task or none do.
func (s *TaskStore) CreateBatch(choreID int64, ownerIDs []int64, startDate time.Time) ([]model.Task, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(ownerIDs))
	for _, ownerID := range ownerIDs {
		result, err := tx.Exec(
			`INSERT INTO tasks (chore_id, owner_id, start_date, status) VALUES (?, ?, ?, ?)`,
			choreID, ownerID, startDate, task.StatusUnfinished,
		)
		if err != nil {
			return nil, fmt.Errorf("insert task: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	tasks := make([]model.Task, 0, len(ids))
	for _, id := range ids {
		t, err := s.GetByID(id)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) ListByChore(choreID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE chore_id = ? ORDER BY start_date ASC, id ASC`,
		choreID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks by chore: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (s *TaskStore) ListByOwner(ownerID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE owner_id = ? ORDER BY start_date DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks by owner: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// HasTaskAfter reports whether the chore already has a task whose start
// date (at day granularity) is strictly after the given day. The bound
// day is formatted in Go because date() returns NULL for anything it
// cannot parse, and NULL comparisons silently match nothing.
func (s *TaskStore) HasTaskAfter(choreID int64, day time.Time) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE chore_id = ? AND date(start_date) > date(?)`,
		choreID, day.Format("2006-01-02"),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count future tasks: %w", err)
	}
	return n > 0, nil
}

// SetStatus moves the task through the status machine. Completing stamps
// finished_date, rejecting clears it, paying stamps paid_date. Illegal
// moves return task.ErrIllegalTransition; paid_date is never cleared.
func (s *TaskStore) SetStatus(id int64, next task.Status, at time.Time) (*model.Task, error) {
	t, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}

	cur := currentStatus(t)
	if _, err := cur.Transition(next); err != nil {
		return nil, err
	}

	switch next {
	case task.StatusFinished:
		_, err = s.db.Exec(
			`UPDATE tasks SET status = ?, finished_date = ? WHERE id = ?`,
			task.StatusFinished, at, id,
		)
	case task.StatusUnfinished:
		_, err = s.db.Exec(
			`UPDATE tasks SET status = ?, finished_date = NULL WHERE id = ?`,
			task.StatusUnfinished, id,
		)
	case task.StatusPaid:
		_, err = s.db.Exec(
			`UPDATE tasks SET status = ?, paid_date = ? WHERE id = ?`,
			task.StatusPaid, at, id,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("set task status: %w", err)
	}
	return s.GetByID(id)
}

// currentStatus derives the machine state from the stored row. Rows
// written before the paid status existed carry status=finished with a
// paid_date; those count as paid.
func currentStatus(t *model.Task) task.Status {
	if t.PaidDate != nil {
		return task.StatusPaid
	}
	return task.Status(t.Status)
}

// ListWithChoreByOwner returns the owner's tasks joined with chore name,
// chore points, and owner name. Tasks whose chore was deleted keep a
// zero-point placeholder row.
func (s *TaskStore) ListWithChoreByOwner(ownerID int64) ([]model.TaskWithChore, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.chore_id, t.owner_id, t.start_date, t.finished_date, t.paid_date, t.status, t.created_at,
		       COALESCE(c.name, ''), COALESCE(c.points, 0),
		       u.first_name || ' ' || u.last_name
		FROM tasks t
		LEFT JOIN chores c ON c.id = t.chore_id
		JOIN users u ON u.id = t.owner_id
		WHERE t.owner_id = ?
		ORDER BY t.start_date DESC, t.id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks with chore: %w", err)
	}
	defer rows.Close()
	return collectTasksWithChore(rows)
}

// ListWithChoreByHousehold returns every household member's tasks with
// chore and owner details, newest first.
func (s *TaskStore) ListWithChoreByHousehold(householdID int64) ([]model.TaskWithChore, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.chore_id, t.owner_id, t.start_date, t.finished_date, t.paid_date, t.status, t.created_at,
		       COALESCE(c.name, ''), COALESCE(c.points, 0),
		       u.first_name || ' ' || u.last_name
		FROM tasks t
		LEFT JOIN chores c ON c.id = t.chore_id
		JOIN users u ON u.id = t.owner_id
		WHERE u.household_id = ?
		ORDER BY t.start_date DESC, t.id DESC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list household tasks: %w", err)
	}
	defer rows.Close()
	return collectTasksWithChore(rows)
}

func collectTasksWithChore(rows *sql.Rows) ([]model.TaskWithChore, error) {
	var tasks []model.TaskWithChore
	for rows.Next() {
		var tc model.TaskWithChore
		var choreID sql.NullInt64
		var finished, paid sql.NullTime

		err := rows.Scan(
			&tc.ID, &choreID, &tc.OwnerID, &tc.StartDate,
			&finished, &paid, &tc.Status, &tc.CreatedAt,
			&tc.ChoreName, &tc.ChorePoints, &tc.OwnerName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task with chore: %w", err)
		}
		if choreID.Valid {
			tc.ChoreID = &choreID.Int64
		}
		if finished.Valid {
			tc.FinishedDate = &finished.Time
		}
		if paid.Valid {
			tc.PaidDate = &paid.Time
		}
		tasks = append(tasks, tc)
	}
	return tasks, rows.Err()
}

// Owed sums chore points over the owner's finished, unpaid tasks.
// Tasks whose chore has been deleted contribute nothing.
func (s *TaskStore) Owed(ownerID int64) (int, error) {
	return s.sumFinished(ownerID, false)
}

// Rewarded sums chore points over the owner's finished, paid tasks.
func (s *TaskStore) Rewarded(ownerID int64) (int, error) {
	return s.sumFinished(ownerID, true)
}

func (s *TaskStore) sumFinished(ownerID int64, paid bool) (int, error) {
	cond := `t.paid_date IS NULL AND t.status = 'finished'`
	if paid {
		cond = `t.paid_date IS NOT NULL`
	}

	var total int
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(c.points), 0)
		FROM tasks t
		JOIN chores c ON c.id = t.chore_id
		WHERE t.owner_id = ? AND `+cond,
		ownerID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum task points: %w", err)
	}
	return total, nil
}
