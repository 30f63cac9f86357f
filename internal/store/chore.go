package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/choreme/choreme/internal/model"
)

type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

// IsDuplicateChore reports whether err is the unique-constraint violation
// on the (household, name) chore index. SQLite names the columns, not the
// index, in its constraint errors.
func IsDuplicateChore(err error) bool {
	return err != nil && strings.Contains(err.Error(), "chores.household_id, chores.name")
}

func scanChore(scanner interface{ Scan(...any) error }) (*model.Chore, error) {
	var c model.Chore
	err := scanner.Scan(&c.ID, &c.HouseholdID, &c.Name, &c.Points, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const choreCols = `id, household_id, name, points, created_at, updated_at`

// Create inserts the chore, its assignee list, and its recurrence rule in
// one transaction. A partially created chore never becomes visible.
func (s *ChoreStore) Create(householdID int64, name string, points int, assignedTo []int64, rule string, startDate time.Time) (*model.Chore, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO chores (household_id, name, points) VALUES (?, ?, ?)`,
		householdID, name, points,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for _, userID := range assignedTo {
		if _, err := tx.Exec(
			`INSERT INTO chore_assignees (chore_id, user_id) VALUES (?, ?)`,
			id, userID,
		); err != nil {
			return nil, fmt.Errorf("insert assignee: %w", err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO recurrences (chore_id, rule, start_date) VALUES (?, ?, ?)`,
		id, rule, startDate,
	); err != nil {
		return nil, fmt.Errorf("insert recurrence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChoreStore) GetByID(id int64) (*model.Chore, error) {
	row := s.db.QueryRow(`SELECT `+choreCols+` FROM chores WHERE id = ?`, id)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}

	c.AssignedTo, err = s.listAssignees(id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ChoreStore) listAssignees(choreID int64) ([]int64, error) {
	rows, err := s.db.Query(
		`SELECT user_id FROM chore_assignees WHERE chore_id = ? ORDER BY user_id ASC`,
		choreID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignees: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan assignee: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *ChoreStore) ListByHousehold(householdID int64) ([]model.Chore, error) {
	rows, err := s.db.Query(
		`SELECT `+choreCols+` FROM chores WHERE household_id = ? ORDER BY name ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range chores {
		chores[i].AssignedTo, err = s.listAssignees(chores[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return chores, nil
}

// Update rewrites the chore fields and replaces its assignee list in one
// transaction.
func (s *ChoreStore) Update(id int64, name string, points int, assignedTo []int64) (*model.Chore, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`UPDATE chores SET name = ?, points = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, points, id,
	); err != nil {
		return nil, fmt.Errorf("update chore: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM chore_assignees WHERE chore_id = ?`, id); err != nil {
		return nil, fmt.Errorf("clear assignees: %w", err)
	}
	for _, userID := range assignedTo {
		if _, err := tx.Exec(
			`INSERT INTO chore_assignees (chore_id, user_id) VALUES (?, ?)`,
			id, userID,
		); err != nil {
			return nil, fmt.Errorf("insert assignee: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes the chore. Its recurrence and assignee rows cascade;
// existing tasks are kept with a nulled chore reference.
func (s *ChoreStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM chores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	return nil
}

// --- Recurrence methods ---

func scanRecurrence(scanner interface{ Scan(...any) error }) (*model.Recurrence, error) {
	var r model.Recurrence
	err := scanner.Scan(&r.ID, &r.ChoreID, &r.Rule, &r.StartDate, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const recurrenceCols = `id, chore_id, rule, start_date, created_at`

func (s *ChoreStore) GetRecurrence(choreID int64) (*model.Recurrence, error) {
	row := s.db.QueryRow(`SELECT `+recurrenceCols+` FROM recurrences WHERE chore_id = ?`, choreID)
	r, err := scanRecurrence(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recurrence: %w", err)
	}
	return r, nil
}

func (s *ChoreStore) ListRecurrences() ([]model.Recurrence, error) {
	rows, err := s.db.Query(`SELECT ` + recurrenceCols + ` FROM recurrences ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list recurrences: %w", err)
	}
	defer rows.Close()

	var recs []model.Recurrence
	for rows.Next() {
		r, err := scanRecurrence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurrence: %w", err)
		}
		recs = append(recs, *r)
	}
	return recs, rows.Err()
}

func (s *ChoreStore) UpdateRecurrence(choreID int64, rule string, startDate time.Time) error {
	_, err := s.db.Exec(
		`UPDATE recurrences SET rule = ?, start_date = ? WHERE chore_id = ?`,
		rule, startDate, choreID,
	)
	if err != nil {
		return fmt.Errorf("update recurrence: %w", err)
	}
	return nil
}

func (s *ChoreStore) UpdateRecurrenceStartDate(choreID int64, startDate time.Time) error {
	_, err := s.db.Exec(
		`UPDATE recurrences SET start_date = ? WHERE chore_id = ?`,
		startDate, choreID,
	)
	if err != nil {
		return fmt.Errorf("update recurrence start date: %w", err)
	}
	return nil
}
