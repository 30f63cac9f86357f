package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/choreme/choreme/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var points string

	err := scanner.Scan(
		&u.ID, &u.HouseholdID, &u.FirstName, &u.LastName, &u.Email,
		&u.PasswordHash, &u.Role, &points, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.PointsOwned, err = decimal.NewFromString(points)
	if err != nil {
		return nil, fmt.Errorf("parse points_owned %q: %w", points, err)
	}
	return &u, nil
}

const userCols = `id, household_id, first_name, last_name, email, password_hash, role, points_owned, created_at, updated_at`

// IsDuplicateEmail reports whether err is the unique-constraint violation
// on users.email.
func IsDuplicateEmail(err error) bool {
	return err != nil && strings.Contains(err.Error(), "users.email")
}

func (s *UserStore) Create(householdID int64, firstName, lastName, email, passwordHash string, role model.Role) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (household_id, first_name, last_name, email, password_hash, role) VALUES (?, ?, ?, ?, ?, ?)`,
		householdID, firstName, lastName, email, passwordHash, role,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) ListByHousehold(householdID int64) ([]model.User, error) {
	rows, err := s.db.Query(
		`SELECT `+userCols+` FROM users WHERE household_id = ? ORDER BY first_name ASC, last_name ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *UserStore) UpdateProfile(id int64, firstName, lastName, email string) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET first_name = ?, last_name = ?, email = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		firstName, lastName, email, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetByID(id)
}

// AddPoints increments points_owned by delta (may be negative). The
// read and write share one transaction so concurrent adjustments cannot
// lose an update.
func (s *UserStore) AddPoints(id int64, delta decimal.Decimal) (*model.User, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var points string
	err = tx.QueryRow(`SELECT points_owned FROM users WHERE id = ?`, id).Scan(&points)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read points: %w", err)
	}
	cur, err := decimal.NewFromString(points)
	if err != nil {
		return nil, fmt.Errorf("parse points_owned %q: %w", points, err)
	}

	if _, err := tx.Exec(
		`UPDATE users SET points_owned = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		cur.Add(delta).String(), id,
	); err != nil {
		return nil, fmt.Errorf("add points: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}
