package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/choreme/choreme/internal/model"
)

// ErrNotPending is returned when resolving a redemption that has already
// been approved or rejected.
var ErrNotPending = errors.New("redemption is not pending")

type RewardStore struct {
	db *sql.DB
}

func NewRewardStore(db *sql.DB) *RewardStore {
	return &RewardStore{db: db}
}

func scanReward(scanner interface{ Scan(...any) error }) (*model.Reward, error) {
	var r model.Reward
	var active int

	err := scanner.Scan(&r.ID, &r.HouseholdID, &r.Title, &r.Description, &r.PointCost, &active, &r.CreatedAt)
	if err != nil {
		return nil, err
	}

	r.Active = active != 0
	return &r, nil
}

const rewardCols = `id, household_id, title, description, point_cost, active, created_at`

func (s *RewardStore) Create(householdID int64, title, description string, pointCost int, active bool) (*model.Reward, error) {
	var a int
	if active {
		a = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO rewards (household_id, title, description, point_cost, active) VALUES (?, ?, ?, ?, ?)`,
		householdID, title, description, pointCost, a,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reward: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RewardStore) GetByID(id int64) (*model.Reward, error) {
	row := s.db.QueryRow(`SELECT `+rewardCols+` FROM rewards WHERE id = ?`, id)
	r, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return r, nil
}

// ListByHousehold returns the household's rewards, active first.
func (s *RewardStore) ListByHousehold(householdID int64) ([]model.Reward, error) {
	rows, err := s.db.Query(
		`SELECT `+rewardCols+` FROM rewards WHERE household_id = ? ORDER BY active DESC, title ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, *r)
	}
	return rewards, rows.Err()
}

func (s *RewardStore) Update(id int64, title, description string, pointCost int, active bool) (*model.Reward, error) {
	var a int
	if active {
		a = 1
	}

	_, err := s.db.Exec(
		`UPDATE rewards SET title = ?, description = ?, point_cost = ?, active = ? WHERE id = ?`,
		title, description, pointCost, a, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update reward: %w", err)
	}
	return s.GetByID(id)
}

func (s *RewardStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM rewards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reward: %w", err)
	}
	return nil
}

// --- Redemption methods ---

func scanRedemption(scanner interface{ Scan(...any) error }) (*model.Redemption, error) {
	var r model.Redemption
	var approvedAt sql.NullTime

	err := scanner.Scan(&r.ID, &r.RewardID, &r.UserID, &r.Status, &r.PointsSpent, &r.RedeemedAt, &approvedAt, &r.RewardTitle)
	if err != nil {
		return nil, err
	}

	if approvedAt.Valid {
		r.ApprovedAt = &approvedAt.Time
	}
	return &r, nil
}

const redemptionCols = `r.id, r.reward_id, r.user_id, r.status, r.points_spent, r.redeemed_at, r.approved_at, w.title`

// CreateRedemption records a pending redemption of the reward.
func (s *RewardStore) CreateRedemption(rewardID, userID int64, pointsSpent int) (*model.Redemption, error) {
	result, err := s.db.Exec(
		`INSERT INTO redemptions (reward_id, user_id, points_spent) VALUES (?, ?, ?)`,
		rewardID, userID, pointsSpent,
	)
	if err != nil {
		return nil, fmt.Errorf("insert redemption: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetRedemption(id)
}

func (s *RewardStore) GetRedemption(id int64) (*model.Redemption, error) {
	row := s.db.QueryRow(
		`SELECT `+redemptionCols+` FROM redemptions r JOIN rewards w ON w.id = r.reward_id WHERE r.id = ?`, id,
	)
	r, err := scanRedemption(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get redemption: %w", err)
	}
	return r, nil
}

// ListRedemptionsByHousehold returns the household's redemptions, newest first.
func (s *RewardStore) ListRedemptionsByHousehold(householdID int64) ([]model.Redemption, error) {
	rows, err := s.db.Query(
		`SELECT `+redemptionCols+`
		 FROM redemptions r
		 JOIN rewards w ON w.id = r.reward_id
		 WHERE w.household_id = ?
		 ORDER BY r.redeemed_at DESC, r.id DESC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list redemptions: %w", err)
	}
	defer rows.Close()
	return collectRedemptions(rows)
}

// ListRedemptionsByUser returns one user's redemptions, newest first.
func (s *RewardStore) ListRedemptionsByUser(userID int64) ([]model.Redemption, error) {
	rows, err := s.db.Query(
		`SELECT `+redemptionCols+`
		 FROM redemptions r
		 JOIN rewards w ON w.id = r.reward_id
		 WHERE r.user_id = ?
		 ORDER BY r.redeemed_at DESC, r.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list redemptions by user: %w", err)
	}
	defer rows.Close()
	return collectRedemptions(rows)
}

func collectRedemptions(rows *sql.Rows) ([]model.Redemption, error) {
	var reds []model.Redemption
	for rows.Next() {
		r, err := scanRedemption(rows)
		if err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		reds = append(reds, *r)
	}
	return reds, rows.Err()
}

// SetRedemptionStatus resolves a pending redemption. Only pending
// redemptions may be resolved.
func (s *RewardStore) SetRedemptionStatus(id int64, status model.RedemptionStatus, at time.Time) (*model.Redemption, error) {
	result, err := s.db.Exec(
		`UPDATE redemptions SET status = ?, approved_at = ? WHERE id = ? AND status = 'pending'`,
		status, at, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set redemption status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("redemption %d: %w", id, ErrNotPending)
	}
	return s.GetRedemption(id)
}
