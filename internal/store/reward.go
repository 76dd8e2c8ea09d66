package store

import (
	"database/sql"
	"errors"
	"fmt"

	"homeboard/internal/model"
)

// ErrInsufficientPoints is returned when a redemption would drive the
// child's balance negative.
var ErrInsufficientPoints = errors.New("insufficient points")

type RewardStore struct {
	db *sql.DB
}

func NewRewardStore(db *sql.DB) *RewardStore {
	return &RewardStore{db: db}
}

func scanReward(scanner interface{ Scan(...any) error }) (*model.Reward, error) {
	var r model.Reward
	err := scanner.Scan(
		&r.ID, &r.ChildID, &r.Title, &r.Description, &r.Points, &r.Kind,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const rewardCols = `id, child_id, title, description, points, kind, created_at, updated_at`

func (s *RewardStore) Create(childID int64, title, description string, points int, kind model.RewardKind) (*model.Reward, error) {
	result, err := s.db.Exec(
		`INSERT INTO rewards (child_id, title, description, points, kind) VALUES (?, ?, ?, ?, ?)`,
		childID, title, description, points, kind,
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

// ListByChild returns the child's rewards, cumulative record first.
func (s *RewardStore) ListByChild(childID int64) ([]model.Reward, error) {
	rows, err := s.db.Query(
		`SELECT `+rewardCols+` FROM rewards WHERE child_id = ? ORDER BY kind ASC, created_at ASC`,
		childID,
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

// GetCumulative returns the child's single accrual record, or nil if the
// child has no reward history yet.
func (s *RewardStore) GetCumulative(childID int64) (*model.Reward, error) {
	row := s.db.QueryRow(
		`SELECT `+rewardCols+` FROM rewards WHERE child_id = ? AND kind = ?`,
		childID, model.RewardCumulative,
	)
	r, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cumulative reward: %w", err)
	}
	return r, nil
}

func (s *RewardStore) Update(id int64, title, description string, points int) (*model.Reward, error) {
	_, err := s.db.Exec(
		`UPDATE rewards SET title = ?, description = ?, points = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, description, points, id,
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

// Credit adds points to the child's balance and upserts the cumulative
// reward record in one transaction, so a completed task can never credit
// half of the pair.
func (s *RewardStore) Credit(childID int64, points int, title, description string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := creditCumulative(tx, childID, points, title, description); err != nil {
		return err
	}
	return tx.Commit()
}

// creditCumulative is the single crediting path: it bumps the child's
// balance and lifetime total and upserts the cumulative reward record
// inside the caller's transaction.
func creditCumulative(tx *sql.Tx, childID int64, points int, title, description string) error {
	if _, err := tx.Exec(
		`UPDATE children SET points = points + ?, lifetime_points = lifetime_points + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		points, points, childID,
	); err != nil {
		return fmt.Errorf("credit child points: %w", err)
	}

	res, err := tx.Exec(
		`UPDATE rewards SET points = points + ?, updated_at = CURRENT_TIMESTAMP WHERE child_id = ? AND kind = ?`,
		points, childID, model.RewardCumulative,
	)
	if err != nil {
		return fmt.Errorf("update cumulative reward: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		if _, err := tx.Exec(
			`INSERT INTO rewards (child_id, title, description, points, kind) VALUES (?, ?, ?, ?, ?)`,
			childID, title, description, points, model.RewardCumulative,
		); err != nil {
			return fmt.Errorf("create cumulative reward: %w", err)
		}
	}
	return nil
}

// Balance reports a child's earned, spent, and available points.
func (s *RewardStore) Balance(childID int64) (*model.PointBalance, error) {
	var b model.PointBalance
	b.ChildID = childID

	var points, lifetime int
	err := s.db.QueryRow(
		`SELECT name, points, lifetime_points FROM children WHERE id = ?`,
		childID,
	).Scan(&b.ChildName, &points, &lifetime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get point balance: %w", err)
	}

	b.TotalEarned = lifetime
	b.TotalSpent = lifetime - points
	b.Balance = points
	return &b, nil
}

// Debit deducts a redemption's cost from the child's balance and the
// cumulative record. The balance check happens inside the transaction.
func (s *RewardStore) Debit(childID int64, cost int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var points int
	if err := tx.QueryRow(`SELECT points FROM children WHERE id = ?`, childID).Scan(&points); err != nil {
		return fmt.Errorf("get child points: %w", err)
	}
	if points < cost {
		return ErrInsufficientPoints
	}

	if _, err := tx.Exec(
		`UPDATE children SET points = points - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		cost, childID,
	); err != nil {
		return fmt.Errorf("debit child points: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE rewards SET points = CASE WHEN points >= ? THEN points - ? ELSE 0 END, updated_at = CURRENT_TIMESTAMP WHERE child_id = ? AND kind = ?`,
		cost, cost, childID, model.RewardCumulative,
	); err != nil {
		return fmt.Errorf("debit cumulative reward: %w", err)
	}

	return tx.Commit()
}
