package store

import (
	"database/sql"
	"fmt"

	"homeboard/internal/model"
)

type ChildStore struct {
	db *sql.DB
}

func NewChildStore(db *sql.DB) *ChildStore {
	return &ChildStore{db: db}
}

func scanChild(scanner interface{ Scan(...any) error }) (*model.Child, error) {
	var c model.Child
	err := scanner.Scan(
		&c.ID, &c.Name, &c.DateOfBirth, &c.Grade, &c.AvatarURL, &c.Points, &c.LifetimePoints,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const childCols = `id, name, date_of_birth, grade, avatar_url, points, lifetime_points, created_at, updated_at`

func (s *ChildStore) Create(userID int64, name, dateOfBirth, grade, avatarURL string) (*model.Child, error) {
	result, err := s.db.Exec(
		`INSERT INTO children (user_id, name, date_of_birth, grade, avatar_url) VALUES (?, ?, ?, ?, ?)`,
		userID, name, dateOfBirth, grade, avatarURL,
	)
	if err != nil {
		return nil, fmt.Errorf("insert child: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChildStore) GetByID(id int64) (*model.Child, error) {
	row := s.db.QueryRow(`SELECT `+childCols+` FROM children WHERE id = ?`, id)
	c, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	return c, nil
}

// GetOwned returns the child only when it belongs to the given account.
func (s *ChildStore) GetOwned(userID, id int64) (*model.Child, error) {
	row := s.db.QueryRow(`SELECT `+childCols+` FROM children WHERE id = ? AND user_id = ?`, id, userID)
	c, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	return c, nil
}

func (s *ChildStore) ListByUser(userID int64) ([]model.Child, error) {
	rows, err := s.db.Query(
		`SELECT `+childCols+` FROM children WHERE user_id = ? ORDER BY name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var children []model.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, *c)
	}
	return children, rows.Err()
}

func (s *ChildStore) Update(id int64, name, dateOfBirth, grade, avatarURL string) (*model.Child, error) {
	_, err := s.db.Exec(
		`UPDATE children SET name = ?, date_of_birth = ?, grade = ?, avatar_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, dateOfBirth, grade, avatarURL, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update child: %w", err)
	}
	return s.GetByID(id)
}
