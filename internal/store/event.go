package store

import (
	"database/sql"
	"fmt"

	"homeboard/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

func scanEvent(scanner interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	err := scanner.Scan(
		&e.ID, &e.UserID, &e.Title, &e.Description, &e.Date, &e.StartTime, &e.EndTime,
		&e.Category, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const eventCols = `id, user_id, title, description, date, start_time, end_time, category, created_at, updated_at`

func (s *EventStore) Create(userID int64, title, description, date, startTime, endTime string, category model.EventCategory) (*model.Event, error) {
	result, err := s.db.Exec(
		`INSERT INTO events (user_id, title, description, date, start_time, end_time, category) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, title, description, date, startTime, endTime, category,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *EventStore) GetByID(id int64) (*model.Event, error) {
	row := s.db.QueryRow(`SELECT `+eventCols+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// ListByUser returns every event for the account ordered by date then start
// time. When date is non-empty only that day's events are returned.
func (s *EventStore) ListByUser(userID int64, date string) ([]model.Event, error) {
	query := `SELECT ` + eventCols + ` FROM events WHERE user_id = ?`
	args := []any{userID}
	if date != "" {
		query += ` AND date = ?`
		args = append(args, date)
	}
	query += ` ORDER BY date ASC, start_time ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (s *EventStore) Update(id int64, title, description, date, startTime, endTime string, category model.EventCategory) (*model.Event, error) {
	_, err := s.db.Exec(
		`UPDATE events SET title = ?, description = ?, date = ?, start_time = ?, end_time = ?, category = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, description, date, startTime, endTime, category, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.GetByID(id)
}

func (s *EventStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
