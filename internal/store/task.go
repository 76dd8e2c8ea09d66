package store

import (
	"database/sql"
	"fmt"
	"time"

	"homeboard/internal/model"
	"homeboard/internal/recurrence"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var dueDate sql.NullTime
	var completedAt sql.NullTime

	err := scanner.Scan(
		&t.ID, &t.ChildID, &t.Content, &t.Priority, &dueDate, &t.Recurrence,
		&t.Status, &t.LateCount, &completedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	return &t, nil
}

const taskCols = `id, child_id, content, priority, due_date, recurrence, status, late_count, completed_at, created_at, updated_at`

func (s *TaskStore) Create(childID int64, content string, priority model.TaskPriority, dueDate *time.Time, recurrence model.Recurrence) (*model.Task, error) {
	var due sql.NullTime
	if dueDate != nil {
		due = sql.NullTime{Time: dueDate.UTC(), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO tasks (child_id, content, priority, due_date, recurrence, status) VALUES (?, ?, ?, ?, ?, ?)`,
		childID, content, priority, due, recurrence, model.StatusToDo,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
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

func (s *TaskStore) ListByChild(childID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE child_id = ? ORDER BY created_at ASC, id ASC`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

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

// UpdateStatus moves a task between states. Entering done stamps
// completed_at; leaving done clears it.
func (s *TaskStore) UpdateStatus(id int64, status model.TaskStatus) (*model.Task, error) {
	var completedAt any
	if status == model.StatusDone {
		completedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, completedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}
	return s.GetByID(id)
}

// Complete marks the task done and credits the child's balance and
// cumulative reward record in one transaction. An already-done task is
// left untouched so a repeated call never credits twice. A recurring
// task with a due date respawns as a fresh to-do at the next occurrence.
func (s *TaskStore) Complete(id int64, points int, rewardTitle, rewardDescription string) (*model.Task, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	childID := task.ChildID
	if task.Status == model.StatusDone {
		return task, nil
	}

	if _, err := tx.Exec(
		`UPDATE tasks SET status = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		model.StatusDone, time.Now().UTC(), id,
	); err != nil {
		return nil, fmt.Errorf("complete task: %w", err)
	}

	if err := creditCumulative(tx, childID, points, rewardTitle, rewardDescription); err != nil {
		return nil, err
	}

	if task.Recurrence != model.RecurrenceNone && task.DueDate != nil {
		next := recurrence.Next(*task.DueDate, task.Recurrence, time.Now().UTC())
		if _, err := tx.Exec(
			`INSERT INTO tasks (child_id, content, priority, due_date, recurrence, status) VALUES (?, ?, ?, ?, ?, ?)`,
			childID, task.Content, task.Priority, next.UTC(), task.Recurrence, model.StatusToDo,
		); err != nil {
			return nil, fmt.Errorf("schedule next occurrence: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) Update(id int64, content string, priority model.TaskPriority, dueDate *time.Time, recurrence model.Recurrence) (*model.Task, error) {
	var due sql.NullTime
	if dueDate != nil {
		due = sql.NullTime{Time: dueDate.UTC(), Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE tasks SET content = ?, priority = ?, due_date = ?, recurrence = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		content, priority, due, recurrence, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) IncrementLateCount(id int64) error {
	_, err := s.db.Exec(`UPDATE tasks SET late_count = late_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("increment late count: %w", err)
	}
	return nil
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// DeleteCompleted removes every done task for a child and returns the ids
// removed. The whole removal happens in one statement so a failure deletes
// nothing.
func (s *TaskStore) DeleteCompleted(childID int64) ([]int64, error) {
	rows, err := s.db.Query(
		`SELECT id FROM tasks WHERE child_id = ? AND status = ?`,
		childID, model.StatusDone,
	)
	if err != nil {
		return nil, fmt.Errorf("list completed tasks: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan task id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task ids: %w", err)
	}

	_, err = s.db.Exec(
		`DELETE FROM tasks WHERE child_id = ? AND status = ?`,
		childID, model.StatusDone,
	)
	if err != nil {
		return nil, fmt.Errorf("delete completed tasks: %w", err)
	}
	return ids, nil
}
