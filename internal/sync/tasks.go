package sync

import (
	"context"
	"fmt"
	"time"

	"homeboard/internal/api"
	"homeboard/internal/model"
)

// CreateTask inserts a provisional task immediately and swaps it for the
// server's version when the create resolves.
func (s *Syncer) CreateTask(ctx context.Context, childID int64, content string, priority model.TaskPriority, dueDate *time.Time, recurrence model.Recurrence) (*model.Task, error) {
	if priority == "" {
		priority = model.PriorityMedium
	}
	if recurrence == "" {
		recurrence = model.RecurrenceNone
	}
	if !model.ValidPriority(priority) {
		return nil, fmt.Errorf("invalid priority %q", priority)
	}
	if !model.ValidRecurrence(recurrence) {
		return nil, fmt.Errorf("invalid recurrence %q", recurrence)
	}

	provisional := model.Task{
		ChildID:    childID,
		Content:    content,
		Priority:   priority,
		DueDate:    dueDate,
		Recurrence: recurrence,
		Status:     model.StatusToDo,
		CreatedAt:  time.Now(),
	}

	params := api.TaskParams{
		ChildID:    childID,
		Content:    content,
		Priority:   string(priority),
		Recurrence: string(recurrence),
	}
	if dueDate != nil {
		due := dueDate.Format(time.RFC3339)
		params.DueDate = &due
	}

	task, err := s.taskCoord.SubmitCreate(ctx, provisional, func(ctx context.Context) (model.Task, error) {
		created, err := s.client.CreateTask(ctx, params)
		if err != nil {
			return model.Task{}, err
		}
		return *created, nil
	})
	if err != nil {
		return nil, s.fail(err)
	}
	return &task, nil
}

// SetTaskStatus moves a task between states optimistically. The target
// status is validated against the enum before anything is touched; a
// transition to done goes through CompleteTask so points accrue.
func (s *Syncer) SetTaskStatus(ctx context.Context, taskID int64, status model.TaskStatus) (*model.Task, error) {
	if !model.ValidStatus(status) {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	if status == model.StatusDone {
		return s.CompleteTask(ctx, taskID)
	}

	statusStr := string(status)
	task, err := s.taskCoord.ApplyAndSubmit(ctx, taskID,
		func(t model.Task) model.Task {
			t.Status = status
			t.CompletedAt = nil
			return t
		},
		func(ctx context.Context) (model.Task, error) {
			updated, err := s.client.UpdateTask(ctx, taskID, api.TaskPatch{Status: &statusStr})
			if err != nil {
				return model.Task{}, err
			}
			return *updated, nil
		},
	)
	if err != nil {
		return nil, s.fail(err)
	}
	return &task, nil
}

// CompleteTask marks a task done and credits the child's cumulative
// reward. Completing an already-done task is a no-op so a double press
// never double-credits. When the status change lands but the accrual
// does not, the partial outcome is reported as a *CascadeError rather
// than swallowed.
func (s *Syncer) CompleteTask(ctx context.Context, taskID int64) (*model.Task, error) {
	current, ok := s.Tasks.Get(taskID)
	if !ok {
		return nil, ErrNotFound
	}
	if current.Status == model.StatusDone {
		return &current, nil
	}

	statusStr := string(model.StatusDone)
	task, err := s.taskCoord.ApplyAndSubmit(ctx, taskID,
		func(t model.Task) model.Task {
			t.Status = model.StatusDone
			now := time.Now()
			t.CompletedAt = &now
			return t
		},
		func(ctx context.Context) (model.Task, error) {
			updated, err := s.client.UpdateTask(ctx, taskID, api.TaskPatch{Status: &statusStr})
			if err != nil {
				return model.Task{}, err
			}
			return *updated, nil
		},
	)
	if err != nil {
		return nil, s.fail(err)
	}

	if err := s.accrueCompletionPoints(ctx, task.ChildID); err != nil {
		return &task, NewCascadeError(task.ID, task.ChildID, nil, s.fail(err))
	}
	return &task, nil
}

// accrueCompletionPoints adds the completion credit to the child's
// cumulative reward record, creating the record the first time.
func (s *Syncer) accrueCompletionPoints(ctx context.Context, childID int64) error {
	var cumulative *model.Reward
	for _, r := range s.Rewards.List() {
		if r.ChildID == childID && r.Kind == model.RewardCumulative {
			cum := r
			cumulative = &cum
			break
		}
	}

	var updated *model.Reward
	var err error
	if cumulative == nil {
		updated, err = s.client.CreateReward(ctx, api.RewardParams{
			ChildID:     childID,
			Title:       "Points earned",
			Description: "Points earned from completed tasks",
			Points:      model.CompletionPoints,
			Kind:        string(model.RewardCumulative),
		})
	} else {
		updated, err = s.client.UpdateReward(ctx, cumulative.ID, api.RewardParams{
			Title:       cumulative.Title,
			Description: cumulative.Description,
			Points:      cumulative.Points + model.CompletionPoints,
		})
	}
	if err != nil {
		return err
	}

	s.Rewards.Put(*updated)
	if child, ok := s.Children.Get(childID); ok {
		child.Points += model.CompletionPoints
		child.LifetimePoints += model.CompletionPoints
		s.Children.Put(child)
	}
	return nil
}

// EditTask updates a task's content fields optimistically.
func (s *Syncer) EditTask(ctx context.Context, taskID int64, content string, priority model.TaskPriority, dueDate *time.Time, recurrence model.Recurrence) (*model.Task, error) {
	if !model.ValidPriority(priority) {
		return nil, fmt.Errorf("invalid priority %q", priority)
	}
	if !model.ValidRecurrence(recurrence) {
		return nil, fmt.Errorf("invalid recurrence %q", recurrence)
	}

	patch := api.TaskPatch{
		Content:    &content,
		Priority:   strPtr(string(priority)),
		Recurrence: strPtr(string(recurrence)),
	}
	if dueDate != nil {
		patch.DueDate = strPtr(dueDate.Format(time.RFC3339))
	}

	task, err := s.taskCoord.ApplyAndSubmit(ctx, taskID,
		func(t model.Task) model.Task {
			t.Content = content
			t.Priority = priority
			t.DueDate = dueDate
			t.Recurrence = recurrence
			return t
		},
		func(ctx context.Context) (model.Task, error) {
			updated, err := s.client.UpdateTask(ctx, taskID, patch)
			if err != nil {
				return model.Task{}, err
			}
			return *updated, nil
		},
	)
	if err != nil {
		return nil, s.fail(err)
	}
	return &task, nil
}

// DeleteTask removes a task optimistically and restores it if the server
// refuses.
func (s *Syncer) DeleteTask(ctx context.Context, taskID int64) error {
	err := s.taskCoord.SubmitDelete(ctx, taskID, func(ctx context.Context) error {
		return s.client.DeleteTask(ctx, taskID)
	})
	return s.fail(err)
}

// DeleteCompleted removes every done task for a child in one remote
// call. Local entries only go once the server confirms: all of the
// returned ids are removed, or on failure none are.
func (s *Syncer) DeleteCompleted(ctx context.Context, childID int64) ([]int64, error) {
	ids, err := s.client.DeleteCompletedTasks(ctx, childID)
	if err != nil {
		return nil, s.fail(err)
	}
	for _, id := range ids {
		s.Tasks.Delete(id)
	}
	return ids, nil
}

func strPtr(s string) *string { return &s }
