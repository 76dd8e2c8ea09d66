package sync

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrInsufficientPoints rejects a redemption whose cost exceeds the
// child's balance before any request is sent.
var ErrInsufficientPoints = errors.New("not enough points for this reward")

// CascadeError reports a completion whose halves diverged: the task was
// marked done on the server but the points accrual did not go through.
// The task stays done; the caller surfaces the accrual failure instead
// of pretending the whole operation failed or succeeded.
type CascadeError struct {
	TaskID  int64
	ChildID int64
	Err     error
}

func NewCascadeError(taskID, childID int64, statusErr, accrualErr error) *CascadeError {
	return &CascadeError{
		TaskID:  taskID,
		ChildID: childID,
		Err:     multierr.Append(statusErr, accrualErr),
	}
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("task %d completed but points were not credited: %v", e.TaskID, e.Err)
}

func (e *CascadeError) Unwrap() error { return e.Err }
