package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"homeboard/internal/auth"
	"homeboard/internal/events"
	"homeboard/internal/model"
	"homeboard/internal/store"
)

type TaskHandler struct {
	taskStore  *store.TaskStore
	childStore *store.ChildStore
	hub        *events.Hub
}

func NewTaskHandler(ts *store.TaskStore, cs *store.ChildStore, hub *events.Hub) *TaskHandler {
	return &TaskHandler{taskStore: ts, childStore: cs, hub: hub}
}

func (h *TaskHandler) notify(userID int64, action string, id int64) {
	if h.hub != nil {
		h.hub.Notify(userID, events.EntityTask, action, id)
	}
}

// ownedChild resolves a child id to a profile owned by the authenticated
// account, writing the error response itself when that fails.
func (h *TaskHandler) ownedChild(w http.ResponseWriter, r *http.Request, childID int64) *model.Child {
	child, err := h.childStore.GetOwned(auth.UserID(r.Context()), childID)
	if err != nil {
		slog.Error("fetching child profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch child profile")
		return nil
	}
	if child == nil {
		writeError(w, http.StatusNotFound, "child not found")
		return nil
	}
	return child
}

// ownedTask resolves a task id and verifies the task's child belongs to
// the authenticated account.
func (h *TaskHandler) ownedTask(w http.ResponseWriter, r *http.Request) *model.Task {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}

	task, err := h.taskStore.GetByID(id)
	if err != nil {
		slog.Error("fetching task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch task")
		return nil
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return nil
	}
	if h.ownedChild(w, r, task.ChildID) == nil {
		return nil
	}
	return task
}

type createTaskRequest struct {
	ChildID    int64   `json:"child_id"`
	Content    string  `json:"content"`
	Priority   string  `json:"priority"`
	DueDate    *string `json:"due_date"`
	Recurrence string  `json:"recurrence"`
}

type updateTaskRequest struct {
	Content    *string `json:"content"`
	Priority   *string `json:"priority"`
	DueDate    *string `json:"due_date"`
	Recurrence *string `json:"recurrence"`
	Status     *string `json:"status"`
}

func parseDueDate(s *string) (*time.Time, bool) {
	if s == nil || *s == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	priority := model.TaskPriority(req.Priority)
	if req.Priority == "" {
		priority = model.PriorityMedium
	} else if !model.ValidPriority(priority) {
		writeError(w, http.StatusBadRequest, "invalid priority")
		return
	}
	recurrence := model.Recurrence(req.Recurrence)
	if req.Recurrence == "" {
		recurrence = model.RecurrenceNone
	} else if !model.ValidRecurrence(recurrence) {
		writeError(w, http.StatusBadRequest, "invalid recurrence")
		return
	}
	dueDate, ok := parseDueDate(req.DueDate)
	if !ok {
		writeError(w, http.StatusBadRequest, "due_date must be RFC 3339")
		return
	}

	if h.ownedChild(w, r, req.ChildID) == nil {
		return
	}

	task, err := h.taskStore.Create(req.ChildID, req.Content, priority, dueDate, recurrence)
	if err != nil {
		slog.Error("creating task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.notify(auth.UserID(r.Context()), events.ActionCreated, task.ID)
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) ListByChild(w http.ResponseWriter, r *http.Request) {
	childID, err := strconv.ParseInt(r.PathValue("childId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid child id")
		return
	}
	if h.ownedChild(w, r, childID) == nil {
		return
	}

	tasks, err := h.taskStore.ListByChild(childID)
	if err != nil {
		slog.Error("listing tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Update applies a partial edit. A status change to done also credits the
// child's cumulative reward; all other fields are plain overwrites.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	task := h.ownedTask(w, r)
	if task == nil {
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.Status != nil {
		status := model.TaskStatus(*req.Status)
		if !model.ValidStatus(status) {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		var err error
		if status == model.StatusDone {
			task, err = h.taskStore.Complete(task.ID, model.CompletionPoints, "Points earned", "Points earned from completed tasks")
		} else {
			task, err = h.taskStore.UpdateStatus(task.ID, status)
		}
		if err != nil {
			slog.Error("updating task status", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update task")
			return
		}
	}

	if req.Content != nil || req.Priority != nil || req.DueDate != nil || req.Recurrence != nil {
		content := task.Content
		if req.Content != nil {
			content = strings.TrimSpace(*req.Content)
			if content == "" {
				writeError(w, http.StatusBadRequest, "content is required")
				return
			}
		}
		priority := task.Priority
		if req.Priority != nil {
			priority = model.TaskPriority(*req.Priority)
			if !model.ValidPriority(priority) {
				writeError(w, http.StatusBadRequest, "invalid priority")
				return
			}
		}
		recurrence := task.Recurrence
		if req.Recurrence != nil {
			recurrence = model.Recurrence(*req.Recurrence)
			if !model.ValidRecurrence(recurrence) {
				writeError(w, http.StatusBadRequest, "invalid recurrence")
				return
			}
		}
		dueDate := task.DueDate
		if req.DueDate != nil {
			var ok bool
			dueDate, ok = parseDueDate(req.DueDate)
			if !ok {
				writeError(w, http.StatusBadRequest, "due_date must be RFC 3339")
				return
			}
		}

		var err error
		task, err = h.taskStore.Update(task.ID, content, priority, dueDate, recurrence)
		if err != nil {
			slog.Error("updating task", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update task")
			return
		}
	}

	h.notify(auth.UserID(r.Context()), events.ActionUpdated, task.ID)
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	task := h.ownedTask(w, r)
	if task == nil {
		return
	}

	if err := h.taskStore.Delete(task.ID); err != nil {
		slog.Error("deleting task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	h.notify(auth.UserID(r.Context()), events.ActionDeleted, task.ID)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCompleted removes every done task for a child in one shot and
// returns the removed ids so clients can prune their local copies.
func (h *TaskHandler) DeleteCompleted(w http.ResponseWriter, r *http.Request) {
	childID, err := strconv.ParseInt(r.PathValue("childId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid child id")
		return
	}
	if h.ownedChild(w, r, childID) == nil {
		return
	}

	ids, err := h.taskStore.DeleteCompleted(childID)
	if err != nil {
		slog.Error("deleting completed tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete completed tasks")
		return
	}

	userID := auth.UserID(r.Context())
	for _, id := range ids {
		h.notify(userID, events.ActionDeleted, id)
	}
	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, http.StatusOK, map[string][]int64{"deleted_ids": ids})
}
