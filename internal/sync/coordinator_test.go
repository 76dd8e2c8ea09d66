package sync

import (
	"context"
	"errors"
	"testing"

	"homeboard/internal/model"
)

func newTaskCoordinator() (*Store[model.Task], *Coordinator[model.Task]) {
	store := NewStore(func(t model.Task) int64 { return t.ID })
	return store, NewCoordinator(store)
}

func TestApplyAndSubmitCommitsServerValue(t *testing.T) {
	store, coord := newTaskCoordinator()
	store.Put(model.Task{ID: 1, Content: "feed the cat", Status: model.StatusToDo})

	var seen model.Task
	got, err := coord.ApplyAndSubmit(context.Background(), 1,
		func(task model.Task) model.Task {
			task.Status = model.StatusInProgress
			return task
		},
		func(ctx context.Context) (model.Task, error) {
			// The patched value must be visible while the call is out.
			seen, _ = store.Get(1)
			return model.Task{ID: 1, Content: "feed the cat", Status: model.StatusInProgress, LateCount: 2}, nil
		},
	)
	if err != nil {
		t.Fatalf("ApplyAndSubmit: %v", err)
	}
	if seen.Status != model.StatusInProgress {
		t.Errorf("patch not applied before call, status = %q", seen.Status)
	}
	if got.LateCount != 2 {
		t.Errorf("returned entity is not the server's, LateCount = %d", got.LateCount)
	}
	stored, _ := store.Get(1)
	if stored.LateCount != 2 {
		t.Errorf("store kept the optimistic value, LateCount = %d", stored.LateCount)
	}
	if coord.Pending(1) {
		t.Error("mutation still pending after resolution")
	}
}

func TestApplyAndSubmitRollsBackOnFailure(t *testing.T) {
	store, coord := newTaskCoordinator()
	store.Put(model.Task{ID: 1, Content: "homework", Status: model.StatusToDo})

	boom := errors.New("server said no")
	got, err := coord.ApplyAndSubmit(context.Background(), 1,
		func(task model.Task) model.Task {
			task.Status = model.StatusDone
			return task
		},
		func(ctx context.Context) (model.Task, error) {
			return model.Task{}, boom
		},
	)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if got.Status != model.StatusToDo {
		t.Errorf("returned entity not the pre-mutation value, status = %q", got.Status)
	}
	stored, _ := store.Get(1)
	if stored.Status != model.StatusToDo {
		t.Errorf("rollback did not restore the store, status = %q", stored.Status)
	}
	if coord.Pending(1) {
		t.Error("mutation still pending after failure")
	}
}

func TestApplyAndSubmitUnknownEntity(t *testing.T) {
	_, coord := newTaskCoordinator()
	_, err := coord.ApplyAndSubmit(context.Background(), 99,
		func(task model.Task) model.Task { return task },
		func(ctx context.Context) (model.Task, error) { return model.Task{}, nil },
	)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSecondMutationRejectedWhileFirstPending(t *testing.T) {
	store, coord := newTaskCoordinator()
	store.Put(model.Task{ID: 1, Status: model.StatusToDo})

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		_, err := coord.ApplyAndSubmit(context.Background(), 1,
			func(task model.Task) model.Task {
				task.Status = model.StatusInProgress
				return task
			},
			func(ctx context.Context) (model.Task, error) {
				close(started)
				<-release
				return model.Task{ID: 1, Status: model.StatusInProgress}, nil
			},
		)
		done <- err
	}()

	<-started
	_, err := coord.ApplyAndSubmit(context.Background(), 1,
		func(task model.Task) model.Task {
			task.Status = model.StatusDone
			return task
		},
		func(ctx context.Context) (model.Task, error) {
			return model.Task{}, errors.New("should never be called")
		},
	)
	if !errors.Is(err, ErrMutationInFlight) {
		t.Fatalf("second mutation err = %v, want ErrMutationInFlight", err)
	}
	// The rejected mutation must not have touched the optimistic state.
	stored, _ := store.Get(1)
	if stored.Status != model.StatusInProgress {
		t.Errorf("rejected mutation altered the store, status = %q", stored.Status)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first mutation: %v", err)
	}
	if coord.Pending(1) {
		t.Error("entity still pending after first mutation resolved")
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	_, coord := newTaskCoordinator()

	early, err := coord.begin(1)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	// Simulate the early submission losing track of its slot so a later
	// one can start before it resolves.
	coord.mu.Lock()
	delete(coord.inflight, 1)
	coord.mu.Unlock()

	late, err := coord.begin(1)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	if !coord.finish(1, late) {
		t.Fatal("latest response refused, want commit")
	}
	if coord.finish(1, early) {
		t.Fatal("stale response committed, want discard")
	}
	// Re-resolving the same ticket is idempotent either way.
	if coord.finish(1, early) {
		t.Fatal("stale response committed on retry")
	}
}

func TestSubmitCreateSwapsProvisionalForServerEntity(t *testing.T) {
	store, coord := newTaskCoordinator()

	var provisionalID int64
	got, err := coord.SubmitCreate(context.Background(),
		model.Task{Content: "take out trash", Status: model.StatusToDo},
		func(ctx context.Context) (model.Task, error) {
			for _, task := range store.List() {
				provisionalID = task.ID
			}
			return model.Task{ID: 42, Content: "take out trash", Status: model.StatusToDo}, nil
		},
	)
	if err != nil {
		t.Fatalf("SubmitCreate: %v", err)
	}
	if provisionalID >= 0 {
		t.Errorf("provisional id = %d, want negative temp id", provisionalID)
	}
	if got.ID != 42 {
		t.Errorf("returned id = %d, want 42", got.ID)
	}
	if _, ok := store.Get(provisionalID); ok {
		t.Error("provisional entry survived the swap")
	}
	if _, ok := store.Get(42); !ok {
		t.Error("server entity missing from store")
	}
	if store.Len() != 1 {
		t.Errorf("store holds %d items, want 1", store.Len())
	}
}

func TestSubmitCreateFailureRemovesProvisional(t *testing.T) {
	store, coord := newTaskCoordinator()

	_, err := coord.SubmitCreate(context.Background(),
		model.Task{Content: "wash dishes"},
		func(ctx context.Context) (model.Task, error) {
			return model.Task{}, errors.New("rejected")
		},
	)
	if err == nil {
		t.Fatal("SubmitCreate succeeded, want error")
	}
	if store.Len() != 0 {
		t.Errorf("store holds %d items after failed create, want 0", store.Len())
	}
}

func TestSubmitDeleteRestoresOnRefusal(t *testing.T) {
	store, coord := newTaskCoordinator()
	store.Put(model.Task{ID: 7, Content: "practice piano"})

	var seenDuringCall bool
	err := coord.SubmitDelete(context.Background(), 7, func(ctx context.Context) error {
		_, seenDuringCall = store.Get(7)
		return errors.New("refused")
	})
	if err == nil {
		t.Fatal("SubmitDelete succeeded, want error")
	}
	if seenDuringCall {
		t.Error("entity still in store while the delete was out")
	}
	restored, ok := store.Get(7)
	if !ok {
		t.Fatal("entity not restored after refused delete")
	}
	if restored.Content != "practice piano" {
		t.Errorf("restored entity content = %q", restored.Content)
	}
}

func TestSubmitDeleteCommits(t *testing.T) {
	store, coord := newTaskCoordinator()
	store.Put(model.Task{ID: 7})

	if err := coord.SubmitDelete(context.Background(), 7, func(ctx context.Context) error {
		return nil
	}); err != nil {
		t.Fatalf("SubmitDelete: %v", err)
	}
	if _, ok := store.Get(7); ok {
		t.Error("entity still in store after confirmed delete")
	}
	if err := coord.SubmitDelete(context.Background(), 7, func(ctx context.Context) error {
		return nil
	}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleting a gone entity: err = %v, want ErrNotFound", err)
	}
}
