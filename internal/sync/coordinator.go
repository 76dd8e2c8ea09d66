package sync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

var (
	// ErrMutationInFlight rejects a second mutation on an entity whose
	// previous mutation has not resolved yet.
	ErrMutationInFlight = errors.New("a change for this item is still being saved")

	// ErrNotFound means the entity is not in the local store.
	ErrNotFound = errors.New("item not found")
)

// tempID hands out ids for optimistic creates. They are negative so they
// can never collide with server-assigned ids and are trivially
// recognizable as provisional.
var tempIDCounter atomic.Int64

func nextTempID() int64 {
	return -tempIDCounter.Add(1)
}

// ticket identifies one submission for the ordering check.
type ticket struct {
	id  uuid.UUID
	seq uint64
}

// Coordinator serializes mutations on one Store. Each submission applies
// its optimistic patch immediately, then resolves against the server
// response: success overwrites the local entity with the server's
// representation, failure restores the pre-mutation value. Resolutions
// commit in last-response order: a response for an entity is discarded
// when a later submission for that entity has already resolved.
type Coordinator[T any] struct {
	store *Store[T]

	mu       sync.Mutex
	inflight map[int64]ticket
	seq      uint64
	resolved map[int64]uint64
}

func NewCoordinator[T any](store *Store[T]) *Coordinator[T] {
	return &Coordinator[T]{
		store:    store,
		inflight: make(map[int64]ticket),
		resolved: make(map[int64]uint64),
	}
}

// begin registers a submission for the entity, rejecting it when one is
// already pending.
func (c *Coordinator[T]) begin(entityID int64) (ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, pending := c.inflight[entityID]; pending {
		return ticket{}, ErrMutationInFlight
	}
	c.seq++
	t := ticket{id: uuid.New(), seq: c.seq}
	c.inflight[entityID] = t
	return t, nil
}

// finish resolves a submission. It reports whether this response may
// commit: false means a later response for the entity already resolved
// and this one is stale.
func (c *Coordinator[T]) finish(entityID int64, t ticket) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.inflight[entityID]; ok && cur.id == t.id {
		delete(c.inflight, entityID)
	}
	if c.resolved[entityID] > t.seq {
		slog.Debug("discarding stale mutation response", "entity_id", entityID, "ticket", t.id)
		return false
	}
	c.resolved[entityID] = t.seq
	return true
}

// Pending reports whether the entity has an unresolved mutation.
func (c *Coordinator[T]) Pending(entityID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[entityID]
	return ok
}

// ApplyAndSubmit runs one optimistic mutation: patch the local entity,
// issue the remote call, then commit the server's representation or roll
// back to the pre-mutation value. The returned entity is the committed
// one on success and the restored one on failure.
func (c *Coordinator[T]) ApplyAndSubmit(ctx context.Context, entityID int64, patch func(T) T, call func(context.Context) (T, error)) (T, error) {
	var zero T

	prev, ok := c.store.Get(entityID)
	if !ok {
		return zero, ErrNotFound
	}

	t, err := c.begin(entityID)
	if err != nil {
		return zero, err
	}

	c.store.Put(patch(prev))

	result, err := call(ctx)
	commit := c.finish(entityID, t)

	if err != nil {
		// Rollback applies uniformly: provisional state never survives
		// a failed submission, whatever the failure class.
		if commit {
			c.store.Put(prev)
		}
		return prev, err
	}
	if commit {
		c.store.Put(result)
		return result, nil
	}
	return result, nil
}

// SubmitCreate inserts a provisional entity under a temporary negative
// id, then swaps it for the server's version once the create resolves.
func (c *Coordinator[T]) SubmitCreate(ctx context.Context, provisional T, call func(context.Context) (T, error)) (T, error) {
	tempID := nextTempID()
	c.store.PutWithID(tempID, provisional)

	t, err := c.begin(tempID)
	if err != nil {
		var zero T
		return zero, err
	}

	result, err := call(ctx)
	commit := c.finish(tempID, t)

	c.store.Delete(tempID)
	if err != nil {
		var zero T
		return zero, err
	}
	if commit {
		c.store.Put(result)
	}
	return result, nil
}

// SubmitDelete removes the entity locally, issues the remote delete, and
// restores the entity if the server refuses.
func (c *Coordinator[T]) SubmitDelete(ctx context.Context, entityID int64, call func(context.Context) error) error {
	prev, ok := c.store.Get(entityID)
	if !ok {
		return ErrNotFound
	}

	t, err := c.begin(entityID)
	if err != nil {
		return err
	}

	c.store.Delete(entityID)

	err = call(ctx)
	commit := c.finish(entityID, t)

	if err != nil && commit {
		c.store.Put(prev)
	}
	return err
}
