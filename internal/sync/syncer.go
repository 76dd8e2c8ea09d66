package sync

import (
	"context"
	"errors"
	stdsync "sync"

	"homeboard/internal/api"
	"homeboard/internal/events"
	"homeboard/internal/model"
	"homeboard/internal/session"
	"homeboard/internal/weather"
)

// Syncer owns the local mirror of server state and every mutation path
// over it. Reads go straight to the stores; writes go through the
// coordinators so optimistic state is always either confirmed or rolled
// back.
type Syncer struct {
	client  *api.Client
	session *session.Manager

	Children      *Store[model.Child]
	Tasks         *Store[model.Task]
	Rewards       *Store[model.Reward]
	Events        *Store[model.Event]
	ShoppingItems *Store[model.ShoppingItem]
	Transactions  *Store[model.Transaction]
	Recipes       *Store[model.Recipe]
	Meals         *Store[model.MealAssignment]

	childCoord  *Coordinator[model.Child]
	taskCoord   *Coordinator[model.Task]
	rewardCoord *Coordinator[model.Reward]
	eventCoord  *Coordinator[model.Event]
	itemCoord   *Coordinator[model.ShoppingItem]
	txCoord     *Coordinator[model.Transaction]
	recipeCoord *Coordinator[model.Recipe]
	mealCoord   *Coordinator[model.MealAssignment]

	summaryMu stdsync.Mutex
	summary   *model.BudgetSummary
}

func New(client *api.Client, sess *session.Manager) *Syncer {
	s := &Syncer{
		client:        client,
		session:       sess,
		Children:      NewStore(func(c model.Child) int64 { return c.ID }),
		Tasks:         NewStore(func(t model.Task) int64 { return t.ID }),
		Rewards:       NewStore(func(r model.Reward) int64 { return r.ID }),
		Events:        NewStore(func(e model.Event) int64 { return e.ID }),
		ShoppingItems: NewStore(func(i model.ShoppingItem) int64 { return i.ID }),
		Transactions:  NewStore(func(t model.Transaction) int64 { return t.ID }),
		Recipes:       NewStore(func(r model.Recipe) int64 { return r.ID }),
		Meals:         NewStore(func(m model.MealAssignment) int64 { return m.ID }),
	}
	s.childCoord = NewCoordinator(s.Children)
	s.taskCoord = NewCoordinator(s.Tasks)
	s.rewardCoord = NewCoordinator(s.Rewards)
	s.eventCoord = NewCoordinator(s.Events)
	s.itemCoord = NewCoordinator(s.ShoppingItems)
	s.txCoord = NewCoordinator(s.Transactions)
	s.recipeCoord = NewCoordinator(s.Recipes)
	s.mealCoord = NewCoordinator(s.Meals)
	return s
}

// TaskPending reports whether a task has an unresolved mutation, so UIs
// can mark provisional rows.
func (s *Syncer) TaskPending(id int64) bool {
	return s.taskCoord.Pending(id)
}

// Watch opens the server's change-event stream.
func (s *Syncer) Watch(ctx context.Context) (<-chan events.ChangeEvent, error) {
	ch, err := s.client.Watch(ctx)
	if err != nil {
		return nil, s.fail(err)
	}
	return ch, nil
}

// Weather fetches today's forecast. It is never mirrored in a store;
// the server caches it and the UI treats it as a best-effort extra.
func (s *Syncer) Weather(ctx context.Context) (*weather.Report, error) {
	report, err := s.client.Weather(ctx)
	if err != nil {
		return nil, s.fail(err)
	}
	return report, nil
}

// fail post-processes a mutation or fetch error. A credential rejection
// signs the client out: the stored session is cleared so the UI falls
// back to sign-in instead of retrying a dead token.
func (s *Syncer) fail(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, api.ErrUnauthenticated) {
		s.client.SetToken("")
		if s.session != nil {
			s.session.Clear()
		}
	}
	return err
}

func (s *Syncer) RefreshChildren(ctx context.Context) error {
	children, err := s.client.ListChildren(ctx)
	if err != nil {
		return s.fail(err)
	}
	s.Children.ReplaceAll(children)
	return nil
}

// RefreshTasks loads one child's tasks. The fetched set replaces the
// task store wholesale; partial merges are how phantom entries survive.
func (s *Syncer) RefreshTasks(ctx context.Context, childID int64) error {
	tasks, err := s.client.ListTasks(ctx, childID)
	if err != nil {
		return s.fail(err)
	}
	s.Tasks.ReplaceAll(tasks)
	return nil
}

func (s *Syncer) RefreshRewards(ctx context.Context, childID int64) error {
	rewards, err := s.client.ListRewards(ctx, childID)
	if err != nil {
		return s.fail(err)
	}
	s.Rewards.ReplaceAll(rewards)
	return nil
}

func (s *Syncer) RefreshEvents(ctx context.Context, date string) error {
	list, err := s.client.ListEvents(ctx, date)
	if err != nil {
		return s.fail(err)
	}
	s.Events.ReplaceAll(list)
	return nil
}

func (s *Syncer) RefreshFinance(ctx context.Context) error {
	items, err := s.client.ListShoppingItems(ctx)
	if err != nil {
		return s.fail(err)
	}
	txs, err := s.client.ListTransactions(ctx)
	if err != nil {
		return s.fail(err)
	}
	summary, err := s.client.BudgetSummary(ctx)
	if err != nil {
		return s.fail(err)
	}
	s.ShoppingItems.ReplaceAll(items)
	s.Transactions.ReplaceAll(txs)
	s.setSummary(summary)
	return nil
}

func (s *Syncer) setSummary(b *model.BudgetSummary) {
	s.summaryMu.Lock()
	s.summary = b
	s.summaryMu.Unlock()
}

// Summary returns the last budget summary the server computed, or nil
// before the first finance refresh. The totals are never derived from
// the local transaction list.
func (s *Syncer) Summary() *model.BudgetSummary {
	s.summaryMu.Lock()
	defer s.summaryMu.Unlock()
	return s.summary
}
