package sync

import (
	"context"

	"homeboard/internal/api"
	"homeboard/internal/model"
)

// CreateShoppingItem adds a shopping item optimistically.
func (s *Syncer) CreateShoppingItem(ctx context.Context, params api.ShoppingItemParams) (*model.ShoppingItem, error) {
	provisional := model.ShoppingItem{
		Name:     params.Name,
		Category: params.Category,
		Priority: model.TaskPriority(params.Priority),
		Cost:     params.Cost,
	}
	if provisional.Priority == "" {
		provisional.Priority = model.PriorityMedium
	}

	item, err := s.itemCoord.SubmitCreate(ctx, provisional, func(ctx context.Context) (model.ShoppingItem, error) {
		created, err := s.client.CreateShoppingItem(ctx, params)
		if err != nil {
			return model.ShoppingItem{}, err
		}
		return *created, nil
	})
	if err != nil {
		return nil, s.fail(err)
	}
	return &item, nil
}

// EditShoppingItem updates a shopping item optimistically.
func (s *Syncer) EditShoppingItem(ctx context.Context, itemID int64, params api.ShoppingItemParams) (*model.ShoppingItem, error) {
	item, err := s.itemCoord.ApplyAndSubmit(ctx, itemID,
		func(it model.ShoppingItem) model.ShoppingItem {
			it.Name = params.Name
			it.Category = params.Category
			if params.Priority != "" {
				it.Priority = model.TaskPriority(params.Priority)
			}
			it.Cost = params.Cost
			return it
		},
		func(ctx context.Context) (model.ShoppingItem, error) {
			updated, err := s.client.UpdateShoppingItem(ctx, itemID, params)
			if err != nil {
				return model.ShoppingItem{}, err
			}
			return *updated, nil
		},
	)
	if err != nil {
		return nil, s.fail(err)
	}
	return &item, nil
}

// DeleteShoppingItem removes a shopping item optimistically.
func (s *Syncer) DeleteShoppingItem(ctx context.Context, itemID int64) error {
	err := s.itemCoord.SubmitDelete(ctx, itemID, func(ctx context.Context) error {
		return s.client.DeleteShoppingItem(ctx, itemID)
	})
	return s.fail(err)
}

// CreateTransaction records a budget transaction. The summary totals are
// server-computed, so a successful create refetches them instead of
// adjusting them locally.
func (s *Syncer) CreateTransaction(ctx context.Context, params api.TransactionParams) (*model.Transaction, error) {
	provisional := model.Transaction{
		Type:        model.TransactionType(params.Type),
		Amount:      params.Amount,
		Category:    params.Category,
		Description: params.Description,
		Date:        params.Date,
	}

	tx, err := s.txCoord.SubmitCreate(ctx, provisional, func(ctx context.Context) (model.Transaction, error) {
		created, err := s.client.CreateTransaction(ctx, params)
		if err != nil {
			return model.Transaction{}, err
		}
		return *created, nil
	})
	if err != nil {
		return nil, s.fail(err)
	}

	s.refreshSummary(ctx)
	return &tx, nil
}

// EditTransaction updates a transaction optimistically.
func (s *Syncer) EditTransaction(ctx context.Context, txID int64, params api.TransactionParams) (*model.Transaction, error) {
	tx, err := s.txCoord.ApplyAndSubmit(ctx, txID,
		func(t model.Transaction) model.Transaction {
			t.Type = model.TransactionType(params.Type)
			t.Amount = params.Amount
			t.Category = params.Category
			t.Description = params.Description
			t.Date = params.Date
			return t
		},
		func(ctx context.Context) (model.Transaction, error) {
			updated, err := s.client.UpdateTransaction(ctx, txID, params)
			if err != nil {
				return model.Transaction{}, err
			}
			return *updated, nil
		},
	)
	if err != nil {
		return nil, s.fail(err)
	}

	s.refreshSummary(ctx)
	return &tx, nil
}

// DeleteTransaction removes a transaction optimistically.
func (s *Syncer) DeleteTransaction(ctx context.Context, txID int64) error {
	err := s.txCoord.SubmitDelete(ctx, txID, func(ctx context.Context) error {
		return s.client.DeleteTransaction(ctx, txID)
	})
	if err != nil {
		return s.fail(err)
	}

	s.refreshSummary(ctx)
	return nil
}

// refreshSummary re-pulls the server totals after a ledger change. A
// failed refresh leaves the previous totals in place; the next finance
// refresh will catch up.
func (s *Syncer) refreshSummary(ctx context.Context) {
	summary, err := s.client.BudgetSummary(ctx)
	if err != nil {
		return
	}
	s.setSummary(summary)
}
