package store

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"homeboard/internal/model"
)

// FinanceStore persists shopping items and the transaction ledger. Amounts
// are stored as decimal strings to avoid float drift.
type FinanceStore struct {
	db *sql.DB
}

func NewFinanceStore(db *sql.DB) *FinanceStore {
	return &FinanceStore{db: db}
}

// --- Shopping item methods ---

func scanShoppingItem(scanner interface{ Scan(...any) error }) (*model.ShoppingItem, error) {
	var it model.ShoppingItem
	var cost string

	err := scanner.Scan(&it.ID, &it.UserID, &it.Name, &it.Category, &it.Priority, &cost, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}

	it.Cost, err = decimal.NewFromString(cost)
	if err != nil {
		return nil, fmt.Errorf("parse cost %q: %w", cost, err)
	}
	return &it, nil
}

const shoppingItemCols = `id, user_id, name, category, priority, cost, created_at, updated_at`

func (s *FinanceStore) CreateShoppingItem(userID int64, name, category string, priority model.TaskPriority, cost decimal.Decimal) (*model.ShoppingItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO shopping_items (user_id, name, category, priority, cost) VALUES (?, ?, ?, ?, ?)`,
		userID, name, category, priority, cost.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert shopping item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetShoppingItem(id)
}

func (s *FinanceStore) GetShoppingItem(id int64) (*model.ShoppingItem, error) {
	row := s.db.QueryRow(`SELECT `+shoppingItemCols+` FROM shopping_items WHERE id = ?`, id)
	it, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping item: %w", err)
	}
	return it, nil
}

func (s *FinanceStore) ListShoppingItems(userID int64) ([]model.ShoppingItem, error) {
	rows, err := s.db.Query(
		`SELECT `+shoppingItemCols+` FROM shopping_items WHERE user_id = ? ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	defer rows.Close()

	var items []model.ShoppingItem
	for rows.Next() {
		it, err := scanShoppingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (s *FinanceStore) UpdateShoppingItem(id int64, name, category string, priority model.TaskPriority, cost decimal.Decimal) (*model.ShoppingItem, error) {
	_, err := s.db.Exec(
		`UPDATE shopping_items SET name = ?, category = ?, priority = ?, cost = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, category, priority, cost.String(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update shopping item: %w", err)
	}
	return s.GetShoppingItem(id)
}

func (s *FinanceStore) DeleteShoppingItem(id int64) error {
	_, err := s.db.Exec(`DELETE FROM shopping_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shopping item: %w", err)
	}
	return nil
}

// --- Transaction methods ---

func scanTransaction(scanner interface{ Scan(...any) error }) (*model.Transaction, error) {
	var t model.Transaction
	var amount string

	err := scanner.Scan(&t.ID, &t.UserID, &t.Type, &amount, &t.Category, &t.Description, &t.Date, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	return &t, nil
}

const transactionCols = `id, user_id, type, amount, category, description, date, created_at, updated_at`

func (s *FinanceStore) CreateTransaction(userID int64, typ model.TransactionType, amount decimal.Decimal, category, description, date string) (*model.Transaction, error) {
	result, err := s.db.Exec(
		`INSERT INTO transactions (user_id, type, amount, category, description, date) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, typ, amount.String(), category, description, date,
	)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetTransaction(id)
}

func (s *FinanceStore) GetTransaction(id int64) (*model.Transaction, error) {
	row := s.db.QueryRow(`SELECT `+transactionCols+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (s *FinanceStore) ListTransactions(userID int64) ([]model.Transaction, error) {
	rows, err := s.db.Query(
		`SELECT `+transactionCols+` FROM transactions WHERE user_id = ? ORDER BY date DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

func (s *FinanceStore) UpdateTransaction(id int64, typ model.TransactionType, amount decimal.Decimal, category, description, date string) (*model.Transaction, error) {
	_, err := s.db.Exec(
		`UPDATE transactions SET type = ?, amount = ?, category = ?, description = ?, date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		typ, amount.String(), category, description, date, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return s.GetTransaction(id)
}

func (s *FinanceStore) DeleteTransaction(id int64) error {
	_, err := s.db.Exec(`DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// Summary totals the ledger for an account. Sums are computed here, not by
// clients; the client only mirrors the result.
func (s *FinanceStore) Summary(userID int64) (*model.BudgetSummary, error) {
	rows, err := s.db.Query(
		`SELECT type, amount FROM transactions WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sum transactions: %w", err)
	}
	defer rows.Close()

	income := decimal.Zero
	expenses := decimal.Zero
	for rows.Next() {
		var typ model.TransactionType
		var amountStr string
		if err := rows.Scan(&typ, &amountStr); err != nil {
			return nil, fmt.Errorf("scan transaction amount: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amountStr, err)
		}
		if typ == model.TransactionIncome {
			income = income.Add(amount)
		} else {
			expenses = expenses.Add(amount)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return &model.BudgetSummary{
		Income:   income,
		Expenses: expenses,
		Balance:  income.Sub(expenses),
	}, nil
}
