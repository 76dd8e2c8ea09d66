package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"homeboard/internal/auth"
	"homeboard/internal/events"
	"homeboard/internal/model"
	"homeboard/internal/shopping"
	"homeboard/internal/store"
)

type FinanceHandler struct {
	financeStore *store.FinanceStore
	hub          *events.Hub
}

func NewFinanceHandler(fs *store.FinanceStore, hub *events.Hub) *FinanceHandler {
	return &FinanceHandler{financeStore: fs, hub: hub}
}

func (h *FinanceHandler) notify(userID int64, entity, action string, id int64) {
	if h.hub != nil {
		h.hub.Notify(userID, entity, action, id)
	}
}

type shoppingItemRequest struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Priority string          `json:"priority"`
	Cost     decimal.Decimal `json:"cost"`
}

func (req *shoppingItemRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if req.Priority == "" {
		req.Priority = string(model.PriorityMedium)
	}
	if !model.ValidPriority(model.TaskPriority(req.Priority)) {
		return "invalid priority"
	}
	if req.Cost.IsNegative() {
		return "cost must not be negative"
	}
	if req.Category == "" {
		req.Category = shopping.Categorize(req.Name)
	}
	return ""
}

func (h *FinanceHandler) CreateShoppingItem(w http.ResponseWriter, r *http.Request) {
	var req shoppingItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	userID := auth.UserID(r.Context())
	item, err := h.financeStore.CreateShoppingItem(userID, req.Name, req.Category, model.TaskPriority(req.Priority), req.Cost)
	if err != nil {
		slog.Error("creating shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create shopping item")
		return
	}

	h.notify(userID, events.EntityShoppingItem, events.ActionCreated, item.ID)
	writeJSON(w, http.StatusCreated, item)
}

func (h *FinanceHandler) ListShoppingItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.financeStore.ListShoppingItems(auth.UserID(r.Context()))
	if err != nil {
		slog.Error("listing shopping items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list shopping items")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *FinanceHandler) ownedShoppingItem(w http.ResponseWriter, r *http.Request) *model.ShoppingItem {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}
	item, err := h.financeStore.GetShoppingItem(id)
	if err != nil {
		slog.Error("fetching shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch shopping item")
		return nil
	}
	if item == nil || item.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusNotFound, "shopping item not found")
		return nil
	}
	return item
}

func (h *FinanceHandler) UpdateShoppingItem(w http.ResponseWriter, r *http.Request) {
	item := h.ownedShoppingItem(w, r)
	if item == nil {
		return
	}

	var req shoppingItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.financeStore.UpdateShoppingItem(item.ID, req.Name, req.Category, model.TaskPriority(req.Priority), req.Cost)
	if err != nil {
		slog.Error("updating shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update shopping item")
		return
	}

	h.notify(item.UserID, events.EntityShoppingItem, events.ActionUpdated, updated.ID)
	writeJSON(w, http.StatusOK, updated)
}

func (h *FinanceHandler) DeleteShoppingItem(w http.ResponseWriter, r *http.Request) {
	item := h.ownedShoppingItem(w, r)
	if item == nil {
		return
	}

	if err := h.financeStore.DeleteShoppingItem(item.ID); err != nil {
		slog.Error("deleting shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete shopping item")
		return
	}

	h.notify(item.UserID, events.EntityShoppingItem, events.ActionDeleted, item.ID)
	w.WriteHeader(http.StatusNoContent)
}

type transactionRequest struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

func (req *transactionRequest) validate() string {
	if !model.ValidTransactionType(model.TransactionType(req.Type)) {
		return "type must be income or expense"
	}
	if !req.Amount.IsPositive() {
		return "amount must be positive"
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return "date must be YYYY-MM-DD"
	}
	return ""
}

func (h *FinanceHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	userID := auth.UserID(r.Context())
	tx, err := h.financeStore.CreateTransaction(userID, model.TransactionType(req.Type), req.Amount, req.Category, req.Description, req.Date)
	if err != nil {
		slog.Error("creating transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}

	h.notify(userID, events.EntityTransaction, events.ActionCreated, tx.ID)
	writeJSON(w, http.StatusCreated, tx)
}

func (h *FinanceHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	list, err := h.financeStore.ListTransactions(auth.UserID(r.Context()))
	if err != nil {
		slog.Error("listing transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *FinanceHandler) ownedTransaction(w http.ResponseWriter, r *http.Request) *model.Transaction {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}
	tx, err := h.financeStore.GetTransaction(id)
	if err != nil {
		slog.Error("fetching transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch transaction")
		return nil
	}
	if tx == nil || tx.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return nil
	}
	return tx
}

func (h *FinanceHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	tx := h.ownedTransaction(w, r)
	if tx == nil {
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.financeStore.UpdateTransaction(tx.ID, model.TransactionType(req.Type), req.Amount, req.Category, req.Description, req.Date)
	if err != nil {
		slog.Error("updating transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update transaction")
		return
	}

	h.notify(tx.UserID, events.EntityTransaction, events.ActionUpdated, updated.ID)
	writeJSON(w, http.StatusOK, updated)
}

func (h *FinanceHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	tx := h.ownedTransaction(w, r)
	if tx == nil {
		return
	}

	if err := h.financeStore.DeleteTransaction(tx.ID); err != nil {
		slog.Error("deleting transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	h.notify(tx.UserID, events.EntityTransaction, events.ActionDeleted, tx.ID)
	w.WriteHeader(http.StatusNoContent)
}

// Summary reports the ledger totals. The computation stays server-side so
// every client shows the same numbers.
func (h *FinanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.financeStore.Summary(auth.UserID(r.Context()))
	if err != nil {
		slog.Error("computing budget summary", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute budget summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
