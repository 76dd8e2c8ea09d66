package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"homeboard/internal/auth"
	"homeboard/internal/events"
	"homeboard/internal/model"
	"homeboard/internal/store"
)

type RewardHandler struct {
	rewardStore *store.RewardStore
	childStore  *store.ChildStore
	hub         *events.Hub
}

func NewRewardHandler(rs *store.RewardStore, cs *store.ChildStore, hub *events.Hub) *RewardHandler {
	return &RewardHandler{rewardStore: rs, childStore: cs, hub: hub}
}

func (h *RewardHandler) notify(userID int64, action string, id int64) {
	if h.hub != nil {
		h.hub.Notify(userID, events.EntityReward, action, id)
	}
}

func (h *RewardHandler) ownedChild(w http.ResponseWriter, r *http.Request, childID int64) bool {
	child, err := h.childStore.GetOwned(auth.UserID(r.Context()), childID)
	if err != nil {
		slog.Error("fetching child profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch child profile")
		return false
	}
	if child == nil {
		writeError(w, http.StatusNotFound, "child not found")
		return false
	}
	return true
}

func childIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("childId"), 10, 64)
}

// ListByChild returns a child's rewards with the cumulative record first.
func (h *RewardHandler) ListByChild(w http.ResponseWriter, r *http.Request) {
	childID, err := childIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid child id")
		return
	}
	if !h.ownedChild(w, r, childID) {
		return
	}

	rewards, err := h.rewardStore.ListByChild(childID)
	if err != nil {
		slog.Error("listing rewards", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list rewards")
		return
	}
	writeJSON(w, http.StatusOK, rewards)
}

func (h *RewardHandler) Points(w http.ResponseWriter, r *http.Request) {
	childID, err := childIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid child id")
		return
	}
	if !h.ownedChild(w, r, childID) {
		return
	}

	balance, err := h.rewardStore.Balance(childID)
	if err != nil {
		slog.Error("fetching point balance", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch point balance")
		return
	}
	if balance == nil {
		writeError(w, http.StatusNotFound, "child not found")
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

type rewardRequest struct {
	ChildID     int64  `json:"child_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Kind        string `json:"kind"`
}

func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Points < 0 {
		writeError(w, http.StatusBadRequest, "points must not be negative")
		return
	}
	kind := model.RewardKind(req.Kind)
	if req.Kind == "" {
		kind = model.RewardPredefined
	} else if kind != model.RewardPredefined && kind != model.RewardCumulative {
		writeError(w, http.StatusBadRequest, "invalid kind")
		return
	}
	if !h.ownedChild(w, r, req.ChildID) {
		return
	}

	if kind == model.RewardCumulative {
		// At most one accrual record per child; hand back the existing
		// one instead of tripping the unique index.
		existing, err := h.rewardStore.GetCumulative(req.ChildID)
		if err != nil {
			slog.Error("fetching cumulative reward", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create reward")
			return
		}
		if existing != nil {
			writeJSON(w, http.StatusOK, existing)
			return
		}
	}

	reward, err := h.rewardStore.Create(req.ChildID, req.Title, req.Description, req.Points, kind)
	if err != nil {
		slog.Error("creating reward", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create reward")
		return
	}

	h.notify(auth.UserID(r.Context()), events.ActionCreated, reward.ID)
	writeJSON(w, http.StatusCreated, reward)
}

func (h *RewardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.rewardStore.GetByID(id)
	if err != nil {
		slog.Error("fetching reward", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch reward")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "reward not found")
		return
	}
	if !h.ownedChild(w, r, existing.ChildID) {
		return
	}

	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		req.Title = existing.Title
	}
	if req.Points < 0 {
		writeError(w, http.StatusBadRequest, "points must not be negative")
		return
	}

	reward, err := h.rewardStore.Update(id, req.Title, req.Description, req.Points)
	if err != nil {
		slog.Error("updating reward", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update reward")
		return
	}

	h.notify(auth.UserID(r.Context()), events.ActionUpdated, reward.ID)
	writeJSON(w, http.StatusOK, reward)
}

// Delete removes a custom reward. The cumulative accrual record is not
// deletable; it is the child's point history, not a catalog entry.
func (h *RewardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.rewardStore.GetByID(id)
	if err != nil {
		slog.Error("fetching reward", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch reward")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "reward not found")
		return
	}
	if !h.ownedChild(w, r, existing.ChildID) {
		return
	}
	if existing.Kind == model.RewardCumulative {
		writeError(w, http.StatusBadRequest, "the accrual record cannot be deleted")
		return
	}

	if err := h.rewardStore.Delete(id); err != nil {
		slog.Error("deleting reward", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete reward")
		return
	}

	h.notify(auth.UserID(r.Context()), events.ActionDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}

type redeemRequest struct {
	Points int    `json:"points"`
	Title  string `json:"title"`
}

// Redeem deducts a redemption's cost from the child's balance. The
// deduction is checked against the balance inside the store transaction,
// so a stale client sees a 400 rather than a negative balance.
func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	childID, err := childIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid child id")
		return
	}
	if !h.ownedChild(w, r, childID) {
		return
	}

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Points <= 0 {
		writeError(w, http.StatusBadRequest, "points must be positive")
		return
	}

	if err := h.rewardStore.Debit(childID, req.Points); err != nil {
		if errors.Is(err, store.ErrInsufficientPoints) {
			writeError(w, http.StatusBadRequest, "not enough points")
			return
		}
		slog.Error("redeeming reward", "error", err, "child_id", childID)
		writeError(w, http.StatusInternalServerError, "failed to redeem reward")
		return
	}

	slog.Info("reward redeemed", "child_id", childID, "points", req.Points, "title", req.Title)

	balance, err := h.rewardStore.Balance(childID)
	if err != nil {
		slog.Error("fetching point balance", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch point balance")
		return
	}

	h.notify(auth.UserID(r.Context()), events.ActionUpdated, childID)
	writeJSON(w, http.StatusOK, balance)
}

// Predefined returns the fixed reward catalog.
func (h *RewardHandler) Predefined(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.PredefinedCatalog)
}
