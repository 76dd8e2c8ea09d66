package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"homeboard/internal/database"
	"homeboard/internal/model"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedFamily(t *testing.T, db *sql.DB) (userID, childID int64) {
	t.Helper()
	user, err := NewUserStore(db).Create("parent@example.com", "Sam", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	child, err := NewChildStore(db).Create(user.ID, "Robin", "", "3rd", "")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	return user.ID, child.ID
}

func TestTaskCompleteCreditsOnce(t *testing.T) {
	db := testDB(t)
	_, childID := seedFamily(t, db)

	tasks := NewTaskStore(db)
	rewards := NewRewardStore(db)

	task, err := tasks.Create(childID, "Clean room", model.PriorityMedium, nil, model.RecurrenceNone)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	done, err := tasks.Complete(task.ID, model.CompletionPoints, "Points earned", "")
	if err != nil {
		t.Fatalf("complete task: %v", err)
	}
	if done.Status != model.StatusDone {
		t.Errorf("status = %s, want done", done.Status)
	}
	if done.CompletedAt == nil {
		t.Error("completed_at not stamped")
	}

	balance, err := rewards.Balance(childID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Balance != model.CompletionPoints || balance.TotalEarned != model.CompletionPoints {
		t.Errorf("balance = %+v, want %d earned", balance, model.CompletionPoints)
	}

	cumulative, err := rewards.GetCumulative(childID)
	if err != nil {
		t.Fatalf("get cumulative: %v", err)
	}
	if cumulative == nil || cumulative.Points != model.CompletionPoints {
		t.Fatalf("cumulative = %+v, want %d points", cumulative, model.CompletionPoints)
	}

	// Completing an already-done task must not credit again.
	if _, err := tasks.Complete(task.ID, model.CompletionPoints, "Points earned", ""); err != nil {
		t.Fatalf("repeat complete: %v", err)
	}
	balance, _ = rewards.Balance(childID)
	if balance.Balance != model.CompletionPoints {
		t.Errorf("balance after repeat = %d, want %d", balance.Balance, model.CompletionPoints)
	}
}

func TestTaskCompleteMissing(t *testing.T) {
	db := testDB(t)
	seedFamily(t, db)

	task, err := NewTaskStore(db).Complete(9999, model.CompletionPoints, "Points earned", "")
	if err != nil {
		t.Fatalf("complete missing task: %v", err)
	}
	if task != nil {
		t.Errorf("expected nil for missing task, got %+v", task)
	}
}

func TestTaskCompleteRespawnsRecurring(t *testing.T) {
	db := testDB(t)
	_, childID := seedFamily(t, db)

	tasks := NewTaskStore(db)
	due := time.Now().UTC().Add(-24 * time.Hour)
	task, err := tasks.Create(childID, "Feed the cat", model.PriorityHigh, &due, model.RecurrenceDaily)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if _, err := tasks.Complete(task.ID, model.CompletionPoints, "Points earned", ""); err != nil {
		t.Fatalf("complete task: %v", err)
	}

	list, err := tasks.ListByChild(childID)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected respawned task, got %d tasks", len(list))
	}

	var next *model.Task
	for i := range list {
		if list[i].ID != task.ID {
			next = &list[i]
		}
	}
	if next == nil || next.Status != model.StatusToDo {
		t.Fatalf("respawned task = %+v, want fresh to-do", next)
	}
	if next.DueDate == nil || !next.DueDate.After(time.Now().UTC()) {
		t.Errorf("respawned due date = %v, want in the future", next.DueDate)
	}
	if next.Recurrence != model.RecurrenceDaily {
		t.Errorf("respawned recurrence = %s, want daily", next.Recurrence)
	}
}

func TestDeleteCompleted(t *testing.T) {
	db := testDB(t)
	_, childID := seedFamily(t, db)

	tasks := NewTaskStore(db)
	done1, _ := tasks.Create(childID, "a", model.PriorityLow, nil, model.RecurrenceNone)
	done2, _ := tasks.Create(childID, "b", model.PriorityLow, nil, model.RecurrenceNone)
	open, _ := tasks.Create(childID, "c", model.PriorityLow, nil, model.RecurrenceNone)
	tasks.Complete(done1.ID, 10, "Points earned", "")
	tasks.Complete(done2.ID, 10, "Points earned", "")

	ids, err := tasks.DeleteCompleted(childID)
	if err != nil {
		t.Fatalf("delete completed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("deleted ids = %v, want two", ids)
	}

	remaining, _ := tasks.ListByChild(childID)
	if len(remaining) != 1 || remaining[0].ID != open.ID {
		t.Errorf("remaining = %+v, want only the open task", remaining)
	}
}

func TestRewardDebit(t *testing.T) {
	db := testDB(t)
	_, childID := seedFamily(t, db)

	rewards := NewRewardStore(db)
	if err := rewards.Credit(childID, 30, "Points earned", ""); err != nil {
		t.Fatalf("credit: %v", err)
	}

	if err := rewards.Debit(childID, 50); err != ErrInsufficientPoints {
		t.Errorf("overdraft debit err = %v, want ErrInsufficientPoints", err)
	}
	balance, _ := rewards.Balance(childID)
	if balance.Balance != 30 {
		t.Errorf("balance after failed debit = %d, want 30", balance.Balance)
	}

	if err := rewards.Debit(childID, 10); err != nil {
		t.Fatalf("debit: %v", err)
	}
	balance, _ = rewards.Balance(childID)
	if balance.Balance != 20 || balance.TotalEarned != 30 || balance.TotalSpent != 10 {
		t.Errorf("balance = %+v, want 20/30/10", balance)
	}
}

func TestCumulativeUniquePerChild(t *testing.T) {
	db := testDB(t)
	_, childID := seedFamily(t, db)

	rewards := NewRewardStore(db)
	if _, err := rewards.Create(childID, "Points earned", "", 0, model.RewardCumulative); err != nil {
		t.Fatalf("create cumulative: %v", err)
	}
	if _, err := rewards.Create(childID, "Points earned", "", 0, model.RewardCumulative); err == nil {
		t.Error("expected unique index violation for second cumulative record")
	}
}

func TestChildOwnership(t *testing.T) {
	db := testDB(t)
	userID, childID := seedFamily(t, db)

	other, err := NewUserStore(db).Create("other@example.com", "Alex", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	children := NewChildStore(db)
	owned, err := children.GetOwned(userID, childID)
	if err != nil || owned == nil {
		t.Fatalf("GetOwned(owner) = %v, %v", owned, err)
	}
	stolen, err := children.GetOwned(other.ID, childID)
	if err != nil {
		t.Fatalf("GetOwned(other): %v", err)
	}
	if stolen != nil {
		t.Error("child visible to a different account")
	}
}

func TestBudgetSummary(t *testing.T) {
	db := testDB(t)
	userID, _ := seedFamily(t, db)

	finance := NewFinanceStore(db)
	if _, err := finance.CreateTransaction(userID, model.TransactionIncome, decimal.NewFromInt(100), "salary", "", "2026-08-01"); err != nil {
		t.Fatalf("create income: %v", err)
	}
	if _, err := finance.CreateTransaction(userID, model.TransactionExpense, decimal.RequireFromString("39.95"), "groceries", "", "2026-08-02"); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	summary, err := finance.Summary(userID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !summary.Income.Equal(decimal.NewFromInt(100)) {
		t.Errorf("income = %s, want 100", summary.Income)
	}
	if !summary.Expenses.Equal(decimal.RequireFromString("39.95")) {
		t.Errorf("expenses = %s, want 39.95", summary.Expenses)
	}
	if !summary.Balance.Equal(decimal.RequireFromString("60.05")) {
		t.Errorf("balance = %s, want 60.05", summary.Balance)
	}
}
