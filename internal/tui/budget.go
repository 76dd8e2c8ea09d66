package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"homeboard/internal/api"
	"homeboard/internal/model"
	"homeboard/internal/sync"
)

type budgetPane int

const (
	paneTransactions budgetPane = iota
	paneShopping
)

type budgetModel struct {
	syncer *sync.Syncer
	pane   budgetPane
	cursor int

	formActive bool
	form       *huh.Form
	editingID  int64
	formPane   budgetPane

	// transaction form
	formType     *string
	formAmount   *string
	formCategory *string
	formNote     *string
	formDate     *string

	// shopping item form
	formName     *string
	formCost     *string
	formPriority *string
}

func newBudgetModel(s *sync.Syncer) budgetModel {
	txType, amount, category, note, date := string(model.TransactionExpense), "", "", "", ""
	name, cost, priority := "", "", string(model.PriorityMedium)
	return budgetModel{
		syncer:       s,
		formType:     &txType,
		formAmount:   &amount,
		formCategory: &category,
		formNote:     &note,
		formDate:     &date,
		formName:     &name,
		formCost:     &cost,
		formPriority: &priority,
	}
}

func (m budgetModel) listLen() int {
	if m.pane == paneShopping {
		return m.syncer.ShoppingItems.Len()
	}
	return m.syncer.Transactions.Len()
}

func (m budgetModel) update(msg tea.Msg) (budgetModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case financeLoadedMsg:
		if n := m.listLen(); m.cursor >= n {
			m.cursor = max(0, n-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			m.pane = paneTransactions
			m.cursor = 0
		case key.Matches(msg, keys.Right):
			m.pane = paneShopping
			m.cursor = 0
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < m.listLen()-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.New):
			return m.showForm(0)
		case key.Matches(msg, keys.Edit):
			if m.pane == paneShopping {
				items := m.syncer.ShoppingItems.List()
				if m.cursor < len(items) {
					return m.showForm(items[m.cursor].ID)
				}
			} else {
				txs := m.syncer.Transactions.List()
				if m.cursor < len(txs) {
					return m.showForm(txs[m.cursor].ID)
				}
			}
		case key.Matches(msg, keys.Delete):
			return m, m.deleteSelected()
		}
	}
	return m, nil
}

func (m budgetModel) deleteSelected() tea.Cmd {
	s := m.syncer
	if m.pane == paneShopping {
		items := s.ShoppingItems.List()
		if m.cursor >= len(items) {
			return nil
		}
		id := items[m.cursor].ID
		return func() tea.Msg {
			if err := s.DeleteShoppingItem(context.Background(), id); err != nil {
				return errMsg{err}
			}
			return mutationDoneMsg{status: "Item removed"}
		}
	}
	txs := s.Transactions.List()
	if m.cursor >= len(txs) {
		return nil
	}
	id := txs[m.cursor].ID
	return func() tea.Msg {
		if err := s.DeleteTransaction(context.Background(), id); err != nil {
			return errMsg{err}
		}
		return mutationDoneMsg{status: "Transaction removed"}
	}
}

func (m budgetModel) showForm(editingID int64) (budgetModel, tea.Cmd) {
	m.editingID = editingID
	m.formPane = m.pane

	if m.pane == paneShopping {
		*m.formName = ""
		*m.formCost = ""
		*m.formCategory = ""
		*m.formPriority = string(model.PriorityMedium)
		if editingID != 0 {
			if item, ok := m.syncer.ShoppingItems.Get(editingID); ok {
				*m.formName = item.Name
				*m.formCost = item.Cost.String()
				*m.formCategory = item.Category
				*m.formPriority = string(item.Priority)
			}
		}
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Item").Value(m.formName),
				huh.NewInput().Title("Estimated cost").Value(m.formCost).
					Validate(validAmount),
				huh.NewInput().Title("Category").Value(m.formCategory),
				huh.NewSelect[string]().Title("Priority").
					Options(
						huh.NewOption("low", string(model.PriorityLow)),
						huh.NewOption("medium", string(model.PriorityMedium)),
						huh.NewOption("high", string(model.PriorityHigh)),
					).
					Value(m.formPriority),
			),
		).WithShowHelp(true).WithShowErrors(true)
	} else {
		*m.formType = string(model.TransactionExpense)
		*m.formAmount = ""
		*m.formCategory = ""
		*m.formNote = ""
		*m.formDate = time.Now().Format("2006-01-02")
		if editingID != 0 {
			if tx, ok := m.syncer.Transactions.Get(editingID); ok {
				*m.formType = string(tx.Type)
				*m.formAmount = tx.Amount.String()
				*m.formCategory = tx.Category
				*m.formNote = tx.Description
				*m.formDate = tx.Date
			}
		}
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().Title("Type").
					Options(
						huh.NewOption("expense", string(model.TransactionExpense)),
						huh.NewOption("income", string(model.TransactionIncome)),
					).
					Value(m.formType),
				huh.NewInput().Title("Amount").Value(m.formAmount).
					Validate(validAmount),
				huh.NewInput().Title("Category").Value(m.formCategory),
				huh.NewInput().Title("Note").Value(m.formNote),
				huh.NewInput().Title("Date (YYYY-MM-DD)").Value(m.formDate),
			),
		).WithShowHelp(true).WithShowErrors(true)
	}

	m.formActive = true
	return m, m.form.Init()
}

func validAmount(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if d.IsNegative() {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func (m budgetModel) updateForm(msg tea.Msg) (budgetModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.formActive = false
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		if m.formPane == paneShopping {
			return m, m.submitShoppingItem()
		}
		return m, m.submitTransaction()
	}

	return m, cmd
}

func (m budgetModel) submitShoppingItem() tea.Cmd {
	name := strings.TrimSpace(*m.formName)
	if name == "" {
		return nil
	}
	cost := decimal.Zero
	if s := strings.TrimSpace(*m.formCost); s != "" {
		cost, _ = decimal.NewFromString(s)
	}
	params := api.ShoppingItemParams{
		Name:     name,
		Category: strings.TrimSpace(*m.formCategory),
		Priority: *m.formPriority,
		Cost:     cost,
	}
	editingID := m.editingID
	s := m.syncer
	return func() tea.Msg {
		var err error
		if editingID != 0 {
			_, err = s.EditShoppingItem(context.Background(), editingID, params)
		} else {
			_, err = s.CreateShoppingItem(context.Background(), params)
		}
		if err != nil {
			return errMsg{err}
		}
		return mutationDoneMsg{status: "Item saved"}
	}
}

func (m budgetModel) submitTransaction() tea.Cmd {
	amount, err := decimal.NewFromString(strings.TrimSpace(*m.formAmount))
	if err != nil || !amount.IsPositive() {
		return func() tea.Msg { return errMsg{fmt.Errorf("amount must be a positive number")} }
	}
	params := api.TransactionParams{
		Type:        *m.formType,
		Amount:      amount,
		Category:    strings.TrimSpace(*m.formCategory),
		Description: strings.TrimSpace(*m.formNote),
		Date:        strings.TrimSpace(*m.formDate),
	}
	editingID := m.editingID
	s := m.syncer
	return func() tea.Msg {
		var err error
		if editingID != 0 {
			_, err = s.EditTransaction(context.Background(), editingID, params)
		} else {
			_, err = s.CreateTransaction(context.Background(), params)
		}
		if err != nil {
			return errMsg{err}
		}
		return mutationDoneMsg{status: "Transaction saved"}
	}
}

func (m budgetModel) view() string {
	if m.formActive && m.form != nil {
		title := "New Transaction"
		if m.formPane == paneShopping {
			title = "New Shopping Item"
		}
		if m.editingID != 0 {
			title = strings.Replace(title, "New", "Edit", 1)
		}
		return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", m.form.View()))
	}

	header := mutedStyle.Render("Summary pending...")
	if summary := m.syncer.Summary(); summary != nil {
		header = fmt.Sprintf("Income %s   Expenses %s   Balance %s",
			doneStyle.Render(summary.Income.StringFixed(2)),
			lateStyle.Render(summary.Expenses.StringFixed(2)),
			titleStyle.Render(summary.Balance.StringFixed(2)))
	}

	txTab := "Transactions"
	shopTab := "Shopping List"
	if m.pane == paneShopping {
		shopTab = selectedStyle.Render(shopTab)
		txTab = mutedStyle.Render(txTab)
	} else {
		txTab = selectedStyle.Render(txTab)
		shopTab = mutedStyle.Render(shopTab)
	}

	rows := []string{titleStyle.Render("Budget"), "", header, "", txTab + "  |  " + shopTab, ""}

	if m.pane == paneShopping {
		items := m.syncer.ShoppingItems.List()
		if len(items) == 0 {
			rows = append(rows, mutedStyle.Render("Shopping list is empty. Press n to add an item."))
		}
		for i, item := range items {
			cursor := "  "
			if i == m.cursor {
				cursor = selectedStyle.Render("> ")
			}
			line := fmt.Sprintf("%s%s %s  %s", cursor, priorityStyle(string(item.Priority)).Render("●"), item.Name,
				mutedStyle.Render(item.Cost.StringFixed(2)))
			if item.Category != "" {
				line += " " + mutedStyle.Render("["+item.Category+"]")
			}
			rows = append(rows, line)
		}
	} else {
		txs := m.syncer.Transactions.List()
		if len(txs) == 0 {
			rows = append(rows, mutedStyle.Render("No transactions yet. Press n to record one."))
		}
		for i, tx := range txs {
			cursor := "  "
			if i == m.cursor {
				cursor = selectedStyle.Render("> ")
			}
			amount := "-" + tx.Amount.StringFixed(2)
			amountStyle := lateStyle
			if tx.Type == model.TransactionIncome {
				amount = "+" + tx.Amount.StringFixed(2)
				amountStyle = doneStyle
			}
			label := tx.Description
			if label == "" {
				label = tx.Category
			}
			rows = append(rows, fmt.Sprintf("%s%s  %s  %s", cursor, mutedStyle.Render(tx.Date),
				amountStyle.Render(amount), label))
		}
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
