package ports

import (
	"context"
	"time"

	"github.com/pennywise/expense-tracker/internal/core/domain"
)

// ListExpensesFilter scopes an expense listing. UserID is always set by the
// service from the resolved caller.
type ListExpensesFilter struct {
	UserID   int64
	DateFrom time.Time // optional: date >= DateFrom
	DateTo   time.Time // optional: date < DateTo
	Limit    int       // capped at 500 by the service
}

// ExpenseRepository defines persistence operations for expenses.
type ExpenseRepository interface {
	Create(ctx context.Context, e *domain.Expense) (*domain.Expense, error)
	List(ctx context.Context, filter ListExpensesFilter) ([]*domain.Expense, error)
	Ping(ctx context.Context) error
}

// CreateExpenseInput carries a new expense for the calling user.
type CreateExpenseInput struct {
	UserID      int64
	Amount      float64
	Description string
	Category    string
	Date        time.Time
}

// ExpenseService is the route-layer collaborator that consumes the resolved caller.
type ExpenseService interface {
	Create(ctx context.Context, input CreateExpenseInput) (*domain.Expense, error)
	List(ctx context.Context, filter ListExpensesFilter) ([]*domain.Expense, error)
}
