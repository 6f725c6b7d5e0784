package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pennywise/expense-tracker/internal/api/metrics"
	"github.com/pennywise/expense-tracker/internal/core/domain"
	"github.com/pennywise/expense-tracker/internal/core/ports"
)

const (
	defaultExpenseLimit = 50
	maxExpenseLimit     = 500
	defaultCategory     = "other"
)

type ExpenseService struct {
	repo   ports.ExpenseRepository
	logger zerolog.Logger
}

var _ ports.ExpenseService = (*ExpenseService)(nil)

func NewExpenseService(repo ports.ExpenseRepository, logger zerolog.Logger) *ExpenseService {
	return &ExpenseService{repo: repo, logger: logger}
}

// Create records an expense for input.UserID, which the route layer takes
// from the resolved caller.
func (s *ExpenseService) Create(ctx context.Context, input ports.CreateExpenseInput) (*domain.Expense, error) {
	if input.UserID <= 0 {
		return nil, domain.ErrUnauthorized
	}
	description := strings.TrimSpace(input.Description)
	if input.Amount <= 0 || description == "" {
		return nil, fmt.Errorf("%w: amount must be positive and description non-empty", domain.ErrInvalidExpense)
	}

	category := strings.ToLower(strings.TrimSpace(input.Category))
	if category == "" {
		category = defaultCategory
	}

	now := time.Now().UTC()
	date := input.Date.UTC()
	if input.Date.IsZero() {
		date = now
	}

	created, err := s.repo.Create(ctx, &domain.Expense{
		UserID:      input.UserID,
		Amount:      input.Amount,
		Description: description,
		Category:    category,
		Date:        date,
		CreatedAt:   now,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", input.UserID).Msg("failed to create expense")
		return nil, err
	}

	metrics.ExpensesCreatedTotal.Inc()
	s.logger.Info().Str("expense_id", created.ID).Int64("user_id", input.UserID).Msg("expense created")
	return created, nil
}

// List returns the caller's expenses, newest first.
func (s *ExpenseService) List(ctx context.Context, filter ports.ListExpensesFilter) ([]*domain.Expense, error) {
	if filter.UserID <= 0 {
		return nil, domain.ErrUnauthorized
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultExpenseLimit
	case filter.Limit > maxExpenseLimit:
		filter.Limit = maxExpenseLimit
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return items, nil
}
