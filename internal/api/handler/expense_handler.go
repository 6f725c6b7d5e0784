package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pennywise/expense-tracker/internal/core/domain"
	"github.com/pennywise/expense-tracker/internal/core/ports"
)

const dateLayout = "2006-01-02"

// ExpenseHandler serves the caller's own expenses.
type ExpenseHandler struct {
	service ports.ExpenseService
}

func NewExpenseHandler(service ports.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

type createExpenseRequest struct {
	Amount      float64 `json:"amount"      validate:"gt=0"`
	Description string  `json:"description" validate:"required,max=256"`
	Category    string  `json:"category"    validate:"max=64"`
	Date        string  `json:"date"        validate:"omitempty,datetime=2006-01-02"`
}

type listExpensesResponse struct {
	Items []*domain.Expense `json:"items"`
	Count int               `json:"count"`
}

// Create records an expense for the caller.
//
// @Summary      Create an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        body  body      createExpenseRequest  true  "Expense"
// @Success      201   {object}  domain.Expense
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/expenses [post]
func (h *ExpenseHandler) Create(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req createExpenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var date time.Time
	if req.Date != "" {
		date, _ = time.Parse(dateLayout, req.Date)
	}

	created, err := h.service.Create(c.Request().Context(), ports.CreateExpenseInput{
		UserID:      caller.UserID,
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Date:        date,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// List returns the caller's expenses, newest first. Optional query
// parameters: from, to (YYYY-MM-DD, to is exclusive) and limit.
//
// @Summary      List expenses
// @Tags         expenses
// @Produce      json
// @Param        from   query     string  false  "Start date (inclusive)"
// @Param        to     query     string  false  "End date (exclusive)"
// @Param        limit  query     int     false  "Max items (default 50, max 500)"
// @Success      200    {object}  listExpensesResponse
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /api/expenses [get]
func (h *ExpenseHandler) List(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	filter := ports.ListExpensesFilter{UserID: caller.UserID}
	if filter.DateFrom, err = parseDateParam(c, "from"); err != nil {
		return err
	}
	if filter.DateTo, err = parseDateParam(c, "to"); err != nil {
		return err
	}
	if raw := c.QueryParam("limit"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		filter.Limit = n
	}

	items, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*domain.Expense{}
	}
	return c.JSON(http.StatusOK, listExpensesResponse{Items: items, Count: len(items)})
}

func parseDateParam(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, name+" must be formatted as YYYY-MM-DD")
	}
	return t, nil
}
