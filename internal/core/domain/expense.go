package domain

import "time"

// Expense is a single spending record owned by a user.
type Expense struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"userId"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}
