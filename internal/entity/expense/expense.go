package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

type Category struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	User      string    `json:"user"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c Category) Key() string {
	return c.ID
}

// Transaction amounts are always positive, Kind carries the direction.
type Transaction struct {
	ID          string          `json:"_id"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        Kind            `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	User        string          `json:"user"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (t Transaction) Key() string {
	return t.ID
}

type Budget struct {
	ID        string          `json:"_id"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Month     int             `json:"month"`
	Year      int             `json:"year"`
	User      string          `json:"user"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (b Budget) Key() string {
	return b.ID
}

type Figures struct {
	Budget    decimal.Decimal `json:"budget"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
}

// BudgetSummary is computed server-side for one month, Categories is keyed
// by category ID.
type BudgetSummary struct {
	Budget     decimal.Decimal    `json:"budget"`
	Spent      decimal.Decimal    `json:"spent"`
	Remaining  decimal.Decimal    `json:"remaining"`
	Categories map[string]Figures `json:"categories"`
}

func (s BudgetSummary) Clone() BudgetSummary {
	res := s
	res.Categories = make(map[string]Figures, len(s.Categories))
	for k, v := range s.Categories {
		res.Categories[k] = v
	}
	return res
}
