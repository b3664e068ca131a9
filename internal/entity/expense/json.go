package expense

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Number renders an amount the way the API expects it, as a bare JSON
// number. A nil amount gives "" so omitempty drops the field.
func Number(d *decimal.Decimal) json.Number {
	if d == nil {
		return ""
	}
	return json.Number(d.String())
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	type plain Transaction
	return json.Marshal(struct {
		plain
		Amount json.Number `json:"amount"`
	}{plain(t), Number(&t.Amount)})
}

func (b Budget) MarshalJSON() ([]byte, error) {
	type plain Budget
	return json.Marshal(struct {
		plain
		Amount json.Number `json:"amount"`
	}{plain(b), Number(&b.Amount)})
}

func (f Figures) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Budget    json.Number `json:"budget"`
		Spent     json.Number `json:"spent"`
		Remaining json.Number `json:"remaining"`
	}{Number(&f.Budget), Number(&f.Spent), Number(&f.Remaining)})
}

func (s BudgetSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Budget     json.Number        `json:"budget"`
		Spent      json.Number        `json:"spent"`
		Remaining  json.Number        `json:"remaining"`
		Categories map[string]Figures `json:"categories"`
	}{Number(&s.Budget), Number(&s.Spent), Number(&s.Remaining), s.Categories})
}
