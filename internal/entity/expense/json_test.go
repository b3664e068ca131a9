package expense

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_OnMarshalTransaction_ShouldWriteAmountAsNumber(t *testing.T) {
	raw, err := json.Marshal(Transaction{ID: "t1", Amount: decimal.RequireFromString("20.5"), Kind: Expense})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, 20.5, fields["amount"])
	assert.Equal(t, "t1", fields["_id"])
	assert.Equal(t, "expense", fields["type"])

	var back Transaction
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, decimal.RequireFromString("20.5").Equal(back.Amount))
	assert.False(t, decimal.MarshalJSONWithoutQuotes)
}

func Test_OnMarshalSummary_ShouldWriteFiguresAsNumbers(t *testing.T) {
	summary := BudgetSummary{
		Budget:     decimal.NewFromInt(100),
		Spent:      decimal.RequireFromString("20.5"),
		Remaining:  decimal.RequireFromString("79.5"),
		Categories: map[string]Figures{"c1": {Budget: decimal.NewFromInt(100), Spent: decimal.RequireFromString("20.5"), Remaining: decimal.RequireFromString("79.5")}},
	}

	raw, err := json.Marshal(summary)
	require.NoError(t, err)

	assert.JSONEq(t, `{"budget":100,"spent":20.5,"remaining":79.5,
		"categories":{"c1":{"budget":100,"spent":20.5,"remaining":79.5}}}`, string(raw))
}
