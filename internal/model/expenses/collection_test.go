package expenses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"max.ks1230/expense-tracker/internal/entity/expense"
)

func Test_OnCollectionHelpers_ShouldNotTouchInput(t *testing.T) {
	in := []expense.Category{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}

	added := appendItem(in, expense.Category{ID: "c"})
	replaced := replaceByKey(in, "a", expense.Category{ID: "a", Name: "AA"})
	removed := removeByKey(in, "b")

	assert.Equal(t, []expense.Category{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}, in)
	assert.Len(t, added, 3)
	assert.Equal(t, "AA", replaced[0].Name)
	assert.Equal(t, []expense.Category{{ID: "a", Name: "A"}}, removed)
}

func Test_OnUnknownKey_ShouldKeepCollection(t *testing.T) {
	in := []expense.Budget{{ID: "a"}}

	assert.Equal(t, in, replaceByKey(in, "zzz", expense.Budget{ID: "zzz"}))
	assert.Equal(t, in, removeByKey(in, "zzz"))
}
