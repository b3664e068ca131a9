package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_OnPublish_ShouldDeliverToAllHandlersInOrder(t *testing.T) {
	bus := NewBus()
	var got []string

	bus.Subscribe(HandlerFunc(func(_ context.Context, e Event) {
		got = append(got, "first:"+e.EntityID)
	}))
	bus.Subscribe(HandlerFunc(func(_ context.Context, e Event) {
		got = append(got, "second:"+e.EntityID)
	}))

	bus.Publish(context.Background(), New(Transaction, Created, "t1"))

	assert.Equal(t, []string{"first:t1", "second:t1"}, got)
}

func Test_OnPublishWithoutHandlers_ShouldDoNothing(t *testing.T) {
	assert.NotPanics(t, func() {
		NewBus().Publish(context.Background(), New(Category, Deleted, "c1"))
	})
}

func Test_OnEntityKinds_ShouldFlagSummaryDependencies(t *testing.T) {
	assert.True(t, New(Transaction, Updated, "t").AffectsSummary())
	assert.True(t, New(Budget, Deleted, "b").AffectsSummary())
	assert.False(t, New(Category, Created, "c").AffectsSummary())
}

func Test_OnWithPeriod_ShouldKeepIdentity(t *testing.T) {
	e := New(Budget, Created, "b1")
	p := e.WithPeriod(3, 2025)

	assert.Equal(t, e.ID, p.ID)
	assert.Equal(t, 3, p.Month)
	assert.Equal(t, 2025, p.Year)
	assert.NotEmpty(t, e.ID)
}
