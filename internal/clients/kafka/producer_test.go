package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/expense-tracker/internal/model/events"
)

func Test_OnPublish_ShouldSendJSONEvent(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	e := events.New(events.Transaction, events.Created, "tx1").WithPeriod(3, 2024)

	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got events.Event
		require.NoError(t, json.Unmarshal(val, &got))
		assert.Equal(t, e.ID, got.ID)
		assert.Equal(t, events.Transaction, got.Entity)
		assert.Equal(t, 3, got.Month)
		return nil
	})

	p := newProducer(mock, "expense-events")
	require.NoError(t, p.Publish(42, e))
	require.NoError(t, mock.Close())
}

func Test_OnSendFailure_ShouldLogAndContinue(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	mock.ExpectSendMessageAndSucceed()

	p := newProducer(mock, "expense-events")
	bus := events.NewBus()
	bus.Subscribe(p.Sink(7))

	bus.Publish(context.Background(), events.New(events.Category, events.Created, "c1"))
	bus.Publish(context.Background(), events.New(events.Category, events.Deleted, "c1"))

	require.NoError(t, mock.Close())
}
