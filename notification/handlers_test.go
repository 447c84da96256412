package notification_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopkit/notifier/notification"
)

func TestHandlers(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{}
	sender, err := notification.NewSender(mailer)
	require.NoError(t, err)

	handlers := notification.Handlers(sender)
	require.Len(t, handlers, 2)

	byKind := make(map[string]int)
	for i, h := range handlers {
		byKind[h.Kind()] = i
	}
	require.Contains(t, byKind, "order_confirmation")
	require.Contains(t, byKind, "shipping_update")

	t.Run("order confirmation handler sends the right email", func(t *testing.T) {
		raw, err := json.Marshal(validOrderConfirmation())
		require.NoError(t, err)

		h := handlers[byKind["order_confirmation"]]
		require.NoError(t, h.Handle(context.Background(), raw))

		sent := mailer.Sent()
		require.NotEmpty(t, sent)
		assert.Equal(t, "order_confirmation", sent[len(sent)-1].Tag)
	})

	t.Run("shipping update handler sends the right email", func(t *testing.T) {
		raw, err := json.Marshal(validShippingUpdate())
		require.NoError(t, err)

		h := handlers[byKind["shipping_update"]]
		require.NoError(t, h.Handle(context.Background(), raw))

		sent := mailer.Sent()
		require.NotEmpty(t, sent)
		assert.Equal(t, "shipping_update", sent[len(sent)-1].Tag)
	})
}
