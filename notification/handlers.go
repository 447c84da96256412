package notification

import (
	"github.com/shopkit/notifier/pkg/queue"
)

// Handlers returns the queue handlers for every notification kind,
// ready for registration on a worker. Each handler decodes its typed
// payload and delegates to the Sender; a provider failure propagates as
// an error so the queue's retry mechanism engages.
func Handlers(sender *Sender) []queue.Handler {
	return []queue.Handler{
		queue.NewJobHandler(KindOrderConfirmation.String(), sender.SendOrderConfirmation),
		queue.NewJobHandler(KindShippingUpdate.String(), sender.SendShippingUpdate),
	}
}
