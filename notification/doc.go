// Package notification implements asynchronous delivery of
// transactional emails: order confirmations and shipping updates.
//
// The Service is the producer boundary. It validates the payload for
// the requested kind and then routes delivery: if the broker is
// reachable the notification is enqueued as a job and delivered later
// by a worker; if not, it is sent synchronously through the same Sender
// the workers use. The caller learns which path was taken from the
// Result.
//
//	svc, _ := notification.NewService(sender, enqueuer, probe)
//	res, err := svc.EnqueueNotification(ctx, notification.KindShippingUpdate, payload)
//
// The worker side registers the handlers returned by Handlers on a
// queue.Worker; failed deliveries retry with exponential backoff until
// the job's budget is exhausted, at which point the failure is logged
// with the job ID and recipient for manual follow-up.
package notification
