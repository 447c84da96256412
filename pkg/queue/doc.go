// Package queue implements the broker-backed job queue carrying
// transactional notifications from producers to workers.
//
// The package is organised around three components:
//
//   - Enqueuer — builds uniquely identified job envelopes and persists them
//   - Worker   — claims ready jobs and dispatches them to a Handler by kind
//   - Storage  — RedisStorage for production, MemoryStorage for tests
//
// Components interact only through the EnqueuerRepository and
// WorkerRepository interfaces, so the broker can be swapped without
// touching dispatch logic. A Job carries its own retry budget
// (MaxAttempts, default 5) and the storage applies exponential backoff
// between attempts; once the budget is exhausted the job moves to a
// bounded failed history and the worker emits a terminal log line with
// the job ID and recipient address.
//
// Multiple worker processes may consume from the same broker. Claims
// are atomic on the broker side, and a lock-expiry reaper returns jobs
// abandoned by crashed workers to the pending set.
//
// Basic usage:
//
//	storage, _ := queue.NewRedisStorage(client)
//	enq, _ := queue.NewEnqueuer(storage)
//	job, _ := enq.Enqueue(ctx, "shipping_update", payload)
//
//	w, _ := queue.NewWorker(storage)
//	w.RegisterHandlers(queue.NewJobHandler("shipping_update", handleShippingUpdate))
//	_ = w.Start(ctx)
//	defer w.Stop()
package queue
