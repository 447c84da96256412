// Package redis manages the broker connection for the notification
// queue.
//
// It provides three things: Connect, which dials the broker with a
// large jittered-backoff retry budget so transient network blips never
// bubble up as job failures; IsAvailable, a cheap liveness probe used
// to decide between the queue path and direct delivery; and
// Healthcheck, a readiness hook for the worker process.
//
// Configuration comes from REDIS_HOST, REDIS_PORT, and REDIS_PASSWORD
// with localhost:6379 defaults. Leaving REDIS_HOST empty is the
// supported way to run without a broker at all: IsAvailable reports
// false without dialing and every notification is delivered directly.
package redis
