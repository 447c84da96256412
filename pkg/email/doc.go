// Package email provides the outbound mail transport used by the
// notification system.
//
// EmailSender is the single seam between notification composition and
// the provider. Two implementations ship with the package: a Postmark
// client for production and a DevSender that writes messages to disk
// for local development. Both validate SendEmailParams before sending
// and both surface provider failures as errors so callers can retry.
package email
