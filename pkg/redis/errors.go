package redis

import "errors"

var (
	ErrNoHostConfigured  = errors.New("no redis host configured")
	ErrRedisNotReady     = errors.New("redis did not become ready within the given time period")
	ErrHealthcheckFailed = errors.New("redis healthcheck failed")
)
