package lithotop

import (
	"fmt"
	"time"
)

const (
	// REFRESH_INTERVAL is the default time in seconds between automatic reloads
	REFRESH_INTERVAL = 300

	// REQUEST_TIMEOUT is the default per-request timeout in seconds
	REQUEST_TIMEOUT = 10

	// METRICS_LIMIT is the number of recent metric records requested per machine
	METRICS_LIMIT = 100

	// NOTIFICATION_TTL is how long a notification stays on screen in seconds
	NOTIFICATION_TTL = 3

	// TOOLTIP_PRECISION is the number of decimals shown in chart tooltips
	TOOLTIP_PRECISION = 4
)

// RefreshDuration returns the default refresh interval as a time.Duration
func RefreshDuration() time.Duration {
	return time.Duration(REFRESH_INTERVAL) * time.Second
}

// RequestTimeout returns the default request timeout as a time.Duration
func RequestTimeout() time.Duration {
	return time.Duration(REQUEST_TIMEOUT) * time.Second
}

// NotificationTTL returns the notification lifetime as a time.Duration
func NotificationTTL() time.Duration {
	return time.Duration(NOTIFICATION_TTL) * time.Second
}

// RefreshSpec returns the cron spec for a refresh interval (e.g., "@every 5m0s")
func RefreshSpec(interval time.Duration) string {
	if interval <= 0 {
		interval = RefreshDuration()
	}
	return fmt.Sprintf("@every %s", interval)
}

// FormatValue formats a chart value the way tooltips show it
func FormatValue(v float64) string {
	return fmt.Sprintf("%.*f", TOOLTIP_PRECISION, v)
}
