package metrics

import (
	"context"
	"time"
)

type pollFunc = func(ctx context.Context) error

// RecordPollerDuration wraps f so that every run is observed in
// poller_duration_seconds under the given poller name.
func RecordPollerDuration(name string, f pollFunc) pollFunc {
	return func(ctx context.Context) error {
		start := time.Now()
		err := f(ctx)

		outcome := Success
		if err != nil {
			outcome = Error
		}
		pollerDurationHistogram.WithLabelValues(name, outcome.String()).Observe(time.Since(start).Seconds())
		return err
	}
}
