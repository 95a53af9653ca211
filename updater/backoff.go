package updater

import "time"

// maxBackoffShift caps the exponent so the shift cannot overflow int64
// durations even with long base intervals.
const maxBackoffShift = 16

// backoff returns the sleep before the next tick: the base interval doubled
// per consecutive failure, clamped to max.
func backoff(interval, max time.Duration, failures int) time.Duration {
	if failures <= 0 {
		return interval
	}

	shift := failures
	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}

	d := interval << shift
	if d > max || d <= 0 {
		return max
	}

	return d
}
