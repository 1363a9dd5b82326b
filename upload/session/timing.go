package session

import "time"

const (
	mib int64 = 1024 * 1024
	gib int64 = 1024 * mib

	smallPayloadThreshold  = 100 * mib
	mediumPayloadThreshold = 3 * gib

	smallPollInterval   = 2 * time.Second
	mediumPollInterval  = 4 * time.Second
	largePollPerGiB     = 1500 * time.Millisecond
	minLargePollInterval = 15 * time.Second

	deadlinePerGiB = 150 * time.Second
)

// PollInterval is the delay between two status polls of a finalizing session.
// Assembly time on the service grows with payload size, so does the interval.
func PollInterval(payloadSize int64) time.Duration {
	switch {
	case payloadSize < smallPayloadThreshold:
		return smallPollInterval
	case payloadSize < mediumPayloadThreshold:
		return mediumPollInterval
	default:
		interval := time.Duration(ceilGiB(payloadSize)) * largePollPerGiB
		if interval < minLargePollInterval {
			return minLargePollInterval
		}
		return interval
	}
}

// DefaultDeadline is how long a session may take to finalize when no explicit
// limit is configured: 2.5 minutes per started GiB.
func DefaultDeadline(payloadSize int64) time.Duration {
	return time.Duration(ceilGiB(payloadSize)) * deadlinePerGiB
}

func ceilGiB(size int64) int64 {
	if size <= 0 {
		return 0
	}
	return (size + gib - 1) / gib
}
