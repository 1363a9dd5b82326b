package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPollInterval(t *testing.T) {
	tests := []struct {
		name        string
		payloadSize int64
		want        time.Duration
	}{
		{name: "50 MiB", payloadSize: 50 * mib, want: 2000 * time.Millisecond},
		{name: "just under 100 MiB", payloadSize: 100*mib - 1, want: 2000 * time.Millisecond},
		{name: "100 MiB", payloadSize: 100 * mib, want: 4000 * time.Millisecond},
		{name: "1 GiB", payloadSize: gib, want: 4000 * time.Millisecond},
		{name: "just under 3 GiB", payloadSize: 3*gib - 1, want: 4000 * time.Millisecond},
		{name: "3 GiB", payloadSize: 3 * gib, want: 15000 * time.Millisecond},
		{name: "5 GiB", payloadSize: 5 * gib, want: 15000 * time.Millisecond},
		{name: "20 GiB", payloadSize: 20 * gib, want: 30000 * time.Millisecond},
		{name: "20 GiB plus a byte", payloadSize: 20*gib + 1, want: 31500 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PollInterval(tt.payloadSize))
		})
	}
}

func TestDefaultDeadline(t *testing.T) {
	tests := []struct {
		name        string
		payloadSize int64
		want        time.Duration
	}{
		{name: "one byte", payloadSize: 1, want: 150000 * time.Millisecond},
		{name: "1 GiB", payloadSize: gib, want: 150000 * time.Millisecond},
		{name: "2.5 GiB", payloadSize: 5 * gib / 2, want: 450000 * time.Millisecond},
		{name: "10 GiB", payloadSize: 10 * gib, want: 25 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultDeadline(tt.payloadSize))
		})
	}
}
