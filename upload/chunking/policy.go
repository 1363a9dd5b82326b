package chunking

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MiB is 1024*1024 bytes.
	MiB int64 = 1024 * 1024
	// GiB is 1024*1024*1024 bytes.
	GiB int64 = 1024 * MiB

	// MinChunkByteCount is the smallest chunk the remote service accepts.
	MinChunkByteCount = 5 * MiB
	// MaxChunkByteCount is the largest chunk the remote service accepts.
	MaxChunkByteCount = 500 * MiB
	// DefaultChunkByteCount is used when no chunk size is configured.
	DefaultChunkByteCount = MinChunkByteCount

	// MaxConcurrency caps the number of parallel chunk requests.
	MaxConcurrency = 256
	// DefaultMaxConcurrency is used when no concurrency is configured.
	DefaultMaxConcurrency = 5
)

var (
	ErrInvalidChunkSize       = errors.New("chunk byte count out of range")
	ErrInvalidConcurrency     = errors.New("max concurrency out of range")
	ErrInvalidMode            = errors.New("unknown chunking mode")
	ErrInvalidFinalizeTimeout = errors.New("finalize timeout must not be negative")
	ErrInvalidChunkTimeout    = errors.New("chunk timeout must not be negative")
)

// ConfigError describes a single invalid chunking parameter. Err is one of the
// ErrInvalid* sentinels.
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Params are the tunables checked before any network call is made.
type Params struct {
	Mode           Mode
	ChunkByteCount int64
	MaxConcurrency int
	// FinalizeTimeout overrides the size-derived finalize deadline when non-nil.
	FinalizeTimeout *time.Duration
	// ChunkTimeout bounds each chunk request; 0 disables it.
	ChunkTimeout time.Duration
}

// Validate checks every field in a fixed order and returns a *ConfigError for
// the first violation.
func (p Params) Validate() error {
	if p.ChunkByteCount < MinChunkByteCount || p.ChunkByteCount > MaxChunkByteCount {
		return &ConfigError{
			Field: "chunk byte count",
			Value: p.ChunkByteCount,
			Err:   fmt.Errorf("%w: must be between %d and %d", ErrInvalidChunkSize, MinChunkByteCount, MaxChunkByteCount),
		}
	}

	if p.MaxConcurrency < 1 || p.MaxConcurrency > MaxConcurrency {
		return &ConfigError{
			Field: "max concurrency",
			Value: p.MaxConcurrency,
			Err:   fmt.Errorf("%w: must be between 1 and %d", ErrInvalidConcurrency, MaxConcurrency),
		}
	}

	if !p.Mode.IsValid() {
		return &ConfigError{
			Field: "mode",
			Value: p.Mode,
			Err:   fmt.Errorf("%w: must be one of %s", ErrInvalidMode, validModes()),
		}
	}

	if p.FinalizeTimeout != nil && *p.FinalizeTimeout < 0 {
		return &ConfigError{
			Field: "finalize timeout",
			Value: *p.FinalizeTimeout,
			Err:   ErrInvalidFinalizeTimeout,
		}
	}

	if p.ChunkTimeout < 0 {
		return &ConfigError{
			Field: "chunk timeout",
			Value: p.ChunkTimeout,
			Err:   ErrInvalidChunkTimeout,
		}
	}

	return nil
}
