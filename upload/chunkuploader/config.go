package chunkuploader

import (
	"time"

	"github.com/ardrive/turbo-go/upload/chunking"
)

// Config holds configuration for chunked uploads.
type Config struct {
	// Mode decides whether the chunked protocol is used at all.
	// Default: chunking.ModeAuto
	Mode chunking.Mode

	// ChunkByteCount is the size of every chunk but the last.
	// Default: 5 MiB
	ChunkByteCount int64

	// MaxConcurrency is the size of a batch of parallel chunk uploads for
	// in-memory items. Streams are always uploaded one chunk at a time.
	// Default: 5
	MaxConcurrency int

	// FinalizeTimeout overrides the size-derived deadline for the service to
	// finalize the upload.
	// Default: nil
	FinalizeTimeout *time.Duration

	// ChunkTimeout bounds a single chunk request including transport retries.
	// Default: 0, no limit beyond the transport's own
	ChunkTimeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Mode:           chunking.ModeAuto,
		ChunkByteCount: chunking.DefaultChunkByteCount,
		MaxConcurrency: chunking.DefaultMaxConcurrency,
	}
}

// Params returns the chunking parameters of the config.
func (c Config) Params() chunking.Params {
	return chunking.Params{
		Mode:            c.Mode,
		ChunkByteCount:  c.ChunkByteCount,
		MaxConcurrency:  c.MaxConcurrency,
		FinalizeTimeout: c.FinalizeTimeout,
		ChunkTimeout:    c.ChunkTimeout,
	}
}

// Validate ...
func (c Config) Validate() error {
	return c.Params().Validate()
}
