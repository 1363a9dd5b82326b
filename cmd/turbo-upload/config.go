package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ardrive/turbo-go/upload/chunking"
	"github.com/ardrive/turbo-go/upload/chunkuploader"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/docker/go-units"
	"github.com/spf13/pflag"
)

const (
	urlKey             = "TURBO_UPLOAD_URL"
	tokenKey           = "TURBO_TOKEN"
	chunkingModeKey    = "TURBO_CHUNKING_MODE"
	chunkSizeKey       = "TURBO_CHUNK_SIZE"
	maxConcurrencyKey  = "TURBO_MAX_CONCURRENCY"
	finalizeTimeoutKey = "TURBO_FINALIZE_TIMEOUT"
	paidByKey          = "TURBO_PAID_BY"

	defaultURL   = "https://upload.ardrive.io"
	defaultToken = "arweave"
)

var errUsage = errors.New("usage: turbo-upload [flags] <data-item-file>")

type cliConfig struct {
	URL      string
	Token    string
	PaidBy   []string
	FilePath string
	Debug    bool
	Upload   chunkuploader.Config
}

// parseConfig reads the TURBO_* environment first, then lets flags override
// it.
func parseConfig(args []string, envRepo env.Repository) (cliConfig, error) {
	config := cliConfig{
		URL:    valueOr(envRepo.Get(urlKey), defaultURL),
		Token:  valueOr(envRepo.Get(tokenKey), defaultToken),
		PaidBy: splitList(envRepo.Get(paidByKey)),
		Upload: chunkuploader.DefaultConfig(),
	}

	modeValue := envRepo.Get(chunkingModeKey)
	chunkSizeValue := envRepo.Get(chunkSizeKey)
	concurrencyValue := envRepo.Get(maxConcurrencyKey)
	finalizeTimeoutValue := envRepo.Get(finalizeTimeoutKey)

	flagSet := pflag.NewFlagSet("turbo-upload", pflag.ContinueOnError)
	flagSet.StringVar(&config.URL, "url", config.URL, "upload service base URL")
	flagSet.StringVar(&config.Token, "token", config.Token, "payment token / network, e.g. arweave, solana")
	flagSet.StringVar(&modeValue, "chunking", modeValue, "chunking mode: auto, force or disabled")
	flagSet.StringVar(&chunkSizeValue, "chunk-size", chunkSizeValue, "chunk size, e.g. 5MiB, 64MiB")
	flagSet.StringVar(&concurrencyValue, "concurrency", concurrencyValue, "maximum number of chunks in flight")
	flagSet.StringVar(&finalizeTimeoutValue, "finalize-timeout", finalizeTimeoutValue, "how long to wait for finalization, e.g. 10m (default: derived from size)")
	flagSet.StringSliceVar(&config.PaidBy, "paid-by", config.PaidBy, "address sharing credits with the signer (repeatable)")
	flagSet.BoolVar(&config.Debug, "debug", false, "enable debug logs")

	if err := flagSet.Parse(args); err != nil {
		return cliConfig{}, err
	}
	if flagSet.NArg() != 1 {
		return cliConfig{}, errUsage
	}
	config.FilePath = flagSet.Arg(0)

	mode, err := chunking.ParseMode(modeValue)
	if err != nil {
		return cliConfig{}, err
	}
	config.Upload.Mode = mode

	if chunkSizeValue != "" {
		size, err := units.RAMInBytes(chunkSizeValue)
		if err != nil {
			return cliConfig{}, fmt.Errorf("invalid chunk size %q: %w", chunkSizeValue, err)
		}
		config.Upload.ChunkByteCount = size
	}

	if concurrencyValue != "" {
		concurrency, err := strconv.Atoi(concurrencyValue)
		if err != nil {
			return cliConfig{}, fmt.Errorf("invalid concurrency %q: %w", concurrencyValue, err)
		}
		config.Upload.MaxConcurrency = concurrency
	}

	if finalizeTimeoutValue != "" {
		timeout, err := time.ParseDuration(finalizeTimeoutValue)
		if err != nil {
			return cliConfig{}, fmt.Errorf("invalid finalize timeout %q: %w", finalizeTimeoutValue, err)
		}
		config.Upload.FinalizeTimeout = &timeout
	}

	if err := config.Upload.Validate(); err != nil {
		return cliConfig{}, err
	}
	return config, nil
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
