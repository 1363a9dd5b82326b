// Command turbo-upload uploads a signed data item file to the upload service
// and prints its receipt.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardrive/turbo-go/upload"
	"github.com/ardrive/turbo-go/upload/chunkuploader"
	"github.com/ardrive/turbo-go/upload/dataitem"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/docker/go-units"
	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.NewLogger()
	if err := run(ctx, os.Args[1:], env.NewRepository(), logger, os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		logger.Errorf("%s", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, envRepo env.Repository, logger log.Logger, out io.Writer) error {
	config, err := parseConfig(args, envRepo)
	if err != nil {
		return err
	}
	logger.EnableDebugLog(config.Debug)

	item, err := dataitem.FromFile(config.FilePath)
	if err != nil {
		return err
	}

	client, err := upload.NewClient(config.URL, config.Upload, logger)
	if err != nil {
		return err
	}

	result, err := client.UploadStream(ctx, item, upload.Params{
		Token:    config.Token,
		PaidBy:   config.PaidBy,
		Progress: progressLogger(logger),
	})
	if err != nil {
		if errors.Is(err, upload.ErrUnderfunded) {
			return fmt.Errorf("%w: top up the payer's balance and retry", err)
		}
		return err
	}

	_, err = fmt.Fprintf(out, "id: %s\nowner: %s\nwinc: %s\n", result.ID, result.Owner, result.WinC)
	return err
}

func progressLogger(logger log.Logger) chunkuploader.ProgressFunc {
	return func(p chunkuploader.Progress) {
		logger.Printf("Uploaded %d chunks (%s / %s)", p.ChunksUploaded,
			units.HumanSizeWithPrecision(float64(p.BytesUploaded), 3),
			units.HumanSizeWithPrecision(float64(p.TotalBytes), 3))
	}
}
