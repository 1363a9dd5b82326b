// Package upload sends signed data items to the upload service. Small items go
// out in a single request; large ones through the chunked protocol: open a
// session, upload the chunks, finalize, then poll until the service issues a
// receipt.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ardrive/turbo-go/upload/chunking"
	"github.com/ardrive/turbo-go/upload/chunkuploader"
	"github.com/ardrive/turbo-go/upload/dataitem"
	"github.com/ardrive/turbo-go/upload/network"
	"github.com/ardrive/turbo-go/upload/session"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/docker/go-units"
)

// API is the upload service as seen by the Client.
type API interface {
	session.API
	chunkuploader.ChunkWriter
	UploadDataItem(ctx context.Context, upload network.SingleUpload) (network.Receipt, error)
}

// Params are the per-upload inputs.
type Params struct {
	// Token names the payment token and network, e.g. "arweave".
	Token string
	// PaidBy lists the addresses sharing credits with the signer, if any.
	PaidBy []string
	// Progress is notified after every uploaded chunk. Optional.
	Progress chunkuploader.ProgressObserver
}

// Client uploads data items.
type Client struct {
	api       API
	config    chunkuploader.Config
	lifecycle *session.Lifecycle
	signer    dataitem.Signer
	logger    log.Logger
}

// NewClient creates a Client for the service at baseURL. The config is
// validated here, before any request is made.
func NewClient(baseURL string, config chunkuploader.Config, logger log.Logger) (*Client, error) {
	return NewClientWithAPI(network.NewClient(baseURL, logger), config, nil, logger)
}

// NewClientWithAPI creates a Client on top of an existing API implementation.
// A nil clock means session.RealClock().
func NewClientWithAPI(api API, config chunkuploader.Config, clock session.Clock, logger log.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		api:       api,
		config:    config,
		lifecycle: session.NewLifecycle(api, clock, logger),
		logger:    logger,
	}, nil
}

// SetSigner sets the producer of signature headers for single-request uploads.
func (c *Client) SetSigner(signer dataitem.Signer) {
	c.signer = signer
}

// Lifecycle exposes the session lifecycle, e.g. to tune finalize retries.
func (c *Client) Lifecycle() *session.Lifecycle {
	return c.lifecycle
}

// Upload sends a data item held in memory.
func (c *Client) Upload(ctx context.Context, data []byte, params Params) (Result, error) {
	if err := validateParams(params); err != nil {
		return Result{}, err
	}
	if len(data) == 0 {
		return Result{}, errors.New("data item is empty")
	}

	size := int64(len(data))
	startTime := time.Now()

	if !chunking.ShouldChunk(c.config.Mode, c.config.ChunkByteCount, size) {
		c.logger.Infof("Uploading data item (%s) in a single request...", humanSize(size))
		receipt, err := c.uploadSingle(ctx, params, size, network.BytesBody(data))
		if err != nil {
			return Result{}, err
		}
		return c.done(receipt, false, startTime)
	}

	c.logger.Infof("Uploading data item (%s) in chunks...", humanSize(size))
	receipt, err := c.uploadChunked(ctx, params, size, func(uploader *chunkuploader.Uploader, target chunkuploader.Target) error {
		return uploader.UploadBuffer(ctx, target, data, params.Progress)
	})
	if err != nil {
		return Result{}, err
	}
	return c.done(receipt, true, startTime)
}

// UploadStream sends a data item whose payload is read from a stream. The
// chunked path reads the stream once, in order, and never holds more than one
// chunk of it in memory.
func (c *Client) UploadStream(ctx context.Context, item dataitem.StreamingSignedDataItem, params Params) (Result, error) {
	if err := validateParams(params); err != nil {
		return Result{}, err
	}
	if err := item.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid data item: %w", err)
	}

	size := item.TotalSize()
	startTime := time.Now()

	if !chunking.ShouldChunk(c.config.Mode, c.config.ChunkByteCount, size) {
		c.logger.Infof("Streaming data item (%s) in a single request...", humanSize(size))
		receipt, err := c.uploadSingle(ctx, params, size, streamBody(item))
		if err != nil {
			return Result{}, err
		}
		return c.done(receipt, false, startTime)
	}

	c.logger.Infof("Streaming data item (%s) in chunks...", humanSize(size))
	receipt, err := c.uploadChunked(ctx, params, size, func(uploader *chunkuploader.Uploader, target chunkuploader.Target) error {
		_, err := uploader.UploadStream(ctx, target, item, params.Progress)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	return c.done(receipt, true, startTime)
}

type fillFunc func(uploader *chunkuploader.Uploader, target chunkuploader.Target) error

func (c *Client) uploadChunked(ctx context.Context, params Params, size int64, fill fillFunc) (network.Receipt, error) {
	c.logger.Debugf("Open upload session")
	s, err := c.lifecycle.Open(ctx, params.Token, c.config.ChunkByteCount)
	if err != nil {
		return network.Receipt{}, err
	}

	uploader := chunkuploader.New(c.config, c.api, c.logger)
	target := chunkuploader.Target{Token: s.Token, SessionID: s.ID}
	if err := fill(uploader, target); err != nil {
		return network.Receipt{}, fmt.Errorf("upload chunks of session %s: %w", s.ID, err)
	}

	stats := uploader.Stats()
	c.logger.Debugf("Uploaded %d chunks, avg %s per chunk, %s/s per request",
		stats.Chunks, stats.Average().Round(time.Millisecond), humanSize(int64(stats.BytesPerSecond())))

	c.logger.Debugf("Finalize upload session")
	return c.lifecycle.FinalizeAndAwait(ctx, s, session.FinalizeParams{
		PayloadSize: size,
		PaidBy:      params.PaidBy,
		MaxWait:     c.config.FinalizeTimeout,
	})
}

func (c *Client) uploadSingle(ctx context.Context, params Params, size int64, body func() (io.Reader, error)) (network.Receipt, error) {
	var headers map[string]string
	if c.signer != nil {
		var err error
		headers, err = c.signer.SignatureHeaders(ctx)
		if err != nil {
			return network.Receipt{}, fmt.Errorf("sign request: %w", err)
		}
	}

	receipt, err := c.api.UploadDataItem(ctx, network.SingleUpload{
		Token:   params.Token,
		Size:    size,
		Body:    body,
		Headers: headers,
		PaidBy:  params.PaidBy,
	})
	if err != nil {
		return network.Receipt{}, fmt.Errorf("upload data item: %w", err)
	}
	return receipt, nil
}

func (c *Client) done(receipt network.Receipt, chunked bool, startTime time.Time) (Result, error) {
	result, err := newResult(receipt, chunked)
	if err != nil {
		return Result{}, err
	}
	c.logger.Donef("Data item %s uploaded in %s", result.ID, time.Since(startTime).Round(time.Second))
	return result, nil
}

func validateParams(params Params) error {
	if params.Token == "" {
		return errors.New("token must not be empty")
	}
	return nil
}

func humanSize(size int64) string {
	return units.HumanSizeWithPrecision(float64(size), 3)
}
