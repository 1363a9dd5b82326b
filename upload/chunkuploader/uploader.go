package chunkuploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ardrive/turbo-go/upload/chunking"
	"github.com/ardrive/turbo-go/upload/dataitem"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/docker/go-units"
	"golang.org/x/sync/errgroup"
)

// Uploader writes the chunks of an item into an open session.
type Uploader struct {
	config Config
	writer ChunkWriter
	logger log.Logger
	stats  Stats
}

// New creates a new Uploader with the given configuration.
func New(config Config, writer ChunkWriter, logger log.Logger) *Uploader {
	return &Uploader{
		config: config,
		writer: writer,
		logger: logger,
	}
}

// Stats returns the totals of the chunks uploaded so far.
func (u *Uploader) Stats() StatsSnapshot {
	return u.stats.Snapshot()
}

// UploadBuffer uploads data in batches of MaxConcurrency parallel chunk
// requests. A batch is a barrier: the next one starts only after every request
// of the current one has returned, so one slow chunk holds back the next
// batch, and a failure aborts the upload at the batch boundary. With
// MaxConcurrency <= 1 chunks go out one after another.
func (u *Uploader) UploadBuffer(ctx context.Context, target Target, data []byte, observer ProgressObserver) error {
	provider, err := NewBufferProvider(data, u.config.ChunkByteCount)
	if err != nil {
		return err
	}

	numChunks := provider.NumChunks()
	progress := newProgressTracker(observer, int64(len(data)))

	u.logger.Debugf("Uploading %d chunks, %s each, %d at a time", numChunks,
		units.HumanSizeWithPrecision(float64(u.config.ChunkByteCount), 3), max(u.config.MaxConcurrency, 1))

	if u.config.MaxConcurrency <= 1 {
		for i := 0; i < numChunks; i++ {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("upload cancelled before chunk %d: %w", i+1, err)
			}
			if err := u.uploadBufferChunk(ctx, target, provider, i, progress); err != nil {
				return err
			}
		}
		return nil
	}

	for start := 0; start < numChunks; start += u.config.MaxConcurrency {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("upload cancelled before chunk %d: %w", start+1, err)
		}

		end := min(start+u.config.MaxConcurrency, numChunks)
		g, groupCtx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				return u.uploadBufferChunk(groupCtx, target, provider, i, progress)
			})
		}

		if err := g.Wait(); err != nil {
			return fmt.Errorf("upload chunks %d-%d of %d: %w", start+1, end, numChunks, err)
		}
	}

	return nil
}

func (u *Uploader) uploadBufferChunk(ctx context.Context, target Target, provider *BufferProvider, index int, progress *progressTracker) error {
	c, err := provider.Chunk(index)
	if err != nil {
		return err
	}
	// Copy only now that the request is about to be sent.
	data, err := provider.GetChunk(index)
	if err != nil {
		return fmt.Errorf("get chunk %d: %w", index+1, err)
	}

	if err := u.uploadChunk(ctx, target, index, provider.NumChunks(), c.Offset, data); err != nil {
		return err
	}
	progress.add(c.Length)
	return nil
}

// UploadStream opens the item's data stream once and uploads header ++ data
// strictly in order. The stream is closed before returning, on every path.
// It returns the number of bytes uploaded, which is less than the declared
// size if the stream ended early.
func (u *Uploader) UploadStream(ctx context.Context, target Target, item dataitem.StreamingSignedDataItem, observer ProgressObserver) (int64, error) {
	if err := item.Validate(); err != nil {
		return 0, fmt.Errorf("invalid data item: %w", err)
	}

	cursor, err := item.OpenData()
	if err != nil {
		return 0, fmt.Errorf("open data stream: %w", err)
	}
	defer func(cursor io.ReadCloser) {
		if err := cursor.Close(); err != nil {
			u.logger.Errorf("failed to close data stream: %s", err)
		}
	}(cursor)

	totalSize := item.TotalSize()
	reader, err := NewStreamReader(item.Header, cursor, totalSize, u.config.ChunkByteCount)
	if err != nil {
		return 0, err
	}

	numChunks := chunking.NumChunks(totalSize, u.config.ChunkByteCount)
	progress := newProgressTracker(observer, totalSize)

	u.logger.Debugf("Streaming %d chunks, %s each", numChunks,
		units.HumanSizeWithPrecision(float64(u.config.ChunkByteCount), 3))

	for {
		if err := ctx.Err(); err != nil {
			return reader.Offset(), fmt.Errorf("upload cancelled at offset %d: %w", reader.Offset(), err)
		}

		span, data, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return reader.Offset(), err
		}

		if err := u.uploadChunk(ctx, target, span.Index, numChunks, span.Offset, data); err != nil {
			return span.Offset, err
		}
		progress.add(int64(span.Length()))
	}

	if reader.Short() {
		u.logger.Warnf("Data stream ended after %d of %d bytes", reader.Offset(), totalSize)
	}

	return reader.Offset(), nil
}

func (u *Uploader) uploadChunk(ctx context.Context, target Target, index, totalChunks int, offset int64, data []byte) error {
	stats := u.stats.Snapshot()
	u.logger.Debugf("Uploading chunk %d/%d at offset %d (%s) [finished=%d] [avg=%v]",
		index+1, totalChunks, offset, units.HumanSizeWithPrecision(float64(len(data)), 3),
		stats.Chunks, stats.Average().Round(time.Millisecond))

	chunkCtx := ctx
	if u.config.ChunkTimeout > 0 {
		var cancel context.CancelFunc
		chunkCtx, cancel = context.WithTimeout(ctx, u.config.ChunkTimeout)
		defer cancel()
	}

	start := time.Now()
	if err := u.writer.UploadChunk(chunkCtx, target.Token, target.SessionID, offset, data); err != nil {
		return fmt.Errorf("upload chunk %d at offset %d: %w", index+1, offset, err)
	}

	took := time.Since(start)
	u.stats.Record(took, int64(len(data)))
	u.logger.Debugf("Chunk %d uploaded in %v", index+1, took.Round(time.Millisecond))

	return nil
}

type progressTracker struct {
	observer ProgressObserver
	mu       sync.Mutex
	progress Progress
}

func newProgressTracker(observer ProgressObserver, totalBytes int64) *progressTracker {
	return &progressTracker{
		observer: observer,
		progress: Progress{TotalBytes: totalBytes},
	}
}

func (t *progressTracker) add(bytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.progress.ChunksUploaded++
	t.progress.BytesUploaded += bytes
	if t.observer != nil {
		t.observer.ChunkUploaded(t.progress)
	}
}
