// Package chunkuploader fills an open upload session with bytes. It has two
// strategies: UploadBuffer for an item held in memory, sent in batches of
// parallel requests, and UploadStream for an item read from a forward-only
// stream, sent strictly in order one chunk at a time.
package chunkuploader

import "context"

// ChunkWriter stores the bytes of one chunk at offset within a session.
type ChunkWriter interface {
	UploadChunk(ctx context.Context, token, sessionID string, offset int64, data []byte) error
}

// Target is the session chunks are written to.
type Target struct {
	Token     string
	SessionID string
}

// Progress is reported after every uploaded chunk.
type Progress struct {
	ChunksUploaded int
	BytesUploaded  int64
	TotalBytes     int64
}

// ProgressObserver receives Progress updates. Calls never overlap.
type ProgressObserver interface {
	ChunkUploaded(Progress)
}

// ProgressFunc adapts a function to ProgressObserver.
type ProgressFunc func(Progress)

// ChunkUploaded ...
func (f ProgressFunc) ChunkUploaded(p Progress) {
	f(p)
}

// Span records which part of a streamed chunk came from the item header and
// which from the data stream.
type Span struct {
	Index       int
	Offset      int64
	HeaderBytes int
	DataBytes   int
}

// Length ...
func (s Span) Length() int {
	return s.HeaderBytes + s.DataBytes
}
