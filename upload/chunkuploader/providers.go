package chunkuploader

import (
	"errors"
	"fmt"
	"io"

	"github.com/ardrive/turbo-go/upload/chunking"
)

// BufferProvider serves the chunks of an in-memory item. Views share the
// source buffer; only GetChunk allocates, so at most one copy per in-flight
// request exists next to the source. Safe for concurrent use since the
// source is never written.
type BufferProvider struct {
	data []byte
	plan chunking.Plan
}

// NewBufferProvider partitions data into chunks of chunkByteCount bytes.
func NewBufferProvider(data []byte, chunkByteCount int64) (*BufferProvider, error) {
	plan, err := chunking.NewPlan(int64(len(data)), chunkByteCount)
	if err != nil {
		return nil, err
	}
	return &BufferProvider{data: data, plan: plan}, nil
}

// NumChunks returns the total number of chunks.
func (p *BufferProvider) NumChunks() int {
	return len(p.plan.Chunks)
}

// Chunk returns the byte range of the chunk at the given index.
func (p *BufferProvider) Chunk(index int) (chunking.Chunk, error) {
	if index < 0 || index >= len(p.plan.Chunks) {
		return chunking.Chunk{}, fmt.Errorf("chunk index %d out of range [0, %d)", index, len(p.plan.Chunks))
	}
	return p.plan.Chunks[index], nil
}

// View returns the chunk at the given index as a slice of the source buffer.
// The caller must not modify it.
func (p *BufferProvider) View(index int) ([]byte, error) {
	c, err := p.Chunk(index)
	if err != nil {
		return nil, err
	}
	return p.data[c.Offset:c.End():c.End()], nil
}

// GetChunk returns an owned copy of the chunk at the given index.
func (p *BufferProvider) GetChunk(index int) ([]byte, error) {
	view, err := p.View(index)
	if err != nil {
		return nil, err
	}
	chunk := make([]byte, len(view))
	copy(chunk, view)
	return chunk, nil
}

// StreamReader cuts header ++ data into chunks in a single forward pass. The
// header is consumed first and exactly once; once it is used up every chunk
// comes from the data stream alone. A data stream that ends early yields one
// short chunk and then io.EOF.
type StreamReader struct {
	header         []byte
	data           io.Reader
	totalSize      int64
	chunkByteCount int64

	globalOffset    int64
	headerBytesUsed int
	chunkIndex      int
	dataEOF         bool
	done            bool
}

// NewStreamReader creates a StreamReader for totalSize bytes, the header
// followed by data.
func NewStreamReader(header []byte, data io.Reader, totalSize, chunkByteCount int64) (*StreamReader, error) {
	if chunkByteCount <= 0 {
		return nil, fmt.Errorf("chunk byte count must be positive, got %d", chunkByteCount)
	}
	if totalSize < int64(len(header)) {
		return nil, fmt.Errorf("total size %d is smaller than the header (%d bytes)", totalSize, len(header))
	}
	return &StreamReader{
		header:         header,
		data:           data,
		totalSize:      totalSize,
		chunkByteCount: chunkByteCount,
	}, nil
}

// Next returns the next chunk and where its bytes came from. It returns io.EOF
// once the declared size has been produced or the data stream is exhausted.
func (r *StreamReader) Next() (Span, []byte, error) {
	if r.done || r.globalOffset >= r.totalSize {
		return Span{}, nil, io.EOF
	}

	thisChunkSize := min(r.chunkByteCount, r.totalSize-r.globalOffset)
	// A fresh buffer per chunk: the transport may still hold the previous one.
	chunk := make([]byte, thisChunkSize)

	headerBytes := 0
	if r.headerBytesUsed < len(r.header) {
		headerBytes = copy(chunk, r.header[r.headerBytesUsed:])
		r.headerBytesUsed += headerBytes
	}

	filled := headerBytes
	if filled < len(chunk) && !r.dataEOF {
		n, err := io.ReadFull(r.data, chunk[filled:])
		filled += n
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			r.dataEOF = true
		case err != nil:
			return Span{}, nil, fmt.Errorf("read data stream at offset %d: %w", r.globalOffset+int64(filled), err)
		}
	}

	if filled == 0 {
		r.done = true
		return Span{}, nil, io.EOF
	}
	if filled < len(chunk) {
		r.done = true
	}

	span := Span{
		Index:       r.chunkIndex,
		Offset:      r.globalOffset,
		HeaderBytes: headerBytes,
		DataBytes:   filled - headerBytes,
	}
	r.globalOffset += int64(filled)
	r.chunkIndex++

	return span, chunk[:filled], nil
}

// Offset returns the number of bytes produced so far.
func (r *StreamReader) Offset() int64 {
	return r.globalOffset
}

// HeaderBytesUsed returns how many header bytes have been placed in chunks.
func (r *StreamReader) HeaderBytesUsed() int {
	return r.headerBytesUsed
}

// Short reports whether the data stream ended before the declared size.
func (r *StreamReader) Short() bool {
	return r.done && r.globalOffset < r.totalSize
}
