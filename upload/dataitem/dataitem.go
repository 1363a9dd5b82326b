// Package dataitem holds the upload-side view of a signed data item: a small
// binary header followed by an arbitrarily large data payload. Signing and
// header serialization happen elsewhere; this package only carries the bytes.
package dataitem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// StreamFactory opens a fresh read cursor positioned at the first data byte.
// Every call must return an independent cursor.
type StreamFactory func() (io.ReadCloser, error)

// StreamingSignedDataItem is a signed data item whose payload is read from a
// stream instead of being held in memory. Only the header stays resident.
type StreamingSignedDataItem struct {
	Header     []byte
	DataLength int64
	OpenData   StreamFactory
}

// TotalSize is the number of bytes the item occupies on the wire.
func (i StreamingSignedDataItem) TotalSize() int64 {
	return int64(len(i.Header)) + i.DataLength
}

// Validate ...
func (i StreamingSignedDataItem) Validate() error {
	if i.OpenData == nil {
		return errors.New("data stream factory must not be nil")
	}
	if i.DataLength < 0 {
		return fmt.Errorf("data length must not be negative, got %d", i.DataLength)
	}
	if i.TotalSize() == 0 {
		return errors.New("data item is empty")
	}
	return nil
}

// FromFile returns a streaming item that reads a complete, already signed data
// item from path. The header is left empty so every byte comes from the file.
func FromFile(path string) (StreamingSignedDataItem, error) {
	info, err := os.Stat(path)
	if err != nil {
		return StreamingSignedDataItem{}, fmt.Errorf("stat data item: %w", err)
	}
	if info.IsDir() {
		return StreamingSignedDataItem{}, fmt.Errorf("%s is a directory", path)
	}

	return StreamingSignedDataItem{
		DataLength: info.Size(),
		OpenData: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// Signer produces the request signature headers sent with single-shot uploads.
type Signer interface {
	SignatureHeaders(ctx context.Context) (map[string]string, error)
}

// StaticSigner returns the same precomputed headers for every request.
type StaticSigner map[string]string

// SignatureHeaders ...
func (s StaticSigner) SignatureHeaders(context.Context) (map[string]string, error) {
	headers := make(map[string]string, len(s))
	for k, v := range s {
		headers[k] = v
	}
	return headers, nil
}
