package upload

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ardrive/turbo-go/upload/dataitem"
)

// itemReader yields header ++ data of a streaming item. The data stream is
// opened on the first Read, so a reader that is created and closed without
// being read never touches the stream.
type itemReader struct {
	item   dataitem.StreamingSignedDataItem
	reader io.Reader
	cursor io.ReadCloser
}

func streamBody(item dataitem.StreamingSignedDataItem) func() (io.Reader, error) {
	return func() (io.Reader, error) {
		return &itemReader{item: item}, nil
	}
}

func (r *itemReader) Read(p []byte) (int, error) {
	if r.reader == nil {
		cursor, err := r.item.OpenData()
		if err != nil {
			return 0, fmt.Errorf("open data stream: %w", err)
		}
		r.cursor = cursor
		r.reader = io.MultiReader(bytes.NewReader(r.item.Header), io.LimitReader(cursor, r.item.DataLength))
	}
	return r.reader.Read(p)
}

func (r *itemReader) Close() error {
	if r.cursor == nil {
		return nil
	}
	cursor := r.cursor
	r.cursor = nil
	return cursor.Close()
}
