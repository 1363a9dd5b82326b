package dataitem

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamingSignedDataItem_Validate(t *testing.T) {
	open := func() (io.ReadCloser, error) { return io.NopCloser(nil), nil }
	tests := []struct {
		name    string
		item    StreamingSignedDataItem
		wantErr bool
	}{
		{name: "header and data", item: StreamingSignedDataItem{Header: []byte{1}, DataLength: 10, OpenData: open}},
		{name: "header only", item: StreamingSignedDataItem{Header: []byte{1}, OpenData: open}},
		{name: "missing factory", item: StreamingSignedDataItem{DataLength: 10}, wantErr: true},
		{name: "negative length", item: StreamingSignedDataItem{DataLength: -1, OpenData: open}, wantErr: true},
		{name: "empty", item: StreamingSignedDataItem{OpenData: open}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "item.bin")
	content := []byte("signed data item bytes")
	require.NoError(t, os.WriteFile(path, content, 0644))

	item, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), item.TotalSize())
	assert.Empty(t, item.Header)

	// Each call opens an independent cursor.
	for i := 0; i < 2; i++ {
		r, err := item.OpenData()
		require.NoError(t, err)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())
		assert.Equal(t, content, got)
	}
}

func TestFromFile_Errors(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	_, err = FromFile(t.TempDir())
	assert.Error(t, err)
}

func TestStaticSigner(t *testing.T) {
	signer := StaticSigner{"x-signature": "sig"}
	headers, err := signer.SignatureHeaders(context.Background())
	require.NoError(t, err)
	headers["x-signature"] = "changed"

	again, err := signer.SignatureHeaders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sig", again["x-signature"])
}
