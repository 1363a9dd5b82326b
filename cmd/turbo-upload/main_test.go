package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardrive/turbo-go/upload/network"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_run_SingleRequest(t *testing.T) {
	content := []byte("signed data item")
	path := filepath.Join(t.TempDir(), "item.bin")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	var received []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tx/arweave", r.URL.Path)
		assert.Equal(t, "payer", r.Header.Get("x-paid-by"))
		received, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(network.Receipt{ID: "item-id", Owner: "owner", WinC: "42"})
	}))
	defer server.Close()

	var out bytes.Buffer
	err := run(context.Background(), []string{"--url", server.URL, "--paid-by", "payer", path},
		fakeEnvRepo{envVars: map[string]string{}}, log.NewLogger(), &out)
	require.NoError(t, err)

	assert.Equal(t, content, received)
	assert.Equal(t, "id: item-id\nowner: owner\nwinc: 42\n", out.String())
}

func Test_run_MissingFile(t *testing.T) {
	err := run(context.Background(), []string{filepath.Join(t.TempDir(), "missing.bin")},
		fakeEnvRepo{envVars: map[string]string{}}, log.NewLogger(), io.Discard)
	assert.Error(t, err)
}
