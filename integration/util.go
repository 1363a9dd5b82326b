//go:build integration
// +build integration

package integration

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/log"
)

var logger = log.NewLogger()

type serviceEnv struct {
	baseURL  string
	token    string
	itemPath string
}

// requireServiceEnv reads the service coordinates and a pre-signed data item
// from the environment, skipping the test when they are missing.
func requireServiceEnv(t *testing.T) serviceEnv {
	envRepo := env.NewRepository()
	e := serviceEnv{
		baseURL:  envRepo.Get("TURBO_UPLOAD_URL"),
		token:    envRepo.Get("TURBO_TOKEN"),
		itemPath: envRepo.Get("TURBO_DATA_ITEM_PATH"),
	}
	if e.baseURL == "" || e.itemPath == "" {
		t.Skip("TURBO_UPLOAD_URL and TURBO_DATA_ITEM_PATH must be set")
	}
	if e.token == "" {
		e.token = "arweave"
	}
	return e
}

func checksumOf(bytes []byte) string {
	hash := sha256.New()
	hash.Write(bytes)
	return hex.EncodeToString(hash.Sum(nil))
}
