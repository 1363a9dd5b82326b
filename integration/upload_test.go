//go:build integration
// +build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/ardrive/turbo-go/upload"
	"github.com/ardrive/turbo-go/upload/chunking"
	"github.com/ardrive/turbo-go/upload/chunkuploader"
	"github.com/ardrive/turbo-go/upload/dataitem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	// Given
	e := requireServiceEnv(t)
	content, err := os.ReadFile(e.itemPath)
	require.NoError(t, err)
	logger.Printf("Uploading %s (sha256 %s)", e.itemPath, checksumOf(content))

	config := chunkuploader.DefaultConfig()
	config.Mode = chunking.ModeAlways
	client, err := upload.NewClient(e.baseURL, config, logger)
	require.NoError(t, err)

	// When
	result, err := client.Upload(context.Background(), content, upload.Params{Token: e.token})

	// Then
	require.NoError(t, err)
	assert.True(t, result.Chunked)
	assert.NotEmpty(t, result.ID)
	assert.NotEmpty(t, result.Owner)
}

func TestUploadStream(t *testing.T) {
	// Given
	e := requireServiceEnv(t)
	item, err := dataitem.FromFile(e.itemPath)
	require.NoError(t, err)

	config := chunkuploader.DefaultConfig()
	config.Mode = chunking.ModeAlways
	config.MaxConcurrency = 1
	client, err := upload.NewClient(e.baseURL, config, logger)
	require.NoError(t, err)

	// When
	result, err := client.UploadStream(context.Background(), item, upload.Params{Token: e.token})

	// Then
	require.NoError(t, err)
	assert.True(t, result.Chunked)
	assert.NotEmpty(t, result.ID)
}
