package main

import (
	"fmt"
	"testing"
	"time"

	"github.com/ardrive/turbo-go/upload/chunking"
	"github.com/ardrive/turbo-go/upload/chunkuploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnvRepo struct {
	envVars map[string]string
}

func (repo fakeEnvRepo) Get(key string) string {
	return repo.envVars[key]
}

func (repo fakeEnvRepo) Set(key, value string) error {
	repo.envVars[key] = value
	return nil
}

func (repo fakeEnvRepo) Unset(key string) error {
	delete(repo.envVars, key)
	return nil
}

func (repo fakeEnvRepo) List() []string {
	envs := []string{}
	for k, v := range repo.envVars {
		envs = append(envs, fmt.Sprintf("%s=%s", k, v))
	}
	return envs
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}

func Test_parseConfig(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		args    []string
		want    cliConfig
	}{
		{
			name: "defaults",
			args: []string{"item.bin"},
			want: cliConfig{
				URL:      defaultURL,
				Token:    defaultToken,
				FilePath: "item.bin",
				Upload:   chunkuploader.DefaultConfig(),
			},
		},
		{
			name: "environment",
			envVars: map[string]string{
				urlKey:             "http://localhost:3000",
				tokenKey:           "solana",
				chunkingModeKey:    "force",
				chunkSizeKey:       "10MiB",
				maxConcurrencyKey:  "8",
				finalizeTimeoutKey: "90s",
				paidByKey:          "addr-1, addr-2",
			},
			args: []string{"item.bin"},
			want: cliConfig{
				URL:      "http://localhost:3000",
				Token:    "solana",
				PaidBy:   []string{"addr-1", "addr-2"},
				FilePath: "item.bin",
				Upload: chunkuploader.Config{
					Mode:            chunking.ModeAlways,
					ChunkByteCount:  10 * chunking.MiB,
					MaxConcurrency:  8,
					FinalizeTimeout: durationPtr(90 * time.Second),
				},
			},
		},
		{
			name: "flags override environment",
			envVars: map[string]string{
				tokenKey:          "solana",
				chunkingModeKey:   "force",
				maxConcurrencyKey: "8",
			},
			args: []string{"--token", "arweave", "--chunking", "disabled", "--concurrency=1",
				"--paid-by", "a", "--paid-by", "b", "--debug", "item.bin"},
			want: cliConfig{
				URL:      defaultURL,
				Token:    "arweave",
				PaidBy:   []string{"a", "b"},
				FilePath: "item.bin",
				Debug:    true,
				Upload: chunkuploader.Config{
					Mode:           chunking.ModeNever,
					ChunkByteCount: chunking.DefaultChunkByteCount,
					MaxConcurrency: 1,
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envVars := tt.envVars
			if envVars == nil {
				envVars = map[string]string{}
			}

			got, err := parseConfig(tt.args, fakeEnvRepo{envVars: envVars})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_parseConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		args    []string
		wantErr error
	}{
		{name: "no file", args: []string{}, wantErr: errUsage},
		{name: "two files", args: []string{"a", "b"}, wantErr: errUsage},
		{name: "unknown mode", args: []string{"--chunking", "sometimes", "a"}, wantErr: chunking.ErrInvalidMode},
		{name: "chunk too small", args: []string{"--chunk-size", "1MiB", "a"}, wantErr: chunking.ErrInvalidChunkSize},
		{name: "chunk too large in env", envVars: map[string]string{chunkSizeKey: "1GiB"}, args: []string{"a"}, wantErr: chunking.ErrInvalidChunkSize},
		{name: "too many in flight", args: []string{"--concurrency", "300", "a"}, wantErr: chunking.ErrInvalidConcurrency},
		{name: "negative finalize timeout", args: []string{"--finalize-timeout", "-1s", "a"}, wantErr: chunking.ErrInvalidFinalizeTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envVars := tt.envVars
			if envVars == nil {
				envVars = map[string]string{}
			}

			_, err := parseConfig(tt.args, fakeEnvRepo{envVars: envVars})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func Test_parseConfig_Unparsable(t *testing.T) {
	for _, args := range [][]string{
		{"--chunk-size", "lots", "a"},
		{"--concurrency", "many", "a"},
		{"--finalize-timeout", "soon", "a"},
		{"--unknown", "a"},
	} {
		_, err := parseConfig(args, fakeEnvRepo{envVars: map[string]string{}})
		assert.Error(t, err, args)
	}
}
