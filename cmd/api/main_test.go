package main

import (
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.APIConfig {
	t.Helper()
	return &config.APIConfig{
		Addr:       "127.0.0.1:0",
		SQLitePath: filepath.Join(t.TempDir(), "api.db"),
		RateLimit:  5,
		Narrator: &config.NarratorConfig{
			Provider: config.ProviderGroq,
			APIKey:   "gsk_test-key",
			BaseURL:  "http://127.0.0.1:1",
			Model:    "llama-3.3-70b-versatile",
			Timeout:  time.Second,
		},
		LogLevel:        "error",
		LogFormat:       "json",
		ShutdownTimeout: time.Second,
	}
}

func TestRun_StoreOpenFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.SQLitePath = filepath.Join(t.TempDir(), "missing-dir", "api.db")

	assert.Equal(t, 1, run(cfg))
}

func TestRun_ListenFailureExitsNonZero(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig(t)
	cfg.Addr = ln.Addr().String()

	assert.Equal(t, 1, run(cfg), "a server that cannot bind must not exit cleanly")
}
