package main

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/docgraph/internal/config"
	"github.com/scrypster/docgraph/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Storage: config.StorageConfig{
			DataDir:   dir,
			GraphFile: "knowledge_graph.json",
			SampleDir: filepath.Join(dir, "bank_policies"),
		},
		Server:     config.ServerConfig{Host: "127.0.0.1", Port: 0, RequestsPerSecond: 100, Burst: 100},
		Security:   config.SecurityConfig{Mode: "development"},
		LLM:        config.LLMConfig{Provider: "none"},
		Query:      config.QueryConfig{MaxChunks: 5, MinKeywordLen: 4, DirectAnswerThreshold: 0.5},
		Extraction: config.ExtractionConfig{LinkPolicies: true},
	}
}

func TestStartServer_WithSamples(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, addr, err := startServer(ctx, testConfig(t), true)
	require.NoError(t, err)
	require.NotNil(t, svc)

	resp, err := http.Get("http://" + addr + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st storage.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, 3, st.EntityTypes["Policy"])

	// A plain GET reaches the websocket route and fails the upgrade.
	wsResp, err := http.Get("http://" + addr + "/ws")
	require.NoError(t, err)
	defer wsResp.Body.Close()
	assert.NotEqual(t, http.StatusNotFound, wsResp.StatusCode)
}

func TestStartServer_SamplesSkippedWhenGraphPersisted(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, _, err := startServer(ctx, cfg, true)
	require.NoError(t, err)
	require.NoError(t, svc.Save(""))
	count := svc.Store().Stats().EntityCount

	svc2, _, err := startServer(ctx, cfg, true)
	require.NoError(t, err)
	assert.Equal(t, count, svc2.Store().Stats().EntityCount)
}
