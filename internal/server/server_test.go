package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/docgraph/internal/config"
	"github.com/scrypster/docgraph/internal/extraction"
	"github.com/scrypster/docgraph/internal/server"
	"github.com/scrypster/docgraph/internal/services"
	"github.com/scrypster/docgraph/internal/storage"
	"github.com/scrypster/docgraph/internal/storage/memory"
	"github.com/scrypster/docgraph/web/handlers"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Storage: config.StorageConfig{
			DataDir:   dir,
			GraphFile: "knowledge_graph.json",
			SampleDir: filepath.Join(dir, "bank_policies"),
		},
		Server:     config.ServerConfig{Host: "127.0.0.1", Port: 0, RequestsPerSecond: 1000, Burst: 1000},
		Security:   config.SecurityConfig{Mode: "development"},
		Query:      config.QueryConfig{MaxChunks: 5, MinKeywordLen: 4, DirectAnswerThreshold: 0.5},
		Extraction: config.ExtractionConfig{LinkPolicies: true},
	}
}

// newTestServer serves the full route table over httptest.
func newTestServer(t *testing.T, cfg *config.Config) (*httptest.Server, *services.GraphService) {
	t.Helper()
	svc := services.NewGraphService(cfg, memory.NewGraphStore(), nil)
	hub := handlers.NewWebSocketHub()
	go hub.Run()
	ts := httptest.NewServer(server.NewHandler(cfg, svc, hub))
	t.Cleanup(func() {
		ts.Close()
		hub.Stop()
	})
	return ts, svc
}

func do(t *testing.T, ts *httptest.Server, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func TestServer_HealthAndSecurityHeaders(t *testing.T) {
	ts, _ := newTestServer(t, testConfig(t))

	resp, body := do(t, ts, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"healthy","version":"1.0.0"}`, string(body))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}

func TestServer_ProductionRequiresToken(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security = config.SecurityConfig{Mode: "production", APIToken: "secret"}
	ts, _ := newTestServer(t, cfg)

	resp, _ := do(t, ts, http.MethodGet, "/api/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/stats", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")
	authed, err := ts.Client().Do(req)
	require.NoError(t, err)
	authed.Body.Close()
	assert.Equal(t, http.StatusOK, authed.StatusCode)

	health, _ := do(t, ts, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestServer_DocumentQueryFlow(t *testing.T) {
	ts, _ := newTestServer(t, testConfig(t))

	resp, body := do(t, ts, http.MethodPost, "/api/documents", handlers.DocumentRequest{
		Name:         "Bank Fraud Prevention Policy.txt",
		Text:         "1. Transactions above $10,000 require additional verification.",
		DocumentType: extraction.DocumentTypeBankingPolicy,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var sum extraction.Summary
	require.NoError(t, json.Unmarshal(body, &sum))
	require.NotEmpty(t, sum.PolicyID)

	resp, body = do(t, ts, http.MethodPost, "/api/query", handlers.QueryRequest{Question: "What transactions require additional verification?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		Answer string `json:"answer"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "According to the Bank Fraud Prevention Policy, transactions above $10,000 require additional verification.", result.Answer)

	resp, body = do(t, ts, http.MethodGet, "/api/entities/"+sum.PolicyID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entity handlers.EntityResponse
	require.NoError(t, json.Unmarshal(body, &entity))
	assert.Equal(t, "Fraud Prevention Policy", entity.Entity.Name)
	assert.Len(t, entity.Relationships, 1)

	resp, body = do(t, ts, http.MethodGet, "/api/entities/"+sum.PolicyID+"/graph?depth=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var graph handlers.GraphResponse
	require.NoError(t, json.Unmarshal(body, &graph))
	assert.Equal(t, sum.PolicyID, graph.Root)
	assert.Len(t, graph.Nodes, 2)

	resp, body = do(t, ts, http.MethodGet, "/api/entities?type=Threshold", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list handlers.EntityListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 1, list.Total)
}

func TestServer_EntityNotFound(t *testing.T) {
	ts, _ := newTestServer(t, testConfig(t))

	resp, body := do(t, ts, http.MethodGet, "/api/entities/entity-missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var errResp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, handlers.CodeNotFound, errResp.Code)

	resp, _ = do(t, ts, http.MethodGet, "/api/entities/entity-missing/graph", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_BadRequests(t *testing.T) {
	ts, _ := newTestServer(t, testConfig(t))

	resp, _ := do(t, ts, http.MethodPost, "/api/documents", handlers.DocumentRequest{Text: "no name"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/query", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	bad, err := ts.Client().Do(req)
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)

	resp, _ = do(t, ts, http.MethodGet, "/api/documents", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_SamplesSaveClearLoad(t *testing.T) {
	ts, svc := newTestServer(t, testConfig(t))

	resp, body := do(t, ts, http.MethodPost, "/api/samples", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	loaded := svc.Store().Stats()
	require.Equal(t, 3, loaded.EntityTypes["Policy"])

	resp, body = do(t, ts, http.MethodGet, "/api/examples", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var examples handlers.ExamplesResponse
	require.NoError(t, json.Unmarshal(body, &examples))
	assert.NotEmpty(t, examples.Questions)

	resp, _ = do(t, ts, http.MethodPost, "/api/graph/save", handlers.SnapshotRequest{File: "snap.json"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, ts, http.MethodPost, "/api/graph/clear", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cleared handlers.SnapshotResponse
	require.NoError(t, json.Unmarshal(body, &cleared))
	assert.Equal(t, 0, cleared.Stats.EntityCount)

	resp, body = do(t, ts, http.MethodPost, "/api/graph/load", handlers.SnapshotRequest{File: "snap.json"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var restored handlers.SnapshotResponse
	require.NoError(t, json.Unmarshal(body, &restored))
	assert.True(t, restored.Loaded)
	assert.Equal(t, loaded.EntityCount, restored.Stats.EntityCount)

	resp, body = do(t, ts, http.MethodPost, "/api/graph/load", handlers.SnapshotRequest{File: "missing.json"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var missing handlers.SnapshotResponse
	require.NoError(t, json.Unmarshal(body, &missing))
	assert.False(t, missing.Loaded)
	assert.Equal(t, loaded.EntityCount, missing.Stats.EntityCount)
}

func TestServer_ListBackups(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backup = config.BackupConfig{Enabled: true, Dir: "backups", Hourly: 24}
	ts, _ := newTestServer(t, cfg)

	resp, body := do(t, ts, http.MethodGet, "/api/graph/backups", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list handlers.BackupListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Empty(t, list.Backups)

	for i := 0; i < 2; i++ {
		resp, _ = do(t, ts, http.MethodPost, "/api/graph/save", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	_, body = do(t, ts, http.MethodGet, "/api/graph/backups", nil)
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Backups, 1)
	assert.Contains(t, list.Backups[0].File, "knowledge_graph-")
	assert.NotContains(t, list.Backups[0].File, string(filepath.Separator))
}

func TestServer_StatsShape(t *testing.T) {
	ts, _ := newTestServer(t, testConfig(t))

	resp, body := do(t, ts, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats storage.Stats
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 0, stats.EntityCount)
}

func TestServer_ChatWithoutAssistant(t *testing.T) {
	ts, _ := newTestServer(t, testConfig(t))

	resp, body := do(t, ts, http.MethodPost, "/api/chat", handlers.ChatRequest{Prompt: "hello"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), handlers.CodeUnavailable)
}

func TestServer_RateLimited(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.RequestsPerSecond = 0.001
	cfg.Server.Burst = 1
	ts, _ := newTestServer(t, cfg)

	first, _ := do(t, ts, http.MethodGet, "/api/stats", nil)
	assert.Equal(t, http.StatusOK, first.StatusCode)
	second, _ := do(t, ts, http.MethodGet, "/api/stats", nil)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}

func TestStart_ServesUntilCancelled(t *testing.T) {
	cfg := testConfig(t)
	svc := services.NewGraphService(cfg, memory.NewGraphStore(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	addr, hub, err := server.Start(ctx, cfg, svc)
	require.NoError(t, err)
	require.NotNil(t, hub)

	resp, err := http.Get("http://" + addr + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	require.Eventually(t, func() bool {
		_, err := http.Get("http://" + addr + "/api/health")
		return err != nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestAllowedOrigins(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Port = 6464
	assert.Equal(t, []string{"127.0.0.1:6464", "localhost:6464"}, server.AllowedOrigins(cfg))
}
