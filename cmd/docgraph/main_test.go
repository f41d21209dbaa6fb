package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/docgraph/internal/services"
	"github.com/scrypster/docgraph/internal/storage"
)

// writeConfig points storage at a fresh temp directory.
func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "docgraph.yaml")
	raw := fmt.Sprintf(`storage:
  data_dir: %q
  sample_dir: %q
llm:
  provider: none
`, dir, filepath.Join(dir, "bank_policies"))
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))
	return path, dir
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func stats(t *testing.T, cfgPath string) storage.Stats {
	t.Helper()
	out, err := run(t, cfgPath, "stats", "--json")
	require.NoError(t, err)
	var st storage.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	return st
}

func TestCLI_SamplesPersistAcrossRuns(t *testing.T) {
	cfgPath, dir := writeConfig(t)

	out, err := run(t, cfgPath, "samples")
	require.NoError(t, err)
	assert.Contains(t, out, "3 of 3 files processed")
	assert.FileExists(t, filepath.Join(dir, "knowledge_graph.json"))

	st := stats(t, cfgPath)
	assert.Equal(t, 3, st.EntityTypes["Policy"])
	assert.Equal(t, 15, st.EntityTypes["Requirement"])

	out, err = run(t, cfgPath, "query", "What", "is", "the", "minimum", "credit", "score?")
	require.NoError(t, err)
	assert.Contains(t, out, "minimum credit score of 700")

	out, err = run(t, cfgPath, "query", "--trace", "What", "is", "the", "minimum", "credit", "score?")
	require.NoError(t, err)
	assert.Contains(t, out, "answer: shortcut")

	out, err = run(t, cfgPath, "examples")
	require.NoError(t, err)
	assert.Contains(t, out, "- ")
}

func TestCLI_IngestAndShow(t *testing.T) {
	cfgPath, dir := writeConfig(t)
	doc := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(doc, []byte("Northwind Traders signed the agreement on 12/03/2024."), 0o644))

	out, err := run(t, cfgPath, "ingest", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "Processed note.txt (generic)")

	out, err = run(t, cfgPath, "show", "--type", "Organization")
	require.NoError(t, err)
	assert.Contains(t, out, "Northwind Traders")

	_, err = run(t, cfgPath, "show", "--entity", "entity-missing")
	assert.Error(t, err)
}

func TestCLI_IngestMissingFile(t *testing.T) {
	cfgPath, dir := writeConfig(t)
	_, err := run(t, cfgPath, "ingest", filepath.Join(dir, "absent.txt"))
	assert.Error(t, err)
}

func TestCLI_ExportClearImport(t *testing.T) {
	cfgPath, dir := writeConfig(t)
	_, err := run(t, cfgPath, "samples")
	require.NoError(t, err)
	before := stats(t, cfgPath)

	db := filepath.Join(dir, "graph.db")
	_, err = run(t, cfgPath, "export", "--sqlite", db)
	require.NoError(t, err)

	_, err = run(t, cfgPath, "clear")
	require.NoError(t, err)
	assert.Equal(t, 0, stats(t, cfgPath).EntityCount)

	_, err = run(t, cfgPath, "import", "--sqlite", db)
	require.NoError(t, err)
	assert.Equal(t, before, stats(t, cfgPath))

	_, err = run(t, cfgPath, "import", "--sqlite", filepath.Join(dir, "none.db"))
	assert.Error(t, err)

	// clear and import each overwrote an existing graph file.
	out, err := run(t, cfgPath, "backups")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "backups"))
	assert.Equal(t, 2, strings.Count(out, "knowledge_graph-"))
}

func TestCLI_ChatWithoutProvider(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	_, err := run(t, cfgPath, "chat", "hello")
	assert.ErrorIs(t, err, services.ErrAssistantDisabled)
}

func TestCLI_MissingConfigFile(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "nope.yaml"), "stats")
	assert.Error(t, err)
}

func TestCLI_MCPIngestPersists(t *testing.T) {
	cfgPath, dir := writeConfig(t)
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"ingest_document","arguments":{"text":"Northwind Traders signed the agreement.","name":"note.txt"}}}` + "\n"))
	root.SetArgs([]string{"--config", cfgPath, "mcp"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), `"id":1`)
	assert.FileExists(t, filepath.Join(dir, "knowledge_graph.json"))
	assert.Equal(t, 1, stats(t, cfgPath).EntityTypes["Organization"])
}
