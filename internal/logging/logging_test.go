package logging

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/docgraph/internal/config"
)

func TestSetup_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "docgraph.log")
	closer, err := Setup(config.LogConfig{File: path, MaxSizeMB: 1, MaxBackups: 1})
	require.NoError(t, err)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	log.Printf("extract: test line")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "extract: test line")
}

func TestSetup_StderrOnly(t *testing.T) {
	closer, err := Setup(config.LogConfig{})
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
}

func TestNewRotator(t *testing.T) {
	r := NewRotator(config.LogConfig{File: "x.log", MaxSizeMB: 5, MaxBackups: 2, MaxAgeDays: 7, Compress: true})
	assert.Equal(t, "x.log", r.Filename)
	assert.Equal(t, 5, r.MaxSize)
	assert.Equal(t, 2, r.MaxBackups)
	assert.Equal(t, 7, r.MaxAge)
	assert.True(t, r.Compress)
}
