package importer

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/docgraph/internal/extraction"
	"github.com/scrypster/docgraph/internal/storage/memory"
	"github.com/scrypster/docgraph/pkg/types"
)

func newLoader(t *testing.T) (*Loader, *memory.GraphStore) {
	t.Helper()
	store := memory.NewGraphStore()
	return NewLoader(extraction.NewPipeline(store, extraction.DefaultOptions())), store
}

func policyNames(store *memory.GraphStore) []string {
	var names []string
	for _, e := range store.GetEntitiesByType(types.EntityTypePolicy) {
		names = append(names, e.Name)
	}
	return names
}

func TestParseDocument_Frontmatter(t *testing.T) {
	content := "---\nname: Retention Rules\ndocument_type: banking_policy\nowner: ops\n---\n1. Keep records for 7 years."

	doc, err := ParseDocument([]byte(content), "/tmp/retention.md", extraction.DocumentTypeGeneric)
	require.NoError(t, err)
	assert.Equal(t, "Retention Rules", doc.Name)
	assert.Equal(t, extraction.DocumentTypeBankingPolicy, doc.DocumentType)
	assert.Equal(t, "1. Keep records for 7 years.", doc.Text)
	assert.Equal(t, "ops", doc.Frontmatter["owner"])
}

func TestParseDocument_NoFrontmatter(t *testing.T) {
	tests := map[string]string{
		"plain":          "Bank Policy\n\n1. Something.",
		"unterminated":   "---\nname: x\nbody without close",
		"single line":    "---",
		"dash not first": "intro\n---\nname: x\n---\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			doc, err := ParseDocument([]byte(content), "dir/file.txt", extraction.DocumentTypeGeneric)
			require.NoError(t, err)
			assert.Equal(t, "file.txt", doc.Name)
			assert.Equal(t, extraction.DocumentTypeGeneric, doc.DocumentType)
			assert.Equal(t, content, doc.Text)
			assert.Empty(t, doc.Frontmatter)
		})
	}
}

func TestParseDocument_InvalidYAML(t *testing.T) {
	_, err := ParseDocument([]byte("---\nname: [unclosed\n---\nbody"), "bad.md", extraction.DocumentTypeGeneric)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.md")
}

func TestLoadSampleDocuments_SeedsMissingDirectory(t *testing.T) {
	l, store := newLoader(t)
	dir := filepath.Join(t.TempDir(), "data", "bank_policies")

	res, err := l.LoadSampleDocuments(dir)
	require.NoError(t, err)
	assert.True(t, res.Seeded)
	assert.Equal(t, 3, res.FilesFound)
	assert.Equal(t, 3, res.FilesProcessed)
	assert.Zero(t, res.FilesFailed)

	for _, doc := range SampleDocuments {
		raw, err := os.ReadFile(filepath.Join(dir, doc.Name))
		require.NoError(t, err)
		assert.Equal(t, doc.Content, string(raw))
	}

	// Name order: Customer Data, Fraud, Loan.
	assert.Equal(t, []string{"Data Protection Policy", "Fraud Prevention Policy", "Loan Policy"}, policyNames(store))
	assert.Len(t, store.GetEntitiesByType(types.EntityTypeRequirement), 15)
	assert.Len(t, store.TextChunks(), 3)

	var thresholds []string
	for _, e := range store.GetEntitiesByType(types.EntityTypeThreshold) {
		thresholds = append(thresholds, e.Name)
	}
	assert.ElementsMatch(t, []string{"$10,000 Threshold", "$1,000 Threshold", "$50,000 Threshold"}, thresholds)
}

func TestLoadSampleDocuments_EmptyDirectoryIsSeeded(t *testing.T) {
	l, _ := newLoader(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0o644))

	res, err := l.LoadSampleDocuments(dir)
	require.NoError(t, err)
	assert.True(t, res.Seeded)
	assert.Equal(t, 3, res.FilesProcessed, ".md files are not part of the sample corpus")
}

func TestLoadSampleDocuments_ExistingTextIsNotOverwritten(t *testing.T) {
	l, store := newLoader(t)
	dir := t.TempDir()
	custom := "Branch Loan Rules\n\n1. Loans above $5,000 need a second signature."
	require.NoError(t, os.WriteFile(filepath.Join(dir, "branch loan rules.txt"), []byte(custom), 0o644))

	res, err := l.LoadSampleDocuments(dir)
	require.NoError(t, err)
	assert.False(t, res.Seeded)
	assert.Equal(t, 1, res.FilesProcessed)
	assert.Equal(t, []string{"Loan Policy"}, policyNames(store))

	_, err = os.Stat(filepath.Join(dir, SampleDocuments[0].Name))
	assert.True(t, os.IsNotExist(err))
}

func TestLoadDirectory_CollectsErrors(t *testing.T) {
	l, store := newLoader(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("Alpha Beta met here."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("---\nname: [oops\n---\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.md"), []byte("---\ndocument_type: banking_policy\n---\n1. Customer rule."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "d.csv"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755))

	res, err := l.LoadDirectory(dir, extraction.DocumentTypeGeneric)
	require.NoError(t, err)
	assert.Equal(t, 3, res.FilesFound)
	assert.Equal(t, 2, res.FilesProcessed)
	assert.Equal(t, 1, res.FilesFailed)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "b.md")

	require.Len(t, res.Documents, 2)
	assert.Equal(t, extraction.DocumentTypeGeneric, res.Documents[0].DocumentType)
	assert.Equal(t, extraction.DocumentTypeBankingPolicy, res.Documents[1].DocumentType)
	assert.Equal(t, []string{"Bank Policy"}, policyNames(store))
}

func TestLoadDirectory_Missing(t *testing.T) {
	l, _ := newLoader(t)
	_, err := l.LoadDirectory(filepath.Join(t.TempDir(), "nope"), extraction.DocumentTypeGeneric)
	require.Error(t, err)
}

func TestWatcher_IngestsNewFiles(t *testing.T) {
	l, store := newLoader(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.txt"), []byte("1. Old rule."), 0o644))

	var (
		mu    sync.Mutex
		names []string
	)
	w := NewWatcher(dir, extraction.DocumentTypeBankingPolicy, l, func(path string, sum *extraction.Summary, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err == nil {
			names = append(names, sum.DocumentName)
		}
	})
	w.SettleDelay = 20 * time.Millisecond
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "fraud.txt"), []byte("1. Transactions above $10,000 require verification."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.csv"), []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(names) == 1
	}, 5*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"fraud.txt"}, names)
	mu.Unlock()
	assert.Equal(t, []string{"Fraud Prevention Policy"}, policyNames(store))
}
