// Package importer feeds files from disk into the extraction pipeline.
//
// It seeds and loads the built-in bank policy corpus, ingests whole
// directories of .txt and .md files, and can watch a directory for new
// files.
package importer

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/scrypster/docgraph/internal/extraction"
)

// Extensions ingested by LoadDirectory and the watcher.
var supportedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// LoadResult summarises a directory load.
type LoadResult struct {
	Directory      string                `json:"directory"`
	Seeded         bool                  `json:"seeded"`
	FilesFound     int                   `json:"files_found"`
	FilesProcessed int                   `json:"files_processed"`
	FilesFailed    int                   `json:"files_failed"`
	Documents      []*extraction.Summary `json:"documents"`
	Errors         []string              `json:"errors,omitempty"`
	Duration       time.Duration         `json:"duration_ns"`
}

// Loader reads files and runs them through a pipeline.
type Loader struct {
	pipeline *extraction.Pipeline
}

// NewLoader creates a loader writing through pipeline.
func NewLoader(pipeline *extraction.Pipeline) *Loader {
	return &Loader{pipeline: pipeline}
}

// LoadFile parses one file and extracts it. defaultType applies unless
// the file's frontmatter names a document type.
func (l *Loader) LoadFile(path, defaultType string) (*extraction.Summary, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := ParseDocument(content, path, defaultType)
	if err != nil {
		return nil, err
	}
	return l.pipeline.ProcessDocument(doc.Text, doc.Name, doc.DocumentType), nil
}

// LoadDirectory ingests every .txt and .md file directly inside dir in
// name order. A file that cannot be read or parsed is recorded in the
// result and the rest are still processed.
func (l *Loader) LoadDirectory(dir, defaultType string) (*LoadResult, error) {
	return l.loadFiles(dir, defaultType, func(name string) bool {
		return supportedExtensions[strings.ToLower(filepath.Ext(name))]
	})
}

// LoadSampleDocuments seeds dir with the sample corpus when it is missing
// or holds no .txt files, then extracts every .txt file in it as a banking
// policy.
func (l *Loader) LoadSampleDocuments(dir string) (*LoadResult, error) {
	seeded, err := SeedSamples(dir)
	if err != nil {
		return nil, err
	}
	res, err := l.loadFiles(dir, extraction.DocumentTypeBankingPolicy, isText)
	if err != nil {
		return nil, err
	}
	res.Seeded = seeded
	return res, nil
}

// SeedSamples writes SampleDocuments into dir unless it already holds a
// .txt file. It reports whether anything was written.
func SeedSamples(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("create sample directory: %w", err)
		}
	case err != nil:
		return false, fmt.Errorf("read sample directory: %w", err)
	default:
		for _, e := range entries {
			if !e.IsDir() && isText(e.Name()) {
				return false, nil
			}
		}
	}

	for _, doc := range SampleDocuments {
		path := filepath.Join(dir, doc.Name)
		if err := os.WriteFile(path, []byte(doc.Content), 0o644); err != nil {
			return false, fmt.Errorf("write sample %s: %w", doc.Name, err)
		}
	}
	log.Printf("import: seeded %d sample documents into %s", len(SampleDocuments), dir)
	return true, nil
}

func (l *Loader) loadFiles(dir, documentType string, include func(name string) bool) (*LoadResult, error) {
	start := time.Now()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot access directory %q: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && include(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	res := &LoadResult{
		Directory:  dir,
		FilesFound: len(names),
		Documents:  []*extraction.Summary{},
	}
	for _, name := range names {
		sum, err := l.LoadFile(filepath.Join(dir, name), documentType)
		if err != nil {
			log.Printf("import: skip %s: %v", name, err)
			res.FilesFailed++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		res.FilesProcessed++
		res.Documents = append(res.Documents, sum)
	}
	res.Duration = time.Since(start)
	return res, nil
}

func isText(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".txt")
}
