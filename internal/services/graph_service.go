// Package services ties the graph store, extraction pipeline, importer,
// query engine and assistant together behind one object shared by the CLI
// and the HTTP API.
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/scrypster/docgraph/internal/backup"
	"github.com/scrypster/docgraph/internal/config"
	"github.com/scrypster/docgraph/internal/engine"
	"github.com/scrypster/docgraph/internal/extraction"
	"github.com/scrypster/docgraph/internal/importer"
	"github.com/scrypster/docgraph/internal/llm"
	"github.com/scrypster/docgraph/internal/storage"
	"github.com/scrypster/docgraph/internal/storage/memory"
	"github.com/scrypster/docgraph/internal/storage/sqlite"
)

// ErrAssistantDisabled is returned by Ask when no LLM provider is configured.
var ErrAssistantDisabled = errors.New("assistant is not configured")

// Event types published after graph mutations.
const (
	EventDocumentProcessed = "document_processed"
	EventSamplesLoaded     = "samples_loaded"
	EventGraphLoaded       = "graph_loaded"
	EventGraphSaved        = "graph_saved"
	EventGraphCleared      = "graph_cleared"
)

// Event describes one change to the graph.
type Event struct {
	Type  string        `json:"type"`
	Data  interface{}   `json:"data,omitempty"`
	Stats storage.Stats `json:"stats"`
}

// GraphService owns one graph and the components operating on it.
type GraphService struct {
	mu        sync.Mutex // serialises load, save, clear and import
	store     *memory.GraphStore
	pipeline  *extraction.Pipeline
	loader    *importer.Loader
	query     *engine.QueryEngine
	traversal *engine.GraphTraversal
	assistant *llm.Assistant
	backups   *backup.Snapshotter // nil when disabled

	dataDir   string
	graphPath string
	sampleDir string

	listenersMu sync.RWMutex
	listeners   []func(Event)
}

// NewGraphService wires the components for cfg around store. assistant may
// be nil, in which case Ask returns ErrAssistantDisabled.
func NewGraphService(cfg *config.Config, store *memory.GraphStore, assistant *llm.Assistant) *GraphService {
	pipeline := extraction.NewPipeline(store, extraction.Options{
		LinkPolicies:      cfg.Extraction.LinkPolicies,
		DedupePolicyLinks: cfg.Extraction.DedupePolicyLinks,
	})
	var backups *backup.Snapshotter
	if cfg.Backup.Enabled {
		backups = backup.New(cfg.Backup.Path(cfg.Storage.DataDir), backup.RetentionPolicy{
			Hourly:  cfg.Backup.Hourly,
			Daily:   cfg.Backup.Daily,
			Weekly:  cfg.Backup.Weekly,
			Monthly: cfg.Backup.Monthly,
		})
	}
	return &GraphService{
		store:    store,
		pipeline: pipeline,
		loader:   importer.NewLoader(pipeline),
		query: engine.NewQueryEngine(store, engine.Options{
			MaxChunks:             cfg.Query.MaxChunks,
			MinKeywordLen:         cfg.Query.MinKeywordLen,
			DirectAnswerThreshold: cfg.Query.DirectAnswerThreshold,
		}),
		traversal: engine.NewGraphTraversal(store),
		assistant: assistant,
		backups:   backups,
		dataDir:   cfg.Storage.DataDir,
		graphPath: cfg.Storage.GraphPath(),
		sampleDir: cfg.Storage.SampleDir,
	}
}

// Store exposes the graph for reads.
func (s *GraphService) Store() storage.GraphReader {
	return s.store
}

// GraphPath is the default snapshot location.
func (s *GraphService) GraphPath() string {
	return s.graphPath
}

// Subscribe registers fn for every event published from now on.
func (s *GraphService) Subscribe(fn func(Event)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *GraphService) publish(eventType string, data interface{}) {
	s.listenersMu.RLock()
	listeners := append([]func(Event){}, s.listeners...)
	s.listenersMu.RUnlock()
	if len(listeners) == 0 {
		return
	}

	evt := Event{Type: eventType, Data: data, Stats: s.store.Stats()}
	for _, fn := range listeners {
		fn(evt)
	}
}

// ResolveSnapshotPath maps a bare file name into the data directory. An
// empty name selects the configured graph file.
func (s *GraphService) ResolveSnapshotPath(name string) string {
	if name == "" {
		return s.graphPath
	}
	return filepath.Join(s.dataDir, filepath.Base(name))
}

// Load replaces the graph with the snapshot at path (the configured file
// when path is empty). A missing file reports false and keeps the graph.
func (s *GraphService) Load(path string) (bool, error) {
	if path == "" {
		path = s.graphPath
	}
	s.mu.Lock()
	ok, err := s.store.Load(path)
	s.mu.Unlock()
	if err != nil {
		return false, err
	}
	if ok {
		log.Printf("graph: loaded %s", path)
		s.publish(EventGraphLoaded, map[string]string{"path": path})
	}
	return ok, nil
}

// Save writes the graph to path (the configured file when empty).
func (s *GraphService) Save(path string) error {
	if path == "" {
		path = s.graphPath
	}
	s.mu.Lock()
	if s.backups != nil {
		if _, err := s.backups.Capture(path); err != nil {
			log.Printf("graph: backup before save: %v", err)
		}
	}
	err := s.store.Save(path)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(EventGraphSaved, map[string]string{"path": path})
	return nil
}

// Backups lists the saved copies of earlier snapshots, newest first. It
// returns nothing when backups are disabled.
func (s *GraphService) Backups() ([]backup.BackupInfo, error) {
	if s.backups == nil {
		return nil, nil
	}
	return s.backups.List()
}

// Clear empties the graph.
func (s *GraphService) Clear() {
	s.mu.Lock()
	s.store.Clear()
	s.mu.Unlock()
	s.publish(EventGraphCleared, nil)
}

// ProcessDocument extracts text into the graph.
func (s *GraphService) ProcessDocument(text, name, documentType string) (*extraction.Summary, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: document name is required", storage.ErrInvalidInput)
	}
	sum := s.pipeline.ProcessDocument(text, name, documentType)
	s.publish(EventDocumentProcessed, sum)
	return sum, nil
}

// IngestFile reads one file from disk and extracts it.
func (s *GraphService) IngestFile(path, defaultType string) (*extraction.Summary, error) {
	sum, err := s.loader.LoadFile(path, defaultType)
	if err != nil {
		return nil, err
	}
	s.publish(EventDocumentProcessed, sum)
	return sum, nil
}

// IngestDirectory extracts every supported file in dir.
func (s *GraphService) IngestDirectory(dir, defaultType string) (*importer.LoadResult, error) {
	res, err := s.loader.LoadDirectory(dir, defaultType)
	if err != nil {
		return nil, err
	}
	for _, sum := range res.Documents {
		s.publish(EventDocumentProcessed, sum)
	}
	return res, nil
}

// LoadSamples seeds dir with the bank policy corpus if needed and extracts
// it. An empty dir uses the configured sample directory.
func (s *GraphService) LoadSamples(dir string) (*importer.LoadResult, error) {
	if dir == "" {
		dir = s.sampleDir
	}
	res, err := s.loader.LoadSampleDocuments(dir)
	if err != nil {
		return nil, err
	}
	s.publish(EventSamplesLoaded, res)
	return res, nil
}

// Query answers a question from the current graph.
func (s *GraphService) Query(question string) *engine.Result {
	return s.query.Query(question)
}

// Explain answers question and includes the retrieval trace.
func (s *GraphService) Explain(question string) *engine.Result {
	return s.query.Explain(question)
}

// ExampleQuestions suggests questions for the current graph.
func (s *GraphService) ExampleQuestions() []string {
	return s.query.ExampleQuestions()
}

// Neighborhood returns the surroundings of entity id up to depth hops.
func (s *GraphService) Neighborhood(ctx context.Context, id string, depth int) (*engine.Neighborhood, error) {
	if s.store.GetEntity(id) == nil {
		return nil, fmt.Errorf("entity %s: %w", id, storage.ErrNotFound)
	}
	return s.traversal.Neighborhood(ctx, id, storage.GraphBounds{MaxHops: depth})
}

// Ask forwards question to the assistant.
func (s *GraphService) Ask(ctx context.Context, question string) (string, error) {
	if s.assistant == nil {
		return "", ErrAssistantDisabled
	}
	return s.assistant.Ask(ctx, question)
}

// AssistantModel names the model behind Ask, or "" when disabled.
func (s *GraphService) AssistantModel() string {
	if s.assistant == nil {
		return ""
	}
	return s.assistant.Model()
}

// ExportSQLite writes the graph to a SQLite file.
func (s *GraphService) ExportSQLite(ctx context.Context, path string) error {
	return sqlite.Export(ctx, path, s.store.Snapshot())
}

// ImportSQLite replaces the graph with the contents of a SQLite file. A
// missing file reports false and keeps the graph.
func (s *GraphService) ImportSQLite(ctx context.Context, path string) (bool, error) {
	snap, ok, err := sqlite.Import(ctx, path)
	if err != nil || !ok {
		return false, err
	}
	s.mu.Lock()
	s.store.Replace(snap)
	s.mu.Unlock()
	s.publish(EventGraphLoaded, map[string]string{"path": path})
	return true, nil
}

// Watch ingests files created in dir until the returned watcher is
// stopped. onIngest may be nil.
func (s *GraphService) Watch(dir, defaultType string, onIngest func(path string, sum *extraction.Summary, err error)) (*importer.Watcher, error) {
	w := importer.NewWatcher(dir, defaultType, s.loader, func(path string, sum *extraction.Summary, err error) {
		if err == nil {
			s.publish(EventDocumentProcessed, sum)
		}
		if onIngest != nil {
			onIngest(path, sum, err)
		}
	})
	if err := w.Start(); err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return w, nil
}

// NewAssistant builds the chat assistant described by cfg over stats. It
// returns nil without error when the provider is "none".
func NewAssistant(cfg config.LLMConfig, stats llm.StatsSource) (*llm.Assistant, error) {
	gen, err := llm.NewTextGenerator(llm.ProviderConfig{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("assistant: %w", err)
	}
	if gen == nil {
		return nil, nil
	}
	return llm.NewAssistant(gen, stats, cfg.RequestsPerSecond, cfg.Burst), nil
}
