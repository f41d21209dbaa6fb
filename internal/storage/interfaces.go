// Package storage defines the graph store interfaces for docgraph.
//
// The store is split into a read side (used by the query engine, traversal
// and rendering) and a write side (used by the extraction pipeline) so each
// component depends only on what it needs. internal/storage/memory provides
// the in-memory implementation.
package storage

import "github.com/scrypster/docgraph/pkg/types"

// GraphReader provides lookup and listing over the current graph contents.
// Listings preserve insertion order. Lookups on unknown IDs or types return
// nil or an empty slice, never an error.
type GraphReader interface {
	// GetEntity returns the entity with the given ID, or nil.
	GetEntity(id string) *types.Entity

	// GetEntitiesByType returns all entities with the given type label.
	GetEntitiesByType(entityType string) []*types.Entity

	// GetRelationshipsForEntity returns every relationship whose source or
	// target is id. This is a full scan.
	GetRelationshipsForEntity(id string) []*types.Relationship

	// Entities returns all entities in creation order.
	Entities() []*types.Entity

	// Relationships returns all relationships in creation order.
	Relationships() []*types.Relationship

	// TextChunks returns all text chunks in creation order.
	TextChunks() []*types.TextChunk

	// Stats recomputes aggregate counts from the current collections.
	Stats() Stats
}

// GraphWriter appends to the graph. Every add mints and returns a fresh ID.
type GraphWriter interface {
	// AddEntity appends an entity. A nil props map is stored as empty.
	AddEntity(entityType, name string, props types.Properties, confidence float64) string

	// AddRelationship appends a directed edge. Endpoints are not validated.
	AddRelationship(relType, source, target string, props types.Properties, confidence float64) string

	// AddTextChunk appends a chunk of source text.
	AddTextChunk(text string, metadata types.Properties) string
}

// GraphStore is the full store contract: reads, appends, reset and
// snapshot persistence.
type GraphStore interface {
	GraphReader
	GraphWriter

	// Clear empties all collections and the ID index. Idempotent.
	Clear()

	// Snapshot returns copies of the three ordered collections.
	Snapshot() Snapshot

	// Replace discards the current contents and installs snap,
	// rebuilding the ID index (last duplicate ID wins).
	Replace(snap Snapshot)

	// Save writes the graph to path, creating parent directories.
	Save(path string) error

	// Load replaces the graph with the snapshot at path. It returns
	// false with a nil error when path does not exist, and false with an
	// error when the file cannot be parsed. The graph is left untouched in
	// both cases.
	Load(path string) (bool, error)
}
