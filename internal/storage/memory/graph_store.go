// Package memory implements storage.GraphStore in process memory with JSON
// snapshot persistence.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/scrypster/docgraph/internal/storage"
	"github.com/scrypster/docgraph/pkg/types"
)

// ID prefixes per record kind.
const (
	EntityIDPrefix       = "entity-"
	RelationshipIDPrefix = "rel-"
	ChunkIDPrefix        = "chunk-"
)

// GraphStore owns the entities, relationships and text chunks of one graph.
// Collections are kept in creation order; entities are also indexed by ID.
//
// The mutex only keeps individual calls consistent. A reader running while
// a document is being extracted sees a partially populated graph.
type GraphStore struct {
	mu            sync.RWMutex
	entities      []*types.Entity
	relationships []*types.Relationship
	chunks        []*types.TextChunk
	entityIndex   map[string]*types.Entity

	// issued holds every ID minted or loaded, across kinds.
	issued map[string]struct{}
}

// NewGraphStore creates an empty graph.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		entityIndex: make(map[string]*types.Entity),
		issued:      make(map[string]struct{}),
	}
}

// newID mints prefix + 8 hex characters. Must be called with mu held.
func (s *GraphStore) newID(prefix string) string {
	for {
		id := prefix + uuid.New().String()[:8]
		if _, taken := s.issued[id]; !taken {
			s.issued[id] = struct{}{}
			return id
		}
	}
}

// AddEntity appends an entity and indexes it.
func (s *GraphStore) AddEntity(entityType, name string, props types.Properties, confidence float64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &types.Entity{
		ID:         s.newID(EntityIDPrefix),
		Type:       entityType,
		Name:       name,
		Properties: ownedProps(props),
		Confidence: confidence,
	}
	s.entities = append(s.entities, e)
	s.entityIndex[e.ID] = e
	return e.ID
}

// AddRelationship appends a relationship without checking its endpoints.
func (s *GraphStore) AddRelationship(relType, source, target string, props types.Properties, confidence float64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := &types.Relationship{
		ID:         s.newID(RelationshipIDPrefix),
		Type:       relType,
		Source:     source,
		Target:     target,
		Properties: ownedProps(props),
		Confidence: confidence,
	}
	s.relationships = append(s.relationships, r)
	return r.ID
}

// AddTextChunk appends a chunk.
func (s *GraphStore) AddTextChunk(text string, metadata types.Properties) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &types.TextChunk{
		ID:       s.newID(ChunkIDPrefix),
		Text:     text,
		Metadata: ownedProps(metadata),
	}
	s.chunks = append(s.chunks, c)
	return c.ID
}

// GetEntity returns the indexed entity or nil.
func (s *GraphStore) GetEntity(id string) *types.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entityIndex[id]
}

// GetEntitiesByType filters entities by type label in creation order.
func (s *GraphStore) GetEntitiesByType(entityType string) []*types.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*types.Entity
	for _, e := range s.entities {
		if e.Type == entityType {
			out = append(out, e)
		}
	}
	return out
}

// GetRelationshipsForEntity scans for relationships touching id.
func (s *GraphStore) GetRelationshipsForEntity(id string) []*types.Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*types.Relationship
	for _, r := range s.relationships {
		if r.Involves(id) {
			out = append(out, r)
		}
	}
	return out
}

// Entities returns all entities in creation order.
func (s *GraphStore) Entities() []*types.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*types.Entity(nil), s.entities...)
}

// Relationships returns all relationships in creation order.
func (s *GraphStore) Relationships() []*types.Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*types.Relationship(nil), s.relationships...)
}

// TextChunks returns all chunks in creation order.
func (s *GraphStore) TextChunks() []*types.TextChunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*types.TextChunk(nil), s.chunks...)
}

// Stats recomputes counts from the current collections.
func (s *GraphStore) Stats() storage.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return storage.ComputeStats(s.entities, s.relationships, s.chunks)
}

// Clear empties the graph.
func (s *GraphStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *GraphStore) reset() {
	s.entities = nil
	s.relationships = nil
	s.chunks = nil
	s.entityIndex = make(map[string]*types.Entity)
	s.issued = make(map[string]struct{})
}

// Snapshot copies the collections. Records are copied too so the caller
// can hold the snapshot across later mutations.
func (s *GraphStore) Snapshot() storage.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := storage.Snapshot{
		Entities:      make([]*types.Entity, len(s.entities)),
		Relationships: make([]*types.Relationship, len(s.relationships)),
		TextChunks:    make([]*types.TextChunk, len(s.chunks)),
	}
	for i, e := range s.entities {
		cp := *e
		cp.Properties = e.Properties.Clone()
		snap.Entities[i] = &cp
	}
	for i, r := range s.relationships {
		cp := *r
		cp.Properties = r.Properties.Clone()
		snap.Relationships[i] = &cp
	}
	for i, c := range s.chunks {
		cp := *c
		cp.Metadata = c.Metadata.Clone()
		snap.TextChunks[i] = &cp
	}
	return snap
}

// Replace installs snap as the graph contents. When snap holds duplicate
// entity IDs the later record wins in the index; both stay in the listing.
func (s *GraphStore) Replace(snap storage.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	s.entities = append(s.entities, snap.Entities...)
	s.relationships = append(s.relationships, snap.Relationships...)
	s.chunks = append(s.chunks, snap.TextChunks...)

	for _, e := range s.entities {
		s.entityIndex[e.ID] = e
		s.issued[e.ID] = struct{}{}
	}
	for _, r := range s.relationships {
		s.issued[r.ID] = struct{}{}
	}
	for _, c := range s.chunks {
		s.issued[c.ID] = struct{}{}
	}
}

func ownedProps(p types.Properties) types.Properties {
	if p == nil {
		return types.Properties{}
	}
	return p.Clone()
}

// Compile-time assertion.
var _ storage.GraphStore = (*GraphStore)(nil)
