package storage

import (
	"errors"
	"time"

	"github.com/scrypster/docgraph/pkg/types"
)

var (
	// ErrNotFound indicates that the requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedSnapshot indicates a persisted graph that cannot be decoded
	// or fails record validation.
	ErrMalformedSnapshot = errors.New("malformed graph snapshot")

	// ErrGraphBoundsExceeded indicates that graph traversal exceeded bounds.
	ErrGraphBoundsExceeded = errors.New("graph bounds exceeded")
)

// Stats summarises the graph. It is recomputed on every call.
type Stats struct {
	EntityCount       int            `json:"entity_count"`
	RelationshipCount int            `json:"relationship_count"`
	TextChunkCount    int            `json:"text_chunk_count"`
	EntityTypes       map[string]int `json:"entity_types"`
	RelationshipTypes map[string]int `json:"relationship_types"`
}

// ComputeStats counts the given collections by type.
func ComputeStats(entities []*types.Entity, rels []*types.Relationship, chunks []*types.TextChunk) Stats {
	s := Stats{
		EntityCount:       len(entities),
		RelationshipCount: len(rels),
		TextChunkCount:    len(chunks),
		EntityTypes:       make(map[string]int),
		RelationshipTypes: make(map[string]int),
	}
	for _, e := range entities {
		s.EntityTypes[e.Type]++
	}
	for _, r := range rels {
		s.RelationshipTypes[r.Type]++
	}
	return s
}

// Snapshot is the full contents of a graph in insertion order.
type Snapshot struct {
	Entities      []*types.Entity
	Relationships []*types.Relationship
	TextChunks    []*types.TextChunk
}

// GraphBounds prevents combinatorial explosion during graph traversal.
type GraphBounds struct {
	// MaxHops is the maximum number of hops from the starting node.
	MaxHops int

	// MaxNodes is the maximum number of nodes to return.
	MaxNodes int

	// MaxEdges is the maximum number of edges to traverse.
	MaxEdges int

	// Timeout is the maximum duration for the traversal operation.
	Timeout time.Duration
}

// Normalize applies defaults and validates the GraphBounds.
func (g *GraphBounds) Normalize() {
	if g.MaxHops < 1 {
		g.MaxHops = 2
	}
	if g.MaxHops > 10 {
		g.MaxHops = 10
	}

	if g.MaxNodes < 1 {
		g.MaxNodes = 100
	}
	if g.MaxNodes > 1000 {
		g.MaxNodes = 1000
	}

	if g.MaxEdges < 1 {
		g.MaxEdges = 500
	}
	if g.MaxEdges > 5000 {
		g.MaxEdges = 5000
	}

	if g.Timeout == 0 {
		g.Timeout = 30 * time.Second
	}
	if g.Timeout > 5*time.Minute {
		g.Timeout = 5 * time.Minute
	}
}
