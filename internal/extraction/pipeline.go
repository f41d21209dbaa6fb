// Package extraction turns document text into graph entities,
// relationships and text chunks.
//
// Two rule-based strategies are provided: one for numbered banking policy
// documents and one for arbitrary prose. Both only ever append to the
// store; re-running a document creates a parallel set of records.
package extraction

import (
	"log"
	"sync"

	"github.com/scrypster/docgraph/internal/storage"
	"github.com/scrypster/docgraph/pkg/types"
)

// Document types accepted by ProcessDocument.
const (
	DocumentTypeBankingPolicy = "banking_policy"
	DocumentTypeGeneric       = "generic"
)

// Confidence scores assigned at extraction time.
const (
	confidenceAnchor       = 0.95 // Policy and Document entities, HAS_REQUIREMENT
	confidenceRequirement  = 0.9
	confidenceMention      = 0.85 // thresholds, durations, percentages, roles, quantities
	confidenceLink         = 0.8  // requirement and mention edges
	confidencePolicyLink   = 0.7
	confidenceOrganization = 0.7
	confidenceKeyTerm      = 0.6
)

// Store is what the pipeline needs from the graph: appends, plus policy
// lookup and counts for cross-linking and the run summary.
type Store interface {
	storage.GraphWriter
	GetEntitiesByType(entityType string) []*types.Entity
	Stats() storage.Stats
}

// Options tunes the policy strategy.
type Options struct {
	// LinkPolicies connects each new policy to every existing policy.
	LinkPolicies bool

	// DedupePolicyLinks skips existing policies that share the new
	// policy's name when linking.
	DedupePolicyLinks bool
}

// DefaultOptions links policies without deduplication.
func DefaultOptions() Options {
	return Options{LinkPolicies: true}
}

// Summary reports what one ProcessDocument call created.
type Summary struct {
	DocumentName string `json:"document_name"`
	DocumentType string `json:"document_type"`

	// PolicyID is set by the policy strategy, DocumentID by the generic one.
	PolicyID   string `json:"policy_id,omitempty"`
	DocumentID string `json:"document_id,omitempty"`

	RequirementIDs  []string `json:"requirement_ids,omitempty"`
	EntityIDs       []string `json:"entity_ids"`
	RelationshipIDs []string `json:"relationship_ids"`
	ChunkIDs        []string `json:"chunk_ids"`

	// Running totals in the store after the document was processed.
	EntityCount       int `json:"entity_count"`
	RelationshipCount int `json:"relationship_count"`
}

// Pipeline dispatches documents to an extraction strategy.
type Pipeline struct {
	mu    sync.Mutex // one document at a time
	store Store
	opts  Options
}

// NewPipeline creates a pipeline writing into store.
func NewPipeline(store Store, opts Options) *Pipeline {
	return &Pipeline{store: store, opts: opts}
}

// ProcessDocument extracts text into the store. Unknown document types
// are processed as generic documents. Extraction never fails: text that
// matches no pattern simply yields fewer records.
func (p *Pipeline) ProcessDocument(text, name, documentType string) *Summary {
	p.mu.Lock()
	defer p.mu.Unlock()

	if documentType != DocumentTypeBankingPolicy {
		documentType = DocumentTypeGeneric
	}

	rec := &recorder{store: p.store, summary: &Summary{
		DocumentName:    name,
		DocumentType:    documentType,
		EntityIDs:       []string{},
		RelationshipIDs: []string{},
		ChunkIDs:        []string{},
	}}

	switch documentType {
	case DocumentTypeBankingPolicy:
		p.processPolicy(rec, text, name)
	default:
		p.processGeneric(rec, text, name)
	}

	stats := p.store.Stats()
	rec.summary.EntityCount = stats.EntityCount
	rec.summary.RelationshipCount = stats.RelationshipCount

	log.Printf("extract: %s (%s): %d entities, %d relationships, %d chunks created",
		name, documentType, len(rec.summary.EntityIDs), len(rec.summary.RelationshipIDs), len(rec.summary.ChunkIDs))
	return rec.summary
}

// recorder forwards appends to the store and remembers the returned IDs.
type recorder struct {
	store   Store
	summary *Summary
}

func (r *recorder) entity(entityType, name string, props types.Properties, confidence float64) string {
	id := r.store.AddEntity(entityType, name, props, confidence)
	r.summary.EntityIDs = append(r.summary.EntityIDs, id)
	return id
}

func (r *recorder) relationship(relType, source, target string, props types.Properties, confidence float64) string {
	id := r.store.AddRelationship(relType, source, target, props, confidence)
	r.summary.RelationshipIDs = append(r.summary.RelationshipIDs, id)
	return id
}

func (r *recorder) chunk(text string, metadata types.Properties) string {
	id := r.store.AddTextChunk(text, metadata)
	r.summary.ChunkIDs = append(r.summary.ChunkIDs, id)
	return id
}
