package types

// TextChunk is a span of source text kept for retrieval and citation.
// Chunks are immutable once stored; query-time relevance lives in ScoredChunk.
type TextChunk struct {
	ID       string     `json:"id"`       // Unique identifier (format: chunk-xxxxxxxx)
	Text     string     `json:"text"`     // Raw text
	Metadata Properties `json:"metadata"` // source, paragraph, policy
}

// ScoredChunk pairs a stored chunk with its keyword-overlap score for one query.
type ScoredChunk struct {
	Chunk      *TextChunk `json:"chunk"`
	Similarity float64    `json:"similarity"`
}
