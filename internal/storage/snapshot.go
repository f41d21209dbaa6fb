package storage

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/scrypster/docgraph/pkg/types"
)

// The persisted graph is a JSON object with three named arrays. Optional
// fields fall back to properties={}, confidence=1.0 and similarity=0.0.
// Similarity is written for compatibility and ignored on read.

type snapshotFile struct {
	Entities      []entityRecord       `json:"entities"`
	Relationships []relationshipRecord `json:"relationships"`
	TextChunks    []chunkRecord        `json:"text_chunks"`
}

type entityRecord struct {
	ID         *string          `json:"id"`
	Type       *string          `json:"type"`
	Name       *string          `json:"name"`
	Properties types.Properties `json:"properties"`
	Confidence *float64         `json:"confidence"`
}

type relationshipRecord struct {
	ID         *string          `json:"id"`
	Type       *string          `json:"type"`
	Source     *string          `json:"source"`
	Target     *string          `json:"target"`
	Properties types.Properties `json:"properties"`
	Confidence *float64         `json:"confidence"`
}

type chunkRecord struct {
	ID         *string          `json:"id"`
	Text       *string          `json:"text"`
	Metadata   types.Properties `json:"metadata"`
	Similarity *float64         `json:"similarity"`
}

// EncodeSnapshot writes snap as indented JSON.
func EncodeSnapshot(w io.Writer, snap Snapshot) error {
	out := snapshotFile{
		Entities:      make([]entityRecord, 0, len(snap.Entities)),
		Relationships: make([]relationshipRecord, 0, len(snap.Relationships)),
		TextChunks:    make([]chunkRecord, 0, len(snap.TextChunks)),
	}
	zero := 0.0
	for _, e := range snap.Entities {
		out.Entities = append(out.Entities, entityRecord{
			ID: &e.ID, Type: &e.Type, Name: &e.Name,
			Properties: nonNil(e.Properties), Confidence: &e.Confidence,
		})
	}
	for _, r := range snap.Relationships {
		out.Relationships = append(out.Relationships, relationshipRecord{
			ID: &r.ID, Type: &r.Type, Source: &r.Source, Target: &r.Target,
			Properties: nonNil(r.Properties), Confidence: &r.Confidence,
		})
	}
	for _, c := range snap.TextChunks {
		out.TextChunks = append(out.TextChunks, chunkRecord{
			ID: &c.ID, Text: &c.Text, Metadata: nonNil(c.Metadata), Similarity: &zero,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// DecodeSnapshot parses and validates a persisted graph. Any decode or
// validation failure is reported as ErrMalformedSnapshot.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	var in snapshotFile
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
	}

	snap := Snapshot{
		Entities:      make([]*types.Entity, 0, len(in.Entities)),
		Relationships: make([]*types.Relationship, 0, len(in.Relationships)),
		TextChunks:    make([]*types.TextChunk, 0, len(in.TextChunks)),
	}

	for i, rec := range in.Entities {
		if rec.ID == nil || rec.Type == nil || rec.Name == nil {
			return Snapshot{}, fmt.Errorf("%w: entities[%d]: %w: id, type and name are required",
				ErrMalformedSnapshot, i, types.ErrMissingField)
		}
		e := &types.Entity{
			ID:         *rec.ID,
			Type:       *rec.Type,
			Name:       *rec.Name,
			Properties: nonNil(rec.Properties),
			Confidence: orDefault(rec.Confidence, types.DefaultConfidence),
		}
		if err := e.Validate(); err != nil {
			return Snapshot{}, fmt.Errorf("%w: entities[%d]: %w", ErrMalformedSnapshot, i, err)
		}
		snap.Entities = append(snap.Entities, e)
	}

	for i, rec := range in.Relationships {
		if rec.ID == nil || rec.Type == nil || rec.Source == nil || rec.Target == nil {
			return Snapshot{}, fmt.Errorf("%w: relationships[%d]: %w: id, type, source and target are required",
				ErrMalformedSnapshot, i, types.ErrMissingField)
		}
		rel := &types.Relationship{
			ID:         *rec.ID,
			Type:       *rec.Type,
			Source:     *rec.Source,
			Target:     *rec.Target,
			Properties: nonNil(rec.Properties),
			Confidence: orDefault(rec.Confidence, types.DefaultConfidence),
		}
		if err := rel.Validate(); err != nil {
			return Snapshot{}, fmt.Errorf("%w: relationships[%d]: %w", ErrMalformedSnapshot, i, err)
		}
		snap.Relationships = append(snap.Relationships, rel)
	}

	for i, rec := range in.TextChunks {
		if rec.ID == nil || rec.Text == nil {
			return Snapshot{}, fmt.Errorf("%w: text_chunks[%d]: %w: id and text are required",
				ErrMalformedSnapshot, i, types.ErrMissingField)
		}
		c := &types.TextChunk{ID: *rec.ID, Text: *rec.Text, Metadata: nonNil(rec.Metadata)}
		if err := c.Validate(); err != nil {
			return Snapshot{}, fmt.Errorf("%w: text_chunks[%d]: %w", ErrMalformedSnapshot, i, err)
		}
		snap.TextChunks = append(snap.TextChunks, c)
	}

	return snap, nil
}

func nonNil(p types.Properties) types.Properties {
	if p == nil {
		return types.Properties{}
	}
	return p
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
