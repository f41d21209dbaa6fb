package types

import (
	"errors"
	"fmt"
)

// ErrMissingField is returned when a record lacks a required field.
var ErrMissingField = errors.New("missing required field")

// Validate checks that an entity record can be indexed. Type, name and
// confidence are stored as given, so anything the store accepts on add
// also passes here.
func (e *Entity) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("entity: %w: id", ErrMissingField)
	}
	return nil
}

// Validate checks that a relationship record can be indexed. Endpoints are
// neither resolved nor required to be non-empty.
func (r *Relationship) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("relationship: %w: id", ErrMissingField)
	}
	return nil
}

// Validate checks that a chunk record can be indexed.
func (c *TextChunk) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("text chunk: %w: id", ErrMissingField)
	}
	return nil
}
