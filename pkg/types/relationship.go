package types

// Relationship is a typed directed edge between two entity IDs.
// Source and Target are not checked against the store; a dangling endpoint
// simply resolves to nothing.
type Relationship struct {
	ID         string     `json:"id"`     // Unique identifier (format: rel-xxxxxxxx)
	Type       string     `json:"type"`   // Relationship type (e.g. HAS_REQUIREMENT)
	Source     string     `json:"source"` // Source entity ID
	Target     string     `json:"target"` // Target entity ID
	Properties Properties `json:"properties"`
	Confidence float64    `json:"confidence"`
}

// Involves reports whether id is either endpoint of r.
func (r *Relationship) Involves(id string) bool {
	return r.Source == id || r.Target == id
}
