package types

// Entity is a typed node in the knowledge graph. Entities are minted by the
// graph store; ID is assigned at creation and never changes.
type Entity struct {
	ID         string     `json:"id"`         // Unique identifier (format: entity-xxxxxxxx)
	Type       string     `json:"type"`       // Free-form category label (see EntityType constants)
	Name       string     `json:"name"`       // Display name, not unique
	Properties Properties `json:"properties"` // Extraction-specific values (amount, text, section, ...)
	Confidence float64    `json:"confidence"` // Extraction certainty in [0,1], informational only
}

// Property returns a string property or "" when absent or not a string.
func (e *Entity) Property(key string) string {
	s, _ := e.Properties.String(key)
	return s
}
