// Package render draws the knowledge graph for the terminal: an entity
// table coloured by type, the relationship list, and single-entity
// neighbourhood trees.
package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/scrypster/docgraph/pkg/types"
)

// Palette is assigned to entity types in first-seen order, wrapping around.
var Palette = []lipgloss.Color{
	"#3b82f6",
	"#10b981",
	"#8b5cf6",
	"#f59e0b",
	"#ef4444",
	"#06b6d4",
	"#ec4899",
}

// HighlightColor marks highlighted entities and the root of a tree.
const HighlightColor = lipgloss.Color("#ff0000")

var (
	colorMuted = lipgloss.Color("#6b7280")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Align(lipgloss.Center)

	borderStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	hintStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	highlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(HighlightColor)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)
)

// TypeColors maps each entity type to a palette colour. Types are numbered
// in the order they first appear in entities.
type TypeColors struct {
	order  []string
	colors map[string]lipgloss.Color
}

// NewTypeColors assigns colours for the types present in entities.
func NewTypeColors(entities []*types.Entity) *TypeColors {
	tc := &TypeColors{colors: make(map[string]lipgloss.Color)}
	for _, e := range entities {
		tc.add(e.Type)
	}
	return tc
}

func (tc *TypeColors) add(entityType string) {
	if _, ok := tc.colors[entityType]; ok {
		return
	}
	tc.colors[entityType] = Palette[len(tc.order)%len(Palette)]
	tc.order = append(tc.order, entityType)
}

// Color returns the colour for entityType, assigning the next one if the
// type is new.
func (tc *TypeColors) Color(entityType string) lipgloss.Color {
	tc.add(entityType)
	return tc.colors[entityType]
}

// Types lists known types in assignment order.
func (tc *TypeColors) Types() []string {
	return append([]string(nil), tc.order...)
}

// Legend renders one coloured marker per type.
func (tc *TypeColors) Legend() string {
	if len(tc.order) == 0 {
		return ""
	}
	parts := make([]string, 0, len(tc.order))
	for _, t := range tc.order {
		marker := lipgloss.NewStyle().Foreground(tc.colors[t]).Render("●")
		parts = append(parts, marker+" "+t)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, joinWith(parts, "   ")...)
}

func joinWith(parts []string, sep string) []string {
	out := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, p)
	}
	return out
}
