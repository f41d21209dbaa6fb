package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/scrypster/docgraph/internal/storage"
	"github.com/scrypster/docgraph/pkg/types"
)

// Options controls the overview rendering.
type Options struct {
	// Highlight lists entity IDs drawn in HighlightColor.
	Highlight []string

	// Type limits the entity table to one type. Relationships touching an
	// entity of that type are still listed.
	Type string

	// Width caps the table width; zero lets tables size to content.
	Width int
}

// Graph renders the legend, the entity table and the relationship table.
func Graph(store storage.GraphReader, opts Options) string {
	all := store.Entities()
	colors := NewTypeColors(all)

	highlight := make(map[string]bool, len(opts.Highlight))
	for _, id := range opts.Highlight {
		highlight[id] = true
	}

	entities := all
	if opts.Type != "" {
		entities = nil
		for _, e := range all {
			if e.Type == opts.Type {
				entities = append(entities, e)
			}
		}
	}
	if len(entities) == 0 {
		return hintStyle.Render("No entities found.")
	}

	var b strings.Builder
	b.WriteString(colors.Legend())
	b.WriteString("\n\n")
	b.WriteString(entityTable(entities, colors, highlight, opts.Width))

	shown := make(map[string]bool, len(entities))
	for _, e := range entities {
		shown[e.ID] = true
	}
	var rels []*types.Relationship
	for _, r := range store.Relationships() {
		if shown[r.Source] || shown[r.Target] {
			rels = append(rels, r)
		}
	}
	if len(rels) > 0 {
		b.WriteString("\n\n")
		b.WriteString(relationshipTable(store, rels, opts.Width))
	}
	return b.String()
}

func entityTable(entities []*types.Entity, colors *TypeColors, highlight map[string]bool, width int) string {
	rows := make([][]string, 0, len(entities))
	for _, e := range entities {
		rows = append(rows, []string{e.ID, e.Type, e.Name, fmt.Sprintf("%.2f", e.Confidence)})
	}

	t := newTable(width).
		Headers("ID", "Type", "Name", "Confidence").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(entities) {
				return cellStyle
			}
			e := entities[row]
			if highlight[e.ID] {
				return cellStyle.Inherit(highlightStyle)
			}
			if col == 1 || col == 2 {
				return cellStyle.Foreground(colors.Color(e.Type))
			}
			return cellStyle
		})
	return t.String()
}

func relationshipTable(store storage.GraphReader, rels []*types.Relationship, width int) string {
	rows := make([][]string, 0, len(rels))
	for _, r := range rels {
		rows = append(rows, []string{Label(store, r.Source), r.Type, Label(store, r.Target), fmt.Sprintf("%.2f", r.Confidence)})
	}
	return newTable(width).
		Headers("Source", "Relationship", "Target", "Confidence").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

// Label names an endpoint by its entity name, or by the raw ID when the
// entity does not exist.
func Label(store storage.GraphReader, id string) string {
	if e := store.GetEntity(id); e != nil {
		return e.Name
	}
	return id
}

func newTable(width int) *table.Table {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle)
	if width > 0 {
		t = t.Width(width)
	}
	return t
}
