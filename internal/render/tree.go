package render

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/scrypster/docgraph/internal/engine"
)

// Neighborhood renders n as a tree rooted at the start entity. Each child
// shows the relationship it was reached through; "->" means the edge
// points from the parent to the child.
func Neighborhood(n *engine.Neighborhood) string {
	if n == nil || len(n.Nodes) == 0 {
		return hintStyle.Render("No entities found.")
	}

	colors := &TypeColors{colors: make(map[string]lipgloss.Color)}
	root := n.Nodes[0]
	t := tree.New().
		Root(nodeLabel(root)).
		RootStyle(highlightStyle).
		EnumeratorStyle(borderStyle)

	subtrees := map[string]*tree.Tree{root.ID: t}
	for _, node := range n.Nodes[1:] {
		label := nodeLabel(node)
		if node.Via != nil {
			arrow := "<-"
			if node.Via.Source == node.Parent {
				arrow = "->"
			}
			label = fmt.Sprintf("%s %s %s", arrow, node.Via.Type, label)
		}

		style := hintStyle
		if node.Entity != nil {
			style = lipgloss.NewStyle().Foreground(colors.Color(node.Entity.Type))
		}
		child := tree.New().Root(style.Render(label)).EnumeratorStyle(borderStyle)
		subtrees[node.ID] = child

		if parent, ok := subtrees[node.Parent]; ok {
			parent.Child(child)
		} else {
			t.Child(child)
		}
	}

	out := t.String()
	if n.Truncated {
		out += "\n" + hintStyle.Render("(truncated: traversal limits reached)")
	}
	return out
}

func nodeLabel(node engine.NodeVisit) string {
	if node.Entity == nil {
		return node.ID
	}
	return fmt.Sprintf("%s (%s)", node.Entity.Name, node.Entity.Type)
}
