package engine

import (
	"context"
	"errors"

	"github.com/scrypster/docgraph/internal/storage"
	"github.com/scrypster/docgraph/pkg/types"
)

// GraphTraversal walks entity neighbourhoods over a GraphReader. Edges are
// followed in both directions. Every walk is limited by GraphBounds.
type GraphTraversal struct {
	store storage.GraphReader
}

// NewGraphTraversal creates a traversal over store.
func NewGraphTraversal(store storage.GraphReader) *GraphTraversal {
	return &GraphTraversal{store: store}
}

// NodeVisit is one node reached by a traversal.
type NodeVisit struct {
	// ID is the node's entity ID. It may not resolve to an entity when a
	// relationship points at a missing endpoint.
	ID string

	// Entity is nil for dangling endpoints.
	Entity *types.Entity

	// Depth is the hop distance from the start node.
	Depth int

	// Parent and Via identify the edge the node was first reached through.
	// Both are empty for the start node.
	Parent string
	Via    *types.Relationship
}

// Neighborhood is the bounded surroundings of one entity.
type Neighborhood struct {
	Root  string
	Nodes []NodeVisit

	// Edges holds every relationship followed, each once.
	Edges []*types.Relationship

	// Truncated is set when a node, edge or time limit cut the walk short.
	Truncated bool
}

// BreadthFirstSearch visits nodes reachable from startID in hop order.
// visit returns false to stop early. Relationships are followed until
// MaxHops; limits surface as ErrGraphBoundsExceeded.
func (g *GraphTraversal) BreadthFirstSearch(
	ctx context.Context,
	startID string,
	bounds storage.GraphBounds,
	visit func(node NodeVisit, edges []*types.Relationship) bool,
) error {
	checker := NewBoundsChecker(bounds)

	queue := []NodeVisit{{ID: startID, Entity: g.store.GetEntity(startID)}}
	discovered := map[string]bool{startID: true}
	seenEdges := make(map[string]bool)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if err := checker.CanContinue(ctx); err != nil {
			return err
		}
		checker.RecordNode()

		var followed []*types.Relationship
		var next []NodeVisit
		if checker.CanExpand(current.Depth) {
			for _, rel := range g.store.GetRelationshipsForEntity(current.ID) {
				if seenEdges[rel.ID] {
					continue
				}
				if err := checker.CanTraverseEdge(); err != nil {
					visit(current, followed)
					return err
				}
				checker.RecordEdge()
				seenEdges[rel.ID] = true
				followed = append(followed, rel)

				other := rel.Target
				if other == current.ID {
					other = rel.Source
				}
				if discovered[other] {
					continue
				}
				discovered[other] = true
				next = append(next, NodeVisit{
					ID:     other,
					Entity: g.store.GetEntity(other),
					Depth:  current.Depth + 1,
					Parent: current.ID,
					Via:    rel,
				})
			}
		}

		if !visit(current, followed) {
			return nil
		}
		queue = append(queue, next...)
	}
	return nil
}

// Neighborhood collects the nodes and edges within bounds.MaxHops of id.
// Hitting a limit marks the result truncated instead of failing; only
// context cancellation is returned as an error.
func (g *GraphTraversal) Neighborhood(ctx context.Context, id string, bounds storage.GraphBounds) (*Neighborhood, error) {
	n := &Neighborhood{Root: id}
	err := g.BreadthFirstSearch(ctx, id, bounds, func(node NodeVisit, edges []*types.Relationship) bool {
		n.Nodes = append(n.Nodes, node)
		n.Edges = append(n.Edges, edges...)
		return true
	})
	if errors.Is(err, storage.ErrGraphBoundsExceeded) {
		n.Truncated = true
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}
