package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/scrypster/docgraph/internal/storage"
)

// BoundsChecker enforces GraphBounds during one traversal: nodes visited,
// edges followed, hop depth and elapsed time.
type BoundsChecker struct {
	bounds       storage.GraphBounds
	nodesVisited int
	edgesVisited int
	startTime    time.Time
}

// BoundsStats reports traversal progress.
type BoundsStats struct {
	NodesVisited int
	EdgesVisited int
	Elapsed      time.Duration
}

// NewBoundsChecker normalizes bounds and starts the clock.
func NewBoundsChecker(bounds storage.GraphBounds) *BoundsChecker {
	bounds.Normalize()
	return &BoundsChecker{bounds: bounds, startTime: time.Now()}
}

// Bounds returns the normalized bounds in effect.
func (b *BoundsChecker) Bounds() storage.GraphBounds {
	return b.bounds
}

// CanVisitNode reports ErrGraphBoundsExceeded once MaxNodes is reached.
func (b *BoundsChecker) CanVisitNode() error {
	if b.nodesVisited >= b.bounds.MaxNodes {
		return fmt.Errorf("%w: max nodes (%d) exceeded", storage.ErrGraphBoundsExceeded, b.bounds.MaxNodes)
	}
	return nil
}

// CanTraverseEdge reports ErrGraphBoundsExceeded once MaxEdges is reached.
func (b *BoundsChecker) CanTraverseEdge() error {
	if b.edgesVisited >= b.bounds.MaxEdges {
		return fmt.Errorf("%w: max edges (%d) exceeded", storage.ErrGraphBoundsExceeded, b.bounds.MaxEdges)
	}
	return nil
}

// CanContinue checks the context, then the node limit and the timeout.
// Context errors take priority and are not wrapped in
// ErrGraphBoundsExceeded.
func (b *BoundsChecker) CanContinue(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled during graph traversal: %w", ctx.Err())
	default:
	}

	if err := b.CanVisitNode(); err != nil {
		return err
	}

	if elapsed := time.Since(b.startTime); elapsed >= b.bounds.Timeout {
		return fmt.Errorf("%w: timeout (%v) exceeded after %v", storage.ErrGraphBoundsExceeded, b.bounds.Timeout, elapsed)
	}
	return nil
}

// CanExpand reports whether nodes at depth may have their edges followed.
func (b *BoundsChecker) CanExpand(depth int) bool {
	return depth < b.bounds.MaxHops
}

// RecordNode counts a visited node.
func (b *BoundsChecker) RecordNode() { b.nodesVisited++ }

// RecordEdge counts a followed edge.
func (b *BoundsChecker) RecordEdge() { b.edgesVisited++ }

// Stats returns current counters.
func (b *BoundsChecker) Stats() BoundsStats {
	return BoundsStats{
		NodesVisited: b.nodesVisited,
		EdgesVisited: b.edgesVisited,
		Elapsed:      time.Since(b.startTime),
	}
}
