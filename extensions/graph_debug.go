package extensions

import (
	"fmt"
	"log/slog"

	"github.com/m1gwings/treedrawer/tree"

	statemesh "github.com/firatkiral/statemesh"
)

// GraphDebugObserver logs a rendering of a cell's source graph when
// recomputation fails, so a broken combiner or an unexpected cycle can
// be located without instrumenting every cell.
//
// Usage:
//
//	ext := extensions.NewGraphDebugObserver(slog.NewTextHandler(os.Stderr, nil))
//	handle := statemesh.Observe(ext, cells...)
//	defer handle.Destroy()
type GraphDebugObserver struct {
	statemesh.BaseObserver
	logger *slog.Logger
}

// NewGraphDebugObserver creates a graph debug observer writing to the
// given slog handler.
func NewGraphDebugObserver(handler slog.Handler) *GraphDebugObserver {
	return &GraphDebugObserver{
		BaseObserver: statemesh.NewBaseObserver("graph-debug"),
		logger:       slog.New(handler),
	}
}

// OnError logs the failing cell's source graph at ERROR level.
func (o *GraphDebugObserver) OnError(cell statemesh.AnyCell, err error) {
	o.logger.Error("cell resolution error",
		"cell", cellLabel(cell),
		"error", err.Error(),
		"sources", "\n"+RenderSources(cell),
	)
}

// RenderSources draws the upstream/input graph below a cell. Cells
// already on the path are marked instead of recursed into, so cyclic
// graphs render finitely.
func RenderSources(cell statemesh.AnyCell) string {
	if cell == nil {
		return "(nil cell)"
	}
	t := tree.NewTree(tree.NodeString(cellLabel(cell)))
	seen := map[statemesh.AnyCell]bool{cell: true}
	addSources(t, cell, seen)
	return t.String()
}

func addSources(t *tree.Tree, cell statemesh.AnyCell, seen map[statemesh.AnyCell]bool) {
	for i, src := range statemesh.SourcesOf(cell) {
		label := cellLabel(src)
		cyclic := seen[src]
		if cyclic {
			label += " (cycle)"
		}
		t.AddChild(tree.NodeString(label))
		if cyclic {
			continue
		}
		seen[src] = true
		child, err := t.Child(i)
		if err != nil {
			continue
		}
		addSources(child, src, seen)
	}
}

func cellLabel(cell statemesh.AnyCell) string {
	if name := cell.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("cell_%p", cell)
}
