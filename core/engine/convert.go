package engine

import (
	"context"
	"sort"

	"github.com/FocuswithJustin/DataLens/core/format"
	"github.com/FocuswithJustin/DataLens/core/value"
)

// maxEdges bounds derivation depth: a recorded path holds the root
// format plus at most maxEdges conversion hops.
const maxEdges = 5

type bfsNode struct {
	val  value.Value
	path []string
}

type traversal struct {
	eng        *Engine
	rootFormat string
	visited    map[string]struct{}
	results    []value.Conversion
	queue      []bfsNode
}

// Convert runs a breadth-first traversal of the conversion graph rooted
// at (root, rootFormat) and returns the visible conversions in their
// stable display order. Cancelling ctx stops expansion; everything
// recorded so far is still returned.
func (e *Engine) Convert(ctx context.Context, root value.Value, rootFormat string) []value.Conversion {
	t := &traversal{
		eng:        e,
		rootFormat: rootFormat,
		visited:    map[string]struct{}{visitKey(rootFormat, root): {}},
		queue:      []bfsNode{{val: root, path: []string{rootFormat}}},
	}

	// The root's own provider may contribute edges that apply only when
	// it was the source, such as an expression's evaluated result.
	if f, ok := e.registry.Get(rootFormat); ok {
		if sc, ok := f.(format.SourceConverter); ok {
			rootNode := t.queue[0]
			for _, edge := range sc.SourceConversions(ctx, root) {
				t.admit(rootNode, edge)
			}
		}
	}

	for len(t.queue) > 0 {
		if ctx.Err() != nil {
			break
		}
		n := t.queue[0]
		t.queue = t.queue[1:]
		t.expand(ctx, n)
	}

	visible := t.results[:0]
	for _, c := range t.results {
		if !c.Hidden {
			visible = append(visible, c)
		}
	}
	e.sortConversions(visible)
	return visible
}

// expand asks every provider for outgoing edges of one node, then
// attempts string reinterpretation for intermediate string values.
func (t *traversal) expand(ctx context.Context, n bfsNode) {
	for _, f := range t.eng.registry.All() {
		for _, edge := range t.eng.safeConversions(ctx, f, n.val) {
			t.admit(n, edge)
		}
	}

	// A string produced mid-traversal (decoded hex, base64 payload,
	// archive contents) may itself be parseable. Re-feed it through the
	// coordinator and splice confident matches in as further edges.
	if n.val.Kind == value.KindString && len(n.path) > 1 {
		t.reinterpret(n)
	}
}

func (t *traversal) admit(parent bfsNode, edge value.Conversion) {
	target := edge.TargetFormat

	// A provider restating the root value in the root's own format is
	// the identity edge; drop it rather than show "hex -> hex".
	if len(parent.path) == 1 && target == t.rootFormat {
		return
	}

	blk := &t.eng.cfg.Blocking
	if blk.IsFormatBlocked(target) {
		return
	}
	immediate := parent.path[len(parent.path)-1]
	if blk.IsPathBlocked(immediate, target) {
		return
	}
	if blk.IsRootBlocked(t.rootFormat, target) {
		return
	}

	t.record(parent, edge, target)
}

// reinterpret feeds a string node back through the parse coordinator.
// Matches below the confidence threshold are dropped; survivors become
// ordinary edges. Root-scoped blocking does not reach across the
// reinterpretation boundary, only path-scoped blocking applies. The
// plain-text provider is skipped: it matches everything and would only
// restate the node.
func (t *traversal) reinterpret(parent bfsNode) {
	immediate := parent.path[len(parent.path)-1]
	blk := &t.eng.cfg.Blocking

	for _, interp := range t.eng.parseAll(t.eng.registry.All(), parent.val.Str) {
		if interp.SourceFormat == fallbackFormat {
			continue
		}
		if interp.Confidence < t.eng.cfg.ReinterpretThreshold {
			continue
		}
		target := interp.SourceFormat
		if blk.IsFormatBlocked(target) || blk.IsPathBlocked(immediate, target) {
			continue
		}

		display := interp.Description
		if f, ok := t.eng.registry.Get(target); ok {
			if r, ok := f.Render(interp.Value); ok {
				display = r
			}
		}
		t.record(parent, value.Conversion{
			Value:        interp.Value,
			TargetFormat: target,
			Display:      display,
			Kind:         value.KindConversion,
			Priority:     value.PriorityStructured,
		}, target)
	}
}

// record applies deduplication, captures the conversion with its full
// derivation path, and enqueues the resulting node when it is neither
// display-only nor at the depth bound.
func (t *traversal) record(parent bfsNode, edge value.Conversion, target string) {
	key := visitKey(target, edge.Value)
	if _, seen := t.visited[key]; seen {
		return
	}
	t.visited[key] = struct{}{}

	path := make([]string, len(parent.path)+1)
	copy(path, parent.path)
	path[len(parent.path)] = target

	edge.Path = path
	edge.Priority = t.eng.cfg.Priority.ResolvePriority(target, edge.Priority)
	t.results = append(t.results, edge)

	if !edge.DisplayOnly && len(parent.path) < maxEdges {
		t.queue = append(t.queue, bfsNode{val: edge.Value, path: path})
	}
}

func visitKey(target string, v value.Value) string {
	return target + "\x00" + v.Key()
}

// sortConversions applies the stable display order: priority bucket per
// the configured category order, then per-format priority offset, then
// shorter derivation paths first. Discovery order breaks remaining ties,
// so two runs over the same registry produce identical output.
func (e *Engine) sortConversions(convs []value.Conversion) {
	pc := &e.cfg.Priority
	sort.SliceStable(convs, func(i, j int) bool {
		a, b := convs[i], convs[j]
		ka, kb := pc.CategorySortKey(a.Priority), pc.CategorySortKey(b.Priority)
		if ka != kb {
			return ka < kb
		}
		oa, ob := pc.FormatOffset(a.TargetFormat), pc.FormatOffset(b.TargetFormat)
		if oa != ob {
			return oa > ob
		}
		return len(a.Path) < len(b.Path)
	})
}
