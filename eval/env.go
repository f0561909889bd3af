package eval

import "github.com/lauckhart/klipper/ast"

// Globals is the outer, shared scope for one Script: the "config" and
// "status" pseudo-roots plus whatever a caller has stashed via
// ExposeConfig/ExposeInputs (spec.md §3, §4.4). It is treated as
// read-only during the evaluation of any single entry (spec.md §5).
type Globals struct {
	vals map[string]ast.Value
}

// NewGlobals builds a Globals seeded with the given name->value pairs
// (e.g. {"foo": "bar"} in the spec.md §8 scenarios).
func NewGlobals(seed map[string]ast.Value) *Globals {
	g := &Globals{vals: make(map[string]ast.Value, len(seed)+2)}
	for k, v := range seed {
		g.vals[k] = v
	}
	return g
}

func (g *Globals) Set(name string, v ast.Value) { g.vals[name] = v }
func (g *Globals) Remove(name string)            { delete(g.vals, name) }

// Get exposes a pseudo-root by name without going through the
// local-then-global lookup chain GetParameter uses -- for callers (e.g.
// package bridge) that need to read "status" or "config" directly.
func (g *Globals) Get(name string) (ast.Value, bool) {
	return g.get(name)
}

func (g *Globals) get(name string) (ast.Value, bool) {
	v, ok := g.vals[name]
	return v, ok
}

func (g *Globals) names() []string { return ast.SortedKeys(g.vals) }

// Locals is the inner, per-invocation scope: the params argument passed
// to eval_next.
type Locals map[string]ast.Value

func (l Locals) get(name string) (ast.Value, bool) {
	v, ok := l[name]
	return v, ok
}

func (l Locals) names() []string {
	m := map[string]ast.Value(l)
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
