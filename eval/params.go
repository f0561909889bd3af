package eval

import "github.com/lauckhart/klipper/ast"

// Params is an insertion-ordered string->Value map: the realization of
// spec.md's CommandEntry result "mapping key→value" that preserves
// source order of keys (spec.md §8 invariant 2). Re-setting an existing
// key updates its value in place without moving its position, matching
// ordinary dict semantics.
type Params struct {
	keys []string
	vals map[string]ast.Value
}

// NewParams builds an empty ordered map with room for n entries.
func NewParams(n int) *Params {
	return &Params{vals: make(map[string]ast.Value, n)}
}

// Set records key=value, appending key to the order on first sight.
func (p *Params) Set(key string, v ast.Value) {
	if _, ok := p.vals[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.vals[key] = v
}

// Get implements ast.DictValue.
func (p *Params) Get(key string) (ast.Value, bool) {
	v, ok := p.vals[key]
	return v, ok
}

// Keys implements ast.DictValue, returning keys in insertion order.
func (p *Params) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

func (p *Params) Len() int { return len(p.keys) }

// AsStrings renders every value via Value.AsString, the shape dump-gcode
// and the end-to-end scenarios in spec.md §8 print.
func (p *Params) AsStrings() map[string]string {
	out := make(map[string]string, len(p.keys))
	for _, k := range p.keys {
		out[k] = p.vals[k].AsString()
	}
	return out
}
