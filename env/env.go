// Package env adapts the external collaborators spec.md §1 puts out of
// scope -- configuration storage and printer-object status reporting --
// into ast.DictValue implementations so expressions can read
// "config.extruder.max_temp" or "status.toolhead.position" without
// package eval knowing anything about where the data actually lives.
// Grounded on original_source/klippy/gcode_environment.py's
// ConfigDict/ConfigSectionDict/StatusDict/StatusObjDict, adapted from a
// live printer-object registry to a caller-supplied data source since the
// registry itself is out of scope.
package env

import "github.com/lauckhart/klipper/ast"

// ConfigDict exposes a parsed configuration file's sections to G-Code as
// "config.<section>.<key>". The backing data is supplied wholesale by the
// embedding host (config-file loading is out of scope, spec.md §1); this
// type only adapts it to ast.DictValue.
type ConfigDict struct {
	sections map[string]*ConfigSectionDict
}

// NewConfigDict builds a ConfigDict from a section->key->value snapshot.
func NewConfigDict(data map[string]map[string]string) *ConfigDict {
	c := &ConfigDict{sections: make(map[string]*ConfigSectionDict, len(data))}
	for name, kv := range data {
		c.sections[name] = &ConfigSectionDict{name: name, vals: kv}
	}
	return c
}

func (c *ConfigDict) Get(key string) (ast.Value, bool) {
	s, ok := c.sections[key]
	if !ok {
		return ast.Value{}, false
	}
	return ast.Dict(s), true
}

func (c *ConfigDict) Keys() []string {
	out := make([]string, 0, len(c.sections))
	for k := range c.sections {
		out = append(out, k)
	}
	return out
}

// ConfigSectionDict exposes one configuration section's options as
// string-valued entries, matching ConfigSectionDict.__getitem__'s
// fc.get(section, key) in the original.
type ConfigSectionDict struct {
	name string
	vals map[string]string
}

func (s *ConfigSectionDict) Get(key string) (ast.Value, bool) {
	v, ok := s.vals[key]
	if !ok {
		return ast.Value{}, false
	}
	return ast.String(v), true
}

func (s *ConfigSectionDict) Keys() []string {
	out := make([]string, 0, len(s.vals))
	for k := range s.vals {
		out = append(out, k)
	}
	return out
}

// StatusSource is the live collaborator StatusDict consults on every
// access -- the stand-in for the printer object registry's
// lookup_object(name).get_status(eventtime), which is itself out of scope.
// A host wires its own printer-object registry in by implementing this.
type StatusSource interface {
	// ObjectStatus returns the current status fields for a named printer
	// object, or ok=false if no such object exists or it reports no status.
	ObjectStatus(name string) (map[string]ast.Value, bool)
}

// StatusDict exposes "status.<object>.<field>", consulting source afresh
// on every field access rather than caching values -- status is live
// telemetry, not a snapshot (mirrors StatusObjDict._vals re-fetching every
// call in the original).
type StatusDict struct {
	source  StatusSource
	objects map[string]*StatusObjDict
}

// NewStatusDict builds a StatusDict backed by source. A nil source is
// valid and behaves as if no printer objects exist, matching
// GlobalDict(printer=None) in the original.
func NewStatusDict(source StatusSource) *StatusDict {
	return &StatusDict{source: source, objects: make(map[string]*StatusObjDict)}
}

func (d *StatusDict) Get(key string) (ast.Value, bool) {
	if d.source == nil {
		return ast.Value{}, false
	}
	if _, ok := d.source.ObjectStatus(key); !ok {
		return ast.Value{}, false
	}
	obj, ok := d.objects[key]
	if !ok {
		obj = &StatusObjDict{source: d.source, name: key}
		d.objects[key] = obj
	}
	return ast.Dict(obj), true
}

// Keys is unsupported -- the live registry this wraps in the original has
// no fixed key set; "did you mean" hints on a fully-missing status
// lookup simply have nothing to suggest from.
func (d *StatusDict) Keys() []string { return nil }

// StatusObjDict exposes one printer object's status fields.
type StatusObjDict struct {
	source StatusSource
	name   string
}

func (o *StatusObjDict) Get(key string) (ast.Value, bool) {
	vals, ok := o.source.ObjectStatus(o.name)
	if !ok {
		return ast.Value{}, false
	}
	v, ok := vals[key]
	return v, ok
}

func (o *StatusObjDict) Keys() []string {
	vals, ok := o.source.ObjectStatus(o.name)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(vals))
	for k := range vals {
		out = append(out, k)
	}
	return out
}
