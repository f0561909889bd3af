// Package bridge re-architects spec.md §6's Executor-Queue C ABI as a
// pure in-process Go value-type contract (spec.md §9 Design Notes): no
// cgo, no pointer-identified handles crossing a real FFI boundary --
// just integer Handles an embedding host can hold onto, and a Result
// struct that serializes deterministically over github.com/fxamacker/cbor/v2
// whenever a host does need to ship it across a process boundary (a
// socket, a pipe to a supervisor), grounded on the teacher's
// core/planfmt/canonical.go use of cbor.CanonicalEncOptions for
// byte-stable encoding.
package bridge

import (
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/lauckhart/klipper/ast"
	"github.com/lauckhart/klipper/script"
)

// Handle identifies one Queue owned by an Executor. The zero Handle is
// never issued by NewQueue, so callers can use it as a "no handle" guard.
type Handle uint64

// ResultType tags which field of Result is populated, mirroring
// GCodePyResult's "type ∈ {EMPTY, ERROR, COMMAND}" from spec.md §6.
type ResultType uint8

const (
	ResultEmpty ResultType = iota
	ResultError
	ResultCommand
)

// KV is one flattened key/value pair of a COMMAND result's parameters --
// the Go analogue of the "flat array of alternating key/value C-strings"
// the original ABI passes across the FFI boundary.
type KV struct {
	Key   string `cbor:"key"`
	Value string `cbor:"value"`
}

// Result is the bridged ABI's GCodePyResult, carrying cbor struct tags so
// it can be shipped wholesale to a host that consumes this library from
// outside the Go process.
type Result struct {
	Type       ResultType `cbor:"type"`
	Error      string     `cbor:"error,omitempty"`
	Command    string     `cbor:"command,omitempty"`
	Parameters []KV       `cbor:"parameters,omitempty"`
	Remaining  int        `cbor:"remaining"`
}

// MarshalCBOR encodes r deterministically, suitable for a host that
// diffs or hashes results across runs.
func (r Result) MarshalCBOR() ([]byte, error) {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("bridge: cbor encoder: %w", err)
	}
	type resultAlias Result
	return mode.Marshal(resultAlias(r))
}

// ValueKind tags GCodeValue's active field, mirroring GCodeValue's
// "type ∈ {BOOL, FLOAT, STR, DICT}" from spec.md §6.
type ValueKind uint8

const (
	ValueBool ValueKind = iota
	ValueFloat
	ValueStr
	ValueDict
)

// GCodeValue is what gcode_python_lookup fills on a successful
// Environment lookup -- the Go value crossing back from Executor to host.
type GCodeValue struct {
	Type  ValueKind         `cbor:"type"`
	Bool  bool              `cbor:"bool,omitempty"`
	Float float64           `cbor:"float,omitempty"`
	Str   string            `cbor:"str,omitempty"`
	Dict  map[string]string `cbor:"dict,omitempty"`
}

func valueToGCodeValue(v ast.Value) GCodeValue {
	switch v.Kind {
	case ast.KindBool:
		return GCodeValue{Type: ValueBool, Bool: v.Bool}
	case ast.KindNum:
		return GCodeValue{Type: ValueFloat, Float: v.Num}
	case ast.KindDict:
		m := make(map[string]string, len(v.Dict.Keys()))
		for _, k := range v.Dict.Keys() {
			if fv, ok := v.Dict.Get(k); ok {
				m[k] = fv.AsString()
			}
		}
		return GCodeValue{Type: ValueDict, Dict: m}
	default:
		return GCodeValue{Type: ValueStr, Str: v.AsString()}
	}
}

// Callbacks are the host boundary an Executor invokes: gcode_python_fatal,
// gcode_python_m112, gcode_python_lookup, gcode_python_serialize in
// spec.md §6, renamed to idiomatic Go function fields. Any nil field is
// simply never called.
type Callbacks struct {
	Fatal     func(handle Handle, message string)
	M112      func(handle Handle)
	Lookup    func(handle Handle, dictName, key string) (GCodeValue, bool)
	Serialize func(handle Handle, dictName string) string
}

// Executor owns zero or more Queues, each wrapping an independent
// *script.Script, plus the callbacks used to notify the embedding host
// (spec.md §6, §9: "an opaque handle tying the host-language object to
// the external executor must be held alive for exactly as long as the
// executor might call back").
type Executor struct {
	mu        sync.Mutex
	callbacks Callbacks
	queues    map[Handle]*script.Script
	next      Handle
}

// NewExecutor builds an Executor with the given host callbacks.
func NewExecutor(callbacks Callbacks) *Executor {
	return &Executor{callbacks: callbacks, queues: make(map[Handle]*script.Script)}
}

// NewQueue creates a Queue (a Script instance) and returns its handle --
// gcode_queue_new.
func (e *Executor) NewQueue(seed map[string]ast.Value) Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	h := e.next
	e.queues[h] = script.New(seed)
	return h
}

// DeleteQueue releases a Queue -- gcode_queue_delete. The handle must not
// be used again afterward.
func (e *Executor) DeleteQueue(h Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.queues, h)
}

func (e *Executor) queue(h Handle) (*script.Script, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	q, ok := e.queues[h]
	if !ok {
		return nil, fmt.Errorf("bridge: unknown queue handle %d", h)
	}
	return q, nil
}

// Parse feeds bytes through the named Queue's streaming parser --
// gcode_queue_parse(q, bytes, len). It latches the M112 and fatal flags
// it observes by invoking the Executor's callbacks exactly once each time
// they become newly set, mirroring the original's edge-triggered
// gcode_python_m112/gcode_python_fatal calls.
func (e *Executor) Parse(h Handle, data []byte) error {
	q, err := e.queue(h)
	if err != nil {
		return err
	}
	q.ParseSegment(data)
	e.notify(h, q)
	return nil
}

// ParseFinish drains the Queue's buffered partial line --
// gcode_queue_parse(q) with no data, per spec.md §6.
func (e *Executor) ParseFinish(h Handle) error {
	q, err := e.queue(h)
	if err != nil {
		return err
	}
	q.ParseFinish()
	e.notify(h, q)
	return nil
}

func (e *Executor) notify(h Handle, q *script.Script) {
	if q.CheckM112() && e.callbacks.M112 != nil {
		e.callbacks.M112(h)
	}
	if err := q.CheckFatal(); err != nil && e.callbacks.Fatal != nil {
		e.callbacks.Fatal(h, err.Error())
	}
}

// ExecNext pops and evaluates the head entry -- gcode_queue_exec_next.
// The returned Result.Remaining is the Queue's length after the pop,
// matching "returning remaining size" in spec.md §6.
func (e *Executor) ExecNext(h Handle, params map[string]ast.Value) (Result, error) {
	q, err := e.queue(h)
	if err != nil {
		return Result{}, err
	}
	if !q.HasNext() {
		return Result{Type: ResultEmpty, Remaining: 0}, nil
	}
	cmd, p, evalErr := q.EvalNext(params)
	remaining := q.Len()
	if evalErr != nil {
		return Result{Type: ResultError, Error: evalErr.Error(), Remaining: remaining}, nil
	}
	kvs := make([]KV, 0, p.Len())
	for _, k := range p.Keys() {
		v, _ := p.Get(k)
		kvs = append(kvs, KV{Key: k, Value: v.AsString()})
	}
	return Result{Type: ResultCommand, Command: cmd, Parameters: kvs, Remaining: remaining}, nil
}

// Lookup implements the gcode_python_lookup callback shape for a
// Dict-valued global: look up key in the named pseudo-root (e.g.
// "status", "config"). A host-supplied Lookup callback takes priority;
// absent one, the Queue's own Globals (already holding "status" and
// "config") answer the lookup directly.
func (e *Executor) Lookup(h Handle, dictName, key string) (GCodeValue, bool) {
	if e.callbacks.Lookup != nil {
		return e.callbacks.Lookup(h, dictName, key)
	}
	q, err := e.queue(h)
	if err != nil {
		return GCodeValue{}, false
	}
	root, ok := q.Global(dictName)
	if !ok || root.Kind != ast.KindDict {
		return GCodeValue{}, false
	}
	v, ok := root.Dict.Get(key)
	if !ok {
		return GCodeValue{}, false
	}
	return valueToGCodeValue(v), true
}

// Serialize implements the gcode_python_serialize callback shape by
// delegating to the host's Serialize callback to render a dict-valued
// global for diagnostics. Without that callback it returns "".
func (e *Executor) Serialize(h Handle, dictName string) string {
	if e.callbacks.Serialize == nil {
		return ""
	}
	return e.callbacks.Serialize(h, dictName)
}
