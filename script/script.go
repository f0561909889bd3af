// Package script implements the streaming Script/Queue abstraction from
// spec.md §4.4/§6: partial-line buffering over arbitrary byte chunks, a
// FIFO of compiled entries, and the latched has_m112/fatal flags a host
// polls out of band. Grounded on original_source/klippy/gcode_script.py's
// Script class, adapted from the CPython queue/exception idiom to
// explicit Go return values.
package script

import (
	"fmt"
	"strings"

	"github.com/lauckhart/klipper/ast"
	"github.com/lauckhart/klipper/env"
	"github.com/lauckhart/klipper/eval"
	"github.com/lauckhart/klipper/parser"
)

// FatalError is the latched fatal condition described in spec.md §7: an
// out-of-memory from the bridged allocator, or an explicit fatal callback
// from the embedding host. Unlike a domain error it is not tied to any
// one entry -- it is raised once, at the next CheckFatal, then cleared.
type FatalError struct {
	Message string
}

func (e *FatalError) Error() string { return e.Message }

// Script owns one independent input context's FIFO of entries, partial
// line buffer, and name environment. Multiple Scripts share no mutable
// state (spec.md §5): each Queue in the bridged sense simply wraps one.
type Script struct {
	globals *eval.Globals
	fifo    []parser.Entry
	partial string

	hasM112     bool
	fatal       error
	inputKeys   []string // keys most recently installed by ExposeInputs, for RemoveInputs
}

// New builds a Script with the given seed globals (e.g. {"foo": "bar"} in
// the spec.md §8 end-to-end scenarios), plus the always-present "config"
// and "status" pseudo-roots (empty until ExposeConfig/a StatusSource is
// wired in), mirroring GlobalDict's unconditional status_dict/config_dict
// in the original.
func New(seed map[string]ast.Value) *Script {
	g := eval.NewGlobals(seed)
	g.Set("config", ast.Dict(env.NewConfigDict(nil)))
	g.Set("status", ast.Dict(env.NewStatusDict(nil)))
	return &Script{globals: g}
}

// ExposeConfig installs a configuration snapshot under the "config"
// pseudo-root.
func (s *Script) ExposeConfig(data map[string]map[string]string) {
	s.globals.Set("config", ast.Dict(env.NewConfigDict(data)))
}

// ExposeStatus installs a live status source under the "status"
// pseudo-root.
func (s *Script) ExposeStatus(source env.StatusSource) {
	s.globals.Set("status", ast.Dict(env.NewStatusDict(source)))
}

// ExposeInputs installs additional named globals -- host-supplied values
// outside the config/status pseudo-roots -- and remembers their names so
// RemoveInputs can retract exactly these and nothing else.
func (s *Script) ExposeInputs(inputs map[string]ast.Value) {
	s.inputKeys = s.inputKeys[:0]
	for k, v := range inputs {
		s.globals.Set(k, v)
		s.inputKeys = append(s.inputKeys, k)
	}
}

// RemoveInputs retracts whatever ExposeInputs most recently installed.
func (s *Script) RemoveInputs() {
	for _, k := range s.inputKeys {
		s.globals.Remove(k)
	}
	s.inputKeys = nil
}

// ParseSegment feeds a chunk of bytes through the streaming line splitter
// (spec.md §4.4): it is always safe to call with an arbitrary chunk
// boundary -- splitting "G1 X1\n" into "G1 " + "X1\n" across two calls
// produces the same FIFO as one call with the whole thing (spec.md §8
// invariant 1).
func (s *Script) ParseSegment(data []byte) {
	text := s.partial + string(data)
	s.partial = ""
	lines := strings.Split(text, "\n")
	last := lines[len(lines)-1]
	lines = lines[:len(lines)-1]
	if last != "" {
		s.partial = last
	}
	for _, line := range lines {
		s.parseLine(line)
	}
}

// ParseFinish drains a buffered partial line, if any, by treating it as a
// final, newline-terminated line (spec.md §4.4).
func (s *Script) ParseFinish() {
	if s.partial == "" {
		return
	}
	s.ParseSegment([]byte("\n"))
}

func (s *Script) parseLine(line string) {
	entry, err := parser.Parse(line)
	if err != nil {
		s.fifo = append(s.fifo, &parser.ErrorEntry{Err: err})
		return
	}
	if entry == nil {
		return
	}
	if ce, ok := entry.(*parser.CommandEntry); ok && ce.Name == "M112" {
		s.hasM112 = true
	}
	s.fifo = append(s.fifo, entry)
}

// Len reports the number of pending entries. HasNext follows its
// truthiness, matching spec.md §4.4's "__len__ ... truthiness follows
// length."
func (s *Script) Len() int      { return len(s.fifo) }
func (s *Script) HasNext() bool { return len(s.fifo) > 0 }

// Global reads one pseudo-root (e.g. "status", "config") straight out of
// this Script's Globals, for a host that wants to serve a bridge lookup
// without re-deriving the same data itself.
func (s *Script) Global(name string) (ast.Value, bool) {
	return s.globals.Get(name)
}

// EvalNext pops and evaluates the head entry against params, the
// per-invocation local scope. An empty FIFO returns ("", nil, nil) --
// the Go shape of spec.md's "empty tuple ()". A popped ErrorEntry raises
// its precomputed domain error; the FIFO is still advanced past it, so a
// queue with one bad line still surfaces the good entries that followed
// it (spec.md §7).
func (s *Script) EvalNext(params map[string]ast.Value) (string, *eval.Params, error) {
	if len(s.fifo) == 0 {
		return "", nil, nil
	}
	entry := s.fifo[0]
	s.fifo = s.fifo[1:]
	return entry.Eval(s.globals, eval.Locals(params))
}

// CheckM112 reports and clears the latched emergency-stop flag: a raw
// M112 line observed during parsing sets it, and the embedding host is
// expected to poll it to abort pending evaluation (spec.md §5).
func (s *Script) CheckM112() bool {
	v := s.hasM112
	s.hasM112 = false
	return v
}

// Fatal latches a fatal condition, overwriting the GCodePyResult shape
// of spec.md §6's "Result variant ... error" -- this is the Go entry
// point a bridged executor's fatal callback would call.
func (s *Script) Fatal(message string) {
	s.fatal = &FatalError{Message: message}
}

// CheckFatal reports and clears the latched fatal error, if any
// (spec.md §7: "latched on the Executor; surfaced at the next
// check_fatal boundary; clears on read").
func (s *Script) CheckFatal() error {
	err := s.fatal
	s.fatal = nil
	return err
}

// String renders enough of the Script's state for debugging/logging --
// not part of the spec's external interface, but useful wherever the
// teacher's repos log a terse component summary.
func (s *Script) String() string {
	return fmt.Sprintf("Script{pending=%d, partial=%q, m112=%v}", len(s.fifo), s.partial, s.hasM112)
}
