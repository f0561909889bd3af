package parser

import (
	"github.com/lauckhart/klipper/ast"
	"github.com/lauckhart/klipper/eval"
)

// Entry is one compiled, evaluable unit corresponding to one non-empty
// input line (spec.md §3): either a CommandEntry or an ErrorEntry.
type Entry interface {
	Eval(globals *eval.Globals, locals eval.Locals) (string, *eval.Params, error)
}

// Pair is one (key_expr, value_expr) binding of a traditional or
// extended command.
type Pair struct {
	Key, Value ast.Expr
}

// CommandEntry holds an upper-cased command name and its ordered
// parameter bindings; evaluating it yields (command_name, mapping) with
// keys in source order (spec.md §3, §8 invariant 2).
type CommandEntry struct {
	Name string
	Line string // the source line, for diagnostics raised during eval
	Pairs []Pair
}

func (c *CommandEntry) Eval(globals *eval.Globals, locals eval.Locals) (string, *eval.Params, error) {
	params := eval.NewParams(len(c.Pairs))
	for _, p := range c.Pairs {
		k, err := eval.Eval(p.Key, globals, locals, c.Line)
		if err != nil {
			return "", nil, err
		}
		v, err := eval.Eval(p.Value, globals, locals, c.Line)
		if err != nil {
			return "", nil, err
		}
		params.Set(k.AsString(), v)
	}
	return c.Name, params, nil
}

// ErrorEntry is a precomputed diagnostic, raised verbatim whenever it
// reaches the head of the queue (spec.md §3, §7): a queue with one bad
// line still surfaces the good lines before it, in order.
type ErrorEntry struct {
	Err error
}

func (e *ErrorEntry) Eval(*eval.Globals, eval.Locals) (string, *eval.Params, error) {
	return "", nil, e.Err
}
