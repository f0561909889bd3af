// Package eval walks the ast.Expr tree built by package parser against the
// two-level environment described in spec.md §3-§4.5, and supplies the
// handful of "_runtime_*" coercion/lookup helpers the grammar's semantic
// actions rely on.
package eval

import (
	"fmt"
	"math"
	"strings"

	"github.com/lauckhart/klipper/ast"
	"github.com/lauckhart/klipper/diag"
)

// Eval executes expr against globals/locals, matching spec.md §4.5's
// runtime semantics exactly: NumCast never raises, division never
// raises (the ast builder already lowered "/" to the NaN-guarded IfExp
// form), and/or short-circuit, ternary evaluates test once.
func Eval(expr ast.Expr, globals *Globals, locals Locals, line string) (ast.Value, error) {
	switch e := expr.(type) {
	case *ast.Num:
		return ast.Number(e.Value), nil
	case *ast.Str:
		return ast.String(e.Value), nil
	case *ast.Bool:
		return ast.Boolean(e.Value), nil
	case *ast.GetParameter:
		return GetParameter(e.Name, globals, locals, line, e.Pos().Column)
	case *ast.GetMember:
		base, err := Eval(e.Base, globals, locals, line)
		if err != nil {
			return ast.Value{}, err
		}
		key, err := Eval(e.Key, globals, locals, line)
		if err != nil {
			return ast.Value{}, err
		}
		return GetMember(base, key.AsString(), line, e.Pos().Column)
	case *ast.Call:
		return evalCall(e, globals, locals, line)
	case *ast.UnaryOp:
		v, err := Eval(e.Operand, globals, locals, line)
		if err != nil {
			return ast.Value{}, err
		}
		switch e.Op {
		case "+":
			return ast.Number(+v.AsNumber()), nil
		case "-":
			return ast.Number(-v.AsNumber()), nil
		case "not":
			return ast.Boolean(!v.Truthy()), nil
		}
		return ast.Value{}, internalErrorf("unknown unary operator %q", e.Op)
	case *ast.BinOp:
		l, err := Eval(e.L, globals, locals, line)
		if err != nil {
			return ast.Value{}, err
		}
		r, err := Eval(e.R, globals, locals, line)
		if err != nil {
			return ast.Value{}, err
		}
		return evalBinOp(e.Op, l, r)
	case *ast.Compare:
		l, err := Eval(e.L, globals, locals, line)
		if err != nil {
			return ast.Value{}, err
		}
		r, err := Eval(e.R, globals, locals, line)
		if err != nil {
			return ast.Value{}, err
		}
		return evalCompare(e.Op, l, r)
	case *ast.BoolOp:
		l, err := Eval(e.L, globals, locals, line)
		if err != nil {
			return ast.Value{}, err
		}
		switch e.Op {
		case "and":
			if !l.Truthy() {
				return l, nil
			}
		case "or":
			if l.Truthy() {
				return l, nil
			}
		default:
			return ast.Value{}, internalErrorf("unknown bool operator %q", e.Op)
		}
		return Eval(e.R, globals, locals, line)
	case *ast.IfExp:
		t, err := Eval(e.Test, globals, locals, line)
		if err != nil {
			return ast.Value{}, err
		}
		if t.Truthy() {
			return Eval(e.Yes, globals, locals, line)
		}
		return Eval(e.No, globals, locals, line)
	case *ast.NumCast:
		v, err := Eval(e.Operand, globals, locals, line)
		if err != nil {
			return ast.Value{}, err
		}
		return NumCast(v), nil
	default:
		return ast.Value{}, internalErrorf("unhandled expression node %T", expr)
	}
}

func evalBinOp(op string, l, r ast.Value) (ast.Value, error) {
	switch op {
	case "~":
		return ast.String(l.AsString() + r.AsString()), nil
	case "+":
		return ast.Number(l.AsNumber() + r.AsNumber()), nil
	case "-":
		return ast.Number(l.AsNumber() - r.AsNumber()), nil
	case "*":
		return ast.Number(l.AsNumber() * r.AsNumber()), nil
	case "/":
		return ast.Number(l.AsNumber() / r.AsNumber()), nil
	case "%":
		return ast.Number(math.Mod(l.AsNumber(), r.AsNumber())), nil
	case "**":
		return ast.Number(math.Pow(l.AsNumber(), r.AsNumber())), nil
	default:
		return ast.Value{}, internalErrorf("unknown binary operator %q", op)
	}
}

func evalCompare(op string, l, r ast.Value) (ast.Value, error) {
	switch op {
	case "==":
		return ast.Boolean(l.Equal(r)), nil
	case "!=":
		return ast.Boolean(!l.Equal(r)), nil
	case "<":
		return ast.Boolean(l.AsNumber() < r.AsNumber()), nil
	case ">":
		return ast.Boolean(l.AsNumber() > r.AsNumber()), nil
	case "<=":
		return ast.Boolean(l.AsNumber() <= r.AsNumber()), nil
	case ">=":
		return ast.Boolean(l.AsNumber() >= r.AsNumber()), nil
	default:
		return ast.Value{}, internalErrorf("unknown comparison operator %q", op)
	}
}

func evalCall(c *ast.Call, globals *Globals, locals Locals, line string) (ast.Value, error) {
	args := make([]ast.Value, len(c.Args))
	for i, a := range c.Args {
		v, err := Eval(a, globals, locals, line)
		if err != nil {
			return ast.Value{}, err
		}
		args[i] = v
	}
	var arg ast.Value
	if len(args) > 0 {
		arg = args[0]
	}
	switch c.Func {
	case "bool":
		return ast.Boolean(arg.Truthy()), nil
	case "str":
		return ast.String(arg.AsString()), nil
	case "int":
		return ast.Number(math.Trunc(arg.AsNumber())), nil
	case "float":
		if arg.Kind == ast.KindStr {
			switch strings.ToLower(strings.TrimSpace(arg.Str)) {
			case "inf", "+inf":
				return ast.Number(math.Inf(1)), nil
			case "-inf":
				return ast.Number(math.Inf(-1)), nil
			case "nan":
				return ast.Number(math.NaN()), nil
			}
		}
		return ast.Number(arg.AsNumber()), nil
	default:
		// ast.NewCall already rejects any other name at parse time; reaching
		// here means a builder invariant was violated.
		return ast.Value{}, internalErrorf("call to undefined function %q reached evaluator", c.Func)
	}
}

func internalErrorf(format string, args ...any) error {
	return &diag.InternalError{Detail: fmt.Sprintf(format, args...)}
}
