package ast

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind tags a Value's active field.
type Kind int

const (
	KindNum Kind = iota
	KindStr
	KindBool
	KindDict
)

// DictValue is implemented by anything member-accessible from an
// expression: plain parameter maps (package eval), and the external
// config/status collaborators (package env).
type DictValue interface {
	Get(key string) (Value, bool)
	Keys() []string
}

// Value is the tagged duck-typed scalar that G-Code expressions evaluate
// to at runtime -- the Go realization of spec.md's Design Notes §9
// "Value = Num(f64) | Str(text) | Bool(bit) | Dict(handle)".
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Bool bool
	Dict DictValue
}

func Number(v float64) Value { return Value{Kind: KindNum, Num: v} }
func String(v string) Value { return Value{Kind: KindStr, Str: v} }
func Boolean(v bool) Value  { return Value{Kind: KindBool, Bool: v} }
func Dict(v DictValue) Value { return Value{Kind: KindDict, Dict: v} }

// IsNumeric reports whether the value is already a number, without
// attempting any coercion.
func (v Value) IsNumeric() bool { return v.Kind == KindNum }

// AsString renders the value the way a G-Code parameter is serialized
// back to the caller: numbers print without a trailing ".0" when
// integral, "nan" for NaN, bools as "True"/"False" is NOT used here --
// G-Code has no boolean literal on the wire, so Bool renders as "1"/"0"
// the way Klipper's status dict does for truthy flags.
func (v Value) AsString() string {
	switch v.Kind {
	case KindStr:
		return v.Str
	case KindNum:
		if math.IsNaN(v.Num) {
			return "nan"
		}
		if v.Num == math.Trunc(v.Num) && !math.IsInf(v.Num, 0) {
			return strconv.FormatInt(int64(v.Num), 10)
		}
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindBool:
		if v.Bool {
			return "1"
		}
		return "0"
	case KindDict:
		return fmt.Sprintf("<dict %v>", v.Dict.Keys())
	default:
		return ""
	}
}

// AsNumber is the total, non-raising numeric coercion described in
// spec.md §4.5 (_runtime_num_cast): numbers pass through, strings parse
// or become NaN, bools become 1/0, dicts become NaN.
func (v Value) AsNumber() float64 {
	switch v.Kind {
	case KindNum:
		return v.Num
	case KindBool:
		if v.Bool {
			return 1
		}
		return 0
	case KindStr:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// Truthy follows Python-ish truthiness for BoolOp/IfExp short-circuiting:
// zero number, empty string, false bool, and empty dict are falsy; NaN is
// truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNum:
		return v.Num != 0
	case KindStr:
		return v.Str != ""
	case KindBool:
		return v.Bool
	case KindDict:
		return len(v.Dict.Keys()) > 0
	default:
		return false
	}
}

// Equal implements "==" / "!=" with the same cross-kind leniency as the
// comparison operators: numeric kinds compare numerically, everything
// else falls back to string comparison.
func (v Value) Equal(o Value) bool {
	if v.Kind == KindNum && o.Kind == KindNum {
		return v.Num == o.Num
	}
	if v.Kind == KindBool && o.Kind == KindBool {
		return v.Bool == o.Bool
	}
	return v.AsString() == o.AsString()
}

// SortedKeys returns a map's keys in sorted order; eval.Globals uses it to
// list its names for the undefined-parameter diagnostic.
func SortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
