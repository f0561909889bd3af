// Package ast defines the expression tree produced by the parser's
// semantic actions and walked by package eval.
package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Position records where a node originated, for diagnostics and for the
// internal-error dump performed by package parser when a builder
// invariant is violated.
type Position struct {
	Line   int
	Column int
}

// Expr is the closed sum type of expression nodes. The unexported marker
// method keeps the set closed to this package, mirroring the teacher's
// Node interface in core/ast but scoped to expressions only -- this
// frontend has no statement-level CST to preserve.
type Expr interface {
	exprNode()
	String() string
	Pos() Position
}

type base struct {
	Position
}

func (base) exprNode() {}

// Num is a numeric literal.
type Num struct {
	base
	Value float64
}

func NewNum(v float64, pos Position) *Num { return &Num{base{pos}, v} }

func (n *Num) String() string {
	if n.Value == float64(int64(n.Value)) {
		return strconv.FormatInt(int64(n.Value), 10)
	}
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// Str is a string literal (already unescaped).
type Str struct {
	base
	Value string
}

func NewStr(v string, pos Position) *Str { return &Str{base{pos}, v} }
func (s *Str) String() string            { return strconv.Quote(s.Value) }

// Bool is a boolean literal.
type Bool struct {
	base
	Value bool
}

func NewBool(v bool, pos Position) *Bool { return &Bool{base{pos}, v} }
func (b *Bool) String() string           { return strconv.FormatBool(b.Value) }

// GetParameter is a dynamic name lookup against the two-level environment.
type GetParameter struct {
	base
	Name string
}

func NewGetParameter(name string, pos Position) *GetParameter {
	return &GetParameter{base{pos}, name}
}
func (g *GetParameter) String() string { return g.Name }

// GetMember is dot or bracket member access; both lower identically.
type GetMember struct {
	base
	Base Expr
	Key  Expr
}

func NewGetMember(b, key Expr, pos Position) *GetMember {
	return &GetMember{base{pos}, b, key}
}
func (g *GetMember) String() string { return fmt.Sprintf("%s.%s", g.Base, g.Key) }

// CallableFuncs is the fixed set of callable names; Call construction
// outside this set is a parse-time error, not a runtime one.
var CallableFuncs = map[string]bool{"bool": true, "str": true, "int": true, "float": true}

// Call invokes one of CallableFuncs. NewCall rejects any other name with a
// "Function '<n>' is undefined" error, which package parser reports to the
// user as a parse failure.
type Call struct {
	base
	Func string
	Args []Expr
}

func NewCall(fn string, args []Expr, pos Position) (*Call, error) {
	if !CallableFuncs[fn] {
		return nil, fmt.Errorf("Function '%s' is undefined", fn)
	}
	return &Call{base{pos}, fn, args}, nil
}

func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Func, strings.Join(parts, ", "))
}

// UnaryOp is +x, -x, or "not x".
type UnaryOp struct {
	base
	Op      string // "+", "-", "not"
	Operand Expr
}

func NewUnaryOp(op string, operand Expr, pos Position) *UnaryOp {
	return &UnaryOp{base{pos}, op, operand}
}
func (u *UnaryOp) String() string { return fmt.Sprintf("(%s%s)", u.Op, u.Operand) }

// BinOp is an arithmetic or concatenation binary operator.
// Op "~" is string concatenation; all others are numeric.
type BinOp struct {
	base
	Op   string // "+", "-", "*", "/", "%", "**", "~"
	L, R Expr
}

func NewBinOp(op string, l, r Expr, pos Position) *BinOp {
	return &BinOp{base{pos}, op, l, r}
}
func (b *BinOp) String() string { return fmt.Sprintf("(%s %s %s)", b.L, b.Op, b.R) }

// Compare is a relational comparison.
type Compare struct {
	base
	Op   string // "<", ">", "<=", ">=", "==", "!="
	L, R Expr
}

func NewCompare(op string, l, r Expr, pos Position) *Compare {
	return &Compare{base{pos}, op, l, r}
}
func (c *Compare) String() string { return fmt.Sprintf("(%s %s %s)", c.L, c.Op, c.R) }

// BoolOp is a short-circuiting "and"/"or".
type BoolOp struct {
	base
	Op   string // "and", "or"
	L, R Expr
}

func NewBoolOp(op string, l, r Expr, pos Position) *BoolOp {
	return &BoolOp{base{pos}, op, l, r}
}
func (b *BoolOp) String() string { return fmt.Sprintf("(%s %s %s)", b.L, b.Op, b.R) }

// IfExp is the ternary "yes if test else no", reordered to test-first at
// build time even though the source spells it result-first.
type IfExp struct {
	base
	Test, Yes, No Expr
}

func NewIfExp(test, yes, no Expr, pos Position) *IfExp {
	return &IfExp{base{pos}, test, yes, no}
}
func (i *IfExp) String() string { return fmt.Sprintf("(%s if %s else %s)", i.Yes, i.Test, i.No) }

// NumCast wraps an operand of an arithmetic operator so that string-typed
// runtime values coerce to number instead of raising. See eval.NumCast.
type NumCast struct {
	base
	Operand Expr
}

func NewNumCast(operand Expr) *NumCast {
	return &NumCast{base{operand.Pos()}, operand}
}
func (n *NumCast) String() string { return fmt.Sprintf("numcast(%s)", n.Operand) }

func (b base) Pos() Position { return b.Position }

// Divide lowers "l / r" into the NaN-on-zero form required by spec: no
// division-by-zero exception is ever raised.
func Divide(l, r Expr, pos Position) Expr {
	return NewIfExp(
		NewCompare("==", NewNumCast(r), NewNum(0, pos), pos),
		NewNaN(pos),
		NewBinOp("/", NewNumCast(l), NewNumCast(r), pos),
		pos,
	)
}

// Concat lowers "l ~ r" to a BinOp tagged "~" (string concatenation) -- no
// numeric cast, since concatenation coerces through string, not number.
func Concat(l, r Expr, pos Position) Expr {
	return NewBinOp("~", l, r, pos)
}

// NewNaN builds the Num(nan) literal used by Divide.
func NewNaN(pos Position) *Num {
	return &Num{base{pos}, nan()}
}

func nan() float64 {
	var zero float64
	return zero / zero
}
