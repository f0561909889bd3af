// Package diag turns lexer/parser failures into the caret-annotated,
// user-facing messages described in spec.md §4.6 and §7.
package diag

import (
	"fmt"
	"strings"

	"github.com/lauckhart/klipper/token"
)

const commandPrefix = "  in command: "

// Error is a user-facing domain error: malformed input, undefined
// parameter, unknown function, missing member. Never fatal to a Script --
// package script wraps it in an ErrorEntry and keeps draining.
type Error struct {
	Message string // headline only
	Line    string // the offending source line, verbatim
	Column  int    // 1-based; 0 means "no caret"
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	b.WriteByte('\n')
	b.WriteString(commandPrefix)
	b.WriteString(e.Line)
	if e.Column > 0 {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(" ", len(commandPrefix)+e.Column-1))
		b.WriteString("^ here")
	}
	return b.String()
}

// InternalError indicates a defect in the AST builder or entry compiler,
// not bad user input. Detail names the violated invariant (e.g. the
// unknown operator or node type, or the recovered panic value); it does
// not include a dump of the AST.
type InternalError struct {
	Detail string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("Internal error: %s", e.Detail)
}

// terminalName is the TERMINAL_TO_USER table from spec.md §6.3.
var terminalName = map[token.Kind]string{
	token.EOF:        "end of line",
	token.WS:         "whitespace",
	token.Identifier: "IDENTIFIER",
	token.LParen:     "(",
	token.RParen:     ")",
	token.LBrace:     "{",
	token.RBrace:     "}",
	token.LBracket:   "[",
	token.RBracket:   "]",
	token.Dot:        ".",
	token.Comma:      ",",
	token.Plus:       "+",
	token.Minus:      "-",
	token.Star:       "*",
	token.Slash:      "/",
	token.Percent:    "%",
	token.Pow:        "**",
	token.Tilde:      "~",
	token.Lt:         "<",
	token.Gt:         ">",
	token.Lte:        "<=",
	token.Gte:        ">=",
	token.EqEq:       "==",
	token.NotEq:      "!=",
	token.And:        "and",
	token.Or:         "or",
	token.Not:        "not",
	token.If:         "if",
	token.Else:       "else",
	token.String:     "STRING",
	token.Int:        "INT",
	token.Float:      "FLOAT",
}

// TerminalToUser renders a token kind the way a person reading the
// diagnostic would expect to see it. Unknown kinds render as their
// lower-cased terminal name from token.Kind.String() (e.g.
// "expr_segment_text"), per spec.md §6.3.
func TerminalToUser(k token.Kind) string {
	if name, ok := terminalName[k]; ok {
		return name
	}
	return strings.ToLower(k.String())
}

// joinExpected formats a list of candidate names as "a, b or c" / "a or b"
// / "a", matching the comma-then-" or "-before-last rule from spec.md §4.6.
func joinExpected(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
	}
}

// UnexpectedChar builds the "Unexpected "<ch>" (expected <list>)" headline
// for a byte the lexer couldn't classify.
func UnexpectedChar(ch byte, expected []token.Kind, line string, col int) *Error {
	msg := fmt.Sprintf("Unexpected %q", string(ch))
	if len(expected) > 0 {
		msg = fmt.Sprintf("%s (expected %s)", msg, joinExpected(expectedNames(expected)))
	}
	return &Error{Message: msg, Line: line, Column: col}
}

// UnexpectedToken builds the "Unexpected <tok> (expected <list>)" headline
// for a well-formed token the grammar didn't admit at this position.
func UnexpectedToken(got token.Token, expected []token.Kind, line string) *Error {
	gotName := TerminalToUser(got.Kind)
	if got.Kind != token.EOF {
		gotName = got.Value
	}
	msg := fmt.Sprintf("Unexpected %s", gotName)
	if len(expected) > 0 {
		msg = fmt.Sprintf("%s (expected %s)", msg, joinExpected(expectedNames(expected)))
	}
	col := got.Column
	return &Error{Message: msg, Line: line, Column: col}
}

func expectedNames(kinds []token.Kind) []string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = fmt.Sprintf("%q", TerminalToUser(k))
	}
	return names
}

// Plain wraps any other parser failure verbatim, using its own message
// (spec.md §4.6: "Any other parser failure: use its own message verbatim").
func Plain(message, line string, col int) *Error {
	return &Error{Message: message, Line: line, Column: col}
}
