// Package parser drives a hand-written recursive-descent parser over
// package lexer's cursor and package ast's node constructors, implementing
// the contextual grammar described in spec.md §4.2 -- a generated LALR(1)
// table is explicitly not required (spec.md §9 Design Notes) as long as
// the contextual lexing and brace-depth whitespace suppression hold, which
// they do here by construction: the Lexer decides what a run of bytes
// means only when the parser asks for it.
package parser

import (
	"fmt"
	"strings"

	"github.com/lauckhart/klipper/ast"
	"github.com/lauckhart/klipper/diag"
	"github.com/lauckhart/klipper/lexer"
	"github.com/lauckhart/klipper/token"
)

// Parse compiles one source line into an Entry. A blank line, one
// consisting only of a line number, or one consisting only of a line
// number and a comment all satisfy the empty_line production and yield
// (nil, nil) -- the caller (package script) discards these rather than
// queuing them, per spec.md §4.4.
//
// Parse never panics outward: a builder invariant violation anywhere in
// this package or ast is recovered here and reported as a
// *diag.InternalError, matching spec.md §4.3's "failures during
// compilation ... are reported as InternalError."
func Parse(line string) (entry Entry, err error) {
	defer func() {
		if r := recover(); r != nil {
			entry, err = nil, &diag.InternalError{Detail: fmt.Sprintf("%v", r)}
		}
	}()

	lex := lexer.New(line)
	lex.ReadLineNumber()
	lex.SkipWS()
	if lex.AtEnd() || lex.AtComment() {
		return nil, nil
	}

	nameTok, shape, lerr := lex.ReadCommandName()
	if lerr != nil {
		return nil, lexError(lerr, line)
	}
	name := strings.ToUpper(nameTok.Value)

	var pairs []Pair
	switch shape {
	case lexer.ShapeRaw:
		pairs, err = parseRawCommand(lex, line, nameTok)
	case lexer.ShapeTrad:
		pairs, err = parseTradParams(lex, line)
	case lexer.ShapeExt:
		pairs, err = parseExtParams(lex, line)
	}
	if err != nil {
		return nil, err
	}

	if !(lex.AtEnd() || lex.AtComment()) {
		ch, _ := lex.Peek()
		return nil, diag.UnexpectedChar(ch, nil, line, lex.Column())
	}

	return &CommandEntry{Name: name, Line: line, Pairs: pairs}, nil
}

// parseRawCommand reads the optional trailing argument text of a Raw
// command and binds it under the synthetic key "*" -- omitted entirely
// when there's no trailing text, matching the "M112 -> empty params"
// boundary case in spec.md §8.
func parseRawCommand(lex *lexer.Lexer, line string, nameTok token.Token) ([]Pair, error) {
	lex.SkipWS()
	value, err := parseRawSegments(lex, line)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}
	star := ast.NewStr("*", ast.Position{Line: 1, Column: nameTok.Column})
	return []Pair{{Key: star, Value: value}}, nil
}

// parseTradParams reads zero or more whitespace-separated
// "<key><value>" pairs: key is a single letter or a "{...}" embed, value
// is an immediately-following param_expr with no separator (spec.md
// §4.2's Traditional shape).
func parseTradParams(lex *lexer.Lexer, line string) ([]Pair, error) {
	var pairs []Pair
	for {
		lex.SkipWS()
		if lex.AtEnd() || lex.AtComment() {
			break
		}
		var key ast.Expr
		if ch, _ := lex.Peek(); ch == '{' {
			e, err := parseEmbed(lex, line)
			if err != nil {
				return nil, err
			}
			key = e
		} else {
			tok, err := lex.ReadTradParamKey()
			if err != nil {
				return nil, lexError(err, line)
			}
			key = ast.NewStr(strings.ToUpper(tok.Value), ast.Position{Line: 1, Column: tok.Column})
		}
		value, err := parseExprSegments(lex, line, true)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, missingExprError(lex, line)
		}
		pairs = append(pairs, Pair{Key: key, Value: value})
	}
	return pairs, nil
}

// parseExtParams reads zero or more whitespace-separated "key = value"
// pairs, where both sides are full param_exprs (spec.md §4.2's Extended
// shape). Whitespace around "=" is permitted since SkipWS is called on
// both sides of it.
func parseExtParams(lex *lexer.Lexer, line string) ([]Pair, error) {
	var pairs []Pair
	for {
		lex.SkipWS()
		if lex.AtEnd() || lex.AtComment() {
			break
		}
		key, err := parseExprSegments(lex, line, true)
		if err != nil {
			return nil, err
		}
		if key == nil {
			return nil, missingExprError(lex, line)
		}
		lex.SkipWS()
		if !lex.ReadEquals() {
			return nil, missingEqualsError(lex, line)
		}
		lex.SkipWS()
		value, err := parseExprSegments(lex, line, true)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, missingExprError(lex, line)
		}
		pairs = append(pairs, Pair{Key: key, Value: value})
	}
	return pairs, nil
}

// missingExprError reports that a param_expr was required here but the
// cursor sits on a boundary character (or end of line) instead.
func missingExprError(lex *lexer.Lexer, line string) error {
	expected := []token.Kind{token.ExprSegmentText, token.LBrace, token.String}
	if lex.AtEnd() {
		return diag.UnexpectedToken(token.Token{Kind: token.EOF, Column: lex.Column()}, expected, line)
	}
	ch, _ := lex.Peek()
	return diag.UnexpectedChar(ch, expected, line, lex.Column())
}

// missingEqualsError reports that "=" was required here but not found.
// There's no dedicated token.Kind for a bare "=" (ReadEquals consumes it
// as a raw byte, not a scanned token), so the expected-set parenthetical
// is omitted rather than naming the wrong terminal.
func missingEqualsError(lex *lexer.Lexer, line string) error {
	if lex.AtEnd() {
		return diag.UnexpectedToken(token.Token{Kind: token.EOF, Column: lex.Column()}, nil, line)
	}
	ch, _ := lex.Peek()
	return diag.UnexpectedChar(ch, nil, line, lex.Column())
}
