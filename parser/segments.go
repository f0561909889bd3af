package parser

import (
	"strings"

	"github.com/lauckhart/klipper/ast"
	"github.com/lauckhart/klipper/diag"
	"github.com/lauckhart/klipper/lexer"
	"github.com/lauckhart/klipper/token"
)

// parseEmbed consumes a "{...}" region: the opening brace, one full
// expression, and the matching close -- the close is consumed as part of
// the expression parser's own token stream (NextExprToken resolves "}" via
// Lexer.LeaveBrace), so there is nothing left to balance here beyond
// checking the parser actually stopped on RBrace rather than running off
// the end of the line.
func parseEmbed(lex *lexer.Lexer, line string) (ast.Expr, error) {
	lex.EnterBrace()
	ep, err := newExprParser(lex, line)
	if err != nil {
		return nil, err
	}
	expr, err := ep.parseExpr()
	if err != nil {
		return nil, err
	}
	if ep.cur.Kind != token.RBrace {
		return nil, diag.UnexpectedToken(ep.cur, []token.Kind{token.RBrace}, line)
	}
	return expr, nil
}

// appendSegment folds a newly parsed segment onto the accumulator via the
// same concatenation spec.md §4.2 uses for param_expr: "X{foo}mm" becomes
// one expression joining the embed result with the literal "MM" segment.
func appendSegment(acc, seg ast.Expr, pos ast.Position) ast.Expr {
	if acc == nil {
		return seg
	}
	return ast.Concat(acc, seg, pos)
}

// parseExprSegments parses a param_expr: one or more adjacent segments
// (bare text, "{...}" embeds, quoted strings) with no separating
// whitespace, used for both traditional-param values and extended-param
// keys/values. Bare-text segments upper-case when upper is true (spec.md
// §4.2: "Keys are upper-cased" and literal param text upper-cases; quoted
// strings and embed results never do). Returns (nil, nil) if the cursor is
// already at a boundary -- callers decide whether zero segments is itself
// an error.
func parseExprSegments(lex *lexer.Lexer, line string, upper bool) (ast.Expr, error) {
	var acc ast.Expr
	count := 0
	for !lex.AtEnd() {
		ch, _ := lex.Peek()
		switch ch {
		case '{':
			pos := ast.Position{Line: 1, Column: lex.Column()}
			e, err := parseEmbed(lex, line)
			if err != nil {
				return nil, err
			}
			acc = appendSegment(acc, e, pos)
			count++
			continue
		case '"':
			pos := ast.Position{Line: 1, Column: lex.Column()}
			tok, err := lex.ReadString()
			if err != nil {
				return nil, lexError(err, line)
			}
			s, err := unescape(tok.Value)
			if err != nil {
				return nil, diag.Plain(err.Error(), line, tok.Column)
			}
			acc = appendSegment(acc, ast.NewStr(s, pos), pos)
			count++
			continue
		}
		tok, ok := lex.ReadExprSegmentText()
		if !ok {
			if lex.IsSegmentBoundary() {
				return terminate(acc, count)
			}
			ch, _ := lex.Peek()
			return nil, diag.UnexpectedChar(ch, []token.Kind{token.ExprSegmentText}, line, lex.Column())
		}
		text := tok.Value
		if upper {
			text = strings.ToUpper(text)
		}
		pos := ast.Position{Line: 1, Column: tok.Column}
		acc = appendSegment(acc, ast.NewStr(text, pos), pos)
		count++
	}
	return terminate(acc, count)
}

func terminate(acc ast.Expr, count int) (ast.Expr, error) {
	if count == 0 {
		return nil, nil
	}
	return acc, nil
}

// parseRawSegments parses a raw command's trailing argument text: free
// text interleaved with "{...}" embeds and quoted strings, running until
// comment or end of line (spec.md §4.2's Raw shape). Unlike
// parseExprSegments, bare text is never upper-cased and whitespace is
// ordinary content, not a terminator.
func parseRawSegments(lex *lexer.Lexer, line string) (ast.Expr, error) {
	var acc ast.Expr
	count := 0
	for !lex.AtEnd() && !lex.AtComment() {
		ch, _ := lex.Peek()
		switch ch {
		case '{':
			pos := ast.Position{Line: 1, Column: lex.Column()}
			e, err := parseEmbed(lex, line)
			if err != nil {
				return nil, err
			}
			acc = appendSegment(acc, e, pos)
			count++
			continue
		case '"':
			pos := ast.Position{Line: 1, Column: lex.Column()}
			tok, err := lex.ReadString()
			if err != nil {
				return nil, lexError(err, line)
			}
			s, err := unescape(tok.Value)
			if err != nil {
				return nil, diag.Plain(err.Error(), line, tok.Column)
			}
			acc = appendSegment(acc, ast.NewStr(s, pos), pos)
			count++
			continue
		}
		tok, ok := lex.ReadRawArgText()
		if !ok {
			// Only '"', '{', ';', or end of line can stop ReadRawArgText with
			// nothing consumed, and the loop condition / switch above already
			// handle all of those.
			break
		}
		pos := ast.Position{Line: 1, Column: tok.Column}
		acc = appendSegment(acc, ast.NewStr(tok.Value, pos), pos)
		count++
	}
	return terminate(acc, count)
}
