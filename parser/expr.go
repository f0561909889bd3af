package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lauckhart/klipper/ast"
	"github.com/lauckhart/klipper/diag"
	"github.com/lauckhart/klipper/lexer"
	"github.com/lauckhart/klipper/token"
)

// exprParser drives the expression-grammar precedence cascade (spec.md
// §4.2) over a shared lexer cursor. One is built per "{...}" embed.
type exprParser struct {
	lex  *lexer.Lexer
	line string
	cur  token.Token
}

func newExprParser(lex *lexer.Lexer, line string) (*exprParser, error) {
	p := &exprParser{lex: lex, line: line}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *exprParser) advance() error {
	tok, err := p.lex.NextExprToken()
	if err != nil {
		return lexError(err, p.line)
	}
	p.cur = tok
	return nil
}

func (p *exprParser) pos() ast.Position {
	return ast.Position{Line: 1, Column: p.cur.Column}
}

func (p *exprParser) expect(k token.Kind) (token.Token, error) {
	if p.cur.Kind != k {
		return token.Token{}, diag.UnexpectedToken(p.cur, []token.Kind{k}, p.line)
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return tok, nil
}

// parseExpr parses one full ternary expression -- the entry point for
// everything inside "{...}".
func (p *exprParser) parseExpr() (ast.Expr, error) {
	return p.parseTernary()
}

// parseTernary handles "yes if test else no", reordering to
// IfExp(test, yes, no) per spec.md §4.2.
func (p *exprParser) parseTernary() (ast.Expr, error) {
	yes, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != token.If {
		return yes, nil
	}
	pos := p.pos()
	if err := p.advance(); err != nil {
		return nil, err
	}
	test, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Else); err != nil {
		return nil, err
	}
	no, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return ast.NewIfExp(test, yes, no, pos), nil
}

func (p *exprParser) parseOr() (ast.Expr, error) {
	l, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == token.Or {
		pos := p.pos()
		if err := p.advance(); err != nil {
			return nil, err
		}
		r, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		l = ast.NewBoolOp("or", l, r, pos)
	}
	return l, nil
}

func (p *exprParser) parseAnd() (ast.Expr, error) {
	l, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == token.And {
		pos := p.pos()
		if err := p.advance(); err != nil {
			return nil, err
		}
		r, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		l = ast.NewBoolOp("and", l, r, pos)
	}
	return l, nil
}

func (p *exprParser) parseNot() (ast.Expr, error) {
	if p.cur.Kind == token.Not {
		pos := p.pos()
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp("not", operand, pos), nil
	}
	return p.parseComparison()
}

var compareOps = map[token.Kind]string{
	token.Lt: "<", token.Gt: ">", token.Lte: "<=", token.Gte: ">=",
	token.EqEq: "==", token.NotEq: "!=",
}

func (p *exprParser) parseComparison() (ast.Expr, error) {
	l, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := compareOps[p.cur.Kind]
		if !ok {
			return l, nil
		}
		pos := p.pos()
		if err := p.advance(); err != nil {
			return nil, err
		}
		r, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		if op == "==" || op == "!=" {
			l = ast.NewCompare(op, l, r, pos)
		} else {
			l = ast.NewCompare(op, ast.NewNumCast(l), ast.NewNumCast(r), pos)
		}
	}
}

func (p *exprParser) parseAdditive() (ast.Expr, error) {
	l, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.cur.Kind {
		case token.Plus:
			op = "+"
		case token.Minus:
			op = "-"
		case token.Tilde:
			op = "~"
		default:
			return l, nil
		}
		pos := p.pos()
		if err := p.advance(); err != nil {
			return nil, err
		}
		r, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		if op == "~" {
			l = ast.Concat(l, r, pos)
		} else {
			l = ast.NewBinOp(op, ast.NewNumCast(l), ast.NewNumCast(r), pos)
		}
	}
}

func (p *exprParser) parseMultiplicative() (ast.Expr, error) {
	l, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.cur.Kind {
		case token.Star:
			op = "*"
		case token.Slash:
			op = "/"
		case token.Percent:
			op = "%"
		default:
			return l, nil
		}
		pos := p.pos()
		if err := p.advance(); err != nil {
			return nil, err
		}
		r, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == "/" {
			l = ast.Divide(l, r, pos)
		} else {
			l = ast.NewBinOp(op, ast.NewNumCast(l), ast.NewNumCast(r), pos)
		}
	}
}

func (p *exprParser) parseUnary() (ast.Expr, error) {
	switch p.cur.Kind {
	case token.Plus, token.Minus:
		op := "+"
		if p.cur.Kind == token.Minus {
			op = "-"
		}
		pos := p.pos()
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(op, ast.NewNumCast(operand), pos), nil
	default:
		return p.parsePow()
	}
}

// parsePow is right-associative via a recursive call into parseUnary on
// its right side: "2 ** 3 ** 2" groups as "2 ** (3 ** 2)", while unary
// still binds looser than "**" on the left ("-2 ** 2" is "-(2 ** 2)") and
// tighter on the right ("2 ** -1" is "2 ** (-1)") -- the same shape as
// Python's factor/power grammar, per spec.md §4.2.
func (p *exprParser) parsePow() (ast.Expr, error) {
	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != token.Pow {
		return base, nil
	}
	pos := p.pos()
	if err := p.advance(); err != nil {
		return nil, err
	}
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return ast.NewBinOp("**", ast.NewNumCast(base), ast.NewNumCast(exp), pos), nil
}

func (p *exprParser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur.Kind {
		case token.Dot:
			pos := p.pos()
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.expect(token.Identifier)
			if err != nil {
				return nil, err
			}
			expr = ast.NewGetMember(expr, ast.NewStr(name.Value, pos), pos)
		case token.LBracket:
			pos := p.pos()
			if err := p.advance(); err != nil {
				return nil, err
			}
			key, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBracket); err != nil {
				return nil, err
			}
			expr = ast.NewGetMember(expr, key, pos)
		default:
			return expr, nil
		}
	}
}

func (p *exprParser) parsePrimary() (ast.Expr, error) {
	tok := p.cur
	pos := p.pos()
	switch tok.Kind {
	case token.Int, token.Float:
		if err := p.advance(); err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, diag.Plain(fmt.Sprintf("Invalid numeric literal %q", tok.Value), p.line, tok.Column)
		}
		return ast.NewNum(v, pos), nil
	case token.String:
		if err := p.advance(); err != nil {
			return nil, err
		}
		s, err := unescape(tok.Value)
		if err != nil {
			return nil, diag.Plain(err.Error(), p.line, tok.Column)
		}
		return ast.NewStr(s, pos), nil
	case token.LParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return inner, nil
	case token.Identifier:
		return p.parseIdentifier()
	default:
		return nil, diag.UnexpectedToken(tok, []token.Kind{
			token.Identifier, token.Int, token.Float, token.String, token.LParen,
		}, p.line)
	}
}

// parseIdentifier implements spec.md §4.2's IDENTIFIER routing: lower-case
// the name, then dispatch inf/nan to Call(float, Str(name)), true/false to
// Bool, a call form to Call, and anything else to GetParameter.
func (p *exprParser) parseIdentifier() (ast.Expr, error) {
	tok := p.cur
	pos := p.pos()
	if err := p.advance(); err != nil {
		return nil, err
	}
	lower := strings.ToLower(tok.Value)
	switch lower {
	case "true":
		return ast.NewBool(true, pos), nil
	case "false":
		return ast.NewBool(false, pos), nil
	case "inf", "nan":
		call, err := ast.NewCall("float", []ast.Expr{ast.NewStr(lower, pos)}, pos)
		if err != nil {
			return nil, diag.Plain(err.Error(), p.line, tok.Column)
		}
		return call, nil
	}
	if p.cur.Kind == token.LParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		var args []ast.Expr
		if p.cur.Kind != token.RParen {
			for {
				a, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if p.cur.Kind != token.Comma {
					break
				}
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		call, err := ast.NewCall(lower, args, pos)
		if err != nil {
			return nil, diag.Plain(err.Error(), p.line, tok.Column)
		}
		return call, nil
	}
	return ast.NewGetParameter(lower, pos), nil
}
