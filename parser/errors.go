package parser

import (
	"github.com/lauckhart/klipper/diag"
	"github.com/lauckhart/klipper/lexer"
	"github.com/lauckhart/klipper/token"
)

// lexError renders a *lexer.Error as the user-facing diag.Error spec.md
// §4.6 describes: an EOF failure reads as "Unexpected end of line", any
// other byte as "Unexpected "<ch>"", both followed by the expected-set
// parenthetical when the caller supplied one.
func lexError(err error, line string) error {
	le, ok := err.(*lexer.Error)
	if !ok {
		return err
	}
	if le.AtEOF {
		return diag.UnexpectedToken(token.Token{Kind: token.EOF, Column: le.Column}, le.Expected, line)
	}
	return diag.UnexpectedChar(le.Ch, le.Expected, line, le.Column)
}
