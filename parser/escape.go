package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// unescape applies standard C-style escape semantics to the raw
// (still-escaped) content of a STRING token, matching the "escaped_str"
// semantic action described in spec.md §4.2/§8 (round-trips through
// ast.Str). Go's strconv.Unquote is close but requires the surrounding
// quotes and rejects a couple of sequences this grammar allows (e.g. a
// bare unescaped '\' is not possible here since the lexer already
// balances escapes while scanning, but single-quote and some numeric
// escapes differ) -- so this is hand-rolled rather than delegated,
// documented in DESIGN.md as the one place stdlib wasn't a fit.
func unescape(raw string) (string, error) {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(raw) {
			return "", fmt.Errorf(`trailing backslash in string literal`)
		}
		switch raw[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case '\'':
			b.WriteByte('\'')
		case 'x':
			if i+2 >= len(raw) {
				return "", fmt.Errorf(`incomplete \x escape`)
			}
			n, err := strconv.ParseUint(raw[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf(`invalid \x escape: %w`, err)
			}
			b.WriteByte(byte(n))
			i += 2
		case 'u':
			if i+4 >= len(raw) {
				return "", fmt.Errorf(`incomplete \u escape`)
			}
			n, err := strconv.ParseUint(raw[i+1:i+5], 16, 32)
			if err != nil {
				return "", fmt.Errorf(`invalid \u escape: %w`, err)
			}
			b.WriteRune(rune(n))
			i += 4
		default:
			b.WriteByte(raw[i])
		}
	}
	return b.String(), nil
}
