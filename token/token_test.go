package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "$EOL", EOF.String())
	assert.Equal(t, "**", Pow.String())
	assert.Equal(t, "Kind(999)", Kind(999).String())
}

func TestTokenStringRendersEOFAsEndOfLine(t *testing.T) {
	eof := Token{Kind: EOF}
	assert.Equal(t, "end of line", eof.String())

	ident := Token{Kind: Identifier, Value: "foo"}
	assert.Equal(t, "foo", ident.String())
}
