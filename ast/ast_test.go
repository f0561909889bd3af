package ast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDivideLowersToNanGuardedIfExp(t *testing.T) {
	pos := Position{Line: 1, Column: 5}
	d := Divide(NewNum(1, pos), NewNum(0, pos), pos)

	ifExp, ok := d.(*IfExp)
	require.True(t, ok, "Divide must lower to an IfExp")

	cmp, ok := ifExp.Test.(*Compare)
	require.True(t, ok)
	assert.Equal(t, "==", cmp.Op)

	nan, ok := ifExp.Yes.(*Num)
	require.True(t, ok)
	assert.True(t, math.IsNaN(nan.Value))

	bin, ok := ifExp.No.(*BinOp)
	require.True(t, ok)
	assert.Equal(t, "/", bin.Op)
}

func TestConcatDoesNotNumCast(t *testing.T) {
	pos := Position{Line: 1, Column: 1}
	c := Concat(NewStr("a", pos), NewStr("b", pos), pos)
	bin, ok := c.(*BinOp)
	require.True(t, ok)
	assert.Equal(t, "~", bin.Op)
	_, lIsCast := bin.L.(*NumCast)
	_, rIsCast := bin.R.(*NumCast)
	assert.False(t, lIsCast)
	assert.False(t, rIsCast)
}

func TestNewCallRejectsUndefinedFunction(t *testing.T) {
	pos := Position{Line: 1, Column: 1}
	_, err := NewCall("printf", nil, pos)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'printf' is undefined")

	call, err := NewCall("bool", []Expr{NewNum(1, pos)}, pos)
	require.NoError(t, err)
	assert.Equal(t, "bool", call.Func)
}

func TestNumStringOmitsTrailingZero(t *testing.T) {
	pos := Position{Line: 1, Column: 1}
	assert.Equal(t, "7", NewNum(7, pos).String())
	assert.Equal(t, "0.5", NewNum(0.5, pos).String())
}
