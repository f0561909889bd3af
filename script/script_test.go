package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lauckhart/klipper/ast"
)

func TestParseSegmentAcrossChunksMatchesWholeInput(t *testing.T) {
	whole := New(map[string]ast.Value{"foo": ast.String("bar")})
	whole.ParseSegment([]byte("G1 X1\nG1 X{1+1}\n"))
	whole.ParseFinish()

	chunked := New(map[string]ast.Value{"foo": ast.String("bar")})
	chunked.ParseSegment([]byte("G1 "))
	chunked.ParseSegment([]byte("X1\nG1 "))
	chunked.ParseSegment([]byte("X{1+1}"))
	chunked.ParseSegment([]byte("\n"))
	chunked.ParseFinish()

	require.Equal(t, whole.Len(), chunked.Len())
	for whole.HasNext() {
		wantCmd, wantParams, wantErr := whole.EvalNext(nil)
		gotCmd, gotParams, gotErr := chunked.EvalNext(nil)
		assert.Equal(t, wantErr, gotErr)
		assert.Equal(t, wantCmd, gotCmd)
		if wantParams != nil && gotParams != nil {
			assert.Equal(t, wantParams.AsStrings(), gotParams.AsStrings())
		}
	}
}

func TestParseFinishDrainsPartialLine(t *testing.T) {
	s := New(nil)
	s.ParseSegment([]byte("G1 X1"))
	assert.Equal(t, 0, s.Len(), "a line with no trailing newline stays buffered")
	s.ParseFinish()
	assert.Equal(t, 1, s.Len())
}

func TestEmptyInputYieldsZeroEntries(t *testing.T) {
	s := New(nil)
	s.ParseSegment([]byte(""))
	s.ParseFinish()
	assert.Equal(t, 0, s.Len())
}

func TestLineNumberAndCommentOnlyYieldsZeroEntries(t *testing.T) {
	s := New(nil)
	s.ParseSegment([]byte("N42 ; comment\n"))
	assert.Equal(t, 0, s.Len())
}

func TestM112LatchesAndClearsOnce(t *testing.T) {
	s := New(nil)
	s.ParseSegment([]byte("M112\n"))
	assert.True(t, s.CheckM112())
	assert.False(t, s.CheckM112(), "CheckM112 clears the flag on read")
}

func TestEvalNextOnEmptyFIFOReturnsEmptyTuple(t *testing.T) {
	s := New(nil)
	cmd, params, err := s.EvalNext(nil)
	assert.Equal(t, "", cmd)
	assert.Nil(t, params)
	assert.NoError(t, err)
}

func TestErrorEntryDoesNotBlockLaterGoodEntries(t *testing.T) {
	s := New(nil)
	s.ParseSegment([]byte("G1 X@\nG1 X1\n"))
	require.Equal(t, 2, s.Len())

	_, _, err := s.EvalNext(nil)
	assert.Error(t, err)

	cmd, params, err := s.EvalNext(nil)
	require.NoError(t, err)
	assert.Equal(t, "G1", cmd)
	assert.Equal(t, "1", params.AsStrings()["X"])
}

func TestExposeInputsThenRemove(t *testing.T) {
	s := New(nil)
	s.ExposeInputs(map[string]ast.Value{"speed": ast.Number(5)})
	s.ParseSegment([]byte("G1 X{speed}\n"))
	_, params, err := s.EvalNext(nil)
	require.NoError(t, err)
	assert.Equal(t, "5", params.AsStrings()["X"])

	s.RemoveInputs()
	s.ParseSegment([]byte("G1 X{speed}\n"))
	_, _, err = s.EvalNext(nil)
	assert.Error(t, err, "speed should no longer be defined after RemoveInputs")
}

func TestFatalLatchesAndClearsOnRead(t *testing.T) {
	s := New(nil)
	assert.NoError(t, s.CheckFatal())
	s.Fatal("out of memory")
	err := s.CheckFatal()
	require.Error(t, err)
	assert.Equal(t, "out of memory", err.Error())
	assert.NoError(t, s.CheckFatal())
}
