package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lauckhart/klipper/ast"
	"github.com/lauckhart/klipper/eval"
)

func evalLine(t *testing.T, line string, globals map[string]ast.Value, locals map[string]ast.Value) (string, map[string]string) {
	t.Helper()
	entry, err := Parse(line)
	require.NoError(t, err)
	require.NotNil(t, entry, "expected a CommandEntry, got an empty-line result")
	name, params, err := entry.Eval(eval.NewGlobals(globals), eval.Locals(locals))
	require.NoError(t, err)
	return name, params.AsStrings()
}

func TestEndToEndScenarios(t *testing.T) {
	globals := map[string]ast.Value{"foo": ast.String("bar")}

	tests := []struct {
		name       string
		line       string
		wantCmd    string
		wantParams map[string]string
	}{
		{"traditional with two params", "G1 X10 Y20", "G1", map[string]string{"X": "10", "Y": "20"}},
		{"traditional with embedded expr", "G1 X{1+2*3}", "G1", map[string]string{"X": "7"}},
		{"extended key=value", "SET_FAN SPEED=0.5", "SET_FAN", map[string]string{"SPEED": "0.5"}},
		{"raw command with embedded expr", `ECHO hello {foo}`, "ECHO", map[string]string{"*": "hello bar"}},
		{"division by zero yields nan", "G1 X{1/0}", "G1", map[string]string{"X": "nan"}},
		{"ternary", `G1 Z{10 if foo=="bar" else 0}`, "G1", map[string]string{"Z": "10"}},
		{"line number and comment stripped", "N5 G1 X1 ; go", "G1", map[string]string{"X": "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, params := evalLine(t, tt.line, globals, nil)
			assert.Equal(t, tt.wantCmd, cmd)
			if diff := cmp.Diff(tt.wantParams, params); diff != "" {
				t.Errorf("params mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestM112HasEmptyParams(t *testing.T) {
	cmd, params := evalLine(t, "M112", nil, nil)
	assert.Equal(t, "M112", cmd)
	assert.Empty(t, params)
}

func TestTraditionalParamsPreserveSourceOrder(t *testing.T) {
	entry, err := Parse("G1 Y2 X1 Z3")
	require.NoError(t, err)
	ce, ok := entry.(*CommandEntry)
	require.True(t, ok)
	_, params, err := ce.Eval(eval.NewGlobals(nil), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Y", "X", "Z"}, params.Keys())
}

func TestEmptyAndCommentOnlyLinesYieldNoEntry(t *testing.T) {
	for _, line := range []string{"", "N42 ; comment", "   ", "; just a comment"} {
		entry, err := Parse(line)
		require.NoError(t, err)
		assert.Nil(t, entry, "line %q should parse to no entry", line)
	}
}

func TestUndefinedParameterErrorFormat(t *testing.T) {
	entry, err := Parse("G1 X{undefined_var}")
	require.NoError(t, err)
	_, _, err = entry.Eval(eval.NewGlobals(map[string]ast.Value{"foo": ast.String("bar")}), nil)
	require.Error(t, err)
	lines := err.Error()
	assert.Contains(t, lines, "Parameter 'undefined_var' is not defined")
	assert.Contains(t, lines, "  in command: G1 X{undefined_var}")
}

func TestUnexpectedCharacterErrorCaret(t *testing.T) {
	_, err := Parse("G1 X@")
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `Unexpected "@"`)
	assert.Contains(t, msg, "  in command: G1 X@")
}

func TestRawCommandWithNoTrailingTextHasNoStarKey(t *testing.T) {
	entry, err := Parse("ECHO")
	require.NoError(t, err)
	ce := entry.(*CommandEntry)
	assert.Empty(t, ce.Pairs)
}

func TestQuotedStringSegment(t *testing.T) {
	cmd, params := evalLine(t, `SET_MSG TEXT="a\"b"`, nil, nil)
	assert.Equal(t, "SET_MSG", cmd)
	assert.Equal(t, `a"b`, params["TEXT"])
}

func TestExtendedParamWhitespaceAroundEquals(t *testing.T) {
	cmd, params := evalLine(t, "SET_FAN SPEED = 0.5", nil, nil)
	assert.Equal(t, "SET_FAN", cmd)
	assert.Equal(t, "0.5", params["SPEED"])
}

func TestPowerIsRightAssociativeAndUnaryBindsOutside(t *testing.T) {
	// -2 ** 2 == -(2 ** 2) == -4
	cmd, params := evalLine(t, "G1 X{-2**2}", nil, nil)
	assert.Equal(t, "G1", cmd)
	assert.Equal(t, "-4", params["X"])

	// 2 ** 3 ** 2 == 2 ** (3 ** 2) == 512
	_, params = evalLine(t, "G1 X{2**3**2}", nil, nil)
	assert.Equal(t, "512", params["X"])
}
