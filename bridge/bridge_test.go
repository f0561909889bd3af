package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQueueHandlesAreDistinctAndNonZero(t *testing.T) {
	e := NewExecutor(Callbacks{})
	h1 := e.NewQueue(nil)
	h2 := e.NewQueue(nil)
	assert.NotEqual(t, Handle(0), h1)
	assert.NotEqual(t, h1, h2)
}

func TestParseAndExecNextReturnsCommandResult(t *testing.T) {
	e := NewExecutor(Callbacks{})
	h := e.NewQueue(nil)

	require.NoError(t, e.Parse(h, []byte("G1 X1 Y2\n")))

	res, err := e.ExecNext(h, nil)
	require.NoError(t, err)
	require.Equal(t, ResultCommand, res.Type)
	assert.Equal(t, "G1", res.Command)
	assert.Equal(t, 0, res.Remaining)
	assert.ElementsMatch(t, []KV{{Key: "X", Value: "1"}, {Key: "Y", Value: "2"}}, res.Parameters)
}

func TestExecNextOnEmptyQueueReturnsEmptyResult(t *testing.T) {
	e := NewExecutor(Callbacks{})
	h := e.NewQueue(nil)

	res, err := e.ExecNext(h, nil)
	require.NoError(t, err)
	assert.Equal(t, ResultEmpty, res.Type)
}

func TestExecNextOnBadEntryReturnsErrorResult(t *testing.T) {
	e := NewExecutor(Callbacks{})
	h := e.NewQueue(nil)
	require.NoError(t, e.Parse(h, []byte("G1 X@\n")))

	res, err := e.ExecNext(h, nil)
	require.NoError(t, err)
	assert.Equal(t, ResultError, res.Type)
	assert.NotEmpty(t, res.Error)
}

func TestParseOnUnknownHandleErrors(t *testing.T) {
	e := NewExecutor(Callbacks{})
	err := e.Parse(Handle(999), []byte("G1\n"))
	assert.Error(t, err)
}

func TestDeleteQueueInvalidatesHandle(t *testing.T) {
	e := NewExecutor(Callbacks{})
	h := e.NewQueue(nil)
	e.DeleteQueue(h)
	_, err := e.ExecNext(h, nil)
	assert.Error(t, err)
}

func TestM112CallbackFiresOnParseWithoutFatal(t *testing.T) {
	var gotM112 Handle
	var gotFatal string
	e := NewExecutor(Callbacks{
		M112:  func(h Handle) { gotM112 = h },
		Fatal: func(h Handle, msg string) { gotFatal = msg },
	})
	h := e.NewQueue(nil)
	require.NoError(t, e.Parse(h, []byte("M112\n")))
	assert.Equal(t, h, gotM112)
	assert.Empty(t, gotFatal, "no fatal condition was raised")
}

func TestLookupFallsBackToQueueGlobalsWithoutCallback(t *testing.T) {
	e := NewExecutor(Callbacks{})
	h := e.NewQueue(nil)
	q, err := e.queue(h)
	require.NoError(t, err)
	q.ExposeConfig(map[string]map[string]string{"extruder": {"max_temp": "250"}})

	v, ok := e.Lookup(h, "config", "extruder")
	require.True(t, ok)
	assert.Equal(t, ValueDict, v.Type)
	assert.Equal(t, "250", v.Dict["max_temp"])

	_, ok = e.Lookup(h, "config", "no_such_section")
	assert.False(t, ok)
}

func TestResultMarshalCBORRoundTripsDeterministically(t *testing.T) {
	r := Result{Type: ResultCommand, Command: "G1", Parameters: []KV{{Key: "X", Value: "1"}}, Remaining: 2}
	b1, err := r.MarshalCBOR()
	require.NoError(t, err)
	b2, err := r.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, b1, b2, "canonical encoding is deterministic across calls")
	assert.NotEmpty(t, b1)
}
