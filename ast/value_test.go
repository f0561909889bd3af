package ast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueAsString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"integral number", Number(7), "7"},
		{"fractional number", Number(0.5), "0.5"},
		{"nan", Number(math.NaN()), "nan"},
		{"string passthrough", String("hello bar"), "hello bar"},
		{"true bool", Boolean(true), "1"},
		{"false bool", Boolean(false), "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.AsString())
		})
	}
}

func TestValueAsNumberTotal(t *testing.T) {
	assert.Equal(t, 3.0, Number(3).AsNumber())
	assert.Equal(t, 1.0, Boolean(true).AsNumber())
	assert.Equal(t, 0.0, Boolean(false).AsNumber())
	assert.Equal(t, 2.5, String("2.5").AsNumber())
	assert.True(t, math.IsNaN(String("not a number").AsNumber()))
	assert.True(t, math.IsNaN(Dict(nil).AsNumber()))
}

func TestValueAsNumberIdempotentOnNumbers(t *testing.T) {
	v := Number(42)
	assert.Equal(t, v.AsNumber(), Number(v.AsNumber()).AsNumber())
}

func TestValueTruthy(t *testing.T) {
	assert.True(t, Number(1).Truthy())
	assert.False(t, Number(0).Truthy())
	assert.True(t, Number(math.NaN()).Truthy(), "NaN is truthy, matching Python's float('nan')")
	assert.True(t, String("x").Truthy())
	assert.False(t, String("").Truthy())
	assert.True(t, Boolean(true).Truthy())
	assert.False(t, Boolean(false).Truthy())
}

type fakeDict map[string]Value

func (f fakeDict) Get(key string) (Value, bool) { v, ok := f[key]; return v, ok }
func (f fakeDict) Keys() []string {
	out := make([]string, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	return out
}

func TestValueTruthyDict(t *testing.T) {
	assert.False(t, Dict(fakeDict{}).Truthy())
	assert.True(t, Dict(fakeDict{"a": Number(1)}).Truthy())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Number(1).Equal(Number(1)))
	assert.False(t, Number(1).Equal(Number(2)))
	assert.True(t, Boolean(true).Equal(Boolean(true)))
	assert.True(t, String("bar").Equal(String("bar")))
	// cross-kind comparisons fall back to string rendering
	assert.True(t, Number(1).Equal(Boolean(true)), "both render as \"1\"")
}
