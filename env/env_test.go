package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lauckhart/klipper/ast"
)

func TestConfigDictSectionLookup(t *testing.T) {
	cfg := NewConfigDict(map[string]map[string]string{
		"extruder": {"max_temp": "250"},
	})
	v, ok := cfg.Get("extruder")
	require.True(t, ok)
	require.Equal(t, ast.KindDict, v.Kind)

	section := v.Dict
	temp, ok := section.Get("max_temp")
	require.True(t, ok)
	assert.Equal(t, "250", temp.AsString())

	_, ok = cfg.Get("missing_section")
	assert.False(t, ok)
}

type fakeStatusSource map[string]map[string]ast.Value

func (f fakeStatusSource) ObjectStatus(name string) (map[string]ast.Value, bool) {
	v, ok := f[name]
	return v, ok
}

func TestStatusDictLooksUpLive(t *testing.T) {
	source := fakeStatusSource{"toolhead": {"position": ast.Number(10)}}
	d := NewStatusDict(source)

	v, ok := d.Get("toolhead")
	require.True(t, ok)
	pos, ok := v.Dict.Get("position")
	require.True(t, ok)
	assert.Equal(t, 10.0, pos.Num)

	_, ok = d.Get("no_such_object")
	assert.False(t, ok)
}

func TestStatusDictNilSourceIsEmpty(t *testing.T) {
	d := NewStatusDict(nil)
	_, ok := d.Get("anything")
	assert.False(t, ok)
}
