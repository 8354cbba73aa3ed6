package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, Register[point](reg))
	require.NoError(t, Register[label](reg))
	require.NoError(t, Register[shape](reg))
	return reg
}

func TestRegistry_Register(t *testing.T) {
	reg := newTestRegistry(t)

	assert.Equal(t, []string{"Label", "Point", "Shape"}, reg.Types())
	assert.Error(t, Register[point](reg), "duplicate registration must fail")
}

func TestRegistry_Describe(t *testing.T) {
	reg := newTestRegistry(t)

	fields, err := reg.Describe("Shape")
	require.NoError(t, err)
	require.Len(t, fields, 13)

	assert.Equal(t, FieldInfo{Name: "Name", Desc: Descriptor{Kind: KindString}}, fields[0])
	assert.Equal(t, "Point", fields[4].Desc.String())
	assert.Equal(t, "optional<Label>", fields[5].Desc.String())
	assert.Equal(t, "sequence<Point>", fields[6].Desc.String())
	assert.Equal(t, "sequence<sequence<int>>", fields[9].Desc.String())
	assert.Equal(t, "mapping<Point,string>", fields[10].Desc.String())
	assert.Equal(t, "mapping<int,Point>", fields[11].Desc.String())

	_, err = reg.Describe("Missing")
	assert.Error(t, err)
}

func TestRegistry_Validate(t *testing.T) {
	t.Run("complete registry", func(t *testing.T) {
		assert.NoError(t, newTestRegistry(t).Validate())
	})

	t.Run("unregistered nested type", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, Register[shape](reg))

		err := reg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unregistered type Point")
		assert.Contains(t, err.Error(), "unregistered type Label")
	})
}

func TestRegistry_DecodeAny(t *testing.T) {
	reg := newTestRegistry(t)

	text, err := Encode(&label{Text: "dispatched"})
	require.NoError(t, err)

	rec, err := reg.DecodeAny(text)
	require.NoError(t, err)
	assert.Equal(t, &label{Text: "dispatched"}, rec)

	_, err = reg.DecodeAny([]byte(`{"__Unknown__":true}`))
	assert.Error(t, err)

	_, err = reg.DecodeAny([]byte(`{"x":1}`))
	var mismatch *SchemaMismatch
	assert.ErrorAs(t, err, &mismatch)

	for _, text := range []string{
		`{"__Label__":true,"__Point__":true}`,
		`{"__Label__":false,"Text":"x"}`,
	} {
		_, err = reg.DecodeAny([]byte(text))
		assert.ErrorAs(t, err, &mismatch, text)
	}

	_, err = reg.DecodeAny([]byte(`not json`))
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}
