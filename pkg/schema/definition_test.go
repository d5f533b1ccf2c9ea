package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefinition_RoundTrip(t *testing.T) {
	input, params := testRecords(t)

	def := DefinitionOf(input)
	assert.Equal(t, "Input", def.Name)
	require.Len(t, def.Fields, 2)
	assert.Equal(t, FieldDefinition{Name: "parameters", Type: "Params", Doc: "Additional parameters"}, def.Fields[1])

	t.Run("json", func(t *testing.T) {
		data, err := json.Marshal(def)
		require.NoError(t, err)

		var back Definition
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, def, back)
	})

	t.Run("yaml", func(t *testing.T) {
		data, err := yaml.Marshal(DefinitionOf(params))
		require.NoError(t, err)

		var back Definition
		require.NoError(t, yaml.Unmarshal(data, &back))
		assert.Equal(t, DefinitionOf(params), back)
	})

	t.Run("build", func(t *testing.T) {
		rebuiltParams, err := DefinitionOf(params).Build(nil)
		require.NoError(t, err)

		rebuilt, err := def.Build(Records{"Params": rebuiltParams})
		require.NoError(t, err)

		wire := map[string]any{"inputs": "x", "parameters": map[string]any{"mode": "never", "top_k": int64(2)}}
		a, err := Decode(input, wire)
		require.NoError(t, err)
		b, err := Decode(rebuilt, wire)
		require.NoError(t, err)
		assert.Equal(t, a.ToWire(), b.ToWire())
	})
}

func TestDefinition_FromYAML(t *testing.T) {
	src := `
name: SpeakerConfig
doc: Voice selection
fields:
  - name: voice
    type: '"alto" | "tenor"'
    required: true
  - name: speed
    type: float
  - name: tags
    type: '[string]'
`
	var def Definition
	require.NoError(t, yaml.Unmarshal([]byte(src), &def))

	r, err := def.Build(nil)
	require.NoError(t, err)

	_, err = Decode(r, map[string]any{"voice": "alto", "speed": 1, "tags": []any{"calm"}})
	assert.NoError(t, err)

	_, err = Decode(r, map[string]any{"voice": "bass"})
	assert.ErrorContains(t, err, "expected one of {alto, tenor}")
}

func TestDefinition_Check(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
		want string
	}{
		{"bad name", Definition{Name: "1abc"}, "invalid record name"},
		{"no field name", Definition{Name: "R", Fields: []FieldDefinition{{Type: "int"}}}, "has no name"},
		{"duplicate", Definition{Name: "R", Fields: []FieldDefinition{{Name: "a", Type: "int"}, {Name: "a", Type: "int"}}}, "duplicate field a"},
		{"no type", Definition{Name: "R", Fields: []FieldDefinition{{Name: "a"}}}, "has no type"},
		{"malformed", Definition{Name: "R", Fields: []FieldDefinition{{Name: "a", Type: "[int"}}}, "unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, tt.def.Check(), tt.want)
		})
	}

	_, err := Definition{Name: "R", Fields: []FieldDefinition{{Name: "a", Type: "Missing"}}}.Build(nil)
	assert.ErrorContains(t, err, "unsupported type: Missing")
}

func TestDependencies(t *testing.T) {
	leaf := MustRecord("Leaf", "", OptionalField("v", Int(), ""))
	mid := MustRecord("Mid", "", OptionalField("leaf", leaf, ""), OptionalField("leaves", Slice(leaf), ""))
	root := MustRecord("Root", "", OptionalField("m", Union(Bool(), mid), ""))

	deps := Dependencies(root)
	require.Len(t, deps, 2)
	assert.Equal(t, "Leaf", deps[0].Name())
	assert.Equal(t, "Mid", deps[1].Name())
	assert.Empty(t, Dependencies(leaf))
}

func TestOptional(t *testing.T) {
	var zero Optional[int]
	assert.True(t, zero.IsAbsent())

	v, ok := Some(3).Get()
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.True(t, Null[int]().IsNull())
	assert.Equal(t, 7, Null[int]().OrElse(7))

	doubled, err := Map(Some(2), func(i int) (int, error) { return i * 2, nil })
	require.NoError(t, err)
	assert.Equal(t, 4, doubled.OrElse(0))

	nulled, err := Map(Null[int](), func(i int) (string, error) { return "", nil })
	require.NoError(t, err)
	assert.True(t, nulled.IsNull())

	wire := map[string]any{}
	Put(wire, "a", Some("x"))
	Put(wire, "b", Null[string]())
	Put(wire, "c", Absent[string]())
	assert.Equal(t, map[string]any{"a": "x", "b": nil}, wire)
}
