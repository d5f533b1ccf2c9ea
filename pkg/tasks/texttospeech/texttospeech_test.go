package texttospeech

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/inferschema/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTextToSpeechInput_InputsOnly(t *testing.T) {
	in, err := DecodeTextToSpeechInput(map[string]any{"inputs": "hello world"})
	require.NoError(t, err)

	assert.Equal(t, "hello world", in.Inputs)
	assert.True(t, in.Parameters.IsAbsent())
	assert.Equal(t, map[string]any{"inputs": "hello world"}, in.ToWire())
}

func TestDecodeTextToSpeechInput_MissingInputs(t *testing.T) {
	_, err := DecodeTextToSpeechInput(map[string]any{
		"parameters": map[string]any{"generate": map[string]any{"temperature": 0.7, "top_k": 50}},
	})
	require.Error(t, err)

	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "inputs", ve.Key)
	assert.Len(t, schema.Violations(err), 1)
}

func TestDecodeTextToSpeechInput_Nested(t *testing.T) {
	wire := map[string]any{
		"inputs": "hi",
		"parameters": map[string]any{
			"generate": map[string]any{
				"temperature":    0.7,
				"top_k":          int64(50),
				"early_stopping": "never",
				"do_sample":      nil,
			},
		},
	}
	in, err := DecodeTextToSpeechInput(wire)
	require.NoError(t, err)

	params, ok := in.Parameters.Get()
	require.True(t, ok)
	gen, ok := params.Generate.Get()
	require.True(t, ok)

	assert.Equal(t, 0.7, gen.Temperature.OrElse(0))
	assert.Equal(t, int64(50), gen.TopK.OrElse(0))
	assert.True(t, gen.DoSample.IsNull())
	assert.True(t, gen.UseCache.IsAbsent())

	es, ok := gen.EarlyStopping.Get()
	require.True(t, ok)
	e, isEnum := es.Enum()
	assert.True(t, isEnum)
	assert.Equal(t, EarlyStoppingNever, e)

	assert.Equal(t, wire, in.ToWire())
}

func TestDecodeTextToSpeechInput_Errors(t *testing.T) {
	_, err := DecodeTextToSpeechInput(map[string]any{
		"inputs": "hi",
		"parameters": map[string]any{
			"generate": map[string]any{"early_stopping": "always", "num_beams": 2.5},
		},
	})
	require.Error(t, err)

	keys := []string{}
	for _, v := range schema.Violations(err) {
		keys = append(keys, v.Key)
	}
	assert.Equal(t, []string{"parameters.generate.early_stopping", "parameters.generate.num_beams"}, keys)
	assert.Contains(t, err.Error(), `expected bool | "never"`)
}

func TestEarlyStopping_Union(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		wantBool bool
		wantEnum bool
		wantErr  bool
	}{
		{"first alternative", true, true, false, false},
		{"second alternative", "never", false, true, false},
		{"neither", "sometimes", false, false, true},
		{"number", 1, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			es, err := ParseEarlyStopping(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			_, isBool := es.Bool()
			_, isEnum := es.Enum()
			assert.Equal(t, tt.wantBool, isBool)
			assert.Equal(t, tt.wantEnum, isEnum)
			assert.Equal(t, tt.value, es.Wire())
		})
	}
}

func TestEarlyStopping_JSON(t *testing.T) {
	var es EarlyStopping
	require.NoError(t, json.Unmarshal([]byte(`"never"`), &es))
	assert.Equal(t, "never", es.String())

	data, err := json.Marshal(EarlyStoppingBool(false))
	require.NoError(t, err)
	assert.Equal(t, "false", string(data))

	_, err = json.Marshal(EarlyStopping{})
	assert.Error(t, err)
	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &es))
}

func TestGenerationParameters_Validate(t *testing.T) {
	ok := GenerationParameters{
		EarlyStopping: schema.Some(EarlyStoppingBool(true)),
		NumBeams:      schema.Some(int64(4)),
	}
	assert.NoError(t, ok.Validate())

	unset := GenerationParameters{EarlyStopping: schema.Some(EarlyStopping{})}
	assert.Error(t, unset.Validate())

	badEnum := GenerationParameters{EarlyStopping: schema.Some(EarlyStoppingValue("soon"))}
	assert.Error(t, badEnum.Validate())
}

func TestNewTextToSpeechInput(t *testing.T) {
	params, err := NewTextToAudioParameters(schema.Some(GenerationParameters{Temperature: schema.Some(0.5)}))
	require.NoError(t, err)

	in, err := NewTextToSpeechInput("speak", schema.Some(params))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"inputs":     "speak",
		"parameters": map[string]any{"generate": map[string]any{"temperature": 0.5}},
	}, in.ToWire())

	_, err = NewTextToAudioParameters(schema.Some(GenerationParameters{EarlyStopping: schema.Some(EarlyStopping{})}))
	assert.Error(t, err)
}

func TestTextToSpeechInput_RoundTrip(t *testing.T) {
	wires := []map[string]any{
		{"inputs": "a"},
		{"inputs": "b", "parameters": nil},
		{"inputs": "c", "parameters": map[string]any{"generate": nil}},
		{"inputs": "d", "parameters": map[string]any{"generate": map[string]any{
			"do_sample": true, "early_stopping": false, "max_new_tokens": int64(128), "top_p": 0.9,
		}}},
	}
	for _, w := range wires {
		in, err := DecodeTextToSpeechInput(w)
		require.NoError(t, err)
		assert.Equal(t, w, in.ToWire())

		again, err := DecodeTextToSpeechInput(in.ToWire())
		require.NoError(t, err)
		assert.Equal(t, in, again)
	}
}

func TestTextToSpeechInput_UnknownFields(t *testing.T) {
	wire := map[string]any{"inputs": "x", "voice": "alto", "parameters": map[string]any{"speed": 1.2}}

	in, err := DecodeTextToSpeechInput(wire)
	require.NoError(t, err)
	assert.Nil(t, in.Extra())
	assert.Equal(t, map[string]any{"inputs": "x", "parameters": map[string]any{}}, in.ToWire())

	kept, err := DecodeTextToSpeechInput(wire, schema.WithUnknownFields(schema.PreserveUnknown))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"voice": "alto"}, kept.Extra())
	assert.Equal(t, wire, kept.ToWire())

	_, err = DecodeTextToSpeechInput(wire, schema.WithUnknownFields(schema.RejectUnknown))
	assert.Error(t, err)
}

func TestTextToSpeechOutput(t *testing.T) {
	wire := map[string]any{
		"audio":                               []any{0.1, -0.2},
		"sampling_rate":                       int64(16000),
		"text_to_speech_output_sampling_rate": 16000.0,
	}
	out, err := DecodeTextToSpeechOutput(wire)
	require.NoError(t, err)
	assert.Equal(t, []any{0.1, -0.2}, out.Audio)
	assert.Equal(t, 16000.0, out.TextToSpeechOutputSamplingRate.OrElse(0))
	assert.Equal(t, wire, out.ToWire())

	out.ToWire()["audio"].([]any)[0] = 9.9
	assert.Equal(t, []any{0.1, -0.2}, out.ToWire()["audio"])

	_, err = DecodeTextToSpeechOutput(map[string]any{"audio": "x"})
	assert.ErrorContains(t, err, "sampling_rate")

	_, err = NewTextToSpeechOutput(nil, 16000, schema.Absent[float64]())
	assert.Error(t, err)
}

func TestRecords(t *testing.T) {
	names := []string{}
	for _, r := range Records() {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"GenerationParameters", "TextToAudioParameters", "TextToSpeechInput", "TextToSpeechOutput"}, names)
	assert.Len(t, GenerationParametersRecord.Fields(), 16)

	f, ok := GenerationParametersRecord.Field("early_stopping")
	require.True(t, ok)
	assert.Equal(t, `bool | "never"`, f.Type.Name())
}
