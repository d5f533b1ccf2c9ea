package inferschema_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/inferschema"
	"github.com/aretw0/inferschema/pkg/adapters/memory"
	"github.com/aretw0/inferschema/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var speaker = schema.Definition{
	Name: "Speaker",
	Doc:  "Voice selection",
	Fields: []schema.FieldDefinition{
		{Name: "voice", Type: `"alto" | "tenor"`, Required: true, Doc: "Voice preset"},
		{Name: "speed", Type: "float"},
	},
}

func TestCatalog_Builtins(t *testing.T) {
	cat := inferschema.New()
	ctx := context.Background()

	names, err := cat.Records(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"GenerationParameters", "TextToAudioParameters", "TextToSpeechInput", "TextToSpeechOutput"}, names)

	obj, err := cat.Decode(ctx, "TextToSpeechInput", map[string]any{"inputs": "hello world", "voice": "x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"inputs": "hello world"}, obj.ToWire())

	_, err = cat.Decode(ctx, "TextToSpeechInput", map[string]any{
		"parameters": map[string]any{"generate": map[string]any{"temperature": 0.7, "top_k": 50}},
	})
	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "inputs", ve.Key)

	_, err = cat.Decode(ctx, "Nope", map[string]any{})
	assert.ErrorIs(t, err, inferschema.ErrUnknownRecord)
}

func TestCatalog_DecodeDefaults(t *testing.T) {
	ctx := context.Background()
	wire := map[string]any{"inputs": "x", "voice": "alto"}

	strict := inferschema.New(inferschema.WithUnknownFields(schema.RejectUnknown))
	_, err := strict.Decode(ctx, "TextToSpeechInput", wire)
	assert.Error(t, err)

	// per-call options win over catalog defaults
	out, err := strict.Normalize(ctx, "TextToSpeechInput", wire, schema.WithUnknownFields(schema.PreserveUnknown))
	require.NoError(t, err)
	assert.Equal(t, wire, out)

	strict.SetDecodeDefaults(schema.DropUnknown, 4)
	p, depth := strict.DecodeDefaults()
	assert.Equal(t, schema.DropUnknown, p)
	assert.Equal(t, 4, depth)
	_, err = strict.Decode(ctx, "TextToSpeechInput", wire)
	assert.NoError(t, err)
}

func TestCatalog_Register(t *testing.T) {
	ctx := context.Background()
	cat := inferschema.New()

	_, err := cat.Register(ctx, speaker)
	require.NoError(t, err)

	request := schema.Definition{
		Name: "SpeechRequest",
		Fields: []schema.FieldDefinition{
			{Name: "input", Type: "TextToSpeechInput", Required: true},
			{Name: "speakers", Type: "[Speaker]"},
		},
	}
	_, err = cat.Register(ctx, request)
	require.NoError(t, err)

	names, err := cat.Records(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "Speaker")
	assert.Contains(t, names, "SpeechRequest")

	wire := map[string]any{
		"input":    map[string]any{"inputs": "hi"},
		"speakers": []any{map[string]any{"voice": "alto", "speed": 1}},
	}
	out, err := cat.Normalize(ctx, "SpeechRequest", wire)
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"voice": "alto", "speed": 1.0}}, out["speakers"])

	_, err = cat.Decode(ctx, "SpeechRequest", map[string]any{
		"input":    map[string]any{"inputs": "hi"},
		"speakers": []any{map[string]any{"voice": "bass"}},
	})
	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "speakers[0].voice", ve.Key)
}

func TestCatalog_RegisterErrors(t *testing.T) {
	ctx := context.Background()
	cat := inferschema.New()

	_, err := cat.Register(ctx, schema.Definition{Name: "TextToSpeechInput"})
	assert.ErrorIs(t, err, inferschema.ErrBuiltinRecord)

	_, err = cat.Register(ctx, schema.Definition{Name: "Orphan", Fields: []schema.FieldDefinition{{Name: "x", Type: "Missing"}}})
	assert.ErrorIs(t, err, inferschema.ErrUnknownRecord)

	_, err = cat.Register(ctx, schema.Definition{Name: "Self", Fields: []schema.FieldDefinition{{Name: "x", Type: "Self"}}})
	assert.ErrorIs(t, err, inferschema.ErrRecordCycle)
	assert.ErrorIs(t, err, inferschema.ErrInvalidDefinition)

	_, err = cat.Register(ctx, schema.Definition{Name: "bad name"})
	assert.ErrorIs(t, err, inferschema.ErrInvalidDefinition)

	assert.ErrorIs(t, cat.Delete(ctx, "TextToSpeechInput"), inferschema.ErrBuiltinRecord)
	assert.ErrorIs(t, cat.Delete(ctx, "Missing"), inferschema.ErrUnknownRecord)
}

func TestCatalog_RegisterRejectsCycleThroughCache(t *testing.T) {
	ctx := context.Background()
	cat := inferschema.New()

	_, err := cat.Register(ctx, schema.Definition{Name: "A", Fields: []schema.FieldDefinition{{Name: "n", Type: "int"}}})
	require.NoError(t, err)
	_, err = cat.Register(ctx, schema.Definition{Name: "B", Fields: []schema.FieldDefinition{{Name: "a", Type: "A"}}})
	require.NoError(t, err)
	_, err = cat.Record(ctx, "B")
	require.NoError(t, err)

	_, err = cat.Register(ctx, schema.Definition{Name: "A", Fields: []schema.FieldDefinition{{Name: "b", Type: "B"}}})
	assert.ErrorIs(t, err, inferschema.ErrRecordCycle)
}

func TestCatalog_ChangesReachDependents(t *testing.T) {
	ctx := context.Background()
	cat := inferschema.New()

	_, err := cat.Register(ctx, speaker)
	require.NoError(t, err)
	_, err = cat.Register(ctx, schema.Definition{Name: "Wrapper", Fields: []schema.FieldDefinition{{Name: "s", Type: "Speaker", Required: true}}})
	require.NoError(t, err)

	_, err = cat.Decode(ctx, "Wrapper", map[string]any{"s": map[string]any{"voice": "alto"}})
	require.NoError(t, err)

	loose := speaker
	loose.Fields = []schema.FieldDefinition{{Name: "voice", Type: "string", Required: true}}
	_, err = cat.Register(ctx, loose)
	require.NoError(t, err)

	_, err = cat.Decode(ctx, "Wrapper", map[string]any{"s": map[string]any{"voice": "bass"}})
	assert.NoError(t, err, "Wrapper must see the new Speaker")

	require.NoError(t, cat.Delete(ctx, "Speaker"))
	_, err = cat.Decode(ctx, "Wrapper", map[string]any{"s": map[string]any{"voice": "bass"}})
	assert.ErrorIs(t, err, inferschema.ErrUnknownRecord)
}

func TestCatalog_Hooks(t *testing.T) {
	ctx := context.Background()
	var mu sync.Mutex
	var decodes []inferschema.DecodeEvent
	var changes []inferschema.ChangeEvent

	hooks := inferschema.Hooks{
		OnDecode: func(_ context.Context, e *inferschema.DecodeEvent) {
			mu.Lock()
			defer mu.Unlock()
			decodes = append(decodes, *e)
		},
	}.Merge(inferschema.Hooks{
		OnChange: func(_ context.Context, e *inferschema.ChangeEvent) {
			mu.Lock()
			defer mu.Unlock()
			changes = append(changes, *e)
		},
	})
	cat := inferschema.New(inferschema.WithHooks(hooks))

	_, _ = cat.Decode(ctx, "TextToSpeechInput", map[string]any{"inputs": "x"})
	_, _ = cat.Decode(ctx, "TextToSpeechInput", map[string]any{"inputs": 1, "parameters": 2})
	_, _ = cat.Decode(ctx, "Missing", nil)
	_, _ = cat.Register(ctx, speaker)
	_ = cat.Delete(ctx, "Speaker")

	require.Len(t, decodes, 3)
	assert.Equal(t, inferschema.OutcomeOK, decodes[0].Outcome)
	assert.Equal(t, inferschema.OutcomeInvalid, decodes[1].Outcome)
	assert.Equal(t, 2, decodes[1].Violations)
	assert.Equal(t, inferschema.OutcomeError, decodes[2].Outcome)

	assert.Equal(t, []inferschema.ChangeEvent{
		{Record: "Speaker", Kind: inferschema.ChangeRegister},
		{Record: "Speaker", Kind: inferschema.ChangeDelete},
	}, changes)
}

func TestCatalog_DefinitionAndDescribe(t *testing.T) {
	ctx := context.Background()
	store, err := memory.NewFromDefinitions(speaker)
	require.NoError(t, err)
	cat := inferschema.New(inferschema.WithStore(store))

	def, err := cat.Definition(ctx, "Speaker")
	require.NoError(t, err)
	assert.Equal(t, speaker, def)

	def, err = cat.Definition(ctx, "TextToSpeechInput")
	require.NoError(t, err)
	assert.Equal(t, "parameters", def.Fields[1].Name)
	assert.Equal(t, "TextToAudioParameters", def.Fields[1].Type)

	md, err := cat.Describe(ctx, "TextToSpeechInput")
	require.NoError(t, err)
	assert.Contains(t, md, "# TextToSpeechInput")
	assert.Contains(t, md, "## TextToAudioParameters")
	assert.Contains(t, md, "## GenerationParameters")
	assert.Contains(t, md, "| `early_stopping` | `bool \\| \"never\"` | no |")

	md, err = cat.Describe(ctx, "Speaker")
	require.NoError(t, err)
	assert.Contains(t, md, "| `voice` | `\"alto\" \\| \"tenor\"` | yes | Voice preset |")
	assert.NotContains(t, md, "*built-in*")

	_, err = cat.Definition(ctx, "Nope")
	assert.ErrorIs(t, err, inferschema.ErrUnknownRecord)
}

func TestCatalog_WatchUnsupported(t *testing.T) {
	cat := inferschema.New()
	assert.Error(t, cat.Watch(context.Background()))
}

func TestCatalog_Concurrent(t *testing.T) {
	ctx := context.Background()
	cat := inferschema.New()
	_, err := cat.Register(ctx, speaker)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := cat.Decode(ctx, "Speaker", map[string]any{"voice": "alto"})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			cat.Invalidate()
		}()
	}
	wg.Wait()
}
