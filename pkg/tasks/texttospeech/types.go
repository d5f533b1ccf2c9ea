package texttospeech

import (
	"github.com/aretw0/inferschema/pkg/schema"
)

// GenerationParameters parametrizes the text generation process.
type GenerationParameters struct {
	DoSample      schema.Optional[bool]
	EarlyStopping schema.Optional[EarlyStopping]
	EpsilonCutoff schema.Optional[float64]
	EtaCutoff     schema.Optional[float64]
	MaxLength     schema.Optional[int64]
	MaxNewTokens  schema.Optional[int64]
	MinLength     schema.Optional[int64]
	MinNewTokens  schema.Optional[int64]
	NumBeamGroups schema.Optional[int64]
	NumBeams      schema.Optional[int64]
	PenaltyAlpha  schema.Optional[float64]
	Temperature   schema.Optional[float64]
	TopK          schema.Optional[int64]
	TopP          schema.Optional[float64]
	TypicalP      schema.Optional[float64]
	UseCache      schema.Optional[bool]

	extra map[string]any
}

// TextToAudioParameters carries additional inference parameters.
type TextToAudioParameters struct {
	Generate schema.Optional[GenerationParameters]

	extra map[string]any
}

// TextToSpeechInput is the request body of a text-to-speech call.
type TextToSpeechInput struct {
	Inputs     string
	Parameters schema.Optional[TextToAudioParameters]

	extra map[string]any
}

// TextToSpeechOutput is the response body of a text-to-speech call.
type TextToSpeechOutput struct {
	Audio                          any
	SamplingRate                   any
	TextToSpeechOutputSamplingRate schema.Optional[float64]

	extra map[string]any
}

// NewTextToAudioParameters builds validated parameters.
func NewTextToAudioParameters(generate schema.Optional[GenerationParameters]) (TextToAudioParameters, error) {
	p := TextToAudioParameters{Generate: generate}
	if _, err := TextToAudioParametersRecord.Construct(p.ToWire()); err != nil {
		return TextToAudioParameters{}, err
	}
	return p, nil
}

// NewTextToSpeechInput builds a validated request.
func NewTextToSpeechInput(inputs string, parameters schema.Optional[TextToAudioParameters]) (TextToSpeechInput, error) {
	in := TextToSpeechInput{Inputs: inputs, Parameters: parameters}
	if _, err := TextToSpeechInputRecord.Construct(in.ToWire()); err != nil {
		return TextToSpeechInput{}, err
	}
	return in, nil
}

// NewTextToSpeechOutput builds a validated response.
func NewTextToSpeechOutput(audio, samplingRate any, rate schema.Optional[float64]) (TextToSpeechOutput, error) {
	out := TextToSpeechOutput{Audio: audio, SamplingRate: samplingRate, TextToSpeechOutputSamplingRate: rate}
	if _, err := TextToSpeechOutputRecord.Construct(out.ToWire()); err != nil {
		return TextToSpeechOutput{}, err
	}
	return out, nil
}

// Validate checks p against GenerationParametersRecord. GenerationParameters
// has no required fields, so it is built as a literal and validated here.
func (p GenerationParameters) Validate() error {
	_, err := schema.Decode(GenerationParametersRecord, p.ToWire(), schema.WithUnknownFields(schema.PreserveUnknown))
	return err
}

func (p TextToAudioParameters) Validate() error {
	_, err := schema.Decode(TextToAudioParametersRecord, p.ToWire(), schema.WithUnknownFields(schema.PreserveUnknown))
	return err
}

func (in TextToSpeechInput) Validate() error {
	_, err := schema.Decode(TextToSpeechInputRecord, in.ToWire(), schema.WithUnknownFields(schema.PreserveUnknown))
	return err
}

func (out TextToSpeechOutput) Validate() error {
	_, err := schema.Decode(TextToSpeechOutputRecord, out.ToWire(), schema.WithUnknownFields(schema.PreserveUnknown))
	return err
}

// ToWire renders p, re-emitting keys kept by PreserveUnknown.
func (p GenerationParameters) ToWire() map[string]any {
	w := wireWith(p.extra)
	schema.Put(w, "do_sample", p.DoSample)
	schema.PutFunc(w, "early_stopping", p.EarlyStopping, EarlyStopping.Wire)
	schema.Put(w, "epsilon_cutoff", p.EpsilonCutoff)
	schema.Put(w, "eta_cutoff", p.EtaCutoff)
	schema.Put(w, "max_length", p.MaxLength)
	schema.Put(w, "max_new_tokens", p.MaxNewTokens)
	schema.Put(w, "min_length", p.MinLength)
	schema.Put(w, "min_new_tokens", p.MinNewTokens)
	schema.Put(w, "num_beam_groups", p.NumBeamGroups)
	schema.Put(w, "num_beams", p.NumBeams)
	schema.Put(w, "penalty_alpha", p.PenaltyAlpha)
	schema.Put(w, "temperature", p.Temperature)
	schema.Put(w, "top_k", p.TopK)
	schema.Put(w, "top_p", p.TopP)
	schema.Put(w, "typical_p", p.TypicalP)
	schema.Put(w, "use_cache", p.UseCache)
	return w
}

func (p TextToAudioParameters) ToWire() map[string]any {
	w := wireWith(p.extra)
	schema.PutFunc(w, "generate", p.Generate, func(g GenerationParameters) any { return g.ToWire() })
	return w
}

func (in TextToSpeechInput) ToWire() map[string]any {
	w := wireWith(in.extra)
	w["inputs"] = in.Inputs
	schema.PutFunc(w, "parameters", in.Parameters, func(p TextToAudioParameters) any { return p.ToWire() })
	return w
}

func (out TextToSpeechOutput) ToWire() map[string]any {
	w := wireWith(out.extra)
	w["audio"] = cloneAny(out.Audio)
	w["sampling_rate"] = cloneAny(out.SamplingRate)
	schema.Put(w, "text_to_speech_output_sampling_rate", out.TextToSpeechOutputSamplingRate)
	return w
}

// Extra returns undeclared keys kept by PreserveUnknown, or nil.
func (p GenerationParameters) Extra() map[string]any  { return copyExtra(p.extra) }
func (p TextToAudioParameters) Extra() map[string]any { return copyExtra(p.extra) }
func (in TextToSpeechInput) Extra() map[string]any    { return copyExtra(in.extra) }
func (out TextToSpeechOutput) Extra() map[string]any  { return copyExtra(out.extra) }

func wireWith(extra map[string]any) map[string]any {
	w := make(map[string]any, len(extra)+4)
	for k, v := range extra {
		w[k] = cloneAny(v)
	}
	return w
}

// cloneAny copies free-form containers so callers cannot alias a record.
func cloneAny(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = cloneAny(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneAny(e)
		}
		return out
	}
	return v
}

func copyExtra(extra map[string]any) map[string]any {
	if len(extra) == 0 {
		return nil
	}
	return wireWith(extra)
}
