package texttospeech

import (
	"github.com/aretw0/inferschema/pkg/schema"
)

// DecodeGenerationParameters validates wire against GenerationParametersRecord.
func DecodeGenerationParameters(wire map[string]any, opts ...schema.Option) (GenerationParameters, error) {
	obj, err := schema.Decode(GenerationParametersRecord, wire, opts...)
	if err != nil {
		return GenerationParameters{}, err
	}
	return generationParametersFrom(obj)
}

// DecodeTextToAudioParameters validates wire against TextToAudioParametersRecord.
func DecodeTextToAudioParameters(wire map[string]any, opts ...schema.Option) (TextToAudioParameters, error) {
	obj, err := schema.Decode(TextToAudioParametersRecord, wire, opts...)
	if err != nil {
		return TextToAudioParameters{}, err
	}
	return textToAudioParametersFrom(obj)
}

// DecodeTextToSpeechInput validates wire against TextToSpeechInputRecord.
func DecodeTextToSpeechInput(wire map[string]any, opts ...schema.Option) (TextToSpeechInput, error) {
	obj, err := schema.Decode(TextToSpeechInputRecord, wire, opts...)
	if err != nil {
		return TextToSpeechInput{}, err
	}
	return textToSpeechInputFrom(obj)
}

// DecodeTextToSpeechOutput validates wire against TextToSpeechOutputRecord.
func DecodeTextToSpeechOutput(wire map[string]any, opts ...schema.Option) (TextToSpeechOutput, error) {
	obj, err := schema.Decode(TextToSpeechOutputRecord, wire, opts...)
	if err != nil {
		return TextToSpeechOutput{}, err
	}
	return textToSpeechOutputFrom(obj)
}

// fields reads an Object's canonical values, keeping the first error.
type fields struct {
	obj *schema.Object
	err error
}

func get[T any](f *fields, name string) schema.Optional[T] {
	if f.err != nil {
		return schema.Absent[T]()
	}
	v, err := schema.Lookup[T](f.obj, name)
	if err != nil {
		f.err = err
	}
	return v
}

func nested[T any](f *fields, name string, conv func(*schema.Object) (T, error)) schema.Optional[T] {
	o := get[*schema.Object](f, name)
	if f.err != nil {
		return schema.Absent[T]()
	}
	v, err := schema.Map(o, conv)
	if err != nil {
		f.err = err
	}
	return v
}

func generationParametersFrom(obj *schema.Object) (GenerationParameters, error) {
	f := &fields{obj: obj}
	p := GenerationParameters{
		DoSample:      get[bool](f, "do_sample"),
		EpsilonCutoff: get[float64](f, "epsilon_cutoff"),
		EtaCutoff:     get[float64](f, "eta_cutoff"),
		MaxLength:     get[int64](f, "max_length"),
		MaxNewTokens:  get[int64](f, "max_new_tokens"),
		MinLength:     get[int64](f, "min_length"),
		MinNewTokens:  get[int64](f, "min_new_tokens"),
		NumBeamGroups: get[int64](f, "num_beam_groups"),
		NumBeams:      get[int64](f, "num_beams"),
		PenaltyAlpha:  get[float64](f, "penalty_alpha"),
		Temperature:   get[float64](f, "temperature"),
		TopK:          get[int64](f, "top_k"),
		TopP:          get[float64](f, "top_p"),
		TypicalP:      get[float64](f, "typical_p"),
		UseCache:      get[bool](f, "use_cache"),
		extra:         obj.Extra(),
	}
	if f.err != nil {
		return GenerationParameters{}, f.err
	}
	es, err := schema.Map(get[any](f, "early_stopping"), ParseEarlyStopping)
	if err != nil {
		return GenerationParameters{}, err
	}
	p.EarlyStopping = es
	return p, f.err
}

func textToAudioParametersFrom(obj *schema.Object) (TextToAudioParameters, error) {
	f := &fields{obj: obj}
	p := TextToAudioParameters{
		Generate: nested(f, "generate", generationParametersFrom),
		extra:    obj.Extra(),
	}
	return p, f.err
}

func textToSpeechInputFrom(obj *schema.Object) (TextToSpeechInput, error) {
	f := &fields{obj: obj}
	in := TextToSpeechInput{
		Inputs:     get[string](f, "inputs").OrElse(""),
		Parameters: nested(f, "parameters", textToAudioParametersFrom),
		extra:      obj.Extra(),
	}
	return in, f.err
}

func textToSpeechOutputFrom(obj *schema.Object) (TextToSpeechOutput, error) {
	f := &fields{obj: obj}
	out := TextToSpeechOutput{
		Audio:                          get[any](f, "audio").OrElse(nil),
		SamplingRate:                   get[any](f, "sampling_rate").OrElse(nil),
		TextToSpeechOutputSamplingRate: get[float64](f, "text_to_speech_output_sampling_rate"),
		extra:                          obj.Extra(),
	}
	return out, f.err
}
