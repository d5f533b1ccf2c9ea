package texttospeech

import (
	"github.com/aretw0/inferschema/pkg/schema"
)

// EarlyStoppingEnum is the string form of the early_stopping union.
type EarlyStoppingEnum string

const EarlyStoppingNever EarlyStoppingEnum = "never"

// earlyStoppingType tries bool first, then the literal.
var earlyStoppingType = schema.Union(schema.Bool(), schema.Literal(string(EarlyStoppingNever))).(*schema.UnionType)

var GenerationParametersRecord = schema.MustRecord("GenerationParameters",
	"Parametrization of the text generation process\nAd-hoc parametrization of the text generation process",
	schema.OptionalField("do_sample", schema.Bool(),
		"Whether to use sampling instead of greedy decoding when generating new tokens."),
	schema.OptionalField("early_stopping", earlyStoppingType,
		"Controls the stopping condition for beam-based methods."),
	schema.OptionalField("epsilon_cutoff", schema.Float(),
		"If set to float strictly between 0 and 1, only tokens with a conditional probability "+
			"greater than epsilon_cutoff will be sampled. In the paper, suggested values range from "+
			"3e-4 to 9e-4, depending on the size of the model. See [Truncation Sampling as Language "+
			"Model Desmoothing](https://hf.co/papers/2210.15191) for more details."),
	schema.OptionalField("eta_cutoff", schema.Float(),
		"Eta sampling is a hybrid of locally typical sampling and epsilon sampling. If set to "+
			"float strictly between 0 and 1, a token is only considered if it is greater than either "+
			"eta_cutoff or sqrt(eta_cutoff) * exp(-entropy(softmax(next_token_logits))). The latter "+
			"term is intuitively the expected next token probability, scaled by sqrt(eta_cutoff). In "+
			"the paper, suggested values range from 3e-4 to 2e-3, depending on the size of the model. "+
			"See [Truncation Sampling as Language Model Desmoothing](https://hf.co/papers/2210.15191) "+
			"for more details."),
	schema.OptionalField("max_length", schema.Int(),
		"The maximum length (in tokens) of the generated text, including the input."),
	schema.OptionalField("max_new_tokens", schema.Int(),
		"The maximum number of tokens to generate. Takes precedence over maxLength."),
	schema.OptionalField("min_length", schema.Int(),
		"The minimum length (in tokens) of the generated text, including the input."),
	schema.OptionalField("min_new_tokens", schema.Int(),
		"The minimum number of tokens to generate. Takes precedence over maxLength."),
	schema.OptionalField("num_beam_groups", schema.Int(),
		"Number of groups to divide num_beams into in order to ensure diversity among different "+
			"groups of beams. See [this paper](https://hf.co/papers/1610.02424) for more details."),
	schema.OptionalField("num_beams", schema.Int(),
		"Number of beams to use for beam search."),
	schema.OptionalField("penalty_alpha", schema.Float(),
		"The value balances the model confidence and the degeneration penalty in contrastive "+
			"search decoding."),
	schema.OptionalField("temperature", schema.Float(),
		"The value used to modulate the next token probabilities."),
	schema.OptionalField("top_k", schema.Int(),
		"The number of highest probability vocabulary tokens to keep for top-k-filtering."),
	schema.OptionalField("top_p", schema.Float(),
		"If set to float < 1, only the smallest set of most probable tokens with probabilities "+
			"that add up to top_p or higher are kept for generation."),
	schema.OptionalField("typical_p", schema.Float(),
		"Local typicality measures how similar the conditional probability of predicting a target "+
			"token next is to the expected conditional probability of predicting a random token next, "+
			"given the partial text already generated. If set to float < 1, the smallest set of the "+
			"most locally typical tokens with probabilities that add up to typical_p or higher are "+
			"kept for generation. See [this paper](https://hf.co/papers/2202.00666) for more details."),
	schema.OptionalField("use_cache", schema.Bool(),
		"Whether the model should use the past last key/values attentions to speed up decoding"),
)

var TextToAudioParametersRecord = schema.MustRecord("TextToAudioParameters",
	"Additional inference parameters\nAdditional inference parameters for Text To Audio",
	schema.OptionalField("generate", GenerationParametersRecord,
		"Parametrization of the text generation process"),
)

var TextToSpeechInputRecord = schema.MustRecord("TextToSpeechInput",
	"Inputs for Text to Speech inference\nInputs for Text To Audio inference",
	schema.RequiredField("inputs", schema.String(), "The input text data"),
	schema.OptionalField("parameters", TextToAudioParametersRecord, "Additional inference parameters"),
)

// TextToSpeechOutputRecord keeps both sampling rate fields of the upstream
// schema; sampling_rate is untyped there.
var TextToSpeechOutputRecord = schema.MustRecord("TextToSpeechOutput",
	"Outputs for Text to Speech inference\nOutputs of inference for the Text To Audio task",
	schema.RequiredField("audio", schema.Any(), "The generated audio waveform."),
	schema.RequiredField("sampling_rate", schema.Any(), ""),
	schema.OptionalField("text_to_speech_output_sampling_rate", schema.Float(),
		"The sampling rate of the generated audio waveform."),
)

// Records lists the task's records, dependencies first.
func Records() []*schema.Record {
	return []*schema.Record{
		GenerationParametersRecord,
		TextToAudioParametersRecord,
		TextToSpeechInputRecord,
		TextToSpeechOutputRecord,
	}
}
