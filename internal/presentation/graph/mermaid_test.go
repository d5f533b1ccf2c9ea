package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/inferschema/internal/presentation/graph"
	"github.com/aretw0/inferschema/pkg/schema"
	"github.com/aretw0/inferschema/pkg/tasks/texttospeech"
)

func TestGenerateMermaid(t *testing.T) {
	voice := schema.MustRecord("voice.v1", "", schema.RequiredField("id", schema.String(), ""))
	take := schema.MustRecord("Take", "",
		schema.RequiredField("voice", voice, ""),
		schema.OptionalField("alternates", schema.Slice(voice), ""),
		schema.OptionalField("note", schema.String(), ""),
	)

	tests := []struct {
		name     string
		records  []*schema.Record
		overlay  *graph.Overlay
		contains []string
		excludes []string
	}{
		{
			name:    "Plain Records",
			records: []*schema.Record{voice, take},
			contains: []string{
				"graph TD\n",
				"voice_v1[\"voice.v1\"]",
				"Take[\"Take\"]",
				"Take -- \"voice\" --> voice_v1",
				"Take -. \"alternates[]\" .-> voice_v1",
			},
			excludes: []string{"note", "classDef"},
		},
		{
			name:    "Focus And Builtins",
			records: append(texttospeech.Records(), take),
			overlay: &graph.Overlay{
				Focus:   "Take",
				Builtin: func(name string) bool { return name != "Take" },
			},
			contains: []string{
				"Take((\"Take\"))",
				"TextToSpeechInput[[\"TextToSpeechInput\"]]",
				"TextToSpeechInput -. \"parameters\" .-> TextToAudioParameters",
				"TextToAudioParameters -. \"generate\" .-> GenerationParameters",
				"class Take focus;",
			},
		},
		{
			name: "Union Alternatives",
			records: []*schema.Record{
				schema.MustRecord("Either", "", schema.RequiredField("v", schema.Union(schema.Bool(), voice), "")),
			},
			contains: []string{"Either -- \"v\" --> voice_v1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.records, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("expected output to contain %q\ngot:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("expected output not to contain %q\ngot:\n%s", unwanted, got)
				}
			}
		})
	}
}
