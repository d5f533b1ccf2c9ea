package observability_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/inferschema"
	"github.com/aretw0/inferschema/pkg/observability"
	"github.com/aretw0/inferschema/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	cat := inferschema.New(inferschema.WithHooks(m.Hooks()))
	ctx := context.Background()

	_, _ = cat.Decode(ctx, "TextToSpeechInput", map[string]any{"inputs": "hi"})
	_, _ = cat.Decode(ctx, "TextToSpeechInput", map[string]any{"inputs": "hi"})
	_, _ = cat.Decode(ctx, "TextToSpeechInput", map[string]any{"inputs": 1, "parameters": 2})
	_, _ = cat.Decode(ctx, "Nope", nil)

	_, err := cat.Register(ctx, schema.Definition{Name: "Tag", Fields: []schema.FieldDefinition{{Name: "v", Type: "string"}}})
	require.NoError(t, err)
	require.NoError(t, cat.Delete(ctx, "Tag"))

	expected := `
# HELP inferschema_decodes_total Total number of decode calls by record and outcome
# TYPE inferschema_decodes_total counter
inferschema_decodes_total{outcome="error",record="Nope"} 1
inferschema_decodes_total{outcome="invalid",record="TextToSpeechInput"} 1
inferschema_decodes_total{outcome="ok",record="TextToSpeechInput"} 2
# HELP inferschema_violations_total Total number of field violations reported by decode
# TYPE inferschema_violations_total counter
inferschema_violations_total{record="TextToSpeechInput"} 2
# HELP inferschema_record_changes_total Total number of changes to registered records
# TYPE inferschema_record_changes_total counter
inferschema_record_changes_total{kind="delete"} 1
inferschema_record_changes_total{kind="register"} 1
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"inferschema_decodes_total", "inferschema_violations_total", "inferschema_record_changes_total")
	assert.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "inferschema_decode_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetrics_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	m.Hooks().OnChange(context.Background(), &inferschema.ChangeEvent{Record: "X", Kind: inferschema.ChangeExternal})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `inferschema_record_changes_total{kind="external"} 1`)
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	observability.NewMetrics(reg)
	assert.Panics(t, func() { observability.NewMetrics(reg) })
}
