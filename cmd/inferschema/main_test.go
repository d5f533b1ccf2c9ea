package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/inferschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "inferschema version "+strings.TrimSpace(inferschema.Version)+"\n", out)
}

func TestRecords(t *testing.T) {
	out, _, err := run(t, "records")
	require.NoError(t, err)
	assert.Contains(t, out, "TextToSpeechInput (built-in)\n")
}

func TestDescribe(t *testing.T) {
	out, _, err := run(t, "describe", "TextToSpeechInput", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "# TextToSpeechInput")
	assert.Contains(t, out, "| `inputs` | `string` | yes |")

	_, _, err = run(t, "describe", "Nope")
	assert.ErrorIs(t, err, inferschema.ErrUnknownRecord)
}

func TestValidate(t *testing.T) {
	out, _, err := run(t, "validate", "TextToSpeechInput", writeFile(t, "ok.json", `{"inputs": "hello world"}`))
	require.NoError(t, err)
	assert.Contains(t, out, "is a valid TextToSpeechInput")

	_, errOut, err := run(t, "validate", "TextToSpeechInput", writeFile(t, "bad.yaml", "parameters:\n  generate:\n    top_k: 50\n"))
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, errOut, "inputs: ")
}

func TestNormalize(t *testing.T) {
	path := writeFile(t, "in.json", `{"inputs": "x", "voice": "alto", "parameters": {"generate": {"temperature": 1}}}`)

	out, _, err := run(t, "normalize", "TextToSpeechInput", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"inputs": "x", "parameters": {"generate": {"temperature": 1.0}}}`, out)

	out, _, err = run(t, "normalize", "TextToSpeechInput", path, "--unknown", "preserve", "--yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "voice: alto")
}

func TestExportImport(t *testing.T) {
	out, _, err := run(t, "export", "TextToSpeechInput", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"openapi": "3.0.3"`)
	assert.Contains(t, out, `"GenerationParameters"`)

	path := writeFile(t, "openapi.json", out)
	defs, _, err := run(t, "import", path)
	require.NoError(t, err)
	assert.Contains(t, defs, "name: TextToSpeechInput")
	assert.Contains(t, defs, "type: TextToAudioParameters")
}

func TestRegister(t *testing.T) {
	path := writeFile(t, "speaker.yaml", `
- name: Speaker
  fields:
    - name: voice
      type: string
      required: true
- name: Duet
  fields:
    - name: lead
      type: Speaker
`)
	out, _, err := run(t, "register", path)
	require.NoError(t, err)
	assert.Contains(t, out, "registered Speaker")
	assert.Contains(t, out, "registered Duet")

	_, _, err = run(t, "register", writeFile(t, "builtin.json", `{"name": "TextToSpeechInput", "fields": []}`))
	assert.ErrorIs(t, err, inferschema.ErrBuiltinRecord)
}

func TestGraph(t *testing.T) {
	out, _, err := run(t, "graph", "TextToSpeechInput")
	require.NoError(t, err)
	assert.Contains(t, out, "TextToSpeechInput((\"TextToSpeechInput\"))")
	assert.Contains(t, out, "GenerationParameters[[\"GenerationParameters\"]]")
	assert.NotContains(t, out, "TextToSpeechOutput")
}
