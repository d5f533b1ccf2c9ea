package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/inferschema"
	"github.com/aretw0/inferschema/pkg/schema"
	"gopkg.in/yaml.v3"
)

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// DecodeFile decodes the payload file at path against the named record.
// JSON files keep exact numbers; anything else is read as YAML.
func DecodeFile(ctx context.Context, cat *inferschema.Catalog, name, path string, opts ...schema.Option) (*schema.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	if isJSON(path) {
		return cat.DecodeJSON(ctx, name, data, opts...)
	}

	var wire map[string]any
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if wire == nil {
		wire = map[string]any{}
	}
	return cat.Decode(ctx, name, wire, opts...)
}

// ReadDefinitions reads one definition or a list of definitions from a
// JSON or YAML file.
func ReadDefinitions(path string) ([]schema.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions: %w", err)
	}

	unmarshal := yaml.Unmarshal
	if isJSON(path) {
		unmarshal = json.Unmarshal
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "-") {
		var defs []schema.Definition
		if err := unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return defs, nil
	}

	var def schema.Definition
	if err := unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return []schema.Definition{def}, nil
}

// WriteData marshals v as YAML, or as indented JSON when asJSON is set.
func WriteData(v any, asJSON bool) ([]byte, error) {
	if asJSON {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return yaml.Marshal(v)
}
