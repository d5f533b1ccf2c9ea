package inferschema

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/inferschema/pkg/schema"
)

// Describe renders a record and the records it references as Markdown.
func (c *Catalog) Describe(ctx context.Context, name string) (string, error) {
	r, err := c.Record(ctx, name)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	writeRecord(&b, "#", r, c.IsBuiltin(name))
	for _, dep := range schema.Dependencies(r) {
		b.WriteString("\n")
		writeRecord(&b, "##", dep, c.IsBuiltin(dep.Name()))
	}
	return b.String(), nil
}

func writeRecord(b *strings.Builder, heading string, r *schema.Record, builtin bool) {
	fmt.Fprintf(b, "%s %s\n\n", heading, r.Name())
	if builtin {
		b.WriteString("*built-in*\n\n")
	}
	if r.Doc() != "" {
		fmt.Fprintf(b, "%s\n\n", r.Doc())
	}

	fields := r.Fields()
	if len(fields) == 0 {
		b.WriteString("No fields.\n")
		return
	}
	b.WriteString("| Field | Type | Required | Description |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, f := range fields {
		required := "no"
		if f.Required {
			required = "yes"
		}
		fmt.Fprintf(b, "| `%s` | `%s` | %s | %s |\n", f.Name, cell(f.Type.Name()), required, cell(f.Doc))
	}
}

// cell makes text safe inside a table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
