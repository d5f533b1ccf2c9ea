package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/inferschema/pkg/schema"
)

// Overlay marks records to highlight on the graph.
type Overlay struct {
	Builtin func(name string) bool
	Focus   string
}

// GenerateMermaid produces a Mermaid flowchart of records and the fields
// that reference other records.
// Shapes:
// - Focus: ((Circle))
// - Built-in: [[Subroutine]]
// - Default: [Rectangle]
// Required references are solid arrows, optional ones dotted. Slice
// fields are labelled with [].
func GenerateMermaid(records []*schema.Record, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, r := range records {
		safeID := sanitizeMermaidID(r.Name())

		opener, closer := "[", "]"
		switch {
		case overlay != nil && overlay.Focus == r.Name():
			opener, closer = "((", "))"
		case overlay != nil && overlay.Builtin != nil && overlay.Builtin(r.Name()):
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, r.Name(), closer)

		for _, f := range r.Fields() {
			for _, ref := range references(f.Type, false) {
				label := f.Name
				if ref.many {
					label += "[]"
				}
				arrow := fmt.Sprintf("-- \"%s\" -->", label)
				if !f.Required {
					arrow = fmt.Sprintf("-. \"%s\" .->", label)
				}
				fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(ref.record.Name()))
			}
		}
	}

	if overlay != nil && overlay.Focus != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef focus fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		fmt.Fprintf(&sb, "    class %s focus;\n", sanitizeMermaidID(overlay.Focus))
	}

	return sb.String()
}

type reference struct {
	record *schema.Record
	many   bool
}

func references(t schema.Type, many bool) []reference {
	switch v := t.(type) {
	case *schema.Record:
		return []reference{{record: v, many: many}}
	case *schema.SliceType:
		return references(v.Elem(), true)
	case *schema.UnionType:
		var out []reference
		for _, alt := range v.Alternatives() {
			out = append(out, references(alt, many)...)
		}
		return out
	}
	return nil
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
