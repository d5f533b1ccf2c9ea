package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolver maps record names used in type strings to records.
type Resolver interface {
	Resolve(name string) (*Record, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(name string) (*Record, error)

func (f ResolverFunc) Resolve(name string) (*Record, error) { return f(name) }

// Records is a Resolver over a fixed set of records, keyed by name.
type Records map[string]*Record

func (rs Records) Resolve(name string) (*Record, error) {
	if r, ok := rs[name]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("unknown record %q", name)
}

// ParseType converts a type string to a Type.
// Supports "string", "int", "float", "bool", "any", "[T]", quoted literals
// ("\"never\"") and unions ("bool | \"never\""). Record names are rejected;
// use ParseTypeWith to resolve them.
func ParseType(typeStr string) (Type, error) {
	return ParseTypeWith(typeStr, nil)
}

// ParseTypeWith is like ParseType but resolves bare identifiers as record names.
func ParseTypeWith(typeStr string, resolver Resolver) (Type, error) {
	parts, err := splitUnion(typeStr)
	if err != nil {
		return nil, err
	}
	if len(parts) == 1 {
		return parseSingle(parts[0], resolver)
	}

	alts := make([]Type, 0, len(parts))
	var literals []string
	allLiterals := true
	for _, p := range parts {
		t, err := parseSingle(p, resolver)
		if err != nil {
			return nil, err
		}
		if lit, ok := t.(*LiteralType); ok {
			literals = append(literals, lit.values...)
		} else {
			allLiterals = false
		}
		alts = append(alts, t)
	}
	if allLiterals {
		return Literal(literals...), nil
	}
	return Union(alts...), nil
}

func parseSingle(typeStr string, resolver Resolver) (Type, error) {
	typeStr = strings.TrimSpace(typeStr)
	if typeStr == "" {
		return nil, fmt.Errorf("empty type")
	}

	// Handle slice types: [string], [int], etc.
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemType, err := ParseTypeWith(typeStr[1:len(typeStr)-1], resolver)
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}

	if typeStr[0] == '"' {
		lit, err := strconv.Unquote(typeStr)
		if err != nil {
			return nil, fmt.Errorf("malformed literal %s: %w", typeStr, err)
		}
		return Literal(lit), nil
	}

	switch typeStr {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "any":
		return Any(), nil
	}

	if resolver == nil || !isIdentifier(typeStr) {
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
	r, err := resolver.Resolve(typeStr)
	if err != nil {
		return nil, fmt.Errorf("type %s: %w", typeStr, err)
	}
	return r, nil
}

// splitUnion splits on '|' outside of brackets and quotes.
func splitUnion(s string) ([]string, error) {
	var parts []string
	depth, start := 0, 0
	inQuote, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inQuote {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inQuote = false
			}
			continue
		}
		switch c {
		case '"':
			inQuote = true
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced brackets in %q", s)
			}
		case '|':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if inQuote || depth != 0 {
		return nil, fmt.Errorf("unterminated type %q", s)
	}
	return append(parts, s[start:]), nil
}

func isIdentifier(s string) bool {
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		case (c == '.' || c == '-') && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
