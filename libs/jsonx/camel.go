package jsonx

import (
	"strings"
	"unicode"

	jsoniter "github.com/json-iterator/go"
)

// camelCaseExtension renames snake_case and exported names to lowerCamelCase on output.
// Both names are accepted on input.
type camelCaseExtension struct {
	jsoniter.DummyExtension
}

func (e *camelCaseExtension) UpdateStructDescriptor(desc *jsoniter.StructDescriptor) {
	for _, binding := range desc.Fields {
		tag := binding.Field.Tag().Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = binding.Field.Name()
		}
		camel := toLowerFirstCamel(name)
		if camel == name {
			continue
		}
		binding.ToNames = []string{camel}
		binding.FromNames = []string{camel, name}
	}
}

// toLowerFirstCamel turns "vault_a" into "vaultA" and "MaxSupply" into "maxSupply".
func toLowerFirstCamel(s string) string {
	var sb strings.Builder
	upper := false
	for _, r := range s {
		switch {
		case r == '_':
			upper = sb.Len() > 0
		case sb.Len() == 0:
			sb.WriteRune(unicode.ToLower(r))
		case upper:
			sb.WriteRune(unicode.ToUpper(r))
			upper = false
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
