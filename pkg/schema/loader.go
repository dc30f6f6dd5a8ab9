package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/rule/openapi"
)

// Keys consumed by the loader. Everything else in a field entry is handed to
// kin-openapi as an OpenAPI schema object.
const (
	keyDefault = "default"
	keyMessage = "message"
	keyLabel   = "label"
	keyControl = "control"
	keyOptions = "options"
)

type schemaFile struct {
	Fields map[string]map[string]any `yaml:"fields"`
}

// LoadYAML builds a schema and its default values from a YAML document:
//
//	fields:
//	  size:
//	    type: number
//	    minimum: 5
//	    default: 0
//	    message: Must be at least 5
//
// Fields are internal-only; their In rule is an OpenAPI schema object.
func LoadYAML(data []byte) (Schema, map[string]any, error) {
	var file schemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Schema{}, nil, fmt.Errorf("schema: decode yaml: %w", err)
	}
	if len(file.Fields) == 0 {
		return Schema{}, nil, fmt.Errorf("schema: document declares no fields")
	}

	fields := make(map[string]Field, len(file.Fields))
	defaults := make(map[string]any)
	for name, entry := range file.Fields {
		field, def, hasDefault, err := fieldFromEntry(entry)
		if err != nil {
			return Schema{}, nil, fmt.Errorf("schema: field %q: %w", name, err)
		}
		fields[name] = field
		if hasDefault {
			defaults[name] = def
		}
	}

	s, err := New(fields)
	if err != nil {
		return Schema{}, nil, err
	}
	return s, defaults, nil
}

// Load decodes doc with LoadYAML.
func Load(doc Document) (Schema, map[string]any, error) {
	s, defaults, err := LoadYAML(doc.raw)
	if err != nil {
		return Schema{}, nil, fmt.Errorf("%s: %w", doc.Location(), err)
	}
	return s, defaults, nil
}

// LoadFile reads and decodes a schema file from disk.
func LoadFile(path string) (Schema, map[string]any, error) {
	doc, err := ReadDocument(SourceFromFile(path))
	if err != nil {
		return Schema{}, nil, err
	}
	return Load(doc)
}

func fieldFromEntry(entry map[string]any) (Field, any, bool, error) {
	schemaObj := make(map[string]any, len(entry))
	for k, v := range entry {
		schemaObj[k] = v
	}

	def, hasDefault := schemaObj[keyDefault]
	delete(schemaObj, keyDefault)

	var field Field
	var opts []openapi.Option
	if msg, ok := popString(schemaObj, keyMessage); ok {
		opts = append(opts, openapi.WithMessage(msg))
	}
	field.Label, _ = popString(schemaObj, keyLabel)
	if control, ok := popString(schemaObj, keyControl); ok {
		field.Control = Control(strings.ToLower(control))
	}
	if raw, ok := schemaObj[keyOptions]; ok {
		delete(schemaObj, keyOptions)
		field.Options = stringList(raw)
	}

	payload, err := json.Marshal(schemaObj)
	if err != nil {
		return Field{}, nil, false, fmt.Errorf("encode schema object: %w", err)
	}
	in, err := openapi.FromJSON(payload, opts...)
	if err != nil {
		return Field{}, nil, false, err
	}
	field.In = in

	if len(field.Options) == 0 {
		field.Options = stringList(in.Schema().Enum)
	}
	return field, def, hasDefault, nil
}

func popString(m map[string]any, key string) (string, bool) {
	raw, ok := m[key]
	if !ok {
		return "", false
	}
	delete(m, key)
	s, ok := raw.(string)
	return strings.TrimSpace(s), ok
}

func stringList(raw any) []string {
	var out []string
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
	case []string:
		out = append(out, v...)
	case map[string]any:
		for key := range v {
			out = append(out, key)
		}
		sort.Strings(out)
	}
	return out
}
