// Package dictionary loads schema registries from YAML data
// dictionaries.
//
// A dictionary is a mapping of schema names to field mappings, where
// field order is wire order:
//
//	ReqUserLogin:
//	  TradingDay: string(9)
//	  BrokerID: string(11)
//	  UserID: string(16)
//	  ClientIPPort: int
//
// Type tokens are exactly string(N), int, double and char. Loading
// returns a frozen registry, load failures are fatal to the caller's
// startup rather than recoverable per record.
package dictionary

import (
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	ftdc "github.com/frozenpine/ftdc4go"
)

// Load reads a dictionary from r and returns the frozen registry.
func Load(r io.Reader) (*ftdc.Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read dictionary")
	}

	return LoadBytes(data)
}

// LoadFile reads a dictionary file and returns the frozen registry.
func LoadFile(path string) (*ftdc.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read dictionary %s", path)
	}

	return LoadBytes(data)
}

// LoadBytes parses dictionary source. The YAML is walked as a node tree
// so schema and field declaration order survives into the registry.
func LoadBytes(data []byte) (*ftdc.Registry, error) {
	var doc yaml.Node

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "dictionary not valid yaml")
	}

	registry := ftdc.NewRegistry()

	if len(doc.Content) > 0 {
		if err := fillRegistry(registry, doc.Content[0]); err != nil {
			return nil, err
		}
	}

	registry.Freeze()

	return registry, nil
}

func fillRegistry(registry *ftdc.Registry, root *yaml.Node) error {
	if root.Kind != yaml.MappingNode {
		return errors.Wrapf(
			ftdc.ErrInvalidSchema,
			"line %d: dictionary root must be a mapping", root.Line,
		)
	}

	for i := 0; i < len(root.Content); i += 2 {
		nameNode, bodyNode := root.Content[i], root.Content[i+1]

		schema, err := parseSchema(nameNode.Value, bodyNode)
		if err != nil {
			return err
		}

		if err := registry.Register(schema); err != nil {
			return errors.WithMessagef(err, "line %d", nameNode.Line)
		}
	}

	return nil
}

func parseSchema(name string, body *yaml.Node) (*ftdc.Schema, error) {
	if body.Kind != yaml.MappingNode {
		return nil, errors.Wrapf(
			ftdc.ErrInvalidSchema,
			"line %d: schema %q must be a mapping of fields", body.Line, name,
		)
	}

	fields := make([]ftdc.FieldDescriptor, 0, len(body.Content)/2)

	for i := 0; i < len(body.Content); i += 2 {
		fieldNode, tokenNode := body.Content[i], body.Content[i+1]

		field, err := parseField(fieldNode.Value, tokenNode.Value)
		if err != nil {
			return nil, errors.WithMessagef(
				err, "line %d: schema %q", tokenNode.Line, name,
			)
		}

		fields = append(fields, field)
	}

	return ftdc.NewSchema(name, fields...)
}

var stringToken = regexp.MustCompile(`^string\(([0-9]+)\)$`)

func parseField(name, token string) (ftdc.FieldDescriptor, error) {
	if match := stringToken.FindStringSubmatch(token); match != nil {
		width, err := strconv.Atoi(match[1])
		if err != nil {
			return ftdc.FieldDescriptor{}, errors.Wrapf(
				ftdc.ErrInvalidWidth, "field %q width %q", name, match[1],
			)
		}

		if width < 1 {
			return ftdc.FieldDescriptor{}, errors.Wrapf(
				ftdc.ErrInvalidWidth, "field %q width %d", name, width,
			)
		}

		return ftdc.StringField(name, width), nil
	}

	kind, err := ftdc.ParseKind(token)
	if err != nil {
		return ftdc.FieldDescriptor{}, errors.WithMessagef(err, "field %q", name)
	}

	if kind == ftdc.KindString {
		return ftdc.FieldDescriptor{}, errors.Wrapf(
			ftdc.ErrInvalidWidth,
			"field %q: string requires a declared width", name,
		)
	}

	return ftdc.FieldDescriptor{Name: name, Kind: kind}, nil
}
