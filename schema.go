// Package ftdc models the record layouts of FTD-style futures trading
// protocols: named schemas of ordered, fixed-width fields, collected in a
// process-wide registry that is populated once at startup and read-only
// afterwards. The codec package transcodes records against these layouts.
package ftdc

import "github.com/pkg/errors"

// FieldDescriptor declares one field of a schema: its name, primitive
// kind and wire width. Width is derived from the kind for everything but
// String, whose fixed width is declared by the schema source.
type FieldDescriptor struct {
	Name  string
	Kind  Kind
	Width int
}

// StringField declares a fixed-width text field of width bytes.
func StringField(name string, width int) FieldDescriptor {
	return FieldDescriptor{Name: name, Kind: KindString, Width: width}
}

// Int32Field declares a 4-byte little-endian signed integer field.
func Int32Field(name string) FieldDescriptor {
	return FieldDescriptor{Name: name, Kind: KindInt32, Width: Int32Width}
}

// DoubleField declares an 8-byte IEEE-754 binary64 field.
func DoubleField(name string) FieldDescriptor {
	return FieldDescriptor{Name: name, Kind: KindDouble, Width: DoubleWidth}
}

// CharField declares a single-byte character code field.
func CharField(name string) FieldDescriptor {
	return FieldDescriptor{Name: name, Kind: KindChar, Width: CharWidth}
}

// Schema is a named, ordered field layout. Field order is significant: it
// fixes every field's wire position. Instances are immutable once built,
// so concurrent use needs no synchronization.
type Schema struct {
	name       string
	fields     []FieldDescriptor
	index      map[string]int
	offsets    []int
	totalWidth int
}

// NewSchema validates the declared fields and precomputes wire offsets.
// Width problems surface here, at registration time, never at codec time.
func NewSchema(name string, fields ...FieldDescriptor) (*Schema, error) {
	if name == "" {
		return nil, errors.Wrap(ErrInvalidSchema, "empty schema name")
	}

	if len(fields) == 0 {
		return nil, errors.Wrapf(ErrInvalidSchema, "schema %q declares no fields", name)
	}

	schema := Schema{
		name:    name,
		fields:  make([]FieldDescriptor, len(fields)),
		index:   make(map[string]int, len(fields)),
		offsets: make([]int, len(fields)),
	}

	offset := 0

	for idx, field := range fields {
		if field.Name == "" {
			return nil, errors.Wrapf(
				ErrInvalidSchema,
				"schema %q field[%d] has empty name", name, idx,
			)
		}

		if _, exist := schema.index[field.Name]; exist {
			return nil, errors.Wrapf(
				ErrInvalidSchema,
				"schema %q duplicates field %q", name, field.Name,
			)
		}

		if !field.Kind.Valid() {
			return nil, errors.Wrapf(
				ErrInvalidSchema,
				"schema %q field %q has unknown kind", name, field.Name,
			)
		}

		if derived, fixed := field.Kind.FixedWidth(); fixed {
			if field.Width == 0 {
				field.Width = derived
			} else if field.Width != derived {
				return nil, errors.Wrapf(
					ErrInvalidWidth,
					"schema %q field %q: %s is %d bytes, declared %d",
					name, field.Name, field.Kind, derived, field.Width,
				)
			}
		} else if field.Width <= 0 {
			return nil, errors.Wrapf(
				ErrInvalidWidth,
				"schema %q field %q: string width %d",
				name, field.Name, field.Width,
			)
		}

		schema.fields[idx] = field
		schema.index[field.Name] = idx
		schema.offsets[idx] = offset

		offset += field.Width
	}

	schema.totalWidth = offset

	return &schema, nil
}

// MustSchema is NewSchema for static declarations, panicking on error.
func MustSchema(name string, fields ...FieldDescriptor) *Schema {
	schema, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}

	return schema
}

func (schema *Schema) Name() string { return schema.name }

func (schema *Schema) NumFields() int { return len(schema.fields) }

// TotalWidth is the exact wire length of every record of this schema.
func (schema *Schema) TotalWidth() int { return schema.totalWidth }

// FieldAt returns the descriptor at position idx in declared order.
func (schema *Schema) FieldAt(idx int) FieldDescriptor {
	return schema.fields[idx]
}

// Field resolves a descriptor by name.
func (schema *Schema) Field(name string) (FieldDescriptor, bool) {
	if idx, exist := schema.index[name]; exist {
		return schema.fields[idx], true
	}

	return FieldDescriptor{}, false
}

// OffsetAt returns the wire offset of the field at position idx.
func (schema *Schema) OffsetAt(idx int) int {
	return schema.offsets[idx]
}

// Offset returns the wire offset of the named field.
func (schema *Schema) Offset(name string) (int, bool) {
	if idx, exist := schema.index[name]; exist {
		return schema.offsets[idx], true
	}

	return 0, false
}

// ForEachField walks fields in declared order until fn returns false.
func (schema *Schema) ForEachField(fn func(int, FieldDescriptor) bool) {
	for idx, field := range schema.fields {
		if !fn(idx, field) {
			break
		}
	}
}
