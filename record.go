package ftdc

import (
	"math"

	"github.com/pkg/errors"
)

// Record holds one message's field values keyed by field name. Values are
// dynamically typed; the typed accessors and the codec coerce them against
// the schema's declared kinds.
type Record map[string]any

// NewRecord allocates a record with every field of schema set to its
// kind's zero value.
func NewRecord(schema *Schema) Record {
	record := make(Record, schema.NumFields())

	schema.ForEachField(func(_ int, field FieldDescriptor) bool {
		record[field.Name] = ZeroValue(field.Kind)
		return true
	})

	return record
}

// Clone makes a shallow copy. Field values are primitives, so the copy
// is independent for all codec purposes.
func (record Record) Clone() Record {
	dup := make(Record, len(record))

	for name, value := range record {
		dup[name] = value
	}

	return dup
}

// GetString reads a field as text.
func (record Record) GetString(name string) (string, error) {
	value, exist := record[name]
	if !exist {
		return "", errors.Wrapf(ErrMissingField, "field: %q", name)
	}

	return AsString(value)
}

// GetInt32 reads a field as a 32-bit signed integer.
func (record Record) GetInt32(name string) (int32, error) {
	value, exist := record[name]
	if !exist {
		return 0, errors.Wrapf(ErrMissingField, "field: %q", name)
	}

	return AsInt32(value)
}

// GetDouble reads a field as a float64.
func (record Record) GetDouble(name string) (float64, error) {
	value, exist := record[name]
	if !exist {
		return 0, errors.Wrapf(ErrMissingField, "field: %q", name)
	}

	return AsDouble(value)
}

// GetChar reads a field as a single byte code.
func (record Record) GetChar(name string) (byte, error) {
	value, exist := record[name]
	if !exist {
		return 0, errors.Wrapf(ErrMissingField, "field: %q", name)
	}

	return AsChar(value)
}

// ZeroValue returns the canonical zero for a field kind: empty string,
// zero int32, zero float64, NUL byte.
func ZeroValue(kind Kind) any {
	switch kind {
	case KindString:
		return ""
	case KindInt32:
		return int32(0)
	case KindDouble:
		return float64(0)
	case KindChar:
		return byte(0)
	default:
		return nil
	}
}

// AsString coerces a record value to text. Only string values qualify,
// char codes are deliberately not promoted.
func AsString(value any) (string, error) {
	if text, ok := value.(string); ok {
		return text, nil
	}

	return "", errors.Wrapf(ErrKindMismatch, "%T is not a string", value)
}

// AsInt32 coerces a record value to int32. Wider integer inputs are
// accepted when they fit, out-of-range values fail rather than wrap.
func AsInt32(value any) (int32, error) {
	switch v := value.(type) {
	case int32:
		return v, nil
	case int:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return 0, errors.Wrapf(ErrKindMismatch, "int %d out of int32 range", v)
		}

		return int32(v), nil
	case int64:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return 0, errors.Wrapf(ErrKindMismatch, "int64 %d out of int32 range", v)
		}

		return int32(v), nil
	default:
		return 0, errors.Wrapf(ErrKindMismatch, "%T is not an int32", value)
	}
}

// AsDouble coerces a record value to float64. Integer inputs are widened,
// matching how schema sources often declare numeric defaults.
func AsDouble(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, errors.Wrapf(ErrKindMismatch, "%T is not a double", value)
	}
}

// AsChar coerces a record value to a one-byte code. A one-byte string is
// accepted as a convenience, anything longer or empty is rejected.
func AsChar(value any) (byte, error) {
	switch v := value.(type) {
	case byte:
		return v, nil
	case rune:
		if v < 0 || v > 0xff {
			return 0, errors.Wrapf(ErrInvalidChar, "rune %q exceeds one byte", v)
		}

		return byte(v), nil
	case string:
		if len(v) != 1 {
			return 0, errors.Wrapf(
				ErrInvalidChar, "char value %q must be exactly one byte", v,
			)
		}

		return v[0], nil
	default:
		return 0, errors.Wrapf(ErrKindMismatch, "%T is not a char", value)
	}
}
