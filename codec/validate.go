package codec

import (
	"fmt"

	"github.com/pkg/errors"

	ftdc "github.com/frozenpine/ftdc4go"
)

// Violation reports one field Encode would reject. Validation collects
// violations as data instead of failing on the first problem, so a
// caller can show everything wrong with a record at once.
type Violation struct {
	Schema string
	Field  string
	Err    error
}

func (v Violation) String() string {
	return fmt.Sprintf("%s.%s: %v", v.Schema, v.Field, v.Err)
}

// Validate preflights record against schema under the codec's config.
// A nil result guarantees Encode will succeed on the same inputs.
func (codec *RecordCodec) Validate(schema *ftdc.Schema, record ftdc.Record) []Violation {
	if schema == nil {
		return []Violation{{
			Err: errors.Wrap(ftdc.ErrInvalidSchema, "nil schema"),
		}}
	}

	var violations []Violation

	schema.ForEachField(func(_ int, field ftdc.FieldDescriptor) bool {
		if err := codec.checkField(field, record); err != nil {
			violations = append(violations, Violation{
				Schema: schema.Name(),
				Field:  field.Name,
				Err:    err,
			})
		}

		return true
	})

	return violations
}

func (codec *RecordCodec) checkField(field ftdc.FieldDescriptor, record ftdc.Record) error {
	value, exist := record[field.Name]
	if !exist {
		if codec.cfg.FillDefaults {
			return nil
		}

		return ftdc.ErrMissingField
	}

	switch field.Kind {
	case ftdc.KindString:
		text, err := ftdc.AsString(value)
		if err != nil {
			return err
		}

		if !codec.cfg.Strict {
			return nil
		}

		width, err := EncodedWidth(text, codec.cfg.Charset)
		if err != nil {
			return err
		}

		if width > field.Width {
			return errors.Wrapf(
				ftdc.ErrFieldTooLong,
				"%d bytes exceeds width %d", width, field.Width,
			)
		}
	case ftdc.KindInt32:
		_, err := ftdc.AsInt32(value)
		return err
	case ftdc.KindDouble:
		_, err := ftdc.AsDouble(value)
		return err
	case ftdc.KindChar:
		_, err := ftdc.AsChar(value)
		return err
	}

	return nil
}
