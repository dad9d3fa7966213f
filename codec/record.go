package codec

import (
	"io"
	"sync"

	"github.com/pkg/errors"

	ftdc "github.com/frozenpine/ftdc4go"
)

var wireBuffer = sync.Pool{New: func() any { return make([]byte, 0, 512) }}

// Config tunes a RecordCodec. The zero value is a lenient raw-charset
// codec that requires every schema field present in the record.
type Config struct {
	// Strict makes over-width string values an encode error instead of
	// silently truncating them.
	Strict bool

	// Charset transcodes string fields between Go strings and wire
	// bytes. Width checks apply to the transcoded length.
	Charset Charset

	// FillDefaults substitutes kind zero values for fields missing from
	// the record instead of failing the encode.
	FillDefaults bool
}

// RecordCodec transcodes records against schemas. One instance is safe
// for concurrent use, its traffic counters are atomic.
type RecordCodec struct {
	cfg  Config
	stat ftdc.CodecStatics
}

func NewRecordCodec(cfg Config) *RecordCodec {
	return &RecordCodec{cfg: cfg}
}

func (codec *RecordCodec) Config() Config { return codec.cfg }

// Statics exposes the codec's traffic counters.
func (codec *RecordCodec) Statics() *ftdc.CodecStatics { return &codec.stat }

// Encode renders record as its wire image, always exactly
// schema.TotalWidth() bytes. Fields are laid out in declared order.
func (codec *RecordCodec) Encode(schema *ftdc.Schema, record ftdc.Record) ([]byte, error) {
	if schema == nil {
		return nil, errors.Wrap(ftdc.ErrInvalidSchema, "nil schema")
	}

	data := make([]byte, schema.TotalWidth())

	if err := codec.encodeInto(data, schema, record); err != nil {
		codec.stat.ErrorInc()
		return nil, err
	}

	codec.stat.EncodeInc()

	return data, nil
}

// EncodeTo renders record into a pooled scratch buffer and writes the
// image to w, avoiding a per-call allocation on hot paths.
func (codec *RecordCodec) EncodeTo(w io.Writer, schema *ftdc.Schema, record ftdc.Record) (int, error) {
	if schema == nil {
		return 0, errors.Wrap(ftdc.ErrInvalidSchema, "nil schema")
	}

	buf := wireBuffer.Get().([]byte)
	if cap(buf) < schema.TotalWidth() {
		buf = make([]byte, 0, schema.TotalWidth())
	}

	buf = buf[:schema.TotalWidth()]
	defer wireBuffer.Put(buf[:0])

	if err := codec.encodeInto(buf, schema, record); err != nil {
		codec.stat.ErrorInc()
		return 0, err
	}

	codec.stat.EncodeInc()

	return w.Write(buf)
}

func (codec *RecordCodec) encodeInto(data []byte, schema *ftdc.Schema, record ftdc.Record) error {
	var failed error

	schema.ForEachField(func(idx int, field ftdc.FieldDescriptor) bool {
		offset := schema.OffsetAt(idx)
		window := data[offset : offset+field.Width]

		value, exist := record[field.Name]
		if !exist {
			if !codec.cfg.FillDefaults {
				failed = errors.Wrapf(
					ftdc.ErrMissingField,
					"schema %q field %q", schema.Name(), field.Name,
				)

				return false
			}

			value = ftdc.ZeroValue(field.Kind)
		}

		if err := codec.encodeField(window, field, value); err != nil {
			failed = errors.WithMessagef(
				err, "schema %q field %q", schema.Name(), field.Name,
			)

			return false
		}

		return true
	})

	return failed
}

func (codec *RecordCodec) encodeField(window []byte, field ftdc.FieldDescriptor, value any) error {
	switch field.Kind {
	case ftdc.KindString:
		text, err := ftdc.AsString(value)
		if err != nil {
			return err
		}

		return EncodeString(window, text, codec.cfg.Charset, codec.cfg.Strict)
	case ftdc.KindInt32:
		num, err := ftdc.AsInt32(value)
		if err != nil {
			return err
		}

		EncodeInt32(window, num)
	case ftdc.KindDouble:
		num, err := ftdc.AsDouble(value)
		if err != nil {
			return err
		}

		EncodeDouble(window, num)
	case ftdc.KindChar:
		code, err := ftdc.AsChar(value)
		if err != nil {
			return err
		}

		EncodeChar(window, code)
	default:
		return errors.Wrapf(
			ftdc.ErrInvalidSchema, "unknown kind %d", field.Kind,
		)
	}

	return nil
}

// Decode parses one wire image against schema. The image must be exactly
// schema.TotalWidth() bytes, partial or oversized input fails with
// ErrRecordLengthMismatch before any field is touched.
func (codec *RecordCodec) Decode(schema *ftdc.Schema, data []byte) (ftdc.Record, error) {
	if schema == nil {
		return nil, errors.Wrap(ftdc.ErrInvalidSchema, "nil schema")
	}

	if len(data) != schema.TotalWidth() {
		codec.stat.ErrorInc()

		return nil, errors.Wrapf(
			ftdc.ErrRecordLengthMismatch,
			"schema %q: got %d bytes, want %d",
			schema.Name(), len(data), schema.TotalWidth(),
		)
	}

	record := make(ftdc.Record, schema.NumFields())

	var failed error

	schema.ForEachField(func(idx int, field ftdc.FieldDescriptor) bool {
		offset := schema.OffsetAt(idx)
		window := data[offset : offset+field.Width]

		switch field.Kind {
		case ftdc.KindString:
			text, err := DecodeString(window, codec.cfg.Charset)
			if err != nil {
				failed = errors.WithMessagef(
					err, "schema %q field %q", schema.Name(), field.Name,
				)

				return false
			}

			record[field.Name] = text
		case ftdc.KindInt32:
			record[field.Name] = DecodeInt32(window)
		case ftdc.KindDouble:
			record[field.Name] = DecodeDouble(window)
		case ftdc.KindChar:
			record[field.Name] = DecodeChar(window)
		}

		return true
	})

	if failed != nil {
		codec.stat.ErrorInc()
		return nil, failed
	}

	codec.stat.DecodeInc()

	return record, nil
}

// DecodeFrom reads exactly one record's image from r and parses it.
// A short read fails with ErrRecordLengthMismatch wrapping the reader's
// error.
func (codec *RecordCodec) DecodeFrom(r io.Reader, schema *ftdc.Schema) (ftdc.Record, error) {
	if schema == nil {
		return nil, errors.Wrap(ftdc.ErrInvalidSchema, "nil schema")
	}

	buf := wireBuffer.Get().([]byte)
	if cap(buf) < schema.TotalWidth() {
		buf = make([]byte, 0, schema.TotalWidth())
	}

	buf = buf[:schema.TotalWidth()]
	defer wireBuffer.Put(buf[:0])

	if _, err := io.ReadFull(r, buf); err != nil {
		codec.stat.ErrorInc()

		return nil, errors.Wrapf(
			ftdc.ErrRecordLengthMismatch,
			"schema %q: read failed: %v", schema.Name(), err,
		)
	}

	return codec.Decode(schema, buf)
}
