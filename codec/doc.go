// Package codec transcodes records between their in-memory form and the
// fixed-width wire layout declared by their schema.
//
// # Wire Format
//
// A record's wire image is the concatenation of its fields in schema
// declaration order, each field occupying exactly its declared width:
//
//	string(N): N bytes, value bytes then NUL padding to N
//	int:       4 bytes, little-endian two's-complement
//	double:    8 bytes, little-endian IEEE-754 binary64
//	char:      1 byte
//
// The image length always equals the schema's TotalWidth. Decoding
// demands exactly that many bytes, there is no resynchronization inside
// a record.
//
// # Usage
//
//	codec := codec.NewRecordCodec(codec.Config{Strict: true})
//
//	data, err := codec.Encode(schema, record)
//	if err != nil {
//	    return err
//	}
//
//	decoded, err := codec.Decode(schema, data)
//	if err != nil {
//	    return err
//	}
//
// Over-width string values fail encoding in strict mode and are silently
// truncated otherwise. Validate reports the same per-field problems
// Encode would fail on, collected as data instead of a first error.
//
// # Thread Safety
//
// RecordCodec carries no per-call state besides atomic counters, one
// instance may be shared by any number of goroutines.
package codec
