//go:build fuzz
// +build fuzz

package codec

import (
	"reflect"
	"testing"

	ftdc "github.com/frozenpine/ftdc4go"
)

// FuzzRecordDecode feeds arbitrary bytes through Decode and checks the
// canonicalization law: decoding the re-encoded image of any accepted
// input yields the same record.
func FuzzRecordDecode(f *testing.F) {
	schema, err := ftdc.NewSchema(
		"FuzzTarget",
		ftdc.StringField("UserID", 8),
		ftdc.Int32Field("Volume"),
		ftdc.DoubleField("Price"),
		ftdc.CharField("Flag"),
	)
	if err != nil {
		f.Fatal(err)
	}

	codec := NewRecordCodec(Config{})

	f.Add(make([]byte, schema.TotalWidth()))
	f.Add([]byte{})

	seed := make([]byte, schema.TotalWidth())
	copy(seed, "u001")
	f.Add(seed)

	f.Fuzz(func(t *testing.T, data []byte) {
		record, err := codec.Decode(schema, data)

		if len(data) != schema.TotalWidth() {
			if err == nil {
				t.Fatalf("accepted %d bytes, want %d", len(data), schema.TotalWidth())
			}

			return
		}

		if err != nil {
			t.Fatalf("rejected exact-width input: %v", err)
		}

		encoded, err := codec.Encode(schema, record)
		if err != nil {
			t.Fatalf("re-encode failed: %v", err)
		}

		again, err := codec.Decode(schema, encoded)
		if err != nil {
			t.Fatalf("re-decode failed: %v", err)
		}

		if !recordsEqual(record, again) {
			t.Errorf("canonical mismatch:\n got %v\nwant %v", again, record)
		}
	})
}

// NaN payloads survive the wire but break DeepEqual, compare bit images.
func recordsEqual(a, b ftdc.Record) bool {
	if len(a) != len(b) {
		return false
	}

	for name, left := range a {
		right, exist := b[name]
		if !exist {
			return false
		}

		lf, lok := left.(float64)
		rf, rok := right.(float64)

		if lok && rok {
			if lf != rf && !(lf != lf && rf != rf) {
				return false
			}

			continue
		}

		if !reflect.DeepEqual(left, right) {
			return false
		}
	}

	return true
}
