//go:build bench
// +build bench

package codec

import (
	"io"
	"testing"

	ftdc "github.com/frozenpine/ftdc4go"
)

func benchRecord() ftdc.Record {
	return ftdc.Record{
		"InstrumentID": "cu2609",
		"LastPrice":    77310.0,
		"Volume":       int32(12045),
		"Direction":    byte('0'),
	}
}

func BenchmarkRecordCodec_Encode(b *testing.B) {
	codec := NewRecordCodec(Config{Strict: true})
	schema := depthSchema(b)
	record := benchRecord()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := codec.Encode(schema, record)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRecordCodec_EncodeTo(b *testing.B) {
	codec := NewRecordCodec(Config{Strict: true})
	schema := depthSchema(b)
	record := benchRecord()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := codec.EncodeTo(io.Discard, schema, record)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRecordCodec_Decode(b *testing.B) {
	codec := NewRecordCodec(Config{Strict: true})
	schema := depthSchema(b)

	encoded, err := codec.Encode(schema, benchRecord())
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := codec.Decode(schema, encoded)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRecordCodec_RoundTrip(b *testing.B) {
	codec := NewRecordCodec(Config{Strict: true})
	schema := depthSchema(b)
	record := benchRecord()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		encoded, err := codec.Encode(schema, record)
		if err != nil {
			b.Fatal(err)
		}

		_, err = codec.Decode(schema, encoded)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRecordCodec_Validate(b *testing.B) {
	codec := NewRecordCodec(Config{Strict: true})
	schema := depthSchema(b)
	record := benchRecord()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if violations := codec.Validate(schema, record); violations != nil {
			b.Fatal(violations)
		}
	}
}

func BenchmarkRecordCodec_GbkEncode(b *testing.B) {
	codec := NewRecordCodec(Config{Strict: true, Charset: CharsetGBK})

	schema, err := ftdc.NewSchema(
		"Instrument",
		ftdc.StringField("InstrumentID", 9),
		ftdc.StringField("InstrumentName", 21),
	)
	if err != nil {
		b.Fatal(err)
	}

	record := ftdc.Record{
		"InstrumentID":   "cu2609",
		"InstrumentName": "铜期货2609",
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := codec.Encode(schema, record)
		if err != nil {
			b.Fatal(err)
		}
	}
}
