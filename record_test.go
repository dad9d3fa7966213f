package ftdc

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func loginSchema(t *testing.T) *Schema {
	t.Helper()

	schema, err := NewSchema(
		"ReqUserLogin",
		StringField("UserID", 16),
		StringField("Password", 16),
		Int32Field("ClientIPPort"),
	)
	if err != nil {
		t.Fatalf("NewSchema failed: %v", err)
	}

	return schema
}

func TestNewRecordZeroFill(t *testing.T) {
	record := NewRecord(loginSchema(t))

	if len(record) != 3 {
		t.Fatalf("field count mismatch: %d", len(record))
	}

	userID, err := record.GetString("UserID")
	if err != nil {
		t.Errorf("GetString failed: %v", err)
	} else if userID != "" {
		t.Errorf("UserID not zero: %q", userID)
	}

	port, err := record.GetInt32("ClientIPPort")
	if err != nil {
		t.Errorf("GetInt32 failed: %v", err)
	} else if port != 0 {
		t.Errorf("ClientIPPort not zero: %d", port)
	}
}

func TestRecordTypedGetters(t *testing.T) {
	record := Record{
		"UserID":    "107255",
		"Volume":    int32(42),
		"LastPrice": 4702.5,
		"Direction": byte('0'),
	}

	if v, err := record.GetString("UserID"); err != nil || v != "107255" {
		t.Errorf("GetString: %q, %v", v, err)
	}

	if v, err := record.GetInt32("Volume"); err != nil || v != 42 {
		t.Errorf("GetInt32: %d, %v", v, err)
	}

	if v, err := record.GetDouble("LastPrice"); err != nil || v != 4702.5 {
		t.Errorf("GetDouble: %f, %v", v, err)
	}

	if v, err := record.GetChar("Direction"); err != nil || v != '0' {
		t.Errorf("GetChar: %c, %v", v, err)
	}

	if _, err := record.GetString("NoSuchField"); !errors.Is(err, ErrMissingField) {
		t.Errorf("missing field cause mismatch: %v", err)
	}

	if _, err := record.GetInt32("UserID"); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("kind mismatch cause mismatch: %v", err)
	}
}

func TestRecordClone(t *testing.T) {
	record := Record{"UserID": "107255", "Volume": int32(1)}

	dup := record.Clone()
	dup["UserID"] = "changed"
	dup["Volume"] = int32(99)

	if v, _ := record.GetString("UserID"); v != "107255" {
		t.Errorf("clone mutated origin: %q", v)
	}

	if v, _ := record.GetInt32("Volume"); v != 1 {
		t.Errorf("clone mutated origin: %d", v)
	}
}

func TestAsInt32Coercion(t *testing.T) {
	testCases := []struct {
		name  string
		value any
		want  int32
		fail  bool
	}{
		{name: "int32", value: int32(-7), want: -7},
		{name: "int", value: 123456, want: 123456},
		{name: "int64", value: int64(math.MaxInt32), want: math.MaxInt32},
		{name: "int64 min", value: int64(math.MinInt32), want: math.MinInt32},
		{name: "int overflow", value: int(math.MaxInt32) + 1, fail: true},
		{name: "int64 underflow", value: int64(math.MinInt32) - 1, fail: true},
		{name: "string", value: "42", fail: true},
		{name: "float", value: 42.0, fail: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := AsInt32(tc.value)

			if tc.fail {
				if !errors.Is(err, ErrKindMismatch) {
					t.Errorf("expected kind mismatch, got %v", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestAsDoubleCoercion(t *testing.T) {
	if v, err := AsDouble(4702.5); err != nil || v != 4702.5 {
		t.Errorf("float64: %f, %v", v, err)
	}

	if v, err := AsDouble(float32(2.5)); err != nil || v != 2.5 {
		t.Errorf("float32: %f, %v", v, err)
	}

	if v, err := AsDouble(int64(10)); err != nil || v != 10 {
		t.Errorf("int64: %f, %v", v, err)
	}

	if _, err := AsDouble("4702.5"); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("string cause mismatch: %v", err)
	}
}

func TestAsCharCoercion(t *testing.T) {
	testCases := []struct {
		name  string
		value any
		want  byte
		cause error
	}{
		{name: "byte", value: byte('0'), want: '0'},
		{name: "rune ascii", value: '1', want: '1'},
		{name: "one byte string", value: "2", want: '2'},
		{name: "empty string", value: "", cause: ErrInvalidChar},
		{name: "two byte string", value: "48", cause: ErrInvalidChar},
		{name: "multibyte rune", value: '买', cause: ErrInvalidChar},
		{name: "int", value: 48, cause: ErrKindMismatch},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := AsChar(tc.value)

			if tc.cause != nil {
				if !errors.Is(err, tc.cause) {
					t.Errorf("cause mismatch: got %v, want %v", err, tc.cause)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tc.want {
				t.Errorf("got %c, want %c", got, tc.want)
			}
		})
	}
}

func TestZeroValue(t *testing.T) {
	if v := ZeroValue(KindString); v != "" {
		t.Errorf("string zero: %v", v)
	}

	if v := ZeroValue(KindInt32); v != int32(0) {
		t.Errorf("int32 zero: %v", v)
	}

	if v := ZeroValue(KindDouble); v != float64(0) {
		t.Errorf("double zero: %v", v)
	}

	if v := ZeroValue(KindChar); v != byte(0) {
		t.Errorf("char zero: %v", v)
	}

	if v := ZeroValue(Kind(0xEE)); v != nil {
		t.Errorf("invalid kind zero: %v", v)
	}
}
