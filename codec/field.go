package codec

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	ftdc "github.com/frozenpine/ftdc4go"
)

// EncodeString lays text into dst, whose length is the field's declared
// width. Shorter values are NUL padded. Over-width values fail with
// ErrFieldTooLong in strict mode and are truncated to fit otherwise.
func EncodeString(dst []byte, text string, charset Charset, strict bool) error {
	raw := []byte(text)

	if charset == CharsetGBK {
		var err error

		if raw, err = Utf8ToGbk(raw); err != nil {
			return errors.Wrapf(err, "gbk encode %q", text)
		}
	}

	if len(raw) > len(dst) {
		if strict {
			return errors.Wrapf(
				ftdc.ErrFieldTooLong,
				"%d bytes exceeds width %d", len(raw), len(dst),
			)
		}

		raw = raw[:len(dst)]
	}

	n := copy(dst, raw)

	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}

	return nil
}

// DecodeString reads a NUL padded string field. Bytes from the first
// NUL on are padding and never reach the caller.
func DecodeString(src []byte, charset Charset) (string, error) {
	if cut := bytes.IndexByte(src, 0); cut >= 0 {
		src = src[:cut]
	}

	if charset == CharsetGBK {
		utf8Data, err := GbkToUtf8(src)
		if err != nil {
			return "", errors.Wrap(err, "gbk decode")
		}

		return string(utf8Data), nil
	}

	return string(src), nil
}

// EncodeInt32 writes value as 4 little-endian two's-complement bytes.
func EncodeInt32(dst []byte, value int32) {
	binary.LittleEndian.PutUint32(dst, uint32(value))
}

func DecodeInt32(src []byte) int32 {
	return int32(binary.LittleEndian.Uint32(src))
}

// EncodeDouble writes value as 8 little-endian IEEE-754 binary64 bytes.
func EncodeDouble(dst []byte, value float64) {
	binary.LittleEndian.PutUint64(dst, math.Float64bits(value))
}

func DecodeDouble(src []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(src))
}

func EncodeChar(dst []byte, value byte) {
	dst[0] = value
}

func DecodeChar(src []byte) byte {
	return src[0]
}
