package codec

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// Charset selects the text encoding of string fields on the wire.
// FTD-family counterparties historically speak GBK, CharsetRaw passes
// value bytes through untouched.
type Charset uint8

const (
	CharsetRaw Charset = iota // raw
	CharsetGBK                // gbk
)

func (charset Charset) String() string {
	switch charset {
	case CharsetGBK:
		return "gbk"
	default:
		return "raw"
	}
}

// Set implements flag.Value so a charset can be taken from the command line.
func (charset *Charset) Set(value string) error {
	switch value {
	case "raw":
		*charset = CharsetRaw
	case "gbk":
		*charset = CharsetGBK
	default:
		return errors.Errorf("invalid charset: %q", value)
	}

	return nil
}

func GbkToUtf8(s []byte) ([]byte, error) {
	reader := transform.NewReader(bytes.NewReader(s), simplifiedchinese.GBK.NewDecoder())
	d, e := io.ReadAll(reader)
	if e != nil {
		return nil, e
	}
	return d, nil
}

func Utf8ToGbk(s []byte) ([]byte, error) {
	reader := transform.NewReader(bytes.NewReader(s), simplifiedchinese.GBK.NewEncoder())
	d, e := io.ReadAll(reader)
	if e != nil {
		return nil, e
	}
	return d, nil
}

// EncodedWidth reports how many wire bytes text occupies under charset.
func EncodedWidth(text string, charset Charset) (int, error) {
	if charset != CharsetGBK {
		return len(text), nil
	}

	raw, err := Utf8ToGbk([]byte(text))
	if err != nil {
		return 0, errors.Wrapf(err, "gbk encode %q", text)
	}

	return len(raw), nil
}
