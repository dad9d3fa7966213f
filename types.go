package ftdc

import "github.com/pkg/errors"

// Kind is the closed set of primitive value kinds appearing in FTD-style
// struct tables. The wire layout of every field derives from its kind:
// Char and Int32 and Double are fixed, String width is declared per field.
type Kind uint8

const (
	KindString Kind = iota + 1 // string
	KindInt32                  // int
	KindDouble                 // double
	KindChar                   // char
)

// Wire widths in bytes for the fixed-size kinds.
const (
	CharWidth   = 1
	Int32Width  = 4
	DoubleWidth = 8
)

var kindTokens = map[Kind]string{
	KindString: "string",
	KindInt32:  "int",
	KindDouble: "double",
	KindChar:   "char",
}

var tokenKinds = map[string]Kind{
	"string": KindString,
	"int":    KindInt32,
	"double": KindDouble,
	"char":   KindChar,
}

// Token returns the declaration token of k as used in schema sources.
func (k Kind) Token() string {
	if token, exist := kindTokens[k]; exist {
		return token
	}

	return "unknown"
}

func (k Kind) String() string { return k.Token() }

// Valid reports whether k is one of the four declared kinds.
func (k Kind) Valid() bool {
	_, exist := kindTokens[k]
	return exist
}

// FixedWidth returns the derived wire width of k. String has no derived
// width, its second return is false.
func (k Kind) FixedWidth() (int, bool) {
	switch k {
	case KindChar:
		return CharWidth, true
	case KindInt32:
		return Int32Width, true
	case KindDouble:
		return DoubleWidth, true
	}

	return 0, false
}

// ParseKind resolves a schema source type token. Recognized tokens are
// exactly "string", "int", "double" and "char".
func ParseKind(token string) (Kind, error) {
	if kind, exist := tokenKinds[token]; exist {
		return kind, nil
	}

	return 0, errors.Wrapf(ErrUnknownTypeToken, "token: %q", token)
}
