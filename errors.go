package ftdc

import "github.com/pkg/errors"

var (
	// Registration phase failures, fatal to registry load.
	ErrInvalidSchema    = errors.New("invalid schema definition")
	ErrInvalidWidth     = errors.New("invalid field width")
	ErrDuplicateSchema  = errors.New("duplicate schema name")
	ErrRegistryFrozen   = errors.New("registry already frozen")
	ErrUnknownTypeToken = errors.New("unknown type token")

	// Lookup & per-call codec failures, recoverable by caller.
	ErrUnknownSchema        = errors.New("unknown schema name")
	ErrMissingField         = errors.New("missing field value")
	ErrKindMismatch         = errors.New("value kind mismatch")
	ErrFieldTooLong         = errors.New("field value exceeds declared width")
	ErrInvalidChar          = errors.New("invalid char value")
	ErrRecordLengthMismatch = errors.New("record length mismatch")
)
