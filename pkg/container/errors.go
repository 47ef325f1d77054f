package container

import "github.com/cockroachdb/errors"

// Structural errors: the bytes do not conform to the container grammar.
// Always fatal to the single operation, never silently repaired. Truncation
// and length-prefix failures surface as codec.ErrTruncatedInput and
// codec.ErrLengthMismatch.
var (
	ErrBadMagic           = errors.New("bad magic")
	ErrUnsupportedVersion = errors.New("unsupported container version")
	ErrChecksumMismatch   = errors.New("checksum mismatch")
	ErrTrailingData       = errors.New("trailing data after container")
	ErrDuplicateKey       = errors.New("duplicate metadata key")
	ErrInvalidValueType   = errors.New("invalid metadata value type")
)
