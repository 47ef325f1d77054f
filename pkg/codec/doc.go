// Package codec provides the binary primitives underneath the K2SH
// container format.
//
// All multi-byte integers are little-endian. Variable-length fields use a
// 32-bit length prefix. The package is purely functional: every Append
// function returns a grown buffer and every Read function returns the value
// plus the advanced offset, with no side effects on the input.
//
// # Error Handling
//
// Read functions fail with ErrTruncatedInput when fewer bytes remain than a
// fixed-width field demands, and with ErrLengthMismatch when a length prefix
// declares more bytes than the buffer holds. ReadString additionally fails
// with ErrInvalidUTF8. Errors carry the byte offset for diagnostics and
// wrap the sentinels so callers can match with errors.Is.
//
// # Integrity
//
// Checksum computes a CRC-32 (IEEE) digest. CRC-32 detects any single-byte
// corruption deterministically, which is the property container validation
// relies on.
package codec
