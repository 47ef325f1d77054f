package codec

import (
	"encoding/binary"
	"hash/crc32"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for wire-level failures. Callers match with errors.Is.
var (
	// ErrTruncatedInput indicates fewer bytes remain than a fixed-width field demands.
	ErrTruncatedInput = errors.New("truncated input")
	// ErrLengthMismatch indicates a length prefix exceeds the remaining buffer.
	ErrLengthMismatch = errors.New("length prefix exceeds remaining buffer")
	// ErrInvalidUTF8 indicates a string field does not hold valid UTF-8.
	ErrInvalidUTF8 = errors.New("string field is not valid UTF-8")
)

// AppendUint8 appends v to buf.
func AppendUint8(buf []byte, v uint8) []byte {
	return append(buf, v)
}

// AppendUint32 appends v to buf in little-endian order.
func AppendUint32(buf []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(buf, v)
}

// AppendUint64 appends v to buf in little-endian order.
func AppendUint64(buf []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(buf, v)
}

// ReadUint8 reads a single byte at off and returns the advanced offset.
func ReadUint8(data []byte, off int) (uint8, int, error) {
	if off+1 > len(data) {
		return 0, off, errors.Wrapf(ErrTruncatedInput, "u8 at offset %d", off)
	}
	return data[off], off + 1, nil
}

// ReadUint32 reads a little-endian u32 at off and returns the advanced offset.
func ReadUint32(data []byte, off int) (uint32, int, error) {
	if off+4 > len(data) {
		return 0, off, errors.Wrapf(ErrTruncatedInput, "u32 at offset %d", off)
	}
	return binary.LittleEndian.Uint32(data[off:]), off + 4, nil
}

// ReadUint64 reads a little-endian u64 at off and returns the advanced offset.
func ReadUint64(data []byte, off int) (uint64, int, error) {
	if off+8 > len(data) {
		return 0, off, errors.Wrapf(ErrTruncatedInput, "u64 at offset %d", off)
	}
	return binary.LittleEndian.Uint64(data[off:]), off + 8, nil
}

// AppendBytes appends a u32 length prefix followed by b.
func AppendBytes(buf, b []byte) []byte {
	buf = AppendUint32(buf, uint32(len(b)))
	return append(buf, b...)
}

// ReadBytes reads a length-prefixed blob at off. The returned slice aliases
// data; callers that outlive the input buffer must copy.
func ReadBytes(data []byte, off int) ([]byte, int, error) {
	n, off, err := ReadUint32(data, off)
	if err != nil {
		return nil, off, err
	}
	end := off + int(n)
	if end > len(data) || end < off {
		return nil, off, errors.Wrapf(ErrLengthMismatch, "%d bytes declared at offset %d, %d remain", n, off, len(data)-off)
	}
	return data[off:end], end, nil
}

// AppendString appends a length-prefixed UTF-8 string.
func AppendString(buf []byte, s string) []byte {
	buf = AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// ReadString reads a length-prefixed string at off and rejects invalid UTF-8.
func ReadString(data []byte, off int) (string, int, error) {
	b, off, err := ReadBytes(data, off)
	if err != nil {
		return "", off, err
	}
	if !utf8.Valid(b) {
		return "", off, errors.Wrapf(ErrInvalidUTF8, "string ending at offset %d", off)
	}
	return string(b), off, nil
}

// Checksum computes the CRC-32 (IEEE) integrity digest over data.
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}
