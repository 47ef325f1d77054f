package container

import (
	"bytes"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/k2shbwi/k2sh/pkg/codec"
)

// Magic identifies a K2SH container. Checked before anything else.
var Magic = [4]byte{'K', '2', 'S', 'H'}

// Version is the highest container version this build understands.
const Version uint32 = 1

// ValueType tags a metadata value as text or raw bytes.
type ValueType uint8

const (
	ValueText   ValueType = 0
	ValueBinary ValueType = 1
)

// MetadataEntry is one key/value pair in a container's metadata block.
// Keys are unique within a container; insertion order is preserved so that
// encoding is deterministic.
type MetadataEntry struct {
	Key   string    `json:"key"`
	Type  ValueType `json:"type"`
	Value []byte    `json:"value"`
}

// Container is the in-memory form of a K2SH file: header, metadata block,
// payload block. The checksum exists only on the wire; it is computed at
// encode time and verified at decode time.
type Container struct {
	Version     uint32
	Metadata    []MetadataEntry
	PayloadKind uint32
	Payload     []byte
}

// New creates a version-current container around payload.
func New(kind uint32, payload []byte) *Container {
	return &Container{
		Version:     Version,
		PayloadKind: kind,
		Payload:     payload,
	}
}

// SetMeta sets a text metadata value, replacing any existing entry for key.
func (c *Container) SetMeta(key, value string) {
	c.setEntry(MetadataEntry{Key: key, Type: ValueText, Value: []byte(value)})
}

// SetMetaBytes sets a binary metadata value, replacing any existing entry for key.
func (c *Container) SetMetaBytes(key string, value []byte) {
	c.setEntry(MetadataEntry{Key: key, Type: ValueBinary, Value: value})
}

func (c *Container) setEntry(e MetadataEntry) {
	for i := range c.Metadata {
		if c.Metadata[i].Key == e.Key {
			c.Metadata[i] = e
			return
		}
	}
	c.Metadata = append(c.Metadata, e)
}

// Meta returns the text value for key, or false if absent or binary.
func (c *Container) Meta(key string) (string, bool) {
	for _, e := range c.Metadata {
		if e.Key == key && e.Type == ValueText {
			return string(e.Value), true
		}
	}
	return "", false
}

// MetaBytes returns the raw value for key regardless of its type tag.
func (c *Container) MetaBytes(key string) ([]byte, bool) {
	for _, e := range c.Metadata {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// EncodedSize returns the number of bytes Encode will produce.
func (c *Container) EncodedSize() int {
	n := len(Magic) + 4 + 4 // magic, version, metadata count
	for _, e := range c.Metadata {
		n += 4 + len(e.Key) + 1 + 4 + len(e.Value)
	}
	n += 4 + 4 + len(c.Payload) // payload kind, payload length, payload
	n += 4                      // checksum
	return n
}

// Encode serializes c into the K2SH wire format:
//
//	[magic 4B][version u32][metadata_count u32]
//	  repeated: [key_len u32][key][value_type u8][value_len u32][value]
//	[payload_kind u32][payload_len u32][payload][crc32 u32]
//
// Output is deterministic: the same container always produces byte-identical
// bytes. Encoding fails on duplicate metadata keys or unknown value types.
func Encode(c *Container) ([]byte, error) {
	seen := make(map[string]struct{}, len(c.Metadata))
	for _, e := range c.Metadata {
		if !utf8.ValidString(e.Key) {
			return nil, errors.Wrapf(codec.ErrInvalidUTF8, "metadata key % x", e.Key)
		}
		if _, dup := seen[e.Key]; dup {
			return nil, errors.Wrapf(ErrDuplicateKey, "metadata key %q", e.Key)
		}
		seen[e.Key] = struct{}{}
		if e.Type > ValueBinary {
			return nil, errors.Wrapf(ErrInvalidValueType, "metadata key %q has type %d", e.Key, e.Type)
		}
	}

	buf := make([]byte, 0, c.EncodedSize())
	buf = append(buf, Magic[:]...)
	buf = codec.AppendUint32(buf, c.Version)
	buf = codec.AppendUint32(buf, uint32(len(c.Metadata)))
	for _, e := range c.Metadata {
		buf = codec.AppendString(buf, e.Key)
		buf = codec.AppendUint8(buf, uint8(e.Type))
		buf = codec.AppendBytes(buf, e.Value)
	}
	buf = codec.AppendUint32(buf, c.PayloadKind)
	buf = codec.AppendBytes(buf, c.Payload)
	buf = codec.AppendUint32(buf, codec.Checksum(buf))
	return buf, nil
}

// Decode parses data as a K2SH container. Parsing is single-pass and
// byte-offset driven; any deviation from the grammar fails with one of the
// structural sentinels (ErrBadMagic, ErrUnsupportedVersion,
// codec.ErrTruncatedInput, codec.ErrLengthMismatch, ErrChecksumMismatch,
// ErrTrailingData). The returned container owns copies of all variable-length
// fields, so data may be reused afterward.
func Decode(data []byte) (*Container, error) {
	c, off, err := decodeBody(data)
	if err != nil {
		return nil, err
	}

	sum, end, err := codec.ReadUint32(data, off)
	if err != nil {
		return nil, errors.Wrap(err, "checksum")
	}
	if got := codec.Checksum(data[:off]); got != sum {
		return nil, errors.Wrapf(ErrChecksumMismatch, "stored %#x, recomputed %#x", sum, got)
	}
	if end != len(data) {
		return nil, errors.Wrapf(ErrTrailingData, "%d bytes past checksum", len(data)-end)
	}
	c.Payload = append([]byte(nil), c.Payload...)
	return c, nil
}

// decodeBody parses everything preceding the checksum and returns the offset
// where the checksum begins. The returned container's Payload aliases data;
// Decode copies it, ReadSummary only measures it.
func decodeBody(data []byte) (*Container, int, error) {
	if len(data) < len(Magic) {
		return nil, 0, errors.Wrap(codec.ErrTruncatedInput, "magic")
	}
	if !bytes.Equal(data[:len(Magic)], Magic[:]) {
		return nil, 0, errors.Wrapf(ErrBadMagic, "got % x", data[:len(Magic)])
	}
	off := len(Magic)

	version, off, err := codec.ReadUint32(data, off)
	if err != nil {
		return nil, off, errors.Wrap(err, "version")
	}
	if version == 0 || version > Version {
		return nil, off, errors.Wrapf(ErrUnsupportedVersion, "version %d, highest known %d", version, Version)
	}

	count, off, err := codec.ReadUint32(data, off)
	if err != nil {
		return nil, off, errors.Wrap(err, "metadata count")
	}

	c := &Container{Version: version}
	seen := make(map[string]struct{}, count)
	for i := uint32(0); i < count; i++ {
		var e MetadataEntry
		e.Key, off, err = codec.ReadString(data, off)
		if err != nil {
			return nil, off, errors.Wrapf(err, "metadata key %d", i)
		}
		if _, dup := seen[e.Key]; dup {
			return nil, off, errors.Wrapf(ErrDuplicateKey, "metadata key %q", e.Key)
		}
		seen[e.Key] = struct{}{}

		var vt uint8
		vt, off, err = codec.ReadUint8(data, off)
		if err != nil {
			return nil, off, errors.Wrapf(err, "metadata value type for %q", e.Key)
		}
		if ValueType(vt) > ValueBinary {
			return nil, off, errors.Wrapf(ErrInvalidValueType, "metadata key %q has type %d", e.Key, vt)
		}
		e.Type = ValueType(vt)

		var value []byte
		value, off, err = codec.ReadBytes(data, off)
		if err != nil {
			return nil, off, errors.Wrapf(err, "metadata value for %q", e.Key)
		}
		e.Value = append([]byte(nil), value...)
		c.Metadata = append(c.Metadata, e)
	}

	c.PayloadKind, off, err = codec.ReadUint32(data, off)
	if err != nil {
		return nil, off, errors.Wrap(err, "payload kind")
	}

	c.Payload, off, err = codec.ReadBytes(data, off)
	if err != nil {
		return nil, off, errors.Wrap(err, "payload")
	}

	return c, off, nil
}
