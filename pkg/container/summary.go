package container

import (
	"github.com/cockroachdb/errors"

	"github.com/k2shbwi/k2sh/pkg/codec"
)

// Summary describes a container without its payload. It is what the info
// command prints.
type Summary struct {
	Version     uint32          `json:"version"`
	Metadata    []MetadataEntry `json:"metadata,omitempty"`
	PayloadKind uint32          `json:"payload_kind"`
	PayloadLen  uint32          `json:"payload_len"`
	TotalLen    int             `json:"total_len"`
}

// Meta returns the text value for key, or false if absent or binary.
func (s *Summary) Meta(key string) (string, bool) {
	for _, e := range s.Metadata {
		if e.Key == key && e.Type == ValueText {
			return string(e.Value), true
		}
	}
	return "", false
}

// ReadSummary parses the header and metadata block of data without
// materializing the payload. The payload bytes are skipped, not copied,
// but every structural check Decode makes still runs: declared lengths are
// bounds-checked against the buffer and the checksum is verified, so a
// corrupted or truncated file fails here with the same errors it would
// fail Decode with.
func ReadSummary(data []byte) (*Summary, error) {
	c, off, err := decodeBody(data)
	if err != nil {
		return nil, err
	}
	sum, end, err := codec.ReadUint32(data, off)
	if err != nil {
		return nil, errors.Wrap(err, "checksum")
	}
	if end != len(data) {
		return nil, errors.Wrapf(ErrTrailingData, "%d bytes past checksum", len(data)-end)
	}
	if got := codec.Checksum(data[:off]); got != sum {
		return nil, errors.Wrapf(ErrChecksumMismatch, "stored %#x, recomputed %#x", sum, got)
	}

	return &Summary{
		Version:     c.Version,
		Metadata:    c.Metadata,
		PayloadKind: c.PayloadKind,
		PayloadLen:  uint32(len(c.Payload)),
		TotalLen:    len(data),
	}, nil
}
