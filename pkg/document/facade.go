package document

import (
	"sort"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/k2shbwi/k2sh/pkg/container"
)

// FormatVersionKey is the mandatory system metadata key stamped into every
// encoded container.
const FormatVersionKey = "format_version"

// Encode builds a K2SH container from a document, merging caller-supplied
// metadata with the mandatory system metadata. Caller keys are written in
// sorted order so output stays deterministic; the system keys win on
// collision. Fails with ErrUnsupportedPayloadKind if the document's kind has
// no known serialization.
func Encode(d *Document, meta map[string]string) ([]byte, error) {
	payload, err := marshalPayload(d)
	if err != nil {
		return nil, err
	}

	c := container.New(uint32(d.Kind), payload)
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.SetMeta(k, meta[k])
	}
	c.SetMeta(FormatVersionKey, strconv.FormatUint(uint64(container.Version), 10))

	return container.Encode(c)
}

// Decode reconstructs a document from container bytes. It fails with the
// container format's structural errors, with ErrUnsupportedPayloadKind for an
// unknown kind tag, and with ErrMalformedPayload when the payload bytes do
// not fit the declared kind.
func Decode(data []byte) (*Document, error) {
	c, err := container.Decode(data)
	if err != nil {
		return nil, err
	}

	d, err := unmarshalPayload(Kind(c.PayloadKind), c.Payload)
	if err != nil {
		return nil, err
	}
	d.meta = c.Metadata
	return d, nil
}

// FromContainer reconstructs a document from an already-decoded container.
func FromContainer(c *container.Container) (*Document, error) {
	if c == nil {
		return nil, errors.Wrap(ErrMalformedPayload, "nil container")
	}
	d, err := unmarshalPayload(Kind(c.PayloadKind), c.Payload)
	if err != nil {
		return nil, err
	}
	d.meta = c.Metadata
	return d, nil
}

// Info answers "what is this file" from the header and metadata alone,
// without payload reconstruction.
func Info(data []byte) (*container.Summary, error) {
	return container.ReadSummary(data)
}
