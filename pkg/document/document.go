package document

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/k2shbwi/k2sh/pkg/container"
)

// Errors returned by the facade on top of the container format's own
// structural errors.
var (
	// ErrUnsupportedPayloadKind indicates a kind with no known serialization.
	ErrUnsupportedPayloadKind = errors.New("unsupported payload kind")
	// ErrMalformedPayload indicates payload bytes that cannot be interpreted
	// under the declared kind.
	ErrMalformedPayload = errors.New("malformed payload")
)

// Kind discriminates payload serializations. Each kind's marshal/unmarshal
// is a pure function dispatched on this tag.
type Kind uint32

const (
	KindRasterImage Kind = 1
	KindVectorScene Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindRasterImage:
		return "raster-image"
	case KindVectorScene:
		return "vector-scene"
	default:
		return fmt.Sprintf("kind(%d)", uint32(k))
	}
}

// Document is the in-memory, renderer-facing reconstruction of a container
// payload. Exactly one of the kind-specific fields is set, selected by Kind.
type Document struct {
	Kind   Kind
	Raster *RasterImage
	Vector *VectorScene

	meta []container.MetadataEntry
}

// Metadata returns a copy of the document's metadata entries. Renderers get
// a read-only view; mutating the returned slice does not affect the document.
func (d *Document) Metadata() []container.MetadataEntry {
	out := make([]container.MetadataEntry, len(d.meta))
	copy(out, d.meta)
	return out
}

// Meta returns the text metadata value for key.
func (d *Document) Meta(key string) (string, bool) {
	for _, e := range d.meta {
		if e.Key == key && e.Type == container.ValueText {
			return string(e.Value), true
		}
	}
	return "", false
}

// NewRaster creates a raster-image document. Pixels are laid out row-major,
// Channels bytes per pixel.
func NewRaster(img *RasterImage) *Document {
	return &Document{Kind: KindRasterImage, Raster: img}
}

// NewVector creates a vector-scene document.
func NewVector(scene *VectorScene) *Document {
	return &Document{Kind: KindVectorScene, Vector: scene}
}

// marshalPayload serializes the kind-specific fields into payload bytes.
func marshalPayload(d *Document) ([]byte, error) {
	switch d.Kind {
	case KindRasterImage:
		if d.Raster == nil {
			return nil, errors.Wrap(ErrMalformedPayload, "raster document without raster fields")
		}
		return marshalRaster(d.Raster)
	case KindVectorScene:
		if d.Vector == nil {
			return nil, errors.Wrap(ErrMalformedPayload, "vector document without vector fields")
		}
		return marshalVector(d.Vector), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedPayloadKind, "%s", d.Kind)
	}
}

// unmarshalPayload reconstructs kind-specific fields from payload bytes.
func unmarshalPayload(kind Kind, payload []byte) (*Document, error) {
	switch kind {
	case KindRasterImage:
		img, err := unmarshalRaster(payload)
		if err != nil {
			return nil, err
		}
		return NewRaster(img), nil
	case KindVectorScene:
		scene, err := unmarshalVector(payload)
		if err != nil {
			return nil, err
		}
		return NewVector(scene), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedPayloadKind, "%s", kind)
	}
}
