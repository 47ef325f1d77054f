package document

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/k2shbwi/k2sh/pkg/codec"
)

// RasterImage is a decoded bitmap: Width*Height pixels, Channels bytes each,
// row-major.
type RasterImage struct {
	Width    uint32
	Height   uint32
	Channels uint32
	Pixels   []byte
}

// rasterHeaderSize is the fixed prefix before pixel data: width, height,
// channels, each u32.
const rasterHeaderSize = 12

// PixelBytes returns the pixel byte count the dimensions declare. The
// product of three u32 values can exceed 64 bits, so it saturates at
// math.MaxUint64 instead of wrapping; a saturated count never matches a
// real pixel slice length.
func (r *RasterImage) PixelBytes() uint64 {
	n := uint64(r.Width) * uint64(r.Height)
	if r.Channels != 0 && n > math.MaxUint64/uint64(r.Channels) {
		return math.MaxUint64
	}
	return n * uint64(r.Channels)
}

// marshalRaster serializes a raster payload:
//
//	[width u32][height u32][channels u32][pixels]
//
// Pixel length must agree with the declared dimensions.
func marshalRaster(r *RasterImage) ([]byte, error) {
	if r.PixelBytes() != uint64(len(r.Pixels)) {
		return nil, errors.Wrapf(ErrMalformedPayload,
			"raster %dx%dx%d declares %d pixel bytes, have %d",
			r.Width, r.Height, r.Channels, r.PixelBytes(), len(r.Pixels))
	}

	buf := make([]byte, 0, rasterHeaderSize+len(r.Pixels))
	buf = codec.AppendUint32(buf, r.Width)
	buf = codec.AppendUint32(buf, r.Height)
	buf = codec.AppendUint32(buf, r.Channels)
	return append(buf, r.Pixels...), nil
}

func unmarshalRaster(payload []byte) (*RasterImage, error) {
	if len(payload) < rasterHeaderSize {
		return nil, errors.Wrapf(ErrMalformedPayload, "raster payload of %d bytes, need %d header bytes", len(payload), rasterHeaderSize)
	}

	var img RasterImage
	off := 0
	img.Width, off, _ = codec.ReadUint32(payload, off)
	img.Height, off, _ = codec.ReadUint32(payload, off)
	img.Channels, off, _ = codec.ReadUint32(payload, off)

	pixels := payload[off:]
	if img.PixelBytes() != uint64(len(pixels)) {
		return nil, errors.Wrapf(ErrMalformedPayload,
			"raster %dx%dx%d declares %d pixel bytes, payload carries %d",
			img.Width, img.Height, img.Channels, img.PixelBytes(), len(pixels))
	}
	img.Pixels = append([]byte(nil), pixels...)
	return &img, nil
}
