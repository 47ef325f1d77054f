package cmd

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/k2shbwi/k2sh/pkg/document"
)

// rasterChannels is what PNG sources decode into: RGBA.
const rasterChannels = 4

// loadPNG reads a PNG file into a raster document.
func loadPNG(path string) (*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return rasterFromPNG(data)
}

// rasterFromPNG decodes PNG bytes into a raster document.
func rasterFromPNG(data []byte) (*document.Document, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decoding png")
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 0, w*h*rasterChannels)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			pixels = append(pixels, byte(r>>8), byte(g>>8), byte(b>>8), byte(a>>8))
		}
	}

	return document.NewRaster(&document.RasterImage{
		Width:    uint32(w),
		Height:   uint32(h),
		Channels: rasterChannels,
		Pixels:   pixels,
	}), nil
}

// writePNG writes a raster document back out as a PNG file.
func writePNG(raster *document.RasterImage, path string) error {
	if raster == nil {
		return errors.New("document has no raster payload")
	}

	w, h := int(raster.Width), int(raster.Height)
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * int(raster.Channels)
			var c color.RGBA
			switch raster.Channels {
			case 1:
				v := raster.Pixels[i]
				c = color.RGBA{R: v, G: v, B: v, A: 0xFF}
			case 3:
				c = color.RGBA{R: raster.Pixels[i], G: raster.Pixels[i+1], B: raster.Pixels[i+2], A: 0xFF}
			case 4:
				c = color.RGBA{R: raster.Pixels[i], G: raster.Pixels[i+1], B: raster.Pixels[i+2], A: raster.Pixels[i+3]}
			default:
				return errors.Newf("cannot write %d-channel raster as png", raster.Channels)
			}
			out.SetRGBA(x, y, c)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	if err := png.Encode(f, out); err != nil {
		return errors.Wrap(err, "encoding png")
	}
	return nil
}
