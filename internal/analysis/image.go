// Package analysis holds the pure computations behind the artifact analysis
// endpoints. Nothing here touches storage or the network.
package analysis

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"path/filepath"
	"strings"
)

const (
	histogramBins  = 8
	thresholdLevel = 127
)

var ErrUnsupportedImage = errors.New("unsupported image")

var allowedImageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

func AllowedImageFile(filename string) bool {
	_, ok := allowedImageExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return img, nil
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ColorHistogram counts pixels into 8x8x8 bins over the B, G and R channels.
// The result is flattened with blue as the slowest axis: b*64 + g*8 + r.
func ColorHistogram(img image.Image) []float64 {
	hist := make([]float64, histogramBins*histogramBins*histogramBins)
	const shift = 5 // 256 / 8 values per bin
	forEachPixel(img, func(_, _ int, c color.NRGBA) {
		b := int(c.B >> shift)
		g := int(c.G >> shift)
		r := int(c.R >> shift)
		hist[b*histogramBins*histogramBins+g*histogramBins+r]++
	})
	return hist
}

// ThresholdMask applies a per-channel binary threshold and returns rows of
// [B, G, R] triples, each 255 above the threshold and 0 otherwise.
func ThresholdMask(img image.Image) [][][3]uint8 {
	bounds := img.Bounds()
	mask := make([][][3]uint8, bounds.Dy())
	for i := range mask {
		mask[i] = make([][3]uint8, bounds.Dx())
	}
	forEachPixel(img, func(x, y int, c color.NRGBA) {
		mask[y][x] = [3]uint8{binary(c.B), binary(c.G), binary(c.R)}
	})
	return mask
}

func binary(v uint8) uint8 {
	if v > thresholdLevel {
		return 255
	}
	return 0
}

func forEachPixel(img image.Image, fn func(x, y int, c color.NRGBA)) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			fn(x-bounds.Min.X, y-bounds.Min.Y, c)
		}
	}
}
