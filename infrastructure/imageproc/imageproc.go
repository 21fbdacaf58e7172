// Package imageproc turns image files into model input tensors and display thumbnails.
package imageproc

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ErrEmptyImage is returned for images with no pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// Channels is the number of colour channels fed to the model.
const Channels = 3

// Tensor is a dense float32 tensor in NHWC layout.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// Len returns the number of elements implied by Shape.
func (t *Tensor) Len() int {
	n := 1
	for _, d := range t.Shape {
		n *= int(d)
	}
	return n
}

// Open decodes the image at path, applying EXIF orientation.
func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyImage)
	}
	return img, nil
}

// Thumbnail scales img down to fit within maxW x maxH, keeping the aspect ratio.
// Images that already fit are returned unscaled.
func Thumbnail(img image.Image, maxW, maxH int) image.Image {
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}

// NormalizeMobileNetV2 maps a 0..255 channel value to [-1, 1].
func NormalizeMobileNetV2(v uint8) float32 {
	return float32(v)/127.5 - 1
}

// Preprocessor produces [1, size, size, 3] tensors.
type Preprocessor struct {
	size      int
	normalize func(uint8) float32
}

// NewPreprocessor creates a Preprocessor for square inputs of the given side.
func NewPreprocessor(size int) *Preprocessor {
	return &Preprocessor{size: size, normalize: NormalizeMobileNetV2}
}

// Shape returns the tensor shape the preprocessor produces.
func (p *Preprocessor) Shape() []int64 {
	return []int64{1, int64(p.size), int64(p.size), Channels}
}

// Load decodes the image at path and converts it to a tensor.
func (p *Preprocessor) Load(path string) (*Tensor, error) {
	img, err := Open(path)
	if err != nil {
		return nil, err
	}
	return p.FromImage(img)
}

// FromImage resizes img to the model size, drops alpha and normalizes.
func (p *Preprocessor) FromImage(img image.Image) (*Tensor, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	resized := imaging.Resize(dropAlpha(img), p.size, p.size, imaging.CatmullRom)

	data := make([]float32, p.size*p.size*Channels)
	for y := 0; y < p.size; y++ {
		row := resized.Pix[y*resized.Stride:]
		for x := 0; x < p.size; x++ {
			src := row[x*4 : x*4+Channels]
			dst := data[(y*p.size+x)*Channels:]
			for c := 0; c < Channels; c++ {
				dst[c] = p.normalize(src[c])
			}
		}
	}

	return &Tensor{Shape: p.Shape(), Data: data}, nil
}

// dropAlpha returns an opaque copy of img that keeps the stored colour of
// transparent pixels. The resampler weights colour by alpha, so it must run
// on the opaque copy.
func dropAlpha(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}
