// Package img contains image decoding, preprocessing and augmentation for
// the classifier input pipeline.
package img

import (
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

var RGBModel = color.ModelFunc(rgbModel)

// RGB color is stored as a float for each channel with values in range 0-1
type RGB struct {
	R, G, B float32
}

func (c RGB) RGBA() (r, g, b, a uint32) {
	return clampu(c.R, 0, 1), clampu(c.G, 0, 1), clampu(c.B, 0, 1), 0xffff
}

func rgbModel(c color.Color) color.Color {
	if _, ok := c.(RGB); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return RGB{R: float32(r) / 0xffff, G: float32(g) / 0xffff, B: float32(b) / 0xffff}
}

// RGBImage stores pixel data as float32 values with the r, g and b color
// planes stored separately, matching the layout the network consumes.
type RGBImage struct {
	Pix    []float32
	Width  int
	Height int
}

func NewRGB(width, height int) *RGBImage {
	return &RGBImage{Pix: make([]float32, width*height*3), Width: width, Height: height}
}

// FromImage converts any image to planar float32 RGB.
func FromImage(src image.Image) *RGBImage {
	if m, ok := src.(*RGBImage); ok {
		return m
	}
	b := src.Bounds()
	dst := NewRGB(b.Dx(), b.Dy())
	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			dst.Set(x, y, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

// Load decodes a JPEG or PNG image from disk.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, _, err := image.Decode(f)
	return m, err
}

func (m *RGBImage) Channels() int { return 3 }

func (m *RGBImage) ColorModel() color.Model { return RGBModel }

func (m *RGBImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

func (m *RGBImage) RGBAt(x, y int) RGB {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return RGB{}
	}
	plane := m.Width * m.Height
	pos := x + y*m.Width
	return RGB{R: m.Pix[pos], G: m.Pix[pos+plane], B: m.Pix[pos+2*plane]}
}

func (m *RGBImage) At(x, y int) color.Color { return m.RGBAt(x, y) }

func (m *RGBImage) Set(x, y int, c color.Color) {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return
	}
	rgb := rgbModel(c).(RGB)
	plane := m.Width * m.Height
	pos := x + y*m.Width
	m.Pix[pos] = rgb.R
	m.Pix[pos+plane] = rgb.G
	m.Pix[pos+2*plane] = rgb.B
}

// Pixels returns one color plane, or all planes for ch out of range.
func (m *RGBImage) Pixels(ch int) []float32 {
	if ch >= 0 && ch <= 2 {
		return m.Pix[ch*m.Width*m.Height : (ch+1)*m.Width*m.Height]
	}
	return m.Pix
}

// Vector returns the flattened input in channel, row, column order.
func (m *RGBImage) Vector() []float32 { return m.Pix }

var _ draw.Image = (*RGBImage)(nil)

func clamp(x, x0, x1 float32) float32 {
	if x < x0 {
		return x0
	}
	if x > x1 {
		return x1
	}
	return x
}

func clampu(x, x0, x1 float32) uint32 {
	return uint32(clamp(x, x0, x1) * 0xffff)
}
