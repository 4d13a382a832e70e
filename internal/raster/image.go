package raster

import (
	"image"
	"math"
)

// Target is the framebuffer surface the rasterizer writes into. SetColor
// must silently ignore coordinates outside [0, Rows) x [0, Cols).
type Target interface {
	Rows() int
	Cols() int
	SetColor(row, col int, c Color)
}

// Image is an in-memory framebuffer of rows x cols pixels, each carrying a
// colour, an alpha value and a depth value.
type Image struct {
	rows, cols int
	pix        []Color
	alpha      []float64
	depth      []float64
}

// New allocates a black, transparent image.
func New(rows, cols int) *Image {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	img := &Image{
		rows:  rows,
		cols:  cols,
		pix:   make([]Color, rows*cols),
		alpha: make([]float64, rows*cols),
		depth: make([]float64, rows*cols),
	}
	img.Reset()
	return img
}

// Rows returns the image height in pixels.
func (img *Image) Rows() int { return img.rows }

// Cols returns the image width in pixels.
func (img *Image) Cols() int { return img.cols }

func (img *Image) inBounds(row, col int) bool {
	return row >= 0 && row < img.rows && col >= 0 && col < img.cols
}

// SetColor writes an opaque pixel. Out-of-bounds writes are ignored.
func (img *Image) SetColor(row, col int, c Color) {
	if !img.inBounds(row, col) {
		return
	}
	i := row*img.cols + col
	img.pix[i] = c
	img.alpha[i] = 1
}

// Color returns the pixel colour, or black outside the image.
func (img *Image) Color(row, col int) Color {
	if !img.inBounds(row, col) {
		return Black
	}
	return img.pix[row*img.cols+col]
}

// Alpha returns the pixel alpha, or 0 outside the image.
func (img *Image) Alpha(row, col int) float64 {
	if !img.inBounds(row, col) {
		return 0
	}
	return img.alpha[row*img.cols+col]
}

// Depth returns the pixel depth, or +Inf outside the image.
func (img *Image) Depth(row, col int) float64 {
	if !img.inBounds(row, col) {
		return math.Inf(1)
	}
	return img.depth[row*img.cols+col]
}

// SetDepth stores a depth value. Out-of-bounds writes are ignored.
func (img *Image) SetDepth(row, col int, z float64) {
	if !img.inBounds(row, col) {
		return
	}
	img.depth[row*img.cols+col] = z
}

// Fill paints every pixel with c at full opacity.
func (img *Image) Fill(c Color) {
	for i := range img.pix {
		img.pix[i] = c
		img.alpha[i] = 1
	}
}

// Reset clears colour and alpha and moves every depth to +Inf.
func (img *Image) Reset() {
	inf := math.Inf(1)
	for i := range img.pix {
		img.pix[i] = Black
		img.alpha[i] = 0
		img.depth[i] = inf
	}
}

// Count returns how many pixels currently hold exactly c.
func (img *Image) Count(c Color) int {
	n := 0
	for _, p := range img.pix {
		if p == c {
			n++
		}
	}
	return n
}

// RGBA converts the framebuffer into an 8-bit image.
func (img *Image) RGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.cols, img.rows))
	for r := 0; r < img.rows; r++ {
		for c := 0; c < img.cols; c++ {
			i := r*img.cols + c
			px := img.pix[i].RGBA8()
			px.A = to8(img.alpha[i])
			if px.A != 0xff {
				// image.RGBA stores premultiplied colour.
				a := float64(px.A) / 0xff
				px.R = uint8(float64(px.R) * a)
				px.G = uint8(float64(px.G) * a)
				px.B = uint8(float64(px.B) * a)
			}
			out.SetRGBA(c, r, px)
		}
	}
	return out
}

// FromImage copies any image.Image into a new opaque framebuffer.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	img := New(b.Dy(), b.Dx())
	for r := 0; r < b.Dy(); r++ {
		for c := 0; c < b.Dx(); c++ {
			img.SetColor(r, c, FromColor(src.At(b.Min.X+c, b.Min.Y+r)))
		}
	}
	return img
}
