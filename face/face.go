// Package face draws a DS3231 reading as a small bitmap clock face using
// tinyfont, for terminals and monochrome displays.
package face

import (
	"fmt"
	"image/color"
	"strings"

	"tinygo.org/x/tinyfont"

	"github.com/ajanata/drivers/ds3231"
)

// Frame dimensions fit three lines of TomThumb text, eight glyphs wide.
const (
	Width      = 34
	Height     = 21
	lineHeight = 7
)

var on = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

// Frame is a one-bit framebuffer. It satisfies the displayer interface
// tinyfont draws on.
type Frame struct {
	w, h int16
	pix  []bool
}

// NewFrame returns a blank frame of w by h pixels.
func NewFrame(w, h int16) *Frame {
	return &Frame{w: w, h: h, pix: make([]bool, int(w)*int(h))}
}

func (f *Frame) Size() (x, y int16) {
	return f.w, f.h
}

// SetPixel lights the pixel when c is not black. Pixels outside the frame
// are ignored.
func (f *Frame) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return
	}
	f.pix[int(y)*int(f.w)+int(x)] = c.R|c.G|c.B != 0
}

func (f *Frame) Display() error {
	return nil
}

// Pixel reports whether the pixel at x, y is lit.
func (f *Frame) Pixel(x, y int16) bool {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return false
	}
	return f.pix[int(y)*int(f.w)+int(x)]
}

// Lit returns the number of lit pixels.
func (f *Frame) Lit() int {
	n := 0
	for _, p := range f.pix {
		if p {
			n++
		}
	}
	return n
}

// String draws the frame with '#' for lit pixels, one text line per row.
func (f *Frame) String() string {
	var b strings.Builder
	for y := int16(0); y < f.h; y++ {
		row := make([]byte, f.w)
		for x := int16(0); x < f.w; x++ {
			row[x] = ' '
			if f.Pixel(x, y) {
				row[x] = '#'
			}
		}
		b.WriteString(strings.TrimRight(string(row), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

// Lines returns the three text lines a face shows for t and celsius.
func Lines(t ds3231.Time, celsius float32) [3]string {
	return [3]string{
		fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second),
		fmt.Sprintf("%02d/%02d/%02d", t.Day, t.Month, t.Year),
		fmt.Sprintf("%.2fC", celsius),
	}
}

// Render draws time and temperature onto a new frame.
func Render(t ds3231.Time, celsius float32) *Frame {
	f := NewFrame(Width, Height)
	for i, line := range Lines(t, celsius) {
		tinyfont.WriteLine(f, &tinyfont.TomThumb, 1, int16((i+1)*lineHeight-1), line, on)
	}
	return f
}
