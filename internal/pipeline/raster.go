package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"go-pdf-fixtures/internal/model"
	"go-pdf-fixtures/pkg/utils"
)

const (
	basePageWidth  = 612
	basePageHeight = 792

	// targets at or below this use the standard canvas
	standardTargetKB = 50
	maxRepetitions   = 5
)

// RasterLayout describes what a raster render produced
type RasterLayout struct {
	Width       int
	Height      int
	Scale       float64
	Repetitions int
	Sections    []string
	FieldsDrawn int
	Truncated   bool
}

// RasterRenderer draws rows as "scanned" form bitmaps
type RasterRenderer struct {
	Title string
	Fonts *FontLoader
}

// NewRasterRenderer creates a renderer; fontPath may be empty
func NewRasterRenderer(title, fontPath string) *RasterRenderer {
	return &RasterRenderer{Title: title, Fonts: NewFontLoader(fontPath)}
}

// ScaleFactor maps a target size to the canvas/font multiplier. It is
// non-decreasing in targetKB and never below 1.5:
//
//	targetKB <= 100:        1.5
//	100 < targetKB <= 500:  clamp(targetKB/100, 1.5, 2.0)
//	targetKB > 500:         min(4.0, targetKB/250)
func ScaleFactor(targetKB int) float64 {
	t := float64(targetKB)
	switch {
	case targetKB > 500:
		return min(4.0, t/250)
	case targetKB > 100:
		return max(1.5, min(2.0, t/100))
	default:
		return 1.5
	}
}

// Repetitions is how many times the field list is drawn for a target
func Repetitions(targetKB int) int {
	return max(1, min(maxRepetitions, targetKB/200))
}

// Render draws the form for row, sized by targetKB (0 when absent). The
// row must already exclude directive columns. Content that would run past
// the bottom margin is dropped.
func (r *RasterRenderer) Render(row model.Row, targetKB int) (*image.RGBA, RasterLayout) {
	layout := RasterLayout{
		Width:       basePageWidth,
		Height:      basePageHeight,
		Scale:       1.0,
		Repetitions: 1,
	}
	if targetKB > standardTargetKB {
		layout.Scale = ScaleFactor(targetKB)
		layout.Width = int(basePageWidth * layout.Scale)
		layout.Height = int(basePageHeight * layout.Scale)
		layout.Repetitions = Repetitions(targetKB)
	}

	img := image.NewRGBA(image.Rect(0, 0, layout.Width, layout.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	fonts := r.Fonts.Faces(layout.Scale)
	defer fonts.Close()

	y := r.drawTitle(img, fonts.Title, layout.Width)
	r.drawFields(img, row, fonts, y, &layout)
	return img, layout
}

func (r *RasterRenderer) drawTitle(img *image.RGBA, face font.Face, width int) int {
	y := 50
	titleWidth := font.MeasureString(face, r.Title).Ceil()
	drawText(img, face, (width-titleWidth)/2, y, r.Title, colorDarkBlue)
	return y + 60
}

func (r *RasterRenderer) drawFields(img *image.RGBA, row model.Row, fonts FontSet, y int, layout *RasterLayout) {
	s := layout.Scale
	xMargin := int(50 * s)
	lineSpacing := int(40 * s)
	bottom := layout.Height - int(100*s)

	for rep := 0; rep < layout.Repetitions; rep++ {
		if rep > 0 {
			section := fmt.Sprintf("Section %d", rep+1)
			drawText(img, fonts.Label, xMargin, y, section, colorDarkGreen)
			layout.Sections = append(layout.Sections, section)
			y += lineSpacing
		}

		for _, f := range row {
			if y > bottom {
				layout.Truncated = true
				return
			}
			drawText(img, fonts.Label, xMargin, y, FieldLabel(f.Name), colorBlack)
			y += int(25 * s)
			drawText(img, fonts.Value, xMargin+int(20*s), y, utils.FormatValue(f.Value), colorDarkGrey)
			y += lineSpacing
			layout.FieldsDrawn++
		}

		y += int(30 * s)
	}
}

// drawText draws s with its top-left corner at (x, y)
func drawText(img *image.RGBA, face font.Face, x, y int, s string, c RGB) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{uint8(c.R), uint8(c.G), uint8(c.B), 0xff}),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}
