package pipeline

import (
	"fmt"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pdf-fixtures/internal/logger"
	"go-pdf-fixtures/internal/model"
)

func TestScaleFactor(t *testing.T) {
	tests := []struct {
		targetKB int
		want     float64
	}{
		{0, 1.5},
		{40, 1.5},
		{100, 1.5},
		{101, 1.5},
		{150, 1.5},
		{180, 1.8},
		{300, 2.0},
		{500, 2.0},
		{501, 2.004},
		{600, 2.4},
		{1000, 4.0},
		{5000, 4.0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.targetKB), func(t *testing.T) {
			assert.InDelta(t, tt.want, ScaleFactor(tt.targetKB), 1e-9)
		})
	}
}

func TestScaleFactor_Monotone(t *testing.T) {
	prev := ScaleFactor(0)
	for kb := 1; kb <= 3000; kb++ {
		s := ScaleFactor(kb)
		require.GreaterOrEqual(t, s, prev, "scale dropped at %d KB", kb)
		require.GreaterOrEqual(t, s, 1.0)
		prev = s
	}
}

func TestRepetitions(t *testing.T) {
	assert.Equal(t, 1, Repetitions(40))
	assert.Equal(t, 1, Repetitions(399))
	assert.Equal(t, 2, Repetitions(400))
	assert.Equal(t, 3, Repetitions(600))
	assert.Equal(t, 5, Repetitions(2000))
}

var rasterRow = model.Row{
	{Name: "name", Value: "Alice"},
	{Name: "city", Value: "Lisbon"},
}

func TestRasterRenderer_StandardCanvas(t *testing.T) {
	r := NewRasterRenderer("Customers", "")
	img, layout := r.Render(rasterRow, 40)

	assert.Equal(t, 612, layout.Width)
	assert.Equal(t, 792, layout.Height)
	assert.Equal(t, 1.0, layout.Scale)
	assert.Equal(t, 1, layout.Repetitions)
	assert.Empty(t, layout.Sections)
	assert.Equal(t, 2, layout.FieldsDrawn)
	assert.False(t, layout.Truncated)
	assert.Equal(t, 612, img.Bounds().Dx())
	assert.Equal(t, 792, img.Bounds().Dy())
}

func TestRasterRenderer_NoTargetUsesStandardCanvas(t *testing.T) {
	_, layout := NewRasterRenderer("Customers", "").Render(rasterRow, 0)
	assert.Equal(t, 612, layout.Width)
	assert.Equal(t, 1, layout.Repetitions)
}

func TestRasterRenderer_ScaledCanvas(t *testing.T) {
	r := NewRasterRenderer("Customers", "")
	img, layout := r.Render(rasterRow, 600)

	assert.InDelta(t, 2.4, layout.Scale, 1e-9)
	assert.Equal(t, 3, layout.Repetitions)
	assert.Equal(t, []string{"Section 2", "Section 3"}, layout.Sections)
	assert.Equal(t, 6, layout.FieldsDrawn)
	assert.Equal(t, int(612*layout.Scale), img.Bounds().Dx())
	assert.Equal(t, int(792*layout.Scale), img.Bounds().Dy())
}

func TestRasterRenderer_TruncatesAtBottomMargin(t *testing.T) {
	var row model.Row
	for i := 0; i < 30; i++ {
		row = append(row, model.Field{Name: fmt.Sprintf("field_%d", i), Value: i})
	}

	_, layout := NewRasterRenderer("Long", "").Render(row, 0)
	assert.True(t, layout.Truncated)
	assert.Less(t, layout.FieldsDrawn, 30)
	assert.Greater(t, layout.FieldsDrawn, 0)
}

func TestRasterRenderer_DrawsText(t *testing.T) {
	img, _ := NewRasterRenderer("Customers", "").Render(rasterRow, 0)

	white := color.RGBAModel.Convert(color.White)
	inked := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.At(x, y) != white {
				inked++
			}
		}
	}
	assert.Greater(t, inked, 100)
}

func TestFontLoader_FallsBackOnMissingFont(t *testing.T) {
	rec, restore := logger.Capture()
	defer restore()

	fonts := NewFontLoader("/nonexistent/font.ttf").Faces(1.5)
	defer fonts.Close()

	assert.True(t, fonts.Fallback)
	assert.NotNil(t, fonts.Title)
	assert.NotEmpty(t, rec.Entries(logger.WarnLevel))

	// rendering still works with the built-in face
	r := &RasterRenderer{Title: "Fallback", Fonts: NewFontLoader("/nonexistent/font.ttf")}
	_, layout := r.Render(rasterRow, 0)
	assert.Equal(t, 2, layout.FieldsDrawn)
}

func TestFontLoader_WarnsOnceForMissingFont(t *testing.T) {
	rec, restore := logger.Capture()
	defer restore()

	loader := NewFontLoader("/nonexistent/font.ttf")
	for _, scale := range []float64{1, 1.5, 2.4} {
		assert.True(t, loader.Faces(scale).Fallback)
	}
	assert.Len(t, rec.Entries(logger.WarnLevel), 1)
}

func TestFontLoader_EmbeddedFonts(t *testing.T) {
	fonts := NewFontLoader("").Faces(2.0)
	defer fonts.Close()

	assert.False(t, fonts.Fallback)
	assert.Greater(t, fonts.Title.Metrics().Height.Ceil(), fonts.Value.Metrics().Height.Ceil())
}
