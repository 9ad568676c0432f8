package pipeline

import "go-pdf-fixtures/internal/model"

// RGB is an 8-bit color
type RGB struct {
	R, G, B int
}

var (
	colorBlack     = RGB{0, 0, 0}
	colorWhite     = RGB{255, 255, 255}
	colorDarkBlue  = RGB{0, 0, 139}
	colorDarkGrey  = RGB{169, 169, 169}
	colorDarkGreen = RGB{0, 100, 0}
)

// BlockStyle describes how a text block is set on the page
type BlockStyle struct {
	Family      string
	Style       string // "", "B", "I", "BI"
	Size        float64
	Color       RGB
	Align       string // "L", "C", "R"
	LeftIndent  float64
	SpaceBefore float64
	SpaceAfter  float64
}

// Leading is the line height for the style
func (s BlockStyle) Leading() float64 {
	return s.Size * 1.2
}

// formStyles is the style sheet of the label/value form
var formStyles = map[model.BlockKind]BlockStyle{
	model.TitleBlock: {
		Family:     "Helvetica",
		Style:      "B",
		Size:       16,
		Color:      colorDarkBlue,
		Align:      "C",
		SpaceAfter: 20 + 12,
	},
	model.LabelBlock: {
		Family:     "Helvetica",
		Style:      "B",
		Size:       10,
		Color:      colorBlack,
		Align:      "L",
		SpaceAfter: 2,
	},
	model.ValueBlock: {
		Family:     "Helvetica",
		Size:       10,
		Color:      colorDarkGrey,
		Align:      "L",
		LeftIndent: 20,
		SpaceAfter: 12,
	},
	// filler is invisible on the white page
	model.FillerBlock: {
		Family: "Helvetica",
		Size:   1,
		Color:  colorWhite,
		Align:  "L",
	},
}

// StyleFor returns the style of a block kind, defaulting to the value style
func StyleFor(kind model.BlockKind) BlockStyle {
	if s, ok := formStyles[kind]; ok {
		return s
	}
	return formStyles[model.ValueBlock]
}
