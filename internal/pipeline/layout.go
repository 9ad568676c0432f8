package pipeline

import (
	"strings"
	"unicode"

	"go-pdf-fixtures/internal/model"
	"go-pdf-fixtures/pkg/utils"
)

const (
	// paddingThresholdBytes is the target below which no filler blocks are added
	paddingThresholdBytes = 50_000
	fillerBlockCount      = 3
)

// fillerText is the low-entropy filler paragraph (700 chars)
var fillerText = strings.Repeat("padding", 100)

// LayoutBuilder turns rows into the text blocks of the vector form
type LayoutBuilder struct {
	Title string
}

// Build emits the title block followed by one label and one value block per
// field, in the row's column order. The row must already exclude directive columns.
func (b LayoutBuilder) Build(row model.Row) []model.Block {
	blocks := make([]model.Block, 0, 1+2*len(row))
	blocks = append(blocks, model.Block{Kind: model.TitleBlock, Text: b.Title})
	for _, f := range row {
		blocks = append(blocks,
			model.Block{Kind: model.LabelBlock, Text: FieldLabel(f.Name)},
			model.Block{Kind: model.ValueBlock, Text: utils.FormatValue(f.Value)},
		)
	}
	return blocks
}

// AddPadding appends invisible filler blocks for large targets. It is a
// coarse pre-inflation step; the inflator finishes exact sizing. The input
// slice is not modified.
func (b LayoutBuilder) AddPadding(blocks []model.Block, targetBytes int64) []model.Block {
	if targetBytes <= paddingThresholdBytes {
		return blocks
	}
	padded := make([]model.Block, len(blocks), len(blocks)+fillerBlockCount)
	copy(padded, blocks)
	for i := 0; i < fillerBlockCount; i++ {
		padded = append(padded, model.Block{Kind: model.FillerBlock, Text: fillerText})
	}
	return padded
}

// FieldLabel converts a column name to its form label, e.g. "first_name" -> "First Name:"
func FieldLabel(name string) string {
	return HumanizeName(name) + ":"
}

// HumanizeName replaces underscores with spaces and title-cases the result
func HumanizeName(name string) string {
	return titleCase(strings.ReplaceAll(name, "_", " "))
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest, so digits also start a new word ("line2b" -> "Line2B").
func titleCase(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				sb.WriteRune(unicode.ToLower(r))
			} else {
				sb.WriteRune(unicode.ToTitle(r))
			}
			prevLetter = true
			continue
		}
		sb.WriteRune(r)
		prevLetter = false
	}
	return sb.String()
}
