package pipeline

import (
	"strings"

	"go-pdf-fixtures/internal/logger"
	"go-pdf-fixtures/internal/model"
	"go-pdf-fixtures/pkg/utils"
)

// SizeSpecParser extracts the generation directives from a row
type SizeSpecParser struct {
	SizeColumn     string
	FilenameColumn string
}

// Parse reads the size and filename directives of one row. It never fails:
// a malformed size is logged and treated as absent, and a zero or negative
// size is dropped silently.
func (p SizeSpecParser) Parse(row model.Row, rowIndex int) model.SizeSpec {
	var spec model.SizeSpec

	if raw, ok := row.Get(p.SizeColumn); ok && raw != nil {
		spec.TargetKB = parseTargetKB(raw, rowIndex)
	}

	if raw, ok := row.Get(p.FilenameColumn); ok && raw != nil {
		spec.Filename = strings.TrimSpace(utils.FormatValue(raw))
	}
	return spec
}

func parseTargetKB(raw interface{}, rowIndex int) int {
	f, err := utils.ParseNumber(raw)
	if err != nil {
		logger.Warn("invalid size directive, ignoring", "row", rowIndex, "value", raw, "err", err)
		return 0
	}
	// truncate toward zero; fractions of a KB below 1 collapse to absent
	if f >= float64(maxTargetKB) {
		logger.Warn("size directive too large, ignoring", "row", rowIndex, "value", raw)
		return 0
	}
	kb := int(f)
	if kb <= 0 {
		return 0
	}
	return kb
}

// maxTargetKB bounds a target to 1 TiB so KB-to-byte math cannot overflow
const maxTargetKB = 1 << 30
