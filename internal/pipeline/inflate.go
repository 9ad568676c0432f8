package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"

	"go-pdf-fixtures/internal/logger"
	"go-pdf-fixtures/internal/model"
	"go-pdf-fixtures/pkg/utils"
)

const (
	// PaddingMarker precedes the filler; it is a PDF comment line
	PaddingMarker = "\n% Load testing padding data\n"

	paddingChunkSize = 64 * 1024
	paddingByte      = 'A'
	trailerScanBytes = 1024

	// DefaultTolerance is the fractional size deviation accepted by Verify
	DefaultTolerance = 0.1
)

var startxrefPattern = regexp.MustCompile(`startxref\s+(\d+)\s+%%EOF\s*$`)

// Inflator grows finished artifacts to their target size and checks the result
type Inflator struct {
	Tolerance float64
}

// NewInflator creates an inflator; a non-positive tolerance uses DefaultTolerance
func NewInflator(tolerance float64) *Inflator {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Inflator{Tolerance: tolerance}
}

// Inflate appends padding to the file at path until it holds at least
// targetKB*1024 bytes. Files already at or above the target are left alone.
// The file is only ever appended to. When the file ends in a
// "startxref N %%EOF" trailer, that trailer is restated after the filler so
// readers scanning from the end still find the cross-reference table.
// It reports whether any bytes were written.
func (in *Inflator) Inflate(path string, targetKB int) (bool, error) {
	target := int64(targetKB) * 1024
	current, err := utils.GetFileSize(path)
	if err != nil {
		return false, fmt.Errorf("stat artifact: %w", err)
	}
	if current >= target {
		return false, nil
	}

	trailer, err := readTrailer(path, current)
	if err != nil {
		return false, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return false, fmt.Errorf("open artifact for padding: %w", err)
	}
	defer f.Close()

	if _, err := io.WriteString(f, PaddingMarker); err != nil {
		return false, fmt.Errorf("write padding marker: %w", err)
	}

	remaining := target - current - int64(len(PaddingMarker)) - int64(len(trailer))
	if err := writeFiller(f, remaining); err != nil {
		return false, err
	}

	if _, err := f.Write(trailer); err != nil {
		return false, fmt.Errorf("write trailer: %w", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("close artifact: %w", err)
	}
	return true, nil
}

// writeFiller writes n filler bytes in fixed-size chunks
func writeFiller(w io.Writer, n int64) error {
	if n <= 0 {
		return nil
	}
	chunk := bytes.Repeat([]byte{paddingByte}, int(min(n, paddingChunkSize)))
	for n > 0 {
		size := min(n, int64(len(chunk)))
		if _, err := w.Write(chunk[:size]); err != nil {
			return fmt.Errorf("write padding: %w", err)
		}
		n -= size
	}
	return nil
}

// readTrailer returns the restated end-of-file trailer for the artifact,
// or nil when its tail has no startxref section.
func readTrailer(path string, size int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	n := min(size, trailerScanBytes)
	tail := make([]byte, n)
	if _, err := f.ReadAt(tail, size-n); err != nil && err != io.EOF {
		return nil, fmt.Errorf("read artifact tail: %w", err)
	}

	m := startxrefPattern.FindSubmatch(tail)
	if m == nil {
		return nil, nil
	}
	return []byte(fmt.Sprintf("\nstartxref\n%s\n%%%%EOF\n", m[1])), nil
}

// Verify compares the artifact's size with its target. It only logs: a
// deviation beyond the tolerance produces a warning and nothing else.
func (in *Inflator) Verify(path string, targetKB int, label string) model.Verification {
	v := model.Verification{TargetKB: targetKB, Tolerance: in.Tolerance, Within: true}

	size, err := utils.GetFileSize(path)
	if err != nil {
		logger.Warn("could not verify artifact size", "file", label, "err", err)
		return v
	}
	v.ActualKB = float64(size) / 1024

	if math.Abs(v.ActualKB-float64(targetKB)) > float64(targetKB)*in.Tolerance {
		v.Within = false
		logger.Warn("artifact size outside tolerance",
			"file", label,
			"target_kb", targetKB,
			"actual_kb", fmt.Sprintf("%.1f", v.ActualKB),
		)
	}
	return v
}
