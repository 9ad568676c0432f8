package pipeline

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"sync"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"go-pdf-fixtures/internal/logger"
	"go-pdf-fixtures/internal/model"
)

const (
	pageSize = "Letter"

	vectorMargin       = 72.0
	vectorBottomMargin = 18.0
	rasterMargin       = 36.0
)

// Encoder serializes rendered content into one document artifact at path
type Encoder interface {
	Encode(content model.RenderedContent, path string, targetKB int) error
}

// PDFEncoder writes letter-size PDF artifacts
type PDFEncoder struct {
	// Validate runs a structural check on every artifact after it is written
	Validate bool
}

// NewPDFEncoder creates a PDF encoder
func NewPDFEncoder(validate bool) *PDFEncoder {
	return &PDFEncoder{Validate: validate}
}

// Encode writes content to path. Failures are returned as-is; nothing is retried.
func (e *PDFEncoder) Encode(content model.RenderedContent, path string, targetKB int) error {
	var err error
	switch content.Mode {
	case model.Vector:
		err = encodeBlocks(content.Blocks, path)
	case model.Raster:
		err = encodeImage(content.Image, path, targetKB)
	default:
		err = fmt.Errorf("unknown render mode %q", content.Mode)
	}
	if err != nil {
		return err
	}

	if e.Validate {
		if err := ValidateArtifact(path); err != nil {
			return fmt.Errorf("artifact failed validation: %w", err)
		}
		logger.Debug("artifact validated", "path", path)
	}
	return nil
}

// encodeBlocks sets the text blocks on fixed-margin letter pages
func encodeBlocks(blocks []model.Block, path string) error {
	pdf := fpdf.New("P", "pt", pageSize, "")
	pdf.SetMargins(vectorMargin, vectorMargin, vectorMargin)
	pdf.SetAutoPageBreak(true, vectorBottomMargin)
	pdf.SetCreator("go-pdf-fixtures", false)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	left, _, _, _ := pdf.GetMargins()

	for _, b := range blocks {
		st := StyleFor(b.Kind)
		pdf.SetFont(st.Family, st.Style, st.Size)
		pdf.SetTextColor(st.Color.R, st.Color.G, st.Color.B)
		if st.SpaceBefore > 0 {
			pdf.Ln(st.SpaceBefore)
		}
		pdf.SetX(left + st.LeftIndent)
		pdf.MultiCell(0, st.Leading(), tr(b.Text), "", st.Align, false)
		if st.SpaceAfter > 0 {
			pdf.Ln(st.SpaceAfter)
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("layout document: %w", err)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// encodeImage embeds img as the only content of a letter page
func encodeImage(img image.Image, path string, targetKB int) error {
	if img == nil {
		return fmt.Errorf("no image to encode")
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return fmt.Errorf("degenerate image %dx%d", bounds.Dx(), bounds.Dy())
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality(targetKB)}); err != nil {
		return fmt.Errorf("jpeg encode: %w", err)
	}

	pdf := fpdf.New("P", "pt", pageSize, "")
	pdf.SetMargins(rasterMargin, rasterMargin, rasterMargin)
	pdf.SetAutoPageBreak(false, rasterMargin)
	pdf.SetCreator("go-pdf-fixtures", false)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	maxW, maxH := pageW-2*rasterMargin, pageH-2*rasterMargin
	w, h := FitImage(bounds.Dx(), bounds.Dy(), maxW, maxH)

	opts := fpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader("form", opts, &buf)
	pdf.ImageOptions("form", rasterMargin+(maxW-w)/2, rasterMargin, w, h, false, opts, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("embed image: %w", err)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// JPEGQuality is the encode quality for a target: 98 at 100 KB and above, else 95
func JPEGQuality(targetKB int) int {
	if targetKB >= 100 {
		return 98
	}
	return 95
}

// FitImage scales a width x height image to fit within maxW x maxH,
// preserving aspect ratio and never upscaling.
func FitImage(width, height int, maxW, maxH float64) (float64, float64) {
	w, h := float64(width), float64(height)
	scale := min(maxW/w, maxH/h, 1.0)
	return w * scale, h * scale
}

var pdfcpuSetup sync.Once

// ValidateArtifact checks that path parses as a PDF document
func ValidateArtifact(path string) error {
	pdfcpuSetup.Do(api.DisableConfigDir)
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	return api.ValidateFile(path, conf)
}
