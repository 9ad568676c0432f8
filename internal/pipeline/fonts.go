package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"go-pdf-fixtures/internal/logger"
)

// FontSet holds the faces used to draw one raster form
type FontSet struct {
	Title    font.Face
	Label    font.Face
	Value    font.Face
	Fallback bool
}

// Close releases the faces
func (fs FontSet) Close() {
	for _, f := range []font.Face{fs.Title, fs.Label, fs.Value} {
		if f != nil {
			f.Close()
		}
	}
}

// FontLoader resolves the preferred font once and hands out sized faces.
// A configured font file is preferred; otherwise the embedded Go fonts are
// used. Any failure degrades to the built-in bitmap face, never to an error.
type FontLoader struct {
	Path string

	once    sync.Once
	bold    *opentype.Font
	regular *opentype.Font
	err     error
}

// NewFontLoader creates a loader preferring the font file at path (may be empty)
func NewFontLoader(path string) *FontLoader {
	return &FontLoader{Path: path}
}

func (l *FontLoader) load() {
	l.err = l.parse()
	if l.err != nil {
		logger.Warn("preferred font unavailable, using built-in font", "path", l.Path, "err", l.err)
	}
}

func (l *FontLoader) parse() error {
	if l.Path != "" {
		f, err := parseFontFile(l.Path)
		if err != nil {
			return err
		}
		l.bold, l.regular = f, f
		return nil
	}

	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return fmt.Errorf("parse embedded bold font: %w", err)
	}
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("parse embedded regular font: %w", err)
	}
	l.bold, l.regular = bold, regular
	return nil
}

// Faces returns faces sized for the given scale factor
func (l *FontLoader) Faces(scale float64) FontSet {
	l.once.Do(l.load)
	if l.err != nil {
		return builtinFontSet()
	}

	title, err1 := newFace(l.bold, float64(int(24*scale)))
	label, err2 := newFace(l.bold, float64(int(16*scale)))
	value, err3 := newFace(l.regular, float64(int(14*scale)))
	if err1 != nil || err2 != nil || err3 != nil {
		FontSet{Title: title, Label: label, Value: value}.Close()
		logger.Warn("could not size preferred font, using built-in font", "scale", scale)
		return builtinFontSet()
	}
	return FontSet{Title: title, Label: label, Value: value}
}

func builtinFontSet() FontSet {
	return FontSet{
		Title:    basicfont.Face7x13,
		Label:    basicfont.Face7x13,
		Value:    basicfont.Face7x13,
		Fallback: true,
	}
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	if size < 1 {
		size = 1
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func parseFontFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".ttc") || strings.EqualFold(filepath.Ext(path), ".otc") {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse font collection %s: %w", path, err)
		}
		return coll.Font(0)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return f, nil
}
