package model

import "image"

// Field is one named column value of a source row
type Field struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// Row is an ordered, schema-agnostic record read from the row source.
// Column order is the order the source reported; rendering preserves it.
type Row []Field

// Get returns the value stored under name and whether the column exists
func (r Row) Get(name string) (interface{}, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Without returns a copy of the row with the named columns removed
func (r Row) Without(names ...string) Row {
	out := make(Row, 0, len(r))
	for _, f := range r {
		skip := false
		for _, n := range names {
			if f.Name == n {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, f)
		}
	}
	return out
}

// Columns returns the column names in order
func (r Row) Columns() []string {
	cols := make([]string, len(r))
	for i, f := range r {
		cols[i] = f.Name
	}
	return cols
}

// SizeSpec holds the generation directives parsed from one row.
// TargetKB is zero when no usable size directive is present.
type SizeSpec struct {
	TargetKB int    `json:"target_kb,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// HasTarget reports whether a positive target size was requested
func (s SizeSpec) HasTarget() bool {
	return s.TargetKB > 0
}

// TargetBytes returns the requested size in bytes (0 when absent)
func (s SizeSpec) TargetBytes() int64 {
	return int64(s.TargetKB) * 1024
}

// RenderMode selects the rendering path for a whole run
type RenderMode string

const (
	Vector RenderMode = "vector"
	Raster RenderMode = "raster"
)

// BlockKind tags a text block in the vector layout
type BlockKind string

const (
	TitleBlock  BlockKind = "title"
	LabelBlock  BlockKind = "label"
	ValueBlock  BlockKind = "value"
	FillerBlock BlockKind = "filler"
)

// Block is one styled paragraph of the vector layout
type Block struct {
	Kind BlockKind `json:"kind"`
	Text string    `json:"text"`
}

// RenderedContent is the output of the rendering stage: exactly one of
// Blocks (vector) or Image (raster) is set, matching Mode.
type RenderedContent struct {
	Mode   RenderMode  `json:"mode"`
	Blocks []Block     `json:"blocks,omitempty"`
	Image  image.Image `json:"-"`
}

// GenerationJob defines one artifact generation run
type GenerationJob struct {
	DBPath            string     `json:"db_path"`
	Table             string     `json:"table"`
	OutputDir         string     `json:"output_dir"`
	Title             string     `json:"title"`
	Mode              RenderMode `json:"mode"`
	Workers           int        `json:"workers"`
	Tolerance         float64    `json:"tolerance"`
	SizeColumn        string     `json:"size_column"`
	FilenameColumn    string     `json:"filename_column"`
	ValidateArtifacts bool       `json:"validate_artifacts"`
	FontPath          string     `json:"font_path,omitempty"`
}
