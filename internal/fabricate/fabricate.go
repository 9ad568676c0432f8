// Package fabricate obtains the SQLite database a run reads from by asking
// an upstream schema generator to produce one.
package fabricate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-pdf-fixtures/internal/logger"
)

// Progress is one progress report from the generator
type Progress struct {
	Phase           string  `json:"phase"`
	PercentComplete float64 `json:"percentComplete"`
	Status          string  `json:"status"`
}

// ProgressFunc receives progress reports while a database is generated
type ProgressFunc func(Progress)

// Request describes one database to generate
type Request struct {
	Workspace string
	Database  string
	Format    string
	Dest      string
	Overwrite bool
	Entity    string
}

// Generator produces a database at req.Dest
type Generator interface {
	Generate(ctx context.Context, req Request, onProgress ProgressFunc) error
}

// DefaultBaseDir is where databases go when no destination is given
const DefaultBaseDir = "fabricate"

// Manager generates databases and removes the ones it placed in its own
// temporary location.
type Manager struct {
	Workspace string
	Generator Generator
	BaseDir   string
	Out       io.Writer

	now      func() time.Time
	tempPath string
}

// NewManager creates a manager for workspace using gen
func NewManager(workspace string, gen Generator, out io.Writer) *Manager {
	if out == nil {
		out = io.Discard
	}
	return &Manager{
		Workspace: workspace,
		Generator: gen,
		BaseDir:   DefaultBaseDir,
		Out:       out,
		now:       time.Now,
	}
}

// GenerateDatabase generates the named database and returns its destination.
// With an empty outputDir the destination is <BaseDir>/<name>_<unix-seconds>
// and is removed again by Cleanup.
func (m *Manager) GenerateDatabase(ctx context.Context, name, outputDir, entity string, onProgress ProgressFunc) (string, error) {
	if name == "" {
		return "", errors.New("database name is required")
	}

	var dest string
	if outputDir == "" {
		dest = filepath.Join(m.BaseDir, fmt.Sprintf("%s_%d", name, m.now().Unix()))
	} else {
		dest = outputDir
	}
	dest, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("resolve destination: %w", err)
	}
	if outputDir == "" {
		m.tempPath = dest
	}

	fmt.Fprintf(m.Out, "Generating database '%s' from Fabricate...\n", name)
	fmt.Fprintf(m.Out, "Workspace: %s\n", m.Workspace)
	fmt.Fprintf(m.Out, "Output directory: %s\n", dest)

	if onProgress == nil {
		onProgress = DefaultProgress(m.Out)
	}
	req := Request{
		Workspace: m.Workspace,
		Database:  name,
		Format:    "sqlite",
		Dest:      dest,
		Overwrite: true,
		Entity:    entity,
	}
	if err := m.Generator.Generate(ctx, req, onProgress); err != nil {
		fmt.Fprintf(m.Out, "❌ Failed to generate database: %v\n", err)
		return "", fmt.Errorf("generate database %q: %w", name, err)
	}
	return dest, nil
}

// TempPath returns the destination Cleanup will remove, if any
func (m *Manager) TempPath() string {
	return m.tempPath
}

// Cleanup removes a database generated into the default location. Failures
// are only logged.
func (m *Manager) Cleanup() {
	if m.tempPath == "" {
		return
	}
	path := m.tempPath
	m.tempPath = ""

	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to clean up database", "path", path, "err", err)
		}
		return
	}

	kind := "file"
	if info.IsDir() {
		kind = "directory"
	}
	if err := os.RemoveAll(path); err != nil {
		logger.Warn("failed to clean up database", "path", path, "err", err)
		return
	}
	fmt.Fprintf(m.Out, "🧹 Cleaned up database %s: %s\n", kind, path)
}

var databaseExts = []string{".db", ".sqlite", ".sqlite3"}

// ResolveDatabasePath returns the database file for a generated destination.
// A file is returned as-is; a directory must hold exactly one database file.
func ResolveDatabasePath(dest string) (string, error) {
	info, err := os.Stat(dest)
	if err != nil {
		return "", fmt.Errorf("database destination: %w", err)
	}
	if !info.IsDir() {
		return dest, nil
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		return "", fmt.Errorf("read database directory: %w", err)
	}
	var found []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range databaseExts {
			if ext == want {
				found = append(found, filepath.Join(dest, e.Name()))
				break
			}
		}
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("no database file in %s", dest)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%d database files in %s, expected one", len(found), dest)
	}
}
