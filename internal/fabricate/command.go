package fabricate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"go-pdf-fixtures/internal/logger"
)

// CommandGenerator runs an external generator executable. The executable
// reports progress as one JSON object per stdout line.
type CommandGenerator struct {
	Command string
}

// NewCommandGenerator creates a generator running command
func NewCommandGenerator(command string) *CommandGenerator {
	return &CommandGenerator{Command: command}
}

// Args returns the command-line arguments for req
func (g *CommandGenerator) Args(req Request) []string {
	args := []string{
		"generate",
		"--workspace", req.Workspace,
		"--database", req.Database,
		"--format", req.Format,
		"--dest", req.Dest,
	}
	if req.Overwrite {
		args = append(args, "--overwrite")
	}
	if req.Entity != "" {
		args = append(args, "--entity", req.Entity)
	}
	return args
}

// Generate runs the generator and forwards its progress lines. Stderr is
// captured and included in the error on failure.
func (g *CommandGenerator) Generate(ctx context.Context, req Request, onProgress ProgressFunc) error {
	args := g.Args(req)
	cmd := exec.CommandContext(ctx, g.Command, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%s: %w", g.Command, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", g.Command, err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var p Progress
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			logger.Debug("generator output", "line", line)
			continue
		}
		if onProgress != nil {
			onProgress(p)
		}
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		// keep draining so the child never blocks on a full pipe
		_, _ = io.Copy(io.Discard, stdout)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s generate: %w (stderr: %s)",
			g.Command, err, strings.TrimSpace(stderr.String()))
	}
	if scanErr != nil {
		return fmt.Errorf("read %s output: %w", g.Command, scanErr)
	}
	return nil
}
