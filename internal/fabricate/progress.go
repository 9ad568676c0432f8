package fabricate

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultProgress prints compact "[phase] N% complete, status..." lines
func DefaultProgress(w io.Writer) ProgressFunc {
	return func(p Progress) {
		phase := ""
		if p.Phase != "" {
			phase = "[" + p.Phase + "] "
		}
		status := ""
		if p.Status != "" {
			status = ", " + p.Status
		}
		fmt.Fprintf(w, "  %s%s%% complete%s...\n", phase, formatPercent(p.PercentComplete), status)
	}
}

// NewProgressPrinter returns a printer with per-phase icons, or one that
// prints nothing when verbose is false.
func NewProgressPrinter(w io.Writer, verbose bool) ProgressFunc {
	return func(p Progress) {
		if !verbose {
			return
		}
		phase := "📊 Generating"
		if p.Phase != "" {
			phase = "📊 " + p.Phase
		}
		status := ""
		if p.Status != "" {
			status = " - " + p.Status
		}
		fmt.Fprintf(w, "  %s %s: %s%%%s\n", phaseIcon(p.Phase), phase, formatPercent(p.PercentComplete), status)
	}
}

func phaseIcon(phase string) string {
	p := strings.ToLower(phase)
	switch {
	case p == "":
		return "🔄"
	case strings.Contains(p, "complete"):
		return "✅"
	case strings.Contains(p, "error"), strings.Contains(p, "fail"):
		return "❌"
	case strings.Contains(p, "download"):
		return "⬇️"
	default:
		return "🔄"
	}
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
