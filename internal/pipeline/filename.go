package pipeline

import (
	"path"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	fallbackFilename  = "document"
	maxFilenameLength = 200
	artifactExt       = ".pdf"
)

var (
	disallowedChars = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s\-.]`)
	separatorRuns   = regexp.MustCompile(`[\s_]+`)
)

// SanitizeFilename makes a row-supplied name safe to use inside the output
// directory. Path components are stripped, characters outside word, space,
// hyphen and dot become underscores, whitespace and underscore runs collapse
// to one underscore, leading and trailing underscores and dots are trimmed,
// and the result is never empty and at most 200 bytes. Sanitizing a
// sanitized name returns it unchanged.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(strings.TrimRight(name, "/"))
	if name == "." || name == "/" {
		name = ""
	}

	name = disallowedChars.ReplaceAllString(name, "_")
	name = separatorRuns.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_.")

	if name == "" {
		name = fallbackFilename
	}
	if len(name) > maxFilenameLength {
		name = truncateUTF8(name, maxFilenameLength)
		name = strings.Trim(name, "_.")
	}
	return name
}

// ResolveFilename picks the artifact filename for a row: the sanitized
// custom name (with a .pdf extension added when missing) or "<index>.pdf".
func ResolveFilename(custom string, rowIndex int) string {
	if custom == "" {
		return strconv.Itoa(rowIndex) + artifactExt
	}
	name := SanitizeFilename(custom)
	if !strings.HasSuffix(strings.ToLower(name), artifactExt) {
		name += artifactExt
	}
	return name
}

func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
