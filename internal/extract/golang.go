package extract

import (
	"regexp"
	"strings"
)

var (
	// Matches single-import form and the first path of a grouped block;
	// later paths in a block are under-matched, a known scanner limit.
	goImport = regexp.MustCompile(`import\s+(?:\(\s*)?["']([^"']+)["']`)
	goFunc   = regexp.MustCompile(`func\s+(?:\([^)]+\)\s+)?(\w+)`)
)

func extractGo(text string) symbols {
	return symbols{
		Imports:   captures(goImport, text),
		Functions: captures(goFunc, text),
		Classes:   []string{}, // Go has no classes
		HasMain:   strings.Contains(text, "func main()"),
	}
}
