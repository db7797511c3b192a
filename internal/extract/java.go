package extract

import (
	"regexp"
	"strings"
)

var (
	javaImport = regexp.MustCompile(`import\s+([\w.]+);`)
	javaMethod = regexp.MustCompile(`(?:public|private|protected)?\s*(?:static)?\s*\w+\s+(\w+)\s*\([^)]*\)\s*(?:throws\s+\w+\s*)?\{`)
	javaClass  = regexp.MustCompile(`class\s+(\w+)`)
)

func extractJava(text string) symbols {
	return symbols{
		Imports:   captures(javaImport, text),
		Functions: captures(javaMethod, text),
		Classes:   captures(javaClass, text),
		HasMain:   strings.Contains(text, "public static void main"),
	}
}
