package extract

import (
	"regexp"
	"strings"
)

// The JS/TS scanner is pattern-based: it can both over- and under-match
// (a comment containing `class Foo` is misread as a declaration). That is
// an accepted limitation of scanning without a grammar, not a defect.
var (
	// import X from 'module' / import type { X } from 'module'
	jsImportFrom = regexp.MustCompile(`(?s)import\s+.*?\s+from\s+['"]([^'"]+)['"]`)
	// import 'module' (side effects only)
	jsImportBare = regexp.MustCompile(`import\s+['"]([^'"]+)['"]`)
	// require('module')
	jsRequire = regexp.MustCompile(`require\s*\(\s*['"]([^'"]+)['"]\s*\)`)
	// import('module')
	jsDynamicImport = regexp.MustCompile(`import\s*\(\s*['"]([^'"]+)['"]\s*\)`)
	// export * from 'module' / export { x } from 'module'
	jsExportFrom = regexp.MustCompile(`(?s)export\s+.*?\s+from\s+['"]([^'"]+)['"]`)

	jsFunction = regexp.MustCompile(`(?:function|const|let|var)\s+(\w+)\s*(?:=\s*(?:async\s*)?\(|=\s*function|\()`)
	jsClass    = regexp.MustCompile(`class\s+(\w+)`)
)

func extractJS(text string) symbols {
	var imports []string
	for _, re := range []*regexp.Regexp{jsImportFrom, jsImportBare, jsRequire, jsDynamicImport, jsExportFrom} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			imports = append(imports, m[1])
		}
	}

	return symbols{
		Imports:   uniqueSorted(imports),
		Functions: captures(jsFunction, text),
		Classes:   captures(jsClass, text),
		HasMain: strings.Contains(text, "createRoot") ||
			strings.Contains(text, "ReactDOM.render") ||
			strings.Contains(text, "createApp"),
	}
}

// captures returns the first submatch of every match, in document order.
func captures(re *regexp.Regexp, text string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}
