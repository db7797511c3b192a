package resolve

import (
	"path"
	"sort"
	"strings"

	"github.com/repolens/repolens/internal/extract"
)

// sourceExts are appended to a cleaned reference when the direct lookup
// misses (imports routinely omit the extension).
var sourceExts = []string{".ts", ".tsx", ".js", ".jsx", ".py", ".java", ".go"}

// indexSuffixes are tried last: a directory reference resolves to the
// directory's index-style file.
var indexSuffixes = []string{"/index.ts", "/index.tsx", "/index.js", "/index.jsx", "/index.py", "/__init__.py"}

// aliasPrefix is the one path-alias convention recognized: "@/x" maps to
// "src/x".
const aliasPrefix = "@/"

// Deps classifies every raw import string of one file: resolved internal
// targets (file-to-file edges) and external package names.
type Deps struct {
	Imports  []string `json:"imports"`
	Resolved []string `json:"resolved"`
	External []string `json:"external"`
}

// Table is the normalized-path lookup built from every analyzed file's
// path. All keys use forward slashes. Registration order is sorted path
// order, so key collisions resolve deterministically (last writer wins).
type Table struct {
	keys map[string]string
}

// BuildTable registers, for every file: its full relative path, the path
// without extension, its bare filename with and without extension, every
// suffix obtained by dropping leading directory segments, the containing
// directory for index-style files, and the "@/" alias for src/ paths.
func BuildTable(paths []string) *Table {
	t := &Table{keys: make(map[string]string, len(paths)*8)}

	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	for _, p := range sorted {
		normalized := strings.ReplaceAll(p, "\\", "/")
		noExt := trimExt(normalized)

		t.put(noExt, p)
		t.put("./"+noExt, p)
		t.put("/"+noExt, p)

		t.put(normalized, p)
		t.put("./"+normalized, p)

		stem := trimExt(path.Base(normalized))
		t.put(stem, p)
		t.put("./"+stem, p)

		if stem == "index" || stem == "__init__" {
			if parent := path.Dir(normalized); parent != "." {
				t.put(parent, p)
				t.put("./"+parent, p)
				t.put("/"+parent, p)
			}
		}

		parts := strings.Split(normalized, "/")
		for i := range parts {
			partial := strings.Join(parts[i:], "/")
			t.put(partial, p)
			t.put("./"+partial, p)
			t.put(trimExt(partial), p)
			t.put("./"+trimExt(partial), p)
		}

		if rest, ok := strings.CutPrefix(normalized, "src/"); ok {
			t.put(aliasPrefix+rest, p)
			t.put(aliasPrefix+trimExt(rest), p)
		}
	}
	return t
}

func (t *Table) put(key, target string) {
	if key != "" {
		t.keys[key] = target
	}
}

// Resolve classifies one raw import string from fromFile. It returns the
// internal target path and true on a hit, or "" and false for an external
// reference. It never fails: an unresolvable string is external.
func (t *Table) Resolve(imp, fromFile string) (string, bool) {
	// Scoped package names (@scope/pkg) are always external; the "@/"
	// source-root alias is the one exception.
	if strings.HasPrefix(imp, "@") && strings.Contains(imp, "/") && !strings.HasPrefix(imp, aliasPrefix) {
		return "", false
	}

	clean := strings.ReplaceAll(imp, "\\", "/")
	dir := path.Dir(fromFile)

	switch {
	case strings.HasPrefix(clean, "./"):
		if dir == "." {
			clean = clean[2:]
		} else {
			clean = dir + "/" + clean[2:]
		}
	case strings.HasPrefix(clean, "../"):
		for strings.HasPrefix(clean, "../") {
			dir = path.Dir(dir)
			clean = clean[3:]
		}
		if dir != "." && dir != "/" {
			clean = dir + "/" + clean
		}
	case strings.HasPrefix(clean, "/"):
		clean = clean[1:]
	}

	if target, ok := t.keys[clean]; ok {
		return target, true
	}
	for _, ext := range sourceExts {
		if target, ok := t.keys[clean+ext]; ok {
			return target, true
		}
	}
	for _, idx := range indexSuffixes {
		if target, ok := t.keys[clean+idx]; ok {
			return target, true
		}
	}
	// Last chance: the raw string as written.
	if target, ok := t.keys[imp]; ok {
		return target, true
	}
	return "", false
}

// ResolveAll builds the lookup table from all records and classifies
// every import of every file. The result covers every input file, each
// with non-nil slices. Deterministic for a fixed file set.
func ResolveAll(records map[string]*extract.Record) map[string]*Deps {
	paths := make([]string, 0, len(records))
	for p := range records {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	table := BuildTable(paths)

	all := make(map[string]*Deps, len(records))
	for _, p := range paths {
		rec := records[p]
		deps := &Deps{
			Imports:  append([]string{}, rec.Imports...),
			Resolved: []string{},
			External: []string{},
		}

		seenResolved := map[string]bool{}
		seenExternal := map[string]bool{}
		for _, imp := range rec.Imports {
			if target, ok := table.Resolve(imp, p); ok {
				if !seenResolved[target] {
					seenResolved[target] = true
					deps.Resolved = append(deps.Resolved, target)
				}
			} else if !seenExternal[imp] {
				seenExternal[imp] = true
				deps.External = append(deps.External, imp)
			}
		}
		all[p] = deps
	}
	return all
}

// trimExt drops the final extension of a slash path, if any.
func trimExt(p string) string {
	ext := path.Ext(p)
	if ext == "" {
		return p
	}
	return strings.TrimSuffix(p, ext)
}
