package detect

import (
	"path"
	"sort"
	"strings"

	"github.com/repolens/repolens/internal/extract"
)

// entryBasenames mark a file as an application entry point by its
// extensionless basename.
var entryBasenames = map[string]bool{
	"main": true, "app": true, "index": true, "application": true,
	"server": true, "client": true, "program": true, "startup": true,
	"bootstrap": true, "init": true, "run": true, "start": true,
	"launcher": true, "entry": true, "root": true, "core": true,
	"mod": true, "lib": true, "_app": true, "_document": true,
	"page": true, "layout": true, "app.module": true,
	"app.component": true, "app-routing.module": true, "manage": true,
	"wsgi": true, "asgi": true, "settings": true, "urls": true,
	"views": true, "models": true, "api": true, "routes": true,
	"router": true,
}

// keyFileThreshold is the minimum importance score for a non-entry
// file to count as key; keyFileLimit caps how many scored files are
// reported after the entry points.
const (
	keyFileThreshold = 8
	keyFileLimit     = 20
)

var testPathMarkers = []string{"test_", "_test", "tests/", "/test/", ".test.", ".spec."}

func stem(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// EntryPoints lists every file whose basename matches an entry-point
// name or whose record carries the entry-point flag, sorted.
func EntryPoints(records map[string]*extract.Record) []string {
	result := []string{}
	for p, rec := range records {
		if entryBasenames[strings.ToLower(stem(p))] || rec.HasMain {
			result = append(result, p)
		}
	}
	sort.Strings(result)
	return result
}

// KeyFiles lists the most important files: every entry point first,
// then up to keyFileLimit non-test files scored by structural weight
// (imports count double, classes five-fold). Scored files order by
// descending score, path ascending on ties.
func KeyFiles(records map[string]*extract.Record) []string {
	paths := make([]string, 0, len(records))
	for p := range records {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	type scored struct {
		path  string
		score int
	}
	entries := []string{}
	var important []scored

	for _, p := range paths {
		rec := records[p]
		lower := strings.ToLower(p)

		isTest := false
		for _, marker := range testPathMarkers {
			if strings.Contains(lower, marker) {
				isTest = true
				break
			}
		}
		if isTest {
			continue
		}

		if entryBasenames[strings.ToLower(stem(p))] || rec.HasMain {
			entries = append(entries, p)
			continue
		}

		score := len(rec.Imports)*2 + len(rec.Classes)*5 + len(rec.Functions)
		if score >= keyFileThreshold {
			important = append(important, scored{p, score})
		}
	}

	sort.SliceStable(important, func(i, j int) bool {
		return important[i].score > important[j].score
	})
	if len(important) > keyFileLimit {
		important = important[:keyFileLimit]
	}

	result := entries
	for _, s := range important {
		result = append(result, s.path)
	}
	return result
}
