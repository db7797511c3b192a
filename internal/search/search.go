// Package search ranks files, functions, classes, and imports of an
// analyzed tree against a free-text query, expanding the query with
// programming-concept synonyms.
package search

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/repolens/repolens/internal/extract"
)

// conceptSynonyms expand a query term into related programming terms.
var conceptSynonyms = map[string][]string{
	"auth":           {"authentication", "login", "logout", "signin", "signout", "session", "jwt", "token", "oauth", "password", "credential"},
	"authentication": {"auth", "login", "logout", "signin", "signout", "session", "jwt", "token", "oauth", "password", "credential"},
	"login":          {"auth", "authentication", "signin", "session", "credential"},

	"api":     {"endpoint", "route", "controller", "handler", "request", "response", "rest", "graphql"},
	"fetch":   {"request", "http", "api", "get", "post", "axios", "ajax"},
	"request": {"fetch", "http", "api", "get", "post", "axios"},

	"database": {"db", "sql", "query", "model", "schema", "migration", "repository", "orm"},
	"db":       {"database", "sql", "query", "model", "schema", "migration", "repository"},
	"model":    {"schema", "entity", "database", "orm", "table"},

	"component": {"widget", "element", "view", "ui", "render"},
	"ui":        {"component", "view", "frontend", "interface", "layout", "style"},
	"style":     {"css", "scss", "sass", "tailwind", "styled", "theme"},

	"state": {"store", "redux", "context", "provider", "reducer", "action"},
	"store": {"state", "redux", "context", "provider"},

	"test": {"spec", "testing", "jest", "mocha", "pytest", "unittest", "assert"},
	"spec": {"test", "testing", "describe", "it", "expect"},

	"error":     {"exception", "catch", "throw", "try", "handle", "failure"},
	"exception": {"error", "catch", "throw", "try", "handle"},

	"config":   {"configuration", "settings", "env", "environment", "options"},
	"settings": {"config", "configuration", "options", "preferences"},

	"util":   {"utility", "helper", "utils", "common", "shared"},
	"helper": {"util", "utility", "utils", "common"},

	"validate":   {"validation", "validator", "check", "verify", "sanitize"},
	"validation": {"validate", "validator", "check", "verify", "schema"},
}

// Scoring weights: direct name hits dominate, path hits help, expanded
// synonym hits contribute least. Type multipliers favor declarations
// over imports.
const (
	nameScore     = 10.0
	nameEdgeScore = 5.0
	pathScore     = 3.0
	expandedScore = 1.5

	// DefaultLimit caps how many results a search returns.
	DefaultLimit = 20
)

var typeBoost = map[string]float64{
	"file":     1.2,
	"function": 1.5,
	"class":    1.4,
	"import":   0.8,
}

var wordPattern = regexp.MustCompile(`\w+`)

// identifierSep splits camelCase and snake_case identifiers into words
// so "getUserProfile" is searchable as "get user profile".
var identifierSep = regexp.MustCompile(`[_\-.]|([a-z0-9])([A-Z])`)

// Result is one scored search hit.
type Result struct {
	Type     string  `json:"type"`
	Name     string  `json:"name"`
	FilePath string  `json:"file_path"`
	Context  string  `json:"context"`
	Score    float64 `json:"score"`
}

// Response is the full search payload with results grouped by type.
type Response struct {
	Query        string              `json:"query"`
	TotalResults int                 `json:"total_results"`
	Results      []Result            `json:"results"`
	Grouped      map[string][]Result `json:"grouped"`
}

// ExpandQuery lowercases the query, splits it into word terms, and
// unions in the synonym set of every term. The result is sorted.
func ExpandQuery(query string) []string {
	terms := wordPattern.FindAllString(strings.ToLower(query), -1)
	set := map[string]bool{}
	for _, term := range terms {
		set[term] = true
		for _, syn := range conceptSynonyms[term] {
			set[syn] = true
		}
	}
	expanded := make([]string, 0, len(set))
	for term := range set {
		expanded = append(expanded, term)
	}
	sort.Strings(expanded)
	return expanded
}

// splitIdentifier renders an identifier's casing and separator words
// as one lowercase space-joined string.
func splitIdentifier(name string) string {
	spaced := identifierSep.ReplaceAllString(name, "$1 $2")
	return strings.ToLower(spaced)
}

type indexItem struct {
	typ     string
	name    string
	path    string
	context string
}

// buildIndex flattens records into searchable items: one per file,
// function, class, and import, in sorted path order.
func buildIndex(records map[string]*extract.Record) []indexItem {
	paths := make([]string, 0, len(records))
	for p := range records {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var index []indexItem
	for _, p := range paths {
		rec := records[p]
		normalized := strings.ReplaceAll(p, "\\", "/")
		base := path.Base(normalized)

		index = append(index, indexItem{"file", base, normalized, normalized})
		for _, fn := range rec.Functions {
			index = append(index, indexItem{"function", fn, normalized, fmt.Sprintf("function in %s", base)})
		}
		for _, cls := range rec.Classes {
			index = append(index, indexItem{"class", cls, normalized, fmt.Sprintf("class in %s", base)})
		}
		for _, imp := range rec.Imports {
			index = append(index, indexItem{"import", imp, normalized, fmt.Sprintf("imported in %s", base)})
		}
	}
	return index
}

// score rates one item against the raw and expanded query terms.
func score(item indexItem, queryTerms, expandedTerms []string) float64 {
	name := strings.ToLower(item.name)
	filePath := strings.ToLower(item.path)
	searchable := name + " " + splitIdentifier(item.name) + " " + filePath + " " + strings.ToLower(item.context)

	total := 0.0
	for _, term := range queryTerms {
		if strings.Contains(name, term) {
			total += nameScore
			if name == term || strings.HasPrefix(name, term) || strings.HasSuffix(name, term) {
				total += nameEdgeScore
			}
		}
	}
	for _, term := range queryTerms {
		if strings.Contains(filePath, term) {
			total += pathScore
		}
	}

	raw := map[string]bool{}
	for _, term := range queryTerms {
		raw[term] = true
	}
	for _, term := range expandedTerms {
		if !raw[term] && strings.Contains(searchable, term) {
			total += expandedScore
		}
	}

	boost, ok := typeBoost[item.typ]
	if !ok {
		boost = 1.0
	}
	return total * boost
}

// Search ranks everything in records against the query and returns up
// to limit results, best first. A blank query yields no results.
func Search(query string, records map[string]*extract.Record, limit int) []Result {
	if strings.TrimSpace(query) == "" {
		return []Result{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	queryTerms := wordPattern.FindAllString(strings.ToLower(query), -1)
	expandedTerms := ExpandQuery(query)

	var results []Result
	for _, item := range buildIndex(records) {
		s := score(item, queryTerms, expandedTerms)
		if s > 0 {
			results = append(results, Result{
				Type:     item.typ,
				Name:     item.name,
				FilePath: item.path,
				Context:  item.context,
				Score:    s,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []Result{}
	}
	return results
}

// Run performs a search and groups the hits by result type.
func Run(query string, records map[string]*extract.Record) *Response {
	results := Search(query, records, DefaultLimit)

	grouped := map[string][]Result{}
	for _, r := range results {
		grouped[r.Type] = append(grouped[r.Type], r)
	}
	return &Response{
		Query:        query,
		TotalResults: len(results),
		Results:      results,
		Grouped:      grouped,
	}
}
