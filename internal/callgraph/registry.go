package callgraph

import (
	"regexp"
	"sort"
)

// minNameLen excludes names shorter than two characters from candidate
// matching, to suppress trivial false positives from one-letter names.
const minNameLen = 2

// fallbackCap bounds how many cross-file candidates a single reference
// may fan out to when neither same-file nor imported-file resolution
// applies. Common short names would otherwise explode the graph.
const fallbackCap = 3

// registry indexes every declared function, qualified by file, plus a
// bare-name index used to resolve call candidates across files.
type registry struct {
	// ids maps "file::name" -> true for every registered function.
	ids map[string]bool
	// byName maps bareName -> sorted []id, bare names >= minNameLen only.
	byName map[string][]string
	// byFile maps file -> set of bare names declared in it.
	byFile map[string]map[string]bool
	// matchers holds one word-boundary matcher per indexed bare name.
	matchers map[string]*regexp.Regexp
}

func newRegistry() *registry {
	return &registry{
		ids:      map[string]bool{},
		byName:   map[string][]string{},
		byFile:   map[string]map[string]bool{},
		matchers: map[string]*regexp.Regexp{},
	}
}

// register adds one declared function. Duplicate (file, name) pairs
// collapse to a single identity.
func (r *registry) register(file, name string) {
	id := MakeID(file, name)
	if r.ids[id] {
		return
	}
	r.ids[id] = true

	if r.byFile[file] == nil {
		r.byFile[file] = map[string]bool{}
	}
	r.byFile[file][name] = true

	if len(name) < minNameLen {
		return
	}
	r.byName[name] = append(r.byName[name], id)
	sort.Strings(r.byName[name])
	if r.matchers[name] == nil {
		r.matchers[name] = regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	}
}

// candidateNames returns every indexed bare name in sorted order, for
// deterministic span scanning.
func (r *registry) candidateNames() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// declaredIn reports whether file declares a function with this bare name.
func (r *registry) declaredIn(file, name string) bool {
	return r.byFile[file][name]
}

// resolve maps one candidate bare name seen in callerFile's span to
// concrete function identities, by fixed precedence:
//
//  1. a definition in the caller's own file
//  2. definitions in files the caller has a resolved internal edge to
//  3. all remaining candidates, capped at fallbackCap (sorted first, so
//     the cap is deterministic)
//
// The caller's own identity is never produced (self-recursion is
// suppressed as graph noise).
func (r *registry) resolve(name, callerFile, callerName string, imported []string) []string {
	selfID := MakeID(callerFile, callerName)

	if r.declaredIn(callerFile, name) {
		id := MakeID(callerFile, name)
		if id == selfID {
			return nil
		}
		return []string{id}
	}

	var viaImports []string
	for _, target := range imported {
		if r.declaredIn(target, name) {
			viaImports = append(viaImports, MakeID(target, name))
		}
	}
	if len(viaImports) > 0 {
		sort.Strings(viaImports)
		return viaImports
	}

	var rest []string
	for _, id := range r.byName[name] {
		if id != selfID {
			rest = append(rest, id)
		}
	}
	if len(rest) > fallbackCap {
		rest = rest[:fallbackCap]
	}
	return rest
}
