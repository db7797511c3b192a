// Package callgraph builds a cross-file function call graph from
// extracted symbols. It never parses call expressions: each declared
// function's body span is scanned for word-boundary occurrences of
// other declared names, and every occurrence is resolved to concrete
// targets by a fixed precedence (same file, then imported files, then
// a capped global fallback).
package callgraph

import (
	"sort"

	"github.com/repolens/repolens/internal/extract"
	"github.com/repolens/repolens/internal/lang"
	"github.com/repolens/repolens/internal/resolve"
)

// Node is one declared function with its forward and reverse edges.
// Edge values are function identities ("file::name").
type Node struct {
	File     string   `json:"file"`
	Name     string   `json:"name"`
	Language string   `json:"language"`
	Calls    []string `json:"calls"`
	CalledBy []string `json:"called_by"`
}

// Graph holds every declared function keyed by identity. Forward and
// reverse edges are mutually consistent: a appears in b.CalledBy
// exactly when b appears in a.Calls.
type Graph struct {
	Functions map[string]*Node `json:"functions"`
}

// Build assembles the call graph. records and deps are keyed by
// relative file path; contents carries the full (uncapped) source of
// each file, since body spans must not be cut short by the stored
// content limit. Output is deterministic for a fixed input.
func Build(records map[string]*extract.Record, deps map[string]*resolve.Deps, contents map[string]string) *Graph {
	paths := make([]string, 0, len(records))
	for p := range records {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	reg := newRegistry()
	graph := &Graph{Functions: map[string]*Node{}}

	for _, p := range paths {
		rec := records[p]
		for _, name := range rec.Functions {
			reg.register(p, name)
			id := MakeID(p, name)
			if graph.Functions[id] == nil {
				graph.Functions[id] = &Node{
					File:     p,
					Name:     name,
					Language: string(rec.Language),
					Calls:    []string{},
					CalledBy: []string{},
				}
			}
		}
	}

	names := reg.candidateNames()

	for _, p := range paths {
		rec := records[p]
		content := contents[p]
		if content == "" {
			content = rec.Content
		}
		family := lang.FamilyOf(rec.Language)

		var imported []string
		if d := deps[p]; d != nil {
			imported = d.Resolved
		}

		for _, caller := range rec.Functions {
			span := spanFor(family, caller, content)
			if span == "" {
				continue
			}
			node := graph.Functions[MakeID(p, caller)]
			seen := map[string]bool{}
			for _, candidate := range names {
				if !reg.matchers[candidate].MatchString(span) {
					continue
				}
				for _, target := range reg.resolve(candidate, p, caller, imported) {
					if !seen[target] {
						seen[target] = true
						node.Calls = append(node.Calls, target)
					}
				}
			}
			sort.Strings(node.Calls)
		}
	}

	ids := make([]string, 0, len(graph.Functions))
	for id := range graph.Functions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		for _, target := range graph.Functions[id].Calls {
			if callee := graph.Functions[target]; callee != nil {
				callee.CalledBy = append(callee.CalledBy, id)
			}
		}
	}
	for _, node := range graph.Functions {
		sort.Strings(node.CalledBy)
	}

	return graph
}
