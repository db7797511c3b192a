// Package engine orchestrates a full analysis run: discovery, parallel
// per-file extraction, reference resolution, call graph construction,
// manifest detection, and architecture aggregation, merged into one
// analysis record.
package engine

import (
	"context"
	"log/slog"
	"os"
	"path"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/repolens/repolens/internal/arch"
	"github.com/repolens/repolens/internal/callgraph"
	"github.com/repolens/repolens/internal/detect"
	"github.com/repolens/repolens/internal/discover"
	"github.com/repolens/repolens/internal/extract"
	"github.com/repolens/repolens/internal/resolve"
)

// LanguageStat is the per-language census.
type LanguageStat struct {
	Count int `json:"count"`
	Lines int `json:"lines"`
}

// Complexity sums structural metrics across the whole tree.
type Complexity struct {
	Files     int `json:"files"`
	Lines     int `json:"lines"`
	Functions int `json:"functions"`
	Classes   int `json:"classes"`
}

// TreeNode is one entry of the hierarchical file tree.
type TreeNode struct {
	Type     string               `json:"type"`
	Size     int                  `json:"size,omitempty"`
	Language string               `json:"language,omitempty"`
	Lines    int                  `json:"lines,omitempty"`
	Children map[string]*TreeNode `json:"children,omitempty"`
}

// Analysis is the merged result of one run. Collaborators consume it
// directly: the web layer serializes it, chat and search build their
// own views over Files and the detection fields.
type Analysis struct {
	Languages        map[string]LanguageStat    `json:"languages"`
	Frameworks       detect.Frameworks          `json:"frameworks"`
	Databases        []string                   `json:"databases"`
	Dependencies     *detect.Dependencies       `json:"dependencies"`
	EntryPoints      []string                   `json:"entry_points"`
	KeyFiles         []string                   `json:"key_files"`
	Tree             map[string]*TreeNode       `json:"tree"`
	TotalFiles       int                        `json:"total_files"`
	Complexity       Complexity                 `json:"complexity"`
	Files            map[string]*extract.Record `json:"files"`
	FileDependencies map[string]*resolve.Deps   `json:"file_dependencies"`
	CallGraph        *callgraph.Graph           `json:"call_graph"`
	Architecture     *arch.Model                `json:"architecture"`
	Readme           *detect.Readme             `json:"readme"`
	PackageManager   string                     `json:"package_manager,omitempty"`
	RunScripts       map[string]string          `json:"run_scripts,omitempty"`
}

func workerCount(n int) int {
	w := runtime.NumCPU()
	if n < w {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Analyze runs the full engine over one repository root. The only
// fatal condition is a missing root; per-file read and parse failures
// degrade that file's record without aborting the run.
func Analyze(ctx context.Context, root string) (*Analysis, error) {
	slog.Info("analyze.start", "path", root)

	files, err := discover.Discover(ctx, root)
	if err != nil {
		return nil, err
	}
	slog.Info("analyze.discovered", "files", len(files))

	t := time.Now()
	records, contents := extractAll(files)
	slog.Info("pass.timing", "pass", "extract", "elapsed", time.Since(t))

	t = time.Now()
	deps := resolve.ResolveAll(records)
	slog.Info("pass.timing", "pass", "resolve", "elapsed", time.Since(t))

	t = time.Now()
	graph := callgraph.Build(records, deps, contents)
	contents = nil // full-content cache is only needed for span scanning
	slog.Info("pass.timing", "pass", "callgraph", "elapsed", time.Since(t))

	t = time.Now()
	manifests := detect.ReadManifests(root)
	frameworks := manifests.Frameworks(records)
	databases := manifests.Databases()
	slog.Info("pass.timing", "pass", "detect", "elapsed", time.Since(t))

	t = time.Now()
	model := arch.Aggregate(records, deps, frameworks.Frontend, frameworks.Backend, databases)
	slog.Info("pass.timing", "pass", "architecture", "elapsed", time.Since(t))

	analysis := &Analysis{
		Languages:        languageStats(records),
		Frameworks:       frameworks,
		Databases:        databases,
		Dependencies:     manifests.Deps,
		EntryPoints:      detect.EntryPoints(records),
		KeyFiles:         detect.KeyFiles(records),
		Tree:             buildTree(records),
		TotalFiles:       len(records),
		Complexity:       complexity(records),
		Files:            records,
		FileDependencies: deps,
		CallGraph:        graph,
		Architecture:     model,
		Readme:           detect.ReadReadme(root),
		PackageManager:   detect.PackageManager(root),
		RunScripts:       detect.RunScripts(root),
	}

	slog.Info("analyze.done",
		"files", analysis.TotalFiles,
		"functions", analysis.Complexity.Functions,
		"edges", len(model.Edges))
	return analysis, nil
}

// extractAll reads and extracts every discovered file across a bounded
// worker pool. A file that cannot be read still yields a record with
// empty structure. The returned contents map holds full (uncapped)
// sources for call-graph span scanning.
func extractAll(files []discover.File) (map[string]*extract.Record, map[string]string) {
	type result struct {
		record  *extract.Record
		content string
	}
	results := make([]result, len(files))

	g := new(errgroup.Group)
	g.SetLimit(workerCount(len(files)))
	for i, f := range files {
		g.Go(func() error {
			raw, err := os.ReadFile(f.Path)
			if err != nil {
				slog.Warn("extract.read_failed", "file", f.RelPath, "err", err)
				raw = nil
			}
			ext := strings.ToLower(path.Ext(f.RelPath))
			results[i] = result{
				record:  extract.Extract(ext, f.Language, raw),
				content: string(raw),
			}
			return nil
		})
	}
	_ = g.Wait()

	records := make(map[string]*extract.Record, len(files))
	contents := make(map[string]string, len(files))
	for i, f := range files {
		records[f.RelPath] = results[i].record
		contents[f.RelPath] = results[i].content
	}
	return records, contents
}

func languageStats(records map[string]*extract.Record) map[string]LanguageStat {
	stats := map[string]LanguageStat{}
	for _, rec := range records {
		s := stats[string(rec.Language)]
		s.Count++
		s.Lines += rec.Lines
		stats[string(rec.Language)] = s
	}
	return stats
}

func complexity(records map[string]*extract.Record) Complexity {
	c := Complexity{Files: len(records)}
	for _, rec := range records {
		c.Lines += rec.Lines
		c.Functions += len(rec.Functions)
		c.Classes += len(rec.Classes)
	}
	return c
}

// buildTree folds the flat record paths into a nested folder/file
// structure for display.
func buildTree(records map[string]*extract.Record) map[string]*TreeNode {
	tree := map[string]*TreeNode{}

	for p, rec := range records {
		parts := strings.Split(strings.ReplaceAll(p, "\\", "/"), "/")
		current := tree
		for i, part := range parts {
			if i == len(parts)-1 {
				current[part] = &TreeNode{
					Type:     "file",
					Size:     rec.Size,
					Language: string(rec.Language),
					Lines:    rec.Lines,
				}
				continue
			}
			node := current[part]
			if node == nil || node.Children == nil {
				node = &TreeNode{Type: "folder", Children: map[string]*TreeNode{}}
				current[part] = node
			}
			current = node.Children
		}
	}
	return tree
}
