package discover

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/repolens/repolens/internal/lang"
)

// File is a source file selected for analysis.
type File struct {
	Path     string        // absolute path
	RelPath  string        // slash-separated, relative to the root
	Language lang.Language // classified language
}

// Discover walks root and returns every analyzable source file, in
// deterministic (sorted) order. Directories in lang.SkipDirs are pruned
// recursively; files with unrecognized extensions or ignored names are
// skipped before extraction ever sees them.
//
// A missing root is the one fatal error of a run.
func Discover(ctx context.Context, root string) ([]File, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("repository path not found: %s", root)
	}

	var files []File
	err = filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			// Unreadable entries degrade locally, never abort the walk.
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if path != root && lang.SkipDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if lang.IgnoreFiles[strings.ToLower(info.Name())] {
			return nil
		}
		l, ok := lang.Classify(path)
		if !ok {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		files = append(files, File{
			Path:     path,
			RelPath:  filepath.ToSlash(rel),
			Language: l,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// ScanSummary is a cheap whole-tree census used by the ingest flow before
// full analysis (file and folder counts plus a sample of paths).
type ScanSummary struct {
	FileCount   int      `json:"file_count"`
	FolderCount int      `json:"folder_count"`
	SampleFiles []string `json:"sample_files"`
}

// Scan counts files and folders under root, honoring the same directory
// pruning as Discover but without language filtering.
func Scan(root string) (*ScanSummary, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("repository path not found: %s", root)
	}

	sum := &ScanSummary{}
	folders := map[string]bool{}
	err := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if info.IsDir() {
			if path != root && lang.SkipDirs[info.Name()] {
				return filepath.SkipDir
			}
			if path != root {
				folders[info.Name()] = true
			}
			return nil
		}
		sum.FileCount++
		if len(sum.SampleFiles) < 20 {
			sum.SampleFiles = append(sum.SampleFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sum.FolderCount = len(folders)
	return sum, nil
}
