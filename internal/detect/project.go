package detect

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// readmeCap bounds how much README content is carried in the analysis
// record; the full length is still reported.
const readmeCap = 5000

var readmeNames = []string{"README.md", "readme.md", "README", "readme.txt", "README.rst"}

// Readme is the truncated project README.
type Readme struct {
	File       string `json:"file"`
	Content    string `json:"content"`
	FullLength int    `json:"full_length"`
}

// ReadReadme returns the first root-level README found, capped at
// readmeCap runes, or nil when none exists.
func ReadReadme(root string) *Readme {
	for _, name := range readmeNames {
		raw, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		content := string(raw)
		capped := content
		if runes := []rune(content); len(runes) > readmeCap {
			capped = string(runes[:readmeCap])
		}
		return &Readme{File: name, Content: capped, FullLength: len(content)}
	}
	return nil
}

// lockFiles map a lock file to its package manager, checked in order
// of reliability.
var lockFiles = []struct {
	file    string
	manager string
}{
	{"pnpm-lock.yaml", "pnpm"},
	{"yarn.lock", "yarn"},
	{"bun.lockb", "bun"},
	{"package-lock.json", "npm"},
}

// PackageManager identifies the JavaScript package manager: lock files
// first, then package.json's packageManager field, then npm as the
// default when package.json exists at all. Empty when no evidence.
func PackageManager(root string) string {
	for _, lf := range lockFiles {
		if _, err := os.Stat(filepath.Join(root, lf.file)); err == nil {
			return lf.manager
		}
	}

	raw, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return ""
	}
	var pkg struct {
		PackageManager string `json:"packageManager"`
	}
	if err := json.Unmarshal(raw, &pkg); err == nil && pkg.PackageManager != "" {
		for _, pm := range []string{"pnpm", "yarn", "bun", "npm"} {
			if strings.Contains(pkg.PackageManager, pm) {
				return pm
			}
		}
	}
	return "npm"
}

// scriptNames are the package.json scripts worth surfacing.
var scriptNames = []string{"start", "dev", "serve", "build", "test", "lint"}

// RunScripts extracts the notable scripts from the root package.json,
// nil when none apply.
func RunScripts(root string) map[string]string {
	raw, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return nil
	}
	var pkg struct {
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return nil
	}

	picked := map[string]string{}
	for _, name := range scriptNames {
		if cmd, ok := pkg.Scripts[name]; ok {
			picked[name] = cmd
		}
	}
	if len(picked) == 0 {
		return nil
	}
	return picked
}
