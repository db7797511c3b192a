// Package detect reads project manifests and configuration files to
// identify dependencies, frameworks, datastores, entry points, and key
// files of an analyzed tree.
package detect

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/repolens/repolens/internal/lang"
)

// Dependencies groups declared dependencies by ecosystem, keyed by the
// manifest location that declared them (monorepos carry several).
type Dependencies struct {
	Python     map[string][]string `json:"python"`
	JavaScript map[string][]string `json:"javascript"`
	Other      map[string][]string `json:"other"`
}

// Manifest is everything learned from one walk over the tree's
// manifest and configuration files.
type Manifest struct {
	root string
	Deps *Dependencies

	// configFiles holds every file basename seen, lowercased. Used for
	// presence checks (next.config.js, manage.py, artisan, ...).
	configFiles map[string]bool
}

var (
	pyprojectDep   = regexp.MustCompile(`^([a-zA-Z0-9_-]+)\s*=`)
	goModDep       = regexp.MustCompile(`(?m)^\s*([\w./-]+)\s+v`)
	cargoDep       = regexp.MustCompile(`(?m)^\s*([a-zA-Z0-9_-]+)\s*=`)
	requirementSep = regexp.MustCompile(`[=<>!~\[]`)
)

// ReadManifests walks the tree once, pruning the same directories the
// file discovery prunes, and collects every declared dependency. IO
// and parse errors on individual manifests skip that manifest only.
func ReadManifests(root string) *Manifest {
	m := &Manifest{
		root: root,
		Deps: &Dependencies{
			Python:     map[string][]string{},
			JavaScript: map[string][]string{},
			Other:      map[string][]string{},
		},
		configFiles: map[string]bool{},
	}

	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if lang.SkipDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		name := info.Name()
		m.configFiles[strings.ToLower(name)] = true

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		switch {
		case name == "package.json":
			m.readPackageJSON(path, rel)
		case isRequirementsFile(name):
			m.readRequirements(path, rel)
		case name == "pyproject.toml":
			m.readPyproject(path, rel)
		}
		return nil
	})

	// Root-only manifests for the remaining ecosystems.
	m.readGoMod()
	m.readCargoToml()

	return m
}

func isRequirementsFile(name string) bool {
	switch strings.ToLower(name) {
	case "requirements.txt", "requirements-dev.txt", "requirements.dev.txt":
		return true
	}
	return false
}

// manifestKey prefixes a logical key with the manifest's directory, so
// nested manifests in monorepos stay distinguishable.
func manifestKey(rel, suffix string) string {
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "." {
		return suffix
	}
	return dir + "/" + suffix
}

func (m *Manifest) readPackageJSON(path, rel string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return
	}
	if len(pkg.Dependencies) > 0 {
		m.Deps.JavaScript[manifestKey(rel, "dependencies")] = sortedKeys(pkg.Dependencies)
	}
	if len(pkg.DevDependencies) > 0 {
		m.Deps.JavaScript[manifestKey(rel, "devDependencies")] = sortedKeys(pkg.DevDependencies)
	}
}

func (m *Manifest) readRequirements(path, rel string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var deps []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		pkg := strings.TrimSpace(requirementSep.Split(line, 2)[0])
		if pkg != "" {
			deps = append(deps, pkg)
		}
	}
	if len(deps) > 0 {
		m.Deps.Python[manifestKey(rel, filepath.Base(rel))] = deps
	}
}

// readPyproject scans the [project.dependencies] or
// [tool.poetry.dependencies] section line by line. A full TOML parse
// is deliberately not attempted; the key-per-line poetry layout is the
// one that matters here.
func (m *Manifest) readPyproject(path, rel string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var deps []string
	inSection := false
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.Contains(line, "[project.dependencies]") || strings.Contains(line, "[tool.poetry.dependencies]") {
			inSection = true
			continue
		}
		if inSection {
			if strings.HasPrefix(line, "[") {
				break
			}
			if match := pyprojectDep.FindStringSubmatch(strings.TrimSpace(line)); match != nil {
				deps = append(deps, match[1])
			}
		}
	}
	if len(deps) > 0 {
		m.Deps.Python[manifestKey(rel, "pyproject.toml")] = deps
	}
}

func (m *Manifest) readGoMod() {
	raw, err := os.ReadFile(filepath.Join(m.root, "go.mod"))
	if err != nil {
		return
	}
	var deps []string
	for _, match := range goModDep.FindAllStringSubmatch(string(raw), -1) {
		deps = append(deps, match[1])
	}
	if len(deps) > 0 {
		m.Deps.Other["go.mod"] = deps
	}
}

func (m *Manifest) readCargoToml() {
	raw, err := os.ReadFile(filepath.Join(m.root, "Cargo.toml"))
	if err != nil {
		return
	}
	var deps []string
	for _, match := range cargoDep.FindAllStringSubmatch(string(raw), -1) {
		switch match[1] {
		case "name", "version", "edition", "authors":
		default:
			deps = append(deps, match[1])
		}
	}
	if len(deps) > 0 {
		m.Deps.Other["Cargo.toml"] = deps
	}
}

// hasConfigFile reports whether a file with this basename exists
// anywhere in the tree (case-insensitive).
func (m *Manifest) hasConfigFile(name string) bool {
	return m.configFiles[strings.ToLower(name)]
}

// npmDeps flattens every JavaScript manifest into one package set.
func (m *Manifest) npmDeps() map[string]bool {
	set := map[string]bool{}
	for _, deps := range m.Deps.JavaScript {
		for _, d := range deps {
			set[d] = true
		}
	}
	return set
}

// pythonDeps flattens every Python manifest into one lowercased set.
func (m *Manifest) pythonDeps() map[string]bool {
	set := map[string]bool{}
	for _, deps := range m.Deps.Python {
		for _, d := range deps {
			set[strings.ToLower(d)] = true
		}
	}
	return set
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
