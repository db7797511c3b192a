// Package arch aggregates file-level analysis into a directory-level
// architecture model: components, layer classification, and weighted
// inter-component dependency edges.
package arch

import (
	"sort"
	"strings"

	"github.com/repolens/repolens/internal/extract"
	"github.com/repolens/repolens/internal/resolve"
)

// rule classifies components into one architectural layer. Rules are
// held in declaration order; on a score tie the earlier rule wins.
type rule struct {
	layer      string
	dirs       []string
	frameworks map[string]bool
	extensions map[string]bool
}

const (
	dirExactScore   = 10
	dirPartialScore = 5
	frameworkScore  = 8
	frontendExtScore = 3
)

// frontendExts mark a component as frontend-flavored even when its
// directory name says nothing.
var frontendExts = map[string]bool{".tsx": true, ".jsx": true, ".vue": true, ".svelte": true}

var layerRules = []rule{
	{
		layer: "frontend",
		dirs: []string{
			"src/components", "src/pages", "src/views", "src/app",
			"client", "frontend", "web", "ui", "public", "static",
			"src/screens", "src/layouts", "components", "pages", "views",
		},
		frameworks: map[string]bool{
			"React": true, "Vue.js": true, "Angular": true,
			"Svelte": true, "Next.js": true, "Nuxt.js": true,
		},
		extensions: frontendExts,
	},
	{
		layer: "api",
		dirs: []string{
			"api", "routes", "controllers", "endpoints", "handlers",
			"src/api", "app/api", "src/routes", "app/routes",
			"server/api", "server/routes",
		},
	},
	{
		layer: "services",
		dirs: []string{
			"services", "service", "src/services", "app/services",
			"lib", "src/lib", "core", "src/core", "domain",
			"business", "logic", "usecases", "server/services",
		},
	},
	{
		layer: "data",
		dirs: []string{
			"models", "schemas", "entities", "database", "db",
			"migrations", "prisma", "src/models", "app/models",
			"repositories", "dal", "server/models",
		},
		frameworks: map[string]bool{
			"SQLAlchemy": true, "Prisma": true, "TypeORM": true, "Sequelize": true,
		},
	},
	{
		layer: "config",
		dirs: []string{
			"config", "configuration", "settings", "src/config",
			"app/config", "app/core",
		},
	},
	{
		layer: "tests",
		dirs: []string{
			"tests", "test", "__tests__", "spec", "specs",
			"src/__tests__", "src/test", "e2e", "integration",
		},
	},
	{
		layer: "middleware",
		dirs: []string{
			"middleware", "middlewares", "src/middleware",
			"app/middleware", "interceptors",
		},
	},
	{
		layer: "utils",
		dirs: []string{
			"utils", "helpers", "shared", "common", "src/utils",
			"src/helpers", "tools", "lib/utils",
		},
	},
}

// layerOrder fixes the presentation order of the layer summary.
var layerOrder = []string{
	"frontend", "api", "middleware", "services", "data",
	"config", "utils", "tests", "other",
}

// Node is one component (or detected datastore) in the model.
type Node struct {
	ID             string   `json:"id"`
	Label          string   `json:"label"`
	Type           string   `json:"type"`
	Layer          string   `json:"layer"`
	FileCount      int      `json:"file_count"`
	Languages      []string `json:"languages"`
	FunctionsCount int      `json:"functions_count"`
	ClassesCount   int      `json:"classes_count"`
	Lines          int      `json:"lines"`
	Frameworks     []string `json:"frameworks"`
}

// Edge is a weighted component-to-component dependency.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
	Weight int    `json:"weight"`
}

// LayerSummary lists the component ids assigned to one layer.
type LayerSummary struct {
	Name  string   `json:"name"`
	Nodes []string `json:"nodes"`
}

// Model is the full architecture diagram model.
type Model struct {
	Nodes  []Node         `json:"nodes"`
	Edges  []Edge         `json:"edges"`
	Layers []LayerSummary `json:"layers"`
}

type component struct {
	files      []string
	languages  map[string]bool
	extensions map[string]bool
	functions  int
	classes    int
	lines      int
}

// Aggregate builds the architecture model from per-file records, their
// resolved dependencies, and the previously detected frameworks and
// datastores. Output ordering is deterministic for a fixed input.
func Aggregate(records map[string]*extract.Record, deps map[string]*resolve.Deps, frontendFW, backendFW, databases []string) *Model {
	components, fileComp := identifyComponents(records)

	ids := make([]string, 0, len(components))
	for id := range components {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	layers := make(map[string]string, len(components))
	for _, id := range ids {
		layers[id] = classify(id, components[id], frontendFW, backendFW)
	}

	edges := detectEdges(deps, fileComp)
	nodes := buildNodes(ids, components, layers, frontendFW, backendFW, databases)

	return &Model{
		Nodes:  nodes,
		Edges:  edges,
		Layers: summarize(nodes),
	}
}

// identifyComponents groups files by their first one or two path
// segments. Root-level files form the synthetic "(root)" component.
func identifyComponents(records map[string]*extract.Record) (map[string]*component, map[string]string) {
	components := map[string]*component{}
	fileComp := map[string]string{}

	for path, rec := range records {
		normalized := strings.ReplaceAll(path, "\\", "/")
		parts := strings.Split(normalized, "/")

		var id string
		switch {
		case len(parts) >= 3:
			id = parts[0] + "/" + parts[1]
		case len(parts) == 2:
			id = parts[0]
		default:
			id = "(root)"
		}
		fileComp[path] = id

		comp := components[id]
		if comp == nil {
			comp = &component{languages: map[string]bool{}, extensions: map[string]bool{}}
			components[id] = comp
		}
		comp.files = append(comp.files, path)
		comp.languages[string(rec.Language)] = true
		comp.extensions[rec.Extension] = true
		comp.functions += len(rec.Functions)
		comp.classes += len(rec.Classes)
		comp.lines += rec.Lines
	}
	return components, fileComp
}

// classify scores one component against every layer rule and returns
// the best-scoring layer, "other" when nothing scores.
func classify(id string, comp *component, frontendFW, backendFW []string) string {
	compLower := strings.ToLower(strings.ReplaceAll(id, "\\", "/"))

	detected := map[string]bool{}
	for _, fw := range frontendFW {
		detected[fw] = true
	}
	for _, fw := range backendFW {
		detected[fw] = true
	}

	layer := "other"
	best := 0
	for _, r := range layerRules {
		score := 0

		for _, d := range r.dirs {
			if compLower == d || strings.HasPrefix(compLower, d+"/") {
				score += dirExactScore
				break
			}
			lastSeg := d[strings.LastIndex(d, "/")+1:]
			if strings.Contains(compLower, "/"+d) || strings.HasSuffix(compLower, "/"+lastSeg) {
				score += dirPartialScore
				break
			}
		}

		if len(r.frameworks) > 0 && len(r.extensions) > 0 {
			anyFW := false
			for fw := range r.frameworks {
				if detected[fw] {
					anyFW = true
					break
				}
			}
			if anyFW {
				for ext := range comp.extensions {
					if r.extensions[ext] {
						score += frameworkScore
						break
					}
				}
			}
		}

		if r.layer == "frontend" {
			for ext := range comp.extensions {
				if frontendExts[ext] {
					score += frontendExtScore
					break
				}
			}
		}

		if score > best {
			best = score
			layer = r.layer
		}
	}
	return layer
}

func detectEdges(deps map[string]*resolve.Deps, fileComp map[string]string) []Edge {
	weights := map[[2]string]int{}

	paths := make([]string, 0, len(deps))
	for p := range deps {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		source := fileComp[p]
		if source == "" {
			continue
		}
		for _, target := range deps[p].Resolved {
			targetComp := fileComp[target]
			if targetComp == "" || targetComp == source {
				continue
			}
			weights[[2]string{source, targetComp}]++
		}
	}

	keys := make([][2]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	edges := make([]Edge, 0, len(keys))
	for _, k := range keys {
		edges = append(edges, Edge{Source: k[0], Target: k[1], Label: "imports", Weight: weights[k]})
	}
	return edges
}

func buildNodes(ids []string, components map[string]*component, layers map[string]string, frontendFW, backendFW, databases []string) []Node {
	nodes := make([]Node, 0, len(ids)+len(databases))

	for _, id := range ids {
		comp := components[id]
		label := titleCase(id)

		languages := make([]string, 0, len(comp.languages))
		for l := range comp.languages {
			languages = append(languages, l)
		}
		sort.Strings(languages)

		nodes = append(nodes, Node{
			ID:             id,
			Label:          label,
			Type:           "component",
			Layer:          layers[id],
			FileCount:      len(comp.files),
			Languages:      languages,
			FunctionsCount: comp.functions,
			ClassesCount:   comp.classes,
			Lines:          comp.lines,
			Frameworks:     frameworksFor(layers[id], frontendFW, backendFW),
		})
	}

	dbs := append([]string{}, databases...)
	sort.Strings(dbs)
	for _, db := range dbs {
		nodes = append(nodes, Node{
			ID:         "db::" + db,
			Label:      db,
			Type:       "database",
			Layer:      "data",
			Languages:  []string{},
			Frameworks: []string{},
		})
	}
	return nodes
}

// frameworksFor labels a component node with the detected frameworks
// its layer plausibly uses: frontend frameworks for the frontend layer,
// backend frameworks for api/services, ORM-like backend frameworks for
// the data layer.
func frameworksFor(layer string, frontendFW, backendFW []string) []string {
	switch layer {
	case "frontend":
		if len(frontendFW) > 0 {
			return append([]string{}, frontendFW...)
		}
	case "api", "services":
		if len(backendFW) > 0 {
			return append([]string{}, backendFW...)
		}
	case "data":
		var orms []string
		for _, fw := range backendFW {
			lower := strings.ToLower(fw)
			for _, orm := range []string{"sqlalchemy", "prisma", "typeorm", "sequelize", "django"} {
				if strings.Contains(lower, orm) {
					orms = append(orms, fw)
					break
				}
			}
		}
		if len(orms) > 0 {
			return orms
		}
	}
	return []string{}
}

func summarize(nodes []Node) []LayerSummary {
	var layers []LayerSummary
	for _, name := range layerOrder {
		var ids []string
		for _, n := range nodes {
			if n.Layer == name {
				ids = append(ids, n.ID)
			}
		}
		if len(ids) > 0 {
			layers = append(layers, LayerSummary{Name: name, Nodes: ids})
		}
	}
	return layers
}

// titleCase renders the last path segment as a display label: word
// separators become spaces, each word is capitalized.
func titleCase(id string) string {
	if id == "(root)" {
		return "Root"
	}
	seg := id[strings.LastIndex(id, "/")+1:]
	seg = strings.ReplaceAll(seg, "_", " ")
	seg = strings.ReplaceAll(seg, "-", " ")

	words := strings.Fields(seg)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
