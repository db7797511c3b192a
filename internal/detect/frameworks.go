package detect

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/repolens/repolens/internal/extract"
	"github.com/repolens/repolens/internal/lang"
)

// Frameworks separates detected frameworks by the side of the stack
// they serve; the architecture aggregator labels layers with them.
type Frameworks struct {
	Frontend []string `json:"frontend"`
	Backend  []string `json:"backend"`
}

// Frameworks detects frontend and backend frameworks from declared
// dependencies, marker config files, and observed imports. Detection
// order is fixed, so the output lists are deterministic.
func (m *Manifest) Frameworks(records map[string]*extract.Record) Frameworks {
	npm := m.npmDeps()
	py := m.pythonDeps()

	var allImports []string
	hasGo := false
	for _, rec := range records {
		allImports = append(allImports, rec.Imports...)
		if rec.Language == lang.Go {
			hasGo = true
		}
	}

	frontend := []string{}
	backend := []string{}

	if m.hasConfigFile("next.config.js") || m.hasConfigFile("next.config.ts") ||
		m.hasConfigFile("next.config.mjs") || npm["next"] {
		frontend = append(frontend, "Next.js")
	} else if npm["react"] || npm["react-dom"] {
		frontend = append(frontend, "React")
	}
	if npm["vue"] {
		frontend = append(frontend, "Vue.js")
	}
	if npm["nuxt"] || m.hasConfigFile("nuxt.config.js") || m.hasConfigFile("nuxt.config.ts") {
		frontend = append(frontend, "Nuxt.js")
	}
	if npm["@angular/core"] {
		frontend = append(frontend, "Angular")
	}
	if npm["svelte"] {
		frontend = append(frontend, "Svelte")
	}
	if npm["@sveltejs/kit"] {
		frontend = append(frontend, "SvelteKit")
	}
	if npm["vite"] {
		frontend = append(frontend, "Vite")
	}
	if npm["tailwindcss"] {
		frontend = append(frontend, "Tailwind CSS")
	}

	if py["fastapi"] {
		backend = append(backend, "FastAPI")
	}
	if py["flask"] {
		backend = append(backend, "Flask")
	}
	if py["django"] || m.hasConfigFile("manage.py") {
		backend = append(backend, "Django")
	}
	if npm["express"] {
		backend = append(backend, "Express.js")
	}
	if npm["@nestjs/core"] || npm["nestjs"] {
		backend = append(backend, "NestJS")
	}
	if npm["koa"] {
		backend = append(backend, "Koa")
	}
	if npm["@hapi/hapi"] || npm["hapi"] {
		backend = append(backend, "Hapi")
	}

	if anyContains(allImports, "springframework") {
		backend = append(backend, "Spring Boot")
	} else if m.hasConfigFile("pom.xml") || m.hasConfigFile("build.gradle") {
		for _, cfg := range []string{"pom.xml", "build.gradle"} {
			raw, err := os.ReadFile(filepath.Join(m.root, cfg))
			if err != nil {
				continue
			}
			lower := strings.ToLower(string(raw))
			if strings.Contains(lower, "spring-boot") || strings.Contains(lower, "springframework") {
				backend = append(backend, "Spring Boot")
				break
			}
		}
	}

	if hasGo {
		joined := strings.Join(allImports, " ")
		if strings.Contains(joined, "gin-gonic/gin") {
			backend = append(backend, "Gin (Go)")
		}
		if strings.Contains(joined, "gofiber/fiber") {
			backend = append(backend, "Fiber (Go)")
		}
		if strings.Contains(joined, "labstack/echo") {
			backend = append(backend, "Echo (Go)")
		}
	}

	if m.hasConfigFile("gemfile") {
		if raw, err := os.ReadFile(filepath.Join(m.root, "Gemfile")); err == nil {
			if strings.Contains(strings.ToLower(string(raw)), "rails") {
				backend = append(backend, "Ruby on Rails")
			}
		}
	}

	if m.hasConfigFile("artisan") || m.hasConfigFile("composer.json") {
		if raw, err := os.ReadFile(filepath.Join(m.root, "composer.json")); err == nil {
			if strings.Contains(strings.ToLower(string(raw)), "laravel") {
				backend = append(backend, "Laravel")
			}
		}
	}

	return Frameworks{Frontend: frontend, Backend: backend}
}

func anyContains(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
