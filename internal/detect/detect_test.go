package detect

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/repolens/repolens/internal/extract"
	"github.com/repolens/repolens/internal/lang"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadManifestsPackageJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{
  "dependencies": {"react": "^18.0.0", "axios": "^1.0.0"},
  "devDependencies": {"vitest": "^1.0.0"}
}`)
	writeFile(t, root, "apps/web/package.json", `{"dependencies": {"vue": "^3.0.0"}}`)

	m := ReadManifests(root)

	if !reflect.DeepEqual(m.Deps.JavaScript["dependencies"], []string{"axios", "react"}) {
		t.Errorf("root deps = %v", m.Deps.JavaScript["dependencies"])
	}
	if !reflect.DeepEqual(m.Deps.JavaScript["devDependencies"], []string{"vitest"}) {
		t.Errorf("dev deps = %v", m.Deps.JavaScript["devDependencies"])
	}
	if !reflect.DeepEqual(m.Deps.JavaScript["apps/web/dependencies"], []string{"vue"}) {
		t.Errorf("nested manifest = %v", m.Deps.JavaScript)
	}
}

func TestReadManifestsPython(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "requirements.txt", "fastapi==0.100.0\nuvicorn[standard]>=0.20\n# comment\n-r other.txt\npsycopg2-binary\n")
	writeFile(t, root, "pyproject.toml", "[tool.poetry.dependencies]\npython = \"^3.11\"\nhttpx = \"*\"\n\n[tool.poetry.group.dev]\n")

	m := ReadManifests(root)

	got := m.Deps.Python["requirements.txt"]
	want := []string{"fastapi", "uvicorn", "psycopg2-binary"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("requirements = %v, want %v", got, want)
	}
	py := m.Deps.Python["pyproject.toml"]
	if !reflect.DeepEqual(py, []string{"python", "httpx"}) {
		t.Errorf("pyproject = %v", py)
	}
}

func TestReadManifestsSkipsPrunedDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "node_modules/dep/package.json", `{"dependencies": {"left-pad": "1.0.0"}}`)

	m := ReadManifests(root)
	if len(m.Deps.JavaScript) != 0 {
		t.Errorf("node_modules must be pruned: %v", m.Deps.JavaScript)
	}
}

func TestFrameworksDetection(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"dependencies": {"next": "14.0.0", "react": "18.0.0", "express": "4.18.0", "tailwindcss": "3.0.0"}}`)
	writeFile(t, root, "requirements.txt", "fastapi\nflask\n")

	m := ReadManifests(root)
	fw := m.Frameworks(nil)

	if !reflect.DeepEqual(fw.Frontend, []string{"Next.js", "Tailwind CSS"}) {
		t.Errorf("frontend = %v (Next.js must suppress React)", fw.Frontend)
	}
	if !reflect.DeepEqual(fw.Backend, []string{"FastAPI", "Flask", "Express.js"}) {
		t.Errorf("backend = %v", fw.Backend)
	}
}

func TestFrameworksFromImports(t *testing.T) {
	root := t.TempDir()
	records := map[string]*extract.Record{
		"src/App.java": {Language: lang.Java, Imports: []string{"org.springframework.boot.SpringApplication"}},
		"main.go":      {Language: lang.Go, Imports: []string{"github.com/gin-gonic/gin"}},
	}

	m := ReadManifests(root)
	fw := m.Frameworks(records)

	if !reflect.DeepEqual(fw.Backend, []string{"Spring Boot", "Gin (Go)"}) {
		t.Errorf("backend = %v", fw.Backend)
	}
}

func TestDatabasesFromDependencies(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"dependencies": {"pg": "8.0.0", "ioredis": "5.0.0", "prisma": "5.0.0"}}`)
	writeFile(t, root, "requirements.txt", "pymongo\n")

	m := ReadManifests(root)
	got := m.Databases()
	want := []string{"MongoDB", "PostgreSQL", "Redis"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("databases = %v, want %v", got, want)
	}
}

func TestDatabasesFromComposeAndPrisma(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docker-compose.yml", "services:\n  cache:\n    image: redis:7\n  db:\n    image: postgres:16\n")
	writeFile(t, root, "prisma/schema.prisma", "datasource db {\n  provider = \"sqlite\"\n}\n")

	m := ReadManifests(root)
	got := m.Databases()
	want := []string{"PostgreSQL", "Redis", "SQLite"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("databases = %v, want %v", got, want)
	}
}

func TestDatabasesFromEnvFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".env.example", "DATABASE_URL=postgresql://localhost/app\nREDIS_URL=redis://localhost\n")

	m := ReadManifests(root)
	got := m.Databases()
	if !reflect.DeepEqual(got, []string{"PostgreSQL", "Redis"}) {
		t.Errorf("databases = %v", got)
	}
}

func TestEntryPoints(t *testing.T) {
	records := map[string]*extract.Record{
		"src/main.py":        {Language: lang.Python},
		"src/helpers.py":     {Language: lang.Python},
		"cmd/tool/runner.go": {Language: lang.Go, HasMain: true},
		"app/page.tsx":       {Language: lang.TypeScriptReact},
	}
	got := EntryPoints(records)
	want := []string{"app/page.tsx", "cmd/tool/runner.go", "src/main.py"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("entry points = %v, want %v", got, want)
	}
}

func TestKeyFilesScoringAndTests(t *testing.T) {
	many := func(n int, prefix string) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = prefix
		}
		return out
	}
	records := map[string]*extract.Record{
		"src/main.py":           {Language: lang.Python},
		"src/engine.py":         {Language: lang.Python, Imports: many(3, "i"), Classes: many(2, "C")},
		"src/tiny.py":           {Language: lang.Python, Functions: many(2, "f")},
		"tests/test_engine.py":  {Language: lang.Python, Imports: many(9, "i"), Classes: many(9, "C")},
		"src/engine.spec.ts":    {Language: lang.TypeScript, Imports: many(9, "i")},
	}

	got := KeyFiles(records)
	want := []string{"src/main.py", "src/engine.py"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("key files = %v, want %v", got, want)
	}
}

func TestPackageManager(t *testing.T) {
	root := t.TempDir()
	if got := PackageManager(root); got != "" {
		t.Errorf("no evidence should yield empty, got %q", got)
	}

	writeFile(t, root, "package.json", `{"packageManager": "pnpm@9.0.0"}`)
	if got := PackageManager(root); got != "pnpm" {
		t.Errorf("packageManager field: got %q", got)
	}

	writeFile(t, root, "yarn.lock", "")
	if got := PackageManager(root); got != "yarn" {
		t.Errorf("lock file must win: got %q", got)
	}
}

func TestRunScripts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"scripts": {"dev": "vite", "build": "vite build", "postinstall": "husky"}}`)

	got := RunScripts(root)
	if got["dev"] != "vite" || got["build"] != "vite build" {
		t.Errorf("scripts = %v", got)
	}
	if _, ok := got["postinstall"]; ok {
		t.Error("unlisted scripts must be dropped")
	}
}

func TestReadReadme(t *testing.T) {
	root := t.TempDir()
	if ReadReadme(root) != nil {
		t.Fatal("missing README should be nil")
	}

	long := strings.Repeat("a", readmeCap+100)
	writeFile(t, root, "README.md", long)

	r := ReadReadme(root)
	if r == nil || r.File != "README.md" {
		t.Fatalf("readme = %+v", r)
	}
	if len(r.Content) != readmeCap || r.FullLength != readmeCap+100 {
		t.Errorf("cap: content=%d full=%d", len(r.Content), r.FullLength)
	}
}
