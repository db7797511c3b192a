package detect

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// npmDatabases maps npm packages to the datastore they drive. ORMs and
// query builders carry no entry: the schema or connection config names
// the actual store.
var npmDatabases = map[string]string{
	"mongoose":               "MongoDB",
	"mongodb":                "MongoDB",
	"pg":                     "PostgreSQL",
	"postgres":               "PostgreSQL",
	"mysql":                  "MySQL",
	"mysql2":                 "MySQL",
	"redis":                  "Redis",
	"ioredis":                "Redis",
	"sqlite3":                "SQLite",
	"better-sqlite3":         "SQLite",
	"@elastic/elasticsearch": "Elasticsearch",
	"firebase":               "Firebase",
	"firebase-admin":         "Firebase",
	"@supabase/supabase-js":  "Supabase",
}

var pythonDatabases = map[string]string{
	"pymongo":                "MongoDB",
	"motor":                  "MongoDB",
	"psycopg2":               "PostgreSQL",
	"psycopg2-binary":        "PostgreSQL",
	"asyncpg":                "PostgreSQL",
	"pymysql":                "MySQL",
	"mysqlclient":            "MySQL",
	"mysql-connector-python": "MySQL",
	"redis":                  "Redis",
	"aioredis":               "Redis",
	"sqlite3":                "SQLite",
	"aiosqlite":              "SQLite",
	"elasticsearch":          "Elasticsearch",
	"firebase-admin":         "Firebase",
}

var composeFiles = []string{"docker-compose.yml", "docker-compose.yaml", "compose.yml", "compose.yaml"}

var envFiles = []string{".env", ".env.example", ".env.local", ".env.development"}

// Databases detects datastores from driver dependencies, the Prisma
// schema, compose service definitions, and environment files. The
// result is sorted.
func (m *Manifest) Databases() []string {
	found := map[string]bool{}

	npm := m.npmDeps()
	for dep, db := range npmDatabases {
		if npm[dep] {
			found[db] = true
		}
	}
	py := m.pythonDeps()
	for dep, db := range pythonDatabases {
		if py[dep] {
			found[db] = true
		}
	}

	m.prismaDatabase(found)
	m.composeDatabases(found)
	m.envDatabases(found)

	dbs := make([]string, 0, len(found))
	for db := range found {
		dbs = append(dbs, db)
	}
	sort.Strings(dbs)
	return dbs
}

func (m *Manifest) prismaDatabase(found map[string]bool) {
	raw, err := os.ReadFile(filepath.Join(m.root, "prisma", "schema.prisma"))
	if err != nil {
		return
	}
	lower := strings.ToLower(string(raw))
	switch {
	case strings.Contains(lower, "postgresql") || strings.Contains(lower, "postgres"):
		found["PostgreSQL"] = true
	case strings.Contains(lower, "mysql"):
		found["MySQL"] = true
	case strings.Contains(lower, "mongodb"):
		found["MongoDB"] = true
	case strings.Contains(lower, "sqlite"):
		found["SQLite"] = true
	}
}

// composeDatabases inspects the services of a compose file: the
// service name and its image both count as evidence. Unparseable
// compose files fall back to a whole-file text check.
func (m *Manifest) composeDatabases(found map[string]bool) {
	for _, name := range composeFiles {
		raw, err := os.ReadFile(filepath.Join(m.root, name))
		if err != nil {
			continue
		}

		var compose struct {
			Services map[string]struct {
				Image string `yaml:"image"`
			} `yaml:"services"`
		}
		text := strings.ToLower(string(raw))
		if err := yaml.Unmarshal(raw, &compose); err == nil && len(compose.Services) > 0 {
			var parts []string
			for svc, def := range compose.Services {
				parts = append(parts, strings.ToLower(svc), strings.ToLower(def.Image))
			}
			text = strings.Join(parts, " ")
		}

		if strings.Contains(text, "postgres") {
			found["PostgreSQL"] = true
		}
		if strings.Contains(text, "mysql") || strings.Contains(text, "mariadb") {
			found["MySQL"] = true
		}
		if strings.Contains(text, "mongo") {
			found["MongoDB"] = true
		}
		if strings.Contains(text, "redis") {
			found["Redis"] = true
		}
	}
}

func (m *Manifest) envDatabases(found map[string]bool) {
	for _, name := range envFiles {
		raw, err := os.ReadFile(filepath.Join(m.root, name))
		if err != nil {
			continue
		}
		lower := strings.ToLower(string(raw))
		if strings.Contains(lower, "mongodb") || strings.Contains(lower, "mongo_uri") {
			found["MongoDB"] = true
		}
		if strings.Contains(lower, "postgres") || strings.Contains(lower, "postgresql") {
			found["PostgreSQL"] = true
		}
		if strings.Contains(lower, "mysql") {
			found["MySQL"] = true
		}
		if strings.Contains(lower, "redis") {
			found["Redis"] = true
		}
	}
}
