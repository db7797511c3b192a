package chat

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/repolens/repolens/internal/detect"
	"github.com/repolens/repolens/internal/engine"
	"github.com/repolens/repolens/internal/extract"
	"github.com/repolens/repolens/internal/lang"
)

func fixtureAnalysis() *engine.Analysis {
	return &engine.Analysis{
		Languages: map[string]engine.LanguageStat{
			"Python": {Count: 3, Lines: 120},
		},
		Frameworks: detect.Frameworks{Backend: []string{"FastAPI"}},
		Databases:  []string{"PostgreSQL"},
		Dependencies: &detect.Dependencies{
			Python: map[string][]string{"requirements.txt": {"fastapi", "uvicorn"}},
		},
		EntryPoints: []string{"src/main.py"},
		KeyFiles:    []string{"src/main.py", "src/services/user_service.py"},
		Files: map[string]*extract.Record{
			"src/main.py": {
				Language:  lang.Python,
				Functions: []string{"main"},
			},
			"src/services/user_service.py": {
				Language:  lang.Python,
				Functions: []string{"get_user", "list_users"},
				Classes:   []string{"UserService"},
			},
			"src/utils/format.py": {
				Language:  lang.Python,
				Functions: []string{"format_date"},
			},
		},
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New("", "", "")
	var chatErr *Error
	if !errors.As(err, &chatErr) || chatErr.Status != http.StatusInternalServerError {
		t.Fatalf("missing key must be a configuration error: %v", err)
	}

	if _, err := New("key", "https://api.groq.com/openai/v1", ""); err != nil {
		t.Fatalf("valid config: %v", err)
	}
}

func TestBuildContextSections(t *testing.T) {
	got := BuildContext(fixtureAnalysis(), "https://github.com/acme/demo", "", maxContextFiles)

	for _, want := range []string{
		"Repository: https://github.com/acme/demo",
		"Languages: Python (3 files)",
		"Backend frameworks: FastAPI",
		"Databases: PostgreSQL",
		"Entry points: src/main.py",
		"Functions: get_user, list_users",
		"Classes: UserService",
		"python: fastapi, uvicorn",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("context missing %q\n%s", want, got)
		}
	}
}

func TestBuildContextPrioritizesMentionedFiles(t *testing.T) {
	a := fixtureAnalysis()
	got := BuildContext(a, "", "what does format.py do?", 1)

	idx := strings.Index(got, "src/utils/format.py")
	if idx < 0 {
		t.Fatalf("mentioned file missing from context:\n%s", got)
	}
	if strings.Index(got, "  - src/main.py") >= 0 {
		t.Error("with one slot, the mentioned file must displace entry points")
	}
}

func TestBuildContextFileCap(t *testing.T) {
	a := fixtureAnalysis()
	got := BuildContext(a, "", "", 2)
	if !strings.Contains(got, "... and 1 more files") {
		t.Errorf("overflow marker missing:\n%s", got)
	}
}

func TestPrioritizeFilesOrdering(t *testing.T) {
	a := fixtureAnalysis()
	ordered := prioritizeFiles(a, "")

	if ordered[0] != "src/main.py" {
		t.Errorf("entry point should lead when nothing is mentioned: %v", ordered)
	}
	if ordered[1] != "src/services/user_service.py" {
		t.Errorf("key file should follow: %v", ordered)
	}
	if len(ordered) != len(a.Files) {
		t.Errorf("every file must appear exactly once: %v", ordered)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		msg    string
		status int
	}{
		{"429 rate_limit_exceeded", http.StatusTooManyRequests},
		{"invalid_api_key provided", http.StatusUnauthorized},
		{"401 authentication error", http.StatusUnauthorized},
		{"model_not_found: gone", http.StatusServiceUnavailable},
		{"context_length exceeded", http.StatusBadRequest},
		{"503 service_unavailable", http.StatusServiceUnavailable},
		{"weird transport failure", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got := classify(errors.New(tc.msg))
		if got.Status != tc.status {
			t.Errorf("classify(%q) = %d, want %d", tc.msg, got.Status, tc.status)
		}
		if got.Message == "" {
			t.Errorf("classify(%q) must carry a user-facing message", tc.msg)
		}
	}
}
