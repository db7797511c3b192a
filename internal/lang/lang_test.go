package lang

import "testing"

func TestClassifyKnownExtensions(t *testing.T) {
	cases := map[string]Language{
		"src/app.py":              Python,
		"web/index.jsx":           JavaScriptReact,
		"web/Button.tsx":          TypeScriptReact,
		"server/main.go":          Go,
		"core/Engine.java":        Java,
		"lib/util.RS":             Rust, // extension match is case-insensitive
		"components/App.vue":      Vue,
		"components/Card.svelte":  Svelte,
		"native/bridge.h":         CHeader,
		"native/matrix.hpp":       CPPHeader,
		"deep/nested/handlers.ts": TypeScript,
	}
	for path, want := range cases {
		got, ok := Classify(path)
		if !ok {
			t.Errorf("Classify(%q): expected a language, got none", path)
			continue
		}
		if got != want {
			t.Errorf("Classify(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestClassifyUnknownExtension(t *testing.T) {
	for _, path := range []string{"README.md", "data.csv", "Makefile", "img.png", "noext"} {
		if l, ok := Classify(path); ok {
			t.Errorf("Classify(%q) = %q, expected exclusion", path, l)
		}
	}
}

func TestFamilyOf(t *testing.T) {
	if FamilyOf(Python) != FamilyPython {
		t.Errorf("Python family = %q", FamilyOf(Python))
	}
	for _, l := range []Language{JavaScript, JavaScriptReact, TypeScript, TypeScriptReact} {
		if FamilyOf(l) != FamilyJS {
			t.Errorf("%q family = %q, want javascript", l, FamilyOf(l))
		}
	}
	if FamilyOf(Rust) != FamilyGeneric {
		t.Errorf("Rust family = %q, want generic", FamilyOf(Rust))
	}
	if HasScopeSyntax(Ruby) {
		t.Error("Ruby should not have an extraction family with scope syntax")
	}
	if !HasScopeSyntax(Go) {
		t.Error("Go should have scope syntax")
	}
}

func TestSkipDirsCoverCommonCaches(t *testing.T) {
	for _, d := range []string{".git", "node_modules", "__pycache__", "vendor", ".idea", "bower_components"} {
		if !SkipDirs[d] {
			t.Errorf("SkipDirs missing %q", d)
		}
	}
}
