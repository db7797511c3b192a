package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidateURL(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{"", ErrEmptyURL},
		{"   ", ErrEmptyURL},
		{"https://gitlab.com/a/b", ErrNotGitHub},
		{"http://github.com/a/b", ErrNotGitHub},
		{"https://github.com/onlyuser", ErrBadFormat},
		{"https://github.com/a/b/tree/main", ErrBadFormat},
		{"https://github.com/acme/demo", nil},
		{"https://github.com/acme/demo.git", nil},
		{"https://github.com/acme/demo/", nil},
		{"  https://github.com/acme/demo  ", nil},
	}
	for _, tc := range cases {
		_, err := ValidateURL(tc.in)
		if !errors.Is(err, tc.want) {
			t.Errorf("ValidateURL(%q) = %v, want %v", tc.in, err, tc.want)
		}
	}
}

func TestRepoName(t *testing.T) {
	cases := map[string]string{
		"https://github.com/acme/demo":      "demo",
		"https://github.com/acme/demo.git":  "demo",
		"https://github.com/acme/demo/":     "demo",
		" https://github.com/acme/demo.git": "demo",
	}
	for in, want := range cases {
		if got := RepoName(in); got != want {
			t.Errorf("RepoName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClassifyCloneError(t *testing.T) {
	cases := []struct {
		msg  string
		want error
	}{
		{"ERROR: Repository not found.", ErrNotFound},
		{"remote: 404", ErrNotFound},
		{"fatal: could not read from remote repository", ErrNoAccess},
		{"authentication required", ErrNoAccess},
		{"some transport flake", ErrCloneFailed},
	}
	for _, tc := range cases {
		if got := classifyCloneError(errors.New(tc.msg)); !errors.Is(got, tc.want) {
			t.Errorf("classify(%q) = %v, want %v", tc.msg, got, tc.want)
		}
	}
}

func TestRemove(t *testing.T) {
	base := t.TempDir()
	ing := New(base)
	dir := filepath.Join(base, "ws-1")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	ing.Remove("ws-1")
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("workspace should be gone")
	}

	ing.Remove("") // must not touch the base dir
	if _, err := os.Stat(base); err != nil {
		t.Error("base dir must survive empty-id removal")
	}
}

func TestSweepRemovesOnlyStale(t *testing.T) {
	base := t.TempDir()
	ing := New(base)
	ing.MaxAge = time.Minute

	stale := filepath.Join(base, "stale")
	fresh := filepath.Join(base, "fresh")
	for _, dir := range []string{stale, fresh} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	ing.sweep()

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale workspace should be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh workspace should survive")
	}
}
