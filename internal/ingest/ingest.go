// Package ingest acquires repositories for analysis: it validates
// GitHub URLs, shallow-clones into per-request workspaces, and cleans
// stale workspaces up on a schedule.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// githubURL validates an owner/repository URL with no extra path.
var githubURL = regexp.MustCompile(`^https://github\.com/[\w.-]+/[\w.-]+/?$`)

// Validation and clone failures carry user-facing messages; the web
// layer maps them all to a bad-request response.
var (
	ErrEmptyURL    = errors.New("please enter a repository URL")
	ErrNotGitHub   = errors.New("invalid URL, expected a GitHub repository URL like https://github.com/username/repo")
	ErrBadFormat   = errors.New("invalid GitHub URL format, expected https://github.com/username/repository")
	ErrNotFound    = errors.New("repository not found, check that the URL is correct and the repository exists")
	ErrNoAccess    = errors.New("cannot access repository, private repositories are not supported")
	ErrCloneFailed = errors.New("failed to clone repository, check the URL and ensure the repository is public")
)

// Ingestor clones repositories into subdirectories of a base dir.
type Ingestor struct {
	BaseDir string
	// MaxAge bounds how long a cloned workspace may live before the
	// janitor removes it.
	MaxAge time.Duration

	cron *cron.Cron
}

// New returns an Ingestor rooted at baseDir with a one-hour workspace
// lifetime.
func New(baseDir string) *Ingestor {
	return &Ingestor{BaseDir: baseDir, MaxAge: time.Hour}
}

// ValidateURL normalizes and checks a repository URL, returning the
// trimmed form.
func ValidateURL(repoURL string) (string, error) {
	repoURL = strings.TrimSpace(repoURL)
	if repoURL == "" {
		return "", ErrEmptyURL
	}
	if !strings.HasPrefix(repoURL, "https://github.com/") {
		return "", ErrNotGitHub
	}
	if !githubURL.MatchString(strings.TrimSuffix(repoURL, ".git")) {
		return "", ErrBadFormat
	}
	return repoURL, nil
}

// RepoName derives the repository's short name from its URL.
func RepoName(repoURL string) string {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSpace(repoURL), "/"), ".git")
	return path.Base(trimmed)
}

// Clone validates the URL and shallow-clones the repository into a
// fresh workspace. It returns the workspace path and the workspace id.
// A failed clone removes its partial workspace before returning.
func (ing *Ingestor) Clone(ctx context.Context, repoURL string) (string, string, error) {
	repoURL, err := ValidateURL(repoURL)
	if err != nil {
		return "", "", err
	}

	if err := os.MkdirAll(ing.BaseDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create workspace dir: %w", err)
	}

	id := uuid.NewString()
	workDir := filepath.Join(ing.BaseDir, id)

	slog.Info("ingest.clone", "url", repoURL, "workspace", id)
	_, err = git.PlainCloneContext(ctx, workDir, false, &git.CloneOptions{
		URL:   repoURL,
		Depth: 1,
	})
	if err != nil {
		os.RemoveAll(workDir)
		slog.Warn("ingest.clone_failed", "url", repoURL, "err", err)
		return "", "", classifyCloneError(err)
	}
	return workDir, id, nil
}

// classifyCloneError maps transport failures onto the user-facing
// error taxonomy.
func classifyCloneError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "repository not found") || strings.Contains(msg, "404"):
		return ErrNotFound
	case strings.Contains(msg, "could not read from remote") ||
		strings.Contains(msg, "authentication") ||
		strings.Contains(msg, "authorization"):
		return ErrNoAccess
	default:
		return ErrCloneFailed
	}
}

// Remove deletes one workspace by id.
func (ing *Ingestor) Remove(id string) {
	if id == "" {
		return
	}
	os.RemoveAll(filepath.Join(ing.BaseDir, id))
}

// StartJanitor schedules periodic removal of workspaces older than
// MaxAge. Call StopJanitor on shutdown.
func (ing *Ingestor) StartJanitor(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, ing.sweep); err != nil {
		return fmt.Errorf("schedule janitor: %w", err)
	}
	c.Start()
	ing.cron = c
	return nil
}

// StopJanitor stops the cleanup schedule and waits for a running sweep.
func (ing *Ingestor) StopJanitor() {
	if ing.cron != nil {
		<-ing.cron.Stop().Done()
	}
}

// sweep removes every workspace whose modification time exceeds MaxAge.
func (ing *Ingestor) sweep() {
	entries, err := os.ReadDir(ing.BaseDir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-ing.MaxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.RemoveAll(filepath.Join(ing.BaseDir, entry.Name()))
			removed++
		}
	}
	if removed > 0 {
		slog.Info("ingest.sweep", "removed", removed)
	}
}
