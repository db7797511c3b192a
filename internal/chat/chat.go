// Package chat answers questions about an analyzed repository through
// an OpenAI-compatible chat-completion service, grounding the model in
// a bounded textual summary of the analysis.
package chat

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/repolens/repolens/internal/engine"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "llama-3.3-70b-versatile"

// maxContextFiles bounds how many file detail blocks enter the prompt.
const maxContextFiles = 10

// historyLimit bounds how many prior turns are replayed to the model.
const historyLimit = 10

// Error is a user-facing chat failure with the HTTP status the web
// layer should report.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Message is one prior conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client wraps the chat-completion API.
type Client struct {
	api   openai.Client
	model string
}

// New builds a chat client. An empty API key fails immediately with a
// configuration error instead of failing on first use.
func New(apiKey, baseURL, model string) (*Client, error) {
	if apiKey == "" {
		return nil, &Error{
			Status:  http.StatusInternalServerError,
			Message: "chat feature is not configured: API key is missing",
		}
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{api: openai.NewClient(opts...), model: model}, nil
}

// Ask answers one question about the analyzed repository, replaying up
// to historyLimit prior turns.
func (c *Client) Ask(ctx context.Context, question, repoURL string, a *engine.Analysis, history []Message) (string, error) {
	system := systemPrompt(BuildContext(a, repoURL, question, maxContextFiles))

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
	}
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	for _, msg := range history {
		if msg.Role == "assistant" {
			messages = append(messages, openai.AssistantMessage(msg.Content))
		} else {
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	messages = append(messages, openai.UserMessage(question))

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(2048),
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Status: http.StatusInternalServerError, Message: "failed to get AI response, please try again"}
	}
	return resp.Choices[0].Message.Content, nil
}

func systemPrompt(context string) string {
	return fmt.Sprintf(`You are a helpful coding assistant that answers questions about a GitHub repository.
You have access to the following analysis of the repository:

%s

Guidelines:
- Answer questions based on the repository structure and code analysis provided
- Be concise but helpful
- If you don't have enough information to answer, say so
- Reference specific files, functions, or classes when relevant
- Help users understand how the codebase is organized and how different parts work together
`, context)
}

// classify maps a completion failure onto a distinct user-facing
// category by inspecting the error text.
func classify(err error) *Error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate_limit") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return &Error{Status: http.StatusTooManyRequests, Message: "rate limit reached, please wait a moment and try again"}
	case strings.Contains(msg, "invalid_api_key") || strings.Contains(msg, "authentication") || strings.Contains(msg, "401"):
		return &Error{Status: http.StatusUnauthorized, Message: "AI service authentication failed"}
	case strings.Contains(msg, "model_not_found") || strings.Contains(msg, "model not found"):
		return &Error{Status: http.StatusServiceUnavailable, Message: "AI model temporarily unavailable, please try again later"}
	case strings.Contains(msg, "context_length") || strings.Contains(msg, "too long") || strings.Contains(msg, "token"):
		return &Error{Status: http.StatusBadRequest, Message: "the repository is too large to analyze in chat, try asking about specific files"}
	case strings.Contains(msg, "service_unavailable") || strings.Contains(msg, "503"):
		return &Error{Status: http.StatusServiceUnavailable, Message: "AI service is temporarily unavailable, please try again later"}
	default:
		return &Error{Status: http.StatusInternalServerError, Message: "failed to get AI response, please try again"}
	}
}

// BuildContext renders the analysis as a bounded textual summary. File
// detail slots go first to files the question mentions, then entry
// points, then key files, then the remaining files by declared-symbol
// count.
func BuildContext(a *engine.Analysis, repoURL, question string, maxFiles int) string {
	var parts []string

	if repoURL == "" {
		repoURL = "Unknown"
	}
	parts = append(parts, fmt.Sprintf("Repository: %s", repoURL))

	if len(a.Languages) > 0 {
		names := make([]string, 0, len(a.Languages))
		for name := range a.Languages {
			names = append(names, name)
		}
		sort.Strings(names)
		summary := make([]string, 0, len(names))
		for _, name := range names {
			summary = append(summary, fmt.Sprintf("%s (%d files)", name, a.Languages[name].Count))
		}
		parts = append(parts, "Languages: "+strings.Join(summary, ", "))
	}

	if len(a.Frameworks.Frontend) > 0 {
		parts = append(parts, "Frontend frameworks: "+strings.Join(a.Frameworks.Frontend, ", "))
	}
	if len(a.Frameworks.Backend) > 0 {
		parts = append(parts, "Backend frameworks: "+strings.Join(a.Frameworks.Backend, ", "))
	}
	if len(a.Databases) > 0 {
		parts = append(parts, "Databases: "+strings.Join(a.Databases, ", "))
	}
	if len(a.EntryPoints) > 0 {
		parts = append(parts, "Entry points: "+strings.Join(head(a.EntryPoints, 5), ", "))
	}
	if len(a.KeyFiles) > 0 {
		parts = append(parts, "Key files: "+strings.Join(head(a.KeyFiles, 10), ", "))
	}

	if len(a.Files) > 0 {
		parts = append(parts, "\nFile details:")
		ordered := prioritizeFiles(a, question)
		shown := 0
		for _, p := range ordered {
			if shown >= maxFiles {
				parts = append(parts, fmt.Sprintf("... and %d more files", len(ordered)-maxFiles))
				break
			}
			rec := a.Files[p]
			block := []string{"  - " + p}
			if len(rec.Functions) > 0 {
				block = append(block, "    Functions: "+strings.Join(head(rec.Functions, 10), ", "))
			}
			if len(rec.Classes) > 0 {
				block = append(block, "    Classes: "+strings.Join(head(rec.Classes, 10), ", "))
			}
			if len(rec.Imports) > 0 {
				block = append(block, "    Imports: "+strings.Join(head(rec.Imports, 10), ", "))
			}
			parts = append(parts, strings.Join(block, "\n"))
			shown++
		}
	}

	if a.Dependencies != nil {
		var depParts []string
		for _, group := range []struct {
			name string
			deps map[string][]string
		}{
			{"python", a.Dependencies.Python},
			{"javascript", a.Dependencies.JavaScript},
			{"other", a.Dependencies.Other},
		} {
			if len(group.deps) == 0 {
				continue
			}
			set := map[string]bool{}
			for _, list := range group.deps {
				for _, d := range list {
					set[d] = true
				}
			}
			names := make([]string, 0, len(set))
			for d := range set {
				names = append(names, d)
			}
			sort.Strings(names)
			depParts = append(depParts, fmt.Sprintf("  %s: %s", group.name, strings.Join(head(names, 15), ", ")))
		}
		if len(depParts) > 0 {
			parts = append(parts, "\nDependencies:")
			parts = append(parts, depParts...)
		}
	}

	if a.Readme != nil && a.Readme.Content != "" {
		parts = append(parts, "\nREADME:\n"+a.Readme.Content)
	}

	return strings.Join(parts, "\n")
}

// prioritizeFiles orders file paths for context inclusion: mentioned
// in the question, entry point, key file, then by symbol count.
func prioritizeFiles(a *engine.Analysis, question string) []string {
	lower := strings.ToLower(question)

	paths := make([]string, 0, len(a.Files))
	for p := range a.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	seen := map[string]bool{}
	var ordered []string
	add := func(p string) {
		if _, ok := a.Files[p]; ok && !seen[p] {
			seen[p] = true
			ordered = append(ordered, p)
		}
	}

	for _, p := range paths {
		base := strings.ToLower(p[strings.LastIndex(p, "/")+1:])
		if strings.Contains(lower, strings.ToLower(p)) || (base != "" && strings.Contains(lower, base)) {
			add(p)
		}
	}
	for _, p := range a.EntryPoints {
		add(p)
	}
	for _, p := range a.KeyFiles {
		add(p)
	}

	var rest []string
	for _, p := range paths {
		if !seen[p] {
			rest = append(rest, p)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		ri, rj := a.Files[rest[i]], a.Files[rest[j]]
		return len(ri.Functions)+len(ri.Classes) > len(rj.Functions)+len(rj.Classes)
	})
	return append(ordered, rest...)
}

func head(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}
