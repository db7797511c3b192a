package extract

import (
	"encoding/hex"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/zeebo/xxh3"

	"github.com/repolens/repolens/internal/lang"
)

// MaxContentSize caps the stored content excerpt, in characters
// (roughly 2000 tokens of downstream chat context). The cap is identical
// for every language.
const MaxContentSize = 8000

// truncationMarker is appended to capped excerpts.
const truncationMarker = "\n... [truncated]"

// Record is the structural summary of one analyzed source file.
// It is immutable after extraction; the engine run that produced it is
// its sole owner.
type Record struct {
	Extension        string        `json:"extension"`
	Language         lang.Language `json:"language"`
	Lines            int           `json:"lines"`
	Size             int           `json:"size"`
	Imports          []string      `json:"imports"`
	Functions        []string      `json:"functions"`
	Classes          []string      `json:"classes"`
	HasMain          bool          `json:"has_main"`
	Content          string        `json:"content"`
	ContentTruncated bool          `json:"content_truncated"`
	Hash             string        `json:"hash"`
}

// symbols is the structural part of a Record produced by one language
// strategy. A failed strategy returns the zero value.
type symbols struct {
	Imports   []string
	Functions []string
	Classes   []string
	HasMain   bool
}

// Extract produces the Record for one file. Extraction never fails past
// the single file: a parse failure yields empty structural fields while
// line/size metadata is still captured.
func Extract(ext string, l lang.Language, content []byte) *Record {
	text := string(content)

	rec := &Record{
		Extension: strings.ToLower(ext),
		Language:  l,
		Lines:     countLines(text),
		Size:      len(content),
		Imports:   []string{},
		Functions: []string{},
		Classes:   []string{},
		Hash:      contentHash(content),
	}
	rec.Content, rec.ContentTruncated = capContent(text)

	var sym symbols
	switch lang.FamilyOf(l) {
	case lang.FamilyPython:
		sym = extractPython(content, text)
	case lang.FamilyJS:
		sym = extractJS(text)
	case lang.FamilyJava:
		sym = extractJava(text)
	case lang.FamilyGo:
		sym = extractGo(text)
	default:
		// Unsupported family: zero-valued structural fields.
		return rec
	}

	if sym.Imports != nil {
		rec.Imports = sym.Imports
	}
	if sym.Functions != nil {
		rec.Functions = sym.Functions
	}
	if sym.Classes != nil {
		rec.Classes = sym.Classes
	}
	rec.HasMain = sym.HasMain
	return rec
}

// capContent truncates text to MaxContentSize characters, backing off to
// the previous rune boundary, and appends the truncation marker.
func capContent(text string) (string, bool) {
	if utf8.RuneCountInString(text) <= MaxContentSize {
		return text, false
	}
	runes := []rune(text)
	return string(runes[:MaxContentSize]) + truncationMarker, true
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

func contentHash(content []byte) string {
	sum := xxh3.Hash128(content).Bytes()
	return hex.EncodeToString(sum[:])
}

// uniqueSorted deduplicates and orders a symbol list so that repeated
// runs over an unchanged file produce identical records.
func uniqueSorted(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
