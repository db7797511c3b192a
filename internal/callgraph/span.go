package callgraph

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/repolens/repolens/internal/lang"
)

// spanFor locates the body of a named function inside full file content.
// It returns "" when no declaration is found; the function then simply
// contributes no outgoing calls. The search is textual and best-effort:
// braces inside string literals are tracked, but a declaration-shaped
// line inside a comment can still be picked up for the pattern-scanned
// languages.
func spanFor(family lang.Family, name, content string) string {
	switch family {
	case lang.FamilyPython:
		return pythonSpan(name, content)
	case lang.FamilyGo:
		return goSpan(name, content)
	case lang.FamilyJava:
		return javaSpan(name, content)
	case lang.FamilyJS:
		return jsSpan(name, content)
	}
	return ""
}

// pythonSpan returns the indentation block following "def name(": every
// line after the declaration until the first non-blank line indented at
// or above the declaration's level.
func pythonSpan(name, content string) string {
	re := regexp.MustCompile(`(?m)^([ \t]*)(?:async[ \t]+)?def[ \t]+` + regexp.QuoteMeta(name) + `[ \t]*\(`)
	m := re.FindStringSubmatchIndex(content)
	if m == nil {
		return ""
	}
	declIndent := m[3] - m[2]

	// Body starts on the line after the declaration line.
	bodyStart := strings.IndexByte(content[m[0]:], '\n')
	if bodyStart < 0 {
		return ""
	}
	rest := content[m[0]+bodyStart+1:]

	var span strings.Builder
	for _, line := range strings.SplitAfter(rest, "\n") {
		trimmed := strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(trimmed) == "" {
			span.WriteString(line)
			continue
		}
		if indentWidth(trimmed) <= declIndent {
			break
		}
		span.WriteString(line)
	}
	return span.String()
}

func indentWidth(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return i
		}
	}
	return len(line)
}

func goSpan(name, content string) string {
	re := regexp.MustCompile(`func\s+(?:\([^)]*\)\s*)?` + regexp.QuoteMeta(name) + `\s*\(`)
	m := re.FindStringIndex(content)
	if m == nil {
		return ""
	}
	return braceSpan(content, m[1])
}

func javaSpan(name, content string) string {
	re := regexp.MustCompile(regexp.QuoteMeta(name) + `\s*\([^)]*\)\s*(?:throws[^{;]*)?\{`)
	m := re.FindStringIndex(content)
	if m == nil {
		return ""
	}
	return braceSpan(content, m[1]-1)
}

// jsSpan handles the three common declaration shapes: function
// statements, const/let/var initializers (function expressions and
// arrows), and object/class method shorthand. Arrow bodies without
// braces end at the first statement terminator or a non-continuation
// line break at zero parenthesis depth.
func jsSpan(name, content string) string {
	quoted := regexp.QuoteMeta(name)

	if m := regexp.MustCompile(`function\s+` + quoted + `\s*\(`).FindStringIndex(content); m != nil {
		return braceSpan(content, m[1])
	}

	if m := regexp.MustCompile(`(?:const|let|var)\s+` + quoted + `\s*=`).FindStringIndex(content); m != nil {
		return initializerSpan(content, m[1])
	}

	if m := regexp.MustCompile(quoted + `\s*\([^)]*\)\s*\{`).FindStringIndex(content); m != nil {
		return braceSpan(content, m[1]-1)
	}

	return ""
}

// initializerSpan scans the right-hand side of "name = ...": a braced
// body is balanced; a brace-less arrow body runs to the end of the
// statement.
func initializerSpan(content string, from int) string {
	depth := 0
	var quote byte
	for i := from; i < len(content); i++ {
		c := content[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case '{':
			if depth == 0 {
				return braceSpan(content, i)
			}
			depth++
		case '}':
			depth--
		case ';':
			if depth == 0 {
				return content[from:i]
			}
		case '\n':
			if depth == 0 && !continuesLine(content[from:i]) {
				return content[from:i]
			}
		}
	}
	return content[from:]
}

// continuesLine reports whether the statement visibly continues past a
// line break: the last non-space character is an operator or an opener.
func continuesLine(sofar string) bool {
	trimmed := strings.TrimRight(sofar, " \t\r")
	if trimmed == "" {
		return true
	}
	last := trimmed[len(trimmed)-1]
	return strings.IndexByte("=>+-*/&|?:,.([{", last) >= 0
}

// braceSpan scans forward from 'from' to the first opening brace and
// returns the balanced body between it and its matching close. Quote
// state is tracked so braces inside string literals are not counted.
func braceSpan(content string, from int) string {
	open := -1
	var quote byte
	for i := from; i < len(content); i++ {
		c := content[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '{':
			open = i
		}
		if open >= 0 {
			break
		}
	}
	if open < 0 {
		return ""
	}

	depth := 0
	quote = 0
	for i := open; i < len(content); i++ {
		c := content[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[open+1 : i]
			}
		}
	}
	// Unbalanced (malformed or truncated source): take the rest.
	return content[open+1:]
}

// MakeID forms the canonical function identity "file::name".
func MakeID(file, name string) string {
	return fmt.Sprintf("%s::%s", file, name)
}
