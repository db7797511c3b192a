package lang

import (
	"path/filepath"
	"strings"
)

// Language is the display label for a recognized source language.
type Language string

const (
	Python          Language = "Python"
	JavaScript      Language = "JavaScript"
	JavaScriptReact Language = "JavaScript (React)"
	TypeScript      Language = "TypeScript"
	TypeScriptReact Language = "TypeScript (React)"
	Java            Language = "Java"
	Go              Language = "Go"
	Rust            Language = "Rust"
	Ruby            Language = "Ruby"
	PHP             Language = "PHP"
	CSharp          Language = "C#"
	Swift           Language = "Swift"
	Kotlin          Language = "Kotlin"
	Scala           Language = "Scala"
	C               Language = "C"
	CPP             Language = "C++"
	CHeader         Language = "C/C++ Header"
	CPPHeader       Language = "C++ Header"
	Vue             Language = "Vue"
	Svelte          Language = "Svelte"
	Unknown         Language = "Unknown"
)

// extensions maps a lowercase file extension to its language label.
// Extensions absent from this table are excluded from analysis entirely.
var extensions = map[string]Language{
	".py":     Python,
	".js":     JavaScript,
	".jsx":    JavaScriptReact,
	".ts":     TypeScript,
	".tsx":    TypeScriptReact,
	".java":   Java,
	".go":     Go,
	".rs":     Rust,
	".rb":     Ruby,
	".php":    PHP,
	".cs":     CSharp,
	".swift":  Swift,
	".kt":     Kotlin,
	".scala":  Scala,
	".c":      C,
	".cpp":    CPP,
	".h":      CHeader,
	".hpp":    CPPHeader,
	".vue":    Vue,
	".svelte": Svelte,
}

// SkipDirs are directory names pruned from traversal at every depth.
var SkipDirs = map[string]bool{
	".git": true, "node_modules": true, "dist": true, "build": true,
	"__pycache__": true, ".venv": true, "venv": true, "env": true,
	".next": true, "out": true, "coverage": true, ".pytest_cache": true,
	".mypy_cache": true, "vendor": true, "target": true, ".idea": true,
	".vscode": true, "bower_components": true,
}

// IgnoreFiles are file names (lowercased) excluded even when their
// extension is recognized.
var IgnoreFiles = map[string]bool{
	"package-lock.json": true, "yarn.lock": true, "pnpm-lock.yaml": true,
	"composer.lock": true, "gemfile.lock": true, "cargo.lock": true,
	"poetry.lock": true, ".ds_store": true, "thumbs.db": true,
}

// ForExtension returns the language label for a file extension.
func ForExtension(ext string) (Language, bool) {
	l, ok := extensions[strings.ToLower(ext)]
	return l, ok
}

// Classify maps a file path to its language label. Unknown extensions
// report ok=false and must be skipped before extraction.
func Classify(path string) (Language, bool) {
	return ForExtension(filepath.Ext(path))
}

// Family groups languages that share an extraction strategy.
type Family string

const (
	FamilyPython  Family = "python"
	FamilyJS      Family = "javascript"
	FamilyJava    Family = "java"
	FamilyGo      Family = "go"
	FamilyGeneric Family = "generic"
)

// families maps a language to its extraction family. Languages without an
// entry fall back to FamilyGeneric: line/size metadata only.
var families = map[Language]Family{
	Python:          FamilyPython,
	JavaScript:      FamilyJS,
	JavaScriptReact: FamilyJS,
	TypeScript:      FamilyJS,
	TypeScriptReact: FamilyJS,
	Java:            FamilyJava,
	Go:              FamilyGo,
}

// FamilyOf returns the extraction family for a language.
func FamilyOf(l Language) Family {
	if f, ok := families[l]; ok {
		return f
	}
	return FamilyGeneric
}

// HasScopeSyntax reports whether the language participates in call graph
// construction (its function bodies have extractable spans).
func HasScopeSyntax(l Language) bool {
	return FamilyOf(l) != FamilyGeneric
}
