package extract

import (
	"strings"
	"testing"

	"github.com/repolens/repolens/internal/lang"
)

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestExtractPython(t *testing.T) {
	src := `import os
import json as j
from app.services import user_service
from ..utils import helpers

def main():
    pass

def fetch_user(uid):
    return uid

class UserRepo:
    def find(self, uid):
        return uid

if __name__ == "__main__":
    main()
`
	rec := Extract(".py", lang.Python, []byte(src))

	for _, imp := range []string{"os", "json", "app.services", "utils"} {
		if !contains(rec.Imports, imp) {
			t.Errorf("imports missing %q: %v", imp, rec.Imports)
		}
	}
	for _, fn := range []string{"main", "fetch_user", "find"} {
		if !contains(rec.Functions, fn) {
			t.Errorf("functions missing %q: %v", fn, rec.Functions)
		}
	}
	if !contains(rec.Classes, "UserRepo") {
		t.Errorf("classes missing UserRepo: %v", rec.Classes)
	}
	if !rec.HasMain {
		t.Error("expected entry-point flag")
	}
	if rec.Lines == 0 || rec.Size == 0 || rec.Hash == "" {
		t.Errorf("metadata not captured: lines=%d size=%d hash=%q", rec.Lines, rec.Size, rec.Hash)
	}
}

func TestExtractPythonStringsAreNotDeclarations(t *testing.T) {
	src := "s = \"def not_a_function(): pass\"\n# class NotAClass\n"
	rec := Extract(".py", lang.Python, []byte(src))
	if len(rec.Functions) != 0 {
		t.Errorf("grammar-aware extractor misread a string: %v", rec.Functions)
	}
	if len(rec.Classes) != 0 {
		t.Errorf("grammar-aware extractor misread a comment: %v", rec.Classes)
	}
}

func TestExtractJavaScript(t *testing.T) {
	src := `import React from 'react';
import { useState } from "react";
import './styles.css';
const api = require('./api/client');
export { helper } from './lib/helper';

function getUser(id) { return id; }
const findUser = async (id) => fetch(id);
let render = function() {};

class UserCard {}

createRoot(document.getElementById('root'));
`
	rec := Extract(".js", lang.JavaScript, []byte(src))

	for _, imp := range []string{"react", "./styles.css", "./api/client", "./lib/helper"} {
		if !contains(rec.Imports, imp) {
			t.Errorf("imports missing %q: %v", imp, rec.Imports)
		}
	}
	for _, fn := range []string{"getUser", "findUser", "render"} {
		if !contains(rec.Functions, fn) {
			t.Errorf("functions missing %q: %v", fn, rec.Functions)
		}
	}
	if !contains(rec.Classes, "UserCard") {
		t.Errorf("classes missing UserCard: %v", rec.Classes)
	}
	if !rec.HasMain {
		t.Error("createRoot should flag an entry point")
	}
}

func TestExtractJavaScriptImportsAreSortedUnique(t *testing.T) {
	src := "import a from 'zlib';\nimport b from 'axios';\nimport c from 'axios';\n"
	rec := Extract(".ts", lang.TypeScript, []byte(src))
	want := []string{"axios", "zlib"}
	if len(rec.Imports) != 2 || rec.Imports[0] != want[0] || rec.Imports[1] != want[1] {
		t.Errorf("imports = %v, want %v", rec.Imports, want)
	}
}

func TestExtractJava(t *testing.T) {
	src := `import java.util.List;
import com.example.db.UserRepo;

public class UserService {
    public static void main(String[] args) {
    }

    private List findAll(String q) throws Exception {
        return null;
    }
}
`
	rec := Extract(".java", lang.Java, []byte(src))
	if !contains(rec.Imports, "java.util.List") || !contains(rec.Imports, "com.example.db.UserRepo") {
		t.Errorf("imports = %v", rec.Imports)
	}
	if !contains(rec.Classes, "UserService") {
		t.Errorf("classes = %v", rec.Classes)
	}
	if !contains(rec.Functions, "findAll") {
		t.Errorf("functions = %v", rec.Functions)
	}
	if !rec.HasMain {
		t.Error("expected entry point")
	}
}

func TestExtractGo(t *testing.T) {
	src := `package main

import "fmt"

func main() {
	helper()
}

func helper() {}

func (s *Server) Handle() {}
`
	rec := Extract(".go", lang.Go, []byte(src))
	if !contains(rec.Imports, "fmt") {
		t.Errorf("imports = %v", rec.Imports)
	}
	for _, fn := range []string{"main", "helper", "Handle"} {
		if !contains(rec.Functions, fn) {
			t.Errorf("functions missing %q: %v", fn, rec.Functions)
		}
	}
	if len(rec.Classes) != 0 {
		t.Errorf("go should have no classes: %v", rec.Classes)
	}
	if !rec.HasMain {
		t.Error("expected entry point")
	}
}

func TestExtractUnsupportedLanguage(t *testing.T) {
	src := "def hello\n  puts 'hi'\nend\n"
	rec := Extract(".rb", lang.Ruby, []byte(src))
	if len(rec.Imports) != 0 || len(rec.Functions) != 0 || len(rec.Classes) != 0 {
		t.Errorf("unsupported language should yield empty structure: %+v", rec)
	}
	if rec.Lines != 3 {
		t.Errorf("lines = %d, want 3", rec.Lines)
	}
	if rec.Size != len(src) {
		t.Errorf("size = %d, want %d", rec.Size, len(src))
	}
}

func TestContentCap(t *testing.T) {
	long := strings.Repeat("x", MaxContentSize+100)
	rec := Extract(".py", lang.Python, []byte(long))
	if !rec.ContentTruncated {
		t.Fatal("expected truncation flag")
	}
	if !strings.HasSuffix(rec.Content, "... [truncated]") {
		t.Errorf("missing truncation marker: ...%q", rec.Content[len(rec.Content)-30:])
	}

	short := "x = 1\n"
	rec = Extract(".py", lang.Python, []byte(short))
	if rec.ContentTruncated || rec.Content != short {
		t.Errorf("short content should be stored verbatim")
	}
}

func TestExtractIdempotent(t *testing.T) {
	src := "import b from 'b';\nimport a from 'a';\nfunction f() {}\n"
	first := Extract(".js", lang.JavaScript, []byte(src))
	second := Extract(".js", lang.JavaScript, []byte(src))
	if first.Hash != second.Hash {
		t.Error("hash differs between runs")
	}
	if len(first.Imports) != len(second.Imports) {
		t.Fatal("import counts differ")
	}
	for i := range first.Imports {
		if first.Imports[i] != second.Imports[i] {
			t.Errorf("import order differs at %d", i)
		}
	}
}
