package parser

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// Python is the only language with a full grammar: its declarations are
// read from the syntax tree, immune to string/comment false positives.
// Every other language goes through the pattern scanners in extract.

var (
	pythonOnce sync.Once
	pythonLang *tree_sitter.Language
	pythonPool *sync.Pool
)

func initPython() {
	pythonOnce.Do(func() {
		pythonLang = tree_sitter.NewLanguage(tree_sitter_python.Language())
		pythonPool = &sync.Pool{
			New: func() any {
				p := tree_sitter.NewParser()
				if err := p.SetLanguage(pythonLang); err != nil {
					panic(fmt.Sprintf("set language: %v", err))
				}
				return p
			},
		}
	})
}

// ParsePython parses Python source into a tree-sitter AST.
// The caller must call tree.Close() when done. Parsers are pooled via
// sync.Pool to avoid per-file allocation.
func ParsePython(source []byte) (*tree_sitter.Tree, error) {
	initPython()

	p, _ := pythonPool.Get().(*tree_sitter.Parser)
	if p == nil {
		return nil, fmt.Errorf("failed to get python parser")
	}
	tree := p.Parse(source, nil)
	pythonPool.Put(p)

	if tree == nil {
		return nil, fmt.Errorf("python parse failed")
	}
	return tree, nil
}

// WalkFunc is called for each node during AST traversal.
// Return false to skip children.
type WalkFunc func(node *tree_sitter.Node) bool

// Walk traverses the AST in depth-first order.
func Walk(node *tree_sitter.Node, fn WalkFunc) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil {
			Walk(child, fn)
		}
	}
}

// NodeText returns the text content of a node.
func NodeText(node *tree_sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
