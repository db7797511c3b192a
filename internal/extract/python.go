package extract

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/repolens/repolens/internal/parser"
)

// extractPython reads declarations from the parsed syntax tree, so names
// inside strings or comments are never misread. Any parse failure falls
// back to the zero-valued symbols.
//
// Python import AST structures:
//
//	import_statement:
//	  dotted_name children (e.g. "import foo.bar")
//	  aliased_import (e.g. "import foo as f")
//
//	import_from_statement:
//	  module_name: dotted_name or relative_import
func extractPython(source []byte, text string) symbols {
	tree, err := parser.ParsePython(source)
	if err != nil {
		return symbols{}
	}
	defer tree.Close()

	sym := symbols{}
	parser.Walk(tree.RootNode(), func(node *tree_sitter.Node) bool {
		switch node.Kind() {
		case "import_statement":
			sym.Imports = append(sym.Imports, pythonImportNames(node, source)...)
			return false
		case "import_from_statement":
			if mod := pythonFromModule(node, source); mod != "" {
				sym.Imports = append(sym.Imports, mod)
			}
			return false
		case "function_definition":
			if name := namedField(node, "name", source); name != "" {
				sym.Functions = append(sym.Functions, name)
			}
			return true // keep walking: nested defs and methods count
		case "class_definition":
			if name := namedField(node, "name", source); name != "" {
				sym.Classes = append(sym.Classes, name)
			}
			return true
		}
		return true
	})

	sym.HasMain = strings.Contains(text, "__main__") || strings.Contains(text, "def main")
	return sym
}

// pythonImportNames handles "import X" and "import X as Y".
func pythonImportNames(node *tree_sitter.Node, source []byte) []string {
	var names []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			names = append(names, parser.NodeText(child, source))
		case "aliased_import":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				names = append(names, parser.NodeText(nameNode, source))
			}
		}
	}
	return names
}

// pythonFromModule extracts the module of a "from X import ..." statement.
// Leading relative-import dots are stripped, matching what a bare module
// name looks like to the reference resolver; "from . import X" (no module
// name at all) yields "".
func pythonFromModule(node *tree_sitter.Node, source []byte) string {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		return ""
	}
	return strings.TrimLeft(parser.NodeText(moduleNode, source), ".")
}

func namedField(node *tree_sitter.Node, field string, source []byte) string {
	n := node.ChildByFieldName(field)
	if n == nil {
		return ""
	}
	return parser.NodeText(n, source)
}
