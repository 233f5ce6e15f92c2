package alsyntax

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// calculateComplexity computes cyclomatic complexity over a procedure or
// trigger body by walking its subtree and counting decision points:
//
//   - if statements (+1, plus another +1 for an else branch)
//   - while/for/foreach/repeat loops (+1 each)
//   - case branches (+1 per branch)
//   - logical and/or operators (+1 each)
//
// The base complexity of a single straight-line path is 1.
func calculateComplexity(node *tree_sitter.Node) uint32 {
	complexity := uint32(1)
	countDecisionPoints(node, &complexity)
	return complexity
}

func countDecisionPoints(node *tree_sitter.Node, complexity *uint32) {
	switch node.Kind() {
	case "if_statement":
		*complexity++
		if node.ChildByFieldName("else_branch") != nil {
			*complexity++
		}
	case "while_statement", "for_statement", "foreach_statement", "repeat_statement":
		*complexity++
	case "case_branch":
		*complexity++
	case "logical_expression":
		if opNode := node.ChildByFieldName("operator"); opNode != nil {
			op := strings.ToLower(opNode.Kind())
			if op == "and" || op == "or" {
				*complexity++
			}
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			countDecisionPoints(child, complexity)
		}
	}
}
