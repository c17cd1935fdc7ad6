// Copyright © 2024 The ELPS authors

// Package astutil provides shared AST walking utilities.
//
// These helpers are used by the scanner, lint and analysis packages for
// traversing decoded PHP syntax trees.
package astutil

import (
	"errors"
	"strings"

	"github.com/luthersystems/wphooks/ast"
)

// SkipChildren may be returned by an Inspect callback to skip the
// children of the current node.
var SkipChildren = errors.New("skip children")

// Walk calls fn for every node in the tree, depth-first.
// parent is nil for top-level nodes.
func Walk(nodes []*ast.Node, fn func(node *ast.Node, parent *ast.Node, depth int)) {
	for _, n := range nodes {
		walkNode(n, nil, 0, fn)
	}
}

func walkNode(node *ast.Node, parent *ast.Node, depth int, fn func(*ast.Node, *ast.Node, int)) {
	if node == nil {
		return
	}
	fn(node, parent, depth)
	for _, child := range ast.ChildNodes(node) {
		walkNode(child, node, depth+1, fn)
	}
}

// Inspect visits nodes in pre-order and stops at the first error returned
// by fn. Returning SkipChildren skips the subtree of the current node.
func Inspect(nodes []*ast.Node, fn func(node *ast.Node) error) error {
	for _, n := range nodes {
		if err := inspectNode(n, fn); err != nil {
			return err
		}
	}
	return nil
}

func inspectNode(node *ast.Node, fn func(*ast.Node) error) error {
	if node == nil {
		return nil
	}
	if err := fn(node); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}
	for _, child := range ast.ChildNodes(node) {
		if err := inspectNode(child, fn); err != nil {
			return err
		}
	}
	return nil
}

// WalkCalls calls fn for every function call with a static name.
func WalkCalls(nodes []*ast.Node, fn func(call *ast.Node, depth int)) {
	Walk(nodes, func(node *ast.Node, _ *ast.Node, depth int) {
		if node.Kind == ast.Call && node.Name != "" {
			fn(node, depth)
		}
	})
}

// CallName returns the lowercase name of a statically named function
// call, or "". Function names are case-insensitive and resolved against
// the global namespace.
func CallName(call *ast.Node) string {
	if call == nil || call.Kind != ast.Call || call.Name == "" {
		return ""
	}
	name := strings.ToLower(call.Name)
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// ArgCount returns the number of arguments of a call.
func ArgCount(call *ast.Node) int {
	return len(call.Args)
}

// Arg returns the argument at position i, or the named argument name when
// the call uses named arguments for it. It returns nil when absent.
func Arg(call *ast.Node, i int, name string) *ast.Arg {
	pos := 0
	for _, a := range call.Args {
		if a.Name != "" {
			if a.Name == name {
				return a
			}
			continue
		}
		if pos == i {
			return a
		}
		pos++
	}
	return nil
}

// ArgValue is like Arg but returns the argument expression.
func ArgValue(call *ast.Node, i int, name string) *ast.Node {
	if a := Arg(call, i, name); a != nil {
		return a.Value
	}
	return nil
}

// LineOf returns the best source line for a node. It prefers the node's
// own line and falls back to the first child that has one.
func LineOf(n *ast.Node) int {
	if n == nil {
		return 0
	}
	if n.Line > 0 {
		return n.Line
	}
	for _, c := range ast.ChildNodes(n) {
		if l := LineOf(c); l > 0 {
			return l
		}
	}
	return 0
}
