// Copyright © 2024 The ELPS authors

package scanner

import "github.com/luthersystems/wphooks/ast"

// State is the pending-documentation state of a traversal.
type State int

const (
	Idle       State = iota // no doc comment waiting
	PendingDoc              // a doc comment waits for a hook call
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PendingDoc:
		return "pending-doc"
	default:
		return "unknown"
	}
}

// DocState tracks which doc comment a hook call should use. A comment is
// picked up from a carrier node (a call, return, variable or echo) and
// survives only while further calls are visited, so
//
//	/** @param int $id */
//	return apply_filters( 'x', $id );
//
// associates the comment with apply_filters while a comment on an
// unrelated statement is dropped at the next non-call node.
type DocState struct {
	state State
	doc   string
}

func isCarrier(k ast.Kind) bool {
	switch k {
	case ast.Call, ast.Return, ast.Variable, ast.Echo:
		return true
	}
	return false
}

// Observe advances the state for node n, visited in pre-order.
func (d *DocState) Observe(n *ast.Node) {
	switch {
	case n.Doc != "" && isCarrier(n.Kind):
		d.state, d.doc = PendingDoc, n.Doc
	case d.state == PendingDoc && n.Kind != ast.Call:
		d.Clear()
	}
}

// Take consumes the pending comment.
func (d *DocState) Take() (string, bool) {
	if d.state != PendingDoc {
		return "", false
	}
	doc := d.doc
	d.Clear()
	return doc, true
}

// Clear drops any pending comment.
func (d *DocState) Clear() {
	d.state, d.doc = Idle, ""
}

// State returns the current state.
func (d *DocState) State() State {
	return d.state
}
