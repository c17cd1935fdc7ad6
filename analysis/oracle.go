// Copyright © 2024 The ELPS authors

package analysis

import (
	"strings"

	"github.com/luthersystems/wphooks/ast"
	"github.com/luthersystems/wphooks/astutil"
	"github.com/luthersystems/wphooks/contract"
	"github.com/luthersystems/wphooks/semtype"
)

// Oracle supplies expression types to the contract provider.
type Oracle = contract.Oracle

// LiteralOracle types expressions without a type checker. It knows
// literals, casts, string concatenation, configured constants, and
// variables assigned a single known type in their function.
type LiteralOracle struct {
	// Constants maps constant names (NAME or Class::NAME) to their values.
	Constants map[string]string

	vars   map[scopedVar]*semtype.Union
	scopes map[*ast.Node]*ast.Node
}

// scopedVar names a variable of one function body. scope is the function,
// method or closure node, or nil for file level code.
type scopedVar struct {
	scope *ast.Node
	name  string
}

// NewLiteralOracle returns an oracle resolving the given constants.
func NewLiteralOracle(constants map[string]string) *LiteralOracle {
	return &LiteralOracle{Constants: constants}
}

// Bind records the variable assignments of f, replacing those of the
// previously bound file. Assignments are scoped to the enclosing function,
// method or closure. A variable assigned values of different types is
// left unknown.
func (o *LiteralOracle) Bind(f *ast.File) {
	o.vars = make(map[scopedVar]*semtype.Union)
	o.scopes = make(map[*ast.Node]*ast.Node)
	var assigns []*ast.Node
	astutil.Walk(f.Nodes, func(n, parent *ast.Node, _ int) {
		scope := o.scopes[parent]
		if opensScope(parent) {
			scope = parent
		}
		o.scopes[n] = scope
		if n.Kind == ast.Assign && n.Var != nil && n.Var.Kind == ast.Variable && n.Var.NameExpr == nil {
			assigns = append(assigns, n)
		}
	})
	for _, n := range assigns {
		key := scopedVar{scope: o.scopes[n], name: n.Var.Name}
		t := o.TypeOf(n.Expr)
		prev, seen := o.vars[key]
		switch {
		case !seen:
			o.vars[key] = t
		case prev == nil || t == nil || !prev.Equal(t):
			o.vars[key] = nil
		}
	}
}

// opensScope reports whether n starts a new variable scope. Arrow
// functions read the variables of their parent and do not.
func opensScope(n *ast.Node) bool {
	if n == nil {
		return false
	}
	if n.Kind == ast.Closure {
		return true
	}
	return n.Kind == ast.Other && (n.Type == "Stmt_Function" || n.Type == "Stmt_ClassMethod")
}

// TypeOf implements Oracle.
func (o *LiteralOracle) TypeOf(n *ast.Node) *semtype.Union {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case ast.String, ast.StringPart:
		return semtype.LiteralStringType(n.Value)
	case ast.Int:
		return semtype.LiteralIntType(n.Value)
	case ast.Float:
		return semtype.LiteralFloatType(n.Value)
	case ast.Interpolated:
		var b strings.Builder
		for _, part := range n.Parts {
			s, ok := o.stringValue(part)
			if !ok {
				return semtype.StringType()
			}
			b.WriteString(s)
		}
		return semtype.LiteralStringType(b.String())
	case ast.Concat:
		left, lok := o.stringValue(n.Left)
		right, rok := o.stringValue(n.Right)
		if lok && rok {
			return semtype.LiteralStringType(left + right)
		}
		return semtype.StringType()
	case ast.ConstFetch:
		switch strings.ToLower(n.Name) {
		case "true":
			return semtype.TrueType()
		case "false":
			return semtype.NewUnion(semtype.Atomic{Kind: semtype.False})
		case "null":
			return semtype.NullType()
		}
		if v, ok := o.constant(n.Name); ok {
			return semtype.LiteralStringType(v)
		}
	case ast.ClassConstFetch:
		if n.ClassName == "" {
			return nil
		}
		if v, ok := o.constant(n.ClassName + "::" + n.Name); ok {
			return semtype.LiteralStringType(v)
		}
	case ast.Array:
		return semtype.ArrayType()
	case ast.Cast:
		return castType(n.CastTo)
	case ast.Closure, ast.ArrowFunction:
		return semtype.CallableType()
	case ast.Variable:
		if n.NameExpr == nil {
			return o.vars[scopedVar{scope: o.scopes[n], name: n.Name}]
		}
	case ast.Assign:
		return o.TypeOf(n.Expr)
	}
	return nil
}

// stringValue folds n to a string when its type is a single string or
// int literal.
func (o *LiteralOracle) stringValue(n *ast.Node) (string, bool) {
	t := o.TypeOf(n)
	if s, ok := t.SingleStringLiteral(); ok {
		return s, true
	}
	return t.SingleIntLiteral()
}

func castType(to string) *semtype.Union {
	switch to {
	case "string":
		return semtype.StringType()
	case "int":
		return semtype.IntType()
	case "float":
		return semtype.FloatType()
	case "bool":
		return semtype.BoolType()
	case "array":
		return semtype.ArrayType()
	case "object":
		return semtype.ObjectType()
	case "unset":
		return semtype.NullType()
	}
	return nil
}

// constant looks name up exactly, then lowercased: keys read from config
// files arrive lowercased.
func (o *LiteralOracle) constant(name string) (string, bool) {
	if v, ok := o.Constants[name]; ok {
		return v, true
	}
	v, ok := o.Constants[strings.ToLower(name)]
	return v, ok
}
