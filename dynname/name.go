// Copyright © 2024 The ELPS authors

// Package dynname handles hook names assembled at runtime. Name folds a
// hook-name expression into a templated name such as
// "save_post_{$post->post_type}", and Resolver matches templated or
// concrete names against the dynamic patterns in a hooks.Registry.
package dynname

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/luthersystems/wphooks/ast"
)

// UnsupportedError reports a hook-name expression whose shape cannot be
// folded into a templated name. It is not suppressible: the shape should
// be supported rather than ignored.
type UnsupportedError struct {
	Shape string
	What  string // which part of the expression failed
	Line  int
}

func (e *UnsupportedError) Error() string {
	if e.What != "" {
		return fmt.Sprintf("unsupported dynamic hook name with %s type %s on line %d", e.What, e.Shape, e.Line)
	}
	return fmt.Sprintf("unsupported dynamic hook name with type %s on line %d", e.Shape, e.Line)
}

func unsupported(n *ast.Node, what string, part *ast.Node) *UnsupportedError {
	shape := "<nil>"
	if part != nil {
		shape = part.Type
		if shape == "" {
			shape = part.Kind.String()
		}
	}
	return &UnsupportedError{Shape: shape, What: what, Line: n.Line}
}

// Name folds a hook-name expression into a templated name. Interpolated
// segments are written the way wp-hooks-generator writes them:
//
//	$var            {$var}
//	$obj->prop      {$obj->prop}
//	$obj->m()       {$obj->m()}
//	$a['k'], $a[0]  {$a['k']}, {$a[0]}
//	$c::m()         {$c::m()}
//	f(), CONST      {$variable}
//
// ok is false for shapes that are knowingly skipped (static property
// fetches and static calls on a named class). err is an
// *UnsupportedError for any other shape.
func Name(expr *ast.Node) (name string, ok bool, err error) {
	if expr == nil {
		return "", false, nil
	}
	switch expr.Kind {
	case ast.Variable:
		if expr.NameExpr != nil {
			return "", false, unsupported(expr, "name", expr.NameExpr)
		}
		return "{$" + expr.Name + "}", true, nil

	case ast.Interpolated:
		var b strings.Builder
		for _, part := range expr.Parts {
			s, ok, err := Name(part)
			if err != nil || !ok {
				return "", false, err
			}
			b.WriteString(s)
		}
		return b.String(), true, nil

	case ast.Concat:
		left, ok, err := Name(expr.Left)
		if err != nil || !ok {
			return "", false, err
		}
		right, ok, err := Name(expr.Right)
		if err != nil || !ok {
			return "", false, err
		}
		return left + right, true, nil

	case ast.String, ast.StringPart, ast.Int:
		return expr.Value, true, nil

	case ast.StaticPropertyFetch:
		return "", false, nil

	case ast.StaticCall:
		if expr.NameExpr != nil {
			return "", false, unsupported(expr, "name", expr.NameExpr)
		}
		if expr.Class == nil {
			return "", false, nil
		}
		class, ok, err := Name(expr.Class)
		if err != nil {
			return "", false, err
		}
		if !ok {
			return "", false, unsupported(expr, "class", expr.Class)
		}
		return strings.TrimRight(class, "}") + "::" + expr.Name + "()}", true, nil

	case ast.PropertyFetch, ast.MethodCall:
		if expr.NameExpr != nil {
			return "", false, unsupported(expr, "name", expr.NameExpr)
		}
		v, ok, err := Name(expr.Var)
		if err != nil {
			return "", false, err
		}
		if !ok {
			return "", false, unsupported(expr, "var", expr.Var)
		}
		suffix := ""
		if expr.Kind == ast.MethodCall {
			suffix = "()"
		}
		return strings.TrimRight(v, "}") + "->" + expr.Name + suffix + "}", true, nil

	case ast.Call:
		return "{$variable}", true, nil

	case ast.ArrayDimFetch:
		key, ok, err := Name(expr.Dim)
		if err != nil {
			return "", false, err
		}
		if !ok {
			return "", false, unsupported(expr, "key", expr.Dim)
		}
		v, ok, err := Name(expr.Var)
		if err != nil {
			return "", false, err
		}
		if !ok {
			return "", false, unsupported(expr, "var", expr.Var)
		}
		switch {
		case strings.HasPrefix(key, "{"):
			key = strings.Trim(key, "{}")
		case isNumeric(key):
		default:
			key = "'" + key + "'"
		}
		return strings.TrimRight(v, "}") + "[" + key + "]}", true, nil

	case ast.ConstFetch, ast.ClassConstFetch:
		return "{$variable}", true, nil
	}
	return "", false, unsupported(expr, "", expr)
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}
