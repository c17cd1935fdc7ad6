// Copyright © 2024 The ELPS authors

package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// DecodeJSON decodes a nikic/php-parser JSON dump (the output of
// `php-parse --json-dump` or json_encode of the statement list) into a
// File. Node names of php-parser v4 and v5 are both accepted. Text before
// the opening '[' is ignored so the CLI banner lines can be left in.
func DecodeJSON(path string, data []byte) (*File, error) {
	if i := bytes.IndexByte(data, '['); i > 0 {
		data = data[i:]
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s: invalid JSON", path)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%s: expected a statement list", path)
	}
	return &File{Path: path, Nodes: decodeList(root)}, nil
}

func decodeList(v gjson.Result) []*Node {
	var out []*Node
	v.ForEach(func(_, item gjson.Result) bool {
		if n := decodeNode(item); n != nil {
			out = append(out, n)
		}
		return true
	})
	return out
}

func decodeNode(v gjson.Result) *Node {
	if !v.IsObject() || !v.Get("nodeType").Exists() {
		return nil
	}
	typ := v.Get("nodeType").String()
	n := &Node{
		Type: typ,
		Line: int(v.Get("attributes.startLine").Int()),
		Doc:  docComment(v),
	}
	switch typ {
	case "Stmt_Expression":
		inner := decodeNode(v.Get("expr"))
		if inner == nil {
			return n
		}
		if inner.Doc == "" {
			inner.Doc = n.Doc
		}
		return inner
	case "Expr_FuncCall":
		n.Kind = Call
		setName(n, v.Get("name"))
		n.Args = decodeArgs(v.Get("args"))
	case "Expr_MethodCall", "Expr_NullsafeMethodCall":
		n.Kind = MethodCall
		n.Var = decodeNode(v.Get("var"))
		setName(n, v.Get("name"))
		n.Args = decodeArgs(v.Get("args"))
	case "Expr_StaticCall":
		n.Kind = StaticCall
		setClass(n, v.Get("class"))
		setName(n, v.Get("name"))
		n.Args = decodeArgs(v.Get("args"))
	case "Expr_PropertyFetch", "Expr_NullsafePropertyFetch":
		n.Kind = PropertyFetch
		n.Var = decodeNode(v.Get("var"))
		setName(n, v.Get("name"))
	case "Expr_StaticPropertyFetch":
		n.Kind = StaticPropertyFetch
		setClass(n, v.Get("class"))
		setName(n, v.Get("name"))
	case "Expr_ArrayDimFetch":
		n.Kind = ArrayDimFetch
		n.Var = decodeNode(v.Get("var"))
		n.Dim = decodeNode(v.Get("dim"))
	case "Expr_Variable":
		n.Kind = Variable
		setName(n, v.Get("name"))
	case "Scalar_String":
		n.Kind = String
		n.Value = v.Get("value").String()
	case "Scalar_Encapsed", "Scalar_InterpolatedString":
		n.Kind = Interpolated
		n.Parts = decodeList(v.Get("parts"))
	case "Scalar_EncapsedStringPart", "InterpolatedStringPart":
		n.Kind = StringPart
		n.Value = v.Get("value").String()
	case "Scalar_LNumber", "Scalar_Int":
		n.Kind = Int
		n.Value = v.Get("value").String()
	case "Scalar_DNumber", "Scalar_Float":
		n.Kind = Float
		n.Value = v.Get("value").String()
	case "Expr_BinaryOp_Concat":
		n.Kind = Concat
		n.Left = decodeNode(v.Get("left"))
		n.Right = decodeNode(v.Get("right"))
	case "Expr_ConstFetch":
		n.Kind = ConstFetch
		n.Name = nameString(v.Get("name"))
	case "Expr_ClassConstFetch":
		n.Kind = ClassConstFetch
		setClass(n, v.Get("class"))
		setName(n, v.Get("name"))
	case "Expr_Array":
		n.Kind = Array
		n.Items = decodeList(v.Get("items"))
	case "Expr_ArrayItem", "ArrayItem":
		n.Kind = ArrayItem
		n.Key = decodeNode(v.Get("key"))
		n.Expr = decodeNode(v.Get("value"))
	case "Expr_Closure":
		n.Kind = Closure
		n.Params = decodeParams(v.Get("params"))
		n.ReturnType = typeString(v.Get("returnType"))
		n.Stmts = decodeList(v.Get("stmts"))
	case "Expr_ArrowFunction":
		n.Kind = ArrowFunction
		n.Params = decodeParams(v.Get("params"))
		n.ReturnType = typeString(v.Get("returnType"))
		n.Expr = decodeNode(v.Get("expr"))
	case "Stmt_Return":
		n.Kind = Return
		n.Expr = decodeNode(v.Get("expr"))
	case "Stmt_Echo":
		n.Kind = Echo
		n.Items = decodeList(v.Get("exprs"))
	case "Stmt_Namespace":
		n.Kind = Namespace
		n.Name = nameString(v.Get("name"))
		n.Stmts = decodeList(v.Get("stmts"))
	case "Stmt_Use":
		n.Kind = Use
		n.Uses = decodeUses(v.Get("type").Int(), "", v.Get("uses"))
	case "Stmt_GroupUse":
		n.Kind = GroupUse
		n.Uses = decodeUses(v.Get("type").Int(), nameString(v.Get("prefix")), v.Get("uses"))
	case "Expr_Assign":
		n.Kind = Assign
		n.Var = decodeNode(v.Get("var"))
		n.Expr = decodeNode(v.Get("expr"))
		if n.Var != nil && n.Var.Doc == "" {
			n.Var.Doc = n.Doc
		}
	default:
		if cast, ok := castTypes[typ]; ok {
			n.Kind = Cast
			n.CastTo = cast
			n.Expr = decodeNode(v.Get("expr"))
			return n
		}
		n.Kind = Other
		n.Children = decodeChildren(v)
	}
	return n
}

var castTypes = map[string]string{
	"Expr_Cast_String": "string",
	"Expr_Cast_Int":    "int",
	"Expr_Cast_Double": "float",
	"Expr_Cast_Bool":   "bool",
	"Expr_Cast_Array":  "array",
	"Expr_Cast_Object": "object",
	"Expr_Cast_Unset":  "unset",
}

// decodeChildren decodes every sub-node of an unmodelled node in the
// order its fields appear.
func decodeChildren(v gjson.Result) []*Node {
	var out []*Node
	v.ForEach(func(key, field gjson.Result) bool {
		switch key.String() {
		case "nodeType", "attributes":
			return true
		}
		switch {
		case field.IsArray():
			out = append(out, decodeList(field)...)
		case field.IsObject():
			if c := decodeNode(field); c != nil {
				out = append(out, c)
			}
		}
		return true
	})
	return out
}

func decodeArgs(v gjson.Result) []*Arg {
	var out []*Arg
	v.ForEach(func(_, a gjson.Result) bool {
		if a.Get("nodeType").String() != "Arg" {
			// VariadicPlaceholder of a first-class callable.
			return true
		}
		out = append(out, &Arg{
			Name:   nameString(a.Get("name")),
			Value:  decodeNode(a.Get("value")),
			Unpack: a.Get("unpack").Bool(),
		})
		return true
	})
	return out
}

func decodeParams(v gjson.Result) []Param {
	var out []Param
	v.ForEach(func(_, p gjson.Result) bool {
		out = append(out, Param{
			Name:     nameString(p.Get("var.name")),
			Type:     typeString(p.Get("type")),
			Optional: p.Get("default").IsObject(),
			Variadic: p.Get("variadic").Bool(),
		})
		return true
	})
	return out
}

// Use statement types of php-parser.
const (
	useUnknown = 0
	useNormal  = 1
)

func decodeUses(stmtType int64, prefix string, v gjson.Result) []UseItem {
	var out []UseItem
	v.ForEach(func(_, u gjson.Result) bool {
		typ := stmtType
		if typ == useUnknown {
			typ = u.Get("type").Int()
		}
		if typ != useNormal && typ != useUnknown {
			return true
		}
		name := nameString(u.Get("name"))
		if prefix != "" {
			name = prefix + `\` + name
		}
		out = append(out, UseItem{Name: name, Alias: nameString(u.Get("alias"))})
		return true
	})
	return out
}

func isNameNode(v gjson.Result) bool {
	if v.Type == gjson.String {
		return true
	}
	switch v.Get("nodeType").String() {
	case "Name", "Name_FullyQualified", "Name_Relative", "Identifier", "VarLikeIdentifier":
		return true
	}
	return false
}

func setName(n *Node, v gjson.Result) {
	if !v.Exists() || v.Type == gjson.Null {
		return
	}
	if isNameNode(v) {
		n.Name = nameString(v)
		return
	}
	n.NameExpr = decodeNode(v)
}

func setClass(n *Node, v gjson.Result) {
	if isNameNode(v) {
		n.ClassName = nameString(v)
		if v.Get("nodeType").String() == "Name_FullyQualified" {
			n.ClassName = `\` + n.ClassName
		}
		return
	}
	n.Class = decodeNode(v)
}

// nameString returns the plain text of a name or identifier node, or of a
// bare string. Names are returned without a leading backslash.
func nameString(v gjson.Result) string {
	switch {
	case v.Type == gjson.String:
		return v.String()
	case !v.IsObject():
		return ""
	}
	if parts := v.Get("parts"); parts.IsArray() {
		var segs []string
		for _, p := range parts.Array() {
			segs = append(segs, p.String())
		}
		return strings.Join(segs, `\`)
	}
	return strings.TrimPrefix(v.Get("name").String(), `\`)
}

func typeString(v gjson.Result) string {
	if !v.IsObject() {
		return ""
	}
	switch v.Get("nodeType").String() {
	case "NullableType":
		return "?" + typeString(v.Get("type"))
	case "UnionType", "IntersectionType":
		sep := "|"
		if v.Get("nodeType").String() == "IntersectionType" {
			sep = "&"
		}
		var parts []string
		for _, t := range v.Get("types").Array() {
			parts = append(parts, typeString(t))
		}
		return strings.Join(parts, sep)
	case "Name_FullyQualified":
		return `\` + nameString(v)
	}
	return nameString(v)
}

func docComment(v gjson.Result) string {
	var doc string
	v.Get("attributes.comments").ForEach(func(_, c gjson.Result) bool {
		if c.Get("nodeType").String() == "Comment_Doc" {
			doc = c.Get("text").String()
		}
		return true
	})
	return doc
}
