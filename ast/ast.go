// Copyright © 2024 The ELPS authors

// Package ast is the syntax tree consumed by the hook scanner and the
// contract provider. It models the subset of PHP that matters for hook
// calls; everything else decodes to Other nodes that keep their children
// so traversal still reaches nested calls.
package ast

// Kind identifies the shape of a Node.
type Kind int

const (
	Other               Kind = iota
	Call                     // name(args); Name or NameExpr
	MethodCall               // Var->Name(args)
	StaticCall               // ClassName::Name(args) or Class::Name(args)
	PropertyFetch            // Var->Name
	StaticPropertyFetch      // ClassName::$Name
	ArrayDimFetch            // Var[Dim]
	Variable                 // $Name or ${NameExpr}
	String                   // 'Value'
	Interpolated             // "a{$b}c"; Parts
	StringPart               // literal segment of an interpolated string
	Int
	Float
	Concat // Left . Right
	ConstFetch
	ClassConstFetch
	Array // Items
	ArrayItem
	Cast // (CastTo) Expr
	Closure
	ArrowFunction
	Return
	Echo // Items
	Namespace
	Use
	GroupUse
	Assign // Var = Expr
)

func (k Kind) String() string {
	switch k {
	case Call:
		return "call"
	case MethodCall:
		return "method-call"
	case StaticCall:
		return "static-call"
	case PropertyFetch:
		return "property-fetch"
	case StaticPropertyFetch:
		return "static-property-fetch"
	case ArrayDimFetch:
		return "array-dim-fetch"
	case Variable:
		return "variable"
	case String:
		return "string"
	case Interpolated:
		return "interpolated-string"
	case StringPart:
		return "string-part"
	case Int:
		return "int"
	case Float:
		return "float"
	case Concat:
		return "concat"
	case ConstFetch:
		return "const-fetch"
	case ClassConstFetch:
		return "class-const-fetch"
	case Array:
		return "array"
	case ArrayItem:
		return "array-item"
	case Cast:
		return "cast"
	case Closure:
		return "closure"
	case ArrowFunction:
		return "arrow-function"
	case Return:
		return "return"
	case Echo:
		return "echo"
	case Namespace:
		return "namespace"
	case Use:
		return "use"
	case GroupUse:
		return "group-use"
	case Assign:
		return "assign"
	default:
		return "other"
	}
}

// Node is a single syntax tree node. Which fields are set depends on Kind.
type Node struct {
	Kind Kind
	Type string // source node type, e.g. "Expr_FuncCall"
	Line int
	Doc  string // attached doc comment, delimiters included

	// Name is the static name of a called function, method, property,
	// constant, variable or namespace. NameExpr replaces it when the
	// name is computed.
	Name     string
	NameExpr *Node

	// ClassName is the static class of a static call or fetch; Class
	// replaces it when the class is an expression.
	ClassName string
	Class     *Node

	Value string // literal value

	Var   *Node // object, array or assignment target
	Dim   *Node // array index; nil for $a[]
	Key   *Node // array item key
	Left  *Node
	Right *Node
	Expr  *Node // cast operand, returned value, assigned value, item value, arrow body

	Parts    []*Node
	Args     []*Arg
	Items    []*Node
	Stmts    []*Node
	Children []*Node

	Uses       []UseItem
	Params     []Param
	ReturnType string
	CastTo     string // string, int, float, bool, array, object, unset
}

// Arg is one argument of a call.
type Arg struct {
	Name   string // named argument, empty when positional
	Value  *Node
	Unpack bool
}

// UseItem is one imported name of a use statement.
type UseItem struct {
	Name  string // fully qualified, no leading backslash
	Alias string // empty when the last segment is used
}

// Param is a closure or arrow function parameter.
type Param struct {
	Name     string // without '$'
	Type     string // declared type, empty when untyped
	Optional bool
	Variadic bool
}

// File is the syntax tree of one source file.
type File struct {
	Path  string
	Nodes []*Node
}

// ChildNodes returns the direct children of n in source order.
func ChildNodes(n *Node) []*Node {
	var out []*Node
	add := func(c *Node) {
		if c != nil {
			out = append(out, c)
		}
	}
	add(n.Var)
	add(n.Class)
	add(n.NameExpr)
	add(n.Dim)
	add(n.Key)
	add(n.Left)
	add(n.Right)
	for _, a := range n.Args {
		add(a.Value)
	}
	add(n.Expr)
	for _, list := range [][]*Node{n.Parts, n.Items, n.Stmts, n.Children} {
		for _, c := range list {
			add(c)
		}
	}
	return out
}
