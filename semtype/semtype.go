// Copyright © 2024 The ELPS authors

// Package semtype models the semantic types found in hook documentation
// and call-site inference.
//
// A type is a Union of one or more Atomic members. Types are parsed from
// docblock type strings (see Parse) and compared with ContainedBy. The
// model is deliberately small: it covers the shapes that appear in hook
// signatures (scalars, arrays and array shapes, class names, literals)
// rather than a full host-language type system.
package semtype

import "strings"

// Kind classifies an atomic type.
type Kind int

const (
	Mixed Kind = iota
	Null
	Void
	Never
	Bool
	True
	False
	Int
	Float
	String
	Numeric
	Scalar
	ArrayKey
	Array
	List
	Shape
	Object
	Iterable
	Callable
	Resource
	Named
	LiteralString
	LiteralInt
	LiteralFloat
)

var kindKeywords = []string{
	Mixed:         "mixed",
	Null:          "null",
	Void:          "void",
	Never:         "never",
	Bool:          "bool",
	True:          "true",
	False:         "false",
	Int:           "int",
	Float:         "float",
	String:        "string",
	Numeric:       "numeric",
	Scalar:        "scalar",
	ArrayKey:      "array-key",
	Array:         "array",
	List:          "list",
	Shape:         "array",
	Object:        "object",
	Iterable:      "iterable",
	Callable:      "callable",
	Resource:      "resource",
	Named:         "object",
	LiteralString: "string",
	LiteralInt:    "int",
	LiteralFloat:  "float",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindKeywords) {
		return "unknown"
	}
	return kindKeywords[k]
}

// Field is a single entry of an array shape.
type Field struct {
	Key      string // empty for positional entries
	Optional bool
	Type     *Union
}

// Atomic is one member of a Union.
type Atomic struct {
	Kind Kind

	// Name is the spelling used in source when it differs from the kind
	// keyword (non-empty-string, positive-int) and the class name for
	// Named atomics.
	Name string

	// Literal holds the value of literal atomics. Literal strings keep
	// their unquoted value.
	Literal string

	// Key and Value are the generic parameters of Array, List and
	// Iterable. Value alone is set for T[] and list<T>.
	Key   *Union
	Value *Union

	// Fields are the entries of a Shape. ShapeOf is "array", "list" or
	// "object".
	Fields  []Field
	ShapeOf string

	// Params holds generic parameters that are not collection key/value
	// pairs, such as the bounds of int<0, max>.
	Params []*Union
}

// Union is a non-empty set of atomic types.
type Union struct {
	Types []Atomic
}

// NewUnion returns a union of the given atomics.
func NewUnion(atomics ...Atomic) *Union {
	return &Union{Types: atomics}
}

func single(k Kind) *Union {
	return NewUnion(Atomic{Kind: k})
}

// MixedType returns the universal type.
func MixedType() *Union { return single(Mixed) }

// VoidType returns the void type.
func VoidType() *Union { return single(Void) }

// NullType returns the null type.
func NullType() *Union { return single(Null) }

// BoolType returns bool.
func BoolType() *Union { return single(Bool) }

// TrueType returns the literal true type.
func TrueType() *Union { return single(True) }

// IntType returns int.
func IntType() *Union { return single(Int) }

// FloatType returns float.
func FloatType() *Union { return single(Float) }

// StringType returns string.
func StringType() *Union { return single(String) }

// ArrayType returns array.
func ArrayType() *Union { return single(Array) }

// ObjectType returns object.
func ObjectType() *Union { return single(Object) }

// CallableType returns callable.
func CallableType() *Union { return single(Callable) }

// NonEmptyString returns non-empty-string.
func NonEmptyString() *Union {
	return NewUnion(Atomic{Kind: String, Name: "non-empty-string"})
}

// LiteralStringType returns the literal string type for s.
func LiteralStringType(s string) *Union {
	return NewUnion(Atomic{Kind: LiteralString, Literal: s})
}

// LiteralIntType returns the literal int type for the decimal value v.
func LiteralIntType(v string) *Union {
	return NewUnion(Atomic{Kind: LiteralInt, Literal: v})
}

// LiteralFloatType returns the literal float type for v.
func LiteralFloatType(v string) *Union {
	return NewUnion(Atomic{Kind: LiteralFloat, Literal: v})
}

// IntRange returns int<min, max>.
func IntRange(min, max string) *Union {
	return NewUnion(Atomic{
		Kind:   Int,
		Params: []*Union{LiteralIntType(min), LiteralIntType(max)},
	})
}

// IsSingle reports whether the union has exactly one member.
func (u *Union) IsSingle() bool {
	return u != nil && len(u.Types) == 1
}

// HasMixed reports whether any member is mixed.
func (u *Union) HasMixed() bool {
	if u == nil {
		return false
	}
	for _, a := range u.Types {
		if a.Kind == Mixed {
			return true
		}
	}
	return false
}

// IsMixed reports whether the union is exactly mixed.
func (u *Union) IsMixed() bool {
	return u.IsSingle() && u.Types[0].Kind == Mixed
}

// IsVoid reports whether the union is exactly void.
func (u *Union) IsVoid() bool {
	return u.IsSingle() && u.Types[0].Kind == Void
}

// IsBool reports whether every member is bool, true or false.
func (u *Union) IsBool() bool {
	if u == nil || len(u.Types) == 0 {
		return false
	}
	for _, a := range u.Types {
		switch a.Kind {
		case Bool, True, False:
		default:
			return false
		}
	}
	return true
}

// SingleStringLiteral returns the value of a union consisting of exactly
// one literal string.
func (u *Union) SingleStringLiteral() (string, bool) {
	if !u.IsSingle() || u.Types[0].Kind != LiteralString {
		return "", false
	}
	return u.Types[0].Literal, true
}

// SingleIntLiteral returns the value of a union consisting of exactly one
// literal int.
func (u *Union) SingleIntLiteral() (string, bool) {
	if !u.IsSingle() || u.Types[0].Kind != LiteralInt {
		return "", false
	}
	return u.Types[0].Literal, true
}

// Equal reports whether two unions render identically.
func (u *Union) Equal(other *Union) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.String() == other.String()
}

// Generalize widens literal members to their base kind and true/false to
// bool, removing duplicates. It is used when a call-site argument type
// becomes a hook parameter type.
func (u *Union) Generalize() *Union {
	if u == nil {
		return nil
	}
	seen := make(map[string]bool)
	out := &Union{}
	for _, a := range u.Types {
		switch a.Kind {
		case True, False:
			a = Atomic{Kind: Bool}
		case LiteralString:
			a = Atomic{Kind: String}
		case LiteralInt:
			a = Atomic{Kind: Int}
		case LiteralFloat:
			a = Atomic{Kind: Float}
		}
		key := a.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Types = append(out.Types, a)
	}
	return out
}

// String renders the union in docblock syntax.
func (u *Union) String() string {
	if u == nil || len(u.Types) == 0 {
		return "mixed"
	}
	parts := make([]string, len(u.Types))
	for i, a := range u.Types {
		parts[i] = a.String()
	}
	return strings.Join(parts, "|")
}

// String renders the atomic in docblock syntax.
func (a Atomic) String() string {
	switch a.Kind {
	case LiteralString:
		return "'" + strings.ReplaceAll(a.Literal, "'", `\'`) + "'"
	case LiteralInt, LiteralFloat:
		return a.Literal
	case Named:
		return a.Name + renderParams(a.Params)
	case Shape:
		fields := make([]string, len(a.Fields))
		for i, f := range a.Fields {
			switch {
			case f.Key == "":
				fields[i] = f.Type.String()
			case f.Optional:
				fields[i] = f.Key + "?: " + f.Type.String()
			default:
				fields[i] = f.Key + ": " + f.Type.String()
			}
		}
		return a.ShapeOf + "{" + strings.Join(fields, ", ") + "}"
	}
	name := a.Name
	if name == "" {
		name = a.Kind.String()
	}
	switch {
	case a.Key != nil && a.Value != nil:
		return name + "<" + a.Key.String() + ", " + a.Value.String() + ">"
	case a.Value != nil && a.Kind == Array && a.Name == "":
		v := a.Value.String()
		if !a.Value.IsSingle() {
			v = "(" + v + ")"
		}
		return v + "[]"
	case a.Value != nil:
		return name + "<" + a.Value.String() + ">"
	}
	return name + renderParams(a.Params)
}

func renderParams(params []*Union) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// keywords maps lowercase docblock keywords to atomic kinds. Spellings
// that refine a kind keep their spelling in Atomic.Name.
var keywords = map[string]Kind{
	"mixed":              Mixed,
	"null":               Null,
	"void":               Void,
	"never":              Never,
	"never-return":       Never,
	"no-return":          Never,
	"bool":               Bool,
	"boolean":            Bool,
	"true":               True,
	"false":              False,
	"int":                Int,
	"integer":            Int,
	"positive-int":       Int,
	"negative-int":       Int,
	"non-negative-int":   Int,
	"non-positive-int":   Int,
	"float":              Float,
	"double":             Float,
	"string":             String,
	"non-empty-string":   String,
	"non-falsy-string":   String,
	"numeric-string":     String,
	"lowercase-string":   String,
	"literal-string":     String,
	"class-string":       String,
	"callable-string":    String,
	"numeric":            Numeric,
	"scalar":             Scalar,
	"array-key":          ArrayKey,
	"array":              Array,
	"non-empty-array":    Array,
	"associative-array":  Array,
	"list":               List,
	"non-empty-list":     List,
	"object":             Object,
	"iterable":           Iterable,
	"callable":           Callable,
	"resource":           Resource,
	"closed-resource":    Resource,
	"open-resource":      Resource,
}

// synonyms are keyword spellings that carry no refinement.
var synonyms = map[string]bool{
	"boolean":      true,
	"integer":      true,
	"double":       true,
	"never-return": true,
	"no-return":    true,
}

// keyword returns the atomic for a bare name, or a Named atomic when the
// name is not a keyword.
func keyword(name string) Atomic {
	lower := strings.ToLower(name)
	k, ok := keywords[lower]
	if !ok {
		return Atomic{Kind: Named, Name: name}
	}
	a := Atomic{Kind: k}
	if lower != k.String() && !synonyms[lower] {
		a.Name = lower
	}
	return a
}
