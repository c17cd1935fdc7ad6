// Copyright © 2024 The ELPS authors

package semtype

import (
	"strconv"
	"strings"
)

// ContainedBy reports whether every value of type a is also a value of
// type b. A nil union is treated as mixed. The relation is lenient where
// docblock types are imprecise: refinements such as non-empty-string are
// compared by their base kind and unparameterized arrays match any array.
// Literals are checked against the refinement they claim to satisfy, and
// void is only contained by void and mixed.
func ContainedBy(a, b *Union) bool {
	if b == nil || b.HasMixed() {
		return true
	}
	if a == nil || len(a.Types) == 0 {
		return false
	}
	for _, x := range a.Types {
		if !atomicContained(x, b) {
			return false
		}
	}
	return true
}

func atomicContained(x Atomic, b *Union) bool {
	for _, y := range b.Types {
		if containedIn(x, y) {
			return true
		}
	}
	return false
}

func containedIn(x, y Atomic) bool {
	if y.Kind == Mixed {
		return true
	}
	switch x.Kind {
	case Mixed:
		return false
	case Never:
		return true
	case Void:
		return y.Kind == Void
	case Null:
		return y.Kind == Null
	case True:
		return oneOf(y.Kind, True, Bool, Scalar)
	case False:
		return oneOf(y.Kind, False, Bool, Scalar)
	case Bool:
		return oneOf(y.Kind, Bool, Scalar)
	case LiteralString:
		if y.Kind == LiteralString {
			return x.Literal == y.Literal
		}
		if y.Kind == String && !literalRefines(x.Literal, y.Name) {
			return false
		}
		return oneOf(y.Kind, String, Scalar, ArrayKey, Callable)
	case LiteralInt:
		if y.Kind == LiteralInt {
			return x.Literal == y.Literal
		}
		if y.Kind == Int && len(y.Params) == 2 {
			return inRange(x.Literal, y.Params[0], y.Params[1])
		}
		return oneOf(y.Kind, Int, Float, Numeric, Scalar, ArrayKey)
	case LiteralFloat:
		if y.Kind == LiteralFloat {
			return x.Literal == y.Literal
		}
		return oneOf(y.Kind, Float, Numeric, Scalar)
	case Int:
		return oneOf(y.Kind, Int, Float, Numeric, Scalar, ArrayKey)
	case Float:
		return oneOf(y.Kind, Float, Numeric, Scalar)
	case String:
		return oneOf(y.Kind, String, Scalar, ArrayKey, Callable)
	case Numeric:
		return oneOf(y.Kind, Numeric, Scalar)
	case Scalar:
		return y.Kind == Scalar
	case ArrayKey:
		return oneOf(y.Kind, ArrayKey, Scalar)
	case Array, List, Shape:
		return arrayContained(x, y)
	case Iterable:
		return y.Kind == Iterable
	case Callable:
		return y.Kind == Callable
	case Resource:
		return y.Kind == Resource
	case Object:
		return y.Kind == Object
	case Named:
		switch y.Kind {
		case Object:
			return true
		case Named:
			return sameClass(x.Name, y.Name)
		case Callable:
			return sameClass(x.Name, "Closure")
		case Iterable:
			return sameClass(x.Name, "Traversable") || sameClass(x.Name, "Iterator") ||
				sameClass(x.Name, "ArrayIterator") || sameClass(x.Name, "Generator")
		}
		return false
	}
	return x.Kind == y.Kind
}

func arrayContained(x, y Atomic) bool {
	switch y.Kind {
	case Iterable:
		return true
	case Array:
		if y.Value == nil {
			return true
		}
		return valuesContained(x, y.Value)
	case List:
		if x.Kind == Array && x.Name == "" && x.Value == nil {
			return true
		}
		if x.Kind == Shape && x.ShapeOf == "object" {
			return false
		}
		if x.Kind == Array && x.Key != nil {
			return false
		}
		if y.Value == nil {
			return true
		}
		return valuesContained(x, y.Value)
	case Shape:
		if x.Kind != Shape {
			// Plain arrays carry no key information.
			return true
		}
		return shapeContained(x, y)
	case Object:
		return x.Kind == Shape && x.ShapeOf == "object"
	}
	return false
}

func valuesContained(x Atomic, value *Union) bool {
	switch x.Kind {
	case Shape:
		for _, f := range x.Fields {
			if !ContainedBy(f.Type, value) {
				return false
			}
		}
		return true
	}
	if x.Value == nil {
		return true
	}
	return ContainedBy(x.Value, value)
}

func shapeContained(x, y Atomic) bool {
	have := make(map[string]Field, len(x.Fields))
	for i, f := range x.Fields {
		have[fieldKey(f, i)] = f
	}
	for i, want := range y.Fields {
		got, ok := have[fieldKey(want, i)]
		if !ok {
			if want.Optional {
				continue
			}
			return false
		}
		if got.Optional && !want.Optional {
			return false
		}
		if !ContainedBy(got.Type, want.Type) {
			return false
		}
	}
	return true
}

func fieldKey(f Field, i int) string {
	if f.Key != "" {
		return f.Key
	}
	return "#" + strconv.Itoa(i)
}

// literalRefines reports whether the string literal v satisfies the
// string refinement named by refinement. Refinements not checked here
// accept every literal.
func literalRefines(v, refinement string) bool {
	switch refinement {
	case "non-empty-string":
		return v != ""
	case "non-falsy-string":
		return v != "" && v != "0"
	}
	return true
}

// inRange reports whether the int literal v lies within the bounds of
// int<lo, hi>. Unparseable values and min/max bounds are open.
func inRange(v string, lo, hi *Union) bool {
	n, err := strconv.ParseInt(strings.ReplaceAll(v, "_", ""), 0, 64)
	if err != nil {
		return true
	}
	if b, ok := lo.SingleIntLiteral(); ok {
		if lower, err := strconv.ParseInt(b, 10, 64); err == nil && n < lower {
			return false
		}
	}
	if b, ok := hi.SingleIntLiteral(); ok {
		if upper, err := strconv.ParseInt(b, 10, 64); err == nil && n > upper {
			return false
		}
	}
	return true
}

func oneOf(k Kind, kinds ...Kind) bool {
	for _, c := range kinds {
		if k == c {
			return true
		}
	}
	return false
}

func sameClass(a, b string) bool {
	return strings.EqualFold(strings.TrimPrefix(a, `\`), strings.TrimPrefix(b, `\`))
}
