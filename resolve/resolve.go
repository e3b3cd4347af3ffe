// Package resolve answers "what concrete type does this descriptor denote
// here?" over the descriptor graph registered in typedesc.
//
// All functions are pure and treat missing information as a normal result:
// a type variable the context does not bind, or a bound that cannot be
// reduced to a single class, yields nil rather than an error. Callers are
// expected to fall back to raw-class behavior when that happens.
//
// The central operation is ActualType: a depth-first, single-pass
// substitution of type variables by the bindings a context provides. It
// never loops to a fixed point; each recursive step either descends into a
// strictly smaller descriptor or moves up a finite declaration chain, so
// the recursion is bounded by the type graph, not by input data.
package resolve

import (
	"reflect"

	"github.com/gentype-io/gentype/typedesc"
)

// RawClass returns the concrete class a descriptor ultimately denotes, or
// nil if it cannot be determined.
//
// A variable or wildcard resolves through its bound only when there is
// exactly one: the zero-bound and many-bound cases are ambiguous and stay
// unresolved. This mirrors single-bound erasure; no disambiguation rule is
// applied for multiple bounds.
func RawClass(d typedesc.Type) reflect.Type {
	switch t := d.(type) {
	case nil:
		return nil
	case *typedesc.Class:
		return t.Runtime()
	case *typedesc.Parameterized:
		return RawClass(t.Raw())
	case *typedesc.Variable:
		if bounds := t.Bounds(); len(bounds) == 1 {
			return RawClass(bounds[0])
		}
	case *typedesc.Wildcard:
		if upper := t.Upper(); len(upper) == 1 {
			return RawClass(upper[0])
		}
	case *typedesc.Array:
		if elem := RawClass(t.Elem()); elem != nil {
			return reflect.SliceOf(elem)
		}
	}
	return nil
}

// IsUnknown reports whether a descriptor carries no concrete information:
// nil, or a bare type variable.
func IsUnknown(d typedesc.Type) bool {
	if d == nil {
		return true
	}
	_, ok := d.(*typedesc.Variable)
	return ok
}

// HasVariable reports whether any descriptor in the list is, directly, a
// type variable. It does not recurse into nested arguments; it is the
// short-circuit guard used before attempting substitution.
func HasVariable(ds ...typedesc.Type) bool {
	for _, d := range ds {
		if _, ok := d.(*typedesc.Variable); ok {
			return true
		}
	}
	return false
}

// Generics returns a class's generic ancestry: its parameterized superclass
// when declared, then its parameterized interfaces, in declaration order.
// A class with no registered declaration has no generic ancestry.
func Generics(class reflect.Type) []*typedesc.Parameterized {
	decl, ok := typedesc.DeclarationOf(class)
	if !ok {
		return nil
	}
	return decl.Generics()
}

// ToParameterized converts a descriptor to its parameterized form,
// preferring the generic superclass over interfaces (index 0 of the
// ancestry).
func ToParameterized(d typedesc.Type) *typedesc.Parameterized {
	return ToParameterizedAt(d, 0)
}

// ToParameterizedAt converts a descriptor to a parameterized form.
//
// A parameterized descriptor is returned unchanged. A class descriptor
// yields the entry of its generic ancestry at interfaceIndex, or nil when
// out of range. Anything else has no parameterized form.
func ToParameterizedAt(d typedesc.Type, interfaceIndex int) *typedesc.Parameterized {
	switch t := d.(type) {
	case *typedesc.Parameterized:
		return t
	case *typedesc.Class:
		generics := Generics(t.Runtime())
		if interfaceIndex >= 0 && interfaceIndex < len(generics) {
			return generics[interfaceIndex]
		}
	}
	return nil
}

// TypeArguments returns the explicit type arguments a descriptor carries,
// in declaration order, or nil if it carries none.
//
// A bare class has no arguments of its own; it is first converted through
// its generic ancestry, so passing either a parameterization site or the
// class itself gives consistent results for the class's declared ancestry.
func TypeArguments(d typedesc.Type) []typedesc.Type {
	p := ToParameterized(d)
	if p == nil {
		return nil
	}
	return p.Args()
}

// TypeArgument returns the index-th type argument, or nil when the
// descriptor carries no argument at that index.
func TypeArgument(d typedesc.Type, index int) typedesc.Type {
	args := TypeArguments(d)
	if index < 0 || index >= len(args) {
		return nil
	}
	return args[index]
}

// ActualType substitutes the type variables of a descriptor with the
// bindings provided by context.
//
// A parameterized descriptor whose arguments mention variables is rebuilt
// with the substituted arguments (raw type and owner unchanged); if no
// argument needed substitution the original descriptor is returned as-is.
// A bare variable resolves through the context's actual-type map and yields
// nil when the context provides no binding. Every other descriptor passes
// through unchanged.
func ActualType(context typedesc.Type, d typedesc.Type) typedesc.Type {
	switch t := d.(type) {
	case *typedesc.Parameterized:
		return actualParameterized(context, t)
	case *typedesc.Variable:
		return VariableActual(context, t)
	}
	return d
}

// ActualTypes substitutes every descriptor in the list. Unresolvable
// entries are nil.
func ActualTypes(context typedesc.Type, ds ...typedesc.Type) []typedesc.Type {
	out := make([]typedesc.Type, len(ds))
	for i, d := range ds {
		out[i] = ActualType(context, d)
	}
	return out
}

func actualParameterized(context typedesc.Type, p *typedesc.Parameterized) typedesc.Type {
	args := p.Args()
	if !HasVariable(args...) {
		return p
	}

	substituted := make([]typedesc.Type, len(args))
	changed := false
	for i, arg := range args {
		actual := ActualType(context, arg)
		if actual == nil {
			// Context has no binding for this argument; keep the variable.
			actual = arg
		}
		if actual != arg {
			changed = true
		}
		substituted[i] = actual
	}
	if !changed {
		return p
	}
	return typedesc.NewOwnedParameterized(p.Owner(), p.Raw(), substituted...)
}

// FieldType returns the declared generic descriptor of a field, looking
// through the class's declaration and then its generic ancestry. The result
// may still mention variables of an ancestor; resolve it with ActualType
// against the concrete class.
func FieldType(class reflect.Type, name string) typedesc.Type {
	seen := make(map[reflect.Type]bool)
	for class != nil && !seen[class] {
		seen[class] = true
		decl, ok := typedesc.DeclarationOf(class)
		if !ok {
			return nil
		}
		if t, ok := decl.FieldType(name); ok {
			return t
		}
		// Fields are inherited through the superclass chain only.
		generics := decl.Generics()
		if len(generics) == 0 {
			return nil
		}
		class = RawClass(generics[0].Raw())
	}
	return nil
}
