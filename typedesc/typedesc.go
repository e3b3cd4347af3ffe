// The Go runtime erases generic instantiations: once a program is compiled,
// `reflect` can no longer tell you that a field was declared as `List[T]`, nor
// which concrete type `T` stands for in a given subclass. Languages with
// reflective generics (and the serialization layers built on them) rely on
// exactly that information to decide, say, the element type of a collection
// field before deserializing its elements.
//
// This package reintroduces the missing information as an explicit,
// ahead-of-time descriptor graph. A descriptor is a tagged union over the five
// forms a type reference can take:
//
//   - a concrete class (a plain reflect.Type),
//   - a parameterized type (raw type + ordered type arguments + optional owner),
//   - a type variable (a placeholder such as `T`, owned by its declaration),
//   - a wildcard (upper/lower bounds, possibly none),
//   - a generic array (an array of some descriptor).
//
// Concrete Go types acquire generic structure through a Declaration,
// registered once at startup: the declaration lists the type's parameters,
// its parameterized superclass and interfaces, and optionally the declared
// descriptor of individual fields. The resolve package then answers questions
// such as "what does `T` mean in the context of this subclass?" by walking
// this graph instead of live introspection.
//
// Descriptors are immutable once built. Variable identity is pointer
// identity: two variables named `T` from unrelated declarations are distinct,
// so declarations hand out the canonical *Variable pointers.
package typedesc

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Kind discriminates the forms of a Type.
type Kind int

const (
	// KindClass is a concrete runtime class.
	KindClass Kind = iota
	// KindParameterized is a raw type applied to type arguments.
	KindParameterized
	// KindVariable is a declared type variable such as `T`.
	KindVariable
	// KindWildcard is a bounded or unbounded wildcard.
	KindWildcard
	// KindArray is an array of some component descriptor.
	KindArray
)

// String returns the kind's name, for error messages.
func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindParameterized:
		return "parameterized"
	case KindVariable:
		return "variable"
	case KindWildcard:
		return "wildcard"
	case KindArray:
		return "array"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Type is the tagged union over descriptor forms.
//
// The interface is sealed: the only implementations are *Class,
// *Parameterized, *Variable, *Wildcard and *Array, so a switch over those
// five pointer types is exhaustive.
type Type interface {
	Kind() Kind
	String() string

	sealed()
}

// -------- Class --------

// Class denotes a concrete runtime class.
type Class struct {
	rt reflect.Type
}

// classes interns Class descriptors so that ClassFor returns the same
// pointer for the same reflect.Type.
var classes sync.Map // reflect.Type -> *Class

// ClassFor returns the descriptor for a reflect.Type, or nil for nil.
func ClassFor(t reflect.Type) *Class {
	if t == nil {
		return nil
	}
	if c, ok := classes.Load(t); ok {
		return c.(*Class)
	}
	c, _ := classes.LoadOrStore(t, &Class{rt: t})
	return c.(*Class)
}

// ClassOf returns the descriptor for the Go type T.
func ClassOf[T any]() *Class {
	return ClassFor(reflect.TypeOf((*T)(nil)).Elem())
}

// Runtime returns the underlying reflect.Type.
func (c *Class) Runtime() reflect.Type { return c.rt }

func (c *Class) Kind() Kind     { return KindClass }
func (c *Class) String() string { return c.rt.String() }
func (c *Class) sealed()        {}

// -------- Parameterized --------

// Parameterized is a raw type applied to ordered type arguments, e.g. the
// descriptor spelled `List<String>` in a source language with declaration
// generics. Owner is the enclosing type for nested declarations and is
// usually nil.
type Parameterized struct {
	raw   Type
	args  []Type
	owner Type
}

// NewParameterized builds a parameterized descriptor over raw.
func NewParameterized(raw Type, args ...Type) *Parameterized {
	return NewOwnedParameterized(nil, raw, args...)
}

// NewOwnedParameterized builds a parameterized descriptor with an explicit
// owner type.
func NewOwnedParameterized(owner Type, raw Type, args ...Type) *Parameterized {
	return &Parameterized{raw: raw, args: args, owner: owner}
}

// Raw returns the raw (unapplied) type.
func (p *Parameterized) Raw() Type { return p.raw }

// Args returns the type arguments in declaration order. The returned slice
// is shared and must not be mutated.
func (p *Parameterized) Args() []Type { return p.args }

// Owner returns the enclosing type, or nil.
func (p *Parameterized) Owner() Type { return p.owner }

func (p *Parameterized) Kind() Kind { return KindParameterized }

func (p *Parameterized) String() string {
	var b strings.Builder
	b.WriteString(describe(p.raw))
	b.WriteByte('<')
	for i, a := range p.args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(describe(a))
	}
	b.WriteByte('>')
	return b.String()
}

func (p *Parameterized) sealed() {}

// -------- Variable --------

// Variable is a type variable: a placeholder declared by some generic
// declaration and bound to a concrete type only in a specific context.
//
// Identity is pointer identity. Variables that belong to a registered
// Declaration carry the declaring reflect.Type; free variables (for example
// stand-ins for method-level parameters) carry none.
type Variable struct {
	name   string
	bounds []Type
	decl   reflect.Type
}

// FreeVariable creates a variable that belongs to no declaration.
func FreeVariable(name string, bounds ...Type) *Variable {
	return &Variable{name: name, bounds: bounds}
}

// Name returns the variable's declared name.
func (v *Variable) Name() string { return v.name }

// Bounds returns the variable's declared bounds, possibly empty. The
// returned slice is shared and must not be mutated.
func (v *Variable) Bounds() []Type { return v.bounds }

// Declaring returns the reflect.Type of the declaring generic declaration,
// or nil for a free variable.
func (v *Variable) Declaring() reflect.Type { return v.decl }

func (v *Variable) Kind() Kind     { return KindVariable }
func (v *Variable) String() string { return v.name }
func (v *Variable) sealed()        {}

// -------- Wildcard --------

// Wildcard is an unknown type constrained by bounds: `?`, `? extends X` or
// `? super X`.
type Wildcard struct {
	upper []Type
	lower []Type
}

// Unbounded returns the wildcard `?`.
func Unbounded() *Wildcard { return &Wildcard{} }

// UpperWildcard returns `? extends bound`.
func UpperWildcard(bound Type) *Wildcard { return &Wildcard{upper: []Type{bound}} }

// LowerWildcard returns `? super bound`.
func LowerWildcard(bound Type) *Wildcard { return &Wildcard{lower: []Type{bound}} }

// Upper returns the upper bounds. The returned slice is shared and must not
// be mutated.
func (w *Wildcard) Upper() []Type { return w.upper }

// Lower returns the lower bounds. The returned slice is shared and must not
// be mutated.
func (w *Wildcard) Lower() []Type { return w.lower }

func (w *Wildcard) Kind() Kind { return KindWildcard }

func (w *Wildcard) String() string {
	switch {
	case len(w.upper) == 1:
		return "? extends " + describe(w.upper[0])
	case len(w.lower) == 1:
		return "? super " + describe(w.lower[0])
	}
	return "?"
}

func (w *Wildcard) sealed() {}

// -------- Array --------

// Array is a generic array type: an array whose component is itself a
// descriptor, e.g. `T[]`.
type Array struct {
	elem Type
}

// ArrayTypeOf returns the descriptor of an array of elem.
func ArrayTypeOf(elem Type) *Array { return &Array{elem: elem} }

// Elem returns the component descriptor.
func (a *Array) Elem() Type { return a.elem }

func (a *Array) Kind() Kind     { return KindArray }
func (a *Array) String() string { return "[]" + describe(a.elem) }
func (a *Array) sealed()        {}

// -------- helpers --------

// Equal reports structural equality of two descriptors. Variables compare by
// identity, classes by runtime type, composites element-wise.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *Class:
		y, ok := b.(*Class)
		return ok && x.rt == y.rt
	case *Variable:
		return a == b
	case *Parameterized:
		y, ok := b.(*Parameterized)
		if !ok || !Equal(x.raw, y.raw) || !Equal(x.owner, y.owner) {
			return false
		}
		return equalSlices(x.args, y.args)
	case *Wildcard:
		y, ok := b.(*Wildcard)
		return ok && equalSlices(x.upper, y.upper) && equalSlices(x.lower, y.lower)
	case *Array:
		y, ok := b.(*Array)
		return ok && Equal(x.elem, y.elem)
	}
	return false
}

func equalSlices(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// describe renders a possibly-nil descriptor for messages.
func describe(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
