package typedesc

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	// ErrNilType is returned when declaring a nil reflect.Type.
	ErrNilType = errors.New("typedesc: nil reflect.Type")
	// ErrConflictingDeclaration indicates an attempt to re-declare a type
	// with a different generic shape.
	ErrConflictingDeclaration = errors.New("typedesc: conflicting declaration")
	// ErrDuplicateParam indicates two type parameters with the same name.
	ErrDuplicateParam = errors.New("typedesc: duplicate type parameter")
	// ErrMultipleSuper indicates more than one Extends call on a builder.
	ErrMultipleSuper = errors.New("typedesc: more than one generic superclass")
)

// Declaration is the registered generic shape of a concrete Go type: its
// declared type parameters, its generic ancestry (parameterized superclass
// first, then parameterized interfaces, in declaration order) and optionally
// the declared descriptor of individual fields.
//
// Declarations are immutable once registered.
type Declaration struct {
	rt       reflect.Type
	params   []*Variable
	ancestry []*Parameterized
	fields   map[string]Type
}

// Runtime returns the declared reflect.Type.
func (d *Declaration) Runtime() reflect.Type { return d.rt }

// Params returns the declared type variables in declaration order. The
// returned slice is shared and must not be mutated.
func (d *Declaration) Params() []*Variable { return d.params }

// Param returns the declared type variable with the given name.
func (d *Declaration) Param(name string) (*Variable, bool) {
	for _, p := range d.params {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

// Generics returns the generic ancestry: the parameterized superclass when
// present, then the parameterized interfaces, in declaration order. The
// returned slice is shared and must not be mutated.
func (d *Declaration) Generics() []*Parameterized { return d.ancestry }

// FieldType returns the declared descriptor of a field, if one was declared.
func (d *Declaration) FieldType(name string) (Type, bool) {
	t, ok := d.fields[name]
	return t, ok
}

// declarations holds the process-wide declaration graph. Entries are
// append-only: types are not redefined at runtime, so a stored declaration
// never changes.
var (
	declarations sync.Map // reflect.Type -> *Declaration
	declareMu    sync.Mutex
)

// DeclarationOf returns the registered declaration for a type.
func DeclarationOf(t reflect.Type) (*Declaration, bool) {
	if t == nil {
		return nil, false
	}
	if d, ok := declarations.Load(t); ok {
		return d.(*Declaration), true
	}
	return nil, false
}

// DeclarationBuilder accumulates a declaration before registration. Errors
// are collected and reported by Register, so calls can be chained.
type DeclarationBuilder struct {
	rt        reflect.Type
	params    []*Variable
	super     *Parameterized
	ifaces    []*Parameterized
	fields    map[string]Type
	fieldKeys []string
	err       error
}

// Declare starts a declaration for t.
func Declare(t reflect.Type) *DeclarationBuilder {
	b := &DeclarationBuilder{rt: t}
	if t == nil {
		b.err = ErrNilType
	}
	return b
}

// DeclareFor starts a declaration for the Go type T.
func DeclareFor[T any]() *DeclarationBuilder {
	return Declare(reflect.TypeOf((*T)(nil)).Elem())
}

// TypeParams declares unbounded type parameters, in order.
func (b *DeclarationBuilder) TypeParams(names ...string) *DeclarationBuilder {
	for _, name := range names {
		b.TypeParam(name)
	}
	return b
}

// TypeParam declares one type parameter with the given bounds.
func (b *DeclarationBuilder) TypeParam(name string, bounds ...Type) *DeclarationBuilder {
	if b.err != nil {
		return b
	}
	for _, p := range b.params {
		if p.name == name {
			b.err = fmt.Errorf("%w: %s on %s", ErrDuplicateParam, name, b.rt)
			return b
		}
	}
	b.params = append(b.params, &Variable{name: name, bounds: bounds, decl: b.rt})
	return b
}

// Extends declares the generic superclass. At most one superclass is
// accepted; a non-generic superclass is simply not declared.
func (b *DeclarationBuilder) Extends(raw Type, args ...Type) *DeclarationBuilder {
	if b.err != nil {
		return b
	}
	if b.super != nil {
		b.err = fmt.Errorf("%w: %s", ErrMultipleSuper, b.rt)
		return b
	}
	b.super = NewParameterized(raw, args...)
	return b
}

// Implements declares a generic interface. Interfaces keep the order of the
// Implements calls.
func (b *DeclarationBuilder) Implements(raw Type, args ...Type) *DeclarationBuilder {
	if b.err != nil {
		return b
	}
	b.ifaces = append(b.ifaces, NewParameterized(raw, args...))
	return b
}

// Field declares the generic descriptor of a named field, e.g. a field whose
// declared type mentions one of the type parameters.
func (b *DeclarationBuilder) Field(name string, d Type) *DeclarationBuilder {
	if b.err != nil {
		return b
	}
	if b.fields == nil {
		b.fields = make(map[string]Type)
	}
	if _, dup := b.fields[name]; !dup {
		b.fieldKeys = append(b.fieldKeys, name)
	}
	b.fields[name] = d
	return b
}

// Param returns a previously declared type parameter, for use as an argument
// in Extends/Implements/Field calls on the same builder.
func (b *DeclarationBuilder) Param(name string) *Variable {
	for _, p := range b.params {
		if p.name == name {
			return p
		}
	}
	if b.err == nil {
		b.err = fmt.Errorf("typedesc: unknown type parameter %s on %s", name, b.rt)
	}
	return nil
}

// Register stores the declaration in the process-wide graph.
//
// Registering the same shape twice is idempotent and returns the original
// declaration; registering a different shape for an already-declared type
// fails with ErrConflictingDeclaration.
func (b *DeclarationBuilder) Register() (*Declaration, error) {
	if b.err != nil {
		return nil, b.err
	}

	d := &Declaration{
		rt:     b.rt,
		params: b.params,
		fields: b.fields,
	}
	if b.super != nil {
		d.ancestry = append(d.ancestry, b.super)
	}
	d.ancestry = append(d.ancestry, b.ifaces...)

	// Fast path: idempotent re-registration without locking.
	if old, ok := declarations.Load(b.rt); ok {
		return sameOrConflict(old.(*Declaration), d)
	}

	declareMu.Lock()
	defer declareMu.Unlock()

	// Re-check under lock in case another goroutine stored meanwhile.
	if old, ok := declarations.Load(b.rt); ok {
		return sameOrConflict(old.(*Declaration), d)
	}
	declarations.Store(b.rt, d)
	return d, nil
}

// MustRegister is Register for startup wiring; it panics on error.
func (b *DeclarationBuilder) MustRegister() *Declaration {
	d, err := b.Register()
	if err != nil {
		panic(err)
	}
	return d
}

func sameOrConflict(old, next *Declaration) (*Declaration, error) {
	if equalDeclarations(old, next) {
		return old, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrConflictingDeclaration, old.rt)
}

// equalDeclarations compares declarations structurally. Parameters compare
// by name and bounds rather than identity: two builders for the same type
// necessarily allocate distinct *Variable values.
func equalDeclarations(a, b *Declaration) bool {
	if a.rt != b.rt || len(a.params) != len(b.params) || len(a.ancestry) != len(b.ancestry) {
		return false
	}
	for i := range a.params {
		if a.params[i].name != b.params[i].name {
			return false
		}
		if !equalSlices(a.params[i].bounds, b.params[i].bounds) {
			return false
		}
	}
	for i := range a.ancestry {
		if !equalModuloParams(a.ancestry[i], b.ancestry[i], a, b) {
			return false
		}
	}
	if len(a.fields) != len(b.fields) {
		return false
	}
	for name, t := range a.fields {
		u, ok := b.fields[name]
		if !ok || !equalTypeModuloParams(t, u, a, b) {
			return false
		}
	}
	return true
}

func equalModuloParams(x, y *Parameterized, a, b *Declaration) bool {
	if !equalTypeModuloParams(x.raw, y.raw, a, b) || len(x.args) != len(y.args) {
		return false
	}
	for i := range x.args {
		if !equalTypeModuloParams(x.args[i], y.args[i], a, b) {
			return false
		}
	}
	return true
}

// equalTypeModuloParams is Equal, except that a's i-th parameter matches b's
// i-th parameter.
func equalTypeModuloParams(x, y Type, a, b *Declaration) bool {
	xv, xok := x.(*Variable)
	yv, yok := y.(*Variable)
	if xok && yok && xv.decl == a.rt && yv.decl == b.rt {
		return xv.name == yv.name
	}
	return Equal(x, y)
}
