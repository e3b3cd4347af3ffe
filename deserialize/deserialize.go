// Deserializing a loosely-typed tree of parsed data (objects, sequences,
// scalars) into a strongly-typed value requires two decisions per node:
// which converter handles this (node, target type) pair, and what the
// target's *element* types are once generics enter the picture.
//
// This package implements the first decision as an ordered, extensible
// registry of matcher-based converters: every registered converter carries
// a predicate over (node, target descriptor), and dispatch selects the
// first converter whose predicate accepts, in registration order. Built-in
// converters are registered ahead of user extensions, so built-ins take
// precedence by default; RegisterFront exists for callers who deliberately
// want to shadow them.
//
// The second decision is delegated to the resolve package: the collection
// converter, for instance, asks for the raw class and the first type
// argument of its target, resolves type variables against the target as
// context, and recursively feeds each element back through the top-level
// dispatch.
//
// # Recommended use
//
//	registry := deserialize.New()
//	tree, err := json.Driver{}.Parse(buf)
//	...
//	value, err := registry.Deserialize(tree, typedesc.ClassOf[[]int]())
//
// Targets are type descriptors, not bare reflect.Types, so a caller that
// registered generic declarations can request e.g. "ordered list of T as
// bound by this subclass" and get a correctly-typed result.
//
// # Failure taxonomy
//
// Partial type information (an unresolved type variable, a raw collection
// request) is never an error: converters fall back to untyped conversion.
// A (node, target) pair nothing matches fails with ErrUnsupportedType; a
// node whose shape contradicts the selected converter fails with
// ErrWrongShape. Both name the offending type and propagate to the
// top-level caller.
package deserialize

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"

	"github.com/gentype-io/gentype/deserialize/node"
	"github.com/gentype-io/gentype/typedesc"
)

var (
	// ErrUnsupportedType is returned when no registered converter matches
	// a (node, target) pair.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrUnsupportedCollection is returned for a collection target with no
	// concrete instantiable class and no default substitute.
	ErrUnsupportedCollection = errors.New("unsupported collection type")
	// ErrWrongShape is returned when a node's shape (keyed vs ordered vs
	// scalar) contradicts what the selected converter expects.
	ErrWrongShape = errors.New("mismatched value shape")
	// ErrDepthExceeded is returned when the data tree nests deeper than
	// the registry's limit.
	ErrDepthExceeded = errors.New("maximum nesting depth exceeded")
)

// DefaultMaxDepth bounds recursion into the data tree. Generic hierarchies
// are finite by construction; adversarial documents are not.
const DefaultMaxDepth = 128

// A Converter turns nodes into values of the targets its matcher accepts.
type Converter interface {
	// Match reports whether this converter handles the pair.
	Match(n node.Value, target typedesc.Type) bool
	// Convert performs the conversion. Recursion into element nodes must
	// go through ctx.Deserialize so that depth accounting and dispatch
	// stay uniform.
	Convert(ctx *Context, n node.Value, target typedesc.Type) (any, error)
}

// MatchFunc is the predicate half of a function-based converter.
type MatchFunc func(n node.Value, target typedesc.Type) bool

// ConvertFunc is the conversion half of a function-based converter.
type ConvertFunc func(ctx *Context, n node.Value, target typedesc.Type) (any, error)

// NewConverter pairs a matcher with a conversion function.
func NewConverter(match MatchFunc, convert ConvertFunc) Converter {
	return funcConverter{match: match, convert: convert}
}

type funcConverter struct {
	match   MatchFunc
	convert ConvertFunc
}

func (c funcConverter) Match(n node.Value, target typedesc.Type) bool {
	return c.match(n, target)
}

func (c funcConverter) Convert(ctx *Context, n node.Value, target typedesc.Type) (any, error) {
	return c.convert(ctx, n, target)
}

// Registry is an ordered collection of converters.
//
// Dispatch reads an immutable snapshot of the converter sequence, so
// in-flight Deserialize calls are never affected by concurrent
// registration; registration itself is serialized by a mutex.
type Registry struct {
	mu       sync.Mutex
	entries  atomic.Pointer[[]Converter]
	maxDepth int
	validate *validator.Validate
}

// An Option adjusts a registry under construction.
type Option func(*Registry)

// WithMaxDepth replaces the defensive recursion limit.
func WithMaxDepth(depth int) Option {
	return func(r *Registry) { r.maxDepth = depth }
}

// WithValidation makes struct targets pass tag validation after they are
// populated, e.g. deserialize.New(deserialize.WithValidation(validation.Tags())).
func WithValidation(v *validator.Validate) Option {
	return func(r *Registry) { r.validate = v }
}

// New builds a registry with the built-in converters pre-registered:
// scalars, collections (slices, arrays and gods containers), string-keyed
// maps, structs, pointers, in that priority order.
func New(options ...Option) *Registry {
	r := &Registry{maxDepth: DefaultMaxDepth}
	for _, option := range options {
		option(r)
	}
	if r.maxDepth <= 0 {
		slog.Warn("ignoring non-positive max depth", "depth", r.maxDepth)
		r.maxDepth = DefaultMaxDepth
	}
	builtins := []Converter{
		scalarConverter{},
		collectionConverter{},
		mapConverter{},
		structConverter{},
		pointerConverter{},
	}
	r.entries.Store(&builtins)
	return r
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	return New()
})

// Default returns the process-wide registry, built on first use with the
// built-in converters only.
func Default() *Registry {
	return defaultRegistry()
}

// Register appends a converter built from a matcher and a conversion
// function. Later registrations are tried after earlier ones, so built-ins
// keep precedence.
func (r *Registry) Register(match MatchFunc, convert ConvertFunc) {
	r.RegisterConverter(funcConverter{match: match, convert: convert})
}

// RegisterConverter appends a converter.
func (r *Registry) RegisterConverter(c Converter) {
	r.insert(c, false)
}

// RegisterFront prepends a converter, giving it priority over every
// previous registration, built-ins included.
func (r *Registry) RegisterFront(c Converter) {
	r.insert(c, true)
}

func (r *Registry) insert(c Converter, front bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := *r.entries.Load()
	next := make([]Converter, 0, len(old)+1)
	if front {
		next = append(next, c)
	}
	next = append(next, old...)
	if !front {
		next = append(next, c)
	}
	r.entries.Store(&next)
}

// Deserialize converts a node into a value of the target type.
//
// A nil target requests the default conversion: the node's untyped
// interface form (maps, slices and scalars).
func (r *Registry) Deserialize(n node.Value, target typedesc.Type) (any, error) {
	ctx := &Context{registry: r, remaining: r.maxDepth}
	return ctx.Deserialize(n, target)
}

// Context carries one deserialization run: the registry to dispatch
// through and the remaining depth budget.
type Context struct {
	registry  *Registry
	remaining int
}

// Deserialize re-enters top-level dispatch for an element node.
func (ctx *Context) Deserialize(n node.Value, target typedesc.Type) (any, error) {
	if ctx.remaining <= 0 {
		return nil, fmt.Errorf("data nested deeper than %d levels:\n\t * %w",
			ctx.registry.maxDepth, ErrDepthExceeded)
	}
	if target == nil {
		return defaultConvert(n), nil
	}
	if n == nil {
		n = node.Null()
	}

	sub := &Context{registry: ctx.registry, remaining: ctx.remaining - 1}
	for _, c := range *ctx.registry.entries.Load() {
		if c.Match(n, target) {
			return c.Convert(sub, n, target)
		}
	}
	return nil, fmt.Errorf("no converter accepts %s:\n\t * %w", describe(target), ErrUnsupportedType)
}

func (ctx *Context) validator() *validator.Validate {
	return ctx.registry.validate
}

// defaultConvert is the conversion applied when no target type information
// is available.
func defaultConvert(n node.Value) any {
	if n == nil {
		return nil
	}
	return n.Interface()
}

func describe(t typedesc.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// adapt fits a converted element into a reflect slot of the wanted type.
func adapt(item any, want reflect.Type) (reflect.Value, error) {
	if item == nil {
		switch want.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
			return reflect.Zero(want), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot store null into %s:\n\t * %w", want, ErrWrongShape)
	}
	reflected := reflect.ValueOf(item)
	if reflected.Type().AssignableTo(want) {
		return reflected, nil
	}
	if reflected.CanConvert(want) {
		return reflected.Convert(want), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot store %s into %s:\n\t * %w", reflected.Type(), want, ErrWrongShape)
}
