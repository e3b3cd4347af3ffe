// Package node models the loosely-typed tree a deserializer consumes:
// keyed objects, ordered sequences and scalars.
//
// We use these interfaces instead of raw `any` conversions to decrease the
// risk of confusion when manipulating parsed data, and so that drivers for
// different formats (JSON, YAML, ...) can feed the same converters.
//
// Keyed nodes remember insertion order: converters that iterate a Dict's
// values are guaranteed to see them in the order the source document listed
// them.
package node

import (
	"reflect"
	"strconv"
)

// Value is one node of a parsed-data tree.
type Value interface {
	// AsDict views the node as a keyed composite, if it is one.
	AsDict() (Dict, bool)
	// AsSlice views the node as an ordered sequence, if it is one.
	AsSlice() ([]Value, bool)
	// Interface returns the underlying scalar value, or the raw composite.
	Interface() any
}

// Dict is a keyed composite node.
type Dict interface {
	Lookup(key string) (Value, bool)
	// Keys returns the keys in insertion order.
	Keys() []string
	Len() int
	AsValue() Value
}

// Driver parses raw bytes of one format into a node tree.
type Driver interface {
	Parse(buf []byte) (Value, error)
}

// IsComposite reports whether a node is keyed or sequence-shaped.
func IsComposite(v Value) bool {
	if v == nil {
		return false
	}
	if _, ok := v.AsDict(); ok {
		return true
	}
	_, ok := v.AsSlice()
	return ok
}

// -------- Scalar --------

// Scalar wraps a leaf value: bool, number, string, or nil.
type Scalar struct {
	wrapped any
}

// Of wraps a leaf value as a node.
func Of(v any) Scalar { return Scalar{wrapped: v} }

// Null is the scalar null node.
func Null() Scalar { return Scalar{} }

func (s Scalar) AsDict() (Dict, bool)     { return nil, false }
func (s Scalar) AsSlice() ([]Value, bool) { return nil, false }
func (s Scalar) Interface() any           { return s.wrapped }

// IsNull reports whether the scalar wraps nothing.
func (s Scalar) IsNull() bool { return s.wrapped == nil }

var _ Value = Scalar{}

// -------- List --------

// List is an ordered sequence node.
type List []Value

func (l List) AsDict() (Dict, bool)     { return nil, false }
func (l List) AsSlice() ([]Value, bool) { return l, true }

func (l List) Interface() any {
	out := make([]any, len(l))
	for i, v := range l {
		out[i] = v.Interface()
	}
	return out
}

var _ Value = List(nil)

// -------- Object --------

// Object is a keyed composite node that preserves insertion order.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject creates an empty keyed node.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Set stores a value under a key. A repeated key overwrites the value but
// keeps the key's original position. Returns the object for chaining.
func (o *Object) Set(key string, v Value) *Object {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
	return o
}

func (o *Object) Lookup(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *Object) Len() int { return len(o.keys) }

// Values returns the values in insertion order.
func (o *Object) Values() []Value {
	out := make([]Value, 0, len(o.keys))
	for _, k := range o.keys {
		out = append(out, o.values[k])
	}
	return out
}

func (o *Object) AsValue() Value { return objectValue{o} }

func (o *Object) Interface() any {
	out := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		out[k] = o.values[k].Interface()
	}
	return out
}

var _ Dict = (*Object)(nil)

// objectValue adapts an Object to the Value interface.
type objectValue struct {
	o *Object
}

func (v objectValue) AsDict() (Dict, bool)     { return v.o, true }
func (v objectValue) AsSlice() ([]Value, bool) { return nil, false }
func (v objectValue) Interface() any           { return v.o.Interface() }

var _ Value = objectValue{}

// -------- scalar parsing --------

// Parser parses the string representation of a primitive value.
type Parser func(source string) (any, error)

// LookupParser returns a parser for a primitive target type, or nil when
// the type has no string representation we know how to parse. Used when a
// source format (or a lenient document) carries a number or bool as text.
func LookupParser(fieldType reflect.Type) Parser {
	switch fieldType.Kind() {
	case reflect.Bool:
		return func(source string) (any, error) {
			return strconv.ParseBool(source) //nolint:wrapcheck
		}
	case reflect.Float32:
		return func(source string) (any, error) {
			return strconv.ParseFloat(source, 32) //nolint:wrapcheck
		}
	case reflect.Float64:
		return func(source string) (any, error) {
			return strconv.ParseFloat(source, 64) //nolint:wrapcheck
		}
	case reflect.Int:
		return func(source string) (any, error) {
			return strconv.Atoi(source) //nolint:wrapcheck
		}
	case reflect.Int8:
		return func(source string) (any, error) {
			return strconv.ParseInt(source, 10, 8) //nolint:wrapcheck
		}
	case reflect.Int16:
		return func(source string) (any, error) {
			return strconv.ParseInt(source, 10, 16) //nolint:wrapcheck
		}
	case reflect.Int32:
		return func(source string) (any, error) {
			return strconv.ParseInt(source, 10, 32) //nolint:wrapcheck
		}
	case reflect.Int64:
		return func(source string) (any, error) {
			return strconv.ParseInt(source, 10, 64) //nolint:wrapcheck
		}
	case reflect.Uint:
		return func(source string) (any, error) {
			// `uint` size is not specified, we parse with 64 bits.
			return strconv.ParseUint(source, 10, 64) //nolint:wrapcheck
		}
	case reflect.Uint8:
		return func(source string) (any, error) {
			return strconv.ParseUint(source, 10, 8) //nolint:wrapcheck
		}
	case reflect.Uint16:
		return func(source string) (any, error) {
			return strconv.ParseUint(source, 10, 16) //nolint:wrapcheck
		}
	case reflect.Uint32:
		return func(source string) (any, error) {
			return strconv.ParseUint(source, 10, 32) //nolint:wrapcheck
		}
	case reflect.Uint64:
		return func(source string) (any, error) {
			return strconv.ParseUint(source, 10, 64) //nolint:wrapcheck
		}
	case reflect.String:
		return func(source string) (any, error) {
			return source, nil
		}
	default:
		return nil
	}
}
