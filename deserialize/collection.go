package deserialize

import (
	"fmt"
	"reflect"

	"github.com/emirpasic/gods/lists"
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/lists/doublylinkedlist"
	"github.com/emirpasic/gods/lists/singlylinkedlist"
	"github.com/emirpasic/gods/sets"
	"github.com/emirpasic/gods/sets/hashset"
	"github.com/emirpasic/gods/sets/linkedhashset"

	"github.com/gentype-io/gentype/deserialize/node"
	"github.com/gentype-io/gentype/resolve"
	"github.com/gentype-io/gentype/typedesc"
)

var (
	listInterface = reflect.TypeOf((*lists.List)(nil)).Elem()
	setInterface  = reflect.TypeOf((*sets.Set)(nil)).Elem()
)

// adder is the insertion surface every gods container shares.
type adder interface {
	Add(values ...interface{})
}

// collectionConverter fills slices, arrays and gods containers from any
// composite node. Keyed nodes contribute their values in key insertion
// order, with the keys themselves discarded.
//
// The element type is the target's first type argument when one is
// declared, resolved against the target itself so that type variables
// bound by a subclass come out concrete. Elements with no usable type
// information fall back to the default conversion.
type collectionConverter struct{}

var _ Converter = collectionConverter{}

func (collectionConverter) Match(n node.Value, target typedesc.Type) bool {
	return node.IsComposite(n) && isCollectionClass(resolve.RawClass(target))
}

func (collectionConverter) Convert(ctx *Context, n node.Value, target typedesc.Type) (any, error) {
	rt := resolve.RawClass(target)
	elementType := collectionElement(target, rt)
	values := compositeValues(n)

	switch rt.Kind() {
	case reflect.Slice:
		out := reflect.MakeSlice(rt, 0, len(values))
		for i, v := range values {
			item, err := convertElement(ctx, v, elementType, rt.Elem())
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize element %d:\n\t * %w", i, err)
			}
			out = reflect.Append(out, item)
		}
		return out.Interface(), nil
	case reflect.Array:
		if len(values) != rt.Len() {
			return nil, fmt.Errorf("expected %d elements for %s, got %d:\n\t * %w",
				rt.Len(), rt, len(values), ErrWrongShape)
		}
		out := reflect.New(rt).Elem()
		for i, v := range values {
			item, err := convertElement(ctx, v, elementType, rt.Elem())
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize element %d:\n\t * %w", i, err)
			}
			out.Index(i).Set(item)
		}
		return out.Interface(), nil
	}

	container, err := newContainer(rt)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		item, err := ctx.Deserialize(v, elementType)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize element %d:\n\t * %w", i, err)
		}
		container.Add(item)
	}
	return container, nil
}

func isCollectionClass(rt reflect.Type) bool {
	if rt == nil {
		return false
	}
	switch rt.Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return rt.Implements(listInterface) || rt.Implements(setInterface) ||
		rt == listInterface || rt == setInterface
}

// collectionElement picks the element descriptor for a collection target:
// the declared type argument if there is one, the slice element class for
// plain Go slices, nil (default conversion) otherwise.
func collectionElement(target typedesc.Type, rt reflect.Type) typedesc.Type {
	elementType := resolve.TypeArgument(target, 0)
	if elementType != nil && resolve.HasVariable(elementType) {
		if actual := resolve.ActualType(target, elementType); actual != nil {
			elementType = actual
		}
	}
	if elementType != nil {
		if resolve.RawClass(elementType) == nil {
			// Unresolvable variable or unbounded wildcard.
			return nil
		}
		return elementType
	}
	switch rt.Kind() {
	case reflect.Slice, reflect.Array:
		if elem := rt.Elem(); !isAnyInterface(elem) {
			return typedesc.ClassFor(elem)
		}
	}
	return nil
}

func convertElement(ctx *Context, v node.Value, elementType typedesc.Type, slot reflect.Type) (reflect.Value, error) {
	item, err := ctx.Deserialize(v, elementType)
	if err != nil {
		return reflect.Value{}, err
	}
	return adapt(item, slot)
}

var (
	arrayListClass        = reflect.TypeOf((*arraylist.List)(nil))
	singlyLinkedListClass = reflect.TypeOf((*singlylinkedlist.List)(nil))
	doublyLinkedListClass = reflect.TypeOf((*doublylinkedlist.List)(nil))
	hashSetClass          = reflect.TypeOf((*hashset.Set)(nil))
	linkedHashSetClass    = reflect.TypeOf((*linkedhashset.Set)(nil))
)

// newContainer instantiates the concrete container for a gods target.
// Abstract list and set requests get insertion-ordered substitutes.
func newContainer(rt reflect.Type) (adder, error) {
	switch rt {
	case listInterface, arrayListClass:
		return arraylist.New(), nil
	case singlyLinkedListClass:
		return singlylinkedlist.New(), nil
	case doublyLinkedListClass:
		return doublylinkedlist.New(), nil
	case setInterface, linkedHashSetClass:
		return linkedhashset.New(), nil
	case hashSetClass:
		return hashset.New(), nil
	}
	return nil, fmt.Errorf("no concrete substitute for %s:\n\t * %w", rt, ErrUnsupportedCollection)
}

// compositeValues flattens a composite node into its ordered values.
func compositeValues(n node.Value) []node.Value {
	if slice, ok := n.AsSlice(); ok {
		return slice
	}
	if dict, ok := n.AsDict(); ok {
		values := make([]node.Value, 0, dict.Len())
		for _, key := range dict.Keys() {
			if v, ok := dict.Lookup(key); ok {
				values = append(values, v)
			}
		}
		return values
	}
	return nil
}

func isAnyInterface(rt reflect.Type) bool {
	return rt.Kind() == reflect.Interface && rt.NumMethod() == 0
}
