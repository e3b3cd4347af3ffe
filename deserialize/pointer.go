package deserialize

import (
	"fmt"
	"reflect"

	"github.com/gentype-io/gentype/deserialize/node"
	"github.com/gentype-io/gentype/resolve"
	"github.com/gentype-io/gentype/typedesc"
)

// pointerConverter unwraps pointer targets: null becomes a typed nil,
// anything else deserializes as the pointee and gets its address taken.
// Type arguments carry through, so a parameterized pointer target
// resolves its pointee generics unchanged.
type pointerConverter struct{}

var _ Converter = pointerConverter{}

func (pointerConverter) Match(_ node.Value, target typedesc.Type) bool {
	rt := resolve.RawClass(target)
	if rt == nil || rt.Kind() != reflect.Pointer {
		return false
	}
	// gods containers are pointers too; those belong to the collection
	// converter.
	return !rt.Implements(listInterface) && !rt.Implements(setInterface)
}

func (pointerConverter) Convert(ctx *Context, n node.Value, target typedesc.Type) (any, error) {
	rt := resolve.RawClass(target)
	if scalar, ok := n.(node.Scalar); ok && scalar.IsNull() {
		return reflect.Zero(rt).Interface(), nil
	}

	elem := rt.Elem()
	var pointee typedesc.Type = typedesc.ClassFor(elem)
	if p, ok := target.(*typedesc.Parameterized); ok {
		pointee = typedesc.NewParameterized(typedesc.ClassFor(elem), p.Args()...)
	}

	item, err := ctx.Deserialize(n, pointee)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize %s:\n\t * %w", rt, err)
	}
	slot, err := adapt(item, elem)
	if err != nil {
		return nil, err
	}
	out := reflect.New(elem)
	out.Elem().Set(slot)
	return out.Interface(), nil
}
