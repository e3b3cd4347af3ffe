package deserialize

import (
	"fmt"
	"reflect"

	"github.com/gentype-io/gentype/deserialize/node"
	"github.com/gentype-io/gentype/resolve"
	"github.com/gentype-io/gentype/typedesc"
)

// mapConverter fills string-keyed Go maps from keyed nodes. The value type
// comes from the target's second type argument when declared, the map's
// element class otherwise.
type mapConverter struct{}

var _ Converter = mapConverter{}

func (mapConverter) Match(n node.Value, target typedesc.Type) bool {
	if !node.IsComposite(n) {
		return false
	}
	if _, ok := n.AsDict(); !ok {
		return false
	}
	rt := resolve.RawClass(target)
	return rt != nil && rt.Kind() == reflect.Map && rt.Key().Kind() == reflect.String
}

func (mapConverter) Convert(ctx *Context, n node.Value, target typedesc.Type) (any, error) {
	rt := resolve.RawClass(target)
	dict, ok := n.AsDict()
	if !ok {
		return nil, fmt.Errorf("expected a keyed value for %s:\n\t * %w", rt, ErrWrongShape)
	}

	valueType := resolve.TypeArgument(target, 1)
	if valueType != nil && resolve.HasVariable(valueType) {
		if actual := resolve.ActualType(target, valueType); actual != nil {
			valueType = actual
		}
	}
	if valueType != nil && resolve.RawClass(valueType) == nil {
		valueType = nil
	}
	if valueType == nil && !isAnyInterface(rt.Elem()) {
		valueType = typedesc.ClassFor(rt.Elem())
	}

	out := reflect.MakeMapWithSize(rt, dict.Len())
	for _, key := range dict.Keys() {
		v, ok := dict.Lookup(key)
		if !ok {
			continue
		}
		item, err := convertElement(ctx, v, valueType, rt.Elem())
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize entry %q:\n\t * %w", key, err)
		}
		out.SetMapIndex(reflect.ValueOf(key).Convert(rt.Key()), item)
	}
	return out.Interface(), nil
}
