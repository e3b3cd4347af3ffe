package deserialize

import (
	"fmt"
	"reflect"

	"github.com/gentype-io/gentype/deserialize/node"
	"github.com/gentype-io/gentype/resolve"
	"github.com/gentype-io/gentype/typedesc"
	"github.com/gentype-io/gentype/validation"
)

// structConverter fills struct targets field by field from keyed nodes.
//
// Field descriptors come from the declaration graph when the struct class
// has one, resolved against the target as context: a field declared as T
// in a generic superclass deserializes as the type the concrete subclass
// binds T to. Undeclared fields use their Go type as-is.
//
// Missing keys are not an error; fields keep whatever Initialize put in
// them, or their zero value. After population the value passes through
// tag validation (when the registry was built WithValidation) and its own
// Validate method, in that order.
type structConverter struct{}

var _ Converter = structConverter{}

func (structConverter) Match(n node.Value, target typedesc.Type) bool {
	if !node.IsComposite(n) {
		return false
	}
	if _, ok := n.AsDict(); !ok {
		return false
	}
	rt := resolve.RawClass(target)
	return rt != nil && rt.Kind() == reflect.Struct
}

func (structConverter) Convert(ctx *Context, n node.Value, target typedesc.Type) (any, error) {
	rt := resolve.RawClass(target)
	dict, ok := n.AsDict()
	if !ok {
		return nil, fmt.Errorf("expected a keyed value for %s:\n\t * %w", rt, ErrWrongShape)
	}

	outPtr := reflect.New(rt)
	if initializer, ok := outPtr.Interface().(validation.Initializer); ok {
		if err := initializer.Initialize(); err != nil {
			return nil, fmt.Errorf("failed to initialize %s:\n\t * %w", rt, err)
		}
	}

	out := outPtr.Elem()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			// Embedded structs are flattened: their fields read from
			// the same keyed node.
			item, err := ctx.Deserialize(n, typedesc.ClassFor(field.Type))
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize embedded %s.%s:\n\t * %w",
					rt, field.Name, err)
			}
			slot, err := adapt(item, field.Type)
			if err != nil {
				return nil, fmt.Errorf("embedded field %s.%s:\n\t * %w", rt, field.Name, err)
			}
			out.Field(i).Set(slot)
			continue
		}
		value, found := dict.Lookup(field.Name)
		if !found {
			continue
		}
		item, err := ctx.Deserialize(value, fieldDescriptor(target, rt, field))
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize field %s.%s:\n\t * %w", rt, field.Name, err)
		}
		slot, err := adapt(item, field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s:\n\t * %w", rt, field.Name, err)
		}
		out.Field(i).Set(slot)
	}

	if v := ctx.validator(); v != nil {
		if err := v.Struct(outPtr.Interface()); err != nil {
			return nil, validation.WrapError(rt.String(), err)
		}
	}
	if checked, ok := outPtr.Interface().(validation.Validator); ok {
		if err := checked.Validate(); err != nil {
			return nil, validation.WrapError(rt.String(), err)
		}
	}
	return out.Interface(), nil
}

// fieldDescriptor resolves a struct field's target descriptor, preferring
// the declaration graph so generic fields come out concrete.
func fieldDescriptor(context typedesc.Type, rt reflect.Type, field reflect.StructField) typedesc.Type {
	if declared := resolve.FieldType(rt, field.Name); declared != nil {
		if actual := resolve.ActualType(context, declared); actual != nil && resolve.RawClass(actual) != nil {
			return actual
		}
	}
	if isAnyInterface(field.Type) {
		return nil
	}
	return typedesc.ClassFor(field.Type)
}
