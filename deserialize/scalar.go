package deserialize

import (
	"encoding"
	"fmt"
	"math"
	"reflect"

	"github.com/gentype-io/gentype/deserialize/node"
	"github.com/gentype-io/gentype/resolve"
	"github.com/gentype-io/gentype/typedesc"
)

var textUnmarshalerInterface = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// scalarConverter handles leaf nodes aimed at primitive targets (bool,
// numbers, strings) and at types that parse themselves from text, such as
// uuid.UUID or time.Time.
type scalarConverter struct{}

var _ Converter = scalarConverter{}

func (scalarConverter) Match(n node.Value, target typedesc.Type) bool {
	if node.IsComposite(n) {
		return false
	}
	rt := resolve.RawClass(target)
	if rt == nil {
		return false
	}
	if node.LookupParser(rt) != nil {
		return true
	}
	return implementsTextUnmarshaler(rt)
}

func (scalarConverter) Convert(_ *Context, n node.Value, target typedesc.Type) (any, error) {
	rt := resolve.RawClass(target)
	input := n.Interface()

	if input == nil {
		switch rt.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
			return reflect.Zero(rt).Interface(), nil
		}
		return nil, fmt.Errorf("expected %s, got null:\n\t * %w", rt, ErrWrongShape)
	}

	if implementsTextUnmarshaler(rt) && node.LookupParser(rt) == nil {
		text, ok := input.(string)
		if !ok {
			return nil, fmt.Errorf("expected text for %s, got %v:\n\t * %w", rt, input, ErrWrongShape)
		}
		out := reflect.New(rt)
		unmarshaler := out.Interface().(encoding.TextUnmarshaler)
		if err := unmarshaler.UnmarshalText([]byte(text)); err != nil {
			return nil, fmt.Errorf("invalid %s value %q:\n\t * %w", rt, text, err)
		}
		return out.Elem().Interface(), nil
	}

	reflected := reflect.ValueOf(input)
	if reflected.CanConvert(rt) && lossless(reflected, rt) {
		return reflected.Convert(rt).Interface(), nil
	}

	// Numbers and booleans sometimes arrive quoted; parse them.
	if text, ok := input.(string); ok {
		if parser := node.LookupParser(rt); parser != nil {
			parsed, err := parser(text)
			if err != nil {
				return nil, fmt.Errorf("invalid value %q for %s:\n\t * %w", text, rt, err)
			}
			return reflect.ValueOf(parsed).Convert(rt).Interface(), nil
		}
	}
	return nil, fmt.Errorf("expected %s, got %v (%T):\n\t * %w", rt, input, input, ErrWrongShape)
}

func implementsTextUnmarshaler(rt reflect.Type) bool {
	return reflect.PointerTo(rt).Implements(textUnmarshalerInterface)
}

// int64 and uint64 ranges as exact float64 bounds. The upper bounds are
// exclusive: 1<<63 and 1<<64 are representable, MaxInt64/MaxUint64 are not.
const (
	minInt64Float  = -float64(1 << 63)
	maxInt64Float  = float64(1 << 63)
	maxUint64Float = float64(1 << 64)
)

// lossless rejects reflect conversions that would silently corrupt the
// value: truncating floats, integers narrowed out of the target's range,
// sign-flipping signed/unsigned crossings, or Go's integer-to-string rune
// conversion.
func lossless(v reflect.Value, rt reflect.Type) bool {
	switch rt.Kind() {
	case reflect.String:
		return v.Kind() == reflect.String
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		probe := reflect.New(rt).Elem()
		switch {
		case isFloat(v.Kind()):
			f := v.Float()
			if f != math.Trunc(f) {
				return false
			}
			return f >= minInt64Float && f < maxInt64Float && !probe.OverflowInt(int64(f))
		case isInt(v.Kind()):
			return !probe.OverflowInt(v.Int())
		case isUint(v.Kind()):
			return v.Uint() <= math.MaxInt64 && !probe.OverflowInt(int64(v.Uint()))
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		probe := reflect.New(rt).Elem()
		switch {
		case isFloat(v.Kind()):
			f := v.Float()
			if f != math.Trunc(f) {
				return false
			}
			return f >= 0 && f < maxUint64Float && !probe.OverflowUint(uint64(f))
		case isInt(v.Kind()):
			return v.Int() >= 0 && !probe.OverflowUint(uint64(v.Int()))
		case isUint(v.Kind()):
			return !probe.OverflowUint(v.Uint())
		}
	}
	return true
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
