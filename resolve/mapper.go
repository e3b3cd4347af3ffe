package resolve

import (
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/gentype-io/gentype/typedesc"
)

// The actual-type mapping cache.
//
// For a concrete class, the cache holds the mapping from every type
// variable declared anywhere in the class's generic ancestry to the
// concrete descriptor it denotes when that class is the context. The map
// is a pure function of the declaration graph, so entries are computed
// once, published immutable and never invalidated.
//
// Reads are lock-free; first-time builds for the same class are collapsed
// by a singleflight group so different classes never block each other.
var (
	typeMaps   sync.Map // reflect.Type -> map[*typedesc.Variable]typedesc.Type
	buildGroup singleflight.Group
)

// TypeMap returns the variable-to-actual-type map for a concrete class,
// computing and caching it on first request. The returned map is shared and
// read-only.
func TypeMap(class reflect.Type) map[*typedesc.Variable]typedesc.Type {
	if class == nil {
		return nil
	}
	if m, ok := typeMaps.Load(class); ok {
		return m.(map[*typedesc.Variable]typedesc.Type)
	}

	// The singleflight key is a string; a collision between distinct classes
	// merely serializes their builds, the sync.Map is still keyed by the
	// reflect.Type itself.
	key := class.PkgPath() + "|" + class.String()
	m, _, _ := buildGroup.Do(key, func() (any, error) {
		if m, ok := typeMaps.Load(class); ok {
			return m, nil
		}
		built := buildTypeMap(class)
		typeMaps.Store(class, built)
		return built, nil
	})
	return m.(map[*typedesc.Variable]typedesc.Type)
}

// VariableActual resolves one type variable in a context.
//
// If the context is itself a parameterization site that binds the variable
// directly, that binding wins over anything inherited through the ancestry.
// Otherwise the context's raw class selects the cached map. Returns nil
// when the context provides no binding.
func VariableActual(context typedesc.Type, v *typedesc.Variable) typedesc.Type {
	if context == nil || v == nil {
		return nil
	}

	if p, ok := context.(*typedesc.Parameterized); ok {
		if decl, ok := typedesc.DeclarationOf(RawClass(p.Raw())); ok {
			params, args := decl.Params(), p.Args()
			for i, param := range params {
				if param == v && i < len(args) {
					return args[i]
				}
			}
		}
	}

	m := TypeMap(RawClass(context))
	if t, ok := m[v]; ok {
		return t
	}
	return nil
}

// buildTypeMap walks the full generic ancestry of class, pairing each
// ancestry entry's declared parameters with its arguments, then chases
// bindings whose value is itself an ancestor's variable until a concrete
// descriptor or a dead end. Dead ends and wildcards without a single
// resolvable bound are omitted, not stored as failure markers.
func buildTypeMap(class reflect.Type) map[*typedesc.Variable]typedesc.Type {
	direct := make(map[*typedesc.Variable]typedesc.Type)

	seen := make(map[reflect.Type]bool)
	var walk func(rt reflect.Type)
	walk = func(rt reflect.Type) {
		if rt == nil || seen[rt] {
			return
		}
		seen[rt] = true
		for _, g := range Generics(rt) {
			raw := RawClass(g.Raw())
			decl, ok := typedesc.DeclarationOf(raw)
			if !ok {
				// Ancestor never declared generically; its variables are
				// unknown and stay out of the map.
				continue
			}
			params, args := decl.Params(), g.Args()
			for i := 0; i < len(params) && i < len(args); i++ {
				if _, dup := direct[params[i]]; !dup {
					direct[params[i]] = args[i]
				}
			}
			walk(raw)
		}
	}
	walk(class)

	resolved := make(map[*typedesc.Variable]typedesc.Type, len(direct))
	for v, t := range direct {
		if final := chase(direct, t); final != nil {
			resolved[v] = final
		}
	}
	return resolved
}

// chase follows variable-valued and single-bound-wildcard bindings through
// the direct map. The hop budget caps pathological cycles; a dead end
// yields nil.
func chase(direct map[*typedesc.Variable]typedesc.Type, t typedesc.Type) typedesc.Type {
	for hops := 0; hops <= len(direct); hops++ {
		switch cur := t.(type) {
		case *typedesc.Variable:
			next, ok := direct[cur]
			if !ok {
				return nil
			}
			t = next
		case *typedesc.Wildcard:
			upper := cur.Upper()
			if len(upper) != 1 {
				return nil
			}
			t = upper[0]
		default:
			return t
		}
	}
	return nil
}
