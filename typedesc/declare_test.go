package typedesc_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/gentype-io/gentype/typedesc"
)

type pair struct {
	First  any
	Second any
}

type stringPair struct {
	First  string
	Second string
}

func declarePair() *typedesc.Declaration {
	b := typedesc.DeclareFor[pair]().TypeParams("A", "B")
	b.Field("First", b.Param("A"))
	b.Field("Second", b.Param("B"))
	return b.MustRegister()
}

func TestDeclarationRoundTrip(t *testing.T) {
	decl := declarePair()

	found, ok := typedesc.DeclarationOf(decl.Runtime())
	assert.Assert(t, ok)
	assert.Equal(t, found, decl)

	assert.Equal(t, len(decl.Params()), 2)
	a, ok := decl.Param("A")
	assert.Assert(t, ok)
	assert.Equal(t, a.Name(), "A")
	assert.Equal(t, a.Declaring(), decl.Runtime())
	_, ok = decl.Param("Z")
	assert.Assert(t, !ok)

	first, ok := decl.FieldType("First")
	assert.Assert(t, ok)
	assert.Equal(t, first, typedesc.Type(a))
	_, ok = decl.FieldType("Missing")
	assert.Assert(t, !ok)
}

// Registering the same shape twice, even from distinct builders, must be
// idempotent and hand back the first declaration.
func TestRegisterIdempotent(t *testing.T) {
	first := declarePair()
	second := declarePair()
	assert.Equal(t, first, second)
}

func TestRegisterConflict(t *testing.T) {
	declarePair()
	_, err := typedesc.DeclareFor[pair]().TypeParams("A").Register()
	assert.ErrorIs(t, err, typedesc.ErrConflictingDeclaration)
}

func TestAncestryOrder(t *testing.T) {
	b := typedesc.DeclareFor[stringPair]()
	b.Extends(typedesc.ClassOf[pair](), typedesc.ClassOf[string](), typedesc.ClassOf[string]())
	b.Implements(typedesc.ClassOf[any](), typedesc.ClassOf[string]())
	decl := b.MustRegister()

	ancestry := decl.Generics()
	assert.Equal(t, len(ancestry), 2)
	assert.Assert(t, typedesc.Equal(ancestry[0].Raw(), typedesc.ClassOf[pair]()),
		"the superclass must come before interfaces")
	assert.Assert(t, typedesc.Equal(ancestry[0].Args()[0], typedesc.ClassOf[string]()))
	assert.Assert(t, typedesc.Equal(ancestry[1].Raw(), typedesc.ClassOf[any]()))
}

func TestBuilderErrors(t *testing.T) {
	type oneOff struct{}

	_, err := typedesc.Declare(nil).Register()
	assert.ErrorIs(t, err, typedesc.ErrNilType)

	_, err = typedesc.DeclareFor[oneOff]().TypeParams("T", "T").Register()
	assert.ErrorIs(t, err, typedesc.ErrDuplicateParam)

	_, err = typedesc.DeclareFor[oneOff]().
		Extends(typedesc.ClassOf[pair]()).
		Extends(typedesc.ClassOf[pair]()).
		Register()
	assert.ErrorIs(t, err, typedesc.ErrMultipleSuper)

	b := typedesc.DeclareFor[oneOff]()
	b.Field("X", b.Param("T"))
	_, err = b.Register()
	assert.ErrorContains(t, err, "unknown type parameter")
}
