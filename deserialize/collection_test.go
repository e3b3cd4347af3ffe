//nolint:exhaustruct
package deserialize_test

import (
	"reflect"
	"testing"

	"github.com/emirpasic/gods/lists"
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/lists/singlylinkedlist"
	"github.com/emirpasic/gods/sets"
	"github.com/emirpasic/gods/sets/hashset"
	"github.com/emirpasic/gods/sets/linkedhashset"
	"github.com/emirpasic/gods/sets/treeset"
	"gotest.tools/v3/assert"

	"github.com/gentype-io/gentype/deserialize"
	"github.com/gentype-io/gentype/typedesc"
)

var (
	listClass = typedesc.ClassFor(reflect.TypeOf((*lists.List)(nil)).Elem())
	setClass  = typedesc.ClassFor(reflect.TypeOf((*sets.Set)(nil)).Elem())
)

// A generic hierarchy for field resolution: box<T> declares Value as T,
// intBox extends box<int>; itemsOf<E> declares Items as List<E>,
// stringItems extends itemsOf<string>.
type box struct {
	Value any
}

type intBox struct {
	Value any
}

type itemsOf struct {
	Items lists.List
}

type stringItems struct {
	Items lists.List
}

func init() {
	bb := typedesc.DeclareFor[box]().TypeParams("T")
	bb.Field("Value", bb.Param("T"))
	bb.MustRegister()

	typedesc.DeclareFor[intBox]().
		Extends(typedesc.ClassOf[box](), typedesc.ClassOf[int]()).
		MustRegister()

	ib := typedesc.DeclareFor[itemsOf]().TypeParams("E")
	ib.Field("Items", typedesc.NewParameterized(listClass, ib.Param("E")))
	ib.MustRegister()

	typedesc.DeclareFor[stringItems]().
		Extends(typedesc.ClassOf[itemsOf](), typedesc.ClassOf[string]()).
		MustRegister()
}

func TestSlice(t *testing.T) {
	registry := deserialize.New()

	out, err := registry.Deserialize(mustParse(t, `[1, 2, 3]`), typedesc.ClassOf[[]int]())
	assert.NilError(t, err)
	assert.DeepEqual(t, out, []int{1, 2, 3})

	out, err = registry.Deserialize(mustParse(t, `[]`), typedesc.ClassOf[[]string]())
	assert.NilError(t, err)
	assert.DeepEqual(t, out, []string{})

	out, err = registry.Deserialize(mustParse(t, `[[1, 2], [3]]`), typedesc.ClassOf[[][]int]())
	assert.NilError(t, err)
	assert.DeepEqual(t, out, [][]int{{1, 2}, {3}})
}

func TestSliceElementFailure(t *testing.T) {
	_, err := deserialize.New().Deserialize(mustParse(t, `[1, "x"]`), typedesc.ClassOf[[]int]())
	assert.ErrorContains(t, err, "element 1")
}

func TestUntypedSlice(t *testing.T) {
	out, err := deserialize.New().Deserialize(mustParse(t, `[1, "x", true]`), typedesc.ClassOf[[]any]())
	assert.NilError(t, err)
	assert.DeepEqual(t, out, []any{int64(1), "x", true})
}

func TestFixedArray(t *testing.T) {
	registry := deserialize.New()

	out, err := registry.Deserialize(mustParse(t, `[1, 2, 3]`), typedesc.ClassOf[[3]int]())
	assert.NilError(t, err)
	assert.Equal(t, out, [3]int{1, 2, 3})

	_, err = registry.Deserialize(mustParse(t, `[1, 2]`), typedesc.ClassOf[[3]int]())
	assert.ErrorIs(t, err, deserialize.ErrWrongShape)
}

// An abstract list request is served by the default substitute, with
// elements converted to the declared argument type.
func TestAbstractList(t *testing.T) {
	target := typedesc.NewParameterized(listClass, typedesc.ClassOf[int]())

	out, err := deserialize.New().Deserialize(mustParse(t, `[1, 2, 3]`), target)
	assert.NilError(t, err)

	list, ok := out.(*arraylist.List)
	assert.Assert(t, ok)
	assert.DeepEqual(t, list.Values(), []any{1, 2, 3})
}

func TestConcreteListClasses(t *testing.T) {
	registry := deserialize.New()

	out, err := registry.Deserialize(mustParse(t, `["a", "b"]`),
		typedesc.NewParameterized(typedesc.ClassOf[*singlylinkedlist.List](), typedesc.ClassOf[string]()))
	assert.NilError(t, err)
	assert.DeepEqual(t, out.(*singlylinkedlist.List).Values(), []any{"a", "b"})

	out, err = registry.Deserialize(mustParse(t, `[1]`), typedesc.ClassOf[*arraylist.List]())
	assert.NilError(t, err)
	// No declared argument: elements keep their parsed representation.
	assert.DeepEqual(t, out.(*arraylist.List).Values(), []any{int64(1)})
}

// An abstract set request gets an insertion-ordered substitute, so
// duplicates collapse and first-seen order survives.
func TestAbstractSet(t *testing.T) {
	target := typedesc.NewParameterized(setClass, typedesc.ClassOf[int]())

	out, err := deserialize.New().Deserialize(mustParse(t, `[3, 1, 3, 2]`), target)
	assert.NilError(t, err)

	set, ok := out.(*linkedhashset.Set)
	assert.Assert(t, ok)
	assert.DeepEqual(t, set.Values(), []any{3, 1, 2})
}

func TestHashSet(t *testing.T) {
	out, err := deserialize.New().Deserialize(mustParse(t, `[1, 1, 2]`),
		typedesc.NewParameterized(typedesc.ClassOf[*hashset.Set](), typedesc.ClassOf[int]()))
	assert.NilError(t, err)
	assert.Equal(t, out.(*hashset.Set).Size(), 2)
}

// treeset needs a comparator, so there is nothing to instantiate for it.
func TestUnsupportedCollection(t *testing.T) {
	_, err := deserialize.New().Deserialize(mustParse(t, `[1]`), typedesc.ClassOf[*treeset.Set]())
	assert.ErrorIs(t, err, deserialize.ErrUnsupportedCollection)
}

// A keyed node fills a collection with its values, in key insertion order,
// keys discarded.
func TestKeyedNodeIntoList(t *testing.T) {
	out, err := deserialize.New().Deserialize(
		mustParse(t, `{"zeta": 1, "alpha": 2, "mid": 3}`), typedesc.ClassOf[[]int]())
	assert.NilError(t, err)
	assert.DeepEqual(t, out, []int{1, 2, 3})
}

func TestMap(t *testing.T) {
	registry := deserialize.New()

	out, err := registry.Deserialize(mustParse(t, `{"a": 1, "b": 2}`), typedesc.ClassOf[map[string]int]())
	assert.NilError(t, err)
	assert.DeepEqual(t, out, map[string]int{"a": 1, "b": 2})

	out, err = registry.Deserialize(mustParse(t, `{"a": {"b": "c"}}`),
		typedesc.ClassOf[map[string]map[string]string]())
	assert.NilError(t, err)
	assert.DeepEqual(t, out, map[string]map[string]string{"a": {"b": "c"}})
}

// A declared second argument overrides the map's untyped value slot.
func TestMapDeclaredValueType(t *testing.T) {
	target := typedesc.NewParameterized(typedesc.ClassOf[map[string]any](),
		typedesc.ClassOf[string](), typedesc.ClassOf[int]())

	out, err := deserialize.New().Deserialize(mustParse(t, `{"a": 1}`), target)
	assert.NilError(t, err)
	assert.DeepEqual(t, out, map[string]any{"a": int(1)})
}

// -------- generic field resolution --------

// intBox never mentions int in its Go definition; the declaration graph
// binds box's T, and the field converts accordingly.
func TestGenericScalarField(t *testing.T) {
	out, err := deserialize.New().Deserialize(mustParse(t, `{"Value": 42}`), typedesc.ClassOf[intBox]())
	assert.NilError(t, err)
	assert.Equal(t, out.(intBox).Value, int(42))

	// The ancestor itself has no binding for T, so its field keeps the
	// parsed representation.
	out, err = deserialize.New().Deserialize(mustParse(t, `{"Value": 42}`), typedesc.ClassOf[box]())
	assert.NilError(t, err)
	assert.Equal(t, out.(box).Value, int64(42))
}

// Items is declared as List<E>; for stringItems that resolves to
// List<string> and yields a populated arraylist behind the interface.
func TestGenericCollectionField(t *testing.T) {
	out, err := deserialize.New().Deserialize(
		mustParse(t, `{"Items": ["a", "b"]}`), typedesc.ClassOf[stringItems]())
	assert.NilError(t, err)

	items := out.(stringItems).Items
	assert.Assert(t, items != nil)
	assert.DeepEqual(t, items.Values(), []any{"a", "b"})
}

// A parameterization site used directly as the target binds the element
// type without any registered subclass.
func TestParameterizationSiteAsTarget(t *testing.T) {
	target := typedesc.NewParameterized(typedesc.ClassOf[box](), typedesc.ClassOf[string]())

	out, err := deserialize.New().Deserialize(mustParse(t, `{"Value": "x"}`), target)
	assert.NilError(t, err)
	assert.Equal(t, out.(box).Value, "x")
}
