package json_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/gentype-io/gentype/deserialize/json"
	"github.com/gentype-io/gentype/deserialize/node"
)

func TestParseScalars(t *testing.T) {
	cases := []struct {
		source   string
		expected any
	}{
		{`"text"`, "text"},
		{`true`, true},
		{`null`, nil},
		{`42`, int64(42)},
		{`-7`, int64(-7)},
		{`3.25`, float64(3.25)},
		{`1e3`, float64(1000)},
	}
	for _, c := range cases {
		parsed, err := json.Parse([]byte(c.source))
		assert.NilError(t, err, c.source)
		assert.Equal(t, parsed.Interface(), c.expected, c.source)
	}
}

// Object members must keep the order the document listed them.
func TestParseObjectOrder(t *testing.T) {
	parsed, err := json.Parse([]byte(`{"zeta": 1, "alpha": 2, "mid": 3}`))
	assert.NilError(t, err)

	dict, ok := parsed.AsDict()
	assert.Assert(t, ok)
	assert.DeepEqual(t, dict.Keys(), []string{"zeta", "alpha", "mid"})

	v, ok := dict.Lookup("alpha")
	assert.Assert(t, ok)
	assert.Equal(t, v.Interface(), int64(2))
}

func TestParseNested(t *testing.T) {
	parsed, err := json.Parse([]byte(`{"items": [[1, 2], [3]], "name": "n"}`))
	assert.NilError(t, err)

	assert.DeepEqual(t, parsed.Interface(), map[string]any{
		"items": []any{[]any{int64(1), int64(2)}, []any{int64(3)}},
		"name":  "n",
	})
}

func TestParseErrors(t *testing.T) {
	_, err := json.Parse([]byte(`{"unterminated": `))
	assert.Assert(t, err != nil)

	_, err = json.Parse([]byte(`[1, 2] trailing`))
	assert.ErrorContains(t, err, "trailing")

	_, err = json.Parse([]byte(`{1: "numeric key"}`))
	assert.Assert(t, err != nil)
}

func TestDriver(t *testing.T) {
	var driver node.Driver = json.Driver{}
	parsed, err := driver.Parse([]byte(`[null]`))
	assert.NilError(t, err)

	values, ok := parsed.AsSlice()
	assert.Assert(t, ok)
	assert.Equal(t, len(values), 1)
	assert.Equal(t, values[0].Interface(), nil)
}
