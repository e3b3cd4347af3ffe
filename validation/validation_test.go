package validation_test

import (
	"errors"
	"fmt"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/gentype-io/gentype/validation"
)

type withDefaults struct {
	Retries int
}

func (schema *withDefaults) Initialize() error {
	schema.Retries = 3
	return nil
}

var _ validation.Initializer = &withDefaults{}

type checked struct {
	Threshold float64
}

func (schema *checked) Validate() error {
	if schema.Threshold > 1 {
		return fmt.Errorf("threshold %f is out of range", schema.Threshold)
	}
	return nil
}

var _ validation.Validator = &checked{}

func TestInitialize(t *testing.T) {
	schema := withDefaults{}
	assert.NilError(t, schema.Initialize())
	assert.Equal(t, schema.Retries, 3)
}

func TestValidate(t *testing.T) {
	assert.NilError(t, (&checked{Threshold: 0.5}).Validate())
	assert.ErrorContains(t, (&checked{Threshold: 2}).Validate(), "out of range")
}

func TestWrapError(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := validation.WrapError("Config.Threshold", cause)

	var typed validation.Error
	assert.Assert(t, errors.As(err, &typed))
	assert.Equal(t, typed.Path(), "Config.Threshold")
	assert.ErrorIs(t, err, cause)
	assert.ErrorContains(t, err, "Config.Threshold")
	assert.ErrorContains(t, err, "boom")
}

func TestTags(t *testing.T) {
	// The tag validator is a process-wide singleton.
	assert.Equal(t, validation.Tags(), validation.Tags())

	type tagged struct {
		Name string `validate:"required"`
	}
	assert.Assert(t, validation.Tags().Struct(tagged{Name: "x"}) == nil)
	assert.Assert(t, validation.Tags().Struct(tagged{}) != nil)
}
