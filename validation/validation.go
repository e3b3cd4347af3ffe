// Mechanisms to deal with initialization and validation of values.
//
// These interfaces are primarily designed to be implemented by
// deserialization targets.
package validation

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// A type that supports initialization.
//
// The deserializer runs `Initialize()` **before** populating a struct, at
// every depth of the tree. This is the way to provide default values for
// fields the source document may omit.
//
// Important: implement `Initializer` on **pointers**, rather than on
// structs. Otherwise all its operations are performed on a copy of the
// struct and the result is lost immediately.
type Initializer interface {
	// Setup the contents of the struct.
	Initialize() error
}

// A type that supports validation.
//
// The deserializer runs `Validate()` **after** populating a struct, at
// every depth of the tree, and fails if validation rejects the value.
//
// Important: implement `Validator` on **pointers**, rather than on structs.
// This lets `Validate()` perform any necessary changes to the data
// structure, e.g. populate private fields from public ones.
type Validator interface {
	// Confirm that the data is valid.
	//
	// Return an error if it is invalid.
	Validate() error
}

// Error is a validation failure, annotated with the path at which it
// happened.
type Error struct {
	path    string
	wrapped error
}

// WrapError annotates a validation failure with its path.
func WrapError(path string, err error) error {
	return Error{path: path, wrapped: err}
}

// Path returns where in the tree validation failed.
func (e Error) Path() string { return e.path }

// Error returns the user-facing message.
func (e Error) Error() string {
	return fmt.Sprintf("deserialized value %s did not pass validation\n\t * %v", e.path, e.wrapped)
}

// Unwrap the error.
func (e Error) Unwrap() error { return e.wrapped }

var _ error = Error{} //nolint:exhaustruct

// tags is the process-wide tag validator, built on first use.
var tags = sync.OnceValue(func() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
})

// Tags returns the process-wide `validate:"..."` tag validator.
//
// Pass it to a deserialization registry to have struct targets checked
// against their tags after population, in addition to any Validator
// implementation they carry.
func Tags() *validator.Validate {
	return tags()
}
