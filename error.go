package polymorph

import (
	"fmt"
	"reflect"

	"github.com/go-json-experiment/json/jsontext"
)

// ErrMissingContext is the error returned when a decode is requested for a
// type that has no registered discriminator declaration. It indicates that
// CanHandle and Decode were called inconsistently.
type ErrMissingContext struct {
	Type reflect.Type
}

func (e ErrMissingContext) Error() string {
	return fmt.Sprintf("no polymorphism context registered for type %v", e.Type)
}

// ErrMissingDiscriminator is the error returned when a JSON object does not
// contain the discriminator property declared for its abstract type
type ErrMissingDiscriminator struct {
	Type     reflect.Type
	Property string
}

func (e ErrMissingDiscriminator) Error() string {
	return fmt.Sprintf("failed to decode %v: discriminator property %q not found", e.Type, e.Property)
}

// ErrDiscriminatorType is the error returned when the discriminator property
// is present but does not hold a JSON string or an integral JSON number
type ErrDiscriminatorType struct {
	Type     reflect.Type
	Property string
	Kind     jsontext.Kind
	Detail   string
}

func (e ErrDiscriminatorType) Error() string {
	msg := fmt.Sprintf("failed to decode %v: discriminator property %q must be a string or an integer (got %s)", e.Type, e.Property, kindName(e.Kind))
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// ErrResolution is the error returned by a [Context] when its strategy cannot
// map a raw discriminator value to a concrete type
type ErrResolution struct {
	Type  reflect.Type
	Value RawValue
	Err   error
}

func (e ErrResolution) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no concrete type mapped for discriminator value %v of %v: %v", e.Value, e.Type, e.Err)
	}
	return fmt.Sprintf("no concrete type mapped for discriminator value %v of %v", e.Value, e.Type)
}

func (e ErrResolution) Unwrap() error { return e.Err }

// ErrUnresolvedType is the error returned by [Converter.Decode] when the
// discriminator value read from the document could not be resolved
type ErrUnresolvedType struct {
	Type     reflect.Type
	Property string
	Value    RawValue
	Err      error
}

func (e ErrUnresolvedType) Error() string {
	return fmt.Sprintf("failed to decode %v: unresolved discriminator %q = %v: %v", e.Type, e.Property, e.Value, e.Err)
}

func (e ErrUnresolvedType) Unwrap() error { return e.Err }

// ErrUnexpectedKind is the error returned when a polymorphic value is
// encoded as something other than a JSON object or null
type ErrUnexpectedKind struct {
	Type reflect.Type
	Kind jsontext.Kind
}

func (e ErrUnexpectedKind) Error() string {
	return fmt.Sprintf("failed to decode %v: expected JSON object, but encountered %s", e.Type, kindName(e.Kind))
}

// ErrUnknownGoType is the error returned by strict encoding when it encounters
// a Go type that is not in the concrete-type table of its abstract type.
//
// Type is the type of the value as the encoder received it. The json package
// passes concrete values by address, so a Square held in an interface is
// reported as *Square.
type ErrUnknownGoType struct {
	Type     reflect.Type
	Abstract reflect.Type
}

func (e ErrUnknownGoType) Error() string {
	return fmt.Sprintf("unknown Go type %v for %v", e.Type, e.Abstract)
}

// ErrUnknownStrategy is the error returned when a declaration names a
// strategy kind the registry has no implementation for
type ErrUnknownStrategy struct {
	Kind StrategyKind
}

func (e ErrUnknownStrategy) Error() string {
	return fmt.Sprintf("unknown discriminator strategy %q", string(e.Kind))
}

// ErrConflictingDeclaration is the error returned when an abstract type is
// registered twice with different declarations
type ErrConflictingDeclaration struct {
	Type reflect.Type
}

func (e ErrConflictingDeclaration) Error() string {
	return fmt.Sprintf("conflicting discriminator declarations for %v", e.Type)
}

func kindName(k jsontext.Kind) string {
	switch k {
	case 'n':
		return "null"
	case 'f', 't':
		return "boolean"
	case '"':
		return "string"
	case '0':
		return "number"
	case '{':
		return "object"
	case '[':
		return "array"
	default:
		return "invalid"
	}
}
