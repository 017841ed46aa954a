package polymorph

import (
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// JSONOptions returns json options that route values of interface type T
// through c in both directions.
func JSONOptions[T any](c *Converter) json.Options {
	return json.JoinOptions(
		json.WithMarshalers(
			MarshalFunc[T](c),
		),
		json.WithUnmarshalers(
			UnmarshalFunc[T](c),
		),
	)
}

// MarshalFunc creates a [json.MarshalFuncV2] for values of interface type T.
//
// The json package calls marshal funcs declared on an interface type for every
// value that implements it, including the concrete values being written. The
// func therefore never encodes anything itself: it lets c check the value and
// then returns [json.SkipFunc], so the value is written with the default
// encoding of its runtime type.
func MarshalFunc[T any](c *Converter) *json.Marshalers {
	typ := typeFor[T]()

	marshalFunc := func(enc *jsontext.Encoder, t T, jsonopts json.Options) error {
		if !c.CanHandle(typ) {
			return json.SkipFunc
		}
		return c.Encode(enc, typ, t, jsonopts)
	}

	return json.MarshalFuncV2(marshalFunc)
}

// UnmarshalFunc creates a [json.UnmarshalFuncV2] for values of interface type
// T. It decodes the JSON object into the concrete type selected by its
// discriminator and stores the result in the destination T.
//
// The concrete value is decoded through a pointer to its own type, never
// through a *T, so the func is not re-entered for the same value. Nested
// fields of type T are dispatched again as usual.
func UnmarshalFunc[T any](c *Converter) *json.Unmarshalers {
	typ := typeFor[T]()

	unmarshalFunc := func(dec *jsontext.Decoder, ptr *T, jsonopts json.Options) error {
		if !c.CanHandle(typ) {
			return json.SkipFunc
		}

		v, err := c.Decode(dec, typ, jsonopts)
		if err != nil {
			return err
		}
		if v == nil {
			var zero T
			*ptr = zero
			return nil
		}

		t, ok := v.(T)
		if !ok {
			return fmt.Errorf("decoded value of type %T does not implement %v", v, typ)
		}
		*ptr = t
		return nil
	}

	return json.UnmarshalFuncV2(unmarshalFunc)
}
