// SPDX-FileCopyrightText: © 2024 Donald Hoelle. All rights reserved.
// SPDX-License-Identifier: MIT
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package [polymorph] decodes Go interface values from JSON objects that carry
// a type discriminator, using the Go JSON V2 experiment
// ([github.com/go-json-experiment/json]).
//
// By default, unmarshaling into an interface value fails, because the json
// package cannot tell which concrete type to create:
//
//	var s Shape
//	err := json.Unmarshal([]byte(`{"Kind":0,"Radius":2}`), &s)
//	// json: cannot unmarshal JSON object into Go value of type Shape: ...
//
// [polymorph] lets you declare, per interface type, which property holds the
// discriminator and which concrete type each discriminator value selects:
//
//	type Kind int
//
//	const (
//	  KindCircle Kind = iota
//	  KindSquare
//	)
//
//	reg := polymorph.NewRegistry()
//	_ = reg.Register(polymorph.Declare[Shape]("Kind",
//	  polymorph.EnumCase(KindCircle, func() Shape { return &Circle{} }),
//	  polymorph.EnumCase(KindSquare, func() Shape { return &Square{} }),
//	))
//
//	conv := polymorph.NewConverter(reg)
//	var s Shape
//	_ = json.Unmarshal([]byte(`{"Kind":0,"Radius":2}`), &s, conv.Options())
//	fmt.Printf("%T\n", s)
//	// Output:
//	// *Circle
//
// # Decoding
//
// When the json package reaches a value whose declared type is registered,
// [Converter.Decode] reads the JSON object, locates the discriminator among its
// top-level members, asks the type's [Strategy] for the concrete type and then
// decodes the same object into that type with the caller's options. The
// discriminator may appear anywhere in the object.
//
// The discriminator property is matched with the same name policy as the rest
// of the document: it is case-sensitive by default and case-insensitive when
// json.MatchCaseInsensitiveNames is set.
//
// Discriminators must be JSON strings or integral JSON numbers. The default
// enum strategy matches integers against enum ordinals and strings against
// enum names (the result of the enum's String method). The object is then
// decoded into the concrete type as is, so documents that use enum names need
// a concrete field that decodes the name, for example an enum implementing
// UnmarshalJSON.
//
// Name matching follows the json package's rules for struct fields: folding
// ignores '_' and '-' unless MatchCaseSensitiveDelimiter is set, and a
// `nocase` or `strictcase` option on the field holding the discriminator in
// the concrete types overrides the call option.
//
// A pointer to a declared type is handled as well; [Converter.Decode] then
// returns a pointer to a new abstract value.
//
// # Encoding
//
// Nothing is added on encode. Concrete types are expected to carry their own
// discriminator field, which is written with the default encoding of the
// value's runtime type. [WithStrictEncoding] rejects values whose type is not
// in the declared table.
//
// # Errors
//
// Decoding fails, without returning a partial value, with:
//
//   - [ErrMissingDiscriminator] if the object has no discriminator property,
//   - [ErrDiscriminatorType] if the discriminator is not a string or integer,
//   - [ErrUnresolvedType] (wrapping [ErrResolution]) if no concrete type is
//     mapped to the discriminator value,
//   - [ErrUnexpectedKind] if the value is not a JSON object or null.
//
// Declarations can also be loaded from a declarative table, see package
// [github.com/dhoelle/polymorph/config].
//
// [github.com/go-json-experiment/json]: https://github.com/go-json-experiment/json
package polymorph
