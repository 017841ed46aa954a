package polymorph

import (
	"fmt"
	"reflect"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	jsonv1 "github.com/go-json-experiment/json/v1"
	"github.com/go-logr/logr"
)

// ConverterOption configures a [Converter].
type ConverterOption func(*Converter)

// WithLogger sets the logger used by the converter. Each dispatch is logged at
// verbosity 2.
func WithLogger(logger logr.Logger) ConverterOption {
	return func(c *Converter) {
		c.logger = logger.WithName("converter")
	}
}

// WithStrictEncoding makes [Converter.Encode] reject values whose runtime type
// is not in the concrete-type table of the declared abstract type. It only
// applies to strategies implementing [Reverser].
func WithStrictEncoding(strict bool) ConverterOption {
	return func(c *Converter) {
		c.strict = strict
	}
}

// Converter dispatches the decoding of polymorphic values to their concrete
// types. It holds no per-call state and is safe for concurrent use.
type Converter struct {
	provider Provider
	logger   logr.Logger
	strict   bool
}

// NewConverter returns a Converter resolving contexts through p.
func NewConverter(p Provider, opts ...ConverterOption) *Converter {
	if p == nil {
		panic("p cannot be nil")
	}
	c := &Converter{
		provider: p,
		logger:   logr.Discard(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// CanHandle reports whether values declared as t are dispatched by c.
func (c *Converter) CanHandle(t reflect.Type) bool {
	return c.provider.HasStrategy(t)
}

// Decode reads the next JSON value from dec and decodes it into the concrete
// type selected by its discriminator. The returned value is assignable to t:
// for an abstract type it is the concrete value, and for a pointer to an
// abstract type it is a pointer to a new abstract value holding it.
//
// The object is read in full before its discriminator is located, and the
// concrete type is then decoded from that same object with opts, so name
// matching and other options behave exactly as they do for the surrounding
// document. A JSON null decodes to a nil value.
func (c *Converter) Decode(dec *jsontext.Decoder, t reflect.Type, opts json.Options) (any, error) {
	ctx, err := c.provider.Context(t)
	if err != nil {
		return nil, err
	}

	if dec.PeekKind() == 'n' {
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	obj, err := dec.ReadValue()
	if err != nil {
		return nil, err
	}
	if k := obj.Kind(); k != '{' {
		return nil, ErrUnexpectedKind{Type: t, Kind: k}
	}
	obj = append(jsontext.Value(nil), obj...)

	raw, err := discriminator(ctx, t, obj, matchFor(ctx, opts))
	if err != nil {
		return nil, err
	}

	concrete, err := ctx.ConcreteType(raw)
	if err != nil {
		return nil, ErrUnresolvedType{Type: t, Property: ctx.Property(), Value: raw, Err: err}
	}

	v, err := decodeConcrete(obj, concrete, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %v as %s: %w", t, concrete.Name, err)
	}

	c.logger.V(2).Info("resolved polymorphic value",
		"type", t.String(),
		"property", ctx.Property(),
		"value", raw.String(),
		"concrete", concrete.Name)
	return asDeclared(t, ctx.Abstract(), v), nil
}

// asDeclared returns v as a value of t. When t is a pointer to the abstract
// type, v is stored in a new abstract value and a pointer to it is returned.
func asDeclared(t, abstract reflect.Type, v any) any {
	if t == abstract || t.Kind() != reflect.Ptr || t.Elem() != abstract {
		return v
	}
	if !reflect.TypeOf(v).AssignableTo(abstract) {
		return v
	}
	p := reflect.New(abstract)
	p.Elem().Set(reflect.ValueOf(v))
	return p.Interface()
}

// Encode hands v back to the host, which encodes it with the standard
// representation of its runtime type. Concrete types already carry their
// discriminator, so nothing is added.
//
// Encode returns [json.SkipFunc] on success. With strict encoding enabled it
// first verifies that v's type is in the table declared for t. The host
// hands concrete values over by address, so v is usually a pointer even for
// concrete types declared by value.
func (c *Converter) Encode(enc *jsontext.Encoder, t reflect.Type, v any, opts json.Options) error {
	if !c.strict || v == nil {
		return json.SkipFunc
	}
	// jsontext.Value may satisfy broad interfaces; it is never a table entry.
	if _, ok := v.(*jsontext.Value); ok {
		return json.SkipFunc
	}
	ctx, err := c.provider.Context(t)
	if err != nil {
		return err
	}
	if rev, ok := ctx.Strategy().(Reverser); ok {
		if _, ok := rev.Discriminate(ctx.Metadata(), v); !ok {
			return ErrUnknownGoType{Type: reflect.TypeOf(v), Abstract: ctx.Abstract()}
		}
	}
	return json.SkipFunc
}

// Marshalers returns the marshal funcs of every declaration known to the
// converter's provider. The provider must expose its declarations (as
// [Registry] does); otherwise the result is empty.
func (c *Converter) Marshalers() *json.Marshalers {
	var ms []*json.Marshalers
	for _, d := range c.declarations() {
		m, _ := d.bind(c)
		ms = append(ms, m)
	}
	return json.NewMarshalers(ms...)
}

// Unmarshalers returns the unmarshal funcs of every declaration known to the
// converter's provider.
func (c *Converter) Unmarshalers() *json.Unmarshalers {
	var us []*json.Unmarshalers
	for _, d := range c.declarations() {
		_, u := d.bind(c)
		us = append(us, u)
	}
	return json.NewUnmarshalers(us...)
}

// Options returns json options that route every declared abstract type
// through c.
//
// Options replaces any marshalers or unmarshalers set by earlier options. To
// combine them with other funcs, use [Converter.Marshalers] and
// [Converter.Unmarshalers] with json.NewMarshalers and json.NewUnmarshalers.
func (c *Converter) Options() json.Options {
	return json.JoinOptions(
		json.WithMarshalers(c.Marshalers()),
		json.WithUnmarshalers(c.Unmarshalers()),
	)
}

func (c *Converter) declarations() []Declaration {
	p, ok := c.provider.(interface{ Declarations() []Declaration })
	if !ok {
		return nil
	}
	var decls []Declaration
	for _, d := range p.Declarations() {
		if d.bind != nil {
			decls = append(decls, d)
		}
	}
	return decls
}

// matchFor returns the rule the host applies to the discriminator field: the
// field's `nocase` or `strictcase` option takes precedence over
// json.MatchCaseInsensitiveNames, and MatchCaseSensitiveDelimiter keeps '_'
// and '-' significant when folding.
func matchFor(ctx *Context, opts json.Options) nameMatch {
	var m nameMatch
	if opts != nil {
		m.fold, _ = json.GetOption(opts, json.MatchCaseInsensitiveNames)
		m.strictDelim, _ = json.GetOption(opts, jsonv1.MatchCaseSensitiveDelimiter)
	}
	switch ctx.casing {
	case caseNocase:
		m.fold = true
	case caseStrict:
		m.fold = false
	}
	return m
}

func discriminator(ctx *Context, t reflect.Type, obj jsontext.Value, m nameMatch) (RawValue, error) {
	property := ctx.Property()
	v, found, err := lookupMember(obj, property, m)
	if err != nil {
		return RawValue{}, fmt.Errorf("failed to scan %v for discriminator %q: %w", t, property, err)
	}
	if !found {
		return RawValue{}, ErrMissingDiscriminator{Type: t, Property: property}
	}
	raw, detail, ok := primitive(v)
	if !ok {
		return RawValue{}, ErrDiscriminatorType{Type: t, Property: property, Kind: v.Kind(), Detail: detail}
	}
	return raw, nil
}

// decodeConcrete decodes obj into a new value of ct. Values constructed as
// non-pointers are decoded through a temporary pointer and returned by value.
func decodeConcrete(obj jsontext.Value, ct ConcreteType, opts json.Options) (any, error) {
	v := ct.New()
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, fmt.Errorf("constructor for %s returned nil", ct.Name)
	}
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		if err := json.Unmarshal(obj, v, optionList(opts)...); err != nil {
			return nil, err
		}
		return v, nil
	}
	ptr := reflect.New(rv.Type())
	ptr.Elem().Set(rv)
	if err := json.Unmarshal(obj, ptr.Interface(), optionList(opts)...); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

func optionList(opts json.Options) []json.Options {
	if opts == nil {
		return nil
	}
	return []json.Options{opts}
}
