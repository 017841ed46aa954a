package polymorph

import (
	"errors"
	"reflect"
	"strings"
)

// Context binds one abstract type to its declaration and the strategy that
// interprets it. Contexts are immutable and safe for concurrent use.
type Context struct {
	metadata Metadata
	abstract reflect.Type
	strategy Strategy
	casing   casing
}

// NewContext returns a Context resolving discriminators of abstract with s.
func NewContext(md Metadata, abstract reflect.Type, s Strategy) *Context {
	return &Context{
		metadata: md,
		abstract: abstract,
		strategy: s,
		casing:   propertyCasing(md),
	}
}

func (c *Context) Metadata() Metadata     { return c.metadata }
func (c *Context) Abstract() reflect.Type { return c.abstract }
func (c *Context) Property() string       { return c.metadata.Property }
func (c *Context) Strategy() Strategy     { return c.strategy }

// ConcreteType resolves raw to a concrete type. Every failure is reported as
// an [ErrResolution].
func (c *Context) ConcreteType(raw RawValue) (ConcreteType, error) {
	ct, err := c.strategy.Resolve(c.metadata, c.abstract, raw)
	if err != nil {
		var re ErrResolution
		if errors.As(err, &re) {
			return ConcreteType{}, re
		}
		return ConcreteType{}, ErrResolution{Type: c.abstract, Value: raw, Err: err}
	}
	if ct.New == nil {
		return ConcreteType{}, ErrResolution{Type: c.abstract, Value: raw, Err: errNoMatchingCase}
	}
	return ct, nil
}

// casing is the name matching a struct field's `nocase` or `strictcase` tag
// option imposes on the discriminator property.
type casing uint8

const (
	caseDefault casing = iota
	caseNocase
	caseStrict
)

// propertyCasing returns the casing declared by the fields that hold the
// discriminator in the concrete types of md. Only direct fields are
// considered. When the concrete types disagree, the call options decide.
func propertyCasing(md Metadata) casing {
	result, seen := caseDefault, false
	for _, c := range md.Cases {
		if c.Concrete.Type == nil {
			continue
		}
		t := indirect(c.Concrete.Type)
		if t.Kind() != reflect.Struct {
			continue
		}
		for i := 0; i < t.NumField(); i++ {
			name, fc, ok := fieldName(t.Field(i))
			if !ok || name != md.Property {
				continue
			}
			if seen && fc != result {
				return caseDefault
			}
			result, seen = fc, true
			break
		}
	}
	return result
}

// fieldName returns the JSON name of f and its casing tag option.
func fieldName(f reflect.StructField) (string, casing, bool) {
	if !f.IsExported() {
		return "", caseDefault, false
	}
	tag, hasTag := f.Tag.Lookup("json")
	if tag == "-" {
		return "", caseDefault, false
	}
	name, opts, _ := strings.Cut(tag, ",")
	if len(name) > 1 && name[0] == '\'' && name[len(name)-1] == '\'' {
		name = name[1 : len(name)-1]
	}
	if !hasTag || name == "" {
		name = f.Name
	}
	fc := caseDefault
	for _, o := range strings.Split(opts, ",") {
		switch strings.TrimSpace(o) {
		case "nocase":
			fc = caseNocase
		case "strictcase":
			fc = caseStrict
		}
	}
	return name, fc, true
}
