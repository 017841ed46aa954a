package polymorph

import (
	"errors"
	"reflect"
	"strings"
)

var errNoMatchingCase = errors.New("no matching case")

// EnumStrategy interprets discriminators against the enum members listed in a
// declaration: integers match a member's ordinal and strings match its name.
//
// If FoldNames is set, string discriminators match names case-insensitively.
type EnumStrategy struct {
	FoldNames bool
}

func (s EnumStrategy) Resolve(md Metadata, abstract reflect.Type, raw RawValue) (ConcreteType, error) {
	switch raw.Kind() {
	case RawInt:
		n, _ := raw.Int()
		for _, c := range md.Cases {
			if c.HasOrdinal && c.Ordinal == n {
				return c.Concrete, nil
			}
		}
	case RawString:
		name, _ := raw.Str()
		for _, c := range md.Cases {
			if c.Name == name || (s.FoldNames && strings.EqualFold(c.Name, name)) {
				return c.Concrete, nil
			}
		}
	}
	return ConcreteType{}, ErrResolution{Type: abstract, Value: raw, Err: errNoMatchingCase}
}

// Discriminate returns the ordinal of the member whose concrete type matches
// the type of v, or its name when the member has no ordinal.
func (s EnumStrategy) Discriminate(md Metadata, v any) (RawValue, bool) {
	c, ok := caseFor(md, v)
	if !ok {
		return RawValue{}, false
	}
	if c.HasOrdinal {
		return IntValue(c.Ordinal), true
	}
	return StringValue(c.Name), true
}

// caseFor returns the first case whose concrete type matches the type of v,
// ignoring one level of pointer indirection if there is no exact match.
func caseFor(md Metadata, v any) (Case, bool) {
	typ := reflect.TypeOf(v)
	if typ == nil {
		return Case{}, false
	}
	for _, c := range md.Cases {
		if c.Concrete.Type == typ {
			return c, true
		}
	}
	base := indirect(typ)
	for _, c := range md.Cases {
		if c.Concrete.Type != nil && indirect(c.Concrete.Type) == base {
			return c, true
		}
	}
	return Case{}, false
}

func indirect(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Ptr {
		return t.Elem()
	}
	return t
}
