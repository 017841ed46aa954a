package polymorph

import (
	"errors"
	"reflect"
)

var errTagNotString = errors.New("tag discriminators must be strings")

// TagStrategy interprets discriminators as exact string tags matched against
// case names. Ordinals are ignored.
type TagStrategy struct{}

func (TagStrategy) Resolve(md Metadata, abstract reflect.Type, raw RawValue) (ConcreteType, error) {
	tag, ok := raw.Str()
	if !ok {
		return ConcreteType{}, ErrResolution{Type: abstract, Value: raw, Err: errTagNotString}
	}
	for _, c := range md.Cases {
		if c.Name == tag {
			return c.Concrete, nil
		}
	}
	return ConcreteType{}, ErrResolution{Type: abstract, Value: raw, Err: errNoMatchingCase}
}

func (TagStrategy) Discriminate(md Metadata, v any) (RawValue, bool) {
	c, ok := caseFor(md, v)
	if !ok {
		return RawValue{}, false
	}
	return StringValue(c.Name), true
}
