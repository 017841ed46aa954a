package polymorph

import (
	"reflect"
	"strconv"
)

// StrategyKind names a discriminator-interpretation strategy.
type StrategyKind string

const (
	// EnumStrategyKind interprets discriminators as enum ordinals or names.
	EnumStrategyKind StrategyKind = "enum"

	// TagStrategyKind interprets discriminators as exact string tags.
	TagStrategyKind StrategyKind = "tag"
)

// Strategy maps a raw discriminator value to a concrete type, given the
// declaration of the abstract type being decoded.
//
// Implementations must be safe for concurrent use; a single Strategy is shared
// by every [Context] that names its kind.
type Strategy interface {
	Resolve(md Metadata, abstract reflect.Type, raw RawValue) (ConcreteType, error)
}

// Reverser is implemented by strategies that can map a Go value back to the
// discriminator value its concrete type is selected by.
type Reverser interface {
	Discriminate(md Metadata, v any) (RawValue, bool)
}

// RawKind is the primitive kind of a [RawValue].
type RawKind uint8

const (
	RawInvalid RawKind = iota
	RawInt
	RawString
)

// RawValue is a primitive discriminator value read from a document: either an
// integer or a string.
type RawValue struct {
	kind RawKind
	i    int64
	s    string
}

// IntValue returns an integer RawValue.
func IntValue(i int64) RawValue { return RawValue{kind: RawInt, i: i} }

// StringValue returns a string RawValue.
func StringValue(s string) RawValue { return RawValue{kind: RawString, s: s} }

func (v RawValue) Kind() RawKind { return v.kind }

// Int returns the integer value and whether v holds one.
func (v RawValue) Int() (int64, bool) { return v.i, v.kind == RawInt }

// Str returns the string value and whether v holds one.
func (v RawValue) Str() (string, bool) { return v.s, v.kind == RawString }

func (v RawValue) String() string {
	switch v.kind {
	case RawInt:
		return strconv.FormatInt(v.i, 10)
	case RawString:
		return strconv.Quote(v.s)
	default:
		return "<invalid>"
	}
}
