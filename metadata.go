package polymorph

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/go-json-experiment/json"
)

// Metadata declares, for one abstract type, which JSON property carries the
// type discriminator, which strategy interprets it, and the table of concrete
// types the discriminator can select.
type Metadata struct {
	Abstract reflect.Type
	Property string       `validate:"required"`
	Strategy StrategyKind `validate:"required"`
	Cases    []Case       `validate:"required,min=1,dive"`
}

// Case is one row of a concrete-type table. Ordinal is only meaningful when
// HasOrdinal is set.
type Case struct {
	Ordinal    int64
	HasOrdinal bool
	Name       string
	Concrete   ConcreteType
}

// ConcreteType identifies a concrete implementation of an abstract type
// together with the constructor used to materialize it.
type ConcreteType struct {
	Name string `validate:"required"`
	Type reflect.Type
	New  func() any `validate:"required"`
}

// MetadataResolver looks up the discriminator declaration for a type.
// A false result means the type is not polymorphic; it is never an error.
type MetadataResolver interface {
	Metadata(t reflect.Type) (Metadata, bool)
}

// Declaration is a [Metadata] bound to the Go type parameter it was declared
// with, so that hosts can build typed marshal and unmarshal funcs for it.
type Declaration struct {
	Metadata
	bind func(*Converter) (*json.Marshalers, *json.Unmarshalers)
}

// Declare declares interface type T as polymorphic. Documents decoded into a T
// must carry the discriminator in the given property; the enum strategy maps
// its value to one of cases.
//
//	decl := polymorph.Declare[Shape]("kind",
//	  polymorph.EnumCase(KindCircle, func() Shape { return &Circle{} }),
//	  polymorph.EnumCase(KindSquare, func() Shape { return &Square{} }),
//	)
func Declare[T any](property string, cases ...Case) Declaration {
	return Declaration{
		Metadata: Metadata{
			Abstract: typeFor[T](),
			Property: property,
			Strategy: EnumStrategyKind,
			Cases:    cases,
		},
		bind: func(c *Converter) (*json.Marshalers, *json.Unmarshalers) {
			return MarshalFunc[T](c), UnmarshalFunc[T](c)
		},
	}
}

// WithStrategy returns a copy of d interpreted by the strategy registered
// under kind.
func (d Declaration) WithStrategy(kind StrategyKind) Declaration {
	d.Strategy = kind
	return d
}

// Enum is the constraint satisfied by integer-backed enumerations.
type Enum interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32
}

// EnumCase maps enum member e to the concrete type produced by newFn. The
// member matches integer discriminators equal to its ordinal and, when E
// implements fmt.Stringer, string discriminators equal to its name.
func EnumCase[T any, E Enum](e E, newFn func() T) Case {
	c := Case{
		Ordinal:    int64(e),
		HasOrdinal: true,
		Concrete:   concreteOf(newFn),
	}
	if s, ok := any(e).(fmt.Stringer); ok {
		c.Name = s.String()
	} else {
		c.Name = strconv.FormatInt(int64(e), 10)
	}
	return c
}

// TagCase maps the string discriminator tag to the concrete type produced by
// newFn.
func TagCase[T any](tag string, newFn func() T) Case {
	return Case{
		Name:     tag,
		Concrete: concreteOf(newFn),
	}
}

func concreteOf[T any](newFn func() T) ConcreteType {
	if newFn == nil {
		return ConcreteType{}
	}
	typ := reflect.TypeOf(newFn())
	if typ == nil {
		return ConcreteType{New: func() any { return newFn() }}
	}
	return ConcreteType{
		Name: typ.String(),
		Type: typ,
		New:  func() any { return newFn() },
	}
}

// sameMetadata reports whether a and b declare identical behavior.
func sameMetadata(a, b Metadata) bool {
	if a.Abstract != b.Abstract || a.Property != b.Property || a.Strategy != b.Strategy {
		return false
	}
	if len(a.Cases) != len(b.Cases) {
		return false
	}
	for i := range a.Cases {
		ca, cb := a.Cases[i], b.Cases[i]
		if ca.HasOrdinal != cb.HasOrdinal || ca.Ordinal != cb.Ordinal ||
			ca.Name != cb.Name || ca.Concrete.Type != cb.Concrete.Type {
			return false
		}
	}
	return true
}

func typeFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
