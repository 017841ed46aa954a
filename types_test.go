package polymorph_test

import (
	"fmt"
	"math"
	"reflect"

	"github.com/dhoelle/polymorph"
)

//
// An enum-discriminated hierarchy
//

type AbstractType int

const (
	ChildA AbstractType = iota
	ChildB
)

func (t AbstractType) String() string {
	switch t {
	case ChildA:
		return "ChildA"
	case ChildB:
		return "ChildB"
	default:
		return fmt.Sprintf("AbstractType(%d)", int(t))
	}
}

type TestAbstract interface {
	Type() AbstractType
}

type TestChildA struct {
	A            int
	B            []int
	Label        string `json:",omitempty"`
	AbstractType AbstractType
}

func (c *TestChildA) Type() AbstractType { return ChildA }

type TestChildB struct {
	A            int
	B            []int
	C            TestAbstract `json:",omitempty"`
	AbstractType AbstractType
}

func (c *TestChildB) Type() AbstractType { return ChildB }

func declareTestAbstract() polymorph.Declaration {
	return polymorph.Declare[TestAbstract]("AbstractType",
		polymorph.EnumCase(ChildA, func() TestAbstract { return &TestChildA{} }),
		polymorph.EnumCase(ChildB, func() TestAbstract { return &TestChildB{} }),
	)
}

//
// A tag-discriminated hierarchy, with a value-receiver implementation
//

type Shape interface {
	Area() float64
}

type Circle struct {
	Kind   string  `json:"kind"`
	Radius float64 `json:"radius"`
}

func (c *Circle) Area() float64 { return math.Pi * c.Radius * c.Radius }

type Square struct {
	Kind string  `json:"kind"`
	Side float64 `json:"side"`
}

func (s Square) Area() float64 { return s.Side * s.Side }

func declareShape() polymorph.Declaration {
	return polymorph.Declare[Shape]("kind",
		polymorph.TagCase("circle", func() Shape { return &Circle{} }),
		polymorph.TagCase("square", func() Shape { return Square{} }),
	).WithStrategy(polymorph.TagStrategyKind)
}

// Drawing holds polymorphic fields of both hierarchies.
type Drawing struct {
	Title  string         `json:"title"`
	Shapes []Shape        `json:"shapes"`
	Parts  []TestAbstract `json:"parts,omitempty"`
}

var (
	testAbstractType = reflect.TypeOf((*TestAbstract)(nil)).Elem()
	shapeType        = reflect.TypeOf((*Shape)(nil)).Elem()
)

func newTestConverter(opts ...polymorph.ConverterOption) (*polymorph.Registry, *polymorph.Converter) {
	reg := polymorph.NewRegistry()
	if err := reg.Register(declareTestAbstract(), declareShape()); err != nil {
		panic("failed to register: " + err.Error())
	}
	return reg, polymorph.NewConverter(reg, opts...)
}
