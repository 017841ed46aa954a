package polymorph

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type casedA struct {
	Kind string `json:"kind,nocase"`
}

func (*casedA) thing() {}

type casedB struct {
	Kind string `json:"'kind',omitempty,nocase"`
}

func (*casedB) thing() {}

type strictB struct {
	Kind string `json:"kind,strictcase"`
}

func (*strictB) thing() {}

type plain struct {
	Kind  string
	Other string `json:"kind"`
}

func (*plain) thing() {}

type thing interface{ thing() }

func casingOf(property string, newFns ...func() thing) casing {
	cases := make([]Case, len(newFns))
	for i, fn := range newFns {
		cases[i] = TagCase(reflect.TypeOf(fn()).String(), fn)
	}
	return NewContext(Metadata{Property: property, Cases: cases}, nil, TagStrategy{}).casing
}

func TestPropertyCasing(t *testing.T) {
	newA := func() thing { return &casedA{} }
	newB := func() thing { return &casedB{} }
	newStrict := func() thing { return &strictB{} }
	newPlain := func() thing { return &plain{} }

	assert.Equal(t, caseNocase, casingOf("kind", newA, newB))
	assert.Equal(t, caseStrict, casingOf("kind", newStrict))
	assert.Equal(t, caseDefault, casingOf("kind", newA, newStrict), "disagreeing fields")
	assert.Equal(t, caseDefault, casingOf("Kind", newA), "property names a different field")
	assert.Equal(t, caseDefault, casingOf("kind", newPlain))
}
