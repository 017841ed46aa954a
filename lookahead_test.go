package polymorph

import (
	"testing"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupMember(t *testing.T) {
	var (
		exact = nameMatch{}
		fold  = nameMatch{fold: true}
		delim = nameMatch{fold: true, strictDelim: true}
	)

	tests := []struct {
		name  string
		obj   string
		prop  string
		match nameMatch
		want  string
		found bool
	}{
		{name: "first", obj: `{"kind":1,"a":2}`, prop: "kind", want: `1`, found: true},
		{name: "last", obj: `{"a":{"kind":9},"b":[1,2],"kind":"x"}`, prop: "kind", want: `"x"`, found: true},
		{name: "nested only", obj: `{"a":{"kind":9}}`, prop: "kind"},
		{name: "empty object", obj: `{}`, prop: "kind"},
		{name: "case mismatch", obj: `{"KIND":1}`, prop: "kind", match: exact},
		{name: "case folded", obj: `{"KIND":1}`, prop: "kind", match: fold, want: `1`, found: true},
		{name: "underscore folded", obj: `{"abstract_type":1}`, prop: "AbstractType", match: fold, want: `1`, found: true},
		{name: "dash folded", obj: `{"Abstract-Type":2}`, prop: "AbstractType", match: fold, want: `2`, found: true},
		{name: "underscore kept", obj: `{"abstract_type":1}`, prop: "AbstractType", match: delim},
		{name: "case folded with delimiters kept", obj: `{"abstracttype":3}`, prop: "AbstractType", match: delim, want: `3`, found: true},
		{name: "exact preferred over folded", obj: `{"KIND":1,"kind":2}`, prop: "kind", match: fold, want: `2`, found: true},
		{name: "first folded wins", obj: `{"KIND":1,"Kind":2}`, prop: "kind", match: fold, want: `1`, found: true},
		{name: "duplicate names", obj: `{"kind":1,"kind":2}`, prop: "kind", want: `1`, found: true},
		{name: "escaped name", obj: `{"ki\u006ed":"y"}`, prop: "kind", want: `"y"`, found: true},
		{name: "object value", obj: `{"kind":{"v":1}}`, prop: "kind", want: `{"v":1}`, found: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, found, err := lookupMember(jsontext.Value(tt.obj), tt.prop, tt.match)
			require.NoError(t, err)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, string(v))
			}
		})
	}
}

func TestLookupMember_NotAnObject(t *testing.T) {
	_, _, err := lookupMember(jsontext.Value(`[1,2]`), "kind", nameMatch{})
	assert.Error(t, err)
}

func TestPrimitive(t *testing.T) {
	tests := []struct {
		in         string
		want       RawValue
		ok         bool
		wantDetail bool
	}{
		{in: `0`, want: IntValue(0), ok: true},
		{in: `-12`, want: IntValue(-12), ok: true},
		{in: `"ChildA"`, want: StringValue("ChildA"), ok: true},
		{in: `"A"`, want: StringValue("A"), ok: true},
		{in: `1.5`, wantDetail: true},
		{in: `1e3`, wantDetail: true},
		{in: `99999999999999999999`, wantDetail: true},
		{in: `true`},
		{in: `null`},
		{in: `[0]`},
		{in: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			raw, detail, ok := primitive(jsontext.Value(tt.in))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, raw)
			assert.Equal(t, tt.wantDetail, detail != "")
		})
	}
}
