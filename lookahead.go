package polymorph

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// nameMatch is the rule used to compare a member name against the
// discriminator property. It follows the host's struct field matching: an
// exact match always wins over a folded one, and folding ignores '_' and '-'
// unless delimiters are significant.
type nameMatch struct {
	fold        bool
	strictDelim bool
}

func (m nameMatch) equal(member, property string) bool {
	if member == property {
		return true
	}
	if !m.fold {
		return false
	}
	if m.strictDelim {
		return strings.EqualFold(member, property)
	}
	return strings.EqualFold(stripDelims(member), stripDelims(property))
}

func stripDelims(s string) string {
	if !strings.ContainsAny(s, "_-") {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return -1
		}
		return r
	}, s)
}

// lookupMember scans the top-level members of the JSON object obj for name and
// returns its value. Nested objects are skipped without being inspected. An
// exact match is preferred; otherwise the first member matching under m wins.
func lookupMember(obj jsontext.Value, name string, m nameMatch) (jsontext.Value, bool, error) {
	// obj was already validated when it was read from the document
	dec := jsontext.NewDecoder(bytes.NewReader(obj), jsontext.AllowDuplicateNames(true))
	if tok, err := dec.ReadToken(); err != nil {
		return nil, false, err
	} else if tok.Kind() != '{' {
		return nil, false, fmt.Errorf("expected object start, but encountered %v", tok.Kind())
	}
	var folded jsontext.Value
	for dec.PeekKind() != '}' {
		tok, err := dec.ReadToken()
		if err != nil {
			return nil, false, err
		}
		k := tok.String()
		if k == name {
			v, err := dec.ReadValue()
			if err != nil {
				return nil, false, err
			}
			return append(jsontext.Value(nil), v...), true, nil
		}
		if folded == nil && m.equal(k, name) {
			v, err := dec.ReadValue()
			if err != nil {
				return nil, false, err
			}
			folded = append(jsontext.Value(nil), v...)
			continue
		}
		if err := dec.SkipValue(); err != nil {
			return nil, false, err
		}
	}
	return folded, folded != nil, nil
}

// primitive converts a JSON string or integral JSON number to a RawValue.
// It returns a non-empty detail when v holds a number that is not an int64.
func primitive(v jsontext.Value) (raw RawValue, detail string, ok bool) {
	switch v.Kind() {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return RawValue{}, err.Error(), false
		}
		return StringValue(s), "", true
	case '0':
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return RawValue{}, fmt.Sprintf("%s is not an integer", v), false
		}
		return IntValue(n), "", true
	default:
		return RawValue{}, "", false
	}
}
