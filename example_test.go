package polymorph_test

import (
	"errors"
	"fmt"

	"github.com/dhoelle/polymorph"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

//
// Some examples of a polymorphic event hierarchy
//

type EventKind int

const (
	KindLogin EventKind = iota
	KindPurchase
)

func (k EventKind) String() string {
	switch k {
	case KindLogin:
		return "Login"
	case KindPurchase:
		return "Purchase"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// UnmarshalJSON accepts an EventKind as its ordinal or as its name, so that
// documents using either form of the discriminator decode into the field
// that carries it.
func (k *EventKind) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		for _, kind := range []EventKind{KindLogin, KindPurchase} {
			if kind.String() == name {
				*k = kind
				return nil
			}
		}
		return fmt.Errorf("unknown event kind %q", name)
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*k = EventKind(n)
	return nil
}

type Event interface {
	Describe() string
}

type Login struct {
	Kind EventKind `json:"kind"`
	User string    `json:"user"`
}

func (e *Login) Describe() string { return e.User + " logged in" }

type Purchase struct {
	Kind  EventKind `json:"kind"`
	Item  string    `json:"item"`
	Cause Event     `json:"cause,omitempty"`
}

func (e *Purchase) Describe() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s bought (after: %s)", e.Item, e.Cause.Describe())
	}
	return e.Item + " bought"
}

// An example struct with interface fields.
// We'll marshal and unmarshal this from JSON in the Example function, below.
type Feed struct {
	Events []Event `json:"events"`
}

func Example() {
	// Declare which property carries the discriminator of an Event, and
	// which concrete type each EventKind selects
	reg := polymorph.NewRegistry()
	err := reg.Register(polymorph.Declare[Event]("kind",
		polymorph.EnumCase(KindLogin, func() Event { return &Login{} }),
		polymorph.EnumCase(KindPurchase, func() Event { return &Purchase{} }),
	))
	if err != nil {
		panic("failed to register: " + err.Error())
	}
	conv := polymorph.NewConverter(reg)

	// The discriminator may come first or last, and may be given as the
	// enum ordinal or as its name
	in := []byte(`{"events": [
		{"user": "ada", "kind": 0},
		{"kind": "Purchase", "item": "tea", "cause": {"kind": 0, "user": "bob"}}
	]}`)

	var feed Feed
	if err := json.Unmarshal(in, &feed, conv.Options()); err != nil {
		panic("failed to unmarshal: " + err.Error())
	}
	for _, e := range feed.Events {
		fmt.Printf("%T: %s\n", e, e.Describe())
	}

	// Encoding writes each value with its own fields; the concrete types
	// already carry their discriminator
	b, err := json.Marshal(feed, conv.Options(), jsontext.WithIndent("  "))
	if err != nil {
		panic("failed to marshal: " + err.Error())
	}
	fmt.Println(string(b))

	// Output:
	// *polymorph_test.Login: ada logged in
	// *polymorph_test.Purchase: tea bought (after: bob logged in)
	// {
	//   "events": [
	//     {
	//       "kind": 0,
	//       "user": "ada"
	//     },
	//     {
	//       "kind": 1,
	//       "item": "tea",
	//       "cause": {
	//         "kind": 0,
	//         "user": "bob"
	//       }
	//     }
	//   ]
	// }
}

func Example_caseInsensitive() {
	reg := polymorph.NewRegistry()
	_ = reg.Register(polymorph.Declare[Event]("kind",
		polymorph.EnumCase(KindLogin, func() Event { return &Login{} }),
		polymorph.EnumCase(KindPurchase, func() Event { return &Purchase{} }),
	))
	conv := polymorph.NewConverter(reg)

	// With case-insensitive names, the discriminator property and the
	// concrete type's fields are matched the same way
	var e Event
	err := json.Unmarshal([]byte(`{"KIND": 1, "Item": "scone"}`), &e,
		conv.Options(),
		json.MatchCaseInsensitiveNames(true),
	)
	fmt.Println(e.Describe(), err)

	// Without it, the discriminator is not found
	var e2 Event
	err = json.Unmarshal([]byte(`{"KIND": 1, "Item": "scone"}`), &e2, conv.Options())
	var missing polymorph.ErrMissingDiscriminator
	fmt.Println(errors.As(err, &missing), missing.Property, e2 == nil)

	// Output:
	// scone bought <nil>
	// true kind true
}

func Example_unknownDiscriminator() {
	reg := polymorph.NewRegistry()
	_ = reg.Register(polymorph.Declare[Event]("kind",
		polymorph.EnumCase(KindLogin, func() Event { return &Login{} }),
	))
	conv := polymorph.NewConverter(reg)

	var e Event
	err := json.Unmarshal([]byte(`{"kind": 7}`), &e, conv.Options())

	var unresolved polymorph.ErrUnresolvedType
	fmt.Println(errors.As(err, &unresolved), unresolved.Value, e == nil)

	// Output:
	// true 7 true
}
