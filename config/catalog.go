package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/dhoelle/polymorph"
)

// Catalog names the Go types a [Table] may refer to. Abstract types and
// concrete constructors are registered from Go code at startup; the table
// then refers to them by name.
type Catalog struct {
	mu        sync.RWMutex
	abstracts map[string]abstractEntry
	concretes map[string]polymorph.ConcreteType
}

type abstractEntry struct {
	typ     reflect.Type
	declare func(property string, cases ...polymorph.Case) polymorph.Declaration
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		abstracts: map[string]abstractEntry{},
		concretes: map[string]polymorph.ConcreteType{},
	}
}

// Abstract registers interface type T under name.
//
// It panics if name is empty or already registered.
func Abstract[T any](c *Catalog, name string) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Interface {
		panic(fmt.Sprintf("%v is not an interface type", typ))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if name == "" {
		panic("abstract type name cannot be empty")
	}
	if _, ok := c.abstracts[name]; ok {
		panic(fmt.Sprintf("abstract type %q already registered", name))
	}
	c.abstracts[name] = abstractEntry{
		typ:     typ,
		declare: polymorph.Declare[T],
	}
}

// Concrete registers the constructor newFn under name.
//
// It panics if name is empty or already registered.
func Concrete[T any](c *Catalog, name string, newFn func() T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if name == "" {
		panic("concrete type name cannot be empty")
	}
	if _, ok := c.concretes[name]; ok {
		panic(fmt.Sprintf("concrete type %q already registered", name))
	}
	c.concretes[name] = polymorph.TagCase(name, newFn).Concrete
}

func (c *Catalog) abstract(name string) (abstractEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.abstracts[name]
	return a, ok
}

func (c *Catalog) concrete(name string) (polymorph.ConcreteType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ct, ok := c.concretes[name]
	return ct, ok
}
