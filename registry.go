package polymorph

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/go-logr/logr"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
)

// Provider answers whether a type is polymorphic and hands out its [Context].
type Provider interface {
	HasStrategy(t reflect.Type) bool
	Context(t reflect.Type) (*Context, error)
}

// RegistryOption configures a [Registry].
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used by the registry.
func WithRegistryLogger(logger logr.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger.WithName("registry")
	}
}

// UseStrategy makes s available to declarations naming kind, replacing any
// strategy previously registered under the same kind.
func UseStrategy(kind StrategyKind, s Strategy) RegistryOption {
	return func(r *Registry) {
		r.strategies[kind] = s
	}
}

// Registry is the [Provider] backed by explicit declarations. Contexts are
// built on first use and cached for the lifetime of the registry.
//
// Declarations are expected to be registered at startup. Lookups are safe for
// concurrent use, and concurrent first lookups of a type converge on a single
// Context.
type Registry struct {
	mu         sync.RWMutex
	decls      map[reflect.Type]Declaration
	strategies map[StrategyKind]Strategy
	contexts   sync.Map // reflect.Type -> *Context
	logger     logr.Logger
}

// NewRegistry returns an empty Registry with the enum and tag strategies
// available.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		decls: map[reflect.Type]Declaration{},
		strategies: map[StrategyKind]Strategy{
			EnumStrategyKind: EnumStrategy{},
			TagStrategyKind:  TagStrategy{},
		},
		logger: logr.Discard(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register adds decls to the registry. Either every declaration is accepted
// or none is.
//
// Registering a declaration identical to one already present is a no-op.
// Registering a different declaration for an already declared type fails with
// [ErrConflictingDeclaration].
func (r *Registry) Register(decls ...Declaration) error {
	var errs *multierror.Error
	for _, d := range decls {
		if err := validateDeclaration(d); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pending := map[reflect.Type]Declaration{}
	for _, d := range decls {
		if _, ok := r.strategies[d.Strategy]; !ok {
			errs = multierror.Append(errs, fmt.Errorf("invalid declaration for %v: %w", d.Abstract, ErrUnknownStrategy{Kind: d.Strategy}))
			continue
		}
		prev, ok := r.decls[d.Abstract]
		if !ok {
			prev, ok = pending[d.Abstract]
		}
		if ok {
			if !sameMetadata(prev.Metadata, d.Metadata) {
				errs = multierror.Append(errs, ErrConflictingDeclaration{Type: d.Abstract})
			}
			continue
		}
		pending[d.Abstract] = d
	}
	if err := errs.ErrorOrNil(); err != nil {
		return err
	}

	for t, d := range pending {
		r.decls[t] = d
		r.logger.V(1).Info("registered discriminator",
			"type", t.String(),
			"property", d.Property,
			"strategy", string(d.Strategy),
			"cases", len(d.Cases))
	}
	return nil
}

// Metadata returns the declaration for t. If t is a pointer to a declared
// type, the declaration of the pointed-to type is returned.
func (r *Registry) Metadata(t reflect.Type) (Metadata, bool) {
	d, ok := r.declaration(t)
	return d.Metadata, ok
}

// HasStrategy reports whether t is declared polymorphic.
func (r *Registry) HasStrategy(t reflect.Type) bool {
	_, ok := r.declaration(t)
	return ok
}

// Context returns the cached Context for t, building it on first use.
func (r *Registry) Context(t reflect.Type) (*Context, error) {
	if t == nil {
		return nil, ErrMissingContext{}
	}
	if v, ok := r.contexts.Load(t); ok {
		return v.(*Context), nil
	}

	d, ok := r.declaration(t)
	if !ok {
		return nil, ErrMissingContext{Type: t}
	}
	r.mu.RLock()
	s, ok := r.strategies[d.Strategy]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownStrategy{Kind: d.Strategy}
	}

	ctx := NewContext(d.Metadata, d.Abstract, s)
	actual, loaded := r.contexts.LoadOrStore(t, ctx)
	if !loaded {
		r.logger.V(1).Info("created polymorphism context",
			"type", t.String(),
			"abstract", d.Abstract.String(),
			"property", d.Property)
	}
	return actual.(*Context), nil
}

// Declarations returns the registered declarations ordered by type name.
func (r *Registry) Declarations() []Declaration {
	r.mu.RLock()
	decls := make([]Declaration, 0, len(r.decls))
	for _, d := range r.decls {
		decls = append(decls, d)
	}
	r.mu.RUnlock()
	sort.Slice(decls, func(i, j int) bool {
		return decls[i].Abstract.String() < decls[j].Abstract.String()
	})
	return decls
}

// Types returns the declared abstract types ordered by name.
func (r *Registry) Types() []reflect.Type {
	decls := r.Declarations()
	types := make([]reflect.Type, len(decls))
	for i, d := range decls {
		types[i] = d.Abstract
	}
	return types
}

func (r *Registry) declaration(t reflect.Type) (Declaration, bool) {
	if t == nil {
		return Declaration{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.decls[t]; ok {
		return d, true
	}
	if t.Kind() == reflect.Ptr {
		d, ok := r.decls[t.Elem()]
		return d, ok
	}
	return Declaration{}, false
}

var (
	validatorInstance *validator.Validate
	validatorOnce     sync.Once
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInstance = validator.New()
	})
	return validatorInstance
}

func validateDeclaration(d Declaration) error {
	var errs *multierror.Error
	switch {
	case d.Abstract == nil:
		errs = multierror.Append(errs, errors.New("abstract type is required"))
	case d.Abstract.Kind() != reflect.Interface:
		errs = multierror.Append(errs, fmt.Errorf("%v is not an interface type", d.Abstract))
	}
	if err := getValidator().Struct(d.Metadata); err != nil {
		errs = multierror.Append(errs, err)
	}

	ordinals := map[int64]int{}
	names := map[string]int{}
	for i, c := range d.Cases {
		if c.Concrete.New != nil && c.Concrete.Type == nil {
			errs = multierror.Append(errs, fmt.Errorf("case %d: constructor returned nil", i))
		}
		if c.HasOrdinal {
			if j, ok := ordinals[c.Ordinal]; ok {
				errs = multierror.Append(errs, fmt.Errorf("case %d: ordinal %d already used by case %d", i, c.Ordinal, j))
			} else {
				ordinals[c.Ordinal] = i
			}
		} else if c.Name == "" {
			errs = multierror.Append(errs, fmt.Errorf("case %d: needs an ordinal or a name", i))
		}
		if c.Name != "" {
			if j, ok := names[c.Name]; ok {
				errs = multierror.Append(errs, fmt.Errorf("case %d: name %q already used by case %d", i, c.Name, j))
			} else {
				names[c.Name] = i
			}
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("invalid declaration for %v: %w", d.Abstract, err)
	}
	return nil
}
