// Package config loads discriminator declarations from a declarative table.
//
// A table is a JSON document naming, for each abstract type, the property that
// carries its discriminator, the strategy that interprets it, and the concrete
// type selected by each enum member:
//
//	{
//	  "settings": {"case_insensitive": true},
//	  "types": [
//	    {
//	      "type": "shape",
//	      "property": "kind",
//	      "cases": [
//	        {"ordinal": 0, "name": "Circle", "concrete": "circle"},
//	        {"ordinal": 1, "name": "Square", "concrete": "square"}
//	      ]
//	    }
//	  ]
//	}
//
// Names in the table refer to types registered in a [Catalog]. Settings can be
// overridden with POLYMORPH_ environment variables, using a double underscore
// as the path separator (POLYMORPH_SETTINGS__STRICT_ENCODING=true).
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dhoelle/polymorph"
	"github.com/go-json-experiment/json"
	"github.com/go-logr/logr"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/knadh/koanf"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
)

// EnvPrefix is the prefix of environment variables overriding table values.
const EnvPrefix = "POLYMORPH_"

type (
	// Table is the declarative form of a set of discriminator declarations.
	Table struct {
		Settings Settings    `koanf:"settings"`
		Types    []TypeEntry `koanf:"types" validate:"dive"`
	}

	// Settings configure the converter built from a table.
	Settings struct {
		CaseInsensitive bool `koanf:"case_insensitive"`
		StrictEncoding  bool `koanf:"strict_encoding"`
		FoldEnumNames   bool `koanf:"fold_enum_names"`
	}

	// TypeEntry declares one abstract type.
	TypeEntry struct {
		Type     string      `koanf:"type" validate:"required"`
		Property string      `koanf:"property" validate:"required"`
		Strategy string      `koanf:"strategy"`
		Cases    []CaseEntry `koanf:"cases" validate:"required,min=1,dive"`
	}

	// CaseEntry maps an enum member to a concrete type.
	CaseEntry struct {
		Ordinal  *int64 `koanf:"ordinal"`
		Name     string `koanf:"name"`
		Concrete string `koanf:"concrete" validate:"required"`
	}

	// Setup is the result of building a table.
	Setup struct {
		Registry  *polymorph.Registry
		Converter *polymorph.Converter
		Options   json.Options
	}
)

// LoadFile reads a table from the JSON file at path.
func LoadFile(path string) (*Table, error) {
	return load(file.Provider(path))
}

// LoadBytes reads a table from JSON bytes.
func LoadBytes(b []byte) (*Table, error) {
	return load(rawbytes.Provider(b))
}

func load(p koanf.Provider) (*Table, error) {
	k := koanf.New(".")
	if err := k.Load(p, kjson.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load discriminator table: %w", err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	var t Table
	if err := k.UnmarshalWithConf("", &t, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to decode discriminator table: %w", err)
	}
	if err := getValidator().Struct(&t); err != nil {
		return nil, fmt.Errorf("invalid discriminator table: %w", err)
	}
	return &t, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Declarations resolves the names in t against cat. All unknown names are
// reported together.
func (t *Table) Declarations(cat *Catalog) ([]polymorph.Declaration, error) {
	var errs *multierror.Error
	decls := make([]polymorph.Declaration, 0, len(t.Types))
	for i, e := range t.Types {
		abs, ok := cat.abstract(e.Type)
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf("types[%d]: unknown abstract type %q", i, e.Type))
			continue
		}
		cases := make([]polymorph.Case, 0, len(e.Cases))
		for j, ce := range e.Cases {
			ct, ok := cat.concrete(ce.Concrete)
			if !ok {
				errs = multierror.Append(errs, fmt.Errorf("types[%d].cases[%d]: unknown concrete type %q", i, j, ce.Concrete))
				continue
			}
			if ct.Type != nil && !ct.Type.Implements(abs.typ) {
				errs = multierror.Append(errs, fmt.Errorf("types[%d].cases[%d]: %v does not implement %v", i, j, ct.Type, abs.typ))
				continue
			}
			c := polymorph.Case{Name: ce.Name, Concrete: ct}
			if ce.Ordinal != nil {
				c.Ordinal, c.HasOrdinal = *ce.Ordinal, true
			}
			cases = append(cases, c)
		}
		decl := abs.declare(e.Property, cases...)
		if e.Strategy != "" {
			decl = decl.WithStrategy(polymorph.StrategyKind(e.Strategy))
		}
		decls = append(decls, decl)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return decls, nil
}

// Setup registers the declarations of t in a new registry and returns it with
// a converter and the json options to decode and encode with.
func (t *Table) Setup(cat *Catalog, logger logr.Logger) (*Setup, error) {
	decls, err := t.Declarations(cat)
	if err != nil {
		return nil, err
	}
	reg := polymorph.NewRegistry(append(t.Settings.RegistryOptions(),
		polymorph.WithRegistryLogger(logger))...)
	if err := reg.Register(decls...); err != nil {
		return nil, err
	}
	conv := polymorph.NewConverter(reg, append(t.Settings.ConverterOptions(),
		polymorph.WithLogger(logger))...)
	return &Setup{
		Registry:  reg,
		Converter: conv,
		Options: json.JoinOptions(
			conv.Options(),
			json.MatchCaseInsensitiveNames(t.Settings.CaseInsensitive),
		),
	}, nil
}

// RegistryOptions returns the registry options implied by s.
func (s Settings) RegistryOptions() []polymorph.RegistryOption {
	var opts []polymorph.RegistryOption
	if s.FoldEnumNames {
		opts = append(opts, polymorph.UseStrategy(polymorph.EnumStrategyKind, polymorph.EnumStrategy{FoldNames: true}))
	}
	return opts
}

// ConverterOptions returns the converter options implied by s.
func (s Settings) ConverterOptions() []polymorph.ConverterOption {
	return []polymorph.ConverterOption{
		polymorph.WithStrictEncoding(s.StrictEncoding),
	}
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
