package env

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"gopkg.in/yaml.v3"
)

// ErrInvalidOptions wraps every option decoding or validation failure.
var ErrInvalidOptions = errors.New("env: invalid options")

var (
	validate      = validator.New()
	schemaDecoder = schema.NewDecoder()
)

// Options is the fixed set of checker options. Boolean flags are pointers
// so that an explicit false survives merging with the defaults (merges
// run WithoutDereference); use the accessor methods to read them.
type Options struct {
	Target              string   `yaml:"target,omitempty" schema:"target" validate:"omitempty,oneof=es5 es2015 es2016 es2017 es2018 es2019 es2020 esnext"`
	Lib                 []string `yaml:"lib,omitempty" schema:"lib" validate:"omitempty,dive,oneof=es5 es2015 es2016 es2017 es2019 dom"`
	ModuleResolution    string   `yaml:"moduleResolution,omitempty" schema:"moduleResolution" validate:"omitempty,oneof=classic node"`
	Extensions          []string `yaml:"extensions,omitempty" schema:"extensions" validate:"omitempty,dive,startswith=."`
	StrictNullChecks    *bool    `yaml:"strictNullChecks,omitempty" schema:"strictNullChecks"`
	StrictFunctionTypes *bool    `yaml:"strictFunctionTypes,omitempty" schema:"strictFunctionTypes"`
	NoImplicitAny       *bool    `yaml:"noImplicitAny,omitempty" schema:"noImplicitAny"`
}

// Bool returns a pointer to v, for building Options literals.
func Bool(v bool) *bool { return &v }

// DefaultOptions mirrors a strict project targeting es2019.
func DefaultOptions() Options {
	return Options{
		Target:              "es2019",
		ModuleResolution:    "node",
		Extensions:          []string{".ts", ".tsx", ".d.ts"},
		StrictNullChecks:    Bool(true),
		StrictFunctionTypes: Bool(true),
		NoImplicitAny:       Bool(true),
	}
}

func flag(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func (o Options) StrictNullChecksEnabled() bool    { return flag(o.StrictNullChecks, true) }
func (o Options) StrictFunctionTypesEnabled() bool { return flag(o.StrictFunctionTypes, true) }
func (o Options) NoImplicitAnyEnabled() bool       { return flag(o.NoImplicitAny, true) }

var targetLibs = map[string][]string{
	"es5":    {"es5", "dom"},
	"es2015": {"es5", "es2015", "dom"},
	"es2016": {"es5", "es2015", "es2016", "dom"},
	"es2017": {"es5", "es2015", "es2016", "es2017", "dom"},
	"es2018": {"es5", "es2015", "es2016", "es2017", "dom"},
	"es2019": {"es5", "es2015", "es2016", "es2017", "es2019", "dom"},
	"es2020": {"es5", "es2015", "es2016", "es2017", "es2019", "dom"},
	"esnext": {"es5", "es2015", "es2016", "es2017", "es2019", "dom"},
}

// Libs returns the library sets in effect: the explicit Lib list, or the
// default set implied by Target.
func (o Options) Libs() []string {
	if len(o.Lib) > 0 {
		return o.Lib
	}
	if libs, ok := targetLibs[o.Target]; ok {
		return libs
	}
	return targetLibs["es2019"]
}

// Validate checks the enumerated fields.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		var valErrs validator.ValidationErrors
		if errors.As(err, &valErrs) {
			msgs := make([]string, 0, len(valErrs))
			for _, ve := range valErrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", ve.Namespace(), ve.Tag(), ve.Param()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidOptions, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return nil
}

// ParseOptions decodes a YAML (or JSON) options document, fills unset
// fields from DefaultOptions and validates the result.
func ParseOptions(data []byte) (Options, error) {
	var opts Options
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("%w: decode: %v", ErrInvalidOptions, err)
	}
	if err := mergo.Merge(&opts, DefaultOptions(), mergo.WithoutDereference); err != nil {
		return Options{}, fmt.Errorf("%w: merge defaults: %v", ErrInvalidOptions, err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// ApplyOverrides decodes `key=value` pairs (as given to the CLI's -O
// flag) and lays them over opts.
func ApplyOverrides(opts Options, values url.Values) (Options, error) {
	if len(values) == 0 {
		return opts, nil
	}
	var over Options
	if err := schemaDecoder.Decode(&over, values); err != nil {
		return Options{}, fmt.Errorf("%w: overrides: %v", ErrInvalidOptions, err)
	}
	if err := mergo.Merge(&opts, over, mergo.WithOverride, mergo.WithoutDereference); err != nil {
		return Options{}, fmt.Errorf("%w: overrides: %v", ErrInvalidOptions, err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// ParseOverrides turns `key=value` strings into url.Values.
func ParseOverrides(pairs []string) (url.Values, error) {
	values := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: override %q is not key=value", ErrInvalidOptions, pair)
		}
		for _, v := range strings.Split(value, ",") {
			values.Add(key, v)
		}
	}
	return values, nil
}
