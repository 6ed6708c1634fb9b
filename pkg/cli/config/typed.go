package config

import (
	"bytes"
	"context"
	"sort"

	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// TypeKey names the implementation chosen in a selectable section
const TypeKey = "type"

// Section is a selectable configuration section: a "type" key naming one of
// the sibling blocks, each block holding one implementation's settings.
//
//	[publish]
//	type = "pypi"
//	[publish.pypi]
//	repository_url = "https://upload.pypi.org/legacy/"
type Section map[string]any

// Impl is one implementation that can be selected in a section
type Impl[T any] struct {
	Name string

	// NewConfig returns a pointer to a settings struct filled with defaults.
	// The block from the file is decoded over it.
	NewConfig func() any

	// Build creates the implementation from the decoded settings
	Build func(ctx context.Context, cfg any) (T, error)
}

// Registry holds the implementations selectable in one section
type Registry[T any] struct {
	section string
	impls   map[string]Impl[T]
}

// NewRegistry creates an empty registry for the named section
func NewRegistry[T any](section string) *Registry[T] {
	return &Registry[T]{
		section: section,
		impls:   make(map[string]Impl[T]),
	}
}

// Register adds an implementation
func (r *Registry[T]) Register(impl Impl[T]) *Registry[T] {
	r.impls[impl.Name] = impl
	return r
}

// Names returns the registered implementation names in sorted order
func (r *Registry[T]) Names() []string {
	names := make([]string, 0, len(r.impls))
	for name := range r.impls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Defaults returns a section listing every implementation's default block
// with an empty type, so that the operator has to choose one.
func (r *Registry[T]) Defaults() (Section, error) {
	sec := Section{TypeKey: ""}
	for _, name := range r.Names() {
		block, err := toMap(r.impls[name].NewConfig())
		if err != nil {
			return nil, goerr.Wrap(err, "failed to render default block",
				goerr.V("section", r.section),
				goerr.V("type", name),
			)
		}
		sec[name] = block
	}
	return sec, nil
}

// Resolve returns the selected implementation and its decoded settings
func (r *Registry[T]) Resolve(sec Section) (Impl[T], any, error) {
	var zero Impl[T]

	raw, ok := sec[TypeKey]
	if !ok {
		return zero, nil, r.errorf("section has no type", nil)
	}
	name, _ := raw.(string)
	if name == "" {
		return zero, nil, r.errorf("type is empty", raw)
	}

	block, ok := sec[name]
	if !ok {
		return zero, nil, r.errorf("no settings block for the selected type", name)
	}

	impl, ok := r.impls[name]
	if !ok {
		return zero, nil, goerr.New("no implementation for the selected type",
			goerr.V("section", r.section),
			goerr.V("type", name),
			goerr.V("available", r.Names()),
			goerr.T(types.ErrTagConfig),
		)
	}

	cfg := impl.NewConfig()
	if err := decodeBlock(block, cfg); err != nil {
		return zero, nil, goerr.Wrap(err, "invalid settings block",
			goerr.V("section", r.section),
			goerr.V("type", name),
			goerr.T(types.ErrTagConfig),
		)
	}

	return impl, cfg, nil
}

// Normalize returns the section reduced to the selected type with its block
// decoded over the defaults, i.e. the settings the implementation receives
func (r *Registry[T]) Normalize(sec Section) (Section, error) {
	impl, cfg, err := r.Resolve(sec)
	if err != nil {
		return nil, err
	}
	block, err := toMap(cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to render settings block",
			goerr.V("section", r.section),
			goerr.V("type", impl.Name),
		)
	}
	return Section{TypeKey: impl.Name, impl.Name: block}, nil
}

// Build resolves the section and creates the selected implementation
func (r *Registry[T]) Build(ctx context.Context, sec Section) (T, error) {
	impl, cfg, err := r.Resolve(sec)
	if err != nil {
		var zero T
		return zero, err
	}
	return impl.Build(ctx, cfg)
}

func (r *Registry[T]) errorf(msg string, value any) error {
	return goerr.New(msg,
		goerr.V("section", r.section),
		goerr.V("value", value),
		goerr.T(types.ErrTagConfig),
	)
}

// decodeBlock strictly decodes a generic block into dst. A block written as an
// empty table or left null keeps the defaults.
func decodeBlock(block, dst any) error {
	if block == nil {
		return nil
	}
	m, ok := block.(map[string]any)
	if !ok {
		return goerr.New("settings block must be a table", goerr.V("block", block))
	}

	data, err := toml.Marshal(pruneNil(m))
	if err != nil {
		return goerr.Wrap(err, "failed to encode settings block")
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return goerr.Wrap(err, "failed to decode settings block")
	}
	return nil
}

// pruneNil drops null values, which TOML cannot represent, as YAML input may carry them
func pruneNil(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case nil:
			continue
		case map[string]any:
			out[k] = pruneNil(val)
		default:
			out[k] = v
		}
	}
	return out
}

func toMap(v any) (map[string]any, error) {
	data, err := toml.Marshal(v)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode settings")
	}
	m := map[string]any{}
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, goerr.Wrap(err, "failed to decode settings")
	}
	return m, nil
}
