package typefields

import (
	"context"
	"maps"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-polyfields/pkg/fieldconfig"
	"github.com/goliatone/go-polyfields/pkg/form"
	"github.com/goliatone/go-polyfields/pkg/model"
)

// GuardFunc authorises a request before any lookup. A non-nil error is
// answered with its HTTPError status, or 403 otherwise.
type GuardFunc func(r *http.Request) error

// LoaderFunc loads an existing record of type t for the edit endpoint.
type LoaderFunc func(ctx context.Context, t model.Type, id int64) (model.Record, error)

// TypeSource resolves URL segments to types. *model.Registry satisfies it.
type TypeSource interface {
	ByRoute(segment string, overrides map[string]string) (model.Type, bool)
}

// FieldSource returns the field definitions of a type. *fieldconfig.Store
// satisfies it.
type FieldSource interface {
	Type(name string) (fieldconfig.Type, bool)
}

// Options configure the type fields handler. The zero values of RoutePath
// and NameParam are replaced by the defaults.
type Options struct {
	RoutePath string
	NameParam string
	Guard     GuardFunc
	Loader    LoaderFunc
	Types     TypeSource
	Fields    FieldSource
	TypePaths map[string]string
	Logger    *zap.Logger

	FormOptions []form.Option
}

// OptionFn mutates Options.
type OptionFn func(*Options)

// DefaultOptions mounts under "/admin", reads the group name from the "name"
// query parameter and logs nowhere.
func DefaultOptions() Options {
	return Options{
		RoutePath: "/admin",
		NameParam: "name",
		Logger:    zap.NewNop(),
	}
}

// NewOptions applies fns over DefaultOptions, skipping nil entries, and
// restores defaults that were cleared.
func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = "/admin"
	}
	if opts.NameParam == "" {
		opts.NameParam = "name"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.TypePaths != nil {
		opts.TypePaths = maps.Clone(opts.TypePaths)
	}
	if opts.FormOptions != nil {
		opts.FormOptions = append([]form.Option{}, opts.FormOptions...)
	}
	return opts
}

// WithRoutePath sets the path prefix the endpoints live under. It should
// match the renderer's path_prefix.
func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

// WithNameParam sets the query parameter holding the field name root.
func WithNameParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.NameParam = name
	}
}

// WithGuard installs a request guard.
func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

// WithLoader sets the record loader used by the edit endpoint.
func WithLoader(loader LoaderFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Loader = loader
	}
}

// WithTypes sets the URL segment resolver.
func WithTypes(types TypeSource) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Types = types
	}
}

// WithFields sets the per-type field definitions.
func WithFields(fields FieldSource) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Fields = fields
	}
}

// WithTypePaths mirrors the renderer's type_paths overrides.
func WithTypePaths(paths map[string]string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.TypePaths = maps.Clone(paths)
	}
}

// WithLogger sets the logger; nil keeps a no-op logger.
func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

// WithFormOptions appends options passed to every form the handler builds.
func WithFormOptions(options ...form.Option) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.FormOptions = append(o.FormOptions, options...)
	}
}
