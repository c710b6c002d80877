package gotemplate

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-polyfields/pkg/render/template"
)

// Option configures the adapter before construction.
type Option func(*config)

type config struct {
	templates  fs.FS
	extension  string
	globalData map[string]any
	library    []gotemplatepkg.Option
}

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the ".tmpl" extension appended to template names.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.extension = ext
	}
}

// WithGlobalData seeds values visible to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		for key, value := range data {
			if key = strings.TrimSpace(key); key == "" {
				continue
			}
			if cfg.globalData == nil {
				cfg.globalData = make(map[string]any, len(data))
			}
			cfg.globalData[key] = value
		}
	}
}

// WithGoTemplateOptions forwards options to the go-template engine built by
// NewGoTemplate. They are applied after the adapter's own settings. New
// ignores them.
func WithGoTemplateOptions(opts ...gotemplatepkg.Option) Option {
	return func(cfg *config) {
		for _, opt := range opts {
			if opt != nil {
				cfg.library = append(cfg.library, opt)
			}
		}
	}
}

func newConfig(options []Option) (config, error) {
	cfg := config{extension: ".tmpl"}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templates == nil {
		return cfg, errors.New("gotemplate: templates fs.FS is required")
	}
	return cfg, nil
}

var _ template.TemplateRenderer = (*gotemplatepkg.Engine)(nil)

// NewGoTemplate builds a go-template engine over the same templates, extension
// and global data as New, with the attrs filter installed. go-template
// converts template data through JSON, so values reach templates as plain
// maps, strings, float64 and bool. Use it when callers need go-template
// features such as render hooks.
func NewGoTemplate(options ...Option) (*gotemplatepkg.Engine, error) {
	cfg, err := newConfig(options)
	if err != nil {
		return nil, err
	}

	opts := []gotemplatepkg.Option{
		gotemplatepkg.WithFS(cfg.templates),
		gotemplatepkg.WithExtension(cfg.extension),
		gotemplatepkg.WithTemplateFunc(map[string]any{"attrs": filterAttrs}),
	}
	if len(cfg.globalData) > 0 {
		opts = append(opts, gotemplatepkg.WithGlobalData(cfg.globalData))
	}
	opts = append(opts, cfg.library...)

	engine, err := gotemplatepkg.NewRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: configure go-template engine: %w", err)
	}
	return engine, nil
}

// Engine renders input templates through a pongo2 template set. Parsed
// templates are cached by path.
type Engine struct {
	mu     sync.RWMutex
	set    *pongo2.TemplateSet
	cache  map[string]*pongo2.Template
	suffix string
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an Engine over the templates given with WithFS.
func New(options ...Option) (*Engine, error) {
	cfg, err := newConfig(options)
	if err != nil {
		return nil, err
	}

	registerFilters()
	engine := &Engine{
		set:    pongo2.NewSet("polyfields", pongo2.NewFSLoader(cfg.templates)),
		cache:  make(map[string]*pongo2.Template),
		suffix: cfg.extension,
	}
	if err := engine.GlobalContext(cfg.globalData); err != nil {
		return nil, err
	}
	return engine, nil
}

// RenderTemplate renders the template stored under name (the extension is
// optional) and copies the result to every writer in out.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	if !strings.HasSuffix(name, e.suffix) {
		name += e.suffix
	}
	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	return e.execute(tmpl, data, name, out)
}

// RenderString parses src and renders it once.
func (e *Engine) RenderString(src string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	tmpl, err := e.set.FromString(src)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse template string: %w", err)
	}
	return e.execute(tmpl, data, "template string", out)
}

// RegisterFilter adds a named filter. pongo2 keeps filters in a process-wide
// table, so a name can only be registered once.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		result, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// GlobalContext merges data into the values every template sees.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.set == nil {
		return errors.New("gotemplate: engine is nil")
	}
	if data == nil {
		return nil
	}
	ctx, err := toContext(data)
	if err != nil {
		return fmt.Errorf("gotemplate: global context: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set.Globals == nil {
		e.set.Globals = make(pongo2.Context, len(ctx))
	}
	e.set.Globals.Update(ctx)
	return nil
}

func (e *Engine) lookup(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[name]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load template %q: %w", name, err)
	}
	e.cache[name] = tmpl
	return tmpl, nil
}

func (e *Engine) execute(tmpl *pongo2.Template, data any, label string, out []io.Writer) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: %s: %w", label, err)
	}

	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(ctx, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute %s: %w", label, err)
	}

	rendered := buf.String()
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

// toContext accepts the map shapes the form builder produces. Nested values
// are handed to pongo2 untouched; it resolves maps, slices and exported
// struct fields itself.
func toContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return v, nil
	case map[string]any:
		ctx := make(pongo2.Context, len(v))
		for key, value := range v {
			if key = strings.TrimSpace(key); key != "" {
				ctx[key] = value
			}
		}
		return ctx, nil
	case map[string]string:
		ctx := make(pongo2.Context, len(v))
		for key, value := range v {
			if key = strings.TrimSpace(key); key != "" {
				ctx[key] = value
			}
		}
		return ctx, nil
	default:
		return nil, fmt.Errorf("template data must be a map, got %T", data)
	}
}

var filtersOnce sync.Once

func registerFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("attrs") {
			_ = pongo2.RegisterFilter("attrs", filterAttrs)
		}
	})
}

// filterAttrs renders a map as ` name="value"` pairs sorted by name. Values
// are escaped and the result is marked safe.
func filterAttrs(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var attrs map[string]string
	switch v := in.Interface().(type) {
	case map[string]any:
		attrs = make(map[string]string, len(v))
		for key, value := range v {
			attrs[key] = fmt.Sprint(value)
		}
	case map[string]string:
		attrs = v
	}

	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		if strings.TrimSpace(key) != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteByte(' ')
		b.WriteString(html.EscapeString(key))
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(attrs[key]))
		b.WriteByte('"')
	}
	return pongo2.AsSafeValue(b.String()), nil
}
