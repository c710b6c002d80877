package form

import (
	"errors"
	"fmt"
	"html"
	"io"
	"io/fs"
	"maps"
	"sort"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-polyfields/pkg/model"
	rendertemplate "github.com/goliatone/go-polyfields/pkg/render/template"
	"github.com/goliatone/go-polyfields/pkg/render/template/gotemplate"
)

// ErrNilRecord reports a nil entry in the records handed to FieldsFor.
var ErrNilRecord = errors.New("form: nil record")

// Context is the capability set a nested-fields helper needs from the form it
// renders into: the owning object, one nested group per record, and the
// output stream of the enclosing template when it is streaming.
type Context interface {
	Object() model.Owner
	FieldsFor(name string, records []model.Record, opts NestedOptions, fn GroupFunc) (string, error)
	// Stream returns the writer the enclosing template is streaming to, or nil.
	Stream() io.Writer
}

// GroupFunc renders the inputs of one nested group into b.
type GroupFunc func(b *Builder) error

// NestedOptions control how FieldsFor wraps each group.
type NestedOptions struct {
	// Class replaces the default "inputs" fieldset class.
	Class string
	// ChildIndex replaces the positional index in field names (e.g. a
	// placeholder token substituted client side).
	ChildIndex string
	// Wrapped wraps each fieldset in an <li>, for groups emitted inside an
	// existing input list.
	Wrapped bool
	// Attributes are extra fieldset attributes.
	Attributes map[string]string
}

// Option configures a Form.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	partials         map[string]string
	stream           io.Writer
	engine           Engine
}

// Engine names a built-in template engine.
type Engine string

const (
	// EnginePongo2 renders through the package's own pongo2 template set.
	EnginePongo2 Engine = "pongo2"
	// EngineGoTemplate renders through a go-template engine.
	EngineGoTemplate Engine = "go-template"
)

// ErrUnknownEngine reports an engine name ParseEngine does not know.
var ErrUnknownEngine = errors.New("form: unknown template engine")

// ParseEngine resolves an engine name. Empty selects EnginePongo2.
func ParseEngine(name string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(name))) {
	case "", EnginePongo2:
		return EnginePongo2, nil
	case EngineGoTemplate, "gotemplate":
		return EngineGoTemplate, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

// WithEngine selects the built-in engine used when no renderer is injected.
func WithEngine(engine Engine) Option {
	return func(cfg *config) {
		cfg.engine = engine
	}
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithPartial overrides the template used for a partial key such as
// "forms.select".
func WithPartial(key, template string) Option {
	return func(cfg *config) {
		key = strings.TrimSpace(key)
		if key == "" {
			return
		}
		if cfg.partials == nil {
			cfg.partials = make(map[string]string)
		}
		cfg.partials[key] = strings.TrimSpace(template)
	}
}

// WithTheme applies the partial overrides of a go-theme renderer config.
func WithTheme(themeCfg *theme.RendererConfig) Option {
	return func(cfg *config) {
		if themeCfg == nil {
			return
		}
		for _, key := range PartialKeys() {
			if candidate := strings.TrimSpace(themeCfg.Partials[key]); candidate != "" {
				if cfg.partials == nil {
					cfg.partials = make(map[string]string)
				}
				cfg.partials[key] = candidate
			}
		}
	}
}

// WithStream marks the form as streaming into w.
func WithStream(w io.Writer) Option {
	return func(cfg *config) {
		cfg.stream = w
	}
}

// Form is the root form-building context bound to one owning object.
type Form struct {
	object     model.Owner
	objectName string
	templates  rendertemplate.TemplateRenderer
	partials   map[string]string
	stream     io.Writer
}

var _ Context = (*Form)(nil)

// New builds a form for object. objectName is the parameter root used in
// field names ("page" -> "page[sections_attributes][0][title]"). object may be
// nil for forms that only render standalone builders.
func New(object model.Owner, objectName string, options ...Option) (*Form, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := newEngine(cfg)
		if err != nil {
			return nil, fmt.Errorf("form: configure template renderer: %w", err)
		}
		renderer = engine
	}

	if model.IsNil(object) {
		object = nil
	}

	return &Form{
		object:     object,
		objectName: strings.TrimSpace(objectName),
		templates:  renderer,
		partials:   maps.Clone(cfg.partials),
		stream:     cfg.stream,
	}, nil
}

func (f *Form) Object() model.Owner {
	return f.object
}

func (f *Form) Stream() io.Writer {
	return f.stream
}

// ObjectName returns the parameter root of the form.
func (f *Form) ObjectName() string {
	return f.objectName
}

// BuilderFor returns a builder for rec whose field names are rooted at name.
func (f *Form) BuilderFor(name string, rec model.Record) *Builder {
	return &Builder{form: f, object: rec, name: strings.TrimSpace(name)}
}

// FieldsFor renders one group per record under "<name>_attributes". Persisted
// records get a hidden id input appended to their group.
func (f *Form) FieldsFor(name string, records []model.Record, opts NestedOptions, fn GroupFunc) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("form: nested association name is required")
	}
	if fn == nil {
		return "", fmt.Errorf("form: group function for %q is nil", name)
	}

	var out strings.Builder
	for i, rec := range records {
		index := strconv.Itoa(i)
		if opts.ChildIndex != "" {
			index = opts.ChildIndex
		}
		if model.IsNil(rec) {
			return "", fmt.Errorf("form: render %s[%s]: %w", name, index, ErrNilRecord)
		}

		b := &Builder{
			form:   f,
			object: rec,
			name:   f.nestedPrefix(name, index),
			index:  index,
		}
		if err := fn(b); err != nil {
			return "", fmt.Errorf("form: render %s[%s]: %w", name, index, err)
		}
		if id, ok := rec.ID(); ok {
			if err := b.Input("id", InputOptions{As: Hidden, Value: id}); err != nil {
				return "", fmt.Errorf("form: render %s[%s] id: %w", name, index, err)
			}
		}

		out.WriteString(wrapGroup(b.String(), opts))
	}
	return out.String(), nil
}

func newEngine(cfg config) (rendertemplate.TemplateRenderer, error) {
	options := []gotemplate.Option{
		gotemplate.WithFS(cfg.templateFS),
		gotemplate.WithExtension(".tmpl"),
	}
	switch cfg.engine {
	case "", EnginePongo2:
		engine, err := gotemplate.New(options...)
		if err != nil {
			return nil, err
		}
		return engine, nil
	case EngineGoTemplate:
		engine, err := gotemplate.NewGoTemplate(options...)
		if err != nil {
			return nil, err
		}
		return engine, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.engine)
	}
}

func (f *Form) nestedPrefix(name, index string) string {
	attr := name + "_attributes"
	if f.objectName == "" {
		return attr + "[" + index + "]"
	}
	return f.objectName + "[" + attr + "][" + index + "]"
}

func wrapGroup(body string, opts NestedOptions) string {
	class := strings.TrimSpace(opts.Class)
	if class == "" {
		class = "inputs"
	}

	var builder strings.Builder
	builder.Grow(len(body) + 128)

	if opts.Wrapped {
		builder.WriteString(`<li class="input">`)
	}
	builder.WriteString(`<fieldset class="`)
	builder.WriteString(html.EscapeString(class))
	builder.WriteString(`"`)

	keys := make([]string, 0, len(opts.Attributes))
	for key := range opts.Attributes {
		if key = strings.TrimSpace(key); key != "" && key != "class" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		builder.WriteByte(' ')
		builder.WriteString(html.EscapeString(key))
		builder.WriteString(`="`)
		builder.WriteString(html.EscapeString(opts.Attributes[key]))
		builder.WriteString(`"`)
	}

	builder.WriteString(`><ol>`)
	builder.WriteString(body)
	builder.WriteString(`</ol></fieldset>`)
	if opts.Wrapped {
		builder.WriteString(`</li>`)
	}
	return builder.String()
}
