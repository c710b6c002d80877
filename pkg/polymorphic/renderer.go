package polymorphic

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-polyfields/pkg/form"
	"github.com/goliatone/go-polyfields/pkg/model"
	"github.com/goliatone/go-polyfields/pkg/render"
)

// Translation keys.
const (
	KeyHasManyNew    = "polymorphic.has_many_new"
	KeyHasManyRemove = "polymorphic.has_many_remove"
	KeyHasManyDelete = "polymorphic.has_many_delete"
	KeyMove          = "polymorphic.move"
)

const (
	fieldsClass    = "polymorphic_has_many_fields has_many_fields"
	containerClass = "polymorphic_has_many_container"
	selectClass    = "polymorphic_type_select"
	deleteClass    = "polymorphic_has_many_delete"
	addClass       = "button polymorphic_has_many_add"
	removeClass    = "button polymorphic_has_many_remove"
	destroyAttr    = "_destroy"
)

// FieldsFunc renders the caller's fields of one group. index is the zero
// based row index, nil for the "add new" template.
type FieldsFunc func(b *form.Builder, index *int) error

// Renderer renders polymorphic has-many associations. It holds no per-call
// state and is safe for concurrent use.
type Renderer struct {
	translator render.Translator
	onMissing  render.MissingTranslationHandler
	locale     string
	logger     *zap.Logger
	sanitizer  *bluemonday.Policy
}

// New constructs a Renderer.
func New(options ...Option) *Renderer {
	cfg := config{logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return &Renderer{
		translator: cfg.translator,
		onMissing:  cfg.onMissing,
		locale:     cfg.locale,
		logger:     cfg.logger,
		sanitizer:  cfg.sanitizer,
	}
}

// Render produces the fragment for association assoc of the form's object.
// slot is the base name of the <slot>_id / <slot>_type discriminator pair.
// Configuration errors are returned before any markup is produced. When the
// form is streaming, the fragment is also written to its stream.
func (r *Renderer) Render(ctx context.Context, fc form.Context, assoc, slot string, cfg Config, fields FieldsFunc) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if fc == nil {
		return "", errors.New("polymorphic: form context is required")
	}

	assoc = strings.TrimSpace(assoc)
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return "", configError("render", assoc, errors.New("polymorphic slot name is required"))
	}

	owner := fc.Object()
	if model.IsNil(owner) {
		return "", configError("reflect association", assoc, ErrUnknownAssociation)
	}
	association, ok := owner.Association(assoc)
	if !ok {
		return "", configError("reflect association", assoc, ErrUnknownAssociation)
	}

	cfg = cfg.normalized()
	if err := cfg.AllowDestroy.validate(); err != nil {
		return "", configError("validate", KeyAllowDestroy, err)
	}

	call := &renderCall{
		renderer: r,
		ctx:      ctx,
		fc:       fc,
		assoc:    assoc,
		slot:     slot,
		target:   targetType(association.Target, assoc),
		cfg:      cfg,
		fields:   fields,
	}
	return call.run(association.Records)
}

// renderCall carries the state of a single Render invocation.
type renderCall struct {
	renderer *Renderer
	ctx      context.Context
	fc       form.Context
	assoc    string
	slot     string
	target   model.Type
	cfg      Config
	fields   FieldsFunc

	warnedEmptyTypes bool
}

func (c *renderCall) run(records []model.Record) (string, error) {
	heading := c.heading()
	if c.cfg.Sortable != "" {
		records = sortRecords(records, c.cfg.Sortable)
	}

	name := strings.TrimSpace(c.cfg.Options["for"])
	if name == "" {
		name = c.assoc
	}
	class := joinClasses(c.cfg.Options["class"], fieldsClass)

	var body strings.Builder
	if heading != "" {
		body.WriteString("<h3>")
		body.WriteString(html.EscapeString(heading))
		body.WriteString("</h3>")
	}

	groups, err := c.fc.FieldsFor(name, records, form.NestedOptions{
		Class:      class,
		Wrapped:    false,
		Attributes: c.passThroughAttributes(),
	}, c.group)
	if err != nil {
		return "", c.wrapErr(err)
	}
	body.WriteString(groups)

	if c.cfg.NewRecord.Enabled() {
		link, err := c.addLink(name, class)
		if err != nil {
			return "", c.wrapErr(err)
		}
		body.WriteString(link)
	}

	fragment := c.container(body.String())

	if w := c.fc.Stream(); w != nil {
		if _, err := io.WriteString(w, fragment); err != nil {
			return "", fmt.Errorf("polymorphic: write %s fragment: %w", c.assoc, err)
		}
	}

	c.renderer.logger.Debug("polymorphic association rendered",
		zap.String("association", c.assoc),
		zap.String("slot", c.slot),
		zap.Int("rows", len(records)),
		zap.String("sortable", c.cfg.Sortable),
		zap.Bool("new_record", c.cfg.NewRecord.Enabled()),
	)
	return fragment, nil
}

func (c *renderCall) wrapErr(err error) error {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("polymorphic: render %s: %w", c.assoc, err)
}

// heading resolves the section heading. The default is only looked up when
// the caller neither supplied nor suppressed one.
func (c *renderCall) heading() string {
	h := c.cfg.Heading
	switch h.mode {
	case headingNone:
		return ""
	case headingText:
		return strings.TrimSpace(h.text)
	}
	return c.translate("models."+c.target.Singular()+".other", c.target.HumanPlural())
}

func (c *renderCall) passThroughAttributes() map[string]string {
	attrs := make(map[string]string, len(c.cfg.Options))
	for key, value := range c.cfg.Options {
		if key == "class" || key == "for" {
			continue
		}
		attrs[key] = value
	}
	return attrs
}

// group renders one nested group: discriminator inputs, caller fields,
// actions and sort controls.
func (c *renderCall) group(b *form.Builder) error {
	if err := c.ctx.Err(); err != nil {
		return err
	}
	rec := b.Object()

	var index *int
	if i, ok := b.Index(); ok {
		index = &i
	}

	if err := b.Input(c.slot+"_id", form.InputOptions{As: form.Hidden}); err != nil {
		return err
	}
	if err := c.typeInput(b, rec); err != nil {
		return err
	}

	if c.fields != nil {
		markup, err := b.Capture(func(child *form.Builder) error {
			return c.fields(child, index)
		})
		if err != nil {
			return err
		}
		b.Concat(form.SanitizeFields(c.renderer.sanitizer, markup))
	}

	return c.actions(b, rec)
}

func (c *renderCall) typeInput(b *form.Builder, rec model.Record) error {
	attr := c.slot + "_type"
	target := model.TargetOf(rec, c.slot)
	if target != nil {
		return b.Input(attr, form.InputOptions{
			As:        form.Hidden,
			InputHTML: map[string]string{"data-path": EditPath(c.cfg.PathPrefix, target, c.cfg.TypePaths)},
		})
	}

	if len(c.cfg.Types) == 0 && !c.warnedEmptyTypes {
		c.warnedEmptyTypes = true
		c.renderer.logger.Warn("polymorphic type selector has no types",
			zap.String("association", c.assoc),
			zap.String("slot", c.slot),
		)
	}

	choices := make([]form.Choice, 0, len(c.cfg.Types))
	for _, t := range c.cfg.Types {
		choices = append(choices, form.Choice{
			Label: c.translate("models."+t.Singular()+".one", t.Human()),
			Value: t.Name,
			Attrs: map[string]string{"data-path": NewPath(c.cfg.PathPrefix, t.Name, c.cfg.TypePaths)},
		})
	}
	return b.Input(attr, form.InputOptions{
		As:        form.Select,
		Choices:   choices,
		InputHTML: map[string]string{"class": selectClass},
	})
}

func (c *renderCall) actions(b *form.Builder, rec model.Record) error {
	if !model.Persisted(rec) {
		b.Concat(`<li><a href="#" class="` + removeClass + `">` +
			html.EscapeString(c.translate(KeyHasManyRemove, "Remove")) + `</a></li>`)
	} else {
		allowed, err := c.cfg.AllowDestroy.allows(rec)
		if err != nil {
			return err
		}
		if allowed {
			if err := b.Input(destroyAttr, form.InputOptions{
				As:          form.Boolean,
				Label:       c.translate(KeyHasManyDelete, "Delete"),
				WrapperHTML: map[string]string{"class": deleteClass},
			}); err != nil {
				return err
			}
		}
	}

	if c.cfg.Sortable != "" {
		if err := b.Input(c.cfg.Sortable, form.InputOptions{As: form.Hidden}); err != nil {
			return err
		}
		b.Concat(`<li class="handle">` + html.EscapeString(c.translate(KeyMove, "Move")) + `</li>`)
	}
	return nil
}

// addLink renders the "add new" link whose data-html carries one escaped
// group built for a fresh target record under the placeholder child index.
func (c *renderCall) addLink(name, class string) (string, error) {
	placeholder := c.target.Placeholder()
	template, err := c.fc.FieldsFor(name, []model.Record{c.target.Instantiate()}, form.NestedOptions{
		Class:      class,
		ChildIndex: placeholder,
	}, c.group)
	if err != nil {
		return "", err
	}

	label := strings.TrimSpace(c.cfg.NewRecord.Label())
	if label == "" {
		human := c.target.Human()
		label = c.translate(KeyHasManyNew, "Add New "+human, human)
	}

	var b strings.Builder
	b.Grow(len(template)*2 + 128)
	b.WriteString(`<a href="#" class="`)
	b.WriteString(addClass)
	b.WriteString(`" data-html="`)
	b.WriteString(html.EscapeString(template))
	b.WriteString(`" data-placeholder="`)
	b.WriteString(html.EscapeString(placeholder))
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(label))
	b.WriteString(`</a>`)
	return b.String(), nil
}

func (c *renderCall) container(body string) string {
	tag := "div"
	if c.cfg.WithinInputs {
		tag = "li"
	}

	var b strings.Builder
	b.Grow(len(body) + 160)
	b.WriteString("<")
	b.WriteString(tag)
	b.WriteString(` class="`)
	b.WriteString(html.EscapeString(joinClasses(containerClass, c.assoc)))
	b.WriteString(`"`)
	if c.cfg.Sortable != "" {
		b.WriteString(` data-sortable="`)
		b.WriteString(html.EscapeString(c.cfg.Sortable))
		b.WriteString(`"`)
	}
	b.WriteString(` data-sortable-start="`)
	b.WriteString(strconv.Itoa(c.cfg.SortableStart))
	b.WriteString(`">`)
	b.WriteString(body)
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteString(">")
	return b.String()
}

func (c *renderCall) translate(key, fallback string, args ...any) string {
	r := c.renderer
	return render.Translate(r.translator, r.onMissing, r.locale, key, fallback, args...)
}

// targetType returns the association target, deriving one from the
// association name when the owner did not declare it ("sections" ->
// "Section").
func targetType(t model.Type, assoc string) model.Type {
	if strings.TrimSpace(t.Name) != "" {
		return t
	}
	t.Name = strcase.ToCamel(inflection.Singular(assoc))
	return t
}

func joinClasses(values ...string) string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, strings.Fields(value)...)
	}
	return strings.Join(out, " ")
}
