package form

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-polyfields/pkg/model"
)

// Builder accumulates the inputs of one object (usually one nested group).
// Inputs are rendered immediately and appended to the builder's buffer.
type Builder struct {
	form   *Form
	object model.Record
	name   string
	index  string
	buf    strings.Builder
}

// Object returns the record the builder is bound to.
func (b *Builder) Object() model.Record {
	return b.object
}

// ChildIndex returns the raw child index of the group ("0", "1" or a
// placeholder token). It is empty for standalone builders.
func (b *Builder) ChildIndex() string {
	return b.index
}

// Index returns the numeric child index when the group has one.
func (b *Builder) Index() (int, bool) {
	if b.index == "" {
		return 0, false
	}
	i, err := strconv.Atoi(b.index)
	if err != nil {
		return 0, false
	}
	return i, true
}

// FieldName returns the parameter name of attr within this group.
func (b *Builder) FieldName(attr string) string {
	if b.name == "" {
		return attr
	}
	return b.name + "[" + attr + "]"
}

// FieldID returns the DOM id of attr within this group.
func (b *Builder) FieldID(attr string) string {
	return sanitizeID(b.FieldName(attr))
}

// Concat appends raw markup to the group.
func (b *Builder) Concat(markup string) {
	b.buf.WriteString(markup)
}

// String returns the markup accumulated so far.
func (b *Builder) String() string {
	return b.buf.String()
}

// Capture runs fn against a fresh builder bound to the same object and naming
// scope and returns what it produced without appending it here.
func (b *Builder) Capture(fn func(*Builder) error) (string, error) {
	if fn == nil {
		return "", nil
	}
	child := &Builder{form: b.form, object: b.object, name: b.name, index: b.index}
	if err := fn(child); err != nil {
		return "", err
	}
	return child.String(), nil
}

// Input renders attr and appends it to the group.
func (b *Builder) Input(attr string, opts InputOptions) error {
	markup, err := b.render(attr, opts)
	if err != nil {
		return err
	}
	b.Concat(markup)
	return nil
}

func (b *Builder) render(attr string, opts InputOptions) (string, error) {
	attr = strings.TrimSpace(attr)
	if attr == "" {
		return "", fmt.Errorf("form: input name is required")
	}
	if b.form == nil || b.form.templates == nil {
		return "", fmt.Errorf("form: template renderer not configured for %q", attr)
	}

	kind := opts.As
	if kind == "" {
		kind = String
	}
	p, err := resolvePartial(kind, b.form.partials)
	if err != nil {
		return "", err
	}

	value := opts.Value
	if value == nil && b.object != nil && !model.IsNil(b.object) {
		value, _ = b.object.Attribute(attr)
	}

	id := b.FieldID(attr)
	input := map[string]any{
		"id":   id,
		"name": b.FieldName(attr),
	}
	for key, val := range opts.InputHTML {
		if key = strings.TrimSpace(key); key != "" {
			input[key] = val
		}
	}

	wrapper := map[string]any{
		"class": joinClasses(string(kind), "input", "optional", opts.WrapperHTML["class"]),
		"id":    id + "_input",
	}
	for key, val := range opts.WrapperHTML {
		if key = strings.TrimSpace(key); key != "" && key != "class" {
			wrapper[key] = val
		}
	}

	label := strings.TrimSpace(opts.Label)
	if label == "" && kind != Hidden {
		label = model.Humanize(attr)
	}

	data := map[string]any{
		"wrapper": wrapper,
		"input":   input,
		"label":   label,
		"type":    p.htmlType,
	}

	switch kind {
	case Boolean:
		input["value"] = "1"
		data["checked"] = truthy(value)
	case Select:
		current := FormatValue(value)
		choices := make([]any, 0, len(opts.Choices))
		for _, choice := range opts.Choices {
			attrs := map[string]any{"value": choice.Value}
			for key, val := range choice.Attrs {
				if key = strings.TrimSpace(key); key != "" && key != "value" {
					attrs[key] = val
				}
			}
			choices = append(choices, map[string]any{
				"label":    choice.Label,
				"attrs":    attrs,
				"selected": current != "" && choice.Value == current,
			})
		}
		data["choices"] = choices
	case Text:
		data["value"] = FormatValue(value)
	default:
		input["value"] = FormatValue(value)
	}

	out, err := b.form.templates.RenderTemplate(p.template, data)
	if err != nil {
		return "", fmt.Errorf("form: render %s input %q: %w", kind, attr, err)
	}
	return strings.TrimSpace(out), nil
}

// FormatValue converts an attribute value into its form field representation.
func FormatValue(value any) string {
	if model.IsNil(value) {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func truthy(value any) bool {
	if model.IsNil(value) {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "0", "false", "f", "off", "no":
			return false
		}
		return true
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return true
	}
}

func joinClasses(values ...string) string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, strings.Fields(value)...)
	}
	return strings.Join(out, " ")
}

func sanitizeID(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r == ']':
		case r == '[':
			b.WriteByte('_')
		case r == '_' || r == '-' || r == ':' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
