package form

import (
	"fmt"
	"strings"
)

// InputKind selects the control an input renders.
type InputKind string

const (
	Hidden   InputKind = "hidden"
	String   InputKind = "string"
	Number   InputKind = "number"
	Text     InputKind = "text"
	Select   InputKind = "select"
	Boolean  InputKind = "boolean"
	Password InputKind = "password"
)

const templatePrefix = "templates/"

type partial struct {
	key      string
	template string
	htmlType string
}

// defaultPartials maps input kinds to their theme partial key and embedded
// template.
var defaultPartials = map[InputKind]partial{
	Hidden:   {key: "forms.hidden", template: templatePrefix + "hidden.tmpl"},
	String:   {key: "forms.input", template: templatePrefix + "input.tmpl", htmlType: "text"},
	Number:   {key: "forms.input", template: templatePrefix + "input.tmpl", htmlType: "number"},
	Password: {key: "forms.input", template: templatePrefix + "input.tmpl", htmlType: "password"},
	Text:     {key: "forms.textarea", template: templatePrefix + "textarea.tmpl"},
	Select:   {key: "forms.select", template: templatePrefix + "select.tmpl"},
	Boolean:  {key: "forms.checkbox", template: templatePrefix + "boolean.tmpl"},
}

// PartialKeys lists the theme partial keys the builder resolves.
func PartialKeys() []string {
	return []string{"forms.hidden", "forms.input", "forms.textarea", "forms.select", "forms.checkbox"}
}

// Choice is one option of a select input.
type Choice struct {
	Label string
	Value string
	Attrs map[string]string
}

// InputOptions customise a single input.
type InputOptions struct {
	As    InputKind
	Label string
	// Value overrides the value read from the record attribute.
	Value any
	// Choices populate select inputs.
	Choices []Choice
	// InputHTML adds attributes to the control element.
	InputHTML map[string]string
	// WrapperHTML adds attributes to the wrapping <li>; "class" is appended to
	// the default classes.
	WrapperHTML map[string]string
}

func resolvePartial(kind InputKind, overrides map[string]string) (partial, error) {
	if kind == "" {
		kind = String
	}
	p, ok := defaultPartials[kind]
	if !ok {
		return partial{}, fmt.Errorf("form: unsupported input kind %q", kind)
	}
	if candidate := strings.TrimSpace(overrides[p.key]); candidate != "" {
		p.template = candidate
	}
	return p, nil
}
