package model

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"
)

// Type describes a concrete model type that can back an association row or a
// polymorphic target.
type Type struct {
	// Name is the type identifier written into discriminator fields. Namespaced
	// names use "::" or "/" separators (e.g. "Blocks::Image").
	Name string `json:"name" yaml:"name"`
	// Label overrides the human singular name.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	// PluralLabel overrides the human plural name.
	PluralLabel string `json:"pluralLabel,omitempty" yaml:"pluralLabel,omitempty"`
	// New constructs a fresh, unsaved instance. When nil an empty Entity of
	// this type is used.
	New func() Record `json:"-" yaml:"-"`
}

// Instantiate returns a fresh unsaved record of this type.
func (t Type) Instantiate() Record {
	if t.New != nil {
		if rec := t.New(); !IsNil(rec) {
			return rec
		}
	}
	return NewEntity(t.Name)
}

// Human returns the human singular name ("ImageBlock" -> "Image block").
func (t Type) Human() string {
	if label := strings.TrimSpace(t.Label); label != "" {
		return label
	}
	return Humanize(t.baseName())
}

// HumanPlural returns the human plural name.
func (t Type) HumanPlural() string {
	if label := strings.TrimSpace(t.PluralLabel); label != "" {
		return label
	}
	return inflection.Plural(t.Human())
}

// Underscore returns the underscored path of the type name, keeping namespaces
// separated by "/" ("Blocks::ImageBlock" -> "blocks/image_block").
func (t Type) Underscore() string {
	parts := namespaceParts(t.Name)
	for i, part := range parts {
		parts[i] = strcase.ToSnake(part)
	}
	return strings.Join(parts, "/")
}

// Singular returns the flattened singular route key ("blocks_image_block").
func (t Type) Singular() string {
	return strings.ReplaceAll(t.Underscore(), "/", "_")
}

// RouteKey returns the default plural URL segment ("blocks_image_blocks").
func (t Type) RouteKey() string {
	singular := t.Singular()
	if singular == "" {
		return ""
	}
	return inflection.Plural(singular)
}

// Placeholder returns the child-index token used in "add new" templates
// ("Section" -> "NEW_SECTION_RECORD").
func (t Type) Placeholder() string {
	return "NEW_" + strings.ToUpper(t.Singular()) + "_RECORD"
}

func (t Type) baseName() string {
	parts := namespaceParts(t.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func namespaceParts(name string) []string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "::", "/")
	raw := strings.Split(name, "/")
	out := make([]string, 0, len(raw))
	for _, part := range raw {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Humanize turns an identifier into a sentence-cased label
// ("item_type" -> "Item type", "ImageBlock" -> "Image block").
func Humanize(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(name, "_id")
	words := strings.TrimSpace(strcase.ToDelimited(name, ' '))
	if words == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(words)
	return string(unicode.ToUpper(first)) + words[size:]
}
