// Package polyfields renders nested form fields for polymorphic has-many
// associations. Most callers only need NewRenderer and the Config type; the
// building blocks live under pkg/.
package polyfields

import (
	"io/fs"

	"github.com/goliatone/go-polyfields/pkg/form"
	"github.com/goliatone/go-polyfields/pkg/i18n"
	"github.com/goliatone/go-polyfields/pkg/polymorphic"
)

// Config aliases polymorphic.Config so callers can configure a render from
// the module root.
type Config = polymorphic.Config

// FieldsFunc aliases the caller field block signature.
type FieldsFunc = polymorphic.FieldsFunc

// DestroyPolicy aliases the allow_destroy variant.
type DestroyPolicy = polymorphic.DestroyPolicy

// NewRenderer returns a renderer translating through the embedded message
// catalog. Options given here are applied after the default translator, so a
// WithTranslator option replaces it.
func NewRenderer(options ...polymorphic.Option) (*polymorphic.Renderer, error) {
	catalog, err := i18n.Default()
	if err != nil {
		return nil, err
	}
	opts := make([]polymorphic.Option, 0, len(options)+1)
	opts = append(opts, polymorphic.WithTranslator(catalog))
	opts = append(opts, options...)
	return polymorphic.New(opts...), nil
}

// ParseOptions aliases polymorphic.ParseOptions for loosely typed input.
func ParseOptions(raw map[string]any, types polymorphic.TypeResolver) (Config, error) {
	return polymorphic.ParseOptions(raw, types)
}

// EmbeddedTemplates exposes the built-in input templates so callers can reuse
// or extend them without importing the form package directly.
func EmbeddedTemplates() fs.FS {
	return form.TemplatesFS()
}
