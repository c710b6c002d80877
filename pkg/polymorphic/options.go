package polymorphic

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-polyfields/pkg/render"
)

// Option configures a Renderer.
type Option func(*config)

type config struct {
	translator render.Translator
	onMissing  render.MissingTranslationHandler
	locale     string
	logger     *zap.Logger
	sanitizer  *bluemonday.Policy
}

// WithTranslator resolves headings, labels and type names through t.
func WithTranslator(t render.Translator) Option {
	return func(cfg *config) {
		cfg.translator = t
	}
}

// WithLocale sets the locale passed to the translator.
func WithLocale(locale string) Option {
	return func(cfg *config) {
		cfg.locale = strings.TrimSpace(locale)
	}
}

// WithMissingTranslation overrides the handler used when a key cannot be
// translated. The default returns the English fallback.
func WithMissingTranslation(handler render.MissingTranslationHandler) Option {
	return func(cfg *config) {
		cfg.onMissing = handler
	}
}

// WithLogger sets the logger used for render events.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithFieldSanitizer cleans the markup produced by caller field blocks.
// form.FieldPolicy is a suitable default for admin forms.
func WithFieldSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		cfg.sanitizer = policy
	}
}
