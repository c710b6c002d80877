package render

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingTranslator is reported to MissingTranslationHandler when no
// Translator has been configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Translator resolves message keys for a locale. Extra args are formatting
// parameters understood by the implementation.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides what to display when a key cannot be
// translated. args carries the formatting parameters followed by a
// map[string]any{"default": fallback} entry.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// Translate resolves key through t, routing failures to onMissing. fallback is
// the already formatted text used by the default handler.
func Translate(t Translator, onMissing MissingTranslationHandler, locale, key, fallback string, args ...any) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	if onMissing == nil {
		onMissing = MissingTranslationDefault
	}

	params := make([]any, 0, len(args)+1)
	params = append(params, args...)
	params = append(params, map[string]any{"default": fallback})

	if t == nil {
		return onMissing(locale, key, params, ErrMissingTranslator)
	}

	msg, err := t.Translate(locale, key, args...)
	if err != nil || strings.TrimSpace(msg) == "" {
		return onMissing(locale, key, params, err)
	}
	return msg
}

// MissingTranslationDefault returns the "default" entry carried in args, or
// the key itself when no default is present.
func MissingTranslationDefault(_ string, key string, args []any, _ error) string {
	for i := len(args) - 1; i >= 0; i-- {
		data, ok := args[i].(map[string]any)
		if !ok {
			continue
		}
		if fallback := strings.TrimSpace(anyToString(data["default"])); fallback != "" {
			return fallback
		}
	}
	return key
}

func anyToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
