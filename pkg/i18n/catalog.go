// Package i18n provides a message catalog translator for form labels backed
// by golang.org/x/text. Locale files are YAML documents:
//
//	locale: fr-FR
//	messages:
//	  polymorphic.has_many_new: "Ajouter %s"
//	  models.section.other: "Sections"
//
// Messages use fmt verbs; translator args are applied positionally.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-polyfields/pkg/render"
)

// BaseLocale is the fallback locale of every lookup.
const BaseLocale = "en-US"

// ErrMissingMessage is returned when neither the requested locale nor the
// base locale define a key.
var ErrMissingMessage = errors.New("i18n: missing message")

//go:embed locales/*.yaml
var embeddedLocales embed.FS

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog of the embedded locale files.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		c := New()
		if err := c.Load(embeddedLocales); err != nil {
			defaultErr = err
			return
		}
		defaultCatalog = c
	})
	return defaultCatalog, defaultErr
}

type localeFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog is a render.Translator over per-locale message maps. It is safe for
// concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	builder  *catalog.Builder
	messages map[string]map[string]string
	tags     map[string]language.Tag

	// supported mirrors the matcher's tag order.
	supported []language.Tag
	matcher   language.Matcher
}

var _ render.Translator = (*Catalog)(nil)

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		builder:  catalog.NewBuilder(catalog.Fallback(language.MustParse(BaseLocale))),
		messages: make(map[string]map[string]string),
		tags:     make(map[string]language.Tag),
	}
}

// Load reads every locales/*.yaml file (or *.yaml at the root when there is
// no locales directory) from fsys.
func (c *Catalog) Load(fsys fs.FS) error {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return fmt.Errorf("i18n: glob locales: %w", err)
	}
	if len(paths) == 0 {
		if paths, err = fs.Glob(fsys, "*.yaml"); err != nil {
			return fmt.Errorf("i18n: glob locales: %w", err)
		}
	}
	if len(paths) == 0 {
		return errors.New("i18n: no locale files found")
	}
	sort.Strings(paths)

	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("i18n: read %s: %w", p, err)
		}
		var file localeFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("i18n: parse %s: %w", p, err)
		}
		locale := strings.TrimSpace(file.Locale)
		if locale == "" {
			locale = strings.TrimSuffix(path.Base(p), path.Ext(p))
		}
		keys := make([]string, 0, len(file.Messages))
		for key := range file.Messages {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if err := c.Add(locale, key, file.Messages[key]); err != nil {
				return fmt.Errorf("i18n: %s: %w", p, err)
			}
		}
	}
	return nil
}

// Add registers one message.
func (c *Catalog) Add(locale, key, msg string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("i18n: message key cannot be blank")
	}
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return fmt.Errorf("i18n: parse locale %q: %w", locale, err)
	}
	name := tag.String()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.builder.SetString(tag, key, msg); err != nil {
		return fmt.Errorf("i18n: set %s/%s: %w", name, key, err)
	}
	if c.messages[name] == nil {
		c.messages[name] = make(map[string]string)
	}
	c.messages[name][key] = msg
	if _, ok := c.tags[name]; !ok {
		c.tags[name] = tag
		c.rebuildMatcher()
	}
	return nil
}

// Locales returns the loaded locales in sorted order.
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.messages))
	for locale := range c.messages {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Translate formats key for locale with args. Unknown locales are matched to
// the closest loaded one; keys missing there fall back to BaseLocale.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	key = strings.TrimSpace(key)

	c.mu.RLock()
	defer c.mu.RUnlock()

	tag := c.resolve(locale)
	if _, ok := c.messages[tag.String()][key]; !ok {
		tag = language.MustParse(BaseLocale)
		if _, ok := c.messages[BaseLocale][key]; !ok {
			return "", fmt.Errorf("%w: %s (%s)", ErrMissingMessage, key, locale)
		}
	}
	return message.NewPrinter(tag, message.Catalog(c.builder)).Sprintf(key, args...), nil
}

// resolve picks the loaded tag closest to locale.
func (c *Catalog) resolve(locale string) language.Tag {
	base := language.MustParse(BaseLocale)
	requested, err := language.Parse(strings.TrimSpace(locale))
	if err != nil || c.matcher == nil {
		return base
	}
	if _, ok := c.tags[requested.String()]; ok {
		return requested
	}
	_, index, confidence := c.matcher.Match(requested)
	if confidence == language.No || index >= len(c.supported) {
		return base
	}
	return c.supported[index]
}

// rebuildMatcher lists BaseLocale first so it wins when nothing matches.
func (c *Catalog) rebuildMatcher() {
	names := make([]string, 0, len(c.tags))
	for name := range c.tags {
		if name != BaseLocale {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	supported := []language.Tag{language.MustParse(BaseLocale)}
	for _, name := range names {
		supported = append(supported, c.tags[name])
	}
	c.supported = supported
	c.matcher = language.NewMatcher(supported)
}
