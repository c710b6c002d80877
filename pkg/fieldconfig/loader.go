// Package fieldconfig loads polymorphic association and type field
// definitions from JSON or YAML documents:
//
//	types:
//	  - name: ImageBlock
//	    label: Image
//	    fields:
//	      - name: url
//	      - name: caption
//	        as: text
//	associations:
//	  page.sections:
//	    slot: item
//	    fields:
//	      - name: title
//	    options:
//	      sortable: position
//	      types: [ImageBlock]
//	      allow_destroy: true
package fieldconfig

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"maps"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-polyfields/pkg/form"
	"github.com/goliatone/go-polyfields/pkg/model"
	"github.com/goliatone/go-polyfields/pkg/polymorphic"
)

// Field describes one input rendered for a type or association row.
type Field struct {
	Name    string   `json:"name" yaml:"name"`
	As      string   `json:"as,omitempty" yaml:"as,omitempty"`
	Label   string   `json:"label,omitempty" yaml:"label,omitempty"`
	Choices []string `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// Type declares a polymorphic target type and its fields.
type Type struct {
	Name        string  `json:"name" yaml:"name"`
	Label       string  `json:"label,omitempty" yaml:"label,omitempty"`
	PluralLabel string  `json:"pluralLabel,omitempty" yaml:"pluralLabel,omitempty"`
	Fields      []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Model returns the model type described by t.
func (t Type) Model() model.Type {
	return model.Type{Name: t.Name, Label: t.Label, PluralLabel: t.PluralLabel}
}

// Association is the configuration of one polymorphic association, keyed as
// "<owner>.<association>".
type Association struct {
	Key    string
	Owner  string
	Name   string
	Slot   string
	Source string
	Fields []Field
	// Options is the raw option map handed to polymorphic.ParseOptions.
	Options map[string]any
}

// Config converts the raw options into a polymorphic.Config, resolving type
// names through types.
func (a Association) Config(types polymorphic.TypeResolver) (polymorphic.Config, error) {
	cfg, err := polymorphic.ParseOptions(a.Options, types)
	if err != nil {
		return polymorphic.Config{}, fmt.Errorf("fieldconfig: association %q (file %s): %w", a.Key, a.Source, err)
	}
	return cfg, nil
}

// Store holds the loaded definitions.
type Store struct {
	associations map[string]Association
	types        map[string]Type
}

// LoadFS walks fsys and parses every JSON/YAML document. A nil fsys yields an
// empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{
		associations: make(map[string]Association),
		types:        make(map[string]Type),
	}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isConfigFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("fieldconfig: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}
		return store.add(doc, path)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) add(doc documentFile, source string) error {
	for _, t := range doc.Types {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return fmt.Errorf("fieldconfig: file %s declares a type without a name", source)
		}
		if _, exists := s.types[name]; exists {
			return fmt.Errorf("fieldconfig: duplicate type %q (file %s)", name, source)
		}
		t.Name = name
		if err := validateFields(t.Fields, "type "+name, source); err != nil {
			return err
		}
		s.types[name] = t
	}

	for key, raw := range doc.Associations {
		key = strings.TrimSpace(key)
		owner, name, ok := strings.Cut(key, ".")
		owner, name = strings.TrimSpace(owner), strings.TrimSpace(name)
		if !ok || owner == "" || name == "" {
			return fmt.Errorf("fieldconfig: file %s association key %q must look like owner.association", source, key)
		}
		if _, exists := s.associations[key]; exists {
			return fmt.Errorf("fieldconfig: duplicate association %q (file %s)", key, source)
		}
		slot := strings.TrimSpace(raw.Slot)
		if slot == "" {
			return fmt.Errorf("fieldconfig: association %q (file %s) requires a slot", key, source)
		}
		if err := validateFields(raw.Fields, "association "+key, source); err != nil {
			return err
		}
		s.associations[key] = Association{
			Key:     key,
			Owner:   owner,
			Name:    name,
			Slot:    slot,
			Source:  source,
			Fields:  append([]Field(nil), raw.Fields...),
			Options: maps.Clone(raw.Options),
		}
	}
	return nil
}

func validateFields(fields []Field, owner, source string) error {
	for _, field := range fields {
		if strings.TrimSpace(field.Name) == "" {
			return fmt.Errorf("fieldconfig: %s (file %s) has a field without a name", owner, source)
		}
	}
	return nil
}

// Association returns the association configured under key.
func (s *Store) Association(key string) (Association, bool) {
	if s == nil {
		return Association{}, false
	}
	a, ok := s.associations[strings.TrimSpace(key)]
	if ok {
		a.Options = maps.Clone(a.Options)
	}
	return a, ok
}

// Keys returns the association keys in sorted order.
func (s *Store) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.associations))
	for key := range s.associations {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Type returns the declared type.
func (s *Store) Type(name string) (Type, bool) {
	if s == nil {
		return Type{}, false
	}
	t, ok := s.types[strings.TrimSpace(name)]
	return t, ok
}

// Registry registers every declared type in a new model registry.
func (s *Store) Registry() (*model.Registry, error) {
	registry := model.NewRegistry()
	if s == nil {
		return registry, nil
	}
	names := make([]string, 0, len(s.types))
	for name := range s.types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := registry.Register(s.types[name].Model()); err != nil {
			return nil, fmt.Errorf("fieldconfig: %w", err)
		}
	}
	return registry, nil
}

// Empty reports whether the store holds any definitions.
func (s *Store) Empty() bool {
	return s == nil || (len(s.associations) == 0 && len(s.types) == 0)
}

// Render appends one input per field to b.
func Render(b *form.Builder, fields []Field) error {
	for _, field := range fields {
		opts := form.InputOptions{
			As:    form.InputKind(strings.TrimSpace(field.As)),
			Label: field.Label,
		}
		if len(field.Choices) > 0 {
			if opts.As == "" {
				opts.As = form.Select
			}
			for _, choice := range field.Choices {
				opts.Choices = append(opts.Choices, form.Choice{Label: model.Humanize(choice), Value: choice})
			}
		}
		if err := b.Input(field.Name, opts); err != nil {
			return fmt.Errorf("fieldconfig: field %q: %w", field.Name, err)
		}
	}
	return nil
}

type documentFile struct {
	Types        []Type                     `json:"types" yaml:"types"`
	Associations map[string]associationFile `json:"associations" yaml:"associations"`
}

type associationFile struct {
	Slot    string         `json:"slot" yaml:"slot"`
	Fields  []Field        `json:"fields" yaml:"fields"`
	Options map[string]any `json:"options" yaml:"options"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("fieldconfig: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("fieldconfig: parse %s: invalid JSON or YAML", source)
}

func isConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
