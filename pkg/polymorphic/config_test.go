package polymorphic_test

import (
	"errors"
	"maps"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-polyfields/pkg/model"
	"github.com/goliatone/go-polyfields/pkg/polymorphic"
)

func TestParseOptionsSeparatesRecognizedKeys(t *testing.T) {
	registry := model.NewRegistry()
	registry.MustRegister(fooType, barType)

	raw := map[string]any{
		"heading":        "Blocks",
		"sortable":       "position",
		"sortable_start": float64(2),
		"new_record":     "Add block",
		"allow_destroy":  "can_delete",
		"types":          []any{"Foo", "Bar"},
		"path_prefix":    "/cms/",
		"type_paths":     map[string]any{"Foo": "/foo-things/"},
		"class":          "blocks",
		"data-role":      "sections",
		"rows":           3,
		"ignored":        nil,
	}
	before := maps.Clone(raw)

	cfg, err := polymorphic.ParseOptions(raw, registry)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	for _, key := range polymorphic.RecognizedKeys() {
		if _, ok := cfg.Options[key]; ok {
			t.Fatalf("recognised key %q leaked into pass-through options", key)
		}
	}
	if diff := cmp.Diff(map[string]string{"class": "blocks", "data-role": "sections", "rows": "3"}, cfg.Options); diff != "" {
		t.Fatalf("pass-through options mismatch (-want +got):\n%s", diff)
	}
	if len(raw) != len(before) {
		t.Fatalf("input map was modified")
	}
	for key := range before {
		if _, ok := raw[key]; !ok {
			t.Fatalf("input key %q was removed", key)
		}
	}

	if cfg.Sortable != "position" || cfg.SortableStart != 2 {
		t.Fatalf("unexpected sorting config %q %d", cfg.Sortable, cfg.SortableStart)
	}
	if cfg.NewRecord.Label() != "Add block" || !cfg.NewRecord.Enabled() {
		t.Fatalf("unexpected new record config %+v", cfg.NewRecord)
	}
	if cfg.Heading.Auto() {
		t.Fatalf("expected explicit heading")
	}
	if cfg.PathPrefix != "/cms/" {
		t.Fatalf("unexpected path prefix %q", cfg.PathPrefix)
	}
	if diff := cmp.Diff(map[string]string{"Foo": "foo-things"}, cfg.TypePaths); diff != "" {
		t.Fatalf("type paths mismatch (-want +got):\n%s", diff)
	}
	var typeNames []string
	for _, typ := range cfg.Types {
		typeNames = append(typeNames, typ.Name)
	}
	if diff := cmp.Diff([]string{"Foo", "Bar"}, typeNames); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}
}

func TestParseOptionsValues(t *testing.T) {
	tests := []struct {
		name  string
		raw   map[string]any
		check func(t *testing.T, cfg polymorphic.Config)
	}{
		{
			name: "defaults",
			raw:  map[string]any{},
			check: func(t *testing.T, cfg polymorphic.Config) {
				if !cfg.Heading.Auto() || !cfg.NewRecord.Enabled() || cfg.Options != nil {
					t.Fatalf("unexpected defaults %+v", cfg)
				}
			},
		},
		{
			name: "suppressed heading and disabled new record",
			raw:  map[string]any{"heading": false, "new_record": false},
			check: func(t *testing.T, cfg polymorphic.Config) {
				if cfg.Heading.Auto() || cfg.NewRecord.Enabled() {
					t.Fatalf("expected heading suppressed and new record disabled")
				}
			},
		},
		{
			name: "string sortable start",
			raw:  map[string]any{"sortable_start": " 4 "},
			check: func(t *testing.T, cfg polymorphic.Config) {
				if cfg.SortableStart != 4 {
					t.Fatalf("expected 4, got %d", cfg.SortableStart)
				}
			},
		},
		{
			name: "unresolved type names without resolver",
			raw:  map[string]any{"types": []string{"Foo"}},
			check: func(t *testing.T, cfg polymorphic.Config) {
				if len(cfg.Types) != 1 || cfg.Types[0].Name != "Foo" {
					t.Fatalf("unexpected types %+v", cfg.Types)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := polymorphic.ParseOptions(tt.raw, nil)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestParseOptionsErrors(t *testing.T) {
	registry := model.NewRegistry()
	registry.MustRegister(fooType)

	tests := []struct {
		name string
		raw  map[string]any
		want error
		key  string
	}{
		{name: "destroy number", raw: map[string]any{"allow_destroy": 42}, want: polymorphic.ErrInvalidDestroyPolicy, key: "allow_destroy"},
		{name: "destroy blank field", raw: map[string]any{"allow_destroy": " "}, want: polymorphic.ErrInvalidDestroyPolicy, key: "allow_destroy"},
		{name: "unknown type", raw: map[string]any{"types": []any{"Foo", "Missing"}}, want: polymorphic.ErrUnknownType, key: "types"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := polymorphic.ParseOptions(tt.raw, registry)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var cfgErr *polymorphic.ConfigError
			if !errors.As(err, &cfgErr) || cfgErr.Key != tt.key {
				t.Fatalf("expected config error for %q, got %v", tt.key, err)
			}
		})
	}

	if _, err := polymorphic.ParseOptions(map[string]any{"sortable_start": "two"}, nil); err == nil {
		t.Fatalf("expected sortable_start parse error")
	}
}

func TestParseDestroyPolicyPredicateCoercion(t *testing.T) {
	policy, err := polymorphic.ParseDestroyPolicy(func(rec model.Record) any {
		v, _ := rec.Attribute("flag")
		return v
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	owner := page(section(1).Set("flag", "yes"), section(2).Set("flag", nil))
	_, nodes := render(t, polymorphic.New(), owner, polymorphic.Config{AllowDestroy: policy})
	got := rows(nodes)
	if len(destroyBoxes(got[0])) != 1 || len(destroyBoxes(got[1])) != 0 {
		t.Fatalf("expected truthy coercion of predicate results")
	}
}

func TestPaths(t *testing.T) {
	if got := polymorphic.NewPath("", "ImageBlock", nil); got != "/admin/image_blocks/new" {
		t.Fatalf("unexpected new path %q", got)
	}
	if got := polymorphic.NewPath("cms", "Person", map[string]string{"Person": "/staff/"}); got != "/cms/staff/new" {
		t.Fatalf("unexpected override path %q", got)
	}
	if got := polymorphic.EditPath("admin", model.NewEntity("Person").WithID(4), nil); got != "/admin/people/4/edit" {
		t.Fatalf("unexpected edit path %q", got)
	}
	if got := polymorphic.EditPath("admin", model.NewEntity("Person"), nil); got != "/admin/people/new" {
		t.Fatalf("unsaved targets should use the new path, got %q", got)
	}
}
