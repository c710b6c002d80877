package polyfields_test

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-polyfields"
	"github.com/goliatone/go-polyfields/pkg/form"
	"github.com/goliatone/go-polyfields/pkg/model"
	"github.com/goliatone/go-polyfields/pkg/polymorphic"
)

func TestEmbeddedTemplates(t *testing.T) {
	matches, err := fs.Glob(polyfields.EmbeddedTemplates(), "templates/*.tmpl")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) < len(form.PartialKeys()) {
		t.Fatalf("expected one template per partial, got %v", matches)
	}
}

func TestNewRendererTranslatesThroughCatalog(t *testing.T) {
	page := model.NewEntity("Page").WithID(1).SetAssociation(model.Association{
		Name:    "sections",
		Target:  model.Type{Name: "Section"},
		Records: []model.Record{model.NewEntity("Section").WithID(4)},
	})
	f, err := form.New(page, "page")
	if err != nil {
		t.Fatalf("new form: %v", err)
	}

	renderer, err := polyfields.NewRenderer(polymorphic.WithLocale("fr-FR"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	cfg, err := polyfields.ParseOptions(map[string]any{"allow_destroy": true}, nil)
	if err != nil {
		t.Fatalf("parse options: %v", err)
	}

	out, err := renderer.Render(context.Background(), f, "sections", "item", cfg, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Supprimer", "Ajouter Section"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}
