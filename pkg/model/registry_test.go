package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegistryRegisterAndList(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(Type{Name: "TextBlock"}, Type{Name: "ImageBlock"})

	if err := registry.Register(Type{Name: "TextBlock"}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := registry.Register(Type{Name: "  "}); err == nil {
		t.Fatalf("expected empty name to fail")
	}

	if diff := cmp.Diff([]string{"ImageBlock", "TextBlock"}, registry.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
	if _, err := registry.Get("VideoBlock"); err == nil {
		t.Fatalf("expected missing type error")
	}
}

func TestRegistryByRoute(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(Type{Name: "TextBlock"}, Type{Name: "ImageBlock"})

	got, ok := registry.ByRoute("text_blocks", nil)
	if !ok || got.Name != "TextBlock" {
		t.Fatalf("ByRoute(text_blocks) = %v, %v", got.Name, ok)
	}

	overrides := map[string]string{"ImageBlock": "pictures"}
	got, ok = registry.ByRoute("pictures", overrides)
	if !ok || got.Name != "ImageBlock" {
		t.Fatalf("ByRoute(pictures) = %v, %v", got.Name, ok)
	}
	if _, ok := registry.ByRoute("image_blocks", overrides); ok {
		t.Fatalf("expected overridden default segment to stop matching")
	}
}
