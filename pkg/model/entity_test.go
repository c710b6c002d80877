package model

import "testing"

func TestEntityDerivesPolymorphicPair(t *testing.T) {
	target := NewEntity("ImageBlock").WithID(7)
	row := NewEntity("Section").WithID(1).Set("item", target)

	if v, ok := row.Attribute("item_id"); !ok || v != int64(7) {
		t.Fatalf("item_id = %v (%v), want 7", v, ok)
	}
	if v, ok := row.Attribute("item_type"); !ok || v != "ImageBlock" {
		t.Fatalf("item_type = %v (%v), want ImageBlock", v, ok)
	}
	if got := TargetOf(row, "item"); got != Record(target) {
		t.Fatalf("TargetOf returned %v", got)
	}
}

func TestEntityTypedNilTarget(t *testing.T) {
	var missing *Entity
	row := NewEntity("Section").Set("item", missing)

	if TargetOf(row, "item") != nil {
		t.Fatalf("expected typed nil target to be treated as unset")
	}
	if v, ok := row.Attribute("item_type"); !ok || v != nil {
		t.Fatalf("item_type = %v (%v), want nil", v, ok)
	}
}

func TestEntityExplicitAttributesWin(t *testing.T) {
	row := NewEntity("Section").
		Set("item", NewEntity("ImageBlock").WithID(3)).
		Set("item_type", "Override")

	if v, _ := row.Attribute("item_type"); v != "Override" {
		t.Fatalf("expected explicit attribute, got %v", v)
	}
	if _, ok := row.Attribute("unknown"); ok {
		t.Fatalf("expected unknown attribute to be missing")
	}
}

func TestEntityCloneIsIndependent(t *testing.T) {
	original := NewEntity("Page").WithID(1).Set("title", "Home")
	cloned := original.Clone()
	cloned.Set("title", "Changed")
	*cloned.Key = 2

	if v, _ := original.Attribute("title"); v != "Home" {
		t.Fatalf("clone mutated original attrs: %v", v)
	}
	if id, _ := original.ID(); id != 1 {
		t.Fatalf("clone mutated original id: %d", id)
	}
}
