package model

import (
	"maps"
	"strings"
)

// Entity is an in-memory Record/Owner. Polymorphic targets are stored as
// attributes holding another Record; the matching "<slot>_id" and
// "<slot>_type" attributes are derived from the target unless set explicitly.
type Entity struct {
	Type         string
	Key          *int64
	Attrs        map[string]any
	Associations map[string]Association
}

var (
	_ Record = (*Entity)(nil)
	_ Owner  = (*Entity)(nil)
)

// NewEntity returns an unsaved entity of the given type.
func NewEntity(typeName string) *Entity {
	return &Entity{Type: typeName}
}

// WithID marks the entity as persisted under id.
func (e *Entity) WithID(id int64) *Entity {
	e.Key = &id
	return e
}

// Set stores an attribute value and returns the entity for chaining.
func (e *Entity) Set(name string, value any) *Entity {
	if e.Attrs == nil {
		e.Attrs = make(map[string]any)
	}
	e.Attrs[name] = value
	return e
}

// SetAssociation registers a to-many association on the entity.
func (e *Entity) SetAssociation(assoc Association) *Entity {
	if e.Associations == nil {
		e.Associations = make(map[string]Association)
	}
	e.Associations[assoc.Name] = assoc
	return e
}

func (e *Entity) TypeName() string {
	if e == nil {
		return ""
	}
	return e.Type
}

func (e *Entity) ID() (int64, bool) {
	if e == nil || e.Key == nil {
		return 0, false
	}
	return *e.Key, true
}

func (e *Entity) Attribute(name string) (any, bool) {
	if e == nil {
		return nil, false
	}
	if value, ok := e.Attrs[name]; ok {
		return value, true
	}
	if name == "id" {
		if id, ok := e.ID(); ok {
			return id, true
		}
		return nil, true
	}
	if base, ok := strings.CutSuffix(name, "_id"); ok {
		if target, exists := e.Attrs[base]; exists {
			rec, _ := target.(Record)
			if IsNil(rec) {
				return nil, true
			}
			if id, persisted := rec.ID(); persisted {
				return id, true
			}
			return nil, true
		}
	}
	if base, ok := strings.CutSuffix(name, "_type"); ok {
		if target, exists := e.Attrs[base]; exists {
			rec, _ := target.(Record)
			if IsNil(rec) {
				return nil, true
			}
			return rec.TypeName(), true
		}
	}
	return nil, false
}

func (e *Entity) Association(name string) (Association, bool) {
	if e == nil {
		return Association{}, false
	}
	assoc, ok := e.Associations[name]
	return assoc, ok
}

// Clone returns a shallow copy with independent attribute and association maps.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	out := &Entity{
		Type:         e.Type,
		Attrs:        maps.Clone(e.Attrs),
		Associations: maps.Clone(e.Associations),
	}
	if e.Key != nil {
		id := *e.Key
		out.Key = &id
	}
	return out
}
