package model

import (
	"reflect"
	"strings"
)

// Record is the view of a persisted or unsaved object the form layer needs.
type Record interface {
	// TypeName returns the concrete type name (e.g. "ImageBlock").
	TypeName() string
	// ID returns the primary key. ok is false for records that were never saved.
	ID() (id int64, ok bool)
	// Attribute returns the named attribute value. ok is false when the record
	// has no such attribute.
	Attribute(name string) (value any, ok bool)
}

// Association is a to-many relation reflected on an owner.
type Association struct {
	Name    string
	Target  Type
	Records []Record
}

// Owner is a record exposing its to-many associations by name.
type Owner interface {
	Record
	Association(name string) (Association, bool)
}

// Persisted reports whether rec has an identity.
func Persisted(rec Record) bool {
	if IsNil(rec) {
		return false
	}
	_, ok := rec.ID()
	return ok
}

// TargetOf returns the polymorphic target stored under slot, or nil when the
// target has not been chosen.
func TargetOf(rec Record, slot string) Record {
	if IsNil(rec) || strings.TrimSpace(slot) == "" {
		return nil
	}
	value, ok := rec.Attribute(slot)
	if !ok {
		return nil
	}
	target, ok := value.(Record)
	if !ok || IsNil(target) {
		return nil
	}
	return target
}

// IsNil reports whether value is nil, including typed nil pointers stored in
// an interface.
func IsNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
