package polymorphic

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-polyfields/pkg/model"
)

// Recognised configuration keys. ParseOptions never leaves them in the
// pass-through map.
const (
	KeyHeading       = "heading"
	KeySortable      = "sortable"
	KeySortableStart = "sortable_start"
	KeyNewRecord     = "new_record"
	KeyAllowDestroy  = "allow_destroy"
	KeyTypes         = "types"
	KeyPathPrefix    = "path_prefix"
	KeyTypePaths     = "type_paths"
)

// DefaultPathPrefix is the URL prefix of "new" and "edit" data paths.
const DefaultPathPrefix = "admin"

// RecognizedKeys lists the configuration keys consumed by ParseOptions.
func RecognizedKeys() []string {
	return []string{
		KeyHeading, KeySortable, KeySortableStart, KeyNewRecord,
		KeyAllowDestroy, KeyTypes, KeyPathPrefix, KeyTypePaths,
	}
}

type headingMode uint8

const (
	headingAuto headingMode = iota
	headingText
	headingNone
)

// Heading selects the section heading. The zero value derives it from the
// association target's human plural name.
type Heading struct {
	mode headingMode
	text string
}

// HeadingText uses text as the heading. Blank text renders no heading.
func HeadingText(text string) Heading {
	return Heading{mode: headingText, text: text}
}

// NoHeading suppresses the heading and skips the default lookup.
func NoHeading() Heading {
	return Heading{mode: headingNone}
}

// Auto reports whether the heading is derived from the target type.
func (h Heading) Auto() bool { return h.mode == headingAuto }

// NewRecord controls the "add new" link. The zero value renders it with the
// translated default label.
type NewRecord struct {
	disabled bool
	label    string
}

// NewRecordLabel renders the "add new" link with a custom label.
func NewRecordLabel(label string) NewRecord {
	return NewRecord{label: label}
}

// NewRecordDisabled omits the "add new" link.
func NewRecordDisabled() NewRecord {
	return NewRecord{disabled: true}
}

// Enabled reports whether the link is rendered.
func (n NewRecord) Enabled() bool { return !n.disabled }

// Label returns the custom label, if any.
func (n NewRecord) Label() string { return n.label }

type destroyKind uint8

const (
	destroyNever destroyKind = iota
	destroyAlways
	destroyField
	destroyPredicate
)

// DestroyPolicy decides whether a persisted record gets a destroy checkbox.
// The zero value never offers one.
type DestroyPolicy struct {
	kind      destroyKind
	field     string
	predicate func(model.Record) bool
}

// AllowDestroy offers the checkbox on every persisted record, or on none.
func AllowDestroy(allow bool) DestroyPolicy {
	if allow {
		return DestroyPolicy{kind: destroyAlways}
	}
	return DestroyPolicy{kind: destroyNever}
}

// DestroyWhenField offers the checkbox when the record's field is truthy.
func DestroyWhenField(field string) DestroyPolicy {
	return DestroyPolicy{kind: destroyField, field: strings.TrimSpace(field)}
}

// DestroyWhen offers the checkbox when fn returns true for the record.
func DestroyWhen(fn func(model.Record) bool) DestroyPolicy {
	return DestroyPolicy{kind: destroyPredicate, predicate: fn}
}

// ParseDestroyPolicy converts a loosely typed allow_destroy value: a bool, a
// field name, or a predicate returning bool or any value (coerced by
// truthiness). nil never allows destroying.
func ParseDestroyPolicy(value any) (DestroyPolicy, error) {
	switch v := value.(type) {
	case nil:
		return AllowDestroy(false), nil
	case bool:
		return AllowDestroy(v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return DestroyPolicy{}, ErrInvalidDestroyPolicy
		}
		return DestroyWhenField(v), nil
	case DestroyPolicy:
		return v, v.validate()
	case func(model.Record) bool:
		if v == nil {
			return DestroyPolicy{}, ErrInvalidDestroyPolicy
		}
		return DestroyWhen(v), nil
	case func(model.Record) any:
		if v == nil {
			return DestroyPolicy{}, ErrInvalidDestroyPolicy
		}
		return DestroyWhen(func(rec model.Record) bool { return truthy(v(rec)) }), nil
	default:
		return DestroyPolicy{}, fmt.Errorf("%w: %T", ErrInvalidDestroyPolicy, value)
	}
}

func (p DestroyPolicy) validate() error {
	switch p.kind {
	case destroyNever, destroyAlways:
		return nil
	case destroyField:
		if p.field == "" {
			return fmt.Errorf("%w: empty field name", ErrInvalidDestroyPolicy)
		}
		return nil
	case destroyPredicate:
		if p.predicate == nil {
			return fmt.Errorf("%w: nil predicate", ErrInvalidDestroyPolicy)
		}
		return nil
	default:
		return ErrInvalidDestroyPolicy
	}
}

// allows evaluates the policy for a persisted record.
func (p DestroyPolicy) allows(rec model.Record) (bool, error) {
	switch p.kind {
	case destroyNever:
		return false, nil
	case destroyAlways:
		return true, nil
	case destroyField:
		value, ok := rec.Attribute(p.field)
		if !ok {
			return false, configError("allow_destroy", p.field, ErrMissingAttribute)
		}
		return truthy(value), nil
	case destroyPredicate:
		return p.predicate(rec), nil
	default:
		return false, configError("allow_destroy", "", ErrInvalidDestroyPolicy)
	}
}

// truthy follows the loose convention of the form layer: only nil and false
// are false.
func truthy(value any) bool {
	if model.IsNil(value) {
		return false
	}
	if b, ok := value.(bool); ok {
		return b
	}
	return true
}

// Config is the explicit configuration of one polymorphic association render.
type Config struct {
	Heading Heading
	// Sortable names the attribute rows are ordered by and whose value is
	// kept in a hidden input.
	Sortable      string
	SortableStart int
	NewRecord     NewRecord
	AllowDestroy  DestroyPolicy
	// Types populate the type selector of rows without a target.
	Types []model.Type
	// PathPrefix defaults to DefaultPathPrefix.
	PathPrefix string
	// TypePaths maps a type name to its URL segment.
	TypePaths map[string]string
	// WithinInputs renders the container as an <li> for use inside an
	// existing input list.
	WithinInputs bool
	// Options are passed through to the nested groups. "class" is extended
	// with the fixed marker classes, "for" overrides the nested attribute
	// name and every other entry becomes a fieldset attribute. Keys listed
	// in RecognizedKeys are ignored here.
	Options map[string]string
}

func (c Config) normalized() Config {
	out := c
	out.Sortable = strings.TrimSpace(c.Sortable)
	out.PathPrefix = strings.Trim(strings.TrimSpace(c.PathPrefix), "/")
	if out.PathPrefix == "" {
		out.PathPrefix = DefaultPathPrefix
	}
	out.Types = slices.Clone(c.Types)
	out.TypePaths = maps.Clone(c.TypePaths)
	out.Options = maps.Clone(c.Options)
	for _, key := range RecognizedKeys() {
		delete(out.Options, key)
	}
	return out
}

// TypeResolver resolves type names listed under "types". *model.Registry
// satisfies it.
type TypeResolver interface {
	Lookup(name string) (model.Type, bool)
}

// ParseOptions builds a Config from a loosely typed option map such as one
// decoded from YAML or JSON. raw is never modified. Keys outside
// RecognizedKeys are stringified into Config.Options. When types is nil, type
// names are taken as-is.
func ParseOptions(raw map[string]any, types TypeResolver) (Config, error) {
	var cfg Config
	residual := make(map[string]string)

	for key, value := range raw {
		key = strings.TrimSpace(key)
		switch key {
		case "":
			continue
		case KeyHeading:
			cfg.Heading = parseHeading(value)
		case KeySortable:
			if value != nil {
				cfg.Sortable = strings.TrimSpace(fmt.Sprint(value))
			}
		case KeySortableStart:
			start, err := parseInt(value)
			if err != nil {
				return Config{}, configError("parse", key, err)
			}
			cfg.SortableStart = start
		case KeyNewRecord:
			cfg.NewRecord = parseNewRecord(value)
		case KeyAllowDestroy:
			policy, err := ParseDestroyPolicy(value)
			if err != nil {
				return Config{}, configError("parse", key, err)
			}
			cfg.AllowDestroy = policy
		case KeyTypes:
			list, err := parseTypes(value, types)
			if err != nil {
				return Config{}, configError("parse", key, err)
			}
			cfg.Types = list
		case KeyPathPrefix:
			if value != nil {
				cfg.PathPrefix = strings.TrimSpace(fmt.Sprint(value))
			}
		case KeyTypePaths:
			paths, err := parseTypePaths(value)
			if err != nil {
				return Config{}, configError("parse", key, err)
			}
			cfg.TypePaths = paths
		default:
			if model.IsNil(value) {
				continue
			}
			residual[key] = fmt.Sprint(value)
		}
	}

	if len(residual) > 0 {
		cfg.Options = residual
	}
	return cfg, nil
}

func parseHeading(value any) Heading {
	switch v := value.(type) {
	case nil:
		return NoHeading()
	case bool:
		if !v {
			return NoHeading()
		}
		return Heading{}
	case string:
		return HeadingText(v)
	default:
		return HeadingText(fmt.Sprint(v))
	}
}

func parseNewRecord(value any) NewRecord {
	switch v := value.(type) {
	case nil:
		return NewRecordDisabled()
	case bool:
		if !v {
			return NewRecordDisabled()
		}
		return NewRecord{}
	case string:
		return NewRecordLabel(v)
	default:
		return NewRecordLabel(fmt.Sprint(v))
	}
}

func parseInt(value any) (int, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected an integer, got %v", v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("expected an integer: %w", err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", value)
	}
}

func parseTypes(value any, resolver TypeResolver) ([]model.Type, error) {
	var items []any
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []model.Type:
		return slices.Clone(v), nil
	case []string:
		for _, name := range v {
			items = append(items, name)
		}
	case []any:
		items = v
	case string:
		items = []any{v}
	default:
		return nil, fmt.Errorf("expected a list of types, got %T", value)
	}

	out := make([]model.Type, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case model.Type:
			out = append(out, v)
		case string:
			t, err := resolveType(v, resolver)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		default:
			return nil, fmt.Errorf("expected a type name, got %T", item)
		}
	}
	return out, nil
}

func resolveType(name string, resolver TypeResolver) (model.Type, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Type{}, errors.New("empty type name")
	}
	if resolver == nil {
		return model.Type{Name: name}, nil
	}
	t, ok := resolver.Lookup(name)
	if !ok {
		return model.Type{}, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	return t, nil
}

func parseTypePaths(value any) (map[string]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case map[string]string:
		return maps.Clone(v), nil
	case map[string]any:
		out := make(map[string]string, len(v))
		for name, segment := range v {
			if model.IsNil(segment) {
				continue
			}
			out[strings.TrimSpace(name)] = strings.Trim(strings.TrimSpace(fmt.Sprint(segment)), "/")
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a type to path map, got %T", value)
	}
}
