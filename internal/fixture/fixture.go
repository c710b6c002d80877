// Package fixture decodes YAML or JSON owner fixtures into model entities for
// previews and tests:
//
//	name: page
//	owner:
//	  type: Page
//	  id: 1
//	associations:
//	  sections:
//	    target: Section
//	    records:
//	      - id: 10
//	        attributes: {position: 2, can_delete: true}
//	        targets:
//	          item: {type: ImageBlock, id: 7}
//	      - attributes: {position: null}
package fixture

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-polyfields/pkg/model"
)

// Fixture is a decoded owner with its associations.
type Fixture struct {
	// ObjectName is the form parameter root; it defaults to the underscored
	// owner type.
	ObjectName string
	Owner      *model.Entity
}

type fixtureFile struct {
	Name         string                     `json:"name" yaml:"name"`
	Owner        recordFile                 `json:"owner" yaml:"owner"`
	Associations map[string]associationFile `json:"associations" yaml:"associations"`
}

type associationFile struct {
	Target  string       `json:"target" yaml:"target"`
	Records []recordFile `json:"records" yaml:"records"`
}

type recordFile struct {
	Type       string                `json:"type" yaml:"type"`
	ID         *int64                `json:"id" yaml:"id"`
	Attributes map[string]any        `json:"attributes" yaml:"attributes"`
	Targets    map[string]recordFile `json:"targets" yaml:"targets"`
}

// Load reads a fixture file from fsys.
func Load(fsys fs.FS, path string) (*Fixture, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("fixture: read %s: %w", path, err)
	}
	return Parse(data, nil)
}

// LoadWithTypes reads a fixture and resolves association targets through
// types, so labels and constructors declared there are kept.
func LoadWithTypes(fsys fs.FS, path string, types *model.Registry) (*Fixture, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("fixture: read %s: %w", path, err)
	}
	return Parse(data, types)
}

// Parse decodes fixture data (JSON first, then YAML). types may be nil.
func Parse(data []byte, types *model.Registry) (*Fixture, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("fixture: empty document")
	}
	var doc fixtureFile
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = fixtureFile{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("fixture: parse: %w", err)
		}
	}

	if strings.TrimSpace(doc.Owner.Type) == "" {
		return nil, fmt.Errorf("fixture: owner type is required")
	}
	owner, err := doc.Owner.entity("owner")
	if err != nil {
		return nil, err
	}

	for name, assoc := range doc.Associations {
		name = strings.TrimSpace(name)
		target := model.Type{Name: strings.TrimSpace(assoc.Target)}
		if target.Name != "" && types != nil {
			if registered, ok := types.Lookup(target.Name); ok {
				target = registered
			}
		}

		records := make([]model.Record, 0, len(assoc.Records))
		for i, raw := range assoc.Records {
			if strings.TrimSpace(raw.Type) == "" {
				raw.Type = target.Name
			}
			rec, err := raw.entity(fmt.Sprintf("%s[%d]", name, i))
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
		owner.SetAssociation(model.Association{Name: name, Target: target, Records: records})
	}

	objectName := strings.TrimSpace(doc.Name)
	if objectName == "" {
		objectName = model.Type{Name: owner.Type}.Singular()
	}
	return &Fixture{ObjectName: objectName, Owner: owner}, nil
}

func (r recordFile) entity(path string) (*model.Entity, error) {
	typeName := strings.TrimSpace(r.Type)
	if typeName == "" {
		return nil, fmt.Errorf("fixture: %s: type is required", path)
	}
	e := model.NewEntity(typeName)
	if r.ID != nil {
		e.WithID(*r.ID)
	}
	for key, value := range r.Attributes {
		e.Set(strings.TrimSpace(key), normalize(value))
	}
	for slot, raw := range r.Targets {
		target, err := raw.entity(path + "." + slot)
		if err != nil {
			return nil, err
		}
		e.Set(strings.TrimSpace(slot), target)
	}
	return e, nil
}

// normalize maps JSON numbers onto ints when they are whole, so sort keys
// decoded from either format compare the same way.
func normalize(value any) any {
	if f, ok := value.(float64); ok && f == float64(int64(f)) {
		return int64(f)
	}
	return value
}
