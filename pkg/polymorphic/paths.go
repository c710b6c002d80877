package polymorphic

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-polyfields/pkg/model"
)

// NewPath returns the URL serving the fields of a new record of typeName.
func NewPath(prefix, typeName string, typePaths map[string]string) string {
	return "/" + normalizePrefix(prefix) + "/" + Segment(typeName, typePaths) + "/new"
}

// EditPath returns the URL serving the fields of target. Unsaved targets get
// the "new" path since they have no id to edit.
func EditPath(prefix string, target model.Record, typePaths map[string]string) string {
	id, ok := target.ID()
	if !ok {
		return NewPath(prefix, target.TypeName(), typePaths)
	}
	return "/" + normalizePrefix(prefix) + "/" + Segment(target.TypeName(), typePaths) +
		"/" + strconv.FormatInt(id, 10) + "/edit"
}

// Segment returns the URL segment of typeName: its type_paths override or
// the plural route key ("ImageBlock" -> "image_blocks").
func Segment(typeName string, typePaths map[string]string) string {
	typeName = strings.TrimSpace(typeName)
	if segment := strings.Trim(strings.TrimSpace(typePaths[typeName]), "/"); segment != "" {
		return segment
	}
	return model.Type{Name: typeName}.RouteKey()
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return DefaultPathPrefix
	}
	return prefix
}
