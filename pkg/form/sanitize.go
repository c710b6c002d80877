package form

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	fieldPolicyOnce sync.Once
	fieldPolicy     *bluemonday.Policy
)

// FieldPolicy returns a shared bluemonday policy that keeps admin form
// markup (lists, fieldsets, labels and form controls with their data
// attributes) and strips everything else, including scripts and inline event
// handlers.
func FieldPolicy() *bluemonday.Policy {
	fieldPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements(
			"ol", "ul", "li", "fieldset", "legend", "label", "input", "select",
			"option", "optgroup", "textarea", "p", "span", "div", "small",
			"strong", "em", "abbr", "h3", "h4", "a",
		)
		policy.AllowAttrs(
			"class", "id", "name", "type", "value", "for", "placeholder",
			"checked", "selected", "disabled", "readonly", "required",
			"multiple", "rows", "cols", "min", "max", "step", "maxlength",
			"title", "role",
		).Globally()
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowDataAttributes()
		fieldPolicy = policy
	})
	return fieldPolicy
}

// SanitizeFields cleans caller supplied field markup with policy. A nil
// policy returns the markup unchanged.
func SanitizeFields(policy *bluemonday.Policy, markup string) string {
	if policy == nil || strings.TrimSpace(markup) == "" {
		return markup
	}
	return policy.Sanitize(markup)
}
