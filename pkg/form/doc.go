// Package form provides the form-building context used by nested field
// helpers: a Form bound to an owning object, Builders that render inputs for
// one nested group, and the embedded pongo2 templates behind every input kind.
//
// Input templates can be replaced per partial key ("forms.hidden",
// "forms.input", "forms.textarea", "forms.select", "forms.checkbox") with
// WithPartial or a go-theme renderer config via WithTheme.
package form
