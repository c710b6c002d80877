// Package template defines the renderer-agnostic template seam used by the
// form builder. The gotemplate subpackage provides the default pongo2-backed
// engine.
package template
