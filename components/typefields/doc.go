// Package typefields serves the type specific field markup behind the
// data-path URLs emitted by the polymorphic renderer:
//
//	GET <prefix>/<segment>/new        fields for a new record of the type
//	GET <prefix>/<segment>/<id>/edit  fields for an existing record
//
// The optional "name" query parameter sets the field name root (for example
// page[sections_attributes][3][item_attributes]) so the markup can be merged
// into the surrounding form. Responses are HTML fragments; HEAD is supported.
package typefields
