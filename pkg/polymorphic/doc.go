// Package polymorphic renders nested "has many" form fields for polymorphic
// associations: one field group per child record, each prefixed with a type
// selector (or a hidden discriminator once the target is chosen), followed by
// caller fields and destroy, remove and sort controls, plus an optional "add
// new" link carrying an escaped group template for client side cloning.
//
// The emitted DOM contract is consumed by a companion script:
//
//   - .polymorphic_has_many_container carries data-sortable and
//     data-sortable-start.
//   - a.polymorphic_has_many_add carries data-html (escaped group markup) and
//     data-placeholder (the child index token to substitute).
//   - a.polymorphic_has_many_remove removes an unsaved group.
//   - select.polymorphic_type_select options and hidden <slot>_type inputs
//     carry data-path, the URL of the type specific "new" or "edit" fields.
package polymorphic
