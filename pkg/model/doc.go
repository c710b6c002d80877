// Package model describes the records the polymorphic field renderer works
// with: owners exposing to-many associations, child records with a
// polymorphic target, and the type descriptors offered when a target has not
// been chosen yet.
//
// The interfaces are deliberately small so existing persistence layers can
// satisfy them with thin adapters. Entity is an in-memory implementation used
// by fixtures, tests and the preview CLI.
package model
