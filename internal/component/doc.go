// Package component holds the body-capturing constructs and plain functions a
// host runtime can expose to embedded content, together with the registries
// that keep track of them.
package component
