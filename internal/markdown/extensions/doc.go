// Package extensions holds the goldmark extenders behind the markdown
// conversion settings.
package extensions
