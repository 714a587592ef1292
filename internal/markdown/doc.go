// Package markdown converts between Markdown and HTML. A Service owns an
// immutable runtimeconfig.Config and builds its goldmark parser, goldmark
// renderer and html-to-markdown converter on first use, once each.
package markdown
