package extensions

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// CodeStyle replaces the markup goldmark emits around code.
type CodeStyle struct {
	// InlineOpen and InlineClose are written verbatim around code spans.
	InlineOpen  string
	InlineClose string
	// LanguageClassPrefix prefixes the info string language of fenced code.
	LanguageClassPrefix string
}

type codeRenderer struct {
	html.Config
	style CodeStyle
}

func (r *codeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindCodeSpan, r.renderCodeSpan)
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCode)
}

func (r *codeRenderer) renderCodeSpan(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString(r.style.InlineClose)
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(r.style.InlineOpen)
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		t, ok := c.(*ast.Text)
		if !ok {
			continue
		}
		value := t.Segment.Value(source)
		if bytes.HasSuffix(value, []byte("\n")) {
			r.Writer.RawWrite(w, value[:len(value)-1])
			r.Writer.RawWrite(w, []byte(" "))
			continue
		}
		r.Writer.RawWrite(w, value)
	}
	return ast.WalkSkipChildren, nil
}

func (r *codeRenderer) renderFencedCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</code></pre>\n")
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	_, _ = w.WriteString("<pre><code")
	if language := n.Language(source); language != nil {
		_, _ = w.WriteString(` class="`)
		r.Writer.Write(w, []byte(r.style.LanguageClassPrefix))
		r.Writer.Write(w, language)
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		r.Writer.RawWrite(w, line.Value(source))
	}
	return ast.WalkContinue, nil
}

type codeStyle struct {
	style CodeStyle
}

// NewCodeStyle returns an extender that renders code spans and fenced code
// with the given markup.
func NewCodeStyle(style CodeStyle) goldmark.Extender {
	return &codeStyle{style: style}
}

func (e *codeStyle) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&codeRenderer{Config: html.NewConfig(), style: e.style}, 500),
	))
}
