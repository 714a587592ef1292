package extensions

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// AnchorOptions controls the anchor element placed inside every heading.
type AnchorOptions struct {
	SetID    bool
	SetName  bool
	WrapText bool
	Class    string
	// Prefix and Suffix are written verbatim inside the anchor.
	Prefix string
	Suffix string
}

// KindAnchorLink is the node kind of AnchorLink.
var KindAnchorLink = ast.NewNodeKind("AnchorLink")

// AnchorLink is an inline link targeting the heading that contains it.
type AnchorLink struct {
	ast.BaseInline
	ID []byte
}

// Kind implements ast.Node.
func (n *AnchorLink) Kind() ast.NodeKind {
	return KindAnchorLink
}

// Dump implements ast.Node.
func (n *AnchorLink) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"ID": string(n.ID)}, nil)
}

type anchorTransformer struct {
	wrap bool
}

func (t *anchorTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	var headings []*ast.Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			headings = append(headings, h)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, heading := range headings {
		id, ok := headingID(heading)
		if !ok {
			continue
		}
		anchor := &AnchorLink{ID: id}
		if t.wrap {
			for child := heading.FirstChild(); child != nil; {
				next := child.NextSibling()
				anchor.AppendChild(anchor, child)
				child = next
			}
			heading.AppendChild(heading, anchor)
			continue
		}
		if first := heading.FirstChild(); first != nil {
			heading.InsertBefore(heading, first, anchor)
		} else {
			heading.AppendChild(heading, anchor)
		}
	}
}

func headingID(heading *ast.Heading) ([]byte, bool) {
	value, ok := heading.AttributeString("id")
	if !ok {
		return nil, false
	}
	switch id := value.(type) {
	case []byte:
		return id, len(id) > 0
	case string:
		return []byte(id), id != ""
	default:
		return nil, false
	}
}

type anchorRenderer struct {
	html.Config
	opts AnchorOptions
}

func (r *anchorRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindAnchorLink, r.render)
}

func (r *anchorRenderer) render(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*AnchorLink)
	if !entering {
		_, _ = w.WriteString(r.opts.Suffix)
		_, _ = w.WriteString("</a>")
		return ast.WalkContinue, nil
	}

	id := util.EscapeHTML(n.ID)
	_, _ = w.WriteString(`<a href="#`)
	_, _ = w.Write(id)
	_ = w.WriteByte('"')
	if r.opts.SetID {
		_, _ = w.WriteString(` id="`)
		_, _ = w.Write(id)
		_ = w.WriteByte('"')
	}
	if r.opts.SetName {
		_, _ = w.WriteString(` name="`)
		_, _ = w.Write(id)
		_ = w.WriteByte('"')
	}
	if r.opts.Class != "" {
		_, _ = w.WriteString(` class="`)
		_, _ = w.Write(util.EscapeHTML([]byte(r.opts.Class)))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
	_, _ = w.WriteString(r.opts.Prefix)
	return ast.WalkContinue, nil
}

type anchorLink struct {
	opts AnchorOptions
}

// NewAnchorLink returns an extender that links every heading to itself. It
// relies on headings carrying an id, so the parser needs auto heading ids.
func NewAnchorLink(opts AnchorOptions) goldmark.Extender {
	return &anchorLink{opts: opts}
}

func (e *anchorLink) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&anchorTransformer{wrap: e.opts.WrapText}, 500),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&anchorRenderer{Config: html.NewConfig(), opts: e.opts}, 500),
	))
}
