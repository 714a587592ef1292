package extensions

import (
	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindSubscript is the node kind of Subscript.
var KindSubscript = gast.NewNodeKind("Subscript")

// Subscript is text wrapped in single tildes.
type Subscript struct {
	gast.BaseInline
}

// Kind implements ast.Node.
func (n *Subscript) Kind() gast.NodeKind {
	return KindSubscript
}

// Dump implements ast.Node.
func (n *Subscript) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, nil, nil)
}

type tildeDelimiter struct{}

func (tildeDelimiter) IsDelimiter(b byte) bool {
	return b == '~'
}

func (tildeDelimiter) CanOpenCloser(opener, closer *parser.Delimiter) bool {
	return opener.Char == closer.Char && opener.OriginalLength == closer.OriginalLength
}

func (tildeDelimiter) OnMatch(consumes int) gast.Node {
	if consumes == 1 {
		return &Subscript{}
	}
	return ast.NewStrikethrough()
}

type tildeParser struct{}

func (tildeParser) Trigger() []byte {
	return []byte{'~'}
}

func (tildeParser) Parse(_ gast.Node, block text.Reader, pc parser.Context) gast.Node {
	before := block.PrecendingCharacter()
	line, segment := block.PeekLine()
	node := parser.ScanDelimiter(line, before, 1, tildeDelimiter{})
	if node == nil || node.OriginalLength > 2 || before == '~' {
		return nil
	}
	node.Segment = segment.WithStop(segment.Start + node.OriginalLength)
	block.Advance(node.OriginalLength)
	pc.PushDelimiter(node)
	return node
}

func (tildeParser) CloseBlock(gast.Node, parser.Context) {}

type subscriptRenderer struct {
	html.Config
}

func (r *subscriptRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindSubscript, r.render)
}

func (r *subscriptRenderer) render(w util.BufWriter, _ []byte, n gast.Node, entering bool) (gast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</sub>")
		return gast.WalkContinue, nil
	}
	_, _ = w.WriteString("<sub")
	if n.Attributes() != nil {
		html.RenderAttributes(w, n, html.GlobalAttributeFilter)
	}
	_ = w.WriteByte('>')
	return gast.WalkContinue, nil
}

type strikethroughSubscript struct{}

// StrikethroughSubscript renders ~~text~~ as <del> and ~text~ as <sub>.
var StrikethroughSubscript goldmark.Extender = &strikethroughSubscript{}

func (e *strikethroughSubscript) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(tildeParser{}, 500),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(extension.NewStrikethroughHTMLRenderer(), 500),
		util.Prioritized(&subscriptRenderer{Config: html.NewConfig()}, 500),
	))
}
