package extensions

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const youTubeEmbedBase = "https://www.youtube.com/embed/"

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)

// KindYouTube is the node kind of YouTube.
var KindYouTube = ast.NewNodeKind("YouTube")

// YouTube is an embedded video player produced from @[title](url).
type YouTube struct {
	ast.BaseInline
	VideoID string
	Title   string
}

// Kind implements ast.Node.
func (n *YouTube) Kind() ast.NodeKind {
	return KindYouTube
}

// Dump implements ast.Node.
func (n *YouTube) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"VideoID": n.VideoID, "Title": n.Title}, nil)
}

// YouTubeVideoID extracts the video id from watch, short and embed URLs.
func YouTubeVideoID(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}

	var id string
	switch strings.TrimPrefix(strings.ToLower(u.Host), "www.") {
	case "youtube.com", "m.youtube.com", "youtube-nocookie.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/embed/"):
			id = strings.TrimPrefix(u.Path, "/embed/")
		}
	case "youtu.be":
		id = strings.TrimPrefix(u.Path, "/")
	}

	if !videoIDPattern.MatchString(id) {
		return "", false
	}
	return id, true
}

type youTubeTransformer struct{}

func (youTubeTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()

	var links []*ast.Link
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if link, ok := n.(*ast.Link); ok {
				links = append(links, link)
			}
		}
		return ast.WalkContinue, nil
	})

	for _, link := range links {
		marker, ok := link.PreviousSibling().(*ast.Text)
		if !ok || !bytes.HasSuffix(marker.Segment.Value(source), []byte("@")) {
			continue
		}
		id, ok := YouTubeVideoID(string(link.Destination))
		if !ok {
			continue
		}
		marker.Segment = marker.Segment.WithStop(marker.Segment.Stop - 1)

		embed := &YouTube{VideoID: id, Title: plainText(link, source)}
		parent := link.Parent()
		parent.ReplaceChild(parent, link, embed)
	}
}

type youTubeRenderer struct {
	html.Config
}

func (r *youTubeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindYouTube, r.render)
}

func (r *youTubeRenderer) render(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*YouTube)
	_, _ = w.WriteString(`<iframe src="`)
	_, _ = w.Write(util.EscapeHTML([]byte(youTubeEmbedBase + n.VideoID)))
	_ = w.WriteByte('"')
	if n.Title != "" {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML([]byte(n.Title)))
		_ = w.WriteByte('"')
	}
	_, _ = w.WriteString(` width="420" height="315" class="youtube-embedded" allowfullscreen="true" frameborder="0"></iframe>`)
	return ast.WalkSkipChildren, nil
}

type youTube struct{}

// YouTubeEmbed turns @[title](url) into an embedded player when url points at
// a YouTube video. Other links are left alone.
var YouTubeEmbed goldmark.Extender = &youTube{}

func (e *youTube) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(youTubeTransformer{}, 400),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&youTubeRenderer{Config: html.NewConfig()}, 500),
	))
}

// plainText concatenates the text nodes below n.
func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
