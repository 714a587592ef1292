package extensions

import (
	"regexp"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"go.abhg.dev/goldmark/toc"
)

const (
	defaultTOCMinLevel = 2
	defaultTOCMaxLevel = 3
)

// tocMarker matches [TOC], [TOC levels=3] and [TOC levels=1-4].
var tocMarker = regexp.MustCompile(`^\[TOC(?:\s+levels=([1-6])(?:-([1-6]))?)?\]$`)

type tocTransformer struct{}

func (tocTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()

	var markers []*ast.Paragraph
	levels := map[*ast.Paragraph][2]int{}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		para, ok := n.(*ast.Paragraph)
		if !ok || para.Lines().Len() != 1 {
			continue
		}
		line := para.Lines().At(0)
		value := util.TrimRightSpace(util.TrimLeftSpace(line.Value(source)))
		match := tocMarker.FindSubmatch(value)
		if match == nil {
			continue
		}
		markers = append(markers, para)
		levels[para] = tocLevels(match)
	}
	if len(markers) == 0 {
		return
	}

	for _, para := range markers {
		bounds := levels[para]
		tree, err := toc.Inspect(doc, source, toc.MaxDepth(bounds[1]))
		var items toc.Items
		if err == nil {
			items = compactItems(trimLevels(tree.Items, bounds[0]))
		}
		if len(items) == 0 {
			doc.RemoveChild(doc, para)
			continue
		}
		list := toc.RenderList(&toc.TOC{Items: items})
		doc.ReplaceChild(doc, para, list)
	}
}

func tocLevels(match [][]byte) [2]int {
	lower, upper := defaultTOCMinLevel, defaultTOCMaxLevel
	switch {
	case len(match[2]) > 0:
		lower, _ = strconv.Atoi(string(match[1]))
		upper, _ = strconv.Atoi(string(match[2]))
	case len(match[1]) > 0:
		lower = 1
		upper, _ = strconv.Atoi(string(match[1]))
	}
	if lower > upper {
		lower, upper = upper, lower
	}
	return [2]int{lower, upper}
}

// trimLevels drops the levels above min, promoting their children.
func trimLevels(items toc.Items, min int) toc.Items {
	for level := 1; level < min; level++ {
		var next toc.Items
		for _, item := range items {
			if item != nil {
				next = append(next, item.Items...)
			}
		}
		items = next
	}
	return items
}

// compactItems replaces placeholder entries for skipped heading levels with
// their children.
func compactItems(items toc.Items) toc.Items {
	out := make(toc.Items, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		item.Items = compactItems(item.Items)
		if len(item.Title) == 0 && len(item.ID) == 0 {
			out = append(out, item.Items...)
			continue
		}
		out = append(out, item)
	}
	return out
}

type tableOfContents struct{}

// TableOfContents replaces a paragraph holding only a [TOC] marker with a
// nested list linking to the document headings.
var TableOfContents goldmark.Extender = &tableOfContents{}

func (e *tableOfContents) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(tocTransformer{}, 300),
	))
}
