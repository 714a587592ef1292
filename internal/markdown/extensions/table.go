package extensions

import (
	"bytes"
	"regexp"
	"strconv"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// TableOptions controls how pipe tables are recognised and shaped.
type TableOptions struct {
	// ColumnSpans makes pipes that directly follow a cell's closing pipe widen
	// that cell by one column each.
	ColumnSpans bool
	// AppendMissingColumns pads short rows with empty cells.
	AppendMissingColumns bool
	// DiscardExtraColumns drops cells past the separator's column count.
	DiscardExtraColumns bool
	// ClassName is set on the table element when not empty.
	ClassName string
	// HeaderSeparationColumnMatch rejects tables whose header row and
	// separator row disagree on the column count.
	HeaderSeparationColumnMatch bool
}

var (
	delimLeft   = regexp.MustCompile(`^\s*:-+\s*$`)
	delimRight  = regexp.MustCompile(`^\s*-+:\s*$`)
	delimCenter = regexp.MustCompile(`^\s*:-+:\s*$`)
	delimNone   = regexp.MustCompile(`^\s*-+\s*$`)
)

type tableCell struct {
	segment text.Segment
	span    int
}

type tableTransformer struct {
	opts TableOptions
}

func (t *tableTransformer) Transform(node *gast.Paragraph, reader text.Reader, _ parser.Context) {
	lines := node.Lines()
	if lines.Len() < 2 {
		return
	}
	for i := 1; i < lines.Len(); i++ {
		alignments := parseDelimiterRow(lines.At(i), reader)
		if alignments == nil {
			continue
		}
		headerCells := t.splitRow(lines.At(i-1), reader)
		if len(headerCells) == 0 {
			return
		}
		if t.opts.HeaderSeparationColumnMatch && columnCount(headerCells) != len(alignments) {
			return
		}

		table := ast.NewTable()
		table.Alignments = alignments
		if t.opts.ClassName != "" {
			table.SetAttributeString("class", []byte(t.opts.ClassName))
		}
		table.AppendChild(table, ast.NewTableHeader(t.buildRow(headerCells, alignments)))
		for j := i + 1; j < lines.Len(); j++ {
			cells := t.splitRow(lines.At(j), reader)
			table.AppendChild(table, t.buildRow(cells, alignments))
		}

		node.Lines().SetSliced(0, i-1)
		node.Parent().InsertAfter(node.Parent(), node, table)
		if node.Lines().Len() == 0 {
			node.Parent().RemoveChild(node.Parent(), node)
		} else {
			last := node.Lines().At(i - 2)
			last.Stop = last.Stop - 1
			node.Lines().Set(i-2, last)
		}
		return
	}
}

// splitRow cuts a row into cells. With column spans enabled a run of pipes
// closing a cell is folded into that cell's span.
func (t *tableTransformer) splitRow(segment text.Segment, reader text.Reader) []tableCell {
	source := reader.Source()
	segment = segment.TrimLeftSpace(source)
	segment = segment.TrimRightSpace(source)
	line := segment.Value(source)

	pos := 0
	if len(line) > 0 && line[0] == '|' {
		pos++
	}

	var cells []tableCell
	for pos < len(line) {
		closure := pos
		for ; closure < len(line); closure++ {
			if line[closure] == '|' && (closure == 0 || line[closure-1] != '\\') {
				break
			}
		}
		content := text.NewSegment(segment.Start+pos, segment.Start+closure)
		content = content.TrimLeftSpace(source)
		content = content.TrimRightSpace(source)

		if closure == len(line) {
			if content.Len() > 0 || len(cells) == 0 {
				cells = append(cells, tableCell{segment: content, span: 1})
			}
			break
		}

		span := 1
		next := closure + 1
		if t.opts.ColumnSpans {
			for next < len(line) && line[next] == '|' {
				span++
				next++
			}
		}
		cells = append(cells, tableCell{segment: content, span: span})
		pos = next
	}
	return cells
}

func (t *tableTransformer) buildRow(cells []tableCell, alignments []ast.Alignment) *ast.TableRow {
	columns := len(alignments)
	row := ast.NewTableRow(alignments)

	col := 0
	for _, cell := range cells {
		if t.opts.DiscardExtraColumns && col >= columns {
			break
		}
		span := cell.span
		if t.opts.DiscardExtraColumns && col+span > columns {
			span = columns - col
		}
		node := ast.NewTableCell()
		if col < columns {
			node.Alignment = alignments[col]
		}
		if span > 1 {
			node.SetAttributeString("colspan", []byte(strconv.Itoa(span)))
		}
		if cell.segment.Len() > 0 {
			node.Lines().Append(cell.segment)
		}
		row.AppendChild(row, node)
		col += span
	}

	if t.opts.AppendMissingColumns {
		for ; col < columns; col++ {
			node := ast.NewTableCell()
			node.Alignment = alignments[col]
			row.AppendChild(row, node)
		}
	}
	return row
}

func columnCount(cells []tableCell) int {
	total := 0
	for _, cell := range cells {
		total += cell.span
	}
	return total
}

func parseDelimiterRow(segment text.Segment, reader text.Reader) []ast.Alignment {
	line := segment.Value(reader.Source())
	if !isDelimiterRow(line) {
		return nil
	}
	cols := bytes.Split(line, []byte{'|'})
	if util.IsBlank(cols[0]) {
		cols = cols[1:]
	}
	if len(cols) > 0 && util.IsBlank(cols[len(cols)-1]) {
		cols = cols[:len(cols)-1]
	}

	alignments := make([]ast.Alignment, 0, len(cols))
	for _, col := range cols {
		switch {
		case delimCenter.Match(col):
			alignments = append(alignments, ast.AlignCenter)
		case delimLeft.Match(col):
			alignments = append(alignments, ast.AlignLeft)
		case delimRight.Match(col):
			alignments = append(alignments, ast.AlignRight)
		case delimNone.Match(col):
			alignments = append(alignments, ast.AlignNone)
		default:
			return nil
		}
	}
	if len(alignments) == 0 {
		return nil
	}
	return alignments
}

func isDelimiterRow(line []byte) bool {
	if w, _ := util.IndentWidth(line, 0); w > 3 {
		return false
	}
	onlyDashes := true
	for _, b := range line {
		if b != '-' {
			onlyDashes = false
		}
		if !util.IsSpace(b) && b != '-' && b != '|' && b != ':' {
			return false
		}
	}
	return !onlyDashes
}

type table struct {
	opts TableOptions
}

// NewTable returns a pipe table extender driven by opts. Rendering reuses
// goldmark's table renderer with alignments emitted as align attributes.
func NewTable(opts TableOptions) goldmark.Extender {
	return &table{opts: opts}
}

func (e *table) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithParagraphTransformers(
		util.Prioritized(&tableTransformer{opts: e.opts}, 200),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(extension.NewTableHTMLRenderer(
			extension.WithTableCellAlignMethod(extension.TableCellAlignAttribute),
		), 500),
	))
}
