package markdown

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-markdown/internal/markdown/extensions"
	"github.com/goliatone/go-markdown/internal/runtimeconfig"
)

// Extension names, in the order they are applied.
const (
	ExtensionTable                  = "table"
	ExtensionStrikethroughSubscript = "strikethrough-subscript"
	ExtensionTaskList               = "tasklist"
	ExtensionTOC                    = "toc"
	ExtensionAutolink               = "autolink"
	ExtensionAnchorLink             = "anchorlink"
	ExtensionYouTube                = "youtube"
)

// Extensions lists the extensions a service built from cfg applies.
func Extensions(cfg runtimeconfig.Config) []string {
	names := []string{
		ExtensionTable,
		ExtensionStrikethroughSubscript,
		ExtensionTaskList,
		ExtensionTOC,
	}
	if cfg.AutoLinkURLs {
		names = append(names, ExtensionAutolink)
	}
	if cfg.AnchorLinks {
		names = append(names, ExtensionAnchorLink)
	}
	if cfg.EnableYouTubeTransformer {
		names = append(names, ExtensionYouTube)
	}
	return names
}

func extender(name string, cfg runtimeconfig.Config) goldmark.Extender {
	switch name {
	case ExtensionTable:
		return extensions.NewTable(extensions.TableOptions{
			ColumnSpans:                 cfg.Table.ColumnSpans,
			AppendMissingColumns:        cfg.Table.AppendMissingColumns,
			DiscardExtraColumns:         cfg.Table.DiscardExtraColumns,
			ClassName:                   cfg.Table.ClassName,
			HeaderSeparationColumnMatch: cfg.Table.HeaderSeparationColumnMatch,
		})
	case ExtensionStrikethroughSubscript:
		return extensions.StrikethroughSubscript
	case ExtensionTaskList:
		return extension.TaskList
	case ExtensionTOC:
		return extensions.TableOfContents
	case ExtensionAutolink:
		return extension.Linkify
	case ExtensionAnchorLink:
		return extensions.NewAnchorLink(extensions.AnchorOptions{
			SetID:    cfg.AnchorSetID,
			SetName:  cfg.AnchorSetName,
			WrapText: cfg.AnchorWrapText,
			Class:    cfg.AnchorClass,
			Prefix:   cfg.AnchorPrefix,
			Suffix:   cfg.AnchorSuffix,
		})
	case ExtensionYouTube:
		return extensions.YouTubeEmbed
	default:
		return nil
	}
}

// newEngine assembles a goldmark instance for cfg. Raw HTML is passed
// through and every heading gets an id.
func newEngine(cfg runtimeconfig.Config) goldmark.Markdown {
	extenders := []goldmark.Extender{
		extensions.NewCodeStyle(extensions.CodeStyle{
			InlineOpen:          cfg.CodeStyleHTMLOpen,
			InlineClose:         cfg.CodeStyleHTMLClose,
			LanguageClassPrefix: cfg.FencedCodeLanguageClassPrefix,
		}),
	}
	for _, name := range Extensions(cfg) {
		if ext := extender(name, cfg); ext != nil {
			extenders = append(extenders, ext)
		}
	}

	return goldmark.New(
		goldmark.WithExtensions(extenders...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

func newConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithHeadingStyle(commonmark.HeadingStyleATX),
				commonmark.WithListEndComment(false),
				commonmark.WithLinkEmptyContentBehavior(commonmark.LinkBehaviorSkip),
			),
			strikethrough.NewStrikethroughPlugin(),
			table.NewTablePlugin(
				table.WithSpanCellBehavior(table.SpanBehaviorEmpty),
				table.WithHeaderPromotion(true),
			),
		),
		converter.WithEscapeMode(converter.EscapeModeSmart),
	)
}
