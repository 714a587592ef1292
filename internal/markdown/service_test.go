package markdown_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-markdown/internal/markdown"
	"github.com/goliatone/go-markdown/internal/runtimeconfig"
	"github.com/goliatone/go-markdown/pkg/interfaces"
)

func TestServiceToHTML_HeadingAnchorDefaults(t *testing.T) {
	svc := markdown.NewService(runtimeconfig.DefaultConfig())

	html, err := svc.ToHTML(context.Background(), "#### Hello World")
	if err != nil {
		t.Fatalf("ToHTML returned error: %v", err)
	}

	want := `<h4 id="hello-world"><a href="#hello-world" id="hello-world" name="hello-world" class="anchor"></a>Hello World</h4>`
	if strings.TrimSpace(html) != want {
		t.Fatalf("unexpected heading markup\nwant: %s\n got: %s", want, html)
	}
}

func TestServiceToHTML_AnchorOptions(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   string
	}{
		{
			name: "wrap with prefix and suffix",
			mutate: func(c *runtimeconfig.Config) {
				c.AnchorWrapText = true
				c.AnchorPrefix = "<span>"
				c.AnchorSuffix = "</span>"
			},
			want: `<h2 id="intro"><a href="#intro" id="intro" name="intro" class="anchor"><span>Intro</span></a></h2>`,
		},
		{
			name: "href only",
			mutate: func(c *runtimeconfig.Config) {
				c.AnchorSetID = false
				c.AnchorSetName = false
				c.AnchorClass = ""
			},
			want: `<h2 id="intro"><a href="#intro"></a>Intro</h2>`,
		},
		{
			name: "custom class",
			mutate: func(c *runtimeconfig.Config) {
				c.AnchorSetName = false
				c.AnchorClass = "heading-link"
			},
			want: `<h2 id="intro"><a href="#intro" id="intro" class="heading-link"></a>Intro</h2>`,
		},
		{
			name:   "disabled",
			mutate: func(c *runtimeconfig.Config) { c.AnchorLinks = false },
			want:   `<h2 id="intro">Intro</h2>`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)

			html, err := markdown.NewService(cfg).ToHTML(context.Background(), "## Intro")
			if err != nil {
				t.Fatalf("ToHTML returned error: %v", err)
			}
			if strings.TrimSpace(html) != tc.want {
				t.Fatalf("unexpected markup\nwant: %s\n got: %s", tc.want, html)
			}
		})
	}
}

func TestServiceToHTML_DuplicateHeadingsGetDistinctIDs(t *testing.T) {
	svc := markdown.NewService(runtimeconfig.DefaultConfig())

	doc := render(t, svc, "# Setup\n\n# Setup\n\n# Setup")
	var ids []string
	doc.Find("h1").Each(func(_ int, s *goquery.Selection) {
		ids = append(ids, s.AttrOr("id", ""))
	})
	want := []string{"setup", "setup-1", "setup-2"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Fatalf("expected ids %v, got %v", want, ids)
	}

	// ids are scoped to a single conversion
	again := render(t, svc, "# Setup")
	if id := again.Find("h1").AttrOr("id", ""); id != "setup" {
		t.Fatalf("expected id registry to reset between calls, got %q", id)
	}
}

func TestServiceToHTML_NonLatinHeadingIDs(t *testing.T) {
	doc := render(t, markdown.NewService(runtimeconfig.DefaultConfig()), "## Café Ñandú\n\n#\n\n## 日本語")

	var ids, hrefs []string
	doc.Find("h1, h2").Each(func(_ int, s *goquery.Selection) {
		ids = append(ids, s.AttrOr("id", ""))
		hrefs = append(hrefs, s.Find("a").AttrOr("href", ""))
	})
	want := []string{"café-ñandú", "heading", "日本語"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Fatalf("expected ids %v, got %v", want, ids)
	}
	if hrefs[0] != "#café-ñandú" || hrefs[2] != "#日本語" {
		t.Fatalf("expected anchors to follow the ids, got %v", hrefs)
	}
}

func TestServiceToHTML_TrimsInputAndIsIdempotent(t *testing.T) {
	svc := markdown.NewService(runtimeconfig.DefaultConfig())
	input := "\n\n   # Title\n\nSome *text* with `code`.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n   \n"

	first, err := svc.ToHTML(context.Background(), input)
	if err != nil {
		t.Fatalf("ToHTML returned error: %v", err)
	}
	second, err := svc.ToHTML(context.Background(), input)
	if err != nil {
		t.Fatalf("ToHTML returned error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical output\nfirst:  %s\nsecond: %s", first, second)
	}

	trimmed, err := svc.ToHTML(context.Background(), strings.TrimSpace(input))
	if err != nil {
		t.Fatalf("ToHTML returned error: %v", err)
	}
	if trimmed != first {
		t.Fatalf("expected surrounding whitespace to be ignored")
	}
}

func TestServiceToHTML_ColumnSpans(t *testing.T) {
	input := "| a | b | c |\n|---|---|---|\n| wide |||\n"

	enabled := render(t, markdown.NewService(runtimeconfig.DefaultConfig()), input)
	cells := enabled.Find("tbody td")
	if cells.Length() != 1 {
		t.Fatalf("expected a single spanning cell, got %d", cells.Length())
	}
	if span := cells.AttrOr("colspan", ""); span != "3" {
		t.Fatalf("expected colspan=3, got %q", span)
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.Table.ColumnSpans = false
	disabled := render(t, markdown.NewService(cfg), input)
	if n := disabled.Find("tbody td").Length(); n != 3 {
		t.Fatalf("expected three cells without spans, got %d", n)
	}
	if disabled.Find("td[colspan]").Length() != 0 {
		t.Fatal("expected no colspan attributes without spans")
	}
}

func TestServiceToHTML_TableColumnPolicies(t *testing.T) {
	input := "| a | b |\n|---|---|\n| 1 |\n| 1 | 2 | 3 |\n"

	cases := []struct {
		name      string
		mutate    func(*runtimeconfig.TableOptions)
		wantShort int
		wantLong  int
	}{
		{"defaults", func(*runtimeconfig.TableOptions) {}, 2, 2},
		{"no padding", func(o *runtimeconfig.TableOptions) { o.AppendMissingColumns = false }, 1, 2},
		{"keep extra", func(o *runtimeconfig.TableOptions) { o.DiscardExtraColumns = false }, 2, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg.Table)
			doc := render(t, markdown.NewService(cfg), input)

			rows := doc.Find("tbody tr")
			if rows.Length() != 2 {
				t.Fatalf("expected two body rows, got %d", rows.Length())
			}
			if n := rows.Eq(0).Find("td").Length(); n != tc.wantShort {
				t.Fatalf("short row: expected %d cells, got %d", tc.wantShort, n)
			}
			if n := rows.Eq(1).Find("td").Length(); n != tc.wantLong {
				t.Fatalf("long row: expected %d cells, got %d", tc.wantLong, n)
			}
		})
	}
}

func TestServiceToHTML_HeaderSeparationColumnMatch(t *testing.T) {
	input := "| a | b |\n|---|---|---|\n| 1 | 2 | 3 |\n"

	strict := render(t, markdown.NewService(runtimeconfig.DefaultConfig()), input)
	if strict.Find("table").Length() != 0 {
		t.Fatal("expected mismatched header to stay a paragraph")
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.Table.HeaderSeparationColumnMatch = false
	lenient := render(t, markdown.NewService(cfg), input)
	if lenient.Find("table").Length() != 1 {
		t.Fatal("expected table when column counts need not match")
	}
	if n := lenient.Find("thead th").Length(); n != 3 {
		t.Fatalf("expected header padded to three columns, got %d", n)
	}
}

func TestServiceToHTML_TableClassAndAlignment(t *testing.T) {
	input := "| left | right |\n|:-----|------:|\n| 1 | 2 |\n"

	doc := render(t, markdown.NewService(runtimeconfig.DefaultConfig()), input)
	if !doc.Find("table").HasClass("table") {
		t.Fatal("expected default table class")
	}
	if align := doc.Find("th").Eq(1).AttrOr("align", ""); align != "right" {
		t.Fatalf("expected right aligned header, got %q", align)
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.Table.ClassName = ""
	plain := render(t, markdown.NewService(cfg), input)
	if _, ok := plain.Find("table").Attr("class"); ok {
		t.Fatal("expected no class attribute when className is empty")
	}
}

func TestServiceToHTML_YouTubeTransformer(t *testing.T) {
	input := "@[Launch video](https://www.youtube.com/watch?v=dQw4w9WgXcQ)"

	disabled := render(t, markdown.NewService(runtimeconfig.DefaultConfig()), input)
	if disabled.Find("iframe").Length() != 0 {
		t.Fatal("expected no embed when the transformer is disabled")
	}
	if href := disabled.Find("a").AttrOr("href", ""); href != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Fatalf("expected plain link, got %q", href)
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.EnableYouTubeTransformer = true
	enabled := render(t, markdown.NewService(cfg), input)
	frame := enabled.Find("iframe")
	if frame.Length() != 1 {
		t.Fatalf("expected an embedded player, got %d", frame.Length())
	}
	if src := frame.AttrOr("src", ""); src != "https://www.youtube.com/embed/dQw4w9WgXcQ" {
		t.Fatalf("unexpected embed src %q", src)
	}
	if title := frame.AttrOr("title", ""); title != "Launch video" {
		t.Fatalf("unexpected embed title %q", title)
	}
	if strings.Contains(enabled.Text(), "@") {
		t.Fatal("expected the @ marker to be consumed")
	}
}

func TestServiceToHTML_AutoLinkURLs(t *testing.T) {
	input := "Visit www.example.com today"

	linked := render(t, markdown.NewService(runtimeconfig.DefaultConfig()), input)
	if href := linked.Find("a").AttrOr("href", ""); href != "http://www.example.com" {
		t.Fatalf("expected autolinked href, got %q", href)
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.AutoLinkURLs = false
	plain := render(t, markdown.NewService(cfg), input)
	if plain.Find("a").Length() != 0 {
		t.Fatal("expected no links when autoLinkUrls is false")
	}
}

func TestServiceToHTML_CodeStyles(t *testing.T) {
	input := "Inline `x := 1`\n\n```go\nfmt.Println(\"<hi>\")\n```"

	defaults, err := markdown.NewService(runtimeconfig.DefaultConfig()).ToHTML(context.Background(), input)
	if err != nil {
		t.Fatalf("ToHTML returned error: %v", err)
	}
	if !strings.Contains(defaults, "<code>x := 1</code>") {
		t.Fatalf("expected default inline code markup, got %s", defaults)
	}
	if !strings.Contains(defaults, `<pre><code class="language-go">fmt.Println(&quot;&lt;hi&gt;&quot;)`) {
		t.Fatalf("expected language class and escaped body, got %s", defaults)
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.CodeStyleHTMLOpen = `<code class="inline">`
	cfg.CodeStyleHTMLClose = "</code>"
	cfg.FencedCodeLanguageClassPrefix = "lang-"
	custom, err := markdown.NewService(cfg).ToHTML(context.Background(), input)
	if err != nil {
		t.Fatalf("ToHTML returned error: %v", err)
	}
	if !strings.Contains(custom, `<code class="inline">x := 1</code>`) {
		t.Fatalf("expected custom inline code markup, got %s", custom)
	}
	if !strings.Contains(custom, `<code class="lang-go">`) {
		t.Fatalf("expected custom language prefix, got %s", custom)
	}
}

func TestServiceToHTML_StrikethroughSubscriptAndTasks(t *testing.T) {
	doc := render(t, markdown.NewService(runtimeconfig.DefaultConfig()),
		"~~gone~~ and H~2~O\n\n- [x] done\n- [ ] todo")

	if got := doc.Find("del").Text(); got != "gone" {
		t.Fatalf("expected strikethrough, got %q", got)
	}
	if got := doc.Find("sub").Text(); got != "2" {
		t.Fatalf("expected subscript, got %q", got)
	}
	boxes := doc.Find(`input[type="checkbox"]`)
	if boxes.Length() != 2 {
		t.Fatalf("expected two task checkboxes, got %d", boxes.Length())
	}
	if _, checked := boxes.Eq(0).Attr("checked"); !checked {
		t.Fatal("expected first task to be checked")
	}
}

func TestServiceToHTML_TableOfContents(t *testing.T) {
	doc := render(t, markdown.NewService(runtimeconfig.DefaultConfig()),
		"[TOC]\n\n## One\n\n### Two\n\n## Three")

	var hrefs []string
	doc.Find("ul li a").Each(func(_ int, s *goquery.Selection) {
		hrefs = append(hrefs, s.AttrOr("href", ""))
	})
	want := []string{"#one", "#two", "#three"}
	if strings.Join(hrefs, ",") != strings.Join(want, ",") {
		t.Fatalf("expected toc links %v, got %v", want, hrefs)
	}
	if strings.Contains(doc.Text(), "[TOC]") {
		t.Fatal("expected the marker to be replaced")
	}
}

func TestServiceToHTML_PassesRawHTML(t *testing.T) {
	html, err := markdown.NewService(runtimeconfig.DefaultConfig()).
		ToHTML(context.Background(), `<div class="note">kept</div>`)
	if err != nil {
		t.Fatalf("ToHTML returned error: %v", err)
	}
	if !strings.Contains(html, `<div class="note">kept</div>`) {
		t.Fatalf("expected raw html to pass through, got %s", html)
	}
}

func TestServiceToMarkdown(t *testing.T) {
	svc := markdown.NewService(runtimeconfig.DefaultConfig())

	md, err := svc.ToMarkdown(context.Background(), "  <h1>Title</h1><p>Hello <strong>world</strong></p>  ")
	if err != nil {
		t.Fatalf("ToMarkdown returned error: %v", err)
	}
	if !strings.Contains(md, "# Title") || !strings.Contains(md, "**world**") {
		t.Fatalf("unexpected markdown %q", md)
	}
}

func TestServiceRoundTrip(t *testing.T) {
	svc := markdown.NewService(runtimeconfig.DefaultConfig())
	inputs := []string{
		"#### Hello World",
		"Some *emphasis*, **strong** and ~~gone~~ text.",
		"- one\n- two\n  - nested",
		"| a | b |\n|---|---|\n| wide ||\n",
		"```go\nfunc main() {}\n```",
		"[TOC]\n\n## A\n\n## B",
	}

	for _, input := range inputs {
		html, err := svc.ToHTML(context.Background(), input)
		if err != nil {
			t.Fatalf("ToHTML(%q) returned error: %v", input, err)
		}
		if _, err := svc.ToMarkdown(context.Background(), html); err != nil {
			t.Fatalf("ToMarkdown(ToHTML(%q)) returned error: %v", input, err)
		}
	}

	html, _ := svc.ToHTML(context.Background(), "#### Hello World")
	md, _ := svc.ToMarkdown(context.Background(), html)
	if !strings.Contains(md, "Hello World") {
		t.Fatalf("expected heading text to survive the round trip, got %q", md)
	}
}

func TestServiceConcurrentFirstUseBuildsDelegatesOnce(t *testing.T) {
	metrics := newCountingMetrics()
	svc := markdown.NewService(runtimeconfig.DefaultConfig(), markdown.WithMetrics(metrics))

	const workers = 16
	results := make([]string, workers)
	errs := make([]error, workers)

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = svc.ToHTML(context.Background(), "#### Hello World\n\n| a | b |\n|---|---|\n| 1 | 2 |")
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d returned error: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Fatalf("worker %d produced different output", i)
		}
	}
	if !strings.Contains(results[0], `id="hello-world"`) {
		t.Fatalf("unexpected output %s", results[0])
	}

	if got := metrics.builds(interfaces.DelegateParser); got != 1 {
		t.Fatalf("expected one parser build, got %d", got)
	}
	if got := metrics.builds(interfaces.DelegateRenderer); got != 1 {
		t.Fatalf("expected one renderer build, got %d", got)
	}
	if got := metrics.builds(interfaces.DelegateConverter); got != 0 {
		t.Fatalf("expected converter to stay unbuilt, got %d", got)
	}
	if got := metrics.conversions(interfaces.DirectionToHTML); got != workers {
		t.Fatalf("expected %d observed conversions, got %d", workers, got)
	}
}

func TestServiceConfigErrorSurfacesOnFirstConversionAndIsCached(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.AnchorClass = `x" onclick="alert(1)`
	metrics := newCountingMetrics()
	svc := markdown.NewService(cfg, markdown.WithMetrics(metrics))

	_, first := svc.ToHTML(context.Background(), "# Title")
	if first == nil {
		t.Fatal("expected configuration error")
	}
	if !goerrors.IsCategory(first, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", first)
	}

	_, second := svc.ToHTML(context.Background(), "# Title")
	if second != first {
		t.Fatalf("expected the cached error, got %v", second)
	}
	if _, err := svc.ToMarkdown(context.Background(), "<p>x</p>"); err == nil {
		t.Fatal("expected converter build to fail with the same configuration")
	}

	if got := metrics.builds(interfaces.DelegateParser); got != 0 {
		t.Fatalf("expected no successful builds, got %d", got)
	}
	if got := metrics.failures(interfaces.DirectionToHTML); got != 2 {
		t.Fatalf("expected two recorded failures, got %d", got)
	}
}

func TestServiceHonoursCancelledContext(t *testing.T) {
	svc := markdown.NewService(runtimeconfig.DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.ToHTML(ctx, "# x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := svc.ToMarkdown(ctx, "<p>x</p>"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestServiceSettingsAndExtensions(t *testing.T) {
	cfg, err := runtimeconfig.FromMap(map[string]any{
		"autoLinkUrls":             false,
		"enableYouTubeTransformer": true,
	})
	if err != nil {
		t.Fatalf("FromMap returned error: %v", err)
	}
	svc := markdown.NewService(cfg)

	settings := svc.Settings()
	if settings[runtimeconfig.KeyAutoLinkURLs] != false {
		t.Fatalf("expected override visible before first conversion, got %#v", settings)
	}
	if settings[runtimeconfig.KeyEnableYouTubeTransformer] != true {
		t.Fatalf("expected youtube override, got %#v", settings)
	}

	got := strings.Join(svc.Extensions(), ",")
	want := "table,strikethrough-subscript,tasklist,toc,anchorlink,youtube"
	if got != want {
		t.Fatalf("expected extensions %s, got %s", want, got)
	}

	all := strings.Join(markdown.Extensions(runtimeconfig.DefaultConfig()), ",")
	if all != "table,strikethrough-subscript,tasklist,toc,autolink,anchorlink" {
		t.Fatalf("unexpected default extensions %s", all)
	}
}

func render(t *testing.T, svc *markdown.Service, input string) *goquery.Document {
	t.Helper()
	html, err := svc.ToHTML(context.Background(), input)
	if err != nil {
		t.Fatalf("ToHTML returned error: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse rendered html: %v", err)
	}
	return doc
}

type countingMetrics struct {
	mu          sync.Mutex
	builtCount  map[string]int
	observed    map[string]int
	failedCount map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		builtCount:  map[string]int{},
		observed:    map[string]int{},
		failedCount: map[string]int{},
	}
}

func (m *countingMetrics) ObserveConversion(direction string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observed[direction]++
}

func (m *countingMetrics) IncrementConversionError(direction string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failedCount[direction]++
}

func (m *countingMetrics) IncrementDelegateBuild(delegate string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.builtCount[delegate]++
}

func (m *countingMetrics) builds(delegate string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.builtCount[delegate]
}

func (m *countingMetrics) conversions(direction string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.observed[direction]
}

func (m *countingMetrics) failures(direction string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failedCount[direction]
}
