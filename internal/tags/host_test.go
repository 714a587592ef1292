package tags

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-markdown/internal/component"
	"github.com/goliatone/go-markdown/internal/markdown"
	"github.com/goliatone/go-markdown/internal/runtimeconfig"
	"github.com/goliatone/go-markdown/pkg/interfaces"
)

func newTestHost(t *testing.T) *Host {
	t.Helper()

	registry := component.NewRegistry(nil)
	construct := component.NewMarkdown(markdown.NewService(runtimeconfig.DefaultConfig()), nil)
	if err := registry.Register(construct.Definition()); err != nil {
		t.Fatalf("register markdown: %v", err)
	}
	if err := registry.Register(cardDefinition()); err != nil {
		t.Fatalf("register card: %v", err)
	}
	return NewHost(registry, nil)
}

func cardDefinition() interfaces.ComponentDefinition {
	return interfaces.ComponentDefinition{
		Name:         "card",
		Attributes:   []interfaces.ComponentAttribute{{Name: "title", Required: true}},
		RequiresBody: true,
		Invoker: func(ctx context.Context, host interfaces.ComponentHost, attrs map[string]any, body interfaces.ComponentBody) (interfaces.BodyResult, error) {
			var inner strings.Builder
			result, err := body(ctx, &inner)
			if err != nil || result.IsEarlyExit() {
				return result, err
			}
			html := fmt.Sprintf(`<div class="card" title="%s">%s</div>`, attrs["title"], inner.String())
			return interfaces.DefaultReturn, host.WriteToBuffer(ctx, html)
		},
	}
}

func TestHostRender_Golden(t *testing.T) {
	cases := []string{"markdown_basic", "nested"}
	host := newTestHost(t)

	for _, name := range cases {
		t.Run(name, func(t *testing.T) {
			input := mustReadFile(t, name+"_input.txt")
			want := mustReadFile(t, name+"_output.golden")

			got, err := host.Render(context.Background(), input, nil)
			if err != nil {
				t.Fatalf("Render() unexpected error: %v", err)
			}
			if strings.TrimSpace(got) != strings.TrimSpace(want) {
				t.Fatalf("Render() output mismatch\n got: %q\nwant: %q", got, want)
			}
		})
	}
}

func TestHostRender_VariableBinding(t *testing.T) {
	host := newTestHost(t)
	scope := NewScope(map[string]any{"existing": 1})

	got, err := host.Render(context.Background(), `A{{< markdown variable="summary" >}}**bold**{{< /markdown >}}B`, scope)
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	if got != "AB" {
		t.Fatalf("expected component output to be captured, got %q", got)
	}

	value, ok := scope.Get("summary")
	if !ok || strings.TrimSpace(value.(string)) != "<p><strong>bold</strong></p>" {
		t.Fatalf("unexpected summary binding %#v", value)
	}
	if vars := scope.Variables(); len(vars) != 2 {
		t.Fatalf("expected two variables, got %#v", vars)
	}
}

func TestHostRender_ReturnInsideBody(t *testing.T) {
	host := newTestHost(t)
	scope := NewScope(nil)

	input := "Before\n{{< markdown variable=\"out\" >}}# Title\n{{< return >}}ignored{{< /markdown >}}\nAfter"
	got, err := host.Render(context.Background(), input, scope)
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	if got != "Before\n" {
		t.Fatalf("expected rendering to stop at the early exit, got %q", got)
	}
	if _, ok := scope.Get("out"); ok {
		t.Fatalf("expected variable to stay unset, got %#v", scope.Variables())
	}
}

func TestHostRender_ReturnPropagatesThroughNesting(t *testing.T) {
	host := newTestHost(t)

	input := `{{< card title="x" >}}{{< markdown >}}text{{< return >}}{{< /markdown >}}{{< /card >}}tail`
	got, err := host.Render(context.Background(), input, nil)
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	if got != "" {
		t.Fatalf("expected no output, got %q", got)
	}
}

func TestHostRender_Errors(t *testing.T) {
	host := newTestHost(t)

	cases := []struct {
		name  string
		input string
		want  error
	}{
		{"unknown component", `{{< gallery >}}x{{< /gallery >}}`, component.ErrUnknownComponent},
		{"mismatched close", `{{< markdown >}}{{< card title="a" >}}x{{< /markdown >}}{{< /card >}}`, ErrMismatchedClose},
		{"unexpected close", `text{{< /markdown >}}`, ErrUnexpectedClose},
		{"body required", `{{< markdown />}}`, ErrBodyRequired},
		{"missing attribute", `{{< card >}}x{{< /card >}}`, component.ErrMissingAttribute},
		{"unknown attribute", `{{< markdown lang="en" >}}x{{< /markdown >}}`, component.ErrUnknownAttribute},
		{"malformed attributes", `{{< card title="a" loose >}}x{{< /card >}}`, ErrMalformedAttributes},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := host.Render(context.Background(), tc.input, nil)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !goerrors.IsWrapped(err) {
				t.Fatalf("expected go-errors wrapping, got %T", err)
			}
		})
	}
}

func TestHostRender_UnknownComponentIsNotFound(t *testing.T) {
	_, err := newTestHost(t).Render(context.Background(), `intro {{< gallery />}}`, nil)
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category, got %v", err)
	}

	var typed *goerrors.Error
	if !errors.As(err, &typed) {
		t.Fatalf("expected *goerrors.Error, got %T", err)
	}
	if typed.TextCode != component.TextCodeNotFound {
		t.Fatalf("expected text code %s, got %s", component.TextCodeNotFound, typed.TextCode)
	}
	if typed.Metadata["offset"] != 6 {
		t.Fatalf("expected offset metadata 6, got %#v", typed.Metadata)
	}
}

func TestParse_Attributes(t *testing.T) {
	nodes, err := parse(`{{< card title="Hello world" tone='warm' size=large />}}`)
	if err != nil {
		t.Fatalf("parse() unexpected error: %v", err)
	}
	if len(nodes) != 1 || nodes[0].hasBody {
		t.Fatalf("expected a single bodiless component, got %#v", nodes)
	}
	attrs := nodes[0].attrs
	if attrs["title"] != "Hello world" || attrs["tone"] != "warm" || attrs["size"] != "large" {
		t.Fatalf("unexpected attributes %#v", attrs)
	}
}

func TestParse_ClosingTags(t *testing.T) {
	_, err := parse(`{{< card >}}{{< card >}}x{{< /card >}}`)
	if !errors.Is(err, ErrUnterminated) {
		t.Fatalf("expected ErrUnterminated, got %v", err)
	}

	nodes, err := parse(`{{< card >}}body without close`)
	if err != nil {
		t.Fatalf("expected an unclosed tag to be treated as bodiless, got %v", err)
	}
	if len(nodes) != 2 || nodes[0].hasBody {
		t.Fatalf("unexpected nodes %#v", nodes)
	}
}

func mustReadFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
