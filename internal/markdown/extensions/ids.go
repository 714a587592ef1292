package extensions

import (
	"strconv"
	"strings"
	"unicode"

	slug "github.com/goliatone/go-slug"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
)

const fallbackHeadingID = "heading"

// headingSlugger keeps letters and digits from any script, lowercased. Spaces,
// underscores and dashes become single dashes; everything else is dropped.
var headingSlugger slug.Normalizer = slug.NormalizerFunc(func(value string) (string, error) {
	var b strings.Builder
	b.Grow(len(value))
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.Is(unicode.Mn, r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-', r == '_':
			dash = true
		}
	}
	if b.Len() == 0 {
		return "", slug.ErrEmptySlug
	}
	return b.String(), nil
})

// HeadingIDs generates slug based element ids, suffixing repeats with -1, -2
// and so on. A HeadingIDs value belongs to a single parse.
type HeadingIDs struct {
	used map[string]struct{}
}

var _ parser.IDs = (*HeadingIDs)(nil)

// NewHeadingIDs returns an empty id registry.
func NewHeadingIDs() *HeadingIDs {
	return &HeadingIDs{used: map[string]struct{}{}}
}

// Generate implements parser.IDs.
func (s *HeadingIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	base, err := headingSlugger.Normalize(string(value))
	if err != nil || base == "" {
		base = fallbackHeadingID
	}

	candidate := base
	for i := 1; ; i++ {
		if _, taken := s.used[candidate]; !taken {
			break
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
	s.used[candidate] = struct{}{}
	return []byte(candidate)
}

// Put implements parser.IDs.
func (s *HeadingIDs) Put(value []byte) {
	s.used[string(value)] = struct{}{}
}
