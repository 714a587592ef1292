package tags

import (
	"fmt"
	"regexp"
	"strings"
)

// ReturnTag is the reserved tag that ends the enclosing body early.
const ReturnTag = "return"

var (
	tagPattern       = regexp.MustCompile(`{{<\s*(/)?\s*([A-Za-z][A-Za-z0-9_-]*)([^>]*?)\s*(/)?>}}`)
	attributePattern = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_-]*)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"']+))`)
)

type nodeKind int

const (
	textNode nodeKind = iota
	componentNode
	returnNode
)

type node struct {
	kind     nodeKind
	text     string
	name     string
	attrs    map[string]any
	hasBody  bool
	children []*node
	offset   int
}

// parse turns content into a tree of text, component and return nodes. A
// start tag without a later closing tag of the same name, or one written as
// {{< name />}}, has no body.
func parse(content string) ([]*node, error) {
	root := &node{kind: componentNode, hasBody: true}
	stack := []*node{root}
	position := 0

	appendText := func(text string) {
		if text == "" {
			return
		}
		parent := stack[len(stack)-1]
		parent.children = append(parent.children, &node{kind: textNode, text: text})
	}

	for _, loc := range tagPattern.FindAllStringSubmatchIndex(content, -1) {
		start, end := loc[0], loc[1]
		appendText(content[position:start])
		position = end

		closing := loc[2] >= 0
		name := strings.ToLower(content[loc[4]:loc[5]])
		rawAttrs := content[loc[6]:loc[7]]
		selfClosing := loc[8] >= 0

		if closing {
			if len(stack) == 1 {
				return nil, wrapSyntaxError(fmt.Errorf("%w: %s at offset %d", ErrUnexpectedClose, name, start))
			}
			open := stack[len(stack)-1]
			if open.name != name {
				return nil, wrapSyntaxError(fmt.Errorf("%w: %s, expected %s (opened at offset %d)", ErrMismatchedClose, name, open.name, open.offset))
			}
			stack = stack[:len(stack)-1]
			continue
		}

		parent := stack[len(stack)-1]
		if name == ReturnTag {
			parent.children = append(parent.children, &node{kind: returnNode, offset: start})
			continue
		}

		attrs, err := parseAttributes(rawAttrs)
		if err != nil {
			return nil, wrapSyntaxError(fmt.Errorf("%w (%s at offset %d)", err, name, start))
		}

		n := &node{kind: componentNode, name: name, attrs: attrs, offset: start}
		parent.children = append(parent.children, n)
		if selfClosing || !hasClosingTag(content[end:], name) {
			continue
		}
		n.hasBody = true
		stack = append(stack, n)
	}
	appendText(content[position:])

	if len(stack) > 1 {
		open := stack[len(stack)-1]
		return nil, wrapSyntaxError(fmt.Errorf("%w: %s opened at offset %d", ErrUnterminated, open.name, open.offset))
	}
	return root.children, nil
}

func hasClosingTag(remainder, name string) bool {
	for _, loc := range tagPattern.FindAllStringSubmatchIndex(remainder, -1) {
		if loc[2] >= 0 && strings.EqualFold(remainder[loc[4]:loc[5]], name) {
			return true
		}
	}
	return false
}

func parseAttributes(raw string) (map[string]any, error) {
	attrs := map[string]any{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return attrs, nil
	}

	matches := attributePattern.FindAllStringSubmatchIndex(raw, -1)
	consumed := 0
	for _, m := range matches {
		if strings.TrimSpace(raw[consumed:m[0]]) != "" {
			return nil, fmt.Errorf("%w: unexpected %q", ErrMalformedAttributes, strings.TrimSpace(raw[consumed:m[0]]))
		}
		consumed = m[1]

		key := raw[m[2]:m[3]]
		var value string
		switch {
		case m[4] >= 0:
			value = raw[m[4]:m[5]]
		case m[6] >= 0:
			value = raw[m[6]:m[7]]
		default:
			value = raw[m[8]:m[9]]
		}
		attrs[key] = value
	}
	if rest := strings.TrimSpace(raw[consumed:]); rest != "" {
		return nil, fmt.Errorf("%w: unexpected %q", ErrMalformedAttributes, rest)
	}
	return attrs, nil
}
