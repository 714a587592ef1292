package tags

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"strings"
	"sync"

	"github.com/goliatone/go-markdown/internal/component"
	"github.com/goliatone/go-markdown/internal/logging"
	"github.com/goliatone/go-markdown/pkg/interfaces"
)

// Scope holds the variables components bind while content renders. It is
// safe for concurrent use.
type Scope struct {
	mu   sync.RWMutex
	vars map[string]any
}

// NewScope returns a scope seeded with a copy of initial.
func NewScope(initial map[string]any) *Scope {
	vars := make(map[string]any, len(initial))
	maps.Copy(vars, initial)
	return &Scope{vars: vars}
}

// Get returns the value bound to name.
func (s *Scope) Get(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.vars[name]
	return value, ok
}

// Set binds value to name.
func (s *Scope) Set(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = value
}

// Variables returns a copy of every binding.
func (s *Scope) Variables() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.vars)
}

// Host renders content containing {{< name >}}body{{< /name >}} components
// registered in a component.Registry.
type Host struct {
	registry interfaces.ComponentRegistry
	logger   interfaces.Logger
}

// NewHost returns a host resolving components through registry.
func NewHost(registry interfaces.ComponentRegistry, logger interfaces.Logger) *Host {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Host{registry: registry, logger: logger}
}

// Render replaces every component in content with its output. Variables
// bound by components land in scope, which may be nil when the caller does
// not need them. A top-level {{< return >}} stops rendering and keeps the
// output produced so far.
func (h *Host) Render(ctx context.Context, content string, scope *Scope) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if scope == nil {
		scope = NewScope(nil)
	}

	nodes, err := parse(content)
	if err != nil {
		h.logger.Warn("tags.parse.failed", "error", err)
		return "", err
	}

	var out strings.Builder
	result, err := h.renderNodes(ctx, nodes, &out, scope)
	if err != nil {
		return "", err
	}
	if result.IsEarlyExit() {
		h.logger.Debug("tags.render.returned")
	}
	return out.String(), nil
}

func (h *Host) renderNodes(ctx context.Context, nodes []*node, w io.Writer, scope *Scope) (interfaces.BodyResult, error) {
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return interfaces.DefaultReturn, err
		}
		switch n.kind {
		case textNode:
			if _, err := io.WriteString(w, n.text); err != nil {
				return interfaces.DefaultReturn, err
			}
		case returnNode:
			return interfaces.EarlyExit(nil), nil
		case componentNode:
			result, err := h.invoke(ctx, n, w, scope)
			if err != nil {
				return result, err
			}
			if result.IsEarlyExit() {
				return result, nil
			}
		}
	}
	return interfaces.DefaultReturn, nil
}

func (h *Host) invoke(ctx context.Context, n *node, w io.Writer, scope *Scope) (interfaces.BodyResult, error) {
	def, err := h.registry.Lookup(n.name)
	if err != nil {
		return interfaces.DefaultReturn, withOffset(err, n.offset)
	}
	if def.RequiresBody && !n.hasBody {
		return interfaces.DefaultReturn, wrapSyntaxError(fmt.Errorf("%w: %s at offset %d", ErrBodyRequired, n.name, n.offset))
	}

	attrs, err := component.ResolveAttributes(def, n.attrs)
	if err != nil {
		return interfaces.DefaultReturn, err
	}

	body := func(ctx context.Context, bw io.Writer) (interfaces.BodyResult, error) {
		return h.renderNodes(ctx, n.children, bw, scope)
	}
	return def.Invoker(ctx, &frame{scope: scope, out: w}, attrs, body)
}

var errVariableName = errors.New("tags: variable name is required")

// frame is the host view handed to one component invocation. Its buffer is
// the writer of the enclosing body, or the final output at the top level.
type frame struct {
	scope *Scope
	out   io.Writer
}

func (f *frame) SetVariable(_ context.Context, name string, value any) error {
	if strings.TrimSpace(name) == "" {
		return errVariableName
	}
	f.scope.Set(name, value)
	return nil
}

func (f *frame) WriteToBuffer(_ context.Context, content string) error {
	_, err := io.WriteString(f.out, content)
	return err
}
