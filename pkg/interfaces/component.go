package interfaces

import (
	"context"
	"io"
)

// BodyResult reports how a component body finished. The zero value is the
// normal completion signal.
type BodyResult struct {
	earlyExit bool
	Value     any
}

// DefaultReturn is returned by components whose body ran to completion.
var DefaultReturn = BodyResult{}

// EarlyExit builds a result telling the enclosing construct to stop and hand
// value back to the host unchanged.
func EarlyExit(value any) BodyResult {
	return BodyResult{earlyExit: true, Value: value}
}

// IsEarlyExit reports whether the body asked to abandon the enclosing construct.
func (r BodyResult) IsEarlyExit() bool {
	return r.earlyExit
}

// ComponentHost is the slice of the host runtime a component may touch while
// it runs: the variables scope and the ambient output buffer.
type ComponentHost interface {
	SetVariable(ctx context.Context, name string, value any) error
	WriteToBuffer(ctx context.Context, content string) error
}

// ComponentBody executes the enclosed body, writing its output to w.
type ComponentBody func(ctx context.Context, w io.Writer) (BodyResult, error)

// ComponentInvoker runs a component with resolved attributes.
type ComponentInvoker func(ctx context.Context, host ComponentHost, attrs map[string]any, body ComponentBody) (BodyResult, error)

// ComponentDefinition describes a body-capturing construct exposed to hosts.
type ComponentDefinition struct {
	Name         string
	Description  string
	Attributes   []ComponentAttribute
	RequiresBody bool
	Invoker      ComponentInvoker
}

// ComponentAttribute describes a single attribute accepted by a component.
type ComponentAttribute struct {
	Name     string
	Required bool
	Default  any
}

// ComponentRegistry stores component definitions. Implementations must be
// safe for concurrent use.
type ComponentRegistry interface {
	// Register stores a definition and fails when the name is taken or the
	// definition is invalid.
	Register(definition ComponentDefinition) error
	// Get returns the definition registered under name.
	Get(name string) (ComponentDefinition, bool)
	// Lookup is Get for callers that want a not-found error.
	Lookup(name string) (ComponentDefinition, error)
	// List returns every definition sorted by name.
	List() []ComponentDefinition
	// Remove deletes the definition. Unknown names are ignored.
	Remove(name string)
}

// ComponentFunction is a plain function exposed to host templates, such as
// markdown(text).
type ComponentFunction func(ctx context.Context, args ...any) (any, error)
