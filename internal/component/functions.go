package component

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cast"

	"github.com/goliatone/go-markdown/pkg/interfaces"
)

// Function names registered by RegisterMarkdownFunctions.
const (
	FunctionMarkdown       = "markdown"
	FunctionHTMLToMarkdown = "htmlToMarkdown"
)

// Functions is a thread-safe registry of plain functions exposed to hosts.
// Names are case-insensitive.
type Functions struct {
	mu        sync.RWMutex
	functions map[string]namedFunction
}

type namedFunction struct {
	name string
	fn   interfaces.ComponentFunction
}

// NewFunctions returns an empty function registry.
func NewFunctions() *Functions {
	return &Functions{functions: make(map[string]namedFunction)}
}

// Register stores fn under name.
func (f *Functions) Register(name string, fn interfaces.ComponentFunction) error {
	key := normalizeName(name)
	if key == "" || !namePattern.MatchString(key) {
		return wrapDefinitionError(fmt.Errorf("%w: invalid function name %q", ErrInvalidDefinition, name))
	}
	if fn == nil {
		return wrapDefinitionError(fmt.Errorf("%w: function %s has no implementation", ErrInvalidDefinition, name))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.functions[key]; exists {
		return wrapDefinitionError(fmt.Errorf("%w: function %s", ErrDuplicateDefinition, name))
	}
	f.functions[key] = namedFunction{name: name, fn: fn}
	return nil
}

// Get returns the function registered under name.
func (f *Functions) Get(name string) (interfaces.ComponentFunction, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	entry, ok := f.functions[normalizeName(name)]
	return entry.fn, ok
}

// Names returns the registered names, as given at registration, in sorted order.
func (f *Functions) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.functions))
	for _, entry := range f.functions {
		names = append(names, entry.name)
	}
	sort.Strings(names)
	return names
}

// Call invokes the named function.
func (f *Functions) Call(ctx context.Context, name string, args ...any) (any, error) {
	fn, ok := f.Get(name)
	if !ok {
		return nil, wrapNotFound(fmt.Errorf("%w: %s", ErrUnknownFunction, name), "function not registered")
	}
	return fn(ctx, args...)
}

// RegisterMarkdownFunctions exposes markdown(text) and htmlToMarkdown(html)
// backed by converter.
func RegisterMarkdownFunctions(functions *Functions, converter interfaces.MarkdownConverter) error {
	if converter == nil {
		return ErrConverterRequired
	}
	if err := functions.Register(FunctionMarkdown, textFunction(FunctionMarkdown, converter.ToHTML)); err != nil {
		return err
	}
	return functions.Register(FunctionHTMLToMarkdown, textFunction(FunctionHTMLToMarkdown, converter.ToMarkdown))
}

func textFunction(name string, convert func(context.Context, string) (string, error)) interfaces.ComponentFunction {
	return func(ctx context.Context, args ...any) (any, error) {
		if len(args) != 1 {
			return nil, wrapArgumentError(fmt.Errorf("%w: %s expects 1 argument, got %d", ErrInvalidArguments, name, len(args)), name)
		}
		input, err := cast.ToStringE(args[0])
		if err != nil {
			return nil, wrapArgumentError(fmt.Errorf("%w: %v", ErrInvalidArguments, err), name)
		}
		return convert(ctx, input)
	}
}
