package component

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-markdown/pkg/interfaces"
)

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// reservedNames cannot be registered because hosts give them a meaning of their own.
var reservedNames = map[string]struct{}{
	"return": {},
}

// Validator performs definition and attribute validation.
type Validator struct{}

// NewValidator returns a Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateDefinition ensures the definition has a usable name, an invoker and
// uniquely named attributes.
func (v *Validator) ValidateDefinition(def interfaces.ComponentDefinition) error {
	err := validation.ValidateStruct(&def,
		validation.Field(&def.Name,
			validation.Required,
			validation.Match(namePattern).Error("must start with a letter and contain only letters, digits, '-' or '_'"),
			validation.By(notReserved),
		),
		validation.Field(&def.Invoker, validation.By(invokerRequired)),
		validation.Field(&def.Attributes, validation.By(uniqueAttributes)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	return nil
}

func notReserved(value any) error {
	name, _ := value.(string)
	if _, reserved := reservedNames[normalizeName(name)]; reserved {
		return errors.New("is reserved")
	}
	return nil
}

func invokerRequired(value any) error {
	if invoker, _ := value.(interfaces.ComponentInvoker); invoker == nil {
		return errors.New("is required")
	}
	return nil
}

func uniqueAttributes(value any) error {
	attrs, _ := value.([]interfaces.ComponentAttribute)
	seen := make(map[string]struct{}, len(attrs))
	for _, attr := range attrs {
		name := normalizeName(attr.Name)
		if name == "" {
			return errors.New("attribute name required")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate attribute %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// ResolveAttributes checks raw invocation attributes against the definition.
// Attribute names are matched case-insensitively and returned lowercased;
// defaults fill in for omitted optional attributes.
func ResolveAttributes(def interfaces.ComponentDefinition, raw map[string]any) (map[string]any, error) {
	declared := make(map[string]interfaces.ComponentAttribute, len(def.Attributes))
	for _, attr := range def.Attributes {
		declared[normalizeName(attr.Name)] = attr
	}

	resolved := make(map[string]any, len(def.Attributes))
	var unknown []string
	for key, value := range raw {
		name := normalizeName(key)
		if _, ok := declared[name]; !ok {
			unknown = append(unknown, key)
			continue
		}
		resolved[name] = value
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, wrapAttributeError(fmt.Errorf("%w: %s", ErrUnknownAttribute, strings.Join(unknown, ", ")), def.Name)
	}

	for name, attr := range declared {
		if _, ok := resolved[name]; ok {
			continue
		}
		if attr.Required {
			return nil, wrapAttributeError(fmt.Errorf("%w: %s", ErrMissingAttribute, name), def.Name)
		}
		if attr.Default != nil {
			resolved[name] = attr.Default
		}
	}
	return resolved, nil
}
