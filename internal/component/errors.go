package component

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrInvalidDefinition indicates the definition failed validation.
	ErrInvalidDefinition = errors.New("component: invalid definition")
	// ErrDuplicateDefinition indicates a definition with the same name already exists.
	ErrDuplicateDefinition = errors.New("component: duplicate definition")
	// ErrUnknownComponent indicates no component is registered under the requested name.
	ErrUnknownComponent = errors.New("component: unknown component")
	// ErrUnknownFunction indicates no function is registered under the requested name.
	ErrUnknownFunction = errors.New("component: unknown function")
	// ErrUnknownAttribute indicates the invocation supplied an attribute the definition does not declare.
	ErrUnknownAttribute = errors.New("component: unknown attribute")
	// ErrMissingAttribute indicates a required attribute was not supplied.
	ErrMissingAttribute = errors.New("component: missing required attribute")
	// ErrAttributeType indicates an attribute value has the wrong type.
	ErrAttributeType = errors.New("component: attribute type mismatch")
	// ErrInvalidArguments indicates a function was called with the wrong arguments.
	ErrInvalidArguments = errors.New("component: invalid function arguments")
	// ErrConverterRequired indicates a construct was built without a converter.
	ErrConverterRequired = errors.New("component: markdown converter is required")
)

const (
	TextCodeInvalidDefinition = "COMPONENT_INVALID_DEFINITION"
	TextCodeInvalidAttributes = "COMPONENT_INVALID_ATTRIBUTES"
	TextCodeInvalidArguments  = "COMPONENT_INVALID_ARGUMENTS"
	TextCodeNotFound          = "COMPONENT_NOT_FOUND"
	TextCodeHostFailed        = "COMPONENT_HOST_FAILED"
)

func wrapDefinitionError(err error) error {
	return wrap(err, goerrors.CategoryBadInput, "invalid component definition", TextCodeInvalidDefinition)
}

func wrapAttributeError(err error, component string) error {
	return wrap(err, goerrors.CategoryBadInput, "invalid attributes for component "+component, TextCodeInvalidAttributes)
}

func wrapArgumentError(err error, function string) error {
	return wrap(err, goerrors.CategoryBadInput, "invalid arguments for function "+function, TextCodeInvalidArguments)
}

func wrapNotFound(err error, message string) error {
	return wrap(err, goerrors.CategoryNotFound, message, TextCodeNotFound)
}

func wrapHostError(err error, component string) error {
	return wrap(err, goerrors.CategoryOperation, "host rejected output of component "+component, TextCodeHostFailed)
}

func wrap(err error, category goerrors.Category, message, textCode string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, category, message).WithTextCode(textCode)
}
