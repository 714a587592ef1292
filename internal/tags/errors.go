package tags

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrUnexpectedClose indicates a closing tag with no open component.
	ErrUnexpectedClose = errors.New("tags: unexpected closing tag")
	// ErrMismatchedClose indicates a closing tag that does not match the innermost open component.
	ErrMismatchedClose = errors.New("tags: mismatched closing tag")
	// ErrUnterminated indicates content ended while a component was still open.
	ErrUnterminated = errors.New("tags: unterminated component")
	// ErrMalformedAttributes indicates attribute text that is not a list of name="value" pairs.
	ErrMalformedAttributes = errors.New("tags: malformed attributes")
	// ErrBodyRequired indicates a component that needs a body was used without one.
	ErrBodyRequired = errors.New("tags: component requires a body")
)

// TextCodeSyntaxInvalid is attached to every template syntax error.
const TextCodeSyntaxInvalid = "TAGS_SYNTAX_INVALID"

func wrapSyntaxError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid component syntax").
		WithTextCode(TextCodeSyntaxInvalid)
}

// withOffset records where in the content the failing tag starts.
func withOffset(err error, offset int) error {
	var typed *goerrors.Error
	if errors.As(err, &typed) {
		typed.WithMetadata(map[string]any{"offset": offset})
	}
	return err
}
