package markdown

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeRenderFailed  = "MARKDOWN_RENDER_FAILED"
	TextCodeConvertFailed = "MARKDOWN_CONVERT_FAILED"
	TextCodeBuildFailed   = "MARKDOWN_DELEGATE_BUILD_FAILED"
)

func wrapRenderError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryOperation, "markdown render failed").
		WithTextCode(TextCodeRenderFailed)
}

func wrapConvertError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryOperation, "html to markdown conversion failed").
		WithTextCode(TextCodeConvertFailed)
}

func wrapBuildError(err error, delegate string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "unable to build markdown "+delegate).
		WithTextCode(TextCodeBuildFailed)
}
