package parse

import "errors"

var (
	// ErrValidation reports content that could not be decoded into the
	// requested type after every recovery layer was tried.
	ErrValidation = errors.New("llmwrap: content failed validation")

	// ErrFormat reports content that does not carry the requested block
	// format at all, as opposed to carrying it in a broken form.
	ErrFormat = errors.New("llmwrap: content has wrong format")
)
