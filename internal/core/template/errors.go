package template

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported template document format")
	ErrInvalidTemplate   = errors.New("invalid template")
	ErrDuplicateTemplate = errors.New("duplicate template name")
	ErrUnknownTemplate   = errors.New("unknown template")

	ErrAlreadyRegistered = errors.New("capability type already registered")
	ErrUnknownCapability = errors.New("unknown capability type")
)
