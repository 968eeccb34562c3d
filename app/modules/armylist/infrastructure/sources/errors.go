package sources

import "errors"

var (
	// ErrUnsupportedFileType is returned by the factory for an unknown extension.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrEmptySource is returned when a file carries no content at all.
	ErrEmptySource = errors.New("source is empty")

	// ErrMissingColumn is returned when a results sheet lacks a required column.
	ErrMissingColumn = errors.New("required column not found")
)
