package puzzle

import "errors"

// Configuration errors. They are detected before any grid is built and
// abort the generation.
var (
	// ErrNoWords indicates the word list was empty after normalization.
	ErrNoWords = errors.New("at least one non-empty word must be provided")

	// ErrInvalidDimensions indicates a non-positive grid width or height.
	ErrInvalidDimensions = errors.New("grid dimensions must be positive")

	// ErrWordTooLong indicates a word cannot fit the configured grid.
	ErrWordTooLong = errors.New("word is longer than the grid allows")

	// ErrTooManyWords indicates more words than available rows.
	ErrTooManyWords = errors.New("more words than available rows")

	// ErrNoFiller indicates an empty filler alphabet.
	ErrNoFiller = errors.New("filler alphabet must not be empty")
)

// IsConfigError reports whether err is one of the configuration errors.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrNoWords) ||
		errors.Is(err, ErrInvalidDimensions) ||
		errors.Is(err, ErrWordTooLong) ||
		errors.Is(err, ErrTooManyWords) ||
		errors.Is(err, ErrNoFiller)
}
