package apperr

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for input that breaks the
	// documented pack/prompt contract.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMissingLexicon signals that a mandatory lexicon file is absent.
	// The batch must abort rather than produce a partial report.
	ErrMissingLexicon = errors.New("missing lexicon")
)
