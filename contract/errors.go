package contract

import "errors"

// Host rejections and core guards, matched with errors.Is.
var (
	// ErrNotFound: the named frame, page, master page or style does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNameExists: an object with the requested name already exists.
	ErrNameExists = errors.New("name exists")
	// ErrInvalidPage: page index out of range.
	ErrInvalidPage = errors.New("invalid page")
	// ErrInvalidLink: linking would break the single chain (cycle, second successor, non-empty target).
	ErrInvalidLink = errors.New("invalid link")
	// ErrIterationBudget: a loop hit its defensive upper bound.
	ErrIterationBudget = errors.New("iteration budget exceeded")
)
