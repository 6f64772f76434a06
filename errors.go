package formstate

import "errors"

var (
	// ErrNoSession is returned by operations that need a session when none
	// was configured.
	ErrNoSession = errors.New("formstate: session not configured")
	// ErrCorruptState indicates the persisted entry could not be decoded.
	ErrCorruptState = errors.New("formstate: persisted state is corrupt")
	// ErrUnsupportedRecord is returned by LoadRecord for values it cannot
	// read attributes from.
	ErrUnsupportedRecord = errors.New("formstate: unsupported record type")
	// ErrFlashUnsupported is returned by FlashInput when the session cannot
	// flash input.
	ErrFlashUnsupported = errors.New("formstate: session does not support flashing input")
	// ErrNoForms is returned when the request context carries no Forms.
	ErrNoForms = errors.New("formstate: no forms registry in context")
)
