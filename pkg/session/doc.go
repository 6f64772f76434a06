// Package session defines the session service consumed by formstate.
//
// formstate never owns storage. It writes one entry per form identity under
// Key(prefix, identity) and reads the previous request's flashed input through
// OldInput. Applications adapt their existing session middleware to Session;
// MemorySession covers tests and examples.
//
// Request lifecycle, as modelled by MemorySession:
//
//	request N:   handler calls FlashInput(submitted) after a failed validation
//	Advance():   flashed input becomes OldInput, the previous one is dropped
//	request N+1: OldInput returns the submitted values for form redisplay
package session
