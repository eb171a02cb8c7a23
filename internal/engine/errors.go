package engine

import "errors"

// Remote tier failure taxonomy. Both are recovered by the fallback tier and
// never surfaced to callers of the Engine.
var (
	// ErrRemoteUnavailable: the network call failed or the endpoint
	// returned a non-success status.
	ErrRemoteUnavailable = errors.New("remote question source unavailable")

	// ErrRemoteMalformed: the call succeeded but the output could not be
	// parsed into valid questions.
	ErrRemoteMalformed = errors.New("remote question source returned malformed output")
)
