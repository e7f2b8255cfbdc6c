package exception

import "errors"

// Wire protocol errors
var (
	// ErrMalformedMessage is returned when the declared payload size does not match the
	// fixed size of the message type, or the message type is unknown.
	ErrMalformedMessage = errors.New("protocol: malformed message")
)
