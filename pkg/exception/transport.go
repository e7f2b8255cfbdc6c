package exception

import "errors"

// Listener errors
var (
	// ErrEmptyPathUDS is returned when a socket path is empty.
	ErrEmptyPathUDS = errors.New("uds: empty path")

	// ErrNilClientUDS is returned when a nil client receiver is used.
	ErrNilClientUDS = errors.New("uds: nil client")

	// ErrEmptyAddressTCP is returned when a TCP listen or dial address is empty.
	ErrEmptyAddressTCP = errors.New("tcp: empty address")
)
