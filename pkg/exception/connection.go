package exception

import "errors"

var (
	ErrConnectionClosed = errors.New("connection: closed")
	ErrQueueFull        = errors.New("connection: event queue full")
	ErrQueueClosed      = errors.New("connection: event queue closed")
	ErrNoResponse       = errors.New("connection: no response expected")
)
