package exception

import "errors"

// Per-message business outcomes. None of these terminate a connection.
var (
	ErrInvalidField      = errors.New("order: invalid field")
	ErrDuplicateOrder    = errors.New("order: duplicate order id")
	ErrOrderNotFound     = errors.New("order: order not found")
	ErrRiskLimitExceeded = errors.New("order: risk limit exceeded")
)
