package mqtt

import "errors"

// ErrAckTimeout is returned when a cell does not acknowledge a command
// before the timeout expires.
var ErrAckTimeout = errors.New("timeout waiting for cell ack")
