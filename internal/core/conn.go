package core

import "errors"

// Frame is a single encoded wire message.
type Frame []byte

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
	ErrNotMember    = errors.New("not a room member")
)

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend queues a frame without blocking. A full queue or a closed
	// connection is reported as an error so callers can skip the member.
	TrySend(Frame) error
	Close()
}
