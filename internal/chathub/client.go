package chathub

import "errors"

var (
	// ErrClientClosed is returned by Send after Close.
	ErrClientClosed = errors.New("chathub: client closed")
	// ErrSendBufferFull is returned by Send when the client cannot keep up.
	ErrSendBufferFull = errors.New("chathub: send buffer full")
)

// Client is one live connection subscribed to a chat room.
// It abstracts the underlying transport so the registry can manage
// connections uniformly and tests can substitute fakes.
type Client interface {
	// GetUserID returns the authenticated user behind the connection.
	GetUserID() string
	// GetRoomID returns the chat the connection is subscribed to.
	GetRoomID() uint

	// Send queues a serialized event for delivery. It must not block:
	// a slow or closed connection reports an error instead.
	Send(payload []byte) error

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts the connection down. It is safe to call more than once.
	Close()
}
