package session

import "context"

// Peer is an addressable remote participant.
type Peer struct {
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
}

// Channel is a point-to-point connection to exactly one peer.
//
// Transport and permission failures are returned as errors and never panic.
// OnMessage and OnDisconnect are registered before the connection is made and
// are invoked from the channel's own goroutine.
type Channel interface {
	// Listen starts accepting one inbound connection.
	Listen(ctx context.Context) error
	// AwaitConnection blocks until a peer connects or listening fails.
	AwaitConnection(ctx context.Context) (Peer, error)
	// Dial blocks until the connection to the peer succeeds or fails.
	Dial(ctx context.Context, address string) error
	// Send writes one message. Failures are logged, not returned.
	Send(payload []byte)
	OnMessage(fn func(payload []byte))
	OnDisconnect(fn func(err error))
	// Close releases the listener and the connection. Safe to call repeatedly.
	Close() error
	PairedPeers(ctx context.Context) []Peer
}
