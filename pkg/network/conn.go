// Package network holds the client transports of the signaling server.
package network

import "github.com/teleconsult/signal/pkg/com"

// Conn is a message-oriented client connection.
type Conn interface {
	Id() com.Uid
	// Listen starts the message processing. The onMessage callback is called
	// sequentially in the order the messages arrive, onClose is called once
	// after the last onMessage.
	Listen(onMessage func([]byte), onClose func())
	// Write queues a message and never blocks, false means it was dropped.
	Write(data []byte) bool
	Close()
	RemoteAddr() string
}
