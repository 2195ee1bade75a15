package notifyhub

import "github.com/abhiram-FWD/ResloveX-Complain-portal/internal/models"

// Client is the interface for one realtime subscriber connection. It
// abstracts the underlying transport so the hub can manage different client
// types uniformly.
type Client interface {
	// GetUserID returns the account the connection is authenticated as.
	GetUserID() string

	// GetSendChannel returns the channel the hub delivers events on.
	// It is a send-only channel.
	GetSendChannel() chan<- models.Event

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's connection and associated channels.
	Close()
}

// Subscription asks the hub to deliver a topic's events to a client.
type Subscription struct {
	Client Client
	Topic  string
}
