package notifyhub_test

import (
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/models"
)

type MockClient struct {
	userID      string
	RecvChannel chan models.Event
	closed      bool
}

func newMockClient(userID string) *MockClient {
	return &MockClient{
		userID:      userID,
		RecvChannel: make(chan models.Event, 10),
	}
}

func (c *MockClient) GetUserID() string {
	return c.userID
}

func (c *MockClient) GetSendChannel() chan<- models.Event {
	return c.RecvChannel
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.closed = true
}
