package chathub_test

import (
	"encoding/json"
	"errors"
	"sync"

	"skillswap/backend/internal/chathub"
)

// MockClient records every payload it is sent.
type MockClient struct {
	userID string
	roomID uint

	mu       sync.Mutex
	received [][]byte
	failSend bool
	closed   int
}

func newMockClient(userID string, roomID uint) *MockClient {
	return &MockClient{userID: userID, roomID: roomID}
}

func newFailingClient(userID string, roomID uint) *MockClient {
	return &MockClient{userID: userID, roomID: roomID, failSend: true}
}

func (c *MockClient) GetUserID() string { return c.userID }
func (c *MockClient) GetRoomID() uint   { return c.roomID }

func (c *MockClient) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSend {
		return errors.New("broken pipe")
	}
	c.received = append(c.received, payload)
	return nil
}

func (c *MockClient) Run() {}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
}

func (c *MockClient) messages() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.received...)
}

func (c *MockClient) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// lastEvent decodes the most recent payload into a generic map.
func (c *MockClient) lastEvent() map[string]interface{} {
	msgs := c.messages()
	if len(msgs) == 0 {
		return nil
	}
	var ev map[string]interface{}
	if err := json.Unmarshal(msgs[len(msgs)-1], &ev); err != nil {
		return nil
	}
	return ev
}

var _ chathub.Client = (*MockClient)(nil)
