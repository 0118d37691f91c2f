package chathub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingClient struct{ got int }

func (c *countingClient) GetUserID() string   { return "u" }
func (c *countingClient) GetRoomID() uint     { return 5 }
func (c *countingClient) Send(_ []byte) error { c.got++; return nil }
func (c *countingClient) Run()                {}
func (c *countingClient) Close()              {}

func TestRedisFanout_HandleSkipsOwnOrigin(t *testing.T) {
	reg := NewRegistry()
	client := &countingClient{}
	reg.Connect(client, 5, "u")
	relay := NewRelay(reg)
	fanout := NewRedisFanout(nil, "instance-a")

	own, err := json.Marshal(fanoutEnvelope{Origin: "instance-a", RoomID: 5, Payload: json.RawMessage(`{"type":"typing"}`)})
	require.NoError(t, err)
	foreign, err := json.Marshal(fanoutEnvelope{Origin: "instance-b", RoomID: 5, Payload: json.RawMessage(`{"type":"typing"}`)})
	require.NoError(t, err)

	fanout.handle(relay, RoomChannel(5), string(own))
	assert.Equal(t, 0, client.got)

	fanout.handle(relay, RoomChannel(5), string(foreign))
	assert.Equal(t, 1, client.got)

	fanout.handle(relay, RoomChannel(5), "not json")
	assert.Equal(t, 1, client.got)
}

func TestRoomChannel(t *testing.T) {
	assert.Equal(t, "skillswap:room:42", RoomChannel(42))
}
