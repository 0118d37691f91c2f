package chathub_test

import (
	"sync"
	"testing"

	"skillswap/backend/internal/chathub"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_UserInTwoRooms(t *testing.T) {
	// Arrange
	reg := chathub.NewRegistry()
	inR1 := newMockClient("u1", 1)
	inR2 := newMockClient("u1", 2)

	// Act
	reg.Connect(inR1, 1, "u1")
	reg.Connect(inR2, 2, "u1")

	// Assert
	assert.ElementsMatch(t, []chathub.Client{inR1}, reg.RoomMembers(1))
	assert.ElementsMatch(t, []chathub.Client{inR2}, reg.RoomMembers(2))
	assert.Len(t, reg.UserConnections("u1"), 2)
	assert.True(t, reg.IsUserInRoom(1, "u1"))
	assert.True(t, reg.IsUserInRoom(2, "u1"))

	reg.Disconnect(inR1)

	assert.Empty(t, reg.RoomMembers(1))
	assert.ElementsMatch(t, []chathub.Client{inR2}, reg.RoomMembers(2))
	assert.ElementsMatch(t, []chathub.Client{inR2}, reg.UserConnections("u1"))
	assert.False(t, reg.IsUserInRoom(1, "u1"))
	assert.True(t, reg.IsUserOnline("u1"))
}

func TestRegistry_DisconnectIsIdempotentAndDropsEmptyEntries(t *testing.T) {
	reg := chathub.NewRegistry()
	c := newMockClient("u1", 1)
	reg.Connect(c, 1, "u1")

	assert.True(t, reg.Disconnect(c))
	assert.False(t, reg.Disconnect(c))
	assert.False(t, reg.Disconnect(newMockClient("ghost", 9)))

	rooms, users, conns := reg.Stats()
	assert.Zero(t, rooms)
	assert.Zero(t, users)
	assert.Zero(t, conns)
	assert.False(t, reg.IsUserOnline("u1"))
}

func TestRegistry_ConnectTwiceKeepsOneRecord(t *testing.T) {
	reg := chathub.NewRegistry()
	c := newMockClient("u1", 1)

	first := reg.Connect(c, 1, "u1")
	second := reg.Connect(c, 1, "u1")

	assert.Equal(t, first, second)
	_, _, conns := reg.Stats()
	assert.Equal(t, 1, conns)
}

func TestRegistry_BroadcastExcludesSenderAndPrunesFailures(t *testing.T) {
	// Arrange
	reg := chathub.NewRegistry()
	sender := newMockClient("x", 1)
	healthy := newMockClient("y", 1)
	broken := newFailingClient("z", 1)
	other := newMockClient("w", 2)
	for _, c := range []*MockClient{sender, healthy, broken} {
		reg.Connect(c, 1, c.GetUserID())
	}
	reg.Connect(other, 2, "w")

	// Act
	var delivered int
	assert.NotPanics(t, func() {
		delivered = reg.Broadcast(1, []byte(`{"type":"message"}`), sender)
	})

	// Assert
	assert.Equal(t, 1, delivered)
	assert.Empty(t, sender.messages())
	assert.Len(t, healthy.messages(), 1)
	assert.Empty(t, other.messages())
	assert.ElementsMatch(t, []chathub.Client{sender, healthy}, reg.RoomMembers(1))
	assert.False(t, reg.IsUserOnline("z"))
	assert.Equal(t, 1, broken.closeCount())
}

func TestRegistry_BroadcastWithoutExclude(t *testing.T) {
	reg := chathub.NewRegistry()
	a := newMockClient("a", 1)
	b := newMockClient("b", 1)
	reg.Connect(a, 1, "a")
	reg.Connect(b, 1, "b")

	assert.Equal(t, 2, reg.Broadcast(1, []byte(`{}`), nil))
	assert.Equal(t, 0, reg.Broadcast(404, []byte(`{}`), nil))
}

func TestRegistry_ConcurrentConnectBroadcastDisconnect(t *testing.T) {
	reg := chathub.NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		c := newMockClient("user", 1)
		go func() {
			defer wg.Done()
			reg.Connect(c, 1, "user")
			reg.Disconnect(c)
		}()
		go func() {
			defer wg.Done()
			reg.Broadcast(1, []byte(`{}`), nil)
		}()
	}
	wg.Wait()

	rooms, users, conns := reg.Stats()
	assert.Zero(t, rooms)
	assert.Zero(t, users)
	assert.Zero(t, conns)
}

func TestRegistry_CloseAll(t *testing.T) {
	reg := chathub.NewRegistry()
	a := newMockClient("a", 1)
	b := newMockClient("b", 2)
	reg.Connect(a, 1, "a")
	reg.Connect(b, 2, "b")

	reg.CloseAll()

	_, _, conns := reg.Stats()
	assert.Zero(t, conns)
	assert.Equal(t, 1, a.closeCount())
	assert.Equal(t, 1, b.closeCount())
}
