package chathub

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// ConnID identifies a connection record in the registry.
type ConnID uint64

type connRecord struct {
	id     ConnID
	client Client
	roomID uint
	userID string
}

// Registry tracks live connections with two indexes over one set of records:
// by chat room and by user. A single mutex guards all of it; sends happen
// outside the lock on a snapshot of recipients.
type Registry struct {
	mu       sync.RWMutex
	nextID   ConnID
	records  map[ConnID]*connRecord
	byClient map[Client]ConnID
	rooms    map[uint]map[ConnID]struct{}
	users    map[string]map[ConnID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		records:  make(map[ConnID]*connRecord),
		byClient: make(map[Client]ConnID),
		rooms:    make(map[uint]map[ConnID]struct{}),
		users:    make(map[string]map[ConnID]struct{}),
	}
}

// Connect registers client under roomID and userID. The transport handshake
// must already be accepted. Registering the same client twice returns its existing id.
func (r *Registry) Connect(client Client, roomID uint, userID string) ConnID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byClient[client]; ok {
		return id
	}

	r.nextID++
	rec := &connRecord{id: r.nextID, client: client, roomID: roomID, userID: userID}
	r.records[rec.id] = rec
	r.byClient[client] = rec.id

	if r.rooms[roomID] == nil {
		r.rooms[roomID] = make(map[ConnID]struct{})
	}
	r.rooms[roomID][rec.id] = struct{}{}

	if r.users[userID] == nil {
		r.users[userID] = make(map[ConnID]struct{})
	}
	r.users[userID][rec.id] = struct{}{}

	log.WithFields(log.Fields{"room": roomID, "user": userID, "conn": rec.id}).Debug("ws connected")
	return rec.id
}

// Disconnect removes client from both indexes. Unknown clients are ignored.
// It reports whether anything was removed.
func (r *Registry) Disconnect(client Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(client)
}

func (r *Registry) removeLocked(client Client) bool {
	id, ok := r.byClient[client]
	if !ok {
		return false
	}
	rec := r.records[id]
	delete(r.records, id)
	delete(r.byClient, client)

	if set := r.rooms[rec.roomID]; set != nil {
		delete(set, id)
		if len(set) == 0 {
			delete(r.rooms, rec.roomID)
		}
	}
	if set := r.users[rec.userID]; set != nil {
		delete(set, id)
		if len(set) == 0 {
			delete(r.users, rec.userID)
		}
	}

	log.WithFields(log.Fields{"room": rec.roomID, "user": rec.userID, "conn": id}).Debug("ws disconnected")
	return true
}

// RoomMembers returns a snapshot of the connections subscribed to roomID.
func (r *Registry) RoomMembers(roomID uint) []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collectLocked(r.rooms[roomID])
}

// UserConnections returns a snapshot of every connection opened by userID.
func (r *Registry) UserConnections(userID string) []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collectLocked(r.users[userID])
}

func (r *Registry) collectLocked(set map[ConnID]struct{}) []Client {
	out := make([]Client, 0, len(set))
	for id := range set {
		out = append(out, r.records[id].client)
	}
	return out
}

// IsUserOnline reports whether userID has at least one live connection.
func (r *Registry) IsUserOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userID]) > 0
}

// IsUserInRoom reports whether userID has a live connection subscribed to roomID.
func (r *Registry) IsUserInRoom(roomID uint, userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id := range r.users[userID] {
		if r.records[id].roomID == roomID {
			return true
		}
	}
	return false
}

// Stats returns the number of rooms, users and connections currently tracked.
func (r *Registry) Stats() (rooms, users, conns int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms), len(r.users), len(r.records)
}

// Broadcast delivers payload to every connection in roomID except exclude.
// A connection whose Send fails is removed and closed; delivery to the rest
// continues. It returns the number of successful deliveries.
func (r *Registry) Broadcast(roomID uint, payload []byte, exclude Client) int {
	recipients := r.RoomMembers(roomID)

	delivered := 0
	for _, c := range recipients {
		if exclude != nil && c == exclude {
			continue
		}
		if err := c.Send(payload); err != nil {
			log.WithError(err).WithFields(log.Fields{"room": roomID, "user": c.GetUserID()}).Warn("WARN: dropping ws connection after failed send")
			r.Disconnect(c)
			c.Close()
			continue
		}
		delivered++
	}
	return delivered
}

// CloseAll disconnects and closes every registered connection.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	clients := make([]Client, 0, len(r.byClient))
	for c := range r.byClient {
		clients = append(clients, c)
	}
	for _, c := range clients {
		r.removeLocked(c)
	}
	r.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
}
