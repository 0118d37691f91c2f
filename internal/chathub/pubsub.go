package chathub

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const roomChannelPrefix = "skillswap:room:"

type fanoutEnvelope struct {
	Origin  string          `json:"origin"`
	RoomID  uint            `json:"room_id"`
	Payload json.RawMessage `json:"payload"`
}

// RedisFanout shares room events between API instances over Redis Pub/Sub.
type RedisFanout struct {
	rdb        *redis.Client
	instanceID string
}

func NewRedisFanout(rdb *redis.Client, instanceID string) *RedisFanout {
	return &RedisFanout{rdb: rdb, instanceID: instanceID}
}

// RoomChannel returns the Pub/Sub channel of a chat room.
func RoomChannel(roomID uint) string {
	return roomChannelPrefix + strconv.FormatUint(uint64(roomID), 10)
}

// Publish implements Publisher.
func (f *RedisFanout) Publish(ctx context.Context, roomID uint, payload []byte) error {
	data, err := json.Marshal(fanoutEnvelope{Origin: f.instanceID, RoomID: roomID, Payload: payload})
	if err != nil {
		return fmt.Errorf("encode fanout envelope: %w", err)
	}
	return f.rdb.Publish(ctx, RoomChannel(roomID), data).Err()
}

// Listen subscribes to every room channel and delivers events published by
// other instances to local connections. It returns when ctx is done.
func (f *RedisFanout) Listen(ctx context.Context, relay *Relay) {
	pubsub := f.rdb.PSubscribe(ctx, roomChannelPrefix+"*")
	defer pubsub.Close()

	log.Printf("Listening for room events on %s*", roomChannelPrefix)
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			f.handle(relay, msg.Channel, msg.Payload)
		}
	}
}

func (f *RedisFanout) handle(relay *Relay, channel, raw string) {
	var env fanoutEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		log.WithError(err).WithField("channel", channel).Warn("WARN: bad fanout message")
		return
	}
	if env.Origin == f.instanceID {
		return // вже доставлено локально
	}
	if !strings.HasPrefix(channel, roomChannelPrefix) {
		return
	}
	relay.DeliverLocal(env.RoomID, env.Payload)
}
