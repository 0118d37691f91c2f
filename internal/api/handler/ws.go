package handler

import (
	"context"
	"net/http"
	"time"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/chathub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const frameTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin перевіряється CORS на REST; сокет захищений токеном у query.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeChatSocket оновлює HTTP-з'єднання до WebSocket для /ws/chat/:chat_id?token=.
// Authentication happens after the upgrade so the client receives a 1008 close frame instead of an HTTP error.
func (h *Handler) ServeChatSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("WARN: websocket upgrade failed")
		return
	}

	ctx := c.Request.Context()
	chatID, err := uintParam(c, "chat_id", apperrors.ErrChatNotFound)
	if err != nil {
		chathub.ClosePolicyViolation(conn, "chat not found")
		return
	}

	user, err := h.Auth.Authenticate(ctx, c.Query("token"))
	if err != nil {
		chathub.ClosePolicyViolation(conn, "invalid token")
		return
	}
	if _, err := h.Chats.Member(ctx, chatID, user.ID); err != nil {
		chathub.ClosePolicyViolation(conn, "not a chat member")
		return
	}

	client := chathub.NewWebSocketClient(conn, chatID, user.ID, &chatSocket{h: h})
	h.Relay.Registry().Connect(client, chatID, user.ID)
	client.Run()
}

// chatSocket handles frames of one room on behalf of the handler.
type chatSocket struct {
	h *Handler
}

func (s *chatSocket) HandleFrame(c *chathub.WebSocketClient, frame chathub.InboundFrame) {
	ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
	defer cancel()

	switch frame.Type {
	case "message":
		if _, err := s.h.Chats.Send(ctx, c.RoomID, c.UserID, frame.Data.Text, c); err != nil {
			s.reject(c, err)
		}
	case "typing":
		s.h.Relay.SendTyping(c.RoomID, c.UserID, frame.Data.IsTyping, c)
	case "read_receipt":
		if _, err := s.h.Chats.MarkRead(ctx, c.RoomID, c.UserID); err != nil {
			s.reject(c, err)
		}
	default:
		s.reject(c, apperrors.ErrValidation.WithMessage("Unknown frame type: "+frame.Type))
	}
}

func (s *chatSocket) ClientGone(c *chathub.WebSocketClient) {
	s.h.Relay.Registry().Disconnect(c)
}

// reject sends an error event to the offending connection only.
func (s *chatSocket) reject(c *chathub.WebSocketClient, err error) {
	appErr := apperrors.From(err)
	if apperrors.HTTPStatus(appErr) >= http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{"chat_id": c.RoomID, "user": c.UserID}).Error("ERROR: websocket frame failed")
	}
	if sendErr := s.h.Relay.SendTo(c, chathub.NewErrorEvent(string(appErr.Code), appErr.Message)); sendErr != nil {
		log.WithError(sendErr).Debug("error event dropped")
	}
}
