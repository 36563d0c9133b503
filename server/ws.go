package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/pablo-lozano-martin/genesis-sub005/chat"
	"github.com/pablo-lozano-martin/genesis-sub005/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browsers cannot set headers on WebSocket requests, so the origin
	// check is left to the deployment's reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is an inbound WebSocket message.
type chatRequest struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	Content        string `json:"content,omitempty"`
}

// handleChatSocket upgrades the connection and relays turn frames.
// Browsers cannot send an Authorization header here, so the token
// travels as a query parameter.
func (s *Server) handleChatSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	user, status, message := s.authenticate(c, token)
	if user == nil {
		c.JSON(status, gin.H{"error": message})
		return
	}
	userID := user.ID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	s.logger.Info("websocket connected: user %s", userID)

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed: %v", err)
			}
			return
		}

		switch req.Type {
		case "ping":
			if err := conn.WriteJSON(gin.H{"type": "pong"}); err != nil {
				return
			}
		case "message":
			if err := s.handleChatMessage(c, conn, userID, req); err != nil {
				return
			}
		default:
			frame := chat.Frame{
				Type:  chat.FrameError,
				Code:  domain.CodeInvalidFormat,
				Error: "unknown message type",
			}
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}
	}
}

// handleChatMessage runs one turn and streams its frames back. Frames
// for one turn are fully drained before the next read, so a client
// never interleaves turns on a single connection. The returned error
// indicates the connection is unusable.
func (s *Server) handleChatMessage(c *gin.Context, conn *websocket.Conn, userID string, req chatRequest) error {
	ctx := c.Request.Context()

	writeError := func(conversationID string, code, message string) error {
		return conn.WriteJSON(chat.Frame{
			Type:           chat.FrameError,
			ConversationID: conversationID,
			Code:           code,
			Error:          message,
		})
	}

	if req.ConversationID == "" {
		return writeError("", domain.CodeInvalidFormat, "conversation_id is required")
	}

	conversation, err := s.conversations.GetByID(ctx, req.ConversationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return writeError(req.ConversationID, domain.CodeAccessDenied, "conversation not found")
		}
		s.logger.Error("websocket: conversation lookup failed: %v", err)
		return writeError(req.ConversationID, domain.CodeInternalError, "internal error")
	}
	if conversation.UserID != userID {
		return writeError(req.ConversationID, domain.CodeAccessDenied, "conversation not found")
	}

	frames, err := s.engine.RunTurn(ctx, conversation, req.Content)
	if err != nil {
		if errors.Is(err, domain.ErrTurnInProgress) {
			return writeError(req.ConversationID, domain.CodeTurnInProgress, "a response is already being generated")
		}
		s.logger.Error("websocket: turn failed to start: %v", err)
		return writeError(req.ConversationID, domain.CodeInternalError, "internal error")
	}

	for frame := range frames {
		if err := conn.WriteJSON(frame); err != nil {
			// Keep draining so the turn finishes and releases its
			// conversation lock.
			for range frames {
			}
			return err
		}
	}
	return nil
}
