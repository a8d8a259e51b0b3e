// Package ws is the WebSocket gateway: it runs the handshake (token
// verification, user directory sync, session admission), pumps inbound
// frames through the message pipeline, and announces presence.
package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/neonchat/chat-server/internal/api/metrics"
	"github.com/neonchat/chat-server/internal/core/domain"
	"github.com/neonchat/chat-server/internal/core/ports"
	"github.com/neonchat/chat-server/internal/core/service"
)

const eventNewMessage = "newMessage"

// inboundFrame is the shape of every frame a client sends.
type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ackPayload acknowledges an accepted message to its sender only.
type ackPayload struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}

// errorPayload reports a per-message failure to the originating connection.
type errorPayload struct {
	Message string `json:"message"`
}

// Gateway upgrades HTTP requests to WebSocket sessions and drives them
// through the chat service.
type Gateway struct {
	upgrader websocket.Upgrader
	verifier ports.TokenVerifier
	chat     ports.ChatService
	registry *service.Registry
	log      zerolog.Logger
	maxFrame int64
}

func NewGateway(
	verifier ports.TokenVerifier,
	chat ports.ChatService,
	registry *service.Registry,
	maxFrame int64,
	log zerolog.Logger,
) *Gateway {
	return &Gateway{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		verifier: verifier,
		chat:     chat,
		registry: registry,
		log:      log,
		maxFrame: maxFrame,
	}
}

// Handle runs the handshake and, on success, serves the connection until the
// client goes away. Token verification and user sync happen before the
// upgrade: a rejected handshake is a plain HTTP error and leaves no session,
// no directory write is rolled back, and no presence event is emitted.
func (g *Gateway) Handle(c echo.Context) error {
	claims, err := g.verifier.Verify(bearerToken(c))
	if err != nil {
		reason := "invalid_token"
		if errors.Is(err, domain.ErrMissingToken) {
			reason = "missing_token"
		}
		metrics.HandshakesRejectedTotal.WithLabelValues(reason).Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	if err := g.chat.EnsureUser(c.Request().Context(), claims.UserID, claims.Username); err != nil {
		metrics.HandshakesRejectedTotal.WithLabelValues("user_sync_failed").Inc()
		return err
	}

	conn, err := g.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		metrics.HandshakesRejectedTotal.WithLabelValues("upgrade_failed").Inc()
		return nil
	}

	connectionID := uuid.NewString()
	client := NewClient(conn, g.log.With().Str("connection_id", connectionID).Logger())

	if _, err := g.registry.Admit(connectionID, claims.UserID, claims.Username, client); err != nil {
		g.log.Error().Err(err).Str("connection_id", connectionID).Msg("admission failed")
		_ = conn.Close()
		return nil
	}
	metrics.ConnectionsActive.Inc()

	g.log.Info().
		Str("connection_id", connectionID).
		Str("user_id", claims.UserID).
		Str("username", claims.Username).
		Msg("user connected")

	g.chat.AnnounceJoin(connectionID, claims.UserID)

	go client.WritePump()
	g.readLoop(c, connectionID, conn, client)

	g.disconnect(connectionID, client)
	return nil
}

// disconnect evicts the session and announces the departure. Evicting first
// means no broadcast started after this point can still target the
// connection; a nil eviction result means the session was never admitted (or
// a racing disconnect won) and nothing is announced.
func (g *Gateway) disconnect(connectionID string, client *Client) {
	client.Close()

	session := g.registry.Evict(connectionID)
	if session == nil {
		return
	}
	metrics.ConnectionsActive.Dec()

	g.log.Info().
		Str("connection_id", connectionID).
		Str("user_id", session.UserID).
		Msg("user disconnected")

	g.chat.AnnounceLeave(session.UserID)
}

// readLoop processes inbound frames sequentially, which is what preserves
// per-sender message ordering. Returns when the connection drops.
func (g *Gateway) readLoop(c echo.Context, connectionID string, conn *websocket.Conn, client *Client) {
	conn.SetReadLimit(g.maxFrame)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				g.log.Debug().Err(err).Str("connection_id", connectionID).Msg("unexpected close")
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			g.sendError(client, "malformed frame")
			continue
		}

		switch frame.Event {
		case eventNewMessage:
			g.handleNewMessage(c, connectionID, client, frame.Data)
		default:
			g.sendError(client, "unknown event: "+frame.Event)
		}
	}
}

// handleNewMessage feeds one message through the pipeline and reports the
// outcome to the sender. A failure never closes the connection.
func (g *Gateway) handleNewMessage(c echo.Context, connectionID string, client *Client, data json.RawMessage) {
	var content string
	if err := json.Unmarshal(data, &content); err != nil {
		metrics.MessageErrorsTotal.WithLabelValues("invalid_content").Inc()
		g.sendError(client, domain.ErrInvalidContent.Error())
		return
	}

	start := time.Now()
	msg, err := g.chat.HandleMessage(c.Request().Context(), connectionID, content)
	if err != nil {
		metrics.MessageErrorsTotal.WithLabelValues(messageErrorReason(err)).Inc()
		g.log.Warn().Err(err).Str("connection_id", connectionID).Msg("message rejected")
		g.sendError(client, publicMessageError(err))
		return
	}

	metrics.MessagesTotal.Inc()
	metrics.MessageHandlingDuration.Observe(time.Since(start).Seconds())

	if err := client.Send(domain.Event{
		Name: domain.EventAck,
		Data: ackPayload{Status: "sent", ID: msg.ID},
	}); err != nil {
		g.log.Debug().Err(err).Str("connection_id", connectionID).Msg("ack dropped")
	}
}

func (g *Gateway) sendError(client *Client, msg string) {
	if err := client.Send(domain.Event{
		Name: domain.EventError,
		Data: errorPayload{Message: msg},
	}); err != nil {
		g.log.Debug().Err(err).Msg("error event dropped")
	}
}

// bearerToken extracts the credential from the token query parameter or the
// Authorization header.
func bearerToken(c echo.Context) string {
	if tok := c.QueryParam("token"); tok != "" {
		return tok
	}

	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

func messageErrorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrInvalidContent):
		return "invalid_content"
	default:
		return "storage"
	}
}

// publicMessageError keeps storage details out of client-visible errors.
func publicMessageError(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidContent):
		return err.Error()
	default:
		return "failed to save message"
	}
}
