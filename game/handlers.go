package game

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeDeadline = 10 * time.Second
	pongDeadline  = 70 * time.Second
	joinTimeout   = 5 * time.Second
)

// websocketConnection adapts a gorilla websocket to NetworkSession. All frames
// are JSON text.
type websocketConnection struct {
	conn *websocket.Conn
}

func NewWebsocketConnection(conn *websocket.Conn) *websocketConnection {
	conn.SetReadDeadline(time.Now().Add(pongDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongDeadline))
	})
	return &websocketConnection{conn: conn}
}

func (w *websocketConnection) Write(data []byte) error {
	w.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *websocketConnection) Read() ([]byte, error) {
	_, data, err := w.conn.ReadMessage()
	return data, err
}

func (w *websocketConnection) Ping() error {
	w.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return w.conn.WriteMessage(websocket.PingMessage, nil)
}

func (w *websocketConnection) Close(reason string) {
	if reason != "" {
		w.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		w.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason))
	}
	w.conn.Close()
}

// GameHandler wires HTTP upgrades to the registry.
type GameHandler struct {
	registry Registry
	rules    Rules
	rng      RandomSource
	rewriter Rewriter
	logger   zerolog.Logger
	upgrader websocket.Upgrader
}

func NewGameHandler(registry Registry, rules Rules, rng RandomSource, rewriter Rewriter, logger zerolog.Logger) *GameHandler {
	return &GameHandler{
		registry: registry,
		rules:    rules,
		rng:      rng,
		rewriter: rewriter,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are filtered by the router middleware before the
			// upgrade is attempted.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// CreateLobbyHandler upgrades the connection, seats the caller as creator and
// hands the new lobby to the registry.
func (h *GameHandler) CreateLobbyHandler(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name query parameter required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	socket := NewWebsocketConnection(conn)

	p := NewPlayer(uuid.NewString(), name, h.logger)
	room := NewRoom(p, h.rules, h.rng, h.rewriter, h.logger)
	h.registry.RequestAddAndRunLobby(c.Request.Context(), room)

	go p.ReadPump(socket)
	go p.WritePump(socket)
}

// JoinLobbyHandler upgrades the connection and routes the join through the
// registry; a rejected join closes the socket with the reason.
func (h *GameHandler) JoinLobbyHandler(c *gin.Context) {
	lobbyId := c.Param("lobbyid")
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name query parameter required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	socket := NewWebsocketConnection(conn)

	p := NewPlayer(uuid.NewString(), name, h.logger)
	errChan := make(chan error, 1)
	ctx, cancel := context.WithTimeout(c.Request.Context(), joinTimeout)
	defer cancel()
	h.registry.ForwardJoinRequest(ctx, registryJoinRequest{lobbyId: lobbyId, player: p, errChan: errChan})

	select {
	case err := <-errChan:
		if err != nil {
			h.logger.Info().Str("lobby", lobbyId).Str("player", name).Err(err).Msg("join rejected")
			socket.Close(err.Error())
			return
		}
	case <-ctx.Done():
		socket.Close("join-timed-out")
		return
	}

	go p.ReadPump(socket)
	go p.WritePump(socket)
}
