package http

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"chessrules/internal/core"
	"chessrules/internal/processor"
	"chessrules/internal/service"
)

const (
	msgTypeState = "state"
	msgTypeMove  = "move"
	msgTypeError = "error"
)

// wsMessage is the frame exchanged on the game stream. Clients send
// {"type":"move","move":"e2e4"}; the server sends state and error frames.
type wsMessage struct {
	Type  string              `json:"type"`
	Move  string              `json:"move,omitempty"`
	Game  *core.GameResponse  `json:"game,omitempty"`
	Error *core.ErrorResponse `json:"error,omitempty"`
}

// WebSocketUpgrade admits upgrade requests for existing games only
func (h *HTTPHandler) WebSocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	if _, err := h.svc.GetGame(c.UserContext(), id); err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
				Error: "game not found",
				Code:  core.ErrGameNotFound,
			})
		}
		return err
	}

	c.Locals("wsGameID", id)
	return c.Next()
}

// StreamGame pushes the game state on connect and after every change, and
// accepts moves from the client
func (h *HTTPHandler) StreamGame(conn *websocket.Conn) {
	id, _ := conn.Locals("wsGameID").(string)
	log := h.log.With().Str("game_id", id).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var writeMu sync.Mutex
	send := func(msg wsMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		defer cancel()
		for {
			messageType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if messageType != websocket.TextMessage {
				continue
			}
			if err := h.handleFrame(ctx, id, data, send); err != nil {
				log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		}
	}()

	defer func() {
		_ = conn.Close()
		<-readerDone
	}()

	version := -1
	for {
		select {
		case <-h.svc.Done():
			return
		default:
		}

		snap, err := h.svc.GetGame(ctx, id)
		if err != nil {
			resp := h.proc.Execute(ctx, processor.NewGetGameCommand(id))
			if resp.Error != nil {
				_ = send(wsMessage{Type: msgTypeError, Error: resp.Error})
			}
			return
		}

		if snap.Version != version {
			game := processor.BuildGameResponse(snap)
			if err := send(wsMessage{Type: msgTypeState, Game: &game}); err != nil {
				log.Debug().Err(err).Msg("websocket write failed")
				return
			}
			version = snap.Version
		}

		select {
		case <-h.svc.RegisterWait(ctx, id, version):
		case <-h.svc.Done():
			return
		case <-ctx.Done():
			return
		}
	}
}

// handleFrame executes one client frame. Only write failures are returned.
func (h *HTTPHandler) handleFrame(ctx context.Context, id string, data []byte, send func(wsMessage) error) error {
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return send(wsMessage{Type: msgTypeError, Error: &core.ErrorResponse{
			Error:   "invalid message",
			Code:    core.ErrInvalidRequest,
			Details: err.Error(),
		}})
	}

	switch msg.Type {
	case msgTypeMove:
		req := core.MoveRequest{Move: msg.Move}
		if err := validate.Struct(&req); err != nil {
			return send(wsMessage{Type: msgTypeError, Error: &core.ErrorResponse{
				Error:   "validation failed",
				Code:    core.ErrInvalidRequest,
				Details: describeValidation(err),
			}})
		}
		// Success is broadcast by the state loop
		resp := h.proc.Execute(ctx, processor.NewMakeMoveCommand(id, req))
		if !resp.Success {
			return send(wsMessage{Type: msgTypeError, Error: resp.Error})
		}
		return nil
	default:
		return send(wsMessage{Type: msgTypeError, Error: &core.ErrorResponse{
			Error: "unknown message type",
			Code:  core.ErrInvalidRequest,
		}})
	}
}
