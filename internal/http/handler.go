package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"chessrules/internal/core"
	"chessrules/internal/processor"
	"chessrules/internal/service"
)

// DefaultRateLimit is the per-IP request budget per second for game routes
const DefaultRateLimit = 10

// Options tunes the fiber app. A RateLimit of zero or less disables the
// game route limiter.
type Options struct {
	DevMode   bool
	RateLimit int
	AccessLog bool
	Log       zerolog.Logger
}

// HTTPHandler handles HTTP requests and routes them to the processor
type HTTPHandler struct {
	proc *processor.Processor
	svc  *service.Service
	log  zerolog.Logger
}

func NewHTTPHandler(proc *processor.Processor, svc *service.Service, log zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		proc: proc,
		svc:  svc,
		log:  log.With().Str("component", "http").Logger(),
	}
}

func NewFiberApp(proc *processor.Processor, svc *service.Service, opts Options) *fiber.App {
	h := NewHTTPHandler(proc, svc, opts.Log)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		// Long-poll holds a request for up to service.WaitTimeout
		WriteTimeout:          service.WaitTimeout + 10*time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: !opts.DevMode,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")

	if maxReq := opts.RateLimit; maxReq > 0 {
		if opts.DevMode {
			maxReq *= 2
		}
		api.Use(limiter.New(limiter.Config{
			Max:          maxReq,
			Expiration:   1 * time.Second,
			KeyGenerator: clientIP,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
					Error:   "rate limit exceeded",
					Code:    core.ErrRateLimitExceeded,
					Details: fmt.Sprintf("%d requests per second allowed", maxReq),
				})
			},
		}))
	}

	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	api.Get("/games", h.ListGames)
	api.Post("/games", h.CreateGame)
	api.Get("/games/:gameId", h.GetGame)
	api.Delete("/games/:gameId", h.DeleteGame)
	api.Get("/games/:gameId/moves", h.LegalMoves)
	api.Post("/games/:gameId/moves", h.MakeMove)
	api.Get("/games/:gameId/status", h.GetStatus)
	api.Get("/games/:gameId/board", h.GetBoard)
	api.Put("/games/:gameId/board", h.SetBoard)
	api.Get("/games/:gameId/turn", h.GetTurn)
	api.Put("/games/:gameId/turn", h.SetTurn)
	api.Put("/games/:gameId/players", h.JoinGame)
	api.Get("/games/:gameId/ws", h.WebSocketUpgrade, websocket.New(h.StreamGame))

	return app
}

// clientIP keys the limiter on the first X-Forwarded-For hop when present
func clientIP(c *fiber.Ctx) string {
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	return c.IP()
}

// contentTypeValidator ensures POST and PUT requests have application/json
func contentTypeValidator(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodPost || method == fiber.MethodPut {
		contentType := c.Get("Content-Type")
		if contentType != "" && !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrGameNotFound
		case fiber.StatusBadRequest, fiber.StatusUpgradeRequired, fiber.StatusMethodNotAllowed:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// statusFor maps processor error codes to HTTP statuses
func statusFor(code string) int {
	switch code {
	case core.ErrGameNotFound:
		return fiber.StatusNotFound
	case core.ErrSeatTaken:
		return fiber.StatusConflict
	case core.ErrInternalError:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}

// reply writes a processor response with the given success status
func reply(c *fiber.Ctx, resp processor.ProcessorResponse, okStatus int) error {
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	if resp.Data == nil {
		return c.SendStatus(okStatus)
	}
	return c.Status(okStatus).JSON(resp.Data)
}

// gameID returns the validated :gameId path parameter
func gameID(c *fiber.Ctx) (string, bool) {
	id := c.Params("gameId")
	return id, isValidUUID(id)
}

func invalidGameID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   "invalid game ID format",
		Code:    core.ErrInvalidRequest,
		Details: "game ID must be a valid UUID",
	})
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.svc.GetStorageHealth(),
	})
}

// CreateGame starts a game from the standard position or a FEN
func (h *HTTPHandler) CreateGame(c *fiber.Ctx) error {
	req, err := validatedBody[core.CreateGameRequest](c)
	if err != nil {
		return err
	}

	resp := h.proc.Execute(c.UserContext(), processor.NewCreateGameCommand(req))
	return reply(c, resp, fiber.StatusCreated)
}

// ListGames lists live and stored games, most recently updated first
func (h *HTTPHandler) ListGames(c *fiber.Ctx) error {
	return reply(c, h.proc.Execute(c.UserContext(), processor.NewListGamesCommand()), fiber.StatusOK)
}

// GetGame returns the game state. With wait=true it blocks until the game
// moves past the given version, the wait times out or the game is deleted.
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}

	ctx := c.UserContext()
	if c.Query("wait", "false") != "true" {
		return reply(c, h.proc.Execute(ctx, processor.NewGetGameCommand(id)), fiber.StatusOK)
	}

	version, err := strconv.Atoi(c.Query("version", "-1"))
	if err != nil {
		version = -1
	}

	current, err := h.svc.GetGame(ctx, id)
	if err != nil {
		return reply(c, h.proc.Execute(ctx, processor.NewGetGameCommand(id)), fiber.StatusOK)
	}

	// Client is already behind, answer immediately
	if version != current.Version {
		return c.JSON(processor.BuildGameResponse(current))
	}

	// fasthttp's RequestCtx is done only on server shutdown
	waitCtx := c.Context()
	notify := h.svc.RegisterWait(waitCtx, id, version)

	select {
	case <-notify:
		return reply(c, h.proc.Execute(ctx, processor.NewGetGameCommand(id)), fiber.StatusOK)
	case <-waitCtx.Done():
		return nil
	}
}

// DeleteGame removes a game
func (h *HTTPHandler) DeleteGame(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	return reply(c, h.proc.Execute(c.UserContext(), processor.NewDeleteGameCommand(id)), fiber.StatusNoContent)
}

// LegalMoves lists the legal moves from ?square=
func (h *HTTPHandler) LegalMoves(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}

	square := c.Query("square")
	if square == "" {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "missing square",
			Code:    core.ErrInvalidRequest,
			Details: "query parameter square is required",
		})
	}

	resp := h.proc.Execute(c.UserContext(), processor.NewLegalMovesCommand(id, square))
	return reply(c, resp, fiber.StatusOK)
}

// MakeMove submits a move for the side to move
func (h *HTTPHandler) MakeMove(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}

	req, err := validatedBody[core.MoveRequest](c)
	if err != nil {
		return err
	}

	resp := h.proc.Execute(c.UserContext(), processor.NewMakeMoveCommand(id, req))
	return reply(c, resp, fiber.StatusOK)
}

// GetStatus reports check, checkmate and stalemate for ?color=, defaulting
// to the side to move
func (h *HTTPHandler) GetStatus(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}

	resp := h.proc.Execute(c.UserContext(), processor.NewGetStatusCommand(id, c.Query("color")))
	return reply(c, resp, fiber.StatusOK)
}

// GetBoard returns the placement and an ASCII rendering
func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	return reply(c, h.proc.Execute(c.UserContext(), processor.NewGetBoardCommand(id)), fiber.StatusOK)
}

// SetBoard replaces the board from a FEN placement field
func (h *HTTPHandler) SetBoard(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}

	req, err := validatedBody[core.BoardRequest](c)
	if err != nil {
		return err
	}

	resp := h.proc.Execute(c.UserContext(), processor.NewSetBoardCommand(id, req))
	return reply(c, resp, fiber.StatusOK)
}

// GetTurn returns the side to move
func (h *HTTPHandler) GetTurn(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}
	return reply(c, h.proc.Execute(c.UserContext(), processor.NewGetTurnCommand(id)), fiber.StatusOK)
}

// SetTurn overrides the side to move
func (h *HTTPHandler) SetTurn(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}

	req, err := validatedBody[core.TurnRequest](c)
	if err != nil {
		return err
	}

	resp := h.proc.Execute(c.UserContext(), processor.NewSetTurnCommand(id, req))
	return reply(c, resp, fiber.StatusOK)
}

// JoinGame claims the white or black seat for a named player
func (h *HTTPHandler) JoinGame(c *fiber.Ctx) error {
	id, ok := gameID(c)
	if !ok {
		return invalidGameID(c)
	}

	req, err := validatedBody[core.JoinRequest](c)
	if err != nil {
		return err
	}

	resp := h.proc.Execute(c.UserContext(), processor.NewJoinGameCommand(id, req))
	return reply(c, resp, fiber.StatusOK)
}
