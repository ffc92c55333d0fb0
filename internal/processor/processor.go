// Package processor turns transport-level commands into service calls and
// service results into wire responses.
package processor

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"chessrules/internal/board"
	"chessrules/internal/core"
	"chessrules/internal/game"
	"chessrules/internal/service"
)

// Processor handles command execution against the service layer
type Processor struct {
	svc *service.Service
	log zerolog.Logger
}

func New(svc *service.Service, log zerolog.Logger) *Processor {
	return &Processor{
		svc: svc,
		log: log.With().Str("component", "processor").Logger(),
	}
}

func (p *Processor) Execute(ctx context.Context, cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateGame:
		return p.handleCreateGame(ctx, cmd)
	case CmdGetGame:
		return p.handleGetGame(ctx, cmd)
	case CmdDeleteGame:
		return p.handleDeleteGame(ctx, cmd)
	case CmdLegalMoves:
		return p.handleLegalMoves(ctx, cmd)
	case CmdMakeMove:
		return p.handleMakeMove(ctx, cmd)
	case CmdGetStatus:
		return p.handleGetStatus(ctx, cmd)
	case CmdGetBoard:
		return p.handleGetBoard(ctx, cmd)
	case CmdSetBoard:
		return p.handleSetBoard(ctx, cmd)
	case CmdGetTurn:
		return p.handleGetTurn(ctx, cmd)
	case CmdSetTurn:
		return p.handleSetTurn(ctx, cmd)
	case CmdListGames:
		return p.handleListGames(ctx)
	case CmdJoinGame:
		return p.handleJoinGame(ctx, cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

func (p *Processor) handleCreateGame(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	snap, err := p.svc.CreateGame(ctx, service.CreateOptions{
		Name:  args.Name,
		White: args.White,
		Black: args.Black,
		FEN:   strings.TrimSpace(args.FEN),
	})
	if err != nil {
		return p.serviceError(err)
	}
	return p.success(BuildGameResponse(snap))
}

func (p *Processor) handleGetGame(ctx context.Context, cmd Command) ProcessorResponse {
	snap, err := p.svc.GetGame(ctx, cmd.GameID)
	if err != nil {
		return p.serviceError(err)
	}
	return p.success(BuildGameResponse(snap))
}

func (p *Processor) handleDeleteGame(ctx context.Context, cmd Command) ProcessorResponse {
	if err := p.svc.DeleteGame(ctx, cmd.GameID); err != nil {
		return p.serviceError(err)
	}
	return ProcessorResponse{Success: true}
}

func (p *Processor) handleLegalMoves(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(LegalMovesArgs)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	pos, err := board.ParseSquare(args.Square)
	if err != nil {
		return p.serviceError(err)
	}

	moves, err := p.svc.LegalMoves(ctx, cmd.GameID, pos)
	if err != nil {
		return p.serviceError(err)
	}

	resp := core.LegalMovesResponse{Square: pos.String(), Moves: make([]string, 0, len(moves))}
	for _, m := range moves {
		resp.Moves = append(resp.Moves, m.String())
	}
	return p.success(resp)
}

func (p *Processor) handleMakeMove(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	m, err := board.ParseMove(strings.ToLower(args.Move))
	if err != nil {
		return p.serviceError(err)
	}

	snap, err := p.svc.MakeMove(ctx, cmd.GameID, m)
	if err != nil {
		return p.serviceError(err)
	}
	return p.success(BuildGameResponse(snap))
}

func (p *Processor) handleGetStatus(ctx context.Context, cmd Command) ProcessorResponse {
	args, _ := cmd.Args.(StatusArgs)

	var color core.Color
	if args.Color == "" {
		turn, err := p.svc.GetTurn(ctx, cmd.GameID)
		if err != nil {
			return p.serviceError(err)
		}
		color = turn
	} else {
		parsed, err := core.ParseColor(args.Color)
		if err != nil {
			return p.serviceError(err)
		}
		color = parsed
	}

	st, err := p.svc.Status(ctx, cmd.GameID, color)
	if err != nil {
		return p.serviceError(err)
	}
	return p.success(core.StatusResponse{
		Color:     st.Color.String(),
		Check:     st.Check,
		Checkmate: st.Checkmate,
		Stalemate: st.Stalemate,
	})
}

func (p *Processor) handleGetBoard(ctx context.Context, cmd Command) ProcessorResponse {
	b, err := p.svc.GetBoard(ctx, cmd.GameID)
	if err != nil {
		return p.serviceError(err)
	}
	return p.success(core.BoardResponse{
		Placement: b.Placement(),
		Board:     b.ToASCII(),
	})
}

func (p *Processor) handleSetBoard(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.BoardRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	b, err := board.ParsePlacement(strings.TrimSpace(args.Placement))
	if err != nil {
		return p.serviceError(err)
	}

	snap, err := p.svc.SetBoard(ctx, cmd.GameID, b)
	if err != nil {
		return p.serviceError(err)
	}
	return p.success(BuildGameResponse(snap))
}

func (p *Processor) handleGetTurn(ctx context.Context, cmd Command) ProcessorResponse {
	turn, err := p.svc.GetTurn(ctx, cmd.GameID)
	if err != nil {
		return p.serviceError(err)
	}
	return p.success(core.TurnResponse{Turn: turn.String()})
}

func (p *Processor) handleSetTurn(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.TurnRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	color, err := core.ParseColor(args.Turn)
	if err != nil {
		return p.serviceError(err)
	}

	snap, err := p.svc.SetTurn(ctx, cmd.GameID, color)
	if err != nil {
		return p.serviceError(err)
	}
	return p.success(BuildGameResponse(snap))
}

func (p *Processor) handleListGames(ctx context.Context) ProcessorResponse {
	games, err := p.svc.ListGames(ctx)
	if err != nil {
		return p.serviceError(err)
	}

	resp := core.GameListResponse{Games: make([]core.GameSummary, 0, len(games)), Count: len(games)}
	for _, g := range games {
		resp.Games = append(resp.Games, core.GameSummary{
			GameID:    g.GameID,
			Name:      g.Name,
			White:     g.White,
			Black:     g.Black,
			FEN:       g.FEN,
			Turn:      g.Turn,
			Version:   g.Version,
			UpdatedAt: g.UpdatedAt,
		})
	}
	return p.success(resp)
}

func (p *Processor) handleJoinGame(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.JoinRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	color, err := core.ParseColor(args.Color)
	if err != nil {
		return p.serviceError(err)
	}

	name := strings.TrimSpace(args.Name)
	if name == "" {
		return p.errorResponse("player name required", core.ErrInvalidRequest)
	}

	snap, err := p.svc.JoinGame(ctx, cmd.GameID, color, name)
	if err != nil {
		return p.serviceError(err)
	}
	return p.success(BuildGameResponse(snap))
}

// BuildGameResponse converts a service snapshot to its wire form
func BuildGameResponse(snap service.Snapshot) core.GameResponse {
	resp := core.GameResponse{
		GameID:  snap.GameID,
		Name:    snap.Name,
		White:   snap.White,
		Black:   snap.Black,
		FEN:     snap.FEN,
		Turn:    snap.Turn.String(),
		State:   snap.State.String(),
		Version: snap.Version,
	}
	if snap.LastMove != nil {
		resp.LastMove = &core.MoveInfo{
			Move:        snap.LastMove.String(),
			PlayerColor: snap.LastMoveBy.String(),
		}
	}
	return resp
}

// serviceError maps engine and service errors onto wire error codes
func (p *Processor) serviceError(err error) ProcessorResponse {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return p.errorResponse("game not found", core.ErrGameNotFound)
	case errors.Is(err, game.ErrInvalidMove), errors.Is(err, board.ErrInvalidMoveFormat):
		return p.errorDetails("illegal move", core.ErrInvalidMove, err)
	case errors.Is(err, board.ErrInvalidSquare):
		return p.errorDetails("invalid square", core.ErrInvalidSquare, err)
	case errors.Is(err, service.ErrInvalidBoard), errors.Is(err, board.ErrInvalidPlacement), errors.Is(err, game.ErrInvalidFEN):
		return p.errorDetails("invalid board", core.ErrInvalidFEN, err)
	case errors.Is(err, service.ErrSeatTaken):
		return p.errorDetails("seat taken", core.ErrSeatTaken, err)
	case errors.Is(err, core.ErrInvalidColor):
		return p.errorDetails("invalid color", core.ErrInvalidRequest, err)
	default:
		p.log.Error().Err(err).Msg("command failed")
		return p.errorResponse("internal error", core.ErrInternalError)
	}
}

func (p *Processor) success(data any) ProcessorResponse {
	return ProcessorResponse{Success: true, Data: data}
}

func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}

func (p *Processor) errorDetails(message, code string, err error) ProcessorResponse {
	resp := p.errorResponse(message, code)
	resp.Error.Details = err.Error()
	return resp
}
