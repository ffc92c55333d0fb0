package processor

import (
	"chessrules/internal/core"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdCreateGame CommandType = iota
	CmdGetGame
	CmdDeleteGame
	CmdLegalMoves
	CmdMakeMove
	CmdGetStatus
	CmdGetBoard
	CmdSetBoard
	CmdGetTurn
	CmdSetTurn
	CmdListGames
	CmdJoinGame
)

// Command is a unified structure for all processor operations
type Command struct {
	Type   CommandType
	GameID string // For game-specific commands
	Args   any    // Command-specific arguments
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

// LegalMovesArgs names the square whose moves are listed
type LegalMovesArgs struct {
	Square string
}

// StatusArgs names the color to evaluate; empty means the side to move
type StatusArgs struct {
	Color string
}

func NewCreateGameCommand(req core.CreateGameRequest) Command {
	return Command{
		Type: CmdCreateGame,
		Args: req,
	}
}

func NewGetGameCommand(gameID string) Command {
	return Command{
		Type:   CmdGetGame,
		GameID: gameID,
	}
}

func NewDeleteGameCommand(gameID string) Command {
	return Command{
		Type:   CmdDeleteGame,
		GameID: gameID,
	}
}

func NewLegalMovesCommand(gameID, square string) Command {
	return Command{
		Type:   CmdLegalMoves,
		GameID: gameID,
		Args:   LegalMovesArgs{Square: square},
	}
}

func NewMakeMoveCommand(gameID string, req core.MoveRequest) Command {
	return Command{
		Type:   CmdMakeMove,
		GameID: gameID,
		Args:   req,
	}
}

func NewGetStatusCommand(gameID, color string) Command {
	return Command{
		Type:   CmdGetStatus,
		GameID: gameID,
		Args:   StatusArgs{Color: color},
	}
}

func NewGetBoardCommand(gameID string) Command {
	return Command{
		Type:   CmdGetBoard,
		GameID: gameID,
	}
}

func NewSetBoardCommand(gameID string, req core.BoardRequest) Command {
	return Command{
		Type:   CmdSetBoard,
		GameID: gameID,
		Args:   req,
	}
}

func NewGetTurnCommand(gameID string) Command {
	return Command{
		Type:   CmdGetTurn,
		GameID: gameID,
	}
}

func NewListGamesCommand() Command {
	return Command{Type: CmdListGames}
}

func NewJoinGameCommand(gameID string, req core.JoinRequest) Command {
	return Command{
		Type:   CmdJoinGame,
		GameID: gameID,
		Args:   req,
	}
}

func NewSetTurnCommand(gameID string, req core.TurnRequest) Command {
	return Command{
		Type:   CmdSetTurn,
		GameID: gameID,
		Args:   req,
	}
}
