package commands

import (
	"fmt"
	"strings"

	"chessrules/internal/board"
	"chessrules/internal/client/display"
	"chessrules/internal/core"
	"chessrules/internal/game"
)

func (r *Registry) registerGameCommands() {
	r.Register(&Command{
		Name:        "board",
		ShortName:   "b",
		Description: "Show board and game state",
		Usage:       "board",
		Handler:     boardHandler,
	})

	r.Register(&Command{
		Name:        "moves",
		ShortName:   "ls",
		Description: "List legal moves from a square, or all of them",
		Usage:       "moves [square]",
		Handler:     movesHandler,
	})

	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Make a move",
		Usage:       "move <uci-move>  (e2e4, e7e8q)",
		Handler:     moveHandler,
	})

	r.Register(&Command{
		Name:        "status",
		ShortName:   "s",
		Description: "Show check, checkmate and stalemate for a side",
		Usage:       "status [w|b]",
		Handler:     statusHandler,
	})

	r.Register(&Command{
		Name:        "turn",
		ShortName:   "t",
		Description: "Show or set the side to move",
		Usage:       "turn [w|b]",
		Handler:     turnHandler,
	})

	r.Register(&Command{
		Name:        "reset",
		ShortName:   "r",
		Description: "Start over from the standard position",
		Usage:       "reset",
		Handler:     resetHandler,
	})
}

func boardHandler(s *Session, args []string) error {
	showGame(s)
	return nil
}

// showGame prints the board followed by a one-line summary
func showGame(s *Session) {
	out := s.Out
	out.RenderBoard(s.Game.Board().ToASCII())
	out.Println()

	turn := s.Game.Turn()
	line := fmt.Sprintf("Turn: %s", out.ColorForTurn(turn))
	switch state := s.Game.State(); state {
	case core.StateCheck:
		line += "  " + out.Paint(display.Yellow, "check")
	case core.StateCheckmate:
		line += "  " + out.Paint(display.Red, "checkmate, "+core.OppositeColor(turn).Name()+" wins")
	case core.StateStalemate:
		line += "  " + out.Paint(display.Magenta, "stalemate")
	}
	out.Println(line)
}

func movesHandler(s *Session, args []string) error {
	var moves []board.Move
	if len(args) == 0 {
		moves = s.Game.AllLegalMoves()
	} else {
		pos, err := board.ParseSquare(strings.ToLower(args[0]))
		if err != nil {
			return err
		}
		moves = s.Game.LegalMoves(pos)
	}

	if len(moves) == 0 {
		s.Out.Println("No legal moves")
		return nil
	}

	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = m.String()
	}
	s.Out.Printf("%d: %s\n", len(moves), strings.Join(names, " "))
	return nil
}

func moveHandler(s *Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: move <uci-move>")
	}

	m, err := board.ParseMove(strings.ToLower(args[0]))
	if err != nil {
		return err
	}
	if err := s.Game.ApplyMove(m); err != nil {
		return err
	}

	s.Out.Printf("%s %s\n", s.Out.Paint(display.Green, "Played"), m)
	showGame(s)
	return nil
}

func statusHandler(s *Session, args []string) error {
	color := s.Game.Turn()
	if len(args) > 0 {
		parsed, err := core.ParseColor(args[0])
		if err != nil {
			return err
		}
		color = parsed
	}

	s.Out.Printf("%s: check=%t checkmate=%t stalemate=%t\n",
		s.Out.ColorForTurn(color),
		s.Game.IsInCheck(color),
		s.Game.IsInCheckmate(color),
		s.Game.IsInStalemate(color))
	return nil
}

func turnHandler(s *Session, args []string) error {
	if len(args) > 0 {
		color, err := core.ParseColor(args[0])
		if err != nil {
			return err
		}
		if err := s.Game.SetTurn(color); err != nil {
			return err
		}
	}
	s.Out.Printf("Turn: %s\n", s.Out.ColorForTurn(s.Game.Turn()))
	return nil
}

func resetHandler(s *Session, args []string) error {
	s.Game = game.New()
	showGame(s)
	return nil
}
