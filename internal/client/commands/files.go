package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"chessrules/internal/game"
)

func (r *Registry) registerFileCommands() {
	r.Register(&Command{
		Name:        "fen",
		ShortName:   "f",
		Description: "Print the position as FEN",
		Usage:       "fen",
		Handler:     fenHandler,
	})

	r.Register(&Command{
		Name:        "load",
		ShortName:   "l",
		Description: "Set up a position from FEN",
		Usage:       "load <fen>",
		Handler:     loadHandler,
	})

	r.Register(&Command{
		Name:        "save",
		Description: "Write the game as JSON",
		Usage:       "save <file>",
		Handler:     saveHandler,
	})

	r.Register(&Command{
		Name:        "open",
		ShortName:   "o",
		Description: "Read a game saved as JSON",
		Usage:       "open <file>",
		Handler:     openHandler,
	})
}

func fenHandler(s *Session, args []string) error {
	s.Out.Println(s.Game.FEN())
	return nil
}

func loadHandler(s *Session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: load <fen>")
	}

	g, err := game.FromFEN(strings.Join(args, " "))
	if err != nil {
		return err
	}
	if err := game.ValidateKings(g.Board()); err != nil {
		return err
	}

	s.Game = g
	showGame(s)
	return nil
}

func saveHandler(s *Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: save <file>")
	}

	data, err := json.MarshalIndent(s.Game, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		return err
	}
	s.Out.Info("Saved to %s", args[0])
	return nil
}

func openHandler(s *Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: open <file>")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	g := &game.Game{}
	if err := json.Unmarshal(data, g); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	if err := game.ValidateKings(g.Board()); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	s.Game = g
	showGame(s)
	return nil
}
