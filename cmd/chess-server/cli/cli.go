package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"chessrules/internal/game"
	"chessrules/internal/storage"
)

// Run is the entry point for the database mini-app
func Run(args []string) error {
	return run(args, os.Stdout)
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query, show")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:], out)
	case "delete":
		return runDelete(args[1:], out)
	case "query":
		return runQuery(args[1:], out)
	case "show":
		return runShow(args[1:], out)
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

// openStore parses -path plus any extra flags and opens the database
func openStore(name string, args []string, extra func(*flag.FlagSet)) (*storage.Store, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	if extra != nil {
		extra(fs)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *path == "" {
		return nil, fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false, zerolog.Nop())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func runInit(args []string, out io.Writer) error {
	store, err := openStore("init", args, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Fprintln(out, "Database initialized")
	return nil
}

func runDelete(args []string, out io.Writer) error {
	store, err := openStore("delete", args, nil)
	if err != nil {
		return err
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Fprintln(out, "Database deleted")
	return nil
}

func runQuery(args []string, out io.Writer) error {
	var gameID *string
	store, err := openStore("query", args, func(fs *flag.FlagSet) {
		gameID = fs.String("gameId", "", "Game ID to filter (optional, * for all)")
	})
	if err != nil {
		return err
	}
	defer store.Close()

	games, err := store.QueryGames(context.Background(), *gameID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(games) == 0 {
		fmt.Fprintln(out, "No games found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Game ID\tName\tWhite\tBlack\tTurn\tVersion\tUpdated")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	for _, g := range games {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			shortID(g.GameID),
			orDash(g.Name),
			orDash(g.WhiteName),
			orDash(g.BlackName),
			g.Turn,
			g.Version,
			g.UpdatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nFound %d game(s)\n", len(games))
	return nil
}

// runShow rebuilds a stored game and prints its board
func runShow(args []string, out io.Writer) error {
	var gameID *string
	store, err := openStore("show", args, func(fs *flag.FlagSet) {
		gameID = fs.String("gameId", "", "Game ID to show (required)")
	})
	if err != nil {
		return err
	}
	defer store.Close()

	if *gameID == "" {
		return fmt.Errorf("game ID required")
	}

	rec, err := store.LoadGame(context.Background(), *gameID)
	if err != nil {
		return err
	}

	g := &game.Game{}
	if err := json.Unmarshal([]byte(rec.StateJSON), g); err != nil {
		return fmt.Errorf("stored game %s is unreadable: %w", rec.GameID, err)
	}
	if err := game.ValidateKings(g.Board()); err != nil {
		return fmt.Errorf("stored game %s: %w", rec.GameID, err)
	}

	fmt.Fprintf(out, "Game %s (version %d)\n\n", rec.GameID, rec.Version)
	fmt.Fprintln(out, g.Board().ToASCII())
	fmt.Fprintf(out, "\nFEN:   %s\nState: %s\n", g.FEN(), g.State())
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
