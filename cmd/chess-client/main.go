// Package main implements an interactive local chess board driven by the
// rules engine.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"chessrules/internal/client/commands"
	"chessrules/internal/client/display"
)

func main() {
	out := display.New(os.Stdout, display.ColorEnabled(os.Stdout))
	session := commands.NewSession(out)
	registry := commands.NewRegistry(session)

	var items []readline.PrefixCompleterInterface
	for _, name := range registry.Names() {
		items = append(items, readline.PcItem(name))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          out.Prompt("chess"),
		HistoryFile:     historyFile(),
		AutoComplete:    readline.NewPrefixCompleter(items...),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		out.Error("%s", err)
		os.Exit(1)
	}
	defer rl.Close()

	out.Info("Chess")
	out.Println("Type 'help' for commands")
	out.Println()

	for {
		rl.SetPrompt(buildPrompt(session))

		line, err := rl.Readline()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			out.Error("%s", err)
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !registry.Execute(line) {
			break
		}
	}
}

func buildPrompt(s *commands.Session) string {
	out := s.Out
	prompt := fmt.Sprintf("chess [%s]", out.ColorForTurn(s.Game.Turn()))
	if over := s.Game.State(); over.IsOver() {
		prompt += " " + over.String()
	}
	return out.Prompt(prompt)
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chess_history"
	}
	return home + string(os.PathSeparator) + ".chess_history"
}
