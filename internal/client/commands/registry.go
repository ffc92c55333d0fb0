package commands

import (
	"fmt"
	"sort"
	"strings"

	"chessrules/internal/client/display"
	"chessrules/internal/game"
)

// Session is the local state a REPL works on
type Session struct {
	Game *game.Game
	Out  *display.Printer
	Done bool
}

func NewSession(out *display.Printer) *Session {
	return &Session{Game: game.New(), Out: out}
}

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Handler     func(*Session, []string) error
}

// Registry manages command registration and execution
type Registry struct {
	session  *Session
	commands map[string]*Command
}

func NewRegistry(session *Session) *Registry {
	r := &Registry{
		session:  session,
		commands: make(map[string]*Command),
	}

	r.registerGameCommands()
	r.registerFileCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Handler:     r.helpHandler,
	})

	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Description: "Exit the client",
		Usage:       "exit",
		Handler:     exitHandler,
	})

	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
}

// Execute runs one input line. It reports false once the session is over.
func (r *Registry) Execute(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return !r.session.Done
	}

	cmdName := strings.ToLower(parts[0])
	args := parts[1:]

	cmd, exists := r.commands[cmdName]
	if !exists {
		r.session.Out.Error("Unknown command: %s", cmdName)
		r.session.Out.Println("Type 'help' for available commands")
		return true
	}

	if err := cmd.Handler(r.session, args); err != nil {
		r.session.Out.Error("Error: %s", err)
	}
	return !r.session.Done
}

// Names returns primary command names, sorted, for completion
func (r *Registry) Names() []string {
	var names []string
	for key, cmd := range r.commands {
		if key == cmd.Name {
			names = append(names, key)
		}
	}
	sort.Strings(names)
	return names
}

func (r *Registry) helpHandler(s *Session, args []string) error {
	out := s.Out
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		out.Printf("\n%s - %s\n", out.Paint(display.Cyan, cmd.Name), cmd.Description)
		if cmd.ShortName != "" {
			out.Printf("Short form: %s\n", out.Paint(display.Cyan, cmd.ShortName))
		}
		out.Printf("Usage: %s\n", cmd.Usage)
		return nil
	}

	groups := []struct {
		title string
		names []string
	}{
		{"Game Commands", []string{"board", "moves", "move", "status", "turn", "reset"}},
		{"Position Commands", []string{"fen", "load", "save", "open"}},
		{"Utility Commands", []string{"help", "exit"}},
	}

	out.Printf("\n%s\n\n", out.Paint(display.Cyan, "Available Commands:"))
	for i, g := range groups {
		if i > 0 {
			out.Println()
		}
		out.Printf("%s\n", out.Paint(display.Yellow, g.title+":"))
		for _, name := range g.names {
			cmd, exists := r.commands[name]
			if !exists {
				continue
			}
			shortPart := "    "
			if cmd.ShortName != "" {
				shortPart = fmt.Sprintf("[%s] ", out.Paint(display.Cyan, cmd.ShortName))
			}
			out.Printf("  %s%-8s %s\n", shortPart, cmd.Name, cmd.Description)
		}
	}

	out.Printf("\nType 'help <command>' for detailed usage\n")
	return nil
}

func exitHandler(s *Session, args []string) error {
	s.Out.Info("Goodbye!")
	s.Done = true
	return nil
}
