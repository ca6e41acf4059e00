package commands

import (
	"InvKeeper/internal/config"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ErrUsage is returned by a command when arguments are invalid and usage should be shown.
var ErrUsage = errors.New("usage")

// Command represents a CLI subcommand.
type Command interface {
	// Name returns the command name as typed by the user, e.g. "login".
	Name() string
	// Description is a short human-readable description shown in help.
	Description() string
	// Usage returns the exact usage string, e.g. "login <username> <password>".
	Usage() string
	// Run executes the command with provided args (without the command name).
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

// registry holds available commands by name.
var registry = map[string]Command{}

// Out — общий writer для вывода CLI. По умолчанию os.Stdout, но в тестах может переназначаться.
var Out io.Writer = os.Stdout

// RegisterCmd adds a command to the registry. Should be called from init() of each command.
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

// Get returns a command by name.
func Get(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// List returns all registered commands sorted by name.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// FormatGlobalUsage builds a help text for all commands.
func FormatGlobalUsage() string {
	lines := []string{
		"InvKeeper CLI",
		"",
		"Usage:",
		"  invcli [--base-url <host:port>] [--https] [--token-file <path>] <command> [args]",
		"",
		"Commands:",
	}
	for _, c := range List() {
		lines = append(lines, "  "+c.Usage(), "      "+c.Description())
	}
	lines = append(lines,
		"",
		"Environment:",
		"  BASE_URL       server host:port (default localhost:8081)",
		"  ENABLE_HTTPS   talk to the server over https",
		"  TOKEN_FILE     where login keeps the bearer token",
		"",
		"Example:",
		"  invcli login alice 'Passw0rd!'",
		"  invcli add --codice A1 --descrizione 'Vite M4' --carico 10",
		"  invcli edit 1 --scarico 3",
		"  invcli export --locazione 'Scaffale A' inventario.csv",
	)
	return strings.Join(lines, "\n") + "\n"
}
