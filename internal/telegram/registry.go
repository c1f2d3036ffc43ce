package telegram

import (
	"context"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/tracker/internal/logger"
)

// Command is a slash command with its menu description.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	Hidden      bool
}

// Registry holds bot commands in registration order.
type Registry struct {
	names    []string
	commands map[string]Command
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// RegisterCommand adds a command named "/<name>". Invalid and duplicate
// registrations are logged and skipped.
func (r *Registry) RegisterCommand(name string, cmd Command) {
	if name == "" || cmd.Handler == nil || cmd.Description == "" {
		logger.LogEvent(context.Background(), logger.TWire, slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", "invalid"),
		)
		return
	}
	if name[0] != '/' {
		logger.LogEvent(context.Background(), logger.TWire, slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", "no_slash_prefix"),
		)
		return
	}
	if _, exists := r.commands[name]; exists {
		logger.LogEvent(context.Background(), logger.TWire, slog.LevelWarn, "register.command.duplicate",
			slog.String("name", name),
		)
		return
	}
	r.names = append(r.names, name)
	r.commands[name] = cmd
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names returns the registered command names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// ListCommands returns the menu entries, skipping hidden commands.
func (r *Registry) ListCommands() []tele.Command {
	list := make([]tele.Command, 0, len(r.names))
	for _, name := range r.names {
		cmd := r.commands[name]
		if cmd.Hidden {
			continue
		}
		list = append(list, tele.Command{Text: name[1:], Description: cmd.Description})
	}
	return list
}

// Routes wraps each command as a Route bound to its slash endpoint.
func (r *Registry) Routes() []Route {
	routes := make([]Route, 0, len(r.names))
	for _, name := range r.names {
		routes = append(routes, Route{Endpoint: name, Handler: r.commands[name].Handler})
	}
	return routes
}

// SetupCommands publishes the command menu to Telegram.
func SetupCommands(bot *tele.Bot, reg *Registry) {
	list := reg.ListCommands()
	if err := bot.SetCommands(list); err != nil {
		logger.LogEvent(context.Background(), logger.TWire, slog.LevelError, "register.commands.set_failed",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.LogEvent(context.Background(), logger.TWire, slog.LevelInfo, "register.commands.set",
		slog.String("status", "ok"),
		slog.Int("commands", len(list)),
	)
}
