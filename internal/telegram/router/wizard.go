// Package router binds telebot endpoints to the conversation engine.
package router

import (
	"context"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/tracker/internal/logger"
	"github.com/m3rciful/tracker/internal/telegram"
	"github.com/m3rciful/tracker/internal/telegram/helpers"
	"github.com/m3rciful/tracker/internal/telegram/keyboard"
	"github.com/m3rciful/tracker/internal/wizard"
)

// Engine is the conversation engine driven by updates.
type Engine interface {
	Command(ctx context.Context, userID int64, name string) []wizard.Reply
	Handle(ctx context.Context, userID int64, in wizard.Input) []wizard.Reply
}

var descriptions = map[string]string{
	wizard.CmdStart:        "Link your Google sheet",
	wizard.CmdConfig:       "Change your sheet or quick add defaults",
	wizard.CmdAddEntry:     "Add an entry step by step",
	wizard.CmdAddTransport: "Quick add a transport entry",
	wizard.CmdAddOthers:    "Quick add an others entry",
	wizard.CmdCancel:       "Cancel the current conversation",
	wizard.CmdHelp:         "Show what I can do",
}

// RegisterCommands registers every engine command with reg.
func RegisterCommands(reg *telegram.Registry, eng Engine) {
	for _, name := range wizard.Commands() {
		reg.RegisterCommand("/"+name, telegram.Command{
			Description: descriptions[name],
			Handler:     commandHandler(eng, name),
		})
	}
}

func commandHandler(eng Engine, name string) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Sender() == nil {
			return nil
		}
		return handleWithSummary(c, normalizeHandlerName("cmd_"+name), func() error {
			return Render(c, eng.Command(helpers.BuildContext(c), c.Sender().ID, name))
		})
	}
}

// Routes returns the text and option press routes.
func Routes(eng Engine) []telegram.Route {
	return []telegram.Route{
		{Endpoint: tele.OnText, Handler: textHandler(eng)},
		{Endpoint: keyboard.Endpoint, Handler: optionHandler(eng)},
		{Endpoint: tele.OnCallback, Handler: unknownCallback},
	}
}

func textHandler(eng Engine) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Sender() == nil {
			return nil
		}
		// Unregistered commands reach OnText; they are not wizard input.
		if strings.HasPrefix(c.Text(), "/") {
			logger.LogEvent(helpers.BuildContext(c), logger.TG, slog.LevelDebug, "text.unknown_command",
				slog.String("outcome", "ignored"),
				slog.String("text", logger.SanitizeLimit(c.Text(), 64)),
			)
			return nil
		}
		return handleWithSummary(c, "text", func() error {
			return Render(c, eng.Handle(helpers.BuildContext(c), c.Sender().ID, wizard.Text(c.Text())))
		})
	}
}

func optionHandler(eng Engine) tele.HandlerFunc {
	return func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil || c.Sender() == nil {
			return nil
		}
		return handleWithSummary(c, "option", func() error {
			ctx := helpers.BuildContext(c)
			_ = c.Respond()
			st, idx, err := keyboard.ParseChoice(cb.Data)
			if err != nil {
				logger.LogEvent(ctx, logger.TG, slog.LevelWarn, "callback.malformed",
					slog.String("outcome", "stale"),
					slog.String("payload", logger.SanitizeLimit(cb.Data, 128)),
				)
				return nil
			}
			return Render(c, eng.Handle(ctx, c.Sender().ID, wizard.Choice(st, idx)))
		}, slog.String("cb_key", keyboard.OptionUnique))
	}
}

// unknownCallback acknowledges presses on buttons this bot no longer renders.
func unknownCallback(c tele.Context) error {
	return handleWithSummary(c, "callback.unknown", func() error {
		_ = c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
		return nil
	})
}

// clearKeyboard removes the inline keyboard of the pressed message.
var clearKeyboard = func(c tele.Context) error {
	cb := c.Callback()
	if cb == nil || cb.Message == nil {
		return nil
	}
	_, err := c.Bot().EditReplyMarkup(cb.Message, nil)
	return err
}

// Render delivers replies in order. Edit replies rewrite the pressed message
// and fall back to a new message outside a callback.
func Render(c tele.Context, replies []wizard.Reply) error {
	pressed := c.Callback() != nil
	for _, r := range replies {
		var opts []interface{}
		if len(r.Options) > 0 {
			opts = append(opts, keyboard.Options(r.State, r.Options))
		}
		var err error
		switch {
		case r.Edit && pressed && r.Text == "":
			err = clearKeyboard(c)
		case r.Edit && pressed:
			err = c.Edit(r.Text, opts...)
		case r.Text == "":
			continue
		default:
			err = c.Send(r.Text, opts...)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
