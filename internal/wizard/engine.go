// Package wizard runs the per-user conversation that links a spreadsheet,
// configures quick-add presets and collects expense entries.
package wizard

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/m3rciful/tracker/internal/directory"
	"github.com/m3rciful/tracker/internal/logger"
	"github.com/m3rciful/tracker/internal/model"
	"github.com/m3rciful/tracker/internal/sheets"
)

// Command names accepted by Engine.Command.
const (
	CmdStart        = "start"
	CmdConfig       = "config"
	CmdAddEntry     = "addentry"
	CmdAddTransport = "addtransport"
	CmdAddOthers    = "addothers"
	CmdCancel       = "cancel"
	CmdHelp         = "help"
)

// Directory resolves the sheet linked to a user.
type Directory interface {
	Exists(ctx context.Context, userID int64) (bool, error)
	SheetID(ctx context.Context, userID int64) (string, error)
	Link(ctx context.Context, userID int64, sheetID string) error
}

// Workbook reads option lists and presets from a user's sheet.
type Workbook interface {
	MainOptions(ctx context.Context, sheetID string, list sheets.List) ([]string, error)
	SubOptions(ctx context.Context, sheetID string, list sheets.List, parent string) ([]string, error)
	Preset(ctx context.Context, sheetID string, t model.EntryType) (model.Preset, bool, error)
	SetPreset(ctx context.Context, sheetID string, t model.EntryType, p model.Preset) error
}

// Ledger writes completed entries.
type Ledger interface {
	Initialize(ctx context.Context, sheetID string) error
	Log(ctx context.Context, sheetID string, e model.Entry) ([]string, error)
}

// Recorder counts failed steps.
type Recorder interface {
	HandlerError(handler string)
}

// Deps are the collaborators of an Engine.
type Deps struct {
	Directory Directory
	Workbook  Workbook
	Ledger    Ledger
	Recorder  Recorder
}

// Settings are the onboarding details shown by /start.
type Settings struct {
	TemplateURL         string
	ServiceAccountEmail string
}

// Engine drives conversations. It is safe for concurrent use.
type Engine struct {
	dir      Directory
	book     Workbook
	ledger   Ledger
	rec      Recorder
	settings Settings
	store    *Store
}

// New returns an Engine with an empty session store.
func New(deps Deps, settings Settings) *Engine {
	return &Engine{
		dir:      deps.Directory,
		book:     deps.Workbook,
		ledger:   deps.Ledger,
		rec:      deps.Recorder,
		settings: settings,
		store:    NewStore(),
	}
}

// Sessions exposes the session store.
func (e *Engine) Sessions() *Store { return e.store }

type commandFunc func(e *Engine, ctx context.Context, userID int64, s *Session) ([]Reply, error)

var commands = map[string]commandFunc{
	CmdStart:        (*Engine).cmdStart,
	CmdConfig:       (*Engine).cmdConfig,
	CmdAddEntry:     (*Engine).cmdAddEntry,
	CmdAddTransport: func(e *Engine, ctx context.Context, userID int64, s *Session) ([]Reply, error) { return e.cmdQuickAdd(ctx, userID, s, model.Transport) },
	CmdAddOthers:    func(e *Engine, ctx context.Context, userID int64, s *Session) ([]Reply, error) { return e.cmdQuickAdd(ctx, userID, s, model.Others) },
	CmdCancel:       (*Engine).cmdCancel,
	CmdHelp:         (*Engine).cmdHelp,
}

// Commands lists the command names in menu order.
func Commands() []string {
	return []string{CmdStart, CmdConfig, CmdAddEntry, CmdAddTransport, CmdAddOthers, CmdCancel, CmdHelp}
}

// Command runs a slash command for userID. Entry-point commands discard any
// running conversation first. Unknown commands yield no replies.
func (e *Engine) Command(ctx context.Context, userID int64, name string) []Reply {
	fn, ok := commands[strings.ToLower(strings.TrimPrefix(name, "/"))]
	if !ok {
		return nil
	}
	s, release := e.store.acquire(userID)
	defer release()

	from := s.State
	ctx = logger.WithHandler(ctx, "cmd_"+name)
	replies, err := fn(e, ctx, userID, s)
	return e.finish(ctx, s, from, replies, err)
}

// Handle feeds one input to the step of userID's current state. Inputs the
// state does not accept, and presses on keyboards of another state, are ignored.
func (e *Engine) Handle(ctx context.Context, userID int64, in Input) []Reply {
	s, release := e.store.acquire(userID)
	defer release()

	from := s.State
	st, ok := steps[from]
	if !ok || st.choice != in.IsChoice {
		logger.LogEvent(ctx, logger.Wizard, slog.LevelDebug, "wizard.ignored",
			slog.String("state", string(from)),
			slog.Bool("choice", in.IsChoice),
		)
		return nil
	}
	var label string
	if in.IsChoice {
		if in.State != from || in.Choice < 0 || in.Choice >= len(s.Options) {
			logger.LogEvent(ctx, logger.Wizard, slog.LevelDebug, "wizard.stale",
				slog.String("outcome", "stale"),
				slog.String("state", string(from)),
				slog.String("pressed_state", string(in.State)),
				slog.Int("choice", in.Choice),
			)
			return nil
		}
		label = s.Options[in.Choice]
	} else {
		label = in.Text
	}

	ctx = logger.WithHandler(ctx, string(from))
	replies, err := st.handle(e, ctx, s, label)
	return e.finish(ctx, s, from, replies, err)
}

// finish applies the error policy, stamps keyboards with the new state and logs the transition.
func (e *Engine) finish(ctx context.Context, s *Session, from State, replies []Reply, err error) []Reply {
	handler := logger.HandlerFrom(ctx)
	if err != nil {
		logger.LogEvent(ctx, logger.Wizard, slog.LevelError, "wizard.handler",
			slog.String("status", "fail"),
			slog.String("handler", handler),
			slog.String("state", string(from)),
			slog.String("err", logger.SanitizeLimit(err.Error(), 512)),
		)
		if e.rec != nil {
			e.rec.HandlerError(handler)
		}
		s.reset()
		return []Reply{{Text: msgApology}}
	}

	rendered := false
	for i := range replies {
		if len(replies[i].Options) > 0 {
			replies[i].State = s.State
			s.Options = replies[i].Options
			rendered = true
		}
	}
	if !rendered && s.State != from {
		s.Options = nil
	}
	if s.State == StateIdle {
		s.reset()
	}
	outcome := "ok"
	if s.State == from && from != StateIdle {
		outcome = "reprompt"
	}
	logger.LogEvent(ctx, logger.Wizard, slog.LevelInfo, "wizard.transition",
		slog.String("status", "ok"),
		slog.String("outcome", outcome),
		slog.String("handler", handler),
		slog.String("state", string(from)),
		slog.String("next_state", string(s.State)),
	)
	return replies
}

// linkedSheet resolves the user's sheet; ok is false when none is linked.
func (e *Engine) linkedSheet(ctx context.Context, userID int64) (string, bool, error) {
	id, err := e.dir.SheetID(ctx, userID)
	if errors.Is(err, directory.ErrNotLinked) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (e *Engine) cmdStart(ctx context.Context, userID int64, s *Session) ([]Reply, error) {
	s.reset()
	linked, err := e.dir.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !linked {
		s.State = StateAwaitingSheetLink
		return []Reply{{Text: e.setupText()}}, nil
	}
	id, err := e.dir.SheetID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.SheetID = id
	s.State = StateAwaitingRelinkConfirm
	return []Reply{{Text: relinkText(id), Options: yesNo}}, nil
}

func (e *Engine) cmdConfig(ctx context.Context, userID int64, s *Session) ([]Reply, error) {
	s.reset()
	id, ok, err := e.linkedSheet(ctx, userID)
	if err != nil || !ok {
		return notLinked(err)
	}
	s.SheetID = id
	s.State = StateConfigMenu
	return []Reply{{Text: msgConfigMenu, Options: configMenu}}, nil
}

func (e *Engine) cmdAddEntry(ctx context.Context, userID int64, s *Session) ([]Reply, error) {
	s.reset()
	id, ok, err := e.linkedSheet(ctx, userID)
	if err != nil || !ok {
		return notLinked(err)
	}
	s.SheetID = id
	s.State = StatePickEntryType
	labels := make([]string, len(model.EntryTypes))
	for i, t := range model.EntryTypes {
		labels[i] = t.String()
	}
	return []Reply{{Text: msgEntryType, Options: labels}}, nil
}

func (e *Engine) cmdQuickAdd(ctx context.Context, userID int64, s *Session, t model.EntryType) ([]Reply, error) {
	s.reset()
	id, ok, err := e.linkedSheet(ctx, userID)
	if err != nil || !ok {
		return notLinked(err)
	}
	preset, ok, err := e.book.Preset(ctx, id, t)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []Reply{{Text: noPresetText(t)}}, nil
	}
	s.SheetID = id
	s.EntryType = t
	s.Payment = preset.Payment
	s.Category = preset.Category
	s.State = StateAwaitingQuickAddLine
	return []Reply{{Text: quickAddText(t, preset)}}, nil
}

func (e *Engine) cmdCancel(_ context.Context, _ int64, s *Session) ([]Reply, error) {
	if s.State == StateIdle {
		return []Reply{{Text: msgNothingToStop}}, nil
	}
	s.reset()
	return []Reply{{Text: msgCancelled}}, nil
}

func (e *Engine) cmdHelp(_ context.Context, _ int64, _ *Session) ([]Reply, error) {
	return []Reply{{Text: helpCommand}}, nil
}

func (e *Engine) setupText() string {
	return setupText(e.settings.TemplateURL, e.settings.ServiceAccountEmail)
}

func notLinked(err error) ([]Reply, error) {
	if err != nil {
		return nil, err
	}
	return []Reply{{Text: msgNotLinked}}, nil
}
