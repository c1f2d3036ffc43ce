package wizard

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m3rciful/tracker/internal/logger"
	"github.com/m3rciful/tracker/internal/model"
	"github.com/m3rciful/tracker/internal/sheets"
)

// step handles one state. Choice steps receive the pressed option label,
// text steps the message text. A handler sets s.State to the next state.
type step struct {
	choice bool
	handle func(e *Engine, ctx context.Context, s *Session, input string) ([]Reply, error)
}

var steps = map[State]step{
	StateAwaitingSheetLink:     {handle: (*Engine).onSheetLink},
	StateAwaitingRelinkConfirm: {choice: true, handle: (*Engine).onRelinkConfirm},

	StateConfigMenu:            {choice: true, handle: (*Engine).onConfigMenu},
	StateConfigConfirm:         {choice: true, handle: (*Engine).onConfigConfirm},
	StateConfigPickCategory:    {choice: true, handle: (*Engine).onConfigCategory},
	StateConfigPickSubcategory: {choice: true, handle: (*Engine).onConfigSubcategory},
	StateConfigPickPayment:     {choice: true, handle: (*Engine).onConfigPayment},
	StateConfigPickSubpayment:  {choice: true, handle: (*Engine).onConfigSubpayment},

	StatePickEntryType:        {choice: true, handle: (*Engine).onEntryType},
	StateAwaitingPrice:        {handle: (*Engine).onPrice},
	StateAwaitingRemarks:      {handle: (*Engine).onRemarks},
	StatePickCategory:         {choice: true, handle: (*Engine).onCategory},
	StatePickSubcategory:      {choice: true, handle: (*Engine).onSubcategory},
	StatePickPayment:          {choice: true, handle: (*Engine).onPayment},
	StatePickSubpayment:       {choice: true, handle: (*Engine).onSubpayment},
	StateAwaitingQuickAddLine: {handle: (*Engine).onQuickAddLine},
}

func closeKeyboard() Reply { return Reply{Edit: true} }

func edit(text string) Reply { return Reply{Text: text, Edit: true} }

// mainOptions loads a keyboard list. An empty list ends the run with a hint,
// since a keyboard without buttons cannot be answered.
func (e *Engine) mainOptions(ctx context.Context, s *Session, list sheets.List) ([]string, bool, error) {
	opts, err := e.book.MainOptions(ctx, s.SheetID, list)
	if err != nil || len(opts) > 0 {
		return opts, err == nil, err
	}
	logger.LogEvent(ctx, logger.Wizard, slog.LevelWarn, "wizard.options_empty",
		slog.String("sheet_id", s.SheetID),
		slog.String("list", list.String()),
	)
	return nil, false, nil
}

// subOptions returns the children of parent without the header cell.
func (e *Engine) subOptions(ctx context.Context, s *Session, list sheets.List, parent string) ([]string, error) {
	opts, err := e.book.SubOptions(ctx, s.SheetID, list, parent)
	if err != nil || len(opts) <= 1 {
		return nil, err
	}
	return opts[1:], nil
}

func noOptions(s *Session) []Reply {
	s.State = StateIdle
	return []Reply{{Text: msgNoOptions}}
}

func withBack(opts []string) []string {
	return append(append([]string(nil), opts...), BackLabel)
}

func isBack(s *Session, label string) bool {
	return label == BackLabel && len(s.Options) > 0 && s.Options[len(s.Options)-1] == BackLabel
}

func (e *Engine) onSheetLink(ctx context.Context, s *Session, text string) ([]Reply, error) {
	id, ok := SheetIDFromLink(text)
	if !ok {
		return []Reply{{Text: msgInvalidLink}}, nil
	}
	if err := e.dir.Link(ctx, s.userID, id); err != nil {
		return nil, err
	}
	if err := e.ledger.Initialize(ctx, id); err != nil {
		return nil, err
	}
	logger.LogEvent(ctx, logger.Wizard, slog.LevelInfo, "wizard.linked", slog.String("sheet_id", id))
	s.State = StateIdle
	return []Reply{{Text: msgLinked}}, nil
}

func (e *Engine) onRelinkConfirm(_ context.Context, s *Session, choice string) ([]Reply, error) {
	if choice != optYes {
		s.State = StateIdle
		return []Reply{edit(msgNoWorries)}, nil
	}
	s.State = StateAwaitingSheetLink
	return []Reply{closeKeyboard(), {Text: e.setupText()}}, nil
}

func (e *Engine) onConfigMenu(ctx context.Context, s *Session, choice string) ([]Reply, error) {
	switch choice {
	case optCancel:
		s.State = StateIdle
		return []Reply{edit(msgOkay)}, nil
	case optChangeSheet:
		s.State = StateAwaitingSheetLink
		return []Reply{edit(choice), {Text: e.setupText()}}, nil
	}
	s.EntryType = model.Others
	if choice == optQuickTransport {
		s.EntryType = model.Transport
	}
	preset, _, err := e.book.Preset(ctx, s.SheetID, s.EntryType)
	if err != nil {
		return nil, err
	}
	s.State = StateConfigConfirm
	return []Reply{edit(choice), {Text: presetText(s.EntryType, preset), Options: yesNo}}, nil
}

func (e *Engine) onConfigConfirm(ctx context.Context, s *Session, choice string) ([]Reply, error) {
	if choice != optYes {
		s.State = StateIdle
		return []Reply{edit(msgNoWorries)}, nil
	}
	opts, ok, err := e.mainOptions(ctx, s, sheets.CategoryList(s.EntryType))
	if err != nil {
		return nil, err
	}
	if !ok {
		return noOptions(s), nil
	}
	s.State = StateConfigPickCategory
	text := "Choose your default " + s.EntryType.String() + " type."
	return []Reply{{Text: text, Options: opts, Edit: true}}, nil
}

func (e *Engine) onConfigCategory(ctx context.Context, s *Session, choice string) ([]Reply, error) {
	s.Category = choice
	switch s.EntryType {
	case model.Transport:
		return e.askConfigPayment(ctx, s, edit("Default transport type: "+choice))
	case model.Others:
		subs, err := e.subOptions(ctx, s, sheets.OthersCategories, choice)
		if err != nil {
			return nil, err
		}
		if len(subs) > 0 {
			s.State = StateConfigPickSubcategory
			return []Reply{{Text: msgSubcategory, Options: subs, Edit: true}}, nil
		}
		return e.askConfigPayment(ctx, s, edit("Default category type: "+choice))
	}
	panic("wizard: unhandled entry type " + s.EntryType.String())
}

func (e *Engine) onConfigSubcategory(ctx context.Context, s *Session, choice string) ([]Reply, error) {
	s.Category = model.Composite(s.Category, choice)
	return e.askConfigPayment(ctx, s, edit("Default category type: "+s.Category))
}

func (e *Engine) askConfigPayment(ctx context.Context, s *Session, echo Reply) ([]Reply, error) {
	opts, ok, err := e.mainOptions(ctx, s, sheets.Payments)
	if err != nil {
		return nil, err
	}
	if !ok {
		return append([]Reply{echo}, noOptions(s)...), nil
	}
	s.State = StateConfigPickPayment
	return []Reply{echo, {Text: msgDefaultPayment, Options: opts}}, nil
}

func (e *Engine) onConfigPayment(ctx context.Context, s *Session, choice string) ([]Reply, error) {
	s.Payment = choice
	subs, err := e.subOptions(ctx, s, sheets.Payments, choice)
	if err != nil {
		return nil, err
	}
	if len(subs) > 0 {
		s.State = StateConfigPickSubpayment
		return []Reply{{Text: msgDefaultPayment, Options: subs, Edit: true}}, nil
	}
	return e.savePreset(ctx, s)
}

func (e *Engine) onConfigSubpayment(ctx context.Context, s *Session, choice string) ([]Reply, error) {
	s.Payment = model.Composite(s.Payment, choice)
	return e.savePreset(ctx, s)
}

func (e *Engine) savePreset(ctx context.Context, s *Session) ([]Reply, error) {
	preset := model.Preset{Payment: s.Payment, Category: s.Category}
	if err := e.book.SetPreset(ctx, s.SheetID, s.EntryType, preset); err != nil {
		return nil, err
	}
	s.State = StateIdle
	return []Reply{
		edit("Payment type: " + s.Payment),
		{Text: "Default " + s.EntryType.String() + " settings updated."},
	}, nil
}

func (e *Engine) onEntryType(_ context.Context, s *Session, choice string) ([]Reply, error) {
	t, err := model.ParseEntryType(choice)
	if err != nil {
		return nil, err
	}
	s.EntryType = t
	s.State = StateAwaitingPrice
	return []Reply{edit("Entry type: " + choice), {Text: msgPrice}}, nil
}

func (e *Engine) onPrice(ctx context.Context, s *Session, text string) ([]Reply, error) {
	if !ValidPrice(text) {
		return []Reply{{Text: msgInvalidPrice}}, nil
	}
	if text == "" {
		logger.LogEvent(ctx, logger.Wizard, slog.LevelWarn, "wizard.empty_price", slog.String("state", string(s.State)))
	}
	s.Price = text
	s.State = StateAwaitingRemarks
	return []Reply{{Text: remarksPrompt(s.EntryType)}}, nil
}

func (e *Engine) onRemarks(ctx context.Context, s *Session, text string) ([]Reply, error) {
	if s.EntryType == model.Transport && !ValidDestinations(text) {
		return []Reply{{Text: msgDestinations}}, nil
	}
	s.Remarks = text
	return e.askCategory(ctx, s, false)
}

func (e *Engine) askCategory(ctx context.Context, s *Session, asEdit bool) ([]Reply, error) {
	opts, ok, err := e.mainOptions(ctx, s, sheets.CategoryList(s.EntryType))
	if err != nil {
		return nil, err
	}
	if !ok {
		return noOptions(s), nil
	}
	s.State = StatePickCategory
	return []Reply{{Text: categoryPrompt(s.EntryType), Options: opts, Edit: asEdit}}, nil
}

func (e *Engine) onCategory(ctx context.Context, s *Session, choice string) ([]Reply, error) {
	s.Category = choice
	switch s.EntryType {
	case model.Transport:
		return e.askPayment(ctx, s, edit("Transport type: "+choice))
	case model.Others:
		subs, err := e.subOptions(ctx, s, sheets.OthersCategories, choice)
		if err != nil {
			return nil, err
		}
		if len(subs) > 0 {
			s.State = StatePickSubcategory
			return []Reply{{Text: msgSubcategory, Options: withBack(subs), Edit: true}}, nil
		}
		return e.askPayment(ctx, s, edit("Category type: "+choice))
	}
	panic("wizard: unhandled entry type " + s.EntryType.String())
}

func (e *Engine) onSubcategory(ctx context.Context, s *Session, choice string) ([]Reply, error) {
	if isBack(s, choice) {
		s.Category = ""
		return e.askCategory(ctx, s, true)
	}
	s.Category = model.Composite(s.Category, choice)
	return e.askPayment(ctx, s, edit("Category type: "+s.Category))
}

func (e *Engine) askPayment(ctx context.Context, s *Session, echo Reply) ([]Reply, error) {
	opts, ok, err := e.mainOptions(ctx, s, sheets.Payments)
	if err != nil {
		return nil, err
	}
	if !ok {
		return append([]Reply{echo}, noOptions(s)...), nil
	}
	s.State = StatePickPayment
	if echo.Text == "" {
		return []Reply{{Text: msgPayment, Options: opts, Edit: true}}, nil
	}
	return []Reply{echo, {Text: msgPayment, Options: opts}}, nil
}

func (e *Engine) onPayment(ctx context.Context, s *Session, choice string) ([]Reply, error) {
	s.Payment = choice
	subs, err := e.subOptions(ctx, s, sheets.Payments, choice)
	if err != nil {
		return nil, err
	}
	if len(subs) > 0 {
		s.State = StatePickSubpayment
		return []Reply{{Text: msgPayment, Options: withBack(subs), Edit: true}}, nil
	}
	return e.logEntry(ctx, s, edit("Payment type: "+choice))
}

func (e *Engine) onSubpayment(ctx context.Context, s *Session, choice string) ([]Reply, error) {
	if isBack(s, choice) {
		s.Payment = ""
		return e.askPayment(ctx, s, Reply{})
	}
	s.Payment = model.Composite(s.Payment, choice)
	return e.logEntry(ctx, s, edit("Payment type: "+s.Payment))
}

func (e *Engine) onQuickAddLine(ctx context.Context, s *Session, text string) ([]Reply, error) {
	price, remarks, found := strings.Cut(text, ",")
	price, remarks = strings.TrimSpace(price), strings.TrimSpace(remarks)
	if !found || !ValidPrice(price) {
		return []Reply{{Text: msgBadFormat}}, nil
	}
	if s.EntryType == model.Transport && !ValidDestinations(remarks) {
		return []Reply{{Text: msgBadFormat}}, nil
	}
	if price == "" {
		logger.LogEvent(ctx, logger.Wizard, slog.LevelWarn, "wizard.empty_price", slog.String("state", string(s.State)))
	}
	s.Price = price
	s.Remarks = remarks
	return e.logEntry(ctx, s)
}

// logEntry writes the collected entry and ends the run.
func (e *Engine) logEntry(ctx context.Context, s *Session, lead ...Reply) ([]Reply, error) {
	entry := s.entry()
	entry.Price = strings.TrimSpace(entry.Price)
	entry.Remarks = strings.TrimSpace(entry.Remarks)
	notices, err := e.ledger.Log(ctx, s.SheetID, entry)
	if err != nil {
		return nil, err
	}
	replies := append([]Reply(nil), lead...)
	for _, n := range notices {
		replies = append(replies, Reply{Text: n})
	}
	s.State = StateIdle
	return append(replies, Reply{Text: loggedText(entry)}), nil
}
