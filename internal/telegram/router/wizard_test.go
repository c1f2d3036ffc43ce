package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/tracker/internal/telegram"
	"github.com/m3rciful/tracker/internal/wizard"
)

type delivery struct {
	text   string
	markup *tele.ReplyMarkup
	edit   bool
}

type fakeContext struct {
	tele.Context
	store     map[string]interface{}
	sender    *tele.User
	text      string
	cb        *tele.Callback
	out       []delivery
	responded int
}

func newFakeContext() *fakeContext {
	return &fakeContext{store: map[string]interface{}{}, sender: &tele.User{ID: 42}}
}

func (f *fakeContext) Get(key string) interface{}      { return f.store[key] }
func (f *fakeContext) Set(key string, val interface{}) { f.store[key] = val }
func (f *fakeContext) Sender() *tele.User              { return f.sender }
func (f *fakeContext) Chat() *tele.Chat                { return &tele.Chat{ID: 42, Type: tele.ChatPrivate} }
func (f *fakeContext) Update() tele.Update             { return tele.Update{ID: 7, Callback: f.cb} }
func (f *fakeContext) Text() string                    { return f.text }
func (f *fakeContext) Callback() *tele.Callback        { return f.cb }

func (f *fakeContext) Respond(...*tele.CallbackResponse) error {
	f.responded++
	return nil
}

func (f *fakeContext) record(what interface{}, edit bool, opts []interface{}) {
	d := delivery{text: what.(string), edit: edit}
	for _, o := range opts {
		if m, ok := o.(*tele.ReplyMarkup); ok {
			d.markup = m
		}
	}
	f.out = append(f.out, d)
}

func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	f.record(what, false, opts)
	return nil
}

func (f *fakeContext) Edit(what interface{}, opts ...interface{}) error {
	f.record(what, true, opts)
	return nil
}

type fakeEngine struct {
	commands []string
	inputs   []wizard.Input
	replies  []wizard.Reply
}

func (e *fakeEngine) Command(_ context.Context, userID int64, name string) []wizard.Reply {
	e.commands = append(e.commands, name)
	return e.replies
}

func (e *fakeEngine) Handle(_ context.Context, userID int64, in wizard.Input) []wizard.Reply {
	e.inputs = append(e.inputs, in)
	return e.replies
}

func stubClearKeyboard(t *testing.T) *int {
	t.Helper()
	calls := 0
	prev := clearKeyboard
	clearKeyboard = func(tele.Context) error {
		calls++
		return nil
	}
	t.Cleanup(func() { clearKeyboard = prev })
	return &calls
}

func TestRenderSendsAndEdits(t *testing.T) {
	cleared := stubClearKeyboard(t)
	c := newFakeContext()
	c.cb = &tele.Callback{Data: "pick_category|0", Message: &tele.Message{ID: 5}}

	err := Render(c, []wizard.Reply{
		{Edit: true},
		{Text: "Category type: Food", Edit: true},
		{Text: "What is your mode of payment?", Options: []string{"Card", "Cash"}, State: wizard.StatePickPayment},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, *cleared)
	require.Len(t, c.out, 2)
	assert.True(t, c.out[0].edit)
	assert.Nil(t, c.out[0].markup)
	assert.False(t, c.out[1].edit)
	require.NotNil(t, c.out[1].markup)
	require.Len(t, c.out[1].markup.InlineKeyboard, 2)
	assert.Equal(t, "Cash", c.out[1].markup.InlineKeyboard[1][0].Text)
	assert.Equal(t, "pick_payment|1", c.out[1].markup.InlineKeyboard[1][0].Data)
}

func TestRenderEditOutsideCallbackSends(t *testing.T) {
	cleared := stubClearKeyboard(t)
	c := newFakeContext()

	require.NoError(t, Render(c, []wizard.Reply{{Edit: true}, {Text: "Okay!", Edit: true}}))
	assert.Zero(t, *cleared)
	assert.Equal(t, []delivery{{text: "Okay!"}}, c.out)
}

func TestOptionHandlerDecodesPress(t *testing.T) {
	eng := &fakeEngine{replies: []wizard.Reply{{Text: "Entry type: Others", Edit: true}}}
	c := newFakeContext()
	c.cb = &tele.Callback{Unique: "opt", Data: "pick_entry_type|1"}

	require.NoError(t, optionHandler(eng)(c))
	assert.Equal(t, 1, c.responded)
	assert.Equal(t, []wizard.Input{wizard.Choice(wizard.StatePickEntryType, 1)}, eng.inputs)
	assert.Equal(t, []delivery{{text: "Entry type: Others", edit: true}}, c.out)
}

func TestOptionHandlerIgnoresMalformedPayload(t *testing.T) {
	eng := &fakeEngine{}
	c := newFakeContext()
	c.cb = &tele.Callback{Unique: "opt", Data: "garbage"}

	require.NoError(t, optionHandler(eng)(c))
	assert.Equal(t, 1, c.responded)
	assert.Empty(t, eng.inputs)
	assert.Empty(t, c.out)
}

func TestTextHandlerForwardsMessage(t *testing.T) {
	eng := &fakeEngine{replies: []wizard.Reply{{Text: "Please enter a valid price."}}}
	c := newFakeContext()
	c.text = "1.555"

	require.NoError(t, textHandler(eng)(c))
	assert.Equal(t, []wizard.Input{wizard.Text("1.555")}, eng.inputs)
	assert.Equal(t, "Please enter a valid price.", c.out[0].text)
}

func TestTextHandlerIgnoresUnknownCommand(t *testing.T) {
	eng := &fakeEngine{replies: []wizard.Reply{{Text: "Remarks noted."}}}
	c := newFakeContext()
	c.text = "/addentyr"

	require.NoError(t, textHandler(eng)(c))
	assert.Empty(t, eng.inputs)
	assert.Empty(t, c.out)
}

func TestRegisterCommands(t *testing.T) {
	eng := &fakeEngine{replies: []wizard.Reply{{Text: "help text"}}}
	reg := telegram.NewRegistry()
	RegisterCommands(reg, eng)

	list := reg.ListCommands()
	require.Len(t, list, len(wizard.Commands()))
	assert.Equal(t, "start", list[0].Text)
	for _, cmd := range list {
		assert.NotEmpty(t, cmd.Description, cmd.Text)
	}

	cmd, ok := reg.Lookup("/help")
	require.True(t, ok)
	c := newFakeContext()
	require.NoError(t, cmd.Handler(c))
	assert.Equal(t, []string{wizard.CmdHelp}, eng.commands)
	assert.Equal(t, "help text", c.out[0].text)
}

func TestRegistrySkipsInvalidAndDuplicate(t *testing.T) {
	reg := telegram.NewRegistry()
	h := func(tele.Context) error { return nil }
	reg.RegisterCommand("/start", telegram.Command{Handler: h, Description: "a"})
	reg.RegisterCommand("/start", telegram.Command{Handler: h, Description: "b"})
	reg.RegisterCommand("noslash", telegram.Command{Handler: h, Description: "c"})
	reg.RegisterCommand("/hidden", telegram.Command{Handler: h, Description: "d", Hidden: true})
	reg.RegisterCommand("/nodesc", telegram.Command{Handler: h})

	assert.Equal(t, []string{"/start", "/hidden"}, reg.Names())
	assert.Equal(t, []tele.Command{{Text: "start", Description: "a"}}, reg.ListCommands())
	assert.Len(t, reg.Routes(), 2)
}
