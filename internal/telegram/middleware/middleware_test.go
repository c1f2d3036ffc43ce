package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

type fakeContext struct {
	tele.Context
	store  map[string]interface{}
	sender *tele.User
	update tele.Update
	sent   int
}

func newFakeContext(userID int64, upd tele.Update) *fakeContext {
	return &fakeContext{store: map[string]interface{}{}, sender: &tele.User{ID: userID}, update: upd}
}

func (f *fakeContext) Get(key string) interface{}      { return f.store[key] }
func (f *fakeContext) Set(key string, val interface{}) { f.store[key] = val }
func (f *fakeContext) Sender() *tele.User              { return f.sender }
func (f *fakeContext) Chat() *tele.Chat                { return nil }
func (f *fakeContext) Update() tele.Update             { return f.update }
func (f *fakeContext) Text() string                    { return "" }

func (f *fakeContext) Send(interface{}, ...interface{}) error {
	f.sent++
	return nil
}

func (f *fakeContext) Edit(interface{}, ...interface{}) error {
	f.sent++
	return nil
}

var message = tele.Update{ID: 1, Message: &tele.Message{Text: "hi"}}

func TestUpdateKind(t *testing.T) {
	assert.Equal(t, "message", UpdateKind(message))
	assert.Equal(t, "callback", UpdateKind(tele.Update{Callback: &tele.Callback{}}))
	assert.Equal(t, "other", UpdateKind(tele.Update{}))
}

func TestRateLimitDropsBurstsPerUser(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limited := 0
	mw := RateLimit(RateLimitOptions{
		Interval:  time.Second,
		OnLimited: func(tele.Context) error { limited++; return nil },
		Now:       func() time.Time { return now },
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	require.NoError(t, h(newFakeContext(1, message)))
	require.NoError(t, h(newFakeContext(1, message)))
	require.NoError(t, h(newFakeContext(2, message)))
	now = now.Add(time.Second)
	require.NoError(t, h(newFakeContext(1, message)))

	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, limited)
}

func TestRateLimitExcludesKinds(t *testing.T) {
	mw := RateLimit(RateLimitOptions{
		Interval: time.Hour,
		Exclude:  map[string]struct{}{"callback": {}},
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })
	press := tele.Update{Callback: &tele.Callback{Data: "x"}}

	for i := 0; i < 3; i++ {
		require.NoError(t, h(newFakeContext(1, press)))
	}
	assert.Equal(t, 3, calls)
}

type counter struct {
	kinds []string
	sent  int
}

func (c *counter) UpdateReceived(kind string) { c.kinds = append(c.kinds, kind) }
func (c *counter) MessagesSent(n int)         { c.sent += n }

func TestMetricsCountsMessages(t *testing.T) {
	rec := &counter{}
	c := newFakeContext(1, message)
	h := Metrics(rec)(func(c tele.Context) error {
		_ = c.Send("one", &tele.ReplyMarkup{})
		return c.Edit("two")
	})

	require.NoError(t, h(c))
	assert.Equal(t, 2, c.sent)
	msgs, kb := GetCounters(c)
	assert.Equal(t, 2, msgs)
	assert.True(t, kb)
	assert.Equal(t, []string{"message"}, rec.kinds)
	assert.Equal(t, 2, rec.sent)
}

func TestRecoverSwallowsPanics(t *testing.T) {
	h := Recover(func(tele.Context) error { panic("boom") })
	assert.NotPanics(t, func() {
		assert.NoError(t, h(newFakeContext(1, message)))
	})
}

func TestLoggerStoresRequestID(t *testing.T) {
	c := newFakeContext(9, message)
	require.NoError(t, Logger(func(tele.Context) error { return nil })(c))
	assert.Equal(t, "1:0:9", c.Get("rid"))
}
