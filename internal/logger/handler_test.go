package logger

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestHandler(format logFormat, out, errs *bytes.Buffer) (*structuredHandler, func()) {
	aw := newAsyncWriter([]io.Writer{out}, 1024)
	var ew *asyncWriter
	if errs != nil {
		ew = newAsyncWriter([]io.Writer{errs}, 1024)
	}
	h := newStructuredHandler(handlerConfig{
		level:    slog.LevelDebug,
		writer:   aw,
		errors:   ew,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	return h, func() {
		_ = aw.Close()
		if ew != nil {
			_ = ew.Close()
		}
	}
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	h, done := newTestHandler(formatKV, buf, nil)

	ctx := WithRID(Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)
	LogEvent(ctx, slog.New(h).With("component", "wizard"), slog.LevelInfo, "wizard.transition",
		slog.String("status", "ok"),
		slog.String("state", "awaiting_price"),
	)
	done()

	tokens := strings.Split(strings.TrimSpace(buf.String()), " ")
	expected := []string{"ts=", "level=INFO", "component=wizard", "event=wizard.transition", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9", "state=awaiting_price"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), buf.String())
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONCompactRID(t *testing.T) {
	buf := &bytes.Buffer{}
	h, done := newTestHandler(formatJSON, buf, nil)

	ctx := WithRID(Background(), "12:34:56")
	LogEvent(ctx, slog.New(h).With("component", "ledger"), slog.LevelError, "ledger.log",
		slog.String("status", "error"),
		slog.Duration("duration", 1500*time.Microsecond),
	)
	done()

	line := strings.TrimSpace(buf.String())
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"ledger"`, `"event":"ledger.log"`, `"status":"fail"`, `"rid":"c.y.1k"`, `"rid_full":"12:34:56"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
	if !strings.Contains(line, `"duration_ms":2`) {
		t.Fatalf("expected duration normalised to milliseconds, got %s", line)
	}
}

func TestStructuredHandlerErrorsSink(t *testing.T) {
	out, errs := &bytes.Buffer{}, &bytes.Buffer{}
	h, done := newTestHandler(formatKV, out, errs)

	log := slog.New(h).With("component", "wizard")
	LogEvent(Background(), log, slog.LevelInfo, "info.event")
	LogEvent(Background(), log, slog.LevelWarn, "warn.event")
	LogEvent(Background(), log, slog.LevelError, "error.event")
	done()

	if got := strings.Count(out.String(), "\n"); got != 3 {
		t.Fatalf("main sink lines = %d, want 3", got)
	}
	if strings.Contains(errs.String(), "info.event") {
		t.Fatalf("errors sink must not receive INFO lines: %s", errs.String())
	}
	if !strings.Contains(errs.String(), "warn.event") || !strings.Contains(errs.String(), "error.event") {
		t.Fatalf("errors sink missing WARN/ERROR lines: %s", errs.String())
	}
}

func TestCompactRIDLeavesForeignFormat(t *testing.T) {
	if got := CompactRID("abc"); got != "abc" {
		t.Fatalf("CompactRID(abc) = %s", got)
	}
	if got := CompactRID("35:36:0"); got != "z.10.0" {
		t.Fatalf("CompactRID = %s", got)
	}
}

func TestRatioSampler(t *testing.T) {
	var s ratioSampler
	s.set(1, 3)
	var allowed int
	for i := 0; i < 9; i++ {
		if s.allow() {
			allowed++
		}
	}
	if allowed != 3 {
		t.Fatalf("allowed = %d, want 3", allowed)
	}
	s.set(0, 0)
	if !s.allow() {
		t.Fatal("zero ratio must allow everything")
	}
}
