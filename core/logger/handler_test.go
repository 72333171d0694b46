package logger

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"log/slog"
)

// emitLine renders one event through a fresh structured handler and returns
// the written line.
func emitLine(t *testing.T, format logFormat, component string, ctx context.Context, level slog.Level, event string, attrs ...slog.Attr) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})

	log := slog.New(handler).With("component", component)
	LogEvent(ctx, log, level, event, attrs...)

	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected a log line")
	}
	return line
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	ctx := WithRID(Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	line := emitLine(t, formatKV, "app", ctx, slog.LevelInfo, "test.event",
		slog.String("status", "ok"),
		slog.String("cause", "unit"),
	)

	tokens := strings.Split(line, " ")
	want := []string{"ts=", "level=INFO", "component=app", "event=test.event", "status=ok", "rid=rid-123"}
	if len(tokens) < len(want) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range want {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	ctx := WithRID(Background(), "rid-json")
	ctx = WithUpdateMeta(ctx, 11, 22, 33)

	line := emitLine(t, formatJSON, "service.payments", ctx, slog.LevelError, "payment.failed",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
		slog.String("err_code", "PAYMENT_FAIL"),
	)
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}

	pos := -1
	for _, pref := range []string{
		`{"ts":`,
		`"level":"ERROR"`,
		`"component":"service.payments"`,
		`"event":"payment.failed"`,
		`"status":"fail"`,
		`"rid":"rid-json"`,
	} {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	rawRID := "123:456:789"
	ctx := WithRID(Background(), rawRID)

	line := emitLine(t, formatKV, "app", ctx, slog.LevelInfo, "rid.test",
		slog.String("status", "ok"),
	)
	if !strings.Contains(line, "rid="+CompactRID(rawRID)) {
		t.Fatalf("expected compact rid, got %s", line)
	}
	if strings.Contains(line, "rid_full=") {
		t.Fatalf("rid_full should be omitted in KV output, got %s", line)
	}
}

func TestStructuredHandlerFlowStateFromContext(t *testing.T) {
	ctx := WithFlow(Background(), "admin.add_product", "product_name")

	line := emitLine(t, formatKV, "tg", ctx, slog.LevelInfo, "fsm.step",
		slog.String("status", "ok"),
	)
	if !strings.Contains(line, "flow=admin.add_product") {
		t.Fatalf("expected flow in output, got %s", line)
	}
	if !strings.Contains(line, "state=product_name") {
		t.Fatalf("expected state in output, got %s", line)
	}
}

func TestStructuredHandlerCompactRIDJSON(t *testing.T) {
	rawRID := "12:34:56"
	ctx := WithRID(Background(), rawRID)

	line := emitLine(t, formatJSON, "app", ctx, slog.LevelInfo, "rid.test",
		slog.String("status", "ok"),
	)
	if !strings.Contains(line, `"rid":"`+CompactRID(rawRID)+`"`) {
		t.Fatalf("expected compact rid in JSON, got %s", line)
	}
	if !strings.Contains(line, `"rid_full":"`+rawRID+`"`) {
		t.Fatalf("expected rid_full in JSON output, got %s", line)
	}
	if !strings.Contains(line, `"ts_unix_nano"`) {
		t.Fatalf("expected ts_unix_nano in JSON output, got %s", line)
	}
}
