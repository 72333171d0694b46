package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
)

type contextKey string

const (
	ctxRID      contextKey = "rid"
	ctxUpdateID contextKey = "update_id"
	ctxUserID   contextKey = "user_id"
	ctxChatID   contextKey = "chat_id"
	ctxLogger   contextKey = "logger"
	ctxHandler  contextKey = "handler"
	ctxFlow     contextKey = "flow"
	ctxState    contextKey = "state"
)

func ensure(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func ctxString(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(key).(string)
	return s
}

func ctxInt64(ctx context.Context, key contextKey) int64 {
	if ctx == nil {
		return 0
	}
	switch id := ctx.Value(key).(type) {
	case int64:
		return id
	case int:
		return int64(id)
	}
	return 0
}

// WithLogger stores a logger in the context for downstream layers.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	ctx = ensure(ctx)
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxLogger, log)
}

// FromContext returns the context logger, falling back to the base logger.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxLogger).(*slog.Logger); ok {
			return l
		}
	}
	return L
}

// WithRID attaches the update correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ensure(ctx), ctxRID, rid)
}

// RIDFrom reads the correlation id, empty when absent.
func RIDFrom(ctx context.Context) string {
	return ctxString(ctx, ctxRID)
}

// WithUpdateMeta attaches the identifiers every shop log line should carry.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	ctx = ensure(ctx)
	ctx = context.WithValue(ctx, ctxUpdateID, updateID)
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxChatID, chatID)
}

// WithHandler records which handler owns the rest of this update.
func WithHandler(ctx context.Context, handler string) context.Context {
	ctx = ensure(ctx)
	if handler == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxHandler, handler)
}

// HandlerFrom reads the owning handler name, empty when absent.
func HandlerFrom(ctx context.Context) string {
	return ctxString(ctx, ctxHandler)
}

// WithFlow tags the context with the conversation flow and state so a stuck
// dialog (checkout, product entry) can be diagnosed from any log line.
func WithFlow(ctx context.Context, flow, state string) context.Context {
	ctx = ensure(ctx)
	if flow != "" {
		ctx = context.WithValue(ctx, ctxFlow, flow)
	}
	if state != "" {
		ctx = context.WithValue(ctx, ctxState, state)
	}
	return ctx
}

// FlowFrom reads the conversation flow tag.
func FlowFrom(ctx context.Context) string {
	return ctxString(ctx, ctxFlow)
}

// StateFrom reads the conversation state tag.
func StateFrom(ctx context.Context) string {
	return ctxString(ctx, ctxState)
}

// UserIDFrom reads the Telegram user id.
func UserIDFrom(ctx context.Context) int64 {
	return ctxInt64(ctx, ctxUserID)
}

// ChatIDFrom reads the chat id.
func ChatIDFrom(ctx context.Context) int64 {
	return ctxInt64(ctx, ctxChatID)
}

// UpdateIDFrom reads the update id.
func UpdateIDFrom(ctx context.Context) int {
	if ctx == nil {
		return 0
	}
	switch id := ctx.Value(ctxUpdateID).(type) {
	case int:
		return id
	case int64:
		return int(id)
	}
	return 0
}

// Sanitize strips control and format runes (tab and newline excepted) so
// user-supplied text cannot mangle a log line.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r == 0x7F, unicode.IsControl(r), unicode.Is(unicode.Cf, r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SanitizeLimit sanitizes and caps the result at max runes.
func SanitizeLimit(s string, max int) string {
	if max <= 0 {
		return ""
	}
	cleaned := Sanitize(s)
	runes := []rune(cleaned)
	if len(runes) <= max {
		return cleaned
	}
	return string(runes[:max])
}

// BuildRID forms the raw correlation id as updateID:chatID:userID.
func BuildRID(updateID int, chatID, userID int64) string {
	return fmt.Sprintf("%d:%d:%d", updateID, chatID, userID)
}

// CompactRID re-encodes each RID segment in base36 for shorter log lines.
// Anything that is not three numeric segments passes through unchanged.
func CompactRID(rid string) string {
	rid = strings.TrimSpace(rid)
	if rid == "" {
		return ""
	}
	parts := strings.Split(rid, ":")
	if len(parts) != 3 {
		return rid
	}
	compact := make([]string, 0, 3)
	for _, part := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return rid
		}
		compact = append(compact, strings.ToLower(strconv.FormatInt(n, 36)))
	}
	return strings.Join(compact, ".")
}
