package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler renders records as single KV or JSON lines with a fixed
// key ordering, so shop events (orders, payments, flow steps) stay greppable.
type structuredHandler struct {
	cfg    handlerConfig
	attrs  []slog.Attr
	groups []string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.cfg.level != nil {
		min = h.cfg.level.Level()
	}
	return level >= min
}

// Handle renders the record and hands the line to the async writer.
func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return fmt.Errorf("logger: writer not initialized")
	}

	fields := make(map[string]any, 16)
	ts := r.Time.UTC()
	fields["ts"] = ts.Truncate(time.Millisecond).Format(timeFormatMillis)
	fields["level"] = normalizeLevel(r.Level.String())
	if h.cfg.format == formatJSON {
		fields["ts_unix_nano"] = ts.UnixNano()
	}

	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		h.appendAttr(fields, prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(fields, prefix, a)
		return true
	})
	contextFields(ctx, fields)

	h.compactRIDField(fields)
	if event, ok := asString(fields, "event"); !ok || event == "" {
		if r.Message != "" {
			fields["event"] = r.Message
		} else {
			fields["event"] = "unknown"
		}
	}
	if component, ok := asString(fields, "component"); !ok || component == "" {
		fields["component"] = "app"
	}

	normalizeEnums(fields)
	dropEmpty(fields)

	var (
		line []byte
		err  error
	)
	if h.cfg.format == formatJSON {
		line, err = encodeJSON(fields, h.cfg.keyOrder)
	} else {
		line = encodeKV(fields, h.cfg.keyOrder)
	}
	if err != nil {
		return err
	}
	if len(line) == 0 || line[len(line)-1] != '\n' {
		line = append(line, '\n')
	}
	return h.cfg.writer.Write(line)
}

// compactRIDField replaces the raw update:chat:user RID with its base36 form;
// JSON output keeps the raw value under rid_full.
func (h *structuredHandler) compactRIDField(fields map[string]any) {
	rid, ok := asString(fields, "rid")
	if !ok || rid == "" {
		return
	}
	compact := CompactRID(rid)
	if compact == "" || compact == rid {
		return
	}
	if h.cfg.format == formatJSON {
		if _, seen := fields["rid_full"]; !seen {
			fields["rid_full"] = rid
		}
	}
	fields["rid"] = compact
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// appendAttr flattens groups into dotted keys and stores the coerced value.
func (h *structuredHandler) appendAttr(fields map[string]any, prefix string, attr slog.Attr) {
	key := attr.Key
	if key == "" {
		key = prefix
	} else if prefix != "" {
		key = prefix + "." + key
	}
	if attr.Value.Kind() == slog.KindGroup {
		for _, child := range attr.Value.Group() {
			h.appendAttr(fields, key, child)
		}
		return
	}
	if key == "" {
		return
	}
	k, v, ok := coerceValue(key, attr.Value)
	if ok {
		fields[k] = v
	}
}

// coerceValue maps slog values onto the primitive set both encoders accept,
// rewriting duration keys to the *_ms convention.
func coerceValue(key string, val slog.Value) (string, any, bool) {
	switch val.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(val.String()), true
	case slog.KindBool:
		return key, val.Bool(), true
	case slog.KindInt64:
		return key, val.Int64(), true
	case slog.KindUint64:
		u := val.Uint64()
		if u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, u, true
	case slog.KindFloat64:
		return key, val.Float64(), true
	case slog.KindDuration:
		return durationKey(key), RoundMS(val.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, val.Time().UTC().Format(time.RFC3339Nano), true
	case slog.KindAny:
		switch x := val.Any().(type) {
		case error:
			return key, x.Error(), true
		case string:
			return key, strings.TrimSpace(x), true
		case time.Duration:
			return durationKey(key), RoundMS(x).Milliseconds(), true
		case fmt.Stringer:
			return key, x.String(), true
		case nil:
			return key, nil, false
		default:
			return key, fmt.Sprint(x), true
		}
	default:
		return key, val.Any(), true
	}
}

func durationKey(key string) string {
	switch {
	case key == "duration":
		return "duration_ms"
	case strings.HasSuffix(key, "_duration"):
		return strings.TrimSuffix(key, "_duration") + "_duration_ms"
	case !strings.HasSuffix(key, "_ms"):
		return key + "_ms"
	}
	return key
}

func normalizeEnums(fields map[string]any) {
	if level, ok := asString(fields, "level"); ok {
		fields["level"] = normalizeLevel(level)
	}
	if s, ok := asString(fields, "status"); ok && s != "" {
		if normalized, valid := normalizeStatus(s); valid {
			fields["status"] = normalized
		} else {
			fields["status"] = s
		}
	}
	if o, ok := asString(fields, "outcome"); ok && o != "" {
		if normalized, valid := normalizeOutcome(o); valid {
			fields["outcome"] = normalized
		} else {
			delete(fields, "outcome")
		}
	}
}

func dropEmpty(fields map[string]any) {
	for k, v := range fields {
		switch val := v.(type) {
		case string:
			if val == "" {
				delete(fields, k)
			}
		case fmt.Stringer:
			if val.String() == "" {
				delete(fields, k)
			}
		case nil:
			delete(fields, k)
		}
	}
}

func encodeJSON(fields map[string]any, order []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	wrote := false
	emit := func(k string) error {
		data, err := json.Marshal(fields[k])
		if err != nil {
			return err
		}
		if wrote {
			buf.WriteByte(',')
		}
		wrote = true
		buf.WriteString(strconv.Quote(k))
		buf.WriteByte(':')
		buf.Write(data)
		return nil
	}
	for _, k := range keyOrdering(fields, order) {
		if err := emit(k); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeKV(fields map[string]any, order []string) []byte {
	var b bytes.Buffer
	for i, key := range keyOrdering(fields, order) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(kvValue(fields[key]))
	}
	return b.Bytes()
}

// keyOrdering lists the schema keys present in fields first, then the rest
// alphabetically.
func keyOrdering(fields map[string]any, order []string) []string {
	keys := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, key := range order {
		if _, ok := fields[key]; ok {
			keys = append(keys, key)
			seen[key] = struct{}{}
		}
	}
	schema := len(keys)
	for key := range fields {
		if _, ok := seen[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys[schema:])
	return keys
}

func kvValue(val any) string {
	switch v := val.(type) {
	case string:
		return quoteIfNeeded(v)
	case bool:
		return strconv.FormatBool(v)
	case int, int64, uint64, float64:
		return fmt.Sprint(v)
	default:
		return quoteIfNeeded(fmt.Sprint(v))
	}
}

func quoteIfNeeded(s string) string {
	if strings.IndexFunc(s, func(r rune) bool {
		return r <= 32 || r == '=' || r == '"'
	}) >= 0 {
		return strconv.Quote(s)
	}
	return s
}

func asString(fields map[string]any, key string) (string, bool) {
	v, ok := fields[key]
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case fmt.Stringer:
		return val.String(), true
	default:
		return fmt.Sprint(val), true
	}
}

// contextFields copies correlation values carried on the context, never
// overriding explicit attributes.
func contextFields(ctx context.Context, fields map[string]any) {
	if ctx == nil {
		return
	}
	put := func(key string, val any) {
		if _, ok := fields[key]; !ok {
			fields[key] = val
		}
	}
	if rid := RIDFrom(ctx); rid != "" {
		put("rid", rid)
	}
	if flow := FlowFrom(ctx); flow != "" {
		put("flow", flow)
	}
	if state := StateFrom(ctx); state != "" {
		put("state", state)
	}
	if uid := UserIDFrom(ctx); uid != 0 {
		put("user_id", uid)
	}
	if id := UpdateIDFrom(ctx); id != 0 {
		put("update_id", id)
	}
	if cid := ChatIDFrom(ctx); cid != 0 {
		put("chat_id", cid)
	}
	if handler := HandlerFrom(ctx); handler != "" {
		put("handler", handler)
	}
}
