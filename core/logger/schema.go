package logger

import "strings"

const (
	// LevelDebug is the rendered debug severity name.
	LevelDebug = "DEBUG"
	// LevelInfo is the rendered info severity name.
	LevelInfo = "INFO"
	// LevelWarn is the rendered warning severity name.
	LevelWarn = "WARN"
	// LevelError is the rendered error severity name.
	LevelError = "ERROR"
	// LevelFatal is the rendered fatal severity name.
	LevelFatal = "FATAL"
)

var allowedLevels = map[string]string{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
	"fatal":   LevelFatal,
}

// status covers how an operation ended; outcome is the stricter subset the
// handler summary line uses.
var (
	allowedStatus = map[string]string{
		"ok":           "ok",
		"fail":         "fail",
		"skip":         "skip",
		"retry":        "retry",
		"rate_limited": "rate_limited",
		"cancelled":    "cancelled",
	}
	allowedOutcome = map[string]string{
		"ok":           "ok",
		"fail":         "fail",
		"cancelled":    "cancelled",
		"rate_limited": "rate_limited",
	}
)

func normalizeLevel(level string) string {
	if level == "" {
		return LevelInfo
	}
	if mapped, ok := allowedLevels[strings.ToLower(level)]; ok {
		return mapped
	}
	return strings.ToUpper(level)
}

func normalizeStatus(status string) (string, bool) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return "", false
	}
	if mapped, ok := allowedStatus[status]; ok {
		return mapped, true
	}
	return status, false
}

func normalizeOutcome(outcome string) (string, bool) {
	outcome = strings.ToLower(strings.TrimSpace(outcome))
	if outcome == "" {
		return "", false
	}
	val, ok := allowedOutcome[outcome]
	return val, ok
}

// defaultKeyOrder fixes the column order of every log line: correlation
// first, then the shop's domain identifiers, then error details. Keys not
// listed here render after these, alphabetically.
var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"flow",
	"state",
	"operation",
	"op",
	"cb_key",
	"outcome",
	"duration_ms",
	"messages",
	"kb",
	"count",
	"payload",
	"lang",
	"username",
	"mode",
	"listen",
	"public_url",
	"http_code",
	"db",
	"host",
	"port",
	"category_id",
	"product_id",
	"order_id",
	"payment_id",
	"section",
	"channel",
	"amount",
	"currency",
	"purged",
	"err",
	"err_code",
	"cause",
	"retryable",
	"attempts",
	"backoff_ms",
	"rate_limited",
	"collapsed",
	"repeats",
	"pending_count",
}
