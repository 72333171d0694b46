// Package callbacks decodes telebot's "\f<unique>|<payload>" callback data.
// Shop callbacks carry entity ids (category, product, order) in the payload.
package callbacks

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseCallbackData splits raw callback data into its unique key and payload.
// The payload may be empty; a nil callback yields two empty strings.
func ParseCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	unique, payload, _ := strings.Cut(raw, "|")
	return strings.TrimSpace(unique), payload
}

// CallbackPayload extracts the payload of the current update's callback.
// cb.Unique is unreliable under the generic OnCallback endpoint, so the
// payload always comes from Data.
func CallbackPayload(c tele.Context) string {
	_, payload := ParseCallbackData(c.Callback())
	return payload
}

// PayloadInt64 parses the payload as an entity id.
func PayloadInt64(c tele.Context) (int64, error) {
	return strconv.ParseInt(CallbackPayload(c), 10, 64)
}
