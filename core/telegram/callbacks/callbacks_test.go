package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		unique  string
		payload string
	}{
		{"unique only", "\fshop_cats", "shop_cats", ""},
		{"unique with payload", "\fshop_prod|42", "shop_prod", "42"},
		{"payload with separator", "\fadmin_skip|a|b", "admin_skip", "a|b"},
		{"no prefix", "close_order|7", "close_order", "7"},
		{"empty", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unique, payload := ParseCallbackData(&tele.Callback{Data: tt.data})
			if unique != tt.unique || payload != tt.payload {
				t.Fatalf("got (%q, %q), want (%q, %q)", unique, payload, tt.unique, tt.payload)
			}
		})
	}
}

func TestParseCallbackDataNil(t *testing.T) {
	unique, payload := ParseCallbackData(nil)
	if unique != "" || payload != "" {
		t.Fatalf("got (%q, %q), want empty", unique, payload)
	}
}
