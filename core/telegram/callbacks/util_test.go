package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		name         string
		cb           *tele.Callback
		key, payload string
	}{
		{"nil", nil, "", ""},
		{"unique only", &tele.Callback{Data: "\fpayout_start"}, "payout_start", ""},
		{"with payload", &tele.Callback{Data: "\fpayout_start|again"}, "payout_start", "again"},
		{"payload keeps separators", &tele.Callback{Data: "\fk|a|b"}, "k", "a|b"},
		{"parsed by telebot", &tele.Callback{Unique: "payout_start", Data: "x"}, "payout_start", "x"},
		{"plain data", &tele.Callback{Data: "legacy"}, "legacy", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, payload := ParseCallbackData(tc.cb)
			if key != tc.key || payload != tc.payload {
				t.Fatalf("got (%q, %q), want (%q, %q)", key, payload, tc.key, tc.payload)
			}
		})
	}
}
