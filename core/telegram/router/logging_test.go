package router

import (
	"errors"
	"fmt"
	"testing"
)

type codedError struct{ code string }

func (e codedError) Error() string { return "coded" }
func (e codedError) Code() string  { return e.code }

type dispatchError struct{}

func (*dispatchError) Error() string { return "dispatch" }

func TestDeriveErrorCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"code", codedError{code: "staff chat missing"}, "STAFF_CHAT_MISSING"},
		{"wrapped code", fmt.Errorf("reply: %w", codedError{code: "flood"}), "FLOOD"},
		{"empty code falls back to type", codedError{}, "CODEDERROR"},
		{"pointer type", &dispatchError{}, "DISPATCHERROR"},
		{"stdlib", errors.New("x"), "ERRORSTRING"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := deriveErrorCode(tc.err); got != tc.want {
				t.Fatalf("deriveErrorCode = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeHandlerName(t *testing.T) {
	cases := map[string]string{
		"":              "unknown",
		"/start":        "start",
		" Payout Start": "payout_start",
		"payout_start":  "payout_start",
	}
	for in, want := range cases {
		if got := normalizeHandlerName(in); got != want {
			t.Errorf("normalizeHandlerName(%q) = %q, want %q", in, got, want)
		}
	}
}
