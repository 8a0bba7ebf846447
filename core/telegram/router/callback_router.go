package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/relaybot/core/telegram"
	"github.com/m3rciful/relaybot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute routes every callback query through the registry by its unique key.
// Handlers answer the query themselves.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}
		key := callbacks.CallbackKey(c)
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		if reg != nil {
			if h, ok := reg.GetCallback(key); ok && h != nil {
				return handleWithSummary(c, name, start, func() error { return h(c) }, extras...)
			}
		}

		var fallback tele.HandlerFunc
		if reg != nil {
			fallback = reg.CallbackNotFound()
		}
		if fallback == nil {
			fallback = opts.NotFound
		}
		extras = append(extras, slog.String("reason", "not_found"))
		if fallback == nil {
			logHandlerSummary(c, name, start, statusSkip, outcomeNone, nil, extras...)
			return c.Respond()
		}
		return handleWithSummary(c, name, start, func() error { return fallback(c) }, extras...)
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
