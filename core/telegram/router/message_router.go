package router

import (
	"strings"
	"time"

	tg "github.com/m3rciful/relaybot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// MessageOptions supplies handlers used when the registry has no fallback set.
type MessageOptions struct {
	UnknownText  tele.HandlerFunc
	UnknownMedia tele.HandlerFunc
}

// MessageRoutes builds the text and media routes. Slash text that names a
// registered command or alias runs that command; everything else goes to
// the registry's fallbacks. Contacts, locations, venues and dice use the
// media fallback.
func MessageRoutes(reg *tg.Registry, opts MessageOptions) []tg.Route {
	textHandler := func(c tele.Context) error {
		start := time.Now()
		text := strings.TrimSpace(c.Text())

		if reg != nil && strings.HasPrefix(text, "/") {
			word, _, _ := strings.Cut(text, " ")
			word, _, _ = strings.Cut(word, "@")
			if key, cmd, ok := reg.LookupCommand(word); ok && cmd.Handler != nil {
				return handleWithSummary(c, "command."+normalizeHandlerName(key), start, func() error {
					return cmd.Handler(c)
				})
			}
		}

		fb := opts.UnknownText
		if reg != nil && reg.TextFallback() != nil {
			fb = reg.TextFallback()
		}
		if fb == nil {
			logHandlerSummary(c, "text", start, statusSkip, outcomeNone, nil)
			return nil
		}
		return handleWithSummary(c, "text", start, func() error { return fb(c) })
	}

	fallback := func(name string) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			fb := opts.UnknownMedia
			if reg != nil && reg.MediaFallback() != nil {
				fb = reg.MediaFallback()
			}
			if fb == nil {
				logHandlerSummary(c, name, start, statusSkip, outcomeNone, nil)
				return nil
			}
			return handleWithSummary(c, name, start, func() error { return fb(c) })
		}
	}

	routes := []tg.Route{
		{Endpoint: tele.OnText, Handler: textHandler},
		{Endpoint: tele.OnMedia, Handler: fallback("media")},
	}
	// Messages telebot dispatches outside OnMedia share the media fallback.
	for _, ep := range otherMessageEndpoints {
		routes = append(routes, tg.Route{Endpoint: ep, Handler: fallback("other")})
	}
	return routes
}

var otherMessageEndpoints = []string{tele.OnContact, tele.OnLocation, tele.OnVenue, tele.OnDice}
