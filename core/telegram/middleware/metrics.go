package middleware

import (
	"context"
	"sync/atomic"

	tghelpers "github.com/m3rciful/relaybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// sendCounters tracks what a single update produced.
type sendCounters struct {
	messages atomic.Int32
	kb       atomic.Bool
}

type countersKey struct{}

func countersFrom(ctx context.Context) *sendCounters {
	if ctx == nil {
		return nil
	}
	sc, _ := ctx.Value(countersKey{}).(*sendCounters)
	return sc
}

// CountSent records one outbound message against the update ctx belongs to.
// Contexts without counters are ignored.
func CountSent(ctx context.Context, hasKB bool) {
	sc := countersFrom(ctx)
	if sc == nil {
		return
	}
	sc.messages.Add(1)
	if hasKB {
		sc.kb.Store(true)
	}
}

// metricsContext counts messages sent through the telebot context itself.
type metricsContext struct {
	tele.Context
	counters *sendCounters
}

func hasKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

func (m metricsContext) count(err error, opts []interface{}) error {
	if err == nil {
		m.counters.messages.Add(1)
		if hasKeyboard(opts) {
			m.counters.kb.Store(true)
		}
	}
	return err
}

// Send proxies tele.Context.Send while updating counters.
func (m metricsContext) Send(what interface{}, opts ...interface{}) error {
	return m.count(m.Context.Send(what, opts...), opts)
}

// Reply proxies tele.Context.Reply while updating counters.
func (m metricsContext) Reply(what interface{}, opts ...interface{}) error {
	return m.count(m.Context.Reply(what, opts...), opts)
}

// MessageMetricsMiddleware attaches per-update send counters to the stored context.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		sc := &sendCounters{}
		ctx := context.WithValue(tghelpers.BuildContext(c), countersKey{}, sc)
		tghelpers.StoreContext(c, ctx)
		return next(metricsContext{Context: c, counters: sc})
	}
}

// GetCounters reports how many messages the update produced and whether any carried a keyboard.
func GetCounters(c tele.Context) (int, bool) {
	ctx, _ := tghelpers.ContextFrom(c)
	sc := countersFrom(ctx)
	if sc == nil {
		return 0, false
	}
	return int(sc.messages.Load()), sc.kb.Load()
}
