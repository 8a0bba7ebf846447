package bot

import (
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/relaybot/core/telegram"
	"github.com/m3rciful/relaybot/core/telegram/commands"
	tghelpers "github.com/m3rciful/relaybot/core/telegram/helpers"
	"github.com/m3rciful/relaybot/internal/relay"
)

// Handlers binds telebot updates to the relay service.
type Handlers struct {
	svc *relay.Service
}

// NewHandlers wraps the service.
func NewHandlers(svc *relay.Service) *Handlers {
	return &Handlers{svc: svc}
}

// Register adds the bot's commands, callbacks and message fallbacks to reg.
func (h *Handlers) Register(reg *tg.Registry) error {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.start,
		Description: "Show the terms and the payout button",
		PrivateOnly: true,
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     h.help,
		Description: "How to submit a payout request",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     h.cancel,
		Description: "Cancel the current payout request",
		PrivateOnly: true,
	})
	reg.RegisterCommand("/where", commands.Command{
		Handler:     h.where,
		Description: "Show this chat's id",
		Hidden:      true,
	})
	if err := reg.RegisterCallback(CallbackPayoutStart, h.payoutStart); err != nil {
		return err
	}
	reg.SetTextFallback(h.message)
	reg.SetMediaFallback(h.message)
	return nil
}

func (h *Handlers) start(c tele.Context) error {
	return h.svc.Terms(tghelpers.BuildContext(c), c.Chat().ID)
}

func (h *Handlers) help(c tele.Context) error {
	return h.svc.Help(tghelpers.BuildContext(c), c.Chat().ID)
}

func (h *Handlers) cancel(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	return h.svc.Cancel(tghelpers.BuildContext(c), c.Sender().ID, c.Chat().ID)
}

func (h *Handlers) where(c tele.Context) error {
	return h.svc.Where(tghelpers.BuildContext(c), c.Chat().ID)
}

func (h *Handlers) payoutStart(c tele.Context) error {
	_ = c.Respond()
	chat, user := c.Chat(), c.Sender()
	if chat == nil || user == nil || chat.Type != tele.ChatPrivate {
		return nil
	}
	return h.svc.BeginPayout(tghelpers.BuildContext(c), user.ID, chat.ID)
}

// message routes a non-command message: the staff chat feeds replies back to
// users, private chats feed the payout flow or the verbatim relay, and
// every other chat is ignored.
func (h *Handlers) message(c tele.Context) error {
	chat := c.Chat()
	if chat == nil || c.Message() == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	switch {
	case h.svc.IsStaffChat(chat.ID):
		return h.svc.HandleStaff(ctx, ToMessage(c.Message()))
	case chat.Type == tele.ChatPrivate && c.Sender() != nil:
		return h.svc.HandlePrivate(ctx, ToMessage(c.Message()))
	}
	return nil
}
