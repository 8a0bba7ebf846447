package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/relaybot/core/telegram/keyboard"
	"github.com/m3rciful/relaybot/core/telegram/middleware"
	"github.com/m3rciful/relaybot/core/telegram/sender"
	"github.com/m3rciful/relaybot/internal/payout"
	"github.com/m3rciful/relaybot/internal/relay"
)

// CallbackPayoutStart is the unique key of the button that opens a payout request.
const CallbackPayoutStart = "payout_start"

// API is the subset of *tele.Bot the messenger uses.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Copy(to tele.Recipient, msg tele.Editable, opts ...interface{}) (*tele.Message, error)
	Raw(method string, payload interface{}) ([]byte, error)
}

// Messenger implements relay.Messenger on top of telebot. Every call goes
// through the dispatcher so transient API failures are retried.
type Messenger struct {
	api   API
	disp  *sender.Dispatcher
	texts relay.Texts
}

var _ relay.Messenger = (*Messenger)(nil)

// NewMessenger builds a messenger. A nil dispatcher sends without retries.
func NewMessenger(api API, disp *sender.Dispatcher, texts relay.Texts) *Messenger {
	return &Messenger{api: api, disp: disp, texts: texts}
}

func (m *Messenger) do(ctx context.Context, action, endpoint string, run func() error) error {
	if m.disp == nil {
		return run()
	}
	return m.disp.Do(ctx, action, endpoint, run)
}

func (m *Messenger) markup(kb relay.Keyboard) *tele.ReplyMarkup {
	switch kb {
	case relay.KeyboardTerms:
		return keyboard.InlineButtons(keyboard.InlineBtn{Text: m.texts.ButtonStart, Unique: CallbackPayoutStart})
	case relay.KeyboardAgain:
		return keyboard.InlineButtons(keyboard.InlineBtn{Text: m.texts.ButtonAgain, Unique: CallbackPayoutStart})
	}
	return nil
}

// SendText sends an HTML message with the selected keyboard.
func (m *Messenger) SendText(ctx context.Context, chatID int64, text string, kb relay.Keyboard) (int, error) {
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: m.markup(kb)}
	var sent *tele.Message
	err := m.do(ctx, "send.text", "sendMessage", func() error {
		var err error
		sent, err = m.api.Send(tele.ChatID(chatID), text, opts)
		return err
	})
	if err != nil {
		return 0, err
	}
	middleware.CountSent(ctx, opts.ReplyMarkup != nil)
	return sent.ID, nil
}

// SendMedia re-sends a stored attachment by file id with an HTML caption.
func (m *Messenger) SendMedia(ctx context.Context, chatID int64, media payout.Media) (int, error) {
	what, endpoint, err := mediaSendable(media)
	if err != nil {
		return 0, err
	}
	var sent *tele.Message
	err = m.do(ctx, "send.media", endpoint, func() error {
		var err error
		sent, err = m.api.Send(tele.ChatID(chatID), what, &tele.SendOptions{ParseMode: tele.ModeHTML})
		return err
	})
	if err != nil {
		return 0, err
	}
	middleware.CountSent(ctx, false)
	return sent.ID, nil
}

func mediaSendable(media payout.Media) (tele.Sendable, string, error) {
	file := tele.File{FileID: media.FileID}
	switch media.Kind {
	case payout.MediaPhoto:
		return &tele.Photo{File: file, Caption: media.Caption}, "sendPhoto", nil
	case payout.MediaDocument:
		return &tele.Document{File: file, Caption: media.Caption}, "sendDocument", nil
	case payout.MediaVideo:
		return &tele.Video{File: file, Caption: media.Caption}, "sendVideo", nil
	case payout.MediaAnimation:
		return &tele.Animation{File: file, Caption: media.Caption}, "sendAnimation", nil
	}
	return nil, "", fmt.Errorf("unsupported media kind %q", media.Kind)
}

// Copy copies a message between chats. A non-empty caption replaces the
// original one, which telebot's Copy cannot do, so that case uses copyMessage directly.
func (m *Messenger) Copy(ctx context.Context, toChatID, fromChatID int64, messageID int, caption string) (int, error) {
	var id int
	err := m.do(ctx, "copy", "copyMessage", func() error {
		var err error
		if caption == "" {
			id, err = m.copyPlain(toChatID, fromChatID, messageID)
		} else {
			id, err = m.copyWithCaption(toChatID, fromChatID, messageID, caption)
		}
		return err
	})
	if err != nil {
		return 0, err
	}
	middleware.CountSent(ctx, false)
	return id, nil
}

func (m *Messenger) copyPlain(toChatID, fromChatID int64, messageID int) (int, error) {
	src := tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: fromChatID}
	sent, err := m.api.Copy(tele.ChatID(toChatID), src)
	if err != nil {
		return 0, err
	}
	return sent.ID, nil
}

func (m *Messenger) copyWithCaption(toChatID, fromChatID int64, messageID int, caption string) (int, error) {
	data, err := m.api.Raw("copyMessage", map[string]string{
		"chat_id":      strconv.FormatInt(toChatID, 10),
		"from_chat_id": strconv.FormatInt(fromChatID, 10),
		"message_id":   strconv.Itoa(messageID),
		"caption":      caption,
		"parse_mode":   string(tele.ModeHTML),
	})
	if err != nil {
		return 0, err
	}
	var resp struct {
		Result struct {
			MessageID int `json:"message_id"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, fmt.Errorf("decode copyMessage: %w", err)
	}
	return resp.Result.MessageID, nil
}
