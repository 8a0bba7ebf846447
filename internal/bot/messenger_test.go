package bot

import (
	"context"
	"errors"
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/relaybot/internal/payout"
	"github.com/m3rciful/relaybot/internal/relay"
)

type call struct {
	method string
	to     tele.Recipient
	what   interface{}
	opts   []interface{}
	params map[string]string
}

type fakeAPI struct {
	calls  []call
	nextID int
	err    error
}

func (f *fakeAPI) id() int {
	f.nextID++
	return 500 + f.nextID
}

func (f *fakeAPI) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	f.calls = append(f.calls, call{method: "send", to: to, what: what, opts: opts})
	if f.err != nil {
		return nil, f.err
	}
	return &tele.Message{ID: f.id()}, nil
}

func (f *fakeAPI) Copy(to tele.Recipient, msg tele.Editable, opts ...interface{}) (*tele.Message, error) {
	f.calls = append(f.calls, call{method: "copy", to: to, what: msg, opts: opts})
	if f.err != nil {
		return nil, f.err
	}
	return &tele.Message{ID: f.id()}, nil
}

func (f *fakeAPI) Raw(method string, payload interface{}) ([]byte, error) {
	params, _ := payload.(map[string]string)
	f.calls = append(f.calls, call{method: method, params: params})
	if f.err != nil {
		return nil, f.err
	}
	return []byte(`{"ok":true,"result":{"message_id":777}}`), nil
}

func TestSendTextKeyboards(t *testing.T) {
	api := &fakeAPI{}
	texts := relay.DefaultTexts()
	m := NewMessenger(api, nil, texts)

	id, err := m.SendText(context.Background(), 42, "<b>terms</b>", relay.KeyboardTerms)
	if err != nil || id != 501 {
		t.Fatalf("SendText = %d, %v", id, err)
	}
	opts := api.calls[0].opts[0].(*tele.SendOptions)
	if opts.ParseMode != tele.ModeHTML {
		t.Fatalf("parse mode = %q", opts.ParseMode)
	}
	btn := opts.ReplyMarkup.InlineKeyboard[0][0]
	if btn.Unique != CallbackPayoutStart || btn.Text != texts.ButtonStart {
		t.Fatalf("button = %+v", btn)
	}
	if api.calls[0].to.Recipient() != "42" {
		t.Fatalf("recipient = %q", api.calls[0].to.Recipient())
	}

	if _, err := m.SendText(context.Background(), 42, "again", relay.KeyboardAgain); err != nil {
		t.Fatal(err)
	}
	if got := api.calls[1].opts[0].(*tele.SendOptions).ReplyMarkup.InlineKeyboard[0][0].Text; got != texts.ButtonAgain {
		t.Fatalf("again button = %q", got)
	}

	if _, err := m.SendText(context.Background(), 42, "plain", relay.KeyboardNone); err != nil {
		t.Fatal(err)
	}
	if api.calls[2].opts[0].(*tele.SendOptions).ReplyMarkup != nil {
		t.Fatal("plain text carries a keyboard")
	}
}

func TestSendMediaKinds(t *testing.T) {
	api := &fakeAPI{}
	m := NewMessenger(api, nil, relay.DefaultTexts())
	cases := []struct {
		kind payout.MediaKind
		ok   func(interface{}) bool
	}{
		{payout.MediaPhoto, func(w interface{}) bool { p, ok := w.(*tele.Photo); return ok && p.FileID == "f" && p.Caption == "c" }},
		{payout.MediaDocument, func(w interface{}) bool { _, ok := w.(*tele.Document); return ok }},
		{payout.MediaVideo, func(w interface{}) bool { _, ok := w.(*tele.Video); return ok }},
		{payout.MediaAnimation, func(w interface{}) bool { _, ok := w.(*tele.Animation); return ok }},
	}
	for i, tc := range cases {
		if _, err := m.SendMedia(context.Background(), -100, payout.Media{Kind: tc.kind, FileID: "f", Caption: "c"}); err != nil {
			t.Fatalf("%s: %v", tc.kind, err)
		}
		if !tc.ok(api.calls[i].what) {
			t.Fatalf("%s: sent %T", tc.kind, api.calls[i].what)
		}
	}
	if _, err := m.SendMedia(context.Background(), -100, payout.Media{Kind: "sticker"}); err == nil {
		t.Fatal("unsupported kind accepted")
	}
}

func TestCopyPlainAndCaptioned(t *testing.T) {
	api := &fakeAPI{}
	m := NewMessenger(api, nil, relay.DefaultTexts())

	id, err := m.Copy(context.Background(), -100, 42, 12, "")
	if err != nil || id != 501 {
		t.Fatalf("plain copy = %d, %v", id, err)
	}
	src := api.calls[0].what.(tele.StoredMessage)
	if src.ChatID != 42 || src.MessageID != "12" {
		t.Fatalf("copy source = %+v", src)
	}

	id, err = m.Copy(context.Background(), 42, -100, 90, "Reply from admin: Bob\n\nhi")
	if err != nil || id != 777 {
		t.Fatalf("captioned copy = %d, %v", id, err)
	}
	p := api.calls[1].params
	if api.calls[1].method != "copyMessage" || p["chat_id"] != "42" || p["from_chat_id"] != "-100" ||
		p["message_id"] != "90" || p["parse_mode"] != "HTML" || p["caption"] == "" {
		t.Fatalf("copyMessage params = %v", p)
	}
}

func TestSendErrorsPropagate(t *testing.T) {
	boom := errors.New("telegram: Forbidden: bot was blocked by the user (403)")
	m := NewMessenger(&fakeAPI{err: boom}, nil, relay.DefaultTexts())
	if _, err := m.SendText(context.Background(), 1, "x", relay.KeyboardNone); !errors.Is(err, boom) {
		t.Fatalf("SendText err = %v", err)
	}
	if _, err := m.Copy(context.Background(), 1, 2, 3, "cap"); !errors.Is(err, boom) {
		t.Fatalf("Copy err = %v", err)
	}
}
