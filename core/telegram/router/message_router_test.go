package router

import (
	"testing"

	tg "github.com/m3rciful/relaybot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

func TestMessageRoutesReachFallbacks(t *testing.T) {
	cases := []struct {
		name      string
		msg       tele.Message
		wantText  int
		wantMedia int
	}{
		{"text", tele.Message{Text: "hello"}, 1, 0},
		{"photo", tele.Message{Photo: &tele.Photo{File: tele.File{FileID: "p"}}}, 0, 1},
		{"document", tele.Message{Document: &tele.Document{File: tele.File{FileID: "d"}}}, 0, 1},
		{"contact", tele.Message{Contact: &tele.Contact{PhoneNumber: "+100", FirstName: "A"}}, 0, 1},
		{"location", tele.Message{Location: &tele.Location{Lat: 1, Lng: 2}}, 0, 1},
		{"venue", tele.Message{Venue: &tele.Venue{Location: tele.Location{Lat: 1, Lng: 2}, Title: "Cafe"}}, 0, 1},
		{"dice", tele.Message{Dice: &tele.Dice{Type: "🎲", Value: 3}}, 0, 1},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := tele.NewBot(tele.Settings{Offline: true, Synchronous: true})
			if err != nil {
				t.Fatalf("NewBot: %v", err)
			}
			reg := tg.NewRegistry()
			var texts, media int
			reg.SetTextFallback(func(tele.Context) error { texts++; return nil })
			reg.SetMediaFallback(func(tele.Context) error { media++; return nil })
			for _, r := range MessageRoutes(reg, MessageOptions{}) {
				b.Handle(r.Endpoint, r.Handler)
			}

			msg := tc.msg
			msg.ID = i + 1
			msg.Sender = &tele.User{ID: 42}
			msg.Chat = &tele.Chat{ID: 42, Type: tele.ChatPrivate}
			b.ProcessUpdate(tele.Update{ID: i + 1, Message: &msg})

			if texts != tc.wantText || media != tc.wantMedia {
				t.Fatalf("text=%d media=%d, want %d/%d", texts, media, tc.wantText, tc.wantMedia)
			}
		})
	}
}
