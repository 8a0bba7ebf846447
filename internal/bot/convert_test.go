package bot

import (
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/relaybot/internal/payout"
)

func TestToMessagePrivateText(t *testing.T) {
	m := &tele.Message{
		ID:     12,
		Sender: &tele.User{ID: 42, FirstName: "Alice", Username: "alice"},
		Chat:   &tele.Chat{ID: 42, Type: tele.ChatPrivate},
		Text:   "check this out https://youtu.be/abc123",
		Entities: []tele.MessageEntity{
			{Type: tele.EntityURL, Offset: 15, Length: 23},
		},
	}
	got := ToMessage(m)
	if got.ChatID != 42 || got.MessageID != 12 || got.ReplyToID != 0 {
		t.Fatalf("ids = %+v", got)
	}
	if got.From.ID != 42 || got.From.FullName() != "Alice" {
		t.Fatalf("from = %+v", got.From)
	}
	link, ok := payout.ExtractURL(got.Input, payout.DefaultPolicy())
	if !ok || link != "https://youtu.be/abc123" {
		t.Fatalf("ExtractURL = %q, %v", link, ok)
	}
}

func TestToMessageMedia(t *testing.T) {
	cases := []struct {
		name string
		msg  *tele.Message
		want payout.MediaKind
	}{
		{"photo", &tele.Message{Photo: &tele.Photo{File: tele.File{FileID: "p"}, Width: 1280, Height: 720}}, payout.MediaPhoto},
		{"document", &tele.Message{Document: &tele.Document{File: tele.File{FileID: "d"}}}, payout.MediaDocument},
		{"video", &tele.Message{Video: &tele.Video{File: tele.File{FileID: "v"}}}, payout.MediaVideo},
		{"animation wins over its document", &tele.Message{
			Animation: &tele.Animation{File: tele.File{FileID: "a"}},
			Document:  &tele.Document{File: tele.File{FileID: "a"}},
		}, payout.MediaAnimation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.msg.Caption = "proof"
			media, invalid := payout.ExtractMedia(ToMessage(tc.msg).Input)
			if invalid != nil {
				t.Fatalf("ExtractMedia: %v", invalid)
			}
			if media.Kind != tc.want || media.Caption != "proof" || media.FileID == "" {
				t.Fatalf("media = %+v", media)
			}
		})
	}
}

func TestToMessageAlbumAndReply(t *testing.T) {
	m := &tele.Message{
		ID:      5,
		Chat:    &tele.Chat{ID: -100500, Type: tele.ChatSuperGroup},
		Sender:  &tele.User{ID: 7, IsBot: true},
		AlbumID: "album-1",
		Photo:   &tele.Photo{File: tele.File{FileID: "p"}},
		ReplyTo: &tele.Message{ID: 3},
	}
	got := ToMessage(m)
	if got.ReplyToID != 3 || !got.From.IsBot || got.Input.AlbumID != "album-1" {
		t.Fatalf("message = %+v", got)
	}
	if _, invalid := payout.ExtractMedia(got.Input); invalid == nil || invalid.Reason != payout.ReasonAlbum {
		t.Fatalf("album not rejected: %v", invalid)
	}
}

func TestToMessageNil(t *testing.T) {
	if got := ToMessage(nil); got.ChatID != 0 || got.MessageID != 0 {
		t.Fatalf("nil message = %+v", got)
	}
}
