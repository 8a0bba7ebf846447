package bot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/relaybot/internal/payout"
	"github.com/m3rciful/relaybot/internal/relay"
)

// ToMessage converts a telebot message into the relay's platform-neutral form.
func ToMessage(m *tele.Message) relay.Message {
	if m == nil {
		return relay.Message{}
	}
	out := relay.Message{
		MessageID: m.ID,
		From:      toUser(m.Sender),
		Input:     toInput(m),
	}
	if m.Chat != nil {
		out.ChatID = m.Chat.ID
	}
	if m.ReplyTo != nil {
		out.ReplyToID = m.ReplyTo.ID
	}
	return out
}

func toUser(u *tele.User) relay.User {
	if u == nil {
		return relay.User{}
	}
	return relay.User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		IsBot:     u.IsBot,
	}
}

func toInput(m *tele.Message) payout.Input {
	in := payout.Input{
		Text:            m.Text,
		Entities:        toEntities(m.Entities),
		Caption:         m.Caption,
		CaptionEntities: toEntities(m.CaptionEntities),
		AlbumID:         m.AlbumID,
	}
	// telebot keeps only the largest photo size on Message.Photo.
	if m.Photo != nil && m.Photo.FileID != "" {
		in.Photo = []payout.PhotoSize{{
			FileID: m.Photo.FileID,
			Width:  m.Photo.Width,
			Height: m.Photo.Height,
		}}
	}
	switch {
	case m.Animation != nil:
		in.Animation = m.Animation.FileID
	case m.Document != nil:
		in.Document = m.Document.FileID
	}
	if m.Video != nil {
		in.Video = m.Video.FileID
	}
	return in
}

func toEntities(ents []tele.MessageEntity) []payout.Entity {
	if len(ents) == 0 {
		return nil
	}
	out := make([]payout.Entity, 0, len(ents))
	for _, e := range ents {
		out = append(out, payout.Entity{
			Type:   string(e.Type),
			Offset: e.Offset,
			Length: e.Length,
			URL:    e.URL,
		})
	}
	return out
}
