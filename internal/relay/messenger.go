package relay

import (
	"context"

	"github.com/m3rciful/relaybot/internal/payout"
)

// Keyboard selects the reply markup attached to an outgoing text.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	// KeyboardTerms offers the button that opens a payout request.
	KeyboardTerms
	// KeyboardAgain offers the same button after a request was submitted.
	KeyboardAgain
)

// Messenger is the outbound side of the messaging platform.
// Texts and captions are HTML; every call returns the id of the message it created.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, kb Keyboard) (int, error)
	SendMedia(ctx context.Context, chatID int64, media payout.Media) (int, error)
	// Copy re-posts a message without the forward header. A non-empty caption replaces
	// the original caption of a media message.
	Copy(ctx context.Context, toChatID, fromChatID int64, messageID int, caption string) (int, error)
}
