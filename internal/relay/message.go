package relay

import (
	"strconv"
	"strings"

	"github.com/m3rciful/relaybot/internal/payout"
)

// User is the sender of an inbound message.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	IsBot     bool
}

// FullName joins first and last name, falling back to the username or the id.
func (u User) FullName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "id" + strconv.FormatInt(u.ID, 10)
}

// Message is an inbound message in platform-neutral form.
type Message struct {
	ChatID    int64
	MessageID int
	From      User
	Input     payout.Input
	// ReplyToID is the id of the message this one replies to, 0 when it is not a reply.
	ReplyToID int
}
