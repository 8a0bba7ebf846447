package relay

import (
	"fmt"
	"strings"

	"github.com/m3rciful/relaybot/core/telegram/format"
	"github.com/m3rciful/relaybot/internal/payout"
)

// Texts holds every user-facing and staff-facing string. All values are HTML.
type Texts struct {
	Terms       string
	Help        string
	ButtonStart string
	ButtonAgain string

	LinkPrompt       string
	ProofPrompt      string
	RequisitesPrompt string
	Submitted        string

	NoURL              string
	Album              string
	NoAttachment       string
	RequisitesTooShort string

	Cancelled       string
	NothingToCancel string
	NotConfigured   string
	DispatchFailed  string
	InternalError   string
	RateLimited     string
	WhereFormat     string

	RequestHeaderFormat string
	MessageHeaderFormat string
	ReplyPrefixFormat   string
	ProofCaptions       map[payout.MediaKind]string
}

// DefaultTexts returns the built-in English texts.
func DefaultTexts() Texts {
	return Texts{
		Terms: "<b>To receive a reward:</b>\n\n" +
			"1) Send a link to your video\n" +
			"2) Attach proof that the account is yours (a screenshot of the video analytics works best)\n" +
			"3) Send the payout details\n\n" +
			"<b>Payouts</b> are made in <u>cryptocurrency</u> only (USDT).\n\n" +
			"<blockquote expandable><b>Important</b>\n\n" +
			"1) One request = one video and one proof screenshot.\n" +
			"2) Videos with third-party ads or banners are not accepted.\n" +
			"3) Moderators may decline a payout if the data or the proof is incorrect.</blockquote>\n\n" +
			"⬇️ When you are ready, press «Request payout» and follow the steps (1/3, 2/3, 3/3).",
		Help:        "A request takes one link and one screenshot: 1) link, 2) screenshot, 3) payout details. /cancel aborts.",
		ButtonStart: "💸 Request payout",
		ButtonAgain: "➕ Submit another payout",

		LinkPrompt: "Step <b>1/3</b>: send <b>one link</b> to the video.\n" +
			"Example: https://youtu.be/..., https://tiktok.com/@.../video/...",
		ProofPrompt: "Link accepted ✅\n\n" +
			"Step <b>2/3</b>: send <b>one</b> screenshot or file as proof (photo, document, PDF, video). " +
			"Albums are not accepted.",
		RequisitesPrompt: "Proof received ✅\n\n" +
			"Step <b>3/3</b>: send the payout details (USDT wallet or a contact). " +
			"Text or a file with a caption both work.",
		Submitted: "✅ The request was sent to moderation.\n\n" +
			"One request = one video and one proof screenshot.\n" +
			"If you have more videos, submit a new request.",

		NoURL:              "This does not look like a link. Send a valid URL (http/https) to your video.",
		Album:              "Please send <b>one</b> screenshot or file, not an album.",
		NoAttachment:       "Attach a screenshot or a file (photo, document, video or GIF).",
		RequisitesTooShort: "The payout details look too short. Send the full wallet address or contact.",

		Cancelled:       "Okay, the request was cancelled. Press «Request payout» again when you are ready.",
		NothingToCancel: "There is nothing to cancel.",
		NotConfigured:   "Message received. (Note for admins: the support group is not configured yet.)",
		DispatchFailed:  "Could not deliver the request to moderation. Please send the payout details again in a minute.",
		InternalError:   "Something went wrong. Please try again later.",
		RateLimited:     "Too many messages at once. Please wait a moment.",
		WhereFormat:     "This chat id: <code>%d</code>",

		RequestHeaderFormat: "🧾 <b>Payout request #%s</b> from %s\n🔗 Link: %s\n💼 Details: %s",
		MessageHeaderFormat: "🆕 Message from %s",
		ReplyPrefixFormat:   "Reply from admin: %s\n\n",
		ProofCaptions: map[payout.MediaKind]string{
			payout.MediaPhoto:     "Proof: photo",
			payout.MediaDocument:  "Proof: document",
			payout.MediaVideo:     "Proof: video",
			payout.MediaAnimation: "Proof: GIF",
		},
	}
}

// StagePrompt returns the prompt for the stage that is now pending.
func (t Texts) StagePrompt(stage payout.Stage) string {
	switch stage {
	case payout.StageLink:
		return t.LinkPrompt
	case payout.StageProof:
		return t.ProofPrompt
	case payout.StageRequisites:
		return t.RequisitesPrompt
	}
	return t.InternalError
}

// Rejection returns the re-prompt for a failed validation.
func (t Texts) Rejection(reason payout.Reason) string {
	switch reason {
	case payout.ReasonNoURL:
		return t.NoURL
	case payout.ReasonAlbum:
		return t.Album
	case payout.ReasonNoAttachment:
		return t.NoAttachment
	case payout.ReasonRequisitesTooShort:
		return t.RequisitesTooShort
	}
	return t.InternalError
}

// Where formats the chat id reply.
func (t Texts) Where(chatID int64) string {
	return fmt.Sprintf(t.WhereFormat, chatID)
}

// RequestHeader renders the staff-chat summary of a completed request.
func (t Texts) RequestHeader(req payout.Request, from User) string {
	return fmt.Sprintf(t.RequestHeaderFormat,
		format.EscapeHTML(req.ShortID()),
		UserLabel(from),
		format.EscapeHTML(req.Link),
		format.EscapeHTML(req.Requisites),
	)
}

// MessageHeader renders the line posted before a relayed user message.
func (t Texts) MessageHeader(from User) string {
	return fmt.Sprintf(t.MessageHeaderFormat, UserLabel(from))
}

// ReplyPrefix renders the line put in front of a staff reply.
func (t Texts) ReplyPrefix(staff User) string {
	return fmt.Sprintf(t.ReplyPrefixFormat, format.EscapeHTML(staff.FullName()))
}

// ProofCaption keeps the user's caption, or names the attachment kind when it is empty.
func (t Texts) ProofCaption(m payout.Media) string {
	if c := strings.TrimSpace(m.Caption); c != "" {
		return format.EscapeHTML(format.Truncate(c, format.MaxCaptionLen))
	}
	if c, ok := t.ProofCaptions[m.Kind]; ok {
		return c
	}
	return ""
}

// UserLabel renders "Full Name (@username, id=123)" with HTML escaping.
func UserLabel(u User) string {
	uname := "-"
	if u.Username != "" {
		uname = "@" + u.Username
	}
	return format.EscapeHTML(fmt.Sprintf("%s (%s, id=%d)", u.FullName(), uname, u.ID))
}
