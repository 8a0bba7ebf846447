package payout

// Entity types carrying links, as named by the Telegram Bot API.
const (
	EntityURL      = "url"
	EntityTextLink = "text_link"
)

// Entity is a rich-text span attached to a message text or caption.
// Offset and Length are expressed in UTF-16 code units.
type Entity struct {
	Type   string
	Offset int
	Length int
	URL    string
}

// PhotoSize is one resolution of an uploaded photo.
type PhotoSize struct {
	FileID string
	Width  int
	Height int
}

// Input is the platform-neutral view of a user message consumed by the tracker.
type Input struct {
	Text            string
	Entities        []Entity
	Caption         string
	CaptionEntities []Entity

	Photo     []PhotoSize
	Document  string
	Video     string
	Animation string

	// AlbumID is set when the message is part of an attachment group.
	AlbumID string
}

// HasAttachment reports whether the input carries any recognised attachment.
func (in Input) HasAttachment() bool {
	return len(in.Photo) > 0 || in.Document != "" || in.Video != "" || in.Animation != ""
}
