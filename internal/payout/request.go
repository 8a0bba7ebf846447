// Package payout tracks the three-step payout request every user walks through:
// a link to the video, one proof attachment and the payment requisites.
package payout

import "time"

// Stage names the input a request is waiting for.
type Stage string

const (
	// StageLink waits for the video link.
	StageLink Stage = "link"
	// StageProof waits for a single proof attachment.
	StageProof Stage = "proof"
	// StageRequisites waits for payment details.
	StageRequisites Stage = "requisites"
)

// Step returns the 1-based position of the stage in the flow, 0 for unknown stages.
func (s Stage) Step() int {
	switch s {
	case StageLink:
		return 1
	case StageProof:
		return 2
	case StageRequisites:
		return 3
	}
	return 0
}

// MediaKind is the attachment type captured as proof.
type MediaKind string

const (
	MediaPhoto     MediaKind = "photo"
	MediaDocument  MediaKind = "document"
	MediaVideo     MediaKind = "video"
	MediaAnimation MediaKind = "animation"
)

// Media references an attachment already stored by the messaging platform.
type Media struct {
	Kind    MediaKind `json:"kind"`
	FileID  string    `json:"file_id"`
	Caption string    `json:"caption,omitempty"`
}

// Request is the in-progress payout request of a single user.
// Link is set once the stage moved past StageLink, Media once it moved past StageProof.
type Request struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	Stage      Stage     `json:"stage"`
	Link       string    `json:"link,omitempty"`
	Media      *Media    `json:"media,omitempty"`
	Requisites string    `json:"requisites,omitempty"`
	StartedAt  time.Time `json:"started_at"`
}

// ShortID returns the first block of the request id for display.
func (r Request) ShortID() string {
	if len(r.ID) > 8 {
		return r.ID[:8]
	}
	return r.ID
}
