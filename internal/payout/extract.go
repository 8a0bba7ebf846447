package payout

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf16"
)

// Reason identifies why an input was rejected at its stage.
type Reason string

const (
	ReasonNoURL              Reason = "no_url"
	ReasonAlbum              Reason = "album"
	ReasonNoAttachment       Reason = "no_attachment"
	ReasonRequisitesTooShort Reason = "requisites_too_short"
)

// ValidationError reports input that does not satisfy the pending stage.
// The request stays at Stage and the user is prompted again.
type ValidationError struct {
	Stage  Stage
	Reason Reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("payout: %s input rejected: %s", e.Stage, e.Reason)
}

// Code exposes the reason for log summaries.
func (e *ValidationError) Code() string {
	return string(e.Reason)
}

// DefaultLinkPrefixes are bare domains accepted as links without a scheme.
var DefaultLinkPrefixes = []string{
	"t.me/",
	"www.",
	"youtu.be/",
	"youtube.com/",
	"vk.com/",
	"instagram.com/",
	"x.com/",
	"twitter.com/",
}

// DefaultMinRequisitesLen is the shortest accepted payment details string, in runes.
const DefaultMinRequisitesLen = 5

// Policy holds the validation knobs that differ between deployments.
type Policy struct {
	// MinRequisitesLen is the minimum trimmed length of requisites; values below 1 act as 1.
	MinRequisitesLen int
	// LinkPrefixes lists bare domain prefixes accepted as links. Empty disables bare links.
	LinkPrefixes []string
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		MinRequisitesLen: DefaultMinRequisitesLen,
		LinkPrefixes:     append([]string(nil), DefaultLinkPrefixes...),
	}
}

func (p Policy) minRequisites() int {
	if p.MinRequisitesLen < 1 {
		return 1
	}
	return p.MinRequisitesLen
}

// ExtractURL finds the link submitted in a message.
//
// Link entities win over the raw text: a text_link yields its target, a url entity
// yields the covered part of the text. Otherwise the whole trimmed text is accepted
// when it is an absolute http(s) URL with a host, or when it starts with one of the
// policy's bare prefixes (https:// is prepended then).
func ExtractURL(in Input, p Policy) (string, bool) {
	source, entities := in.Text, in.Entities
	if source == "" {
		source, entities = in.Caption, in.CaptionEntities
	}
	text := strings.TrimSpace(source)
	if text == "" {
		return "", false
	}

	for _, ent := range entities {
		if ent.Type != EntityURL && ent.Type != EntityTextLink {
			continue
		}
		if ent.Type == EntityTextLink && ent.URL != "" {
			return ent.URL, true
		}
		if part, ok := sliceUTF16(source, ent.Offset, ent.Length); ok && strings.TrimSpace(part) != "" {
			return part, true
		}
	}

	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		if u, err := url.Parse(text); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
			return text, true
		}
	}

	for _, prefix := range p.LinkPrefixes {
		if prefix == "" || !strings.HasPrefix(text, prefix) {
			continue
		}
		if strings.HasPrefix(text, "http") {
			return text, true
		}
		return "https://" + text, true
	}
	return "", false
}

// sliceUTF16 cuts s the way Telegram entity offsets address it.
func sliceUTF16(s string, offset, length int) (string, bool) {
	if offset < 0 || length <= 0 {
		return "", false
	}
	units := utf16.Encode([]rune(s))
	end := offset + length
	if end > len(units) || end < offset {
		return "", false
	}
	return string(utf16.Decode(units[offset:end])), true
}

// ExtractMedia picks the single proof attachment of a message.
// Attachment groups are refused even when the item itself is acceptable.
func ExtractMedia(in Input) (Media, *ValidationError) {
	if in.AlbumID != "" {
		return Media{}, &ValidationError{Stage: StageProof, Reason: ReasonAlbum}
	}
	switch {
	case len(in.Photo) > 0:
		return Media{Kind: MediaPhoto, FileID: largestPhoto(in.Photo).FileID, Caption: in.Caption}, nil
	case in.Document != "":
		return Media{Kind: MediaDocument, FileID: in.Document, Caption: in.Caption}, nil
	case in.Video != "":
		return Media{Kind: MediaVideo, FileID: in.Video, Caption: in.Caption}, nil
	case in.Animation != "":
		return Media{Kind: MediaAnimation, FileID: in.Animation, Caption: in.Caption}, nil
	}
	return Media{}, &ValidationError{Stage: StageProof, Reason: ReasonNoAttachment}
}

// largestPhoto returns the variant with the most pixels; later variants win ties,
// matching the platform's ascending size order.
func largestPhoto(sizes []PhotoSize) PhotoSize {
	best := sizes[0]
	for _, s := range sizes[1:] {
		if s.Width*s.Height >= best.Width*best.Height {
			best = s
		}
	}
	return best
}

// ExtractRequisites returns the trimmed payment details, caption first.
func ExtractRequisites(in Input, p Policy) (string, *ValidationError) {
	text := strings.TrimSpace(in.Caption)
	if text == "" {
		text = strings.TrimSpace(in.Text)
	}
	if len([]rune(text)) < p.minRequisites() {
		return "", &ValidationError{Stage: StageRequisites, Reason: ReasonRequisitesTooShort}
	}
	return text, nil
}
