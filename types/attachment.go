package types

import "encoding/json"

// AttachmentType discriminates attachment payload shapes.
type AttachmentType string

const (
	AttachmentImage           AttachmentType = "image"
	AttachmentVideo           AttachmentType = "video"
	AttachmentAudio           AttachmentType = "audio"
	AttachmentFile            AttachmentType = "file"
	AttachmentSticker         AttachmentType = "sticker"
	AttachmentContact         AttachmentType = "contact"
	AttachmentInlineKeyboard  AttachmentType = "inline_keyboard"
	AttachmentShare           AttachmentType = "share"
	AttachmentLocation        AttachmentType = "location"
)

// Attachment is one media or keyboard entry in a message body. Payload is
// kept raw; callers that care about a specific shape decode it themselves.
type Attachment struct {
	Type    AttachmentType  `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`

	// Present for media kinds only.
	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`
}

// MediaPayload is the common shape of image/video/audio/file payloads.
type MediaPayload struct {
	URL   string `json:"url,omitempty"`
	Token string `json:"token,omitempty"`
}

// Media decodes the payload as a media reference.
func (a Attachment) Media() (*MediaPayload, error) {
	var p MediaPayload
	if err := json.Unmarshal(a.Payload, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
