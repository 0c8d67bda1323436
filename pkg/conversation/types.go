package conversation

import "strings"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// PartType discriminates the content-part union.
type PartType string

const (
	PartTypeText  PartType = "text"
	PartTypeImage PartType = "image"
)

// ImageRef points at image content without decoding it. Exactly one of
// Base64Data, URL, or Path should be set. URL also accepts data: URLs.
type ImageRef struct {
	// MediaType is the MIME type (e.g. "image/png"). Optional for URL and
	// Path references, where it is derived from the response or extension.
	MediaType string `json:"media_type,omitempty"`

	// Base64Data is inline base64-encoded image bytes.
	Base64Data string `json:"data,omitempty"`

	// URL is a remote http(s) URL or a data: URL.
	URL string `json:"url,omitempty"`

	// Path is a local filesystem path.
	Path string `json:"path,omitempty"`
}

// Part is one element of a message's content: plain text or an image
// reference. The zero Part is an empty text part.
type Part struct {
	Type  PartType  `json:"type"`
	Text  string    `json:"text,omitempty"`
	Image *ImageRef `json:"image,omitempty"`
}

// TextPart builds a text content part.
func TextPart(text string) Part {
	return Part{Type: PartTypeText, Text: text}
}

// ImagePart builds an image content part.
func ImagePart(ref ImageRef) Part {
	return Part{Type: PartTypeImage, Image: &ref}
}

// Message is a single conversational turn.
type Message struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"content"`
}

// NewUserText builds a user message with a single text part.
func NewUserText(text string) Message {
	return Message{Role: RoleUser, Parts: []Part{TextPart(text)}}
}

// NewAssistantText builds an assistant message with a single text part.
func NewAssistantText(text string) Message {
	return Message{Role: RoleAssistant, Parts: []Part{TextPart(text)}}
}

// NewSystemText builds a system message with a single text part.
func NewSystemText(text string) Message {
	return Message{Role: RoleSystem, Parts: []Part{TextPart(text)}}
}

// Text returns the concatenated text parts of the message, space-joined.
// Image parts are ignored.
func (m Message) Text() string {
	texts := make([]string, 0, len(m.Parts))
	for _, p := range m.Parts {
		if p.Type == PartTypeText && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, " ")
}

// Images returns the image references carried by the message, in order.
func (m Message) Images() []ImageRef {
	var refs []ImageRef
	for _, p := range m.Parts {
		if p.Type == PartTypeImage && p.Image != nil {
			refs = append(refs, *p.Image)
		}
	}
	return refs
}

// IsSystem reports whether the message carries the system role.
// Role comparison is case-insensitive to tolerate caller-supplied input.
func (m Message) IsSystem() bool {
	return strings.EqualFold(string(m.Role), string(RoleSystem))
}
