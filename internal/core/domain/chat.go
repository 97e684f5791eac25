package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Message length bounds, counted in runes after sanitizing.
const (
	MinMessageLength = 2
	MaxMessageLength = 1000
)

// ChatRequest is a visitor question.
type ChatRequest struct {
	Message  string
	Language string // BCP 47 tag, empty means "en"
	Audio    bool   // synthesize speech for the reply
	ClientIP string
}

// ChatReply is the assistant's answer.
type ChatReply struct {
	Text      string
	AudioURL  string
	Cached    bool
	Timestamp time.Time
}

// Prompt is what the completion collaborator receives.
type Prompt struct {
	System    string
	User      string
	Model     string
	MaxTokens int
}

// Audio is synthesized speech.
type Audio struct {
	Data        []byte
	ContentType string
}

// SanitizeMessage cleans a visitor message and checks its length.
//
// Angle brackets and control characters are removed and runs of
// whitespace collapse to a single space.
func SanitizeMessage(raw string) (string, error) {
	if !utf8.ValidString(raw) {
		return "", ErrInvalidInput.WithDetails("message is not valid UTF-8")
	}
	var b strings.Builder
	b.Grow(len(raw))
	space := false
	for _, r := range raw {
		switch {
		case r == '<' || r == '>':
			continue
		case unicode.IsSpace(r):
			space = true
			continue
		case unicode.IsControl(r):
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	msg := b.String()

	n := utf8.RuneCountInString(msg)
	switch {
	case n == 0:
		return "", ErrInvalidInput.WithDetails("userMessage is required")
	case n < MinMessageLength:
		return "", ErrInvalidInput.WithDetails("message is too short")
	case n > MaxMessageLength:
		return "", ErrInvalidInput.WithDetails("message is too long")
	}
	return msg, nil
}
