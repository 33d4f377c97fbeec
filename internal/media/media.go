// Package media selects and fetches the audio-bearing attachment of an inbound message.
package media

import (
	"errors"
	"fmt"
)

// SizeUnknown marks a reference whose byte size was not reported by the platform.
const SizeUnknown int64 = -1

var (
	// ErrNoMedia indicates the message carries no supported attachment.
	ErrNoMedia = errors.New("no supported media attachment")
	// ErrUnknownSize indicates the platform did not report the attachment size.
	ErrUnknownSize = errors.New("attachment size unknown")
	// ErrOversize indicates the declared size exceeds the configured download limit.
	ErrOversize = errors.New("attachment exceeds download limit")
)

// Kind identifies one supported attachment kind.
type Kind string

const (
	KindVoice     Kind = "voice"
	KindVideoNote Kind = "video_note"
	KindAudio     Kind = "audio"
	KindDocument  Kind = "document"
	KindVideo     Kind = "video"
)

// selectionOrder is the fixed priority used when a message carries several attachments.
var selectionOrder = []Kind{KindVoice, KindVideoNote, KindAudio, KindDocument, KindVideo}

// Reference locates one remote attachment plus the metadata the platform declared for it.
type Reference struct {
	Kind     Kind
	FileID   string
	Size     int64
	MIMEType string
}

// Select picks the highest-priority present reference among candidates.
func Select(candidates []Reference) (Reference, error) {
	for _, kind := range selectionOrder {
		for _, ref := range candidates {
			if ref.Kind == kind && ref.FileID != "" {
				return ref, nil
			}
		}
	}
	return Reference{}, fmt.Errorf("select among %d candidates: %w", len(candidates), ErrNoMedia)
}
