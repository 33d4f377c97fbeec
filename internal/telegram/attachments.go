// Package telegram adapts the chat platform to the transcription pipeline.
package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"scribebot/internal/media"
)

// Attachments maps a platform message onto media candidates. Selection
// priority is decided downstream; this only reports what is present.
func Attachments(msg *tgbotapi.Message) []media.Reference {
	if msg == nil {
		return nil
	}

	var refs []media.Reference
	if msg.Voice != nil {
		refs = append(refs, media.Reference{
			Kind:     media.KindVoice,
			FileID:   msg.Voice.FileID,
			Size:     declaredSize(msg.Voice.FileSize),
			MIMEType: msg.Voice.MimeType,
		})
	}
	if msg.VideoNote != nil {
		refs = append(refs, media.Reference{
			Kind:   media.KindVideoNote,
			FileID: msg.VideoNote.FileID,
			Size:   declaredSize(msg.VideoNote.FileSize),
		})
	}
	if msg.Audio != nil {
		refs = append(refs, media.Reference{
			Kind:     media.KindAudio,
			FileID:   msg.Audio.FileID,
			Size:     declaredSize(msg.Audio.FileSize),
			MIMEType: msg.Audio.MimeType,
		})
	}
	if msg.Document != nil {
		refs = append(refs, media.Reference{
			Kind:     media.KindDocument,
			FileID:   msg.Document.FileID,
			Size:     declaredSize(msg.Document.FileSize),
			MIMEType: msg.Document.MimeType,
		})
	}
	if msg.Video != nil {
		refs = append(refs, media.Reference{
			Kind:     media.KindVideo,
			FileID:   msg.Video.FileID,
			Size:     declaredSize(msg.Video.FileSize),
			MIMEType: msg.Video.MimeType,
		})
	}

	return lo.Filter(refs, func(r media.Reference, _ int) bool {
		return r.FileID != ""
	})
}

// declaredSize maps the platform's absent/zero file size onto the
// unknown-size marker.
func declaredSize(size int) int64 {
	if size <= 0 {
		return media.SizeUnknown
	}
	return int64(size)
}
