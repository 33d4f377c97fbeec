package telegram

import (
	"context"
	"fmt"

	"scribebot/internal/pipeline"
)

// replySender delivers one message into a chat.
type replySender interface {
	SendReply(ctx context.Context, chatID int64, replyToMessageID int, text string) error
}

// Notifier turns pipeline failure reasons into user-facing notices.
type Notifier struct {
	sender           replySender
	maxDownloadBytes int64
}

// NewNotifier builds a Notifier. maxDownloadBytes appears in the
// oversize notice so users learn the actual limit.
func NewNotifier(sender replySender, maxDownloadBytes int64) *Notifier {
	return &Notifier{sender: sender, maxDownloadBytes: maxDownloadBytes}
}

// Notify tells the message author why processing failed.
func (n *Notifier) Notify(ctx context.Context, req pipeline.Request, reason pipeline.Reason) error {
	return n.sender.SendReply(ctx, req.ChatID, req.MessageID, n.noticeFor(reason))
}

func (n *Notifier) noticeFor(reason pipeline.Reason) string {
	switch reason {
	case pipeline.ReasonEmptyMessage:
		return "There is nothing to transcribe in this message."
	case pipeline.ReasonNoMedia:
		return "Send a voice message, video note, audio file, or an audio/video document."
	case pipeline.ReasonUnknownSize:
		return "The size of this file could not be determined, so it was not downloaded."
	case pipeline.ReasonOversize:
		return fmt.Sprintf("This file is too large. The limit is %d MB.", n.maxDownloadBytes/1_000_000)
	case pipeline.ReasonFetch:
		return "The file could not be downloaded. Please try again."
	case pipeline.ReasonTranscode:
		return "The audio in this message could not be decoded."
	case pipeline.ReasonRecognize:
		return "Speech recognition failed. Please try again later."
	case pipeline.ReasonEnhance:
		return "The transcript could not be post-processed. Please try again later."
	case pipeline.ReasonDelivery:
		return "The reply could not be delivered completely."
	case pipeline.ReasonTimeout:
		return "Processing took too long and was aborted. Please try a shorter recording."
	case pipeline.ReasonCancelled:
		return "Processing was interrupted. Please try again."
	default:
		return "Something went wrong while processing this message. Please try again."
	}
}
