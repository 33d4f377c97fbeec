package pipeline

import (
	"context"
	"errors"

	"scribebot/internal/enhance"
	"scribebot/internal/media"
	"scribebot/internal/reply"
	"scribebot/internal/transcode"
)

// ErrEmptyMessage indicates the inbound trigger carried no message body.
var ErrEmptyMessage = errors.New("inbound update carries no message")

// Reason tags a terminal failure for logging and user notification.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonEmptyMessage Reason = "empty_message"
	ReasonNoMedia      Reason = "no_media"
	ReasonUnknownSize  Reason = "unknown_size"
	ReasonOversize     Reason = "oversize"
	ReasonFetch        Reason = "fetch_failed"
	ReasonTranscode    Reason = "transcode_failed"
	ReasonRecognize    Reason = "recognize_failed"
	ReasonEnhance      Reason = "enhance_failed"
	ReasonDelivery     Reason = "delivery_failed"
	ReasonTimeout      Reason = "stage_timeout"
	ReasonCancelled    Reason = "cancelled"
)

// reasonFor maps a stage error to its taxonomy reason. Sentinel matches
// win over the stage fallback so a fetch-stage oversize stays oversize;
// deadline and cancellation outrank everything because the stage error
// is then just a symptom of the expired context.
func reasonFor(err error, fallback Reason) Reason {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCancelled
	case errors.Is(err, media.ErrNoMedia):
		return ReasonNoMedia
	case errors.Is(err, media.ErrUnknownSize):
		return ReasonUnknownSize
	case errors.Is(err, media.ErrOversize):
		return ReasonOversize
	case errors.Is(err, transcode.ErrTranscode):
		return ReasonTranscode
	case errors.Is(err, enhance.ErrEnhance):
		return ReasonEnhance
	case errors.Is(err, reply.ErrDelivery):
		return ReasonDelivery
	case errors.Is(err, ErrEmptyMessage):
		return ReasonEmptyMessage
	default:
		return fallback
	}
}
