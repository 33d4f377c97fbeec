package reply

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrDelivery indicates the reply transport rejected a send.
var ErrDelivery = errors.New("reply delivery failed")

// Sender sends one text message as a reply to an existing message.
type Sender interface {
	SendReply(ctx context.Context, chatID int64, replyToMessageID int, text string) error
}

// Dispatcher chunks transcript text and sends the chunks in order.
type Dispatcher struct {
	sender   Sender
	maxChunk int
	logger   *slog.Logger
}

// NewDispatcher constructs a dispatcher bounded by maxChunk runes per message.
func NewDispatcher(sender Sender, maxChunk int, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{sender: sender, maxChunk: maxChunk, logger: logger}
}

// Dispatch sends text to the origin chat in order-preserving chunks and
// returns how many chunks were delivered. A failed send aborts the rest;
// chunks already sent stay delivered, there is no cross-chunk rollback.
func (d *Dispatcher) Dispatch(ctx context.Context, chatID int64, replyToMessageID int, text string) (int, error) {
	chunks := Chunk(text, d.maxChunk)

	for i, chunk := range chunks {
		if err := d.sender.SendReply(ctx, chatID, replyToMessageID, chunk); err != nil {
			return i, fmt.Errorf("send chunk %d/%d to chat %d: %v: %w",
				i+1, len(chunks), chatID, err, ErrDelivery)
		}
	}

	d.logger.Debug("transcript dispatched", "chat_id", chatID, "chunks", len(chunks))
	return len(chunks), nil
}
