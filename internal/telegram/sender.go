package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// messageSender is the slice of the platform API needed to send messages.
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender delivers reply text through the platform API.
type Sender struct {
	api messageSender
}

// NewSender builds a Sender around the platform API.
func NewSender(api messageSender) *Sender {
	return &Sender{api: api}
}

// SendReply sends one message into chatID as a reply to replyToMessageID.
// A zero replyToMessageID sends a plain message.
func (s *Sender) SendReply(ctx context.Context, chatID int64, replyToMessageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyToMessageID
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}
	return nil
}
