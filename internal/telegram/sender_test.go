package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
)

type fakeSendAPI struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSendAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cfg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, cfg)
	}
	return tgbotapi.Message{}, f.err
}

func (f *fakeSendAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

func TestSendReply(t *testing.T) {
	t.Parallel()

	api := &fakeSendAPI{}
	s := NewSender(api)

	require.NoError(t, s.SendReply(context.Background(), 42, 7, "hello"))

	sent := api.messages()
	require.Len(t, sent, 1)
	require.Equal(t, int64(42), sent[0].ChatID)
	require.Equal(t, 7, sent[0].ReplyToMessageID)
	require.Equal(t, "hello", sent[0].Text)
}

func TestSendReplyAPIError(t *testing.T) {
	t.Parallel()

	api := &fakeSendAPI{err: errors.New("flood wait")}
	s := NewSender(api)

	err := s.SendReply(context.Background(), 42, 7, "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "chat 42")
}

func TestSendReplyCancelledContext(t *testing.T) {
	t.Parallel()

	api := &fakeSendAPI{}
	s := NewSender(api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.SendReply(ctx, 42, 7, "hello")
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, api.messages())
}
