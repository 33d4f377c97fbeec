package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"scribebot/internal/fsm"
	"scribebot/internal/pipeline"
)

type fakeBotAPI struct {
	updates chan tgbotapi.Update

	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	stopped bool
}

func newFakeBotAPI() *fakeBotAPI {
	return &fakeBotAPI{updates: make(chan tgbotapi.Update, 16)}
}

func (f *fakeBotAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeBotAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.stopped {
		f.stopped = true
		close(f.updates)
	}
}

func (f *fakeBotAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cfg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, cfg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeBotAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

type fakeRunner struct {
	mu   sync.Mutex
	reqs []pipeline.Request
	hold chan struct{}
}

func (f *fakeRunner) Run(_ context.Context, req pipeline.Request) pipeline.Result {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.hold != nil {
		<-f.hold
	}
	return pipeline.Result{RequestID: req.RequestID, State: fsm.StateDone}
}

func (f *fakeRunner) requests() []pipeline.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pipeline.Request(nil), f.reqs...)
}

func commandUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}}
}

func voiceUpdate(chatID int64, messageID int, fileID string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: messageID,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Voice:     &tgbotapi.Voice{FileID: fileID, FileSize: 128},
	}}
}

func TestBotGreetsOnStart(t *testing.T) {
	t.Parallel()

	api := newFakeBotAPI()
	runner := &fakeRunner{}
	bot := NewBot(api, runner, 2, nil)

	api.updates <- commandUpdate(42, "/start")
	api.StopReceivingUpdates()

	require.NoError(t, bot.Run(context.Background()))

	sent := api.messages()
	require.Len(t, sent, 1)
	require.Equal(t, int64(42), sent[0].ChatID)
	require.Equal(t, Greeting, sent[0].Text)
	require.Empty(t, runner.requests())
}

func TestBotRoutesMediaMessageToRunner(t *testing.T) {
	t.Parallel()

	api := newFakeBotAPI()
	runner := &fakeRunner{}
	bot := NewBot(api, runner, 2, nil)

	api.updates <- voiceUpdate(42, 7, "v1")
	api.StopReceivingUpdates()

	require.NoError(t, bot.Run(context.Background()))

	reqs := runner.requests()
	require.Len(t, reqs, 1)
	require.NotEmpty(t, reqs[0].RequestID)
	require.Equal(t, int64(42), reqs[0].ChatID)
	require.Equal(t, 7, reqs[0].MessageID)
	require.Len(t, reqs[0].Attachments, 1)
	require.Equal(t, uint64(1), bot.Processed())
	require.Zero(t, bot.Active())
}

func TestBotSkipsNonMessageUpdates(t *testing.T) {
	t.Parallel()

	api := newFakeBotAPI()
	runner := &fakeRunner{}
	bot := NewBot(api, runner, 2, nil)

	api.updates <- tgbotapi.Update{}
	api.updates <- voiceUpdate(1, 2, "v1")
	api.StopReceivingUpdates()

	require.NoError(t, bot.Run(context.Background()))
	require.Len(t, runner.requests(), 1)
}

func TestBotAssignsDistinctRequestIDs(t *testing.T) {
	t.Parallel()

	api := newFakeBotAPI()
	runner := &fakeRunner{}
	bot := NewBot(api, runner, 4, nil)

	for i := 0; i < 5; i++ {
		api.updates <- voiceUpdate(1, i+1, "v1")
	}
	api.StopReceivingUpdates()

	require.NoError(t, bot.Run(context.Background()))

	reqs := runner.requests()
	require.Len(t, reqs, 5)
	ids := map[string]struct{}{}
	for _, req := range reqs {
		ids[req.RequestID] = struct{}{}
	}
	require.Len(t, ids, 5)
}

func TestBotBoundsInflightRequests(t *testing.T) {
	t.Parallel()

	api := newFakeBotAPI()
	runner := &fakeRunner{hold: make(chan struct{})}
	bot := NewBot(api, runner, 1, nil)

	api.updates <- voiceUpdate(1, 1, "v1")
	api.updates <- voiceUpdate(1, 2, "v2")
	api.StopReceivingUpdates()

	done := make(chan error, 1)
	go func() { done <- bot.Run(context.Background()) }()

	// With one slot only the first request starts; the second waits.
	require.Eventually(t, func() bool {
		return len(runner.requests()) == 1
	}, time.Second, 5*time.Millisecond)
	require.Never(t, func() bool {
		return len(runner.requests()) > 1
	}, 50*time.Millisecond, 10*time.Millisecond)

	close(runner.hold)
	require.NoError(t, <-done)
	require.Len(t, runner.requests(), 2)
	require.Equal(t, uint64(2), bot.Processed())
}

func TestBotStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	api := newFakeBotAPI()
	runner := &fakeRunner{}
	bot := NewBot(api, runner, 2, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()

	cancel()
	require.Eventually(t, func() bool {
		select {
		case err := <-done:
			require.NoError(t, err)
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}
