package telegram

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"scribebot/internal/pipeline"
)

// Greeting answers the /start command.
const Greeting = "Hi! Send me a voice message, video note, or audio file and I will reply with a transcript."

// updateTimeoutSeconds is the long-poll window for GetUpdates.
const updateTimeoutSeconds = 30

// botAPI is the slice of the platform API the update loop needs.
type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Runner processes one transcription request to a terminal outcome.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) pipeline.Result
}

// Bot consumes platform updates and hands each message to the pipeline,
// bounding how many are processed at once.
type Bot struct {
	api       botAPI
	runner    Runner
	logger    *slog.Logger
	slots     chan struct{}
	active    atomic.Int64
	processed atomic.Uint64
}

// NewBot wires the update loop. maxInflight bounds concurrent requests.
func NewBot(api botAPI, runner Runner, maxInflight int, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	if maxInflight < 1 {
		maxInflight = 1
	}
	return &Bot{
		api:    api,
		runner: runner,
		logger: logger,
		slots:  make(chan struct{}, maxInflight),
	}
}

// Active reports how many requests are being processed right now.
func (b *Bot) Active() int {
	return int(b.active.Load())
}

// Processed reports how many requests reached a terminal outcome.
func (b *Bot) Processed() uint64 {
	return b.processed.Load()
}

// Run consumes updates until ctx is cancelled, then waits for in-flight
// requests to finish.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = updateTimeoutSeconds
	updates := b.api.GetUpdatesChan(cfg)

	stopOnce := sync.OnceFunc(b.api.StopReceivingUpdates)
	go func() {
		<-ctx.Done()
		stopOnce()
	}()
	defer stopOnce()

	var wg sync.WaitGroup
	defer wg.Wait()

	for update := range updates {
		msg := update.Message
		if msg == nil {
			continue
		}

		if msg.IsCommand() {
			b.handleCommand(msg)
			continue
		}

		select {
		case b.slots <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}

		wg.Add(1)
		go func(msg *tgbotapi.Message) {
			defer wg.Done()
			defer func() { <-b.slots }()
			b.handleMessage(ctx, msg)
		}(msg)
	}

	return nil
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		reply := tgbotapi.NewMessage(msg.Chat.ID, Greeting)
		if _, err := b.api.Send(reply); err != nil {
			b.logger.Warn("greeting failed", "chat_id", msg.Chat.ID, "error", err)
		}
	default:
		b.logger.Debug("ignoring command", "command", msg.Command(), "chat_id", msg.Chat.ID)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	b.active.Add(1)
	defer b.active.Add(-1)
	defer b.processed.Add(1)

	req := pipeline.Request{
		RequestID:   uuid.NewString(),
		ChatID:      msg.Chat.ID,
		MessageID:   msg.MessageID,
		Attachments: Attachments(msg),
	}

	res := b.runner.Run(ctx, req)
	b.logger.Info("request finished",
		"request_id", res.RequestID,
		"state", res.State,
		"reason", res.Reason,
		"chunks", res.ChunksSent,
	)
}
