// Package app wires configuration, engines, and the update loop behind the
// command line entry point.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"scribebot/internal/asr"
	"scribebot/internal/cli"
	"scribebot/internal/config"
	"scribebot/internal/doctor"
	"scribebot/internal/enhance"
	"scribebot/internal/ipc"
	"scribebot/internal/logging"
	"scribebot/internal/media"
	"scribebot/internal/pipeline"
	"scribebot/internal/reply"
	"scribebot/internal/telegram"
	"scribebot/internal/transcode"
	"scribebot/internal/version"
)

const (
	binaryName     = "scribebot"
	forwardTimeout = 220 * time.Millisecond
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText(binaryName))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return 0
	}

	switch parsed.Command {
	case cli.CommandVersion:
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandStop:
		return r.commandStop(ctx)
	}

	cfg, err := config.Load(parsed.EnvFile)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	logRuntime, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	logger.Info("command start", "command", parsed.Command, "log", logRuntime.Path)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfg)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandRun:
		return r.commandRun(ctx, cfg, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// commandStatus asks a running bot for its state over the control socket.
func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "not running")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, "status")
	if !handled {
		fmt.Fprintln(r.Stdout, "not running")
		return 0
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Fprintf(r.Stdout, "%s (active=%d processed=%d)\n", resp.State, resp.Active, resp.Processed)
	return 0
}

// commandStop asks a running bot to shut down gracefully.
func (r Runner) commandStop(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, "stop")
	if !handled {
		fmt.Fprintf(r.Stderr, "error: no running %s instance\n", binaryName)
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// commandRun builds every engine once, then serves updates until the
// context is cancelled or a stop command arrives.
func (r Runner) commandRun(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	listener, socketPath, err := acquireControlSocket(ctx, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("another instance owns the control socket", "socket", socketPath)
		return 1
	}
	if listener != nil {
		defer func() {
			_ = listener.Close()
			_ = os.Remove(socketPath)
		}()
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: connect bot API: %v\n", err)
		logger.Error("bot API authorization failed", "error", err.Error())
		return 1
	}

	sender := telegram.NewSender(api)
	var enhancer pipeline.Enhancer
	if cfg.EnhanceURL != "" {
		enhancer = enhance.NewClient(cfg.EnhanceURL, cfg.EnhanceTimeout, logger)
	} else {
		logger.Info("no enhancement service configured, using in-process fallback")
		enhancer = enhance.NewLocal()
	}

	orch := pipeline.New(pipeline.Options{
		Fetcher:    media.NewFetcher(telegram.NewDownloader(api, logger), cfg.MaxDownloadBytes, logger),
		Transcoder: transcode.New(cfg.FFmpegPath, cfg.TranscodeTimeout, logger),
		Recognizer: asr.NewClient(cfg.ASRURL, transcode.SampleRate, logger),
		Enhancer:   enhancer,
		Dispatcher: reply.NewDispatcher(sender, cfg.MaxReplyChunk, logger),
		Notifier:   telegram.NewNotifier(sender, cfg.MaxDownloadBytes),
		Logger:     logger,
		Language:   cfg.EnhanceLanguage,
		Timeouts: pipeline.Timeouts{
			Fetch:     cfg.FetchTimeout,
			Transcode: cfg.TranscodeTimeout,
			Recognize: cfg.RecognizeTimeout,
			Enhance:   cfg.EnhanceTimeout,
			Dispatch:  cfg.DispatchTimeout,
		},
		SerializeEngineCalls: cfg.SerializeEngineCalls,
	})

	bot := telegram.NewBot(api, orch, cfg.MaxInflight, logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErrCh := make(chan error, 1)
	if listener != nil {
		handler := controlHandler(bot, cancel)
		go func() {
			serverErrCh <- ipc.Serve(runCtx, listener, handler)
		}()
	} else {
		serverErrCh <- nil
	}

	logger.Info("bot started", "max_inflight", cfg.MaxInflight, "asr", cfg.ASRURL)
	runErr := bot.Run(runCtx)
	cancel()

	if serverErr := <-serverErrCh; serverErr != nil {
		fmt.Fprintf(r.Stderr, "error: control server failed: %v\n", serverErr)
		return 1
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		fmt.Fprintf(r.Stderr, "error: %v\n", runErr)
		logger.Error("update loop failed", "error", runErr.Error())
		return 1
	}

	logger.Info("bot stopped", "processed", bot.Processed())
	return 0
}

// acquireControlSocket binds the status/stop socket. The bot still runs
// without one when no runtime directory is available; a second live
// instance is the only fatal outcome.
func acquireControlSocket(ctx context.Context, logger *slog.Logger) (net.Listener, string, error) {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		logger.Warn("control socket unavailable", "error", err.Error())
		return nil, "", nil
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			return nil, socketPath, err
		}
		logger.Warn("control socket unavailable", "socket", socketPath, "error", err.Error())
		return nil, "", nil
	}
	return listener, socketPath, nil
}

// controlHandler answers status and stop commands for a running bot.
func controlHandler(bot *telegram.Bot, stop context.CancelFunc) ipc.Handler {
	return ipc.HandlerFunc(func(_ context.Context, req ipc.Request) ipc.Response {
		switch req.Command {
		case "status":
			return ipc.Response{
				OK:        true,
				State:     "running",
				Active:    bot.Active(),
				Processed: bot.Processed(),
			}
		case "stop":
			stop()
			return ipc.Response{OK: true, Message: "stopping"}
		default:
			return ipc.Response{OK: false, Error: fmt.Sprintf("unknown command %q", req.Command)}
		}
	})
}

// tryForward sends a control command; handled=false means nothing listens.
func tryForward(ctx context.Context, socketPath string, command string) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Command: command}, forwardTimeout)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED) {
		return ipc.Response{}, false, nil
	}
	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
}
