// Package pipeline sequences the transcription stages for one inbound
// request and maps every failure to a tagged terminal outcome.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"scribebot/internal/fsm"
	"scribebot/internal/media"
)

// Request identifies one inbound chat message carrying media to transcribe.
type Request struct {
	RequestID   string
	ChatID      int64
	MessageID   int
	Attachments []media.Reference
}

// Result is the complete terminal outcome of one Run invocation.
type Result struct {
	RequestID       string
	State           fsm.State
	Reason          Reason
	Err             error
	Transcript      string
	EmptyTranscript bool
	ChunksSent      int
	BytesFetched    int
	PCMBytes        int
	StartedAt       time.Time
	FinishedAt      time.Time
}

// Fetcher retrieves the selected attachment payload for a request.
type Fetcher interface {
	Fetch(ctx context.Context, candidates []media.Reference) ([]byte, error)
}

// Transcoder converts a source-encoded payload into canonical PCM.
type Transcoder interface {
	Transcode(ctx context.Context, raw []byte) ([]byte, error)
}

// Recognizer converts canonical PCM into raw transcript text.
// An empty transcript is a successful outcome.
type Recognizer interface {
	Recognize(ctx context.Context, pcm []byte) (string, error)
}

// Enhancer restores punctuation/casing for a target language.
// It is never invoked with empty text.
type Enhancer interface {
	Enhance(ctx context.Context, text string, language string) (string, error)
}

// Dispatcher sends transcript text back to the origin chat in ordered
// chunks and reports how many chunks went out.
type Dispatcher interface {
	Dispatch(ctx context.Context, chatID int64, replyToMessageID int, text string) (int, error)
}

// Notifier tells the end user why their request failed. The orchestrator
// calls it exactly once per failed request; wording is the adapter's choice.
type Notifier interface {
	Notify(ctx context.Context, req Request, reason Reason) error
}

// Timeouts bounds each suspending stage. Zero values disable the bound.
type Timeouts struct {
	Fetch     time.Duration
	Transcode time.Duration
	Recognize time.Duration
	Enhance   time.Duration
	Dispatch  time.Duration
}

// Options wires an orchestrator. Engines behind Recognizer/Enhancer are
// loaded once at startup and shared read-only across requests; when an
// engine is not safe for concurrent inference, SerializeEngineCalls adds
// an exclusive slot held only around the single engine call.
type Options struct {
	Fetcher              Fetcher
	Transcoder           Transcoder
	Recognizer           Recognizer
	Enhancer             Enhancer
	Dispatcher           Dispatcher
	Notifier             Notifier
	Logger               *slog.Logger
	Language             string
	EmptyNotice          string
	Timeouts             Timeouts
	SerializeEngineCalls bool
}

// DefaultEmptyNotice is dispatched when recognition finds no speech.
const DefaultEmptyNotice = "Nothing was recognized in this message."

// Orchestrator drives the fetch, transcode, recognize, enhance, and
// dispatch stages strictly left to right for independent requests.
type Orchestrator struct {
	fetcher     Fetcher
	transcoder  Transcoder
	recognizer  Recognizer
	enhancer    Enhancer
	dispatcher  Dispatcher
	notifier    Notifier
	logger      *slog.Logger
	language    string
	emptyNotice string
	timeouts    Timeouts
	engineGate  chan struct{}
}

// New constructs an orchestrator from options.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notice := opts.EmptyNotice
	if notice == "" {
		notice = DefaultEmptyNotice
	}
	var gate chan struct{}
	if opts.SerializeEngineCalls {
		gate = make(chan struct{}, 1)
	}
	return &Orchestrator{
		fetcher:     opts.Fetcher,
		transcoder:  opts.Transcoder,
		recognizer:  opts.Recognizer,
		enhancer:    opts.Enhancer,
		dispatcher:  opts.Dispatcher,
		notifier:    opts.Notifier,
		logger:      logger,
		language:    opts.Language,
		emptyNotice: notice,
		timeouts:    opts.Timeouts,
		engineGate:  gate,
	}
}

// Run executes the full pipeline for one request and always reaches a
// terminal state. Stage failures short-circuit all later stages; the
// failure is logged, mapped to a taxonomy reason, and reported to the
// user through the notifier.
func (o *Orchestrator) Run(ctx context.Context, req Request) Result {
	result := Result{RequestID: req.RequestID, State: fsm.StateStart, StartedAt: time.Now()}

	if req.MessageID == 0 {
		return o.fail(ctx, req, result, ErrEmptyMessage, ReasonEmptyMessage)
	}

	result.State = o.step(result.State, fsm.EventFetch)
	raw, err := withTimeout(ctx, o.timeouts.Fetch, func(ctx context.Context) ([]byte, error) {
		return o.fetcher.Fetch(ctx, req.Attachments)
	})
	if err != nil {
		return o.fail(ctx, req, result, err, reasonFor(err, ReasonFetch))
	}
	result.BytesFetched = len(raw)
	o.logStage(req, result.State, "attachment fetched", "bytes", len(raw))

	result.State = o.step(result.State, fsm.EventFetched)
	pcm, err := withTimeout(ctx, o.timeouts.Transcode, func(ctx context.Context) ([]byte, error) {
		return o.transcoder.Transcode(ctx, raw)
	})
	raw = nil
	if err != nil {
		return o.fail(ctx, req, result, err, reasonFor(err, ReasonTranscode))
	}
	result.PCMBytes = len(pcm)
	o.logStage(req, result.State, "audio transcoded", "pcm_bytes", len(pcm))

	result.State = o.step(result.State, fsm.EventTranscoded)
	transcript, err := withTimeout(ctx, o.timeouts.Recognize, func(ctx context.Context) (string, error) {
		release := o.acquireEngine()
		defer release()
		return o.recognizer.Recognize(ctx, pcm)
	})
	pcm = nil
	if err != nil {
		return o.fail(ctx, req, result, err, reasonFor(err, ReasonRecognize))
	}
	result.Transcript = transcript
	o.logStage(req, result.State, "speech recognized", "transcript_length", len(transcript))

	outbound := transcript
	if transcript == "" {
		result.EmptyTranscript = true
		result.State = o.step(result.State, fsm.EventRecognizedEmpty)
		o.logStage(req, result.State, "empty transcript, sending notice")
		outbound = o.emptyNotice
		result.State = o.step(result.State, fsm.EventDispatch)
	} else {
		result.State = o.step(result.State, fsm.EventRecognized)
		enhanced, err := withTimeout(ctx, o.timeouts.Enhance, func(ctx context.Context) (string, error) {
			release := o.acquireEngine()
			defer release()
			return o.enhancer.Enhance(ctx, transcript, o.language)
		})
		if err != nil {
			return o.fail(ctx, req, result, err, reasonFor(err, ReasonEnhance))
		}
		result.Transcript = enhanced
		outbound = enhanced
		o.logStage(req, result.State, "transcript enhanced", "length", len(enhanced))
		result.State = o.step(result.State, fsm.EventEnhanced)
	}

	sent, err := withTimeout(ctx, o.timeouts.Dispatch, func(ctx context.Context) (int, error) {
		return o.dispatcher.Dispatch(ctx, req.ChatID, req.MessageID, outbound)
	})
	result.ChunksSent = sent
	if err != nil {
		return o.fail(ctx, req, result, err, reasonFor(err, ReasonDelivery))
	}

	result.State = o.step(result.State, fsm.EventDispatched)
	result.FinishedAt = time.Now()
	o.logger.Info("request complete",
		"request_id", req.RequestID,
		"chat_id", req.ChatID,
		"state", result.State,
		"empty_transcript", result.EmptyTranscript,
		"chunks_sent", result.ChunksSent,
		"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
	)
	return result
}

// fail transitions to the absorbing failed state, logs the cause, and
// notifies the user once. Notification failures are logged, not raised:
// the request already has its terminal outcome.
func (o *Orchestrator) fail(ctx context.Context, req Request, result Result, err error, reason Reason) Result {
	result.State = o.step(result.State, fsm.EventFail)
	result.Reason = reason
	result.Err = err
	result.FinishedAt = time.Now()

	o.logger.Error("request failed",
		"request_id", req.RequestID,
		"chat_id", req.ChatID,
		"reason", reason,
		"error", err.Error(),
	)

	if o.notifier != nil {
		if notifyErr := o.notifier.Notify(ctx, req, reason); notifyErr != nil {
			o.logger.Error("failure notice undelivered",
				"request_id", req.RequestID,
				"reason", reason,
				"error", notifyErr.Error(),
			)
		}
	}
	return result
}

// step applies one fsm event; transitions are total by construction, so a
// rejected event is a programming error worth surfacing loudly in logs.
func (o *Orchestrator) step(current fsm.State, event fsm.Event) fsm.State {
	next, err := fsm.Transition(current, event)
	if err != nil {
		o.logger.Error("fsm transition rejected", "state", current, "event", event, "error", err.Error())
		return current
	}
	return next
}

func (o *Orchestrator) logStage(req Request, state fsm.State, msg string, args ...any) {
	fields := append([]any{"request_id", req.RequestID, "chat_id", req.ChatID, "state", state}, args...)
	o.logger.Debug(msg, fields...)
}

// acquireEngine takes the exclusive engine slot when serialization is on.
// The slot is held only around the single engine call, never the request.
func (o *Orchestrator) acquireEngine() func() {
	if o.engineGate == nil {
		return func() {}
	}
	o.engineGate <- struct{}{}
	return func() { <-o.engineGate }
}

// withTimeout bounds one stage call with an optional deadline.
func withTimeout[T any](ctx context.Context, d time.Duration, stage func(context.Context) (T, error)) (T, error) {
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return stage(ctx)
}
