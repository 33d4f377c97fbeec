// Package config loads, validates, and defaults scribebot configuration
// from the process environment.
package config

import "time"

// Config is the fully materialized runtime configuration used by scribebot.
type Config struct {
	// TelegramToken authenticates the bot against the chat platform.
	TelegramToken string `envconfig:"TELEGRAM_TOKEN" required:"true"`

	// EnhanceLanguage is the target language for punctuation/casing
	// restoration; "auto" detects per transcript.
	EnhanceLanguage string `envconfig:"ENHANCE_LANGUAGE" default:"auto"`

	// EnhanceURL points at the text-enhancement service. Empty selects
	// the in-process casing fallback.
	EnhanceURL string `envconfig:"ENHANCE_URL"`

	// ASRURL is the vosk-server WebSocket endpoint.
	ASRURL string `envconfig:"ASR_URL" default:"ws://127.0.0.1:2700"`

	// FFmpegPath locates the external transcoder binary.
	FFmpegPath string `envconfig:"FFMPEG_PATH" default:"ffmpeg"`

	// MaxDownloadBytes caps attachment size; larger declared sizes are
	// rejected before any byte is transferred.
	MaxDownloadBytes int64 `envconfig:"MAX_DOWNLOAD_BYTES" default:"20000000"`

	// MaxReplyChunk caps one outbound message length in runes.
	MaxReplyChunk int `envconfig:"MAX_REPLY_CHUNK" default:"4096"`

	// MaxInflight bounds concurrently processed requests.
	MaxInflight int `envconfig:"MAX_INFLIGHT" default:"8"`

	// SerializeEngineCalls forces exclusive access around engine calls
	// for deployments whose engines are not concurrency-safe.
	SerializeEngineCalls bool `envconfig:"SERIALIZE_ENGINE_CALLS" default:"false"`

	FetchTimeout     time.Duration `envconfig:"FETCH_TIMEOUT" default:"45s"`
	TranscodeTimeout time.Duration `envconfig:"TRANSCODE_TIMEOUT" default:"60s"`
	RecognizeTimeout time.Duration `envconfig:"RECOGNIZE_TIMEOUT" default:"120s"`
	EnhanceTimeout   time.Duration `envconfig:"ENHANCE_TIMEOUT" default:"30s"`
	DispatchTimeout  time.Duration `envconfig:"DISPATCH_TIMEOUT" default:"30s"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// LogFile appends JSONL logs to a file instead of stdout when set.
	LogFile string `envconfig:"LOG_FILE"`
}
