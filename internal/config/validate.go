package config

import (
	"fmt"
	"strings"
)

// Validate enforces configuration invariants.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.TelegramToken) == "" {
		return fmt.Errorf("TELEGRAM_TOKEN must not be empty")
	}
	if strings.TrimSpace(cfg.ASRURL) == "" {
		return fmt.Errorf("ASR_URL must not be empty")
	}
	if !strings.HasPrefix(cfg.ASRURL, "ws://") && !strings.HasPrefix(cfg.ASRURL, "wss://") {
		return fmt.Errorf("ASR_URL must use ws:// or wss://")
	}
	if cfg.EnhanceURL != "" &&
		!strings.HasPrefix(cfg.EnhanceURL, "http://") && !strings.HasPrefix(cfg.EnhanceURL, "https://") {
		return fmt.Errorf("ENHANCE_URL must use http:// or https://")
	}
	if strings.TrimSpace(cfg.EnhanceLanguage) == "" {
		return fmt.Errorf("ENHANCE_LANGUAGE must not be empty")
	}
	if strings.TrimSpace(cfg.FFmpegPath) == "" {
		return fmt.Errorf("FFMPEG_PATH must not be empty")
	}
	if cfg.MaxDownloadBytes <= 0 {
		return fmt.Errorf("MAX_DOWNLOAD_BYTES must be > 0")
	}
	if cfg.MaxReplyChunk <= 0 {
		return fmt.Errorf("MAX_REPLY_CHUNK must be > 0")
	}
	if cfg.MaxInflight <= 0 {
		return fmt.Errorf("MAX_INFLIGHT must be > 0")
	}
	for name, d := range map[string]int64{
		"FETCH_TIMEOUT":     int64(cfg.FetchTimeout),
		"TRANSCODE_TIMEOUT": int64(cfg.TranscodeTimeout),
		"RECOGNIZE_TIMEOUT": int64(cfg.RecognizeTimeout),
		"ENHANCE_TIMEOUT":   int64(cfg.EnhanceTimeout),
		"DISPATCH_TIMEOUT":  int64(cfg.DispatchTimeout),
	} {
		if d < 0 {
			return fmt.Errorf("%s must be >= 0", name)
		}
	}
	switch strings.ToLower(strings.TrimSpace(cfg.LogLevel)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}
	return nil
}
