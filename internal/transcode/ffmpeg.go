// Package transcode normalizes arbitrary audio/video payloads into canonical PCM.
package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// Canonical audio parameters required by the speech recognizer.
const (
	Channels   = 1
	SampleRate = 16000
	Format     = "s16le"
)

// ErrTranscode indicates the external decoder failed or produced no output.
var ErrTranscode = errors.New("audio transcode failed")

// stderrTailLimit bounds how much process stderr is kept for diagnostics.
const stderrTailLimit = 2048

// FFmpeg invokes an external ffmpeg process to decode payloads into
// mono 16-bit little-endian PCM at 16 kHz.
type FFmpeg struct {
	path    string
	timeout time.Duration
	logger  *slog.Logger
}

// New constructs a transcoder around the ffmpeg binary at path.
// A zero timeout disables the per-invocation deadline.
func New(path string, timeout time.Duration, logger *slog.Logger) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FFmpeg{path: path, timeout: timeout, logger: logger}
}

// Transcode decodes raw into canonical PCM via one ffmpeg invocation.
// Input and output travel through call-scoped temporary files that are
// removed on every exit path. Process failure and empty output both map
// to ErrTranscode; malformed input is not distinguished from a crash.
func (f *FFmpeg) Transcode(ctx context.Context, raw []byte) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	in, err := os.CreateTemp("", "scribebot-in-*")
	if err != nil {
		return nil, fmt.Errorf("create transcode input: %w", err)
	}
	defer func() {
		_ = os.Remove(in.Name())
	}()

	if _, err := in.Write(raw); err != nil {
		_ = in.Close()
		return nil, fmt.Errorf("write transcode input: %w", err)
	}
	if err := in.Close(); err != nil {
		return nil, fmt.Errorf("close transcode input: %w", err)
	}

	out, err := os.CreateTemp("", "scribebot-out-*")
	if err != nil {
		return nil, fmt.Errorf("create transcode output: %w", err)
	}
	outPath := out.Name()
	_ = out.Close()
	defer func() {
		_ = os.Remove(outPath)
	}()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.path,
		"-loglevel", "quiet",
		"-y",
		"-i", in.Name(),
		"-ac", strconv.Itoa(Channels),
		"-f", Format,
		"-ar", strconv.Itoa(SampleRate),
		outPath,
	)
	cmd.Stderr = &stderr

	started := time.Now()
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", f.path, ctxErr)
		}
		return nil, fmt.Errorf("%s: %v (stderr: %s): %w", f.path, err, stderrTail(stderr.Bytes()), ErrTranscode)
	}

	pcm, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read transcode output: %w", err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%s produced no output bytes: %w", f.path, ErrTranscode)
	}

	f.logger.Debug("payload transcoded",
		"input_bytes", len(raw),
		"pcm_bytes", len(pcm),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return pcm, nil
}

// stderrTail keeps the final diagnostics a failed process printed.
func stderrTail(output []byte) string {
	trimmed := bytes.TrimSpace(output)
	if len(trimmed) == 0 {
		return "<empty>"
	}
	if len(trimmed) > stderrTailLimit {
		trimmed = trimmed[len(trimmed)-stderrTailLimit:]
	}
	return string(trimmed)
}
