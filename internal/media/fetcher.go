package media

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Downloader transfers one remote attachment fully into memory.
// Implementations must not read more than limit bytes from the transport.
type Downloader interface {
	Download(ctx context.Context, fileID string, limit int64) ([]byte, error)
}

// Fetcher resolves the attachment to transcribe and retrieves its payload.
type Fetcher struct {
	downloader Downloader
	maxBytes   int64
	logger     *slog.Logger
}

// NewFetcher constructs a fetcher bounded by maxBytes per download.
func NewFetcher(downloader Downloader, maxBytes int64, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{downloader: downloader, maxBytes: maxBytes, logger: logger}
}

// Fetch selects the attachment, enforces size limits before transfer, and downloads it.
// The size checks run before a single byte moves; oversize and unknown-size
// references are rejected without touching the downloader.
func (f *Fetcher) Fetch(ctx context.Context, candidates []Reference) ([]byte, error) {
	ref, err := Select(candidates)
	if err != nil {
		return nil, err
	}

	if ref.Size == SizeUnknown || ref.Size < 0 {
		return nil, fmt.Errorf("attachment %s kind=%s: %w", ref.FileID, ref.Kind, ErrUnknownSize)
	}
	if ref.Size > f.maxBytes {
		return nil, fmt.Errorf("attachment %s declares %d bytes, limit %d: %w",
			ref.FileID, ref.Size, f.maxBytes, ErrOversize)
	}

	payload, err := f.downloader.Download(ctx, ref.FileID, f.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("download attachment %s: %w", ref.FileID, err)
	}

	if ref.Kind == KindDocument {
		if err := checkDocumentPayload(payload); err != nil {
			return nil, err
		}
	}

	f.logger.Debug("attachment downloaded",
		"kind", ref.Kind,
		"file_id", ref.FileID,
		"bytes", len(payload),
	)
	return payload, nil
}

// checkDocumentPayload sniffs document bytes and rejects anything that is not
// audio or video content. Voice/audio/video kinds are already typed by the
// platform; documents are the one kind that can smuggle arbitrary files.
func checkDocumentPayload(payload []byte) error {
	detected := mimetype.Detect(payload)
	kind := detected.String()
	if strings.HasPrefix(kind, "audio/") ||
		strings.HasPrefix(kind, "video/") ||
		kind == "application/ogg" {
		return nil
	}
	return fmt.Errorf("document content type %s is not audio or video: %w", kind, ErrNoMedia)
}
