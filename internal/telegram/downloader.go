package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"scribebot/internal/media"
)

// fileResolver resolves a platform file ID to a direct download URL.
type fileResolver interface {
	GetFileDirectURL(fileID string) (string, error)
}

// Downloader fetches attachment payloads through the platform file API.
type Downloader struct {
	resolver fileResolver
	client   *http.Client
	logger   *slog.Logger
}

// NewDownloader builds a Downloader around the platform API.
func NewDownloader(resolver fileResolver, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{
		resolver: resolver,
		client:   &http.Client{Timeout: 60 * time.Second},
		logger:   logger,
	}
}

// Download retrieves the payload for fileID, enforcing limit even when the
// server's declared length lies.
func (d *Downloader) Download(ctx context.Context, fileID string, limit int64) ([]byte, error) {
	url, err := d.resolver.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file %s: %w", fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file %s: HTTP %d", fileID, resp.StatusCode)
	}
	if resp.ContentLength > limit {
		return nil, fmt.Errorf("file %s declares %d bytes: %w", fileID, resp.ContentLength, media.ErrOversize)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", fileID, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file %s exceeds %d bytes: %w", fileID, limit, media.ErrOversize)
	}

	d.logger.Debug("downloaded attachment", "file_id", fileID, "bytes", len(data))
	return data, nil
}
