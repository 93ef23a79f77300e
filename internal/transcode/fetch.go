package transcode

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"reelcut/internal/logging"
	"reelcut/internal/mediatool"
)

// Fetcher downloads progressive source files to local paths.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// NewFetcher builds a fetcher whose requests time out after the given duration.
func NewFetcher(timeout time.Duration, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		logger: logging.NewComponentLogger(logger, "fetcher"),
	}
}

// Download streams url into dest. A failed or partial download removes dest.
func (f *Fetcher) Download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return mediatool.Wrap(mediatool.ErrValidation, "fetcher", "download", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return mediatool.Wrap(mediatool.ErrTransient, "fetcher", "download", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mediatool.Wrap(mediatool.ErrTransient, "fetcher", "download",
			fmt.Sprintf("%s: unexpected status %d", url, resp.StatusCode), nil)
	}

	out, err := os.Create(dest)
	if err != nil {
		return mediatool.Wrap(mediatool.ErrTransient, "fetcher", "download", "create "+dest, err)
	}

	written, err := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dest)
		return mediatool.Wrap(mediatool.ErrTransient, "fetcher", "download", url, err)
	}

	f.logger.Debug("downloaded source file",
		logging.String(logging.FieldLocator, url),
		logging.String(logging.FieldPath, dest),
		logging.Int64("bytes", written))
	return nil
}
