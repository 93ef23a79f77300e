package transcode

import (
	"context"
	"sync"

	"reelcut/internal/logging"
	"reelcut/internal/media"
)

// ClipResult is the per-clip outcome of a batch conversion.
type ClipResult struct {
	ClipID      string                 `json:"clipId"`
	OriginalURL string                 `json:"originalUrl"`
	LocalURL    string                 `json:"mp4Url,omitempty"`
	Status      media.ConversionStatus `json:"status"`
	Error       string                 `json:"error,omitempty"`
}

// BatchResult aggregates a batch of conversions. Conversions preserves the
// order of the requested sequence regardless of completion order.
type BatchResult struct {
	Conversions   []ClipResult `json:"conversions"`
	SuccessCount  int          `json:"successCount"`
	FailureCount  int          `json:"failureCount"`
	AllSuccessful bool         `json:"allSuccessful"`
}

// ConvertSequenced converts every clip referenced by the sequence's ordered
// id list. Ids with no matching descriptor are logged and skipped. Individual
// failures are captured per clip and never abort the batch.
//
// Conversions run on a bounded worker pool; with a single worker the behavior
// is strictly serial, bounding resource usage to one active transcode.
func (c *Converter) ConvertSequenced(ctx context.Context, clips []media.ClipDescriptor, sequence media.Sequence, sessionID string) BatchResult {
	logger := c.logger.With(logging.String(logging.FieldSessionID, sessionID))
	logger.Info("converting sequenced clips", logging.Int("count", len(sequence.ClipIDs)))

	byID := make(map[string]media.ClipDescriptor, len(clips))
	for _, clip := range clips {
		byID[clip.ID] = clip
	}

	resolved := make([]media.ClipDescriptor, 0, len(sequence.ClipIDs))
	for _, clipID := range sequence.ClipIDs {
		clip, ok := byID[clipID]
		if !ok {
			logger.Warn("sequence references unknown clip, skipping",
				logging.String(logging.FieldClipID, clipID))
			continue
		}
		resolved = append(resolved, clip)
	}

	results := make([]ClipResult, len(resolved))
	workers := c.workers
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i, clip := range resolved {
		wg.Add(1)
		go func(i int, clip media.ClipDescriptor) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result := ClipResult{ClipID: clip.ID, OriginalURL: clip.SourceLocator}
			url, err := c.Convert(ctx, clip, sessionID)
			if err != nil {
				result.Status = media.StatusFailed
				result.Error = err.Error()
			} else {
				result.Status = media.StatusConverted
				result.LocalURL = url
			}
			results[i] = result
		}(i, clip)
	}
	wg.Wait()

	batch := BatchResult{Conversions: results}
	for _, result := range results {
		if result.Status == media.StatusConverted {
			batch.SuccessCount++
		} else {
			batch.FailureCount++
		}
	}
	batch.AllSuccessful = batch.FailureCount == 0

	logger.Info("batch conversion complete",
		logging.Int("succeeded", batch.SuccessCount),
		logging.Int("failed", batch.FailureCount))
	return batch
}
