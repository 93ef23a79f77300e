package transcode

import (
	"os"

	"reelcut/internal/media"
)

// ClipStatus reports whether a clip's converted file exists.
type ClipStatus struct {
	ClipID   string                 `json:"clipId"`
	Status   media.ConversionStatus `json:"status"`
	LocalURL string                 `json:"mp4Url,omitempty"`
}

// Status checks the deterministic output path for a conversion. It touches
// only the filesystem; no network or subprocess work happens here.
func (c *Converter) Status(clipID, sessionID string) ClipStatus {
	if _, err := os.Stat(c.OutputPath(clipID, sessionID)); err == nil {
		return ClipStatus{
			ClipID:   clipID,
			Status:   media.StatusConverted,
			LocalURL: c.PublicURL(clipID, sessionID),
		}
	}
	return ClipStatus{ClipID: clipID, Status: media.StatusUnconverted}
}
