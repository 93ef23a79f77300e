// Package media defines the clip domain model shared by the transcoding
// components and the session store.
package media

import (
	"encoding/json"
	"strings"
)

// ConversionStatus tracks a clip's progress toward a local playable file.
type ConversionStatus string

const (
	StatusUnconverted ConversionStatus = "unconverted"
	StatusConverting  ConversionStatus = "converting"
	StatusConverted   ConversionStatus = "converted"
	StatusFailed      ConversionStatus = "failed"
)

// Resolution is a frame size in pixels.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ClipDescriptor describes one source clip in a session. The Analysis payload
// is owned by the external analysis oracle and treated as opaque here.
type ClipDescriptor struct {
	ID               string           `json:"id"`
	Filename         string           `json:"filename"`
	SourceLocator    string           `json:"sourceLocator"`
	Duration         float64          `json:"duration"`
	Resolution       Resolution       `json:"resolution"`
	Analysis         json.RawMessage  `json:"analysis,omitempty"`
	ConversionStatus ConversionStatus `json:"conversionStatus"`
	LocalMediaURL    string           `json:"localMediaUrl,omitempty"`
}

// Sequence is the ordered clip-id list produced by the sequencing oracle.
// Everything beyond the id list is opaque to this subsystem.
type Sequence struct {
	ClipIDs []string `json:"sequence"`
}

// IsStreamManifest reports whether a locator points at a segmented-streaming
// playlist rather than one progressive file.
func IsStreamManifest(locator string) bool {
	return strings.Contains(strings.ToLower(locator), ".m3u8")
}
