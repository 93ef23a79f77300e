package mediatool

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

// ProbeResult summarizes the properties of one media file.
type ProbeResult struct {
	Width     int
	Height    int
	Duration  float64
	FrameRate float64
	Codec     string
	BitRate   int64
	SizeBytes int64
}

type probeDocument struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
		Size     string `json:"size"`
	} `json:"format"`
}

// Probe inspects input with ffprobe and returns its video properties.
// Inputs without a video stream yield ErrValidation.
func (t *Tool) Probe(ctx context.Context, input string) (ProbeResult, error) {
	out, err := t.runner.Run(ctx, t.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		input,
	)
	if err != nil {
		return ProbeResult{}, Wrap(ErrExternalTool, "mediatool", "probe", input, err)
	}

	var doc probeDocument
	if err := json.Unmarshal(out, &doc); err != nil {
		return ProbeResult{}, Wrap(ErrExternalTool, "mediatool", "probe", "parse output", err)
	}

	result := ProbeResult{
		Duration:  parseFloat(doc.Format.Duration),
		BitRate:   parseInt(doc.Format.BitRate),
		SizeBytes: parseInt(doc.Format.Size),
	}

	for _, stream := range doc.Streams {
		if stream.CodecType != "video" {
			continue
		}
		result.Width = stream.Width
		result.Height = stream.Height
		result.Codec = stream.CodecName
		result.FrameRate = parseRational(stream.RFrameRate)
		if result.FrameRate == 0 {
			result.FrameRate = parseRational(stream.AvgFrameRate)
		}
		break
	}

	if result.Width == 0 || result.Height == 0 {
		return ProbeResult{}, Wrap(ErrValidation, "mediatool", "probe", "no video stream in "+input, nil)
	}
	return result, nil
}

// parseRational converts ffprobe frame-rate fractions such as "30000/1001".
func parseRational(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" || value == "0/0" {
		return 0
	}
	num, den, found := strings.Cut(value, "/")
	n := parseFloat(num)
	if !found {
		return n
	}
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}

func parseFloat(value string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(value string) int64 {
	i, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return i
}
