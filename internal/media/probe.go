// Package media implements the ffmpeg-backed adapters for the render
// pipeline: source probing and decoding, still-frame extraction, and the
// realtime VP9 encode session.
package media

import (
	"encoding/json"
	"fmt"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/amytsuki/highlight-hero-creator/internal/domain/entity"
)

// Metadata is the probed description of a video file.
type Metadata struct {
	Duration float64
	Width    int
	Height   int
}

type probeFormat struct {
	Duration string `json:"duration"`
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type probeResult struct {
	Format  probeFormat   `json:"format"`
	Streams []probeStream `json:"streams"`
}

// ProbeFile reads duration and intrinsic dimensions from a video file.
func ProbeFile(path string) (Metadata, error) {
	raw, err := ffmpeg.Probe(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("probe %s: %v: %w", path, err, entity.ErrSourceLoad)
	}

	var res probeResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return Metadata{}, fmt.Errorf("parse probe output: %v: %w", err, entity.ErrSourceLoad)
	}

	duration, err := strconv.ParseFloat(res.Format.Duration, 64)
	if err != nil {
		return Metadata{}, fmt.Errorf("parse duration %q: %v: %w", res.Format.Duration, err, entity.ErrSourceLoad)
	}

	for _, st := range res.Streams {
		if st.CodecType == "video" && st.Width > 0 && st.Height > 0 {
			return Metadata{Duration: duration, Width: st.Width, Height: st.Height}, nil
		}
	}
	return Metadata{}, fmt.Errorf("no video stream in %s: %w", path, entity.ErrSourceLoad)
}
