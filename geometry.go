package hcpdf

import (
	"strconv"
	"strings"
)

// MaxDimension is the largest clip edge accepted, in CSS pixels.
// Chrome refuses textures larger than this.
const MaxDimension = 16384

// Clip is a fixed capture rectangle in CSS pixels.
type Clip struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ScreenshotGeometry is either a clip or a full-page capture.
type ScreenshotGeometry struct {
	Clip                  *Clip
	FullPage              bool
	CaptureBeyondViewport bool
}

// NewScreenshotGeometry derives the capture geometry from raw w and h values.
// Both must start with a positive integer for a clip; anything else
// captures the full scrollable page.
func NewScreenshotGeometry(w, h string) ScreenshotGeometry {
	width, okW := parseDimension(w)
	height, okH := parseDimension(h)
	if !okW || !okH {
		return ScreenshotGeometry{FullPage: true}
	}
	return ScreenshotGeometry{
		Clip:                  &Clip{X: 0, Y: 0, Width: width, Height: height},
		CaptureBeyondViewport: false,
	}
}

// IsClip reports whether a fixed clip is captured.
func (g ScreenshotGeometry) IsClip() bool {
	return g.Clip != nil
}

// parseDimension reads the leading integer of s, so "800px" is 800.
func parseDimension(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 1 || n > MaxDimension {
		return 0, false
	}
	return n, true
}
