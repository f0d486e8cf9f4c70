package scpi

import (
	"log/slog"
	"strings"
)

// ColorMode selects the background color of the captured image. Every
// vendor command template takes it in some form (BCKG, INKSaver, color
// scheme, invert).
type ColorMode int

const (
	ColorWhite ColorMode = iota // white background, best for printing
	ColorBlack                  // scope's native look
)

func (c ColorMode) String() string {
	if c == ColorBlack {
		return "BLACK"
	}
	return "WHITE"
}

// ParseColorMode maps a configuration string to a ColorMode. Unknown
// values are coerced to WHITE with a warning; a bad color is never a
// reason to abort a capture.
func ParseColorMode(s string) ColorMode {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WHITE", "":
		return ColorWhite
	case "BLACK":
		return ColorBlack
	default:
		slog.Warn("unknown display color, defaulting to WHITE", "color", s)
		return ColorWhite
	}
}
