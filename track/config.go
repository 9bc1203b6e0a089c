package track

import (
	"errors"
	"log/slog"
)

const (
	DEFAULT_TRACKBACK_RATE      = 1
	DEFAULT_STILLNESS_THRESHOLD = 1e-3
)

// ErrInvalidTrackbackRate is returned when a trackback rate below 1 is supplied
var ErrInvalidTrackbackRate = errors.New("track: trackback rate must be at least 1")

// Config holds the designer-tunable settings of a Recorder
type Config struct {
	// Keyframes skipped per reverse step
	TrackbackRate int `yaml:"trackback_rate"`
	// Speeds (m/s and rad/s) at or below this are collapsed on reverse
	StillnessThreshold float64 `yaml:"stillness_threshold"`
	// Seconds a live loop records before reversing by itself, 0 for unbounded
	LoopDuration float64 `yaml:"loop_duration"`

	Logger *slog.Logger `yaml:"-"`
}

func DefaultConfig() Config {
	return Config{
		TrackbackRate:      DEFAULT_TRACKBACK_RATE,
		StillnessThreshold: DEFAULT_STILLNESS_THRESHOLD,
	}
}

// withDefaults fills zero values, leaving explicit settings untouched
func (c Config) withDefaults() Config {
	if c.TrackbackRate < 1 {
		c.TrackbackRate = DEFAULT_TRACKBACK_RATE
	}
	if c.StillnessThreshold < 0 {
		c.StillnessThreshold = 0
	}
	if c.LoopDuration < 0 {
		c.LoopDuration = 0
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
