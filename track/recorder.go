package track

import (
	"log/slog"
	"slices"
)

// loopEpsilon absorbs the rounding of summed fixed steps
const loopEpsilon = 1e-9

// State is the playback direction of a Recorder
type State uint8

const (
	// Forward either records the body live or, on a fixed track, replays it
	Forward State = iota
	// Reverse scrubs the recorded sequence back towards the start keyframe
	Reverse
)

func (s State) String() string {
	switch s {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return "unknown"
	}
}

// Recorder records a body's motion once per fixed step and plays it back in
// reverse. While recording the external simulation owns the body; during
// reverse and fixed-track replay the Recorder owns it and keeps it kinematic.
//
// A live recording started by StartRecording runs until StopRecording, which
// freezes it into a fixed track. A live loop (positive loop duration, no fixed
// track) reverses by itself once the duration is recorded, and is re-recorded
// on every forward pass.
//
// A Recorder is not safe for concurrent use: StartRecording, StopRecording and
// Tick must be serialized by the caller.
type Recorder struct {
	body Body

	start     Keyframe
	keyframes []Keyframe
	cursor    int

	trackbackRate      int
	stillnessThreshold float64
	useFixedTrack      bool

	state        State
	elapsed      float64
	loopDuration float64

	originalKinematic bool
	detached          bool

	logger *slog.Logger
}

// NewRecorder attaches a recorder to body. The body's kinematic flag is
// remembered so Detach can hand it back untouched.
func NewRecorder(body Body, config Config) *Recorder {
	config = config.withDefaults()

	r := &Recorder{
		body:               body,
		trackbackRate:      config.TrackbackRate,
		stillnessThreshold: config.StillnessThreshold,
		loopDuration:       config.LoopDuration,
		originalKinematic:  body.Kinematic(),
		state:              Forward,
		logger:             config.Logger,
	}
	r.start = r.sample()

	return r
}

// StartRecording begins a fresh live recording from the body's current state.
// Calling it during a reverse cycle abandons that cycle.
func (r *Recorder) StartRecording() {
	r.state = Forward
	r.keyframes = r.keyframes[:0]
	r.cursor = 0
	r.elapsed = 0
	r.loopDuration = 0
	r.useFixedTrack = false

	if r.body.Kinematic() {
		r.body.SetKinematic(false)
	}
	r.start = r.sample()

	r.logger.Debug("recording started", "position", r.start.Position())
}

// StopRecording freezes the recorded sequence as a fixed track and starts
// rewinding it from its end.
func (r *Recorder) StopRecording() {
	r.useFixedTrack = true
	r.loopDuration = r.elapsed
	r.state = Reverse

	r.logger.Debug("recording stopped", "keyframes", len(r.keyframes), "duration", r.loopDuration)
}

// Tick advances the state machine by one fixed step of dt seconds
func (r *Recorder) Tick(dt float64) {
	if r.detached {
		return
	}

	switch r.state {
	case Forward:
		if r.useFixedTrack {
			r.replayForward()
		} else {
			r.record(dt)
		}
	case Reverse:
		r.stepBack()
	}
}

func (r *Recorder) record(dt float64) {
	if r.body.Kinematic() {
		r.body.SetKinematic(false)
	}

	r.elapsed += dt
	r.keyframes = append(r.keyframes, r.sample())
	r.cursor = len(r.keyframes)

	if r.loopDuration > 0 && r.elapsed >= r.loopDuration-loopEpsilon {
		r.state = Reverse
		r.logger.Debug("live loop reversing", "keyframes", len(r.keyframes), "elapsed", r.elapsed)
	}
}

func (r *Recorder) replayForward() {
	if r.cursor < len(r.keyframes) {
		r.keyframes[r.cursor].applyTo(r.body, true)
		r.cursor++
	}

	if r.cursor >= len(r.keyframes) {
		r.state = Reverse
		r.logger.Debug("fixed track reached its end", "keyframes", len(r.keyframes))
	}
}

func (r *Recorder) stepBack() {
	if r.cursor <= r.trackbackRate {
		r.start.applyTo(r.body, false)
		r.state = Forward
		r.cursor = 0
		if !r.useFixedTrack {
			r.keyframes = r.keyframes[:0]
			r.elapsed = 0
		}

		r.logger.Debug("trackback finished", "fixed", r.useFixedTrack)
		return
	}

	r.cursor -= r.trackbackRate
	for r.cursor > 0 && r.keyframes[r.cursor].IsStill(r.stillnessThreshold) {
		r.cursor--
	}

	r.keyframes[r.cursor].applyTo(r.body, true)
}

// Detach releases the body: it is left at the current keyframe with the
// kinematic flag it had before this recorder touched it. Later ticks are ignored.
func (r *Recorder) Detach() {
	if r.detached {
		return
	}
	r.detached = true

	if len(r.keyframes) == 0 {
		r.body.SetKinematic(r.originalKinematic)
		r.logger.Debug("recorder detached without keyframes")
		return
	}

	index := min(r.cursor, len(r.keyframes)-1)
	r.keyframes[index].applyTo(r.body, r.originalKinematic)

	r.logger.Debug("recorder detached", "cursor", index)
}

// sample reads the body, logging when its live state was not usable as is
func (r *Recorder) sample() Keyframe {
	if !finiteState(r.body) {
		r.logger.Warn("non-finite body state sampled, substituting safe defaults")
	}
	return SampleKeyframe(r.body)
}

func (r *Recorder) Body() Body              { return r.body }
func (r *Recorder) State() State            { return r.state }
func (r *Recorder) Cursor() int             { return r.cursor }
func (r *Recorder) Len() int                { return len(r.keyframes) }
func (r *Recorder) Start() Keyframe         { return r.start }
func (r *Recorder) FixedTrack() bool        { return r.useFixedTrack }
func (r *Recorder) Elapsed() float64        { return r.elapsed }
func (r *Recorder) LoopDuration() float64   { return r.loopDuration }
func (r *Recorder) TrackbackRate() int      { return r.trackbackRate }
func (r *Recorder) OriginalKinematic() bool { return r.originalKinematic }
func (r *Recorder) Detached() bool          { return r.detached }

// Keyframes returns a copy of the recorded sequence, oldest first
func (r *Recorder) Keyframes() []Keyframe {
	return slices.Clone(r.keyframes)
}

// SetTrackbackRate changes how many keyframes each reverse step skips
func (r *Recorder) SetTrackbackRate(rate int) error {
	if rate < 1 {
		return ErrInvalidTrackbackRate
	}
	r.trackbackRate = rate
	return nil
}
