package track

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeebo/xxh3"
	"gopkg.in/yaml.v3"
)

// Track is the persisted, designer-editable state of a Recorder
type Track struct {
	Start         Keyframe   `yaml:"start"`
	Keyframes     []Keyframe `yaml:"keyframes"`
	LoopDuration  float64    `yaml:"loop_duration"`
	TrackbackRate int        `yaml:"trackback_rate"`
	FixedTrack    bool       `yaml:"fixed_track"`
}

// keyframeDoc is the on-disk shape of a Keyframe. Rotations are stored x, y, z, w.
type keyframeDoc struct {
	Position        [3]float64 `yaml:"position,flow"`
	Rotation        [4]float64 `yaml:"rotation,flow"`
	LinearVelocity  [3]float64 `yaml:"linear_velocity,flow"`
	AngularVelocity [3]float64 `yaml:"angular_velocity,flow"`
}

func (k Keyframe) MarshalYAML() (interface{}, error) {
	return keyframeDoc{
		Position:        k.position,
		Rotation:        [4]float64{k.rotation.V[0], k.rotation.V[1], k.rotation.V[2], k.rotation.W},
		LinearVelocity:  k.linearVelocity,
		AngularVelocity: k.angularVelocity,
	}, nil
}

// UnmarshalYAML goes through NewKeyframe, so hand-edited rotations are normalized
func (k *Keyframe) UnmarshalYAML(value *yaml.Node) error {
	doc := keyframeDoc{Rotation: [4]float64{0, 0, 0, 1}}
	if err := value.Decode(&doc); err != nil {
		return err
	}

	*k = NewKeyframe(
		doc.Position,
		mgl64.Quat{W: doc.Rotation[3], V: mgl64.Vec3{doc.Rotation[0], doc.Rotation[1], doc.Rotation[2]}},
		doc.LinearVelocity,
		doc.AngularVelocity,
	)
	return nil
}

// Track snapshots the recorder's persisted state
func (r *Recorder) Track() Track {
	return Track{
		Start:         r.start,
		Keyframes:     slices.Clone(r.keyframes),
		LoopDuration:  r.loopDuration,
		TrackbackRate: r.trackbackRate,
		FixedTrack:    r.useFixedTrack,
	}
}

// LoadTrack replaces the recorder's sequence with an authored one. Playback
// restarts forward from the first keyframe.
func (r *Recorder) LoadTrack(t Track) error {
	if t.TrackbackRate < 1 {
		return fmt.Errorf("load track: %w (got %d)", ErrInvalidTrackbackRate, t.TrackbackRate)
	}

	r.start = t.Start
	r.keyframes = slices.Clone(t.Keyframes)
	r.loopDuration = max(t.LoopDuration, 0)
	r.trackbackRate = t.TrackbackRate
	r.useFixedTrack = t.FixedTrack
	r.state = Forward
	r.cursor = 0
	r.elapsed = 0

	if !t.FixedTrack {
		// a live track restarts recording from the authored start pose
		r.start.applyTo(r.body, false)
		r.keyframes = r.keyframes[:0]
	}

	r.logger.Debug("track loaded", "keyframes", len(t.Keyframes), "fixed", t.FixedTrack)
	return nil
}

// Fingerprint hashes the encoded track; equal tracks have equal fingerprints
func (t Track) Fingerprint() (uint64, error) {
	var buf bytes.Buffer
	if err := WriteTrack(&buf, t); err != nil {
		return 0, err
	}
	return xxh3.Hash(buf.Bytes()), nil
}

func ReadTrack(r io.Reader) (Track, error) {
	t := Track{TrackbackRate: DEFAULT_TRACKBACK_RATE, Start: NewKeyframe(mgl64.Vec3{}, mgl64.QuatIdent(), mgl64.Vec3{}, mgl64.Vec3{})}

	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		return Track{}, fmt.Errorf("decode track: %w", err)
	}
	if t.TrackbackRate < 1 {
		return Track{}, fmt.Errorf("decode track: %w (got %d)", ErrInvalidTrackbackRate, t.TrackbackRate)
	}

	return t, nil
}

func WriteTrack(w io.Writer, t Track) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode track: %w", err)
	}
	return enc.Close()
}

func LoadTrackFile(path string) (Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Track{}, fmt.Errorf("track: load %s: %w", path, err)
	}

	t, err := ReadTrack(bytes.NewReader(data))
	if err != nil {
		return Track{}, fmt.Errorf("track: %s: %w", path, err)
	}
	return t, nil
}

func SaveTrackFile(path string, t Track) error {
	var buf bytes.Buffer
	if err := WriteTrack(&buf, t); err != nil {
		return fmt.Errorf("track: save %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("track: save %s: %w", path, err)
	}
	return nil
}
