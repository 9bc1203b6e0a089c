package looper

import (
	"log/slog"

	"github.com/akmonengine/looper/actor"
	"github.com/akmonengine/looper/track"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"
)

const DEFAULT_WORKERS = 1

type World struct {
	// List of all rigid bodies in the world
	Bodies []*actor.RigidBody
	// Gravity acceleration (m/s², or N/kg)
	Gravity  mgl64.Vec3
	Substeps int
	Workers  int

	// RecorderConfig is applied to every recorder attached from now on
	RecorderConfig track.Config
	Logger         *slog.Logger

	Events Events

	// at most one recorder per body, in attach order
	recorders *orderedmap.OrderedMap[*actor.RigidBody, *track.Recorder]
}

func NewWorld(gravity mgl64.Vec3) *World {
	return &World{
		Gravity:        gravity,
		Substeps:       1,
		Workers:        DEFAULT_WORKERS,
		RecorderConfig: track.DefaultConfig(),
		Logger:         slog.Default(),
		Events:         NewEvents(),
		recorders:      orderedmap.NewOrderedMap[*actor.RigidBody, *track.Recorder](),
	}
}

func (w *World) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}

func (w *World) registry() *orderedmap.OrderedMap[*actor.RigidBody, *track.Recorder] {
	if w.recorders == nil {
		w.recorders = orderedmap.NewOrderedMap[*actor.RigidBody, *track.Recorder]()
	}
	return w.recorders
}

// AddBody adds a rigid body to the world
func (w *World) AddBody(body *actor.RigidBody) {
	w.Bodies = append(w.Bodies, body)
}

// RemoveBody removes a rigid body from the world, detaching its recorder first
func (w *World) RemoveBody(body *actor.RigidBody) {
	w.DetachRecorder(body)

	k := -1
	for i, b := range w.Bodies {
		if b == body {
			k = i
			break
		}
	}

	if k != -1 {
		w.Bodies = append(w.Bodies[:k], w.Bodies[k+1:]...)
	}
}

// AttachRecorder returns the body's recorder, creating it on first use.
// A nil body gets no recorder.
func (w *World) AttachRecorder(body *actor.RigidBody) *track.Recorder {
	if body == nil {
		return nil
	}
	if r, ok := w.registry().Get(body); ok {
		return r
	}

	config := w.RecorderConfig
	if config.Logger == nil {
		config.Logger = w.logger()
	}
	r := track.NewRecorder(body, config)
	w.registry().Set(body, r)

	w.Events.observe(r)
	w.Events.emit(RecorderAttachEvent{Body: body, Recorder: r})
	w.logger().Debug("recorder attached", "body", body.Id)

	return r
}

// Recorder returns the recorder attached to body, if any
func (w *World) Recorder(body *actor.RigidBody) (*track.Recorder, bool) {
	return w.registry().Get(body)
}

// DetachRecorder restores the body through its recorder and drops the recorder
func (w *World) DetachRecorder(body *actor.RigidBody) bool {
	r, ok := w.registry().Get(body)
	if !ok {
		return false
	}

	r.Detach()
	w.registry().Delete(body)

	w.Events.forget(r)
	w.Events.emit(RecorderDetachEvent{Body: body, Recorder: r})
	w.logger().Debug("recorder detached", "body", body.Id)

	return true
}

// StartRecording attaches a recorder to body if needed and starts recording it
func (w *World) StartRecording(body *actor.RigidBody) *track.Recorder {
	r := w.AttachRecorder(body)
	if r == nil {
		return nil
	}

	r.StartRecording()
	w.Events.observe(r)
	w.Events.emit(RecordStartEvent{Body: body, Recorder: r})

	return r
}

// StopRecording stops the body's recording and starts its rewind
func (w *World) StopRecording(body *actor.RigidBody) bool {
	r, ok := w.registry().Get(body)
	if !ok {
		return false
	}

	r.StopRecording()
	w.Events.observe(r)
	w.Events.emit(RecordStopEvent{Body: body, Recorder: r})

	return true
}

// Recorders lists the attached recorders with their bodies, in attach order
func (w *World) Recorders() ([]*actor.RigidBody, []*track.Recorder) {
	registry := w.registry()
	bodies := make([]*actor.RigidBody, 0, registry.Len())
	recorders := make([]*track.Recorder, 0, registry.Len())

	for el := registry.Front(); el != nil; el = el.Next() {
		bodies = append(bodies, el.Key)
		recorders = append(recorders, el.Value)
	}
	return bodies, recorders
}

// Step advances the world by one fixed step: recorders tick first, then the
// bodies they left dynamic are integrated.
func (w *World) Step(dt float64) {
	w.Workers = max(DEFAULT_WORKERS, w.Workers)
	w.Substeps = max(1, w.Substeps)
	h := dt / float64(w.Substeps)

	bodies, recorders := w.Recorders()
	w.tick(dt, recorders)

	for range w.Substeps {
		w.integrate(h)
		w.update(h)
		w.trySleep(h)
	}

	w.Events.processRecorderEvents(bodies, recorders)
	w.Events.flush()
}

// tick advances every recorder; each one writes only its own body
func (w *World) tick(dt float64, recorders []*track.Recorder) {
	task(w.Workers, recorders, func(r *track.Recorder) {
		r.Tick(dt)
	})
}

func (w *World) integrate(h float64) {
	task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		body.Integrate(h, w.Gravity)
	})
}

func (w *World) update(h float64) {
	task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		body.Update(h)
	})
}

// trySleep sets the body to sleep if its velocity is lower than the threshold, for a given duration
// this method is too simple to use a task, it slows down in multiple goroutines
func (w *World) trySleep(h float64) {
	for _, body := range w.Bodies {
		body.TrySleep(h, 0.1, 0.05)
	}
}
