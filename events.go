package looper

import (
	"github.com/akmonengine/looper/actor"
	"github.com/akmonengine/looper/track"
)

const (
	RECORDER_ATTACH EventType = iota
	RECORDER_DETACH
	RECORD_START
	RECORD_STOP
	REVERSE_START
	LOOP_COMPLETE
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Registry events
type RecorderAttachEvent struct {
	Body     *actor.RigidBody
	Recorder *track.Recorder
}

func (e RecorderAttachEvent) Type() EventType { return RECORDER_ATTACH }

type RecorderDetachEvent struct {
	Body     *actor.RigidBody
	Recorder *track.Recorder
}

func (e RecorderDetachEvent) Type() EventType { return RECORDER_DETACH }

// Controller events
type RecordStartEvent struct {
	Body     *actor.RigidBody
	Recorder *track.Recorder
}

func (e RecordStartEvent) Type() EventType { return RECORD_START }

type RecordStopEvent struct {
	Body     *actor.RigidBody
	Recorder *track.Recorder
}

func (e RecordStopEvent) Type() EventType { return RECORD_STOP }

// Playback events, detected from state changes across a step
type ReverseStartEvent struct {
	Body     *actor.RigidBody
	Recorder *track.Recorder
}

func (e ReverseStartEvent) Type() EventType { return REVERSE_START }

type LoopCompleteEvent struct {
	Body     *actor.RigidBody
	Recorder *track.Recorder
}

func (e LoopCompleteEvent) Type() EventType { return LOOP_COMPLETE }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Last observed state per recorder, for Reverse/Forward edge detection
	recorderStates map[*track.Recorder]track.State
}

func NewEvents() Events {
	return Events{
		listeners:      make(map[EventType][]EventListener),
		buffer:         make([]Event, 0, 64),
		recorderStates: make(map[*track.Recorder]track.State),
	}
}

// init makes the zero value usable
func (e *Events) init() {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	if e.recorderStates == nil {
		e.recorderStates = make(map[*track.Recorder]track.State)
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.init()
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

func (e *Events) emit(event Event) {
	e.buffer = append(e.buffer, event)
}

// observe takes r's current state as the reference for the next step, so a
// transition caused by a controller call is not reported as playback
func (e *Events) observe(r *track.Recorder) {
	e.init()
	e.recorderStates[r] = r.State()
}

func (e *Events) forget(r *track.Recorder) {
	delete(e.recorderStates, r)
}

// processRecorderEvents compares each recorder's state with the last step
func (e *Events) processRecorderEvents(bodies []*actor.RigidBody, recorders []*track.Recorder) {
	e.init()

	for i, r := range recorders {
		tracked, exists := e.recorderStates[r]
		current := r.State()
		e.recorderStates[r] = current
		if !exists || tracked == current {
			continue
		}

		if current == track.Reverse {
			e.emit(ReverseStartEvent{Body: bodies[i], Recorder: r})
		} else {
			e.emit(LoopCompleteEvent{Body: bodies[i], Recorder: r})
		}
	}
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
