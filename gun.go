package looper

import (
	"math"

	"github.com/akmonengine/looper/actor"
	"github.com/akmonengine/looper/track"
)

const DEFAULT_MAX_DISTANCE = 100.0

// Gun records whatever body sits under the crosshair while the trigger is held,
// and rewinds it once released.
type Gun struct {
	World       *World
	Camera      Camera
	MaxDistance float64

	target *actor.RigidBody
}

func NewGun(world *World, camera Camera) *Gun {
	return &Gun{
		World:       world,
		Camera:      camera,
		MaxDistance: DEFAULT_MAX_DISTANCE,
	}
}

// Press starts recording the body under the crosshair. A kinematic body is only
// a valid target when a recorder already drives it.
func (g *Gun) Press() *track.Recorder {
	if g.target != nil {
		g.Release()
	}

	maxDistance := g.MaxDistance
	if maxDistance <= 0 {
		maxDistance = DEFAULT_MAX_DISTANCE
	}
	origin, direction := g.Camera.CenterRay()
	hit, ok := g.World.Raycast(origin, direction, maxDistance)
	if !ok || hit.Body.BodyType != actor.BodyTypeDynamic {
		return nil
	}
	if _, owned := g.World.Recorder(hit.Body); hit.Body.IsKinematic && !owned {
		return nil
	}

	g.target = hit.Body
	return g.World.StartRecording(hit.Body)
}

// Release stops the current recording and lets it rewind
func (g *Gun) Release() bool {
	if g.target == nil {
		return false
	}

	body := g.target
	g.target = nil
	return g.World.StopRecording(body)
}

func (g *Gun) Target() *actor.RigidBody {
	return g.target
}

// DetachNearest detaches the recorder whose body appears closest to the
// crosshair, ignoring bodies behind the camera.
func (g *Gun) DetachNearest() bool {
	center := g.Camera.ScreenCenter()
	bodies, _ := g.World.Recorders()

	var nearest *actor.RigidBody
	best := math.Inf(1)
	for _, body := range bodies {
		screen, visible := g.Camera.WorldToScreen(body.Transform.Position)
		if !visible {
			continue
		}
		if d := screen.Sub(center).Len(); d < best {
			best = d
			nearest = body
		}
	}

	if nearest == nil {
		return false
	}
	if nearest == g.target {
		g.target = nil
	}
	return g.World.DetachRecorder(nearest)
}
