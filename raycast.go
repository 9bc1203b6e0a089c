package looper

import (
	"math"

	"github.com/akmonengine/looper/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// RaycastHit is the first body a ray enters
type RaycastHit struct {
	Body     *actor.RigidBody
	Distance float64
	Point    mgl64.Vec3
}

// Raycast returns the closest body whose bounds the ray enters within maxDistance.
// Any body blocks the ray, static ones included; callers filter the hit themselves.
func (w *World) Raycast(origin, direction mgl64.Vec3, maxDistance float64) (RaycastHit, bool) {
	length := direction.Len()
	if length < 1e-12 || math.IsNaN(length) || maxDistance <= 0 {
		return RaycastHit{}, false
	}
	direction = direction.Mul(1.0 / length)

	var hit RaycastHit
	found := false
	for _, body := range w.Bodies {
		distance, ok := body.Shape.GetAABB().IntersectRay(origin, direction)
		if !ok || distance > maxDistance {
			continue
		}
		if !found || distance < hit.Distance {
			hit = RaycastHit{Body: body, Distance: distance}
			found = true
		}
	}

	if found {
		hit.Point = origin.Add(direction.Mul(hit.Distance))
	}
	return hit, found
}
