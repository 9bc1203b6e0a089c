package track

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MinRotationLength is the quaternion magnitude below which a rotation is
// considered degenerate and replaced by identity.
const MinRotationLength = 1e-4

// Body is the physics body a Recorder samples and drives.
// Pose writes on a kinematic body bypass the integrator.
type Body interface {
	Pose() (mgl64.Vec3, mgl64.Quat)
	Velocities() (linear, angular mgl64.Vec3)
	Kinematic() bool

	SetPose(position mgl64.Vec3, rotation mgl64.Quat)
	SetKinematic(kinematic bool)
	SetVelocities(linear, angular mgl64.Vec3)
}

// Keyframe is a snapshot of a body's pose and velocities at one fixed step.
// It is immutable once built; the rotation is always a unit quaternion.
type Keyframe struct {
	position        mgl64.Vec3
	rotation        mgl64.Quat
	linearVelocity  mgl64.Vec3
	angularVelocity mgl64.Vec3
}

// NewKeyframe builds a keyframe. Degenerate or non-finite rotations become
// identity and non-finite velocities become zero.
func NewKeyframe(position mgl64.Vec3, rotation mgl64.Quat, linear, angular mgl64.Vec3) Keyframe {
	return Keyframe{
		position:        position,
		rotation:        NormalizeRotation(rotation),
		linearVelocity:  finiteOrZero(linear),
		angularVelocity: finiteOrZero(angular),
	}
}

// SampleKeyframe captures the live state of body.
func SampleKeyframe(body Body) Keyframe {
	position, rotation := body.Pose()
	linear, angular := body.Velocities()

	return NewKeyframe(position, rotation, linear, angular)
}

func (k Keyframe) Position() mgl64.Vec3        { return k.position }
func (k Keyframe) Rotation() mgl64.Quat        { return k.rotation }
func (k Keyframe) LinearVelocity() mgl64.Vec3  { return k.linearVelocity }
func (k Keyframe) AngularVelocity() mgl64.Vec3 { return k.angularVelocity }

// IsStill reports whether both speeds are at or below threshold
func (k Keyframe) IsStill(threshold float64) bool {
	return k.linearVelocity.Len() <= threshold && k.angularVelocity.Len() <= threshold
}

// applyTo writes the keyframe into body. The kinematic flag goes first so a
// dynamic body never integrates a half-written state.
func (k Keyframe) applyTo(body Body, kinematic bool) {
	body.SetKinematic(kinematic)
	body.SetPose(k.position, k.rotation)
	body.SetVelocities(k.linearVelocity, k.angularVelocity)
}

// NormalizeRotation returns q scaled to unit length, or identity when q is
// non-finite or shorter than MinRotationLength.
func NormalizeRotation(q mgl64.Quat) mgl64.Quat {
	if !isFinite(q.W) || !isFinite(q.V[0]) || !isFinite(q.V[1]) || !isFinite(q.V[2]) {
		return mgl64.QuatIdent()
	}

	length := q.Len()
	if !isFinite(length) || length <= MinRotationLength {
		return mgl64.QuatIdent()
	}
	if math.Abs(length-1) < 1e-14 {
		return q
	}

	return mgl64.Quat{W: q.W / length, V: q.V.Mul(1.0 / length)}
}

func finiteOrZero(v mgl64.Vec3) mgl64.Vec3 {
	if !isFinite(v[0]) || !isFinite(v[1]) || !isFinite(v[2]) {
		return mgl64.Vec3{}
	}
	return v
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// finiteState reports whether the body currently exposes a usable state
func finiteState(body Body) bool {
	position, rotation := body.Pose()
	linear, angular := body.Velocities()

	for _, v := range []mgl64.Vec3{position, rotation.V, linear, angular} {
		if !isFinite(v[0]) || !isFinite(v[1]) || !isFinite(v[2]) {
			return false
		}
	}
	return isFinite(rotation.W) && rotation.Len() > MinRotationLength
}
