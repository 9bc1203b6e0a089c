package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// =============================================================================
// NewRigidBody Tests
// =============================================================================

func TestNewRigidBody_Dynamic(t *testing.T) {
	transform := Transform{
		Position: mgl64.Vec3{1, 2, 3},
	}
	sphere := &Sphere{Radius: 1.0}
	density := 2.0

	rb := NewRigidBody(transform, sphere, BodyTypeDynamic, density)

	if rb.BodyType != BodyTypeDynamic {
		t.Errorf("BodyType = %v, want BodyTypeDynamic", rb.BodyType)
	}
	if !vec3AlmostEqual(rb.Transform.Position, transform.Position, 1e-10) {
		t.Errorf("Transform.Position = %v, want %v", rb.Transform.Position, transform.Position)
	}
	if !vec3AlmostEqual(rb.PreviousTransform.Position, transform.Position, 1e-10) {
		t.Errorf("PreviousTransform.Position = %v, want %v", rb.PreviousTransform.Position, transform.Position)
	}

	// A zero quaternion is promoted to identity
	if !quatAlmostEqual(rb.Transform.Rotation, mgl64.QuatIdent(), 1e-10) {
		t.Errorf("Transform.Rotation = %v, want identity", rb.Transform.Rotation)
	}

	expectedMass := sphere.ComputeMass(density)
	if !almostEqual(rb.Material.GetMass(), expectedMass, 1e-10) {
		t.Errorf("Material.GetMass() = %v, want %v", rb.Material.GetMass(), expectedMass)
	}
	if rb.IsKinematic {
		t.Error("new body should not be kinematic")
	}
}

func TestNewRigidBody_Static(t *testing.T) {
	box := &Box{HalfExtents: mgl64.Vec3{2, 2, 2}}
	rb := NewRigidBody(Transform{Position: mgl64.Vec3{5, 10, 15}}, box, BodyTypeStatic, 1.5)

	if !math.IsInf(rb.Material.GetMass(), 1) {
		t.Errorf("Material.GetMass() = %v, want +Inf for static body", rb.Material.GetMass())
	}
	if rb.Material.Density != 0 {
		t.Errorf("Material.Density = %v, want 0 for static body", rb.Material.Density)
	}
}

// =============================================================================
// Integrate Tests
// =============================================================================

func TestIntegrate_Dynamic_NoGravity(t *testing.T) {
	rb := NewRigidBody(NewTransform(), &Sphere{Radius: 1.0}, BodyTypeDynamic, 1.0)
	rb.Velocity = mgl64.Vec3{1, 2, 3}

	rb.Integrate(0.1, mgl64.Vec3{})

	expectedVelocity := mgl64.Vec3{1, 2, 3}
	if !vec3AlmostEqual(rb.Velocity, expectedVelocity, 1e-10) {
		t.Errorf("Velocity = %v, want %v", rb.Velocity, expectedVelocity)
	}

	expectedPosition := mgl64.Vec3{0.1, 0.2, 0.3}
	if !vec3AlmostEqual(rb.Transform.Position, expectedPosition, 1e-10) {
		t.Errorf("Position = %v, want %v", rb.Transform.Position, expectedPosition)
	}
	if !vec3AlmostEqual(rb.PreviousTransform.Position, mgl64.Vec3{}, 1e-10) {
		t.Errorf("PreviousTransform.Position = %v, want origin", rb.PreviousTransform.Position)
	}
}

func TestIntegrate_Dynamic_MultipleSteps(t *testing.T) {
	rb := NewRigidBody(NewTransform(), &Sphere{Radius: 1.0}, BodyTypeDynamic, 1.0)
	gravity := mgl64.Vec3{0, -10, 0}

	for i := 0; i < 3; i++ {
		rb.Integrate(0.1, gravity)
	}

	// v: -1, -2, -3 ; p: -0.1, -0.3, -0.6
	if !vec3AlmostEqual(rb.Velocity, mgl64.Vec3{0, -3, 0}, 1e-9) {
		t.Errorf("Velocity after 3 steps = %v, want (0,-3,0)", rb.Velocity)
	}
	if !vec3AlmostEqual(rb.Transform.Position, mgl64.Vec3{0, -0.6, 0}, 1e-9) {
		t.Errorf("Position after 3 steps = %v, want (0,-0.6,0)", rb.Transform.Position)
	}
}

func TestIntegrate_SkippedBodies(t *testing.T) {
	tests := []struct {
		name  string
		setup func(rb *RigidBody)
		kind  BodyType
	}{
		{name: "static", kind: BodyTypeStatic, setup: func(rb *RigidBody) {}},
		{name: "kinematic", kind: BodyTypeDynamic, setup: func(rb *RigidBody) { rb.SetKinematic(true) }},
		{name: "sleeping", kind: BodyTypeDynamic, setup: func(rb *RigidBody) { rb.Sleep() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := NewRigidBody(Transform{Position: mgl64.Vec3{5, 10, 15}}, &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, tt.kind, 1.0)
			tt.setup(rb)
			rb.Velocity = mgl64.Vec3{1, 2, 3}
			initial := rb.Transform.Position

			rb.Integrate(0.1, mgl64.Vec3{0, -10, 0})
			rb.Update(0.1)

			if !vec3AlmostEqual(rb.Transform.Position, initial, 1e-10) {
				t.Errorf("body moved: Position = %v, want %v", rb.Transform.Position, initial)
			}
			if !vec3AlmostEqual(rb.Velocity, mgl64.Vec3{1, 2, 3}, 1e-10) {
				t.Errorf("velocity changed: %v", rb.Velocity)
			}
		})
	}
}

func TestIntegrate_AngularVelocity_RotatesBody(t *testing.T) {
	rb := NewRigidBody(NewTransform(), &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, BodyTypeDynamic, 1.0)
	rb.AngularVelocity = mgl64.Vec3{0, math.Pi, 0}

	for i := 0; i < 10; i++ {
		rb.Integrate(0.01, mgl64.Vec3{})
	}

	if quatAlmostEqual(rb.Transform.Rotation, mgl64.QuatIdent(), 1e-3) {
		t.Error("rotation should have changed")
	}
	if !almostEqual(rb.Transform.Rotation.Len(), 1.0, 1e-9) {
		t.Errorf("rotation length = %v, want 1", rb.Transform.Rotation.Len())
	}
}

func TestUpdate_DerivesVelocityFromDelta(t *testing.T) {
	rb := NewRigidBody(NewTransform(), &Sphere{Radius: 0.5}, BodyTypeDynamic, 1.0)
	rb.Velocity = mgl64.Vec3{2, 0, 0}

	rb.Integrate(0.5, mgl64.Vec3{})
	rb.Update(0.5)

	if !vec3AlmostEqual(rb.Velocity, mgl64.Vec3{2, 0, 0}, 1e-10) {
		t.Errorf("Velocity = %v, want (2,0,0)", rb.Velocity)
	}
}

// =============================================================================
// Sleep Tests
// =============================================================================

func TestTrySleep(t *testing.T) {
	rb := NewRigidBody(NewTransform(), &Sphere{Radius: 1.0}, BodyTypeDynamic, 1.0)
	rb.Velocity = mgl64.Vec3{0.01, 0, 0}

	rb.TrySleep(0.05, 0.1, 0.05)
	if rb.IsSleeping {
		t.Fatal("body should not sleep before the time threshold")
	}
	rb.TrySleep(0.05, 0.1, 0.05)
	if !rb.IsSleeping {
		t.Fatal("body should sleep after the time threshold")
	}
	if rb.Velocity.Len() != 0 {
		t.Errorf("Sleep should clear velocity, got %v", rb.Velocity)
	}
}

func TestTrySleep_KinematicNeverSleeps(t *testing.T) {
	rb := NewRigidBody(NewTransform(), &Sphere{Radius: 1.0}, BodyTypeDynamic, 1.0)
	rb.SetKinematic(true)

	for i := 0; i < 10; i++ {
		rb.TrySleep(0.1, 0.1, 0.05)
	}
	if rb.IsSleeping {
		t.Error("kinematic body should not be put to sleep")
	}
}

// =============================================================================
// Collaborator Tests
// =============================================================================

func TestSetPose_MovesBoundsAndWakes(t *testing.T) {
	rb := NewRigidBody(NewTransform(), &Sphere{Radius: 1.0}, BodyTypeDynamic, 1.0)
	rb.Sleep()

	rot := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	rb.SetPose(mgl64.Vec3{10, 0, 0}, rot)

	pos, gotRot := rb.Pose()
	if !vec3AlmostEqual(pos, mgl64.Vec3{10, 0, 0}, 1e-10) {
		t.Errorf("Pose position = %v, want (10,0,0)", pos)
	}
	if !quatAlmostEqual(gotRot, rot, 1e-10) {
		t.Errorf("Pose rotation = %v, want %v", gotRot, rot)
	}
	if rb.IsSleeping {
		t.Error("SetPose should wake the body")
	}
	if !rb.Shape.GetAABB().ContainsPoint(mgl64.Vec3{10, 0, 0}) {
		t.Errorf("AABB %v should follow the new pose", rb.Shape.GetAABB())
	}

	// The teleport must not be read as velocity
	rb.Integrate(0.1, mgl64.Vec3{})
	rb.Update(0.1)
	if rb.Velocity.Len() > 1e-9 {
		t.Errorf("Velocity after teleport = %v, want zero", rb.Velocity)
	}
}

func TestSetKinematic(t *testing.T) {
	rb := NewRigidBody(NewTransform(), &Sphere{Radius: 1.0}, BodyTypeDynamic, 1.0)
	rb.AddForce(mgl64.Vec3{1, 0, 0})

	rb.SetKinematic(true)
	if !rb.Kinematic() {
		t.Fatal("Kinematic() = false after SetKinematic(true)")
	}

	rb.SetKinematic(false)
	rb.Integrate(0.1, mgl64.Vec3{})
	if rb.Velocity.Len() != 0 {
		t.Errorf("forces queued before SetKinematic should be dropped, Velocity = %v", rb.Velocity)
	}

	static := NewRigidBody(NewTransform(), &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, BodyTypeStatic, 0)
	static.SetKinematic(true)
	if static.Kinematic() {
		t.Error("static bodies cannot become kinematic")
	}
}

func TestSetVelocities(t *testing.T) {
	rb := NewRigidBody(NewTransform(), &Sphere{Radius: 1.0}, BodyTypeDynamic, 1.0)
	rb.Sleep()

	rb.SetVelocities(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 2, 0})

	lin, ang := rb.Velocities()
	if !vec3AlmostEqual(lin, mgl64.Vec3{1, 0, 0}, 1e-10) || !vec3AlmostEqual(ang, mgl64.Vec3{0, 2, 0}, 1e-10) {
		t.Errorf("Velocities() = %v, %v", lin, ang)
	}
	if rb.IsSleeping {
		t.Error("non-zero velocities should wake the body")
	}
}

// Helper function to compare floats with epsilon tolerance
func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// Helper function to compare Vec3 with epsilon tolerance
func vec3AlmostEqual(a, b mgl64.Vec3, epsilon float64) bool {
	return almostEqual(a.X(), b.X(), epsilon) &&
		almostEqual(a.Y(), b.Y(), epsilon) &&
		almostEqual(a.Z(), b.Z(), epsilon)
}

// Helper function to compare quaternions with epsilon tolerance
func quatAlmostEqual(a, b mgl64.Quat, epsilon float64) bool {
	return almostEqual(a.W, b.W, epsilon) && vec3AlmostEqual(a.V, b.V, epsilon)
}
