package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces and gravity
	// They have finite mass and can move freely, unless kinematic
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., ground, walls)
	BodyTypeStatic
)

type Material struct {
	Density float64
	mass    float64

	LinearDamping  float64 // 0.0 - 1.0, typical: 0.01
	AngularDamping float64 // 0.0 - 1.0, typical: 0.05
}

func (material Material) GetMass() float64 {
	return material.mass
}

// RigidBody represents a rigid body in the simulation.
// A kinematic body is skipped by the integrator: only explicit pose writes move it.
type RigidBody struct {
	Id interface{}

	// Spatial properties
	PreviousTransform Transform
	Transform         Transform

	// Linear motion
	Velocity mgl64.Vec3 // Linear velocity (m/s)

	// Angular motion
	AngularVelocity     mgl64.Vec3 // rad/s
	InertiaLocal        mgl64.Mat3
	InverseInertiaLocal mgl64.Mat3

	accumulatedForce  mgl64.Vec3
	accumulatedTorque mgl64.Vec3

	IsKinematic bool
	IsSleeping  bool
	SleepTimer  float64

	// Physical properties
	Material Material
	BodyType BodyType // Dynamic or Static

	Shape ShapeInterface
}

// NewRigidBody creates a new rigid body with the given properties
// density is used to calculate mass for dynamic bodies (ignored for static)
func NewRigidBody(transform Transform, shape ShapeInterface, bodyType BodyType, density float64) *RigidBody {
	if transform.Rotation.Len() == 0 {
		transform.Rotation = mgl64.QuatIdent()
	}
	transform.InverseRotation = transform.Rotation.Inverse()

	rb := &RigidBody{
		PreviousTransform: transform,
		Transform:         transform,
		Shape:             shape,
		BodyType:          bodyType,
	}

	if bodyType == BodyTypeStatic {
		rb.Material = Material{mass: math.Inf(1)}
	} else {
		rb.Material = Material{
			Density: density,
			mass:    shape.ComputeMass(density),
		}
	}

	rb.InertiaLocal = shape.ComputeInertia(rb.Material.mass)
	rb.InverseInertiaLocal = rb.InertiaLocal.Inv()
	rb.Shape.ComputeAABB(rb.Transform)

	return rb
}

// simulated reports whether the integrator owns this body for the current step
func (rb *RigidBody) simulated() bool {
	return rb.BodyType != BodyTypeStatic && !rb.IsKinematic && !rb.IsSleeping
}

func (rb *RigidBody) TrySleep(dt float64, timethreshold float64, velocityThreshold float64) {
	if rb.BodyType == BodyTypeStatic || rb.IsKinematic {
		return
	}

	if rb.Velocity.Len() < velocityThreshold && rb.AngularVelocity.Len() < velocityThreshold {
		rb.SleepTimer += dt
		if rb.SleepTimer >= timethreshold {
			rb.Sleep()
		}
	} else {
		rb.Awake()
	}
}

func (rb *RigidBody) Sleep() {
	rb.IsSleeping = true
	rb.SleepTimer = 0.0

	rb.Shape.ComputeAABB(rb.Transform)
	rb.ClearForces()
	rb.Velocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
}

func (rb *RigidBody) Awake() {
	rb.IsSleeping = false
	rb.SleepTimer = 0.0
}

func (rb *RigidBody) Integrate(dt float64, gravity mgl64.Vec3) {
	if !rb.simulated() {
		return
	}

	rb.PreviousTransform.Position = rb.Transform.Position
	rb.PreviousTransform.Rotation = rb.Transform.Rotation

	// linear
	forces := gravity.Mul(dt)
	forces = forces.Add(rb.accumulatedForce.Mul(1.0 / rb.Material.GetMass()))
	rb.Velocity = rb.Velocity.Add(forces)
	rb.Velocity = rb.Velocity.Mul(math.Exp(-rb.Material.LinearDamping * dt))
	rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt))

	// angular
	if dt > 0 {
		torques := rb.accumulatedTorque.Mul(1.0 / dt)
		angularAccel := rb.GetInverseInertiaWorld().Mul3x1(torques)
		rb.AngularVelocity = rb.AngularVelocity.Add(angularAccel.Mul(dt))
	}
	rb.AngularVelocity = rb.AngularVelocity.Mul(math.Exp(-rb.Material.AngularDamping * dt))

	omegaQuat := mgl64.Quat{V: rb.AngularVelocity, W: 0}
	qDot := omegaQuat.Mul(rb.Transform.Rotation).Scale(0.5)
	rb.Transform.Rotation = rb.Transform.Rotation.Add(qDot.Scale(dt)).Normalize()
	rb.Transform.InverseRotation = rb.Transform.Rotation.Inverse()

	rb.Shape.ComputeAABB(rb.Transform)
	rb.ClearForces()
}

// Update derives the velocities from the integrated pose delta.
func (rb *RigidBody) Update(dt float64) {
	if !rb.simulated() || dt <= 0 {
		return
	}

	rb.Velocity = rb.Transform.Position.Sub(rb.PreviousTransform.Position).Mul(1.0 / dt)
	qDelta := rb.Transform.Rotation.Mul(rb.PreviousTransform.Rotation.Conjugate())
	qDelta = qDelta.Normalize()
	if qDelta.W >= 0.0 {
		rb.AngularVelocity = qDelta.V.Mul(2.0 / dt)
	} else {
		rb.AngularVelocity = qDelta.V.Mul(-2.0 / dt)
	}
}

// AddForce in 1000N (1000 * kg⋅m/s²)
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.BodyType != BodyTypeStatic {
		rb.Awake()

		rb.accumulatedForce = rb.accumulatedForce.Add(force.Mul(1000))
	}
}

// AddTorque in 1000N⋅m
func (rb *RigidBody) AddTorque(torque mgl64.Vec3) {
	if rb.BodyType != BodyTypeStatic {
		rb.Awake()

		rb.accumulatedTorque = rb.accumulatedTorque.Add(torque.Mul(1000))
	}
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{0, 0, 0}
	rb.accumulatedTorque = mgl64.Vec3{0, 0, 0}
}

// GetInverseInertiaWorld returns R * I_local^(-1) * R^T
func (rb *RigidBody) GetInverseInertiaWorld() mgl64.Mat3 {
	if rb.BodyType == BodyTypeStatic {
		return mgl64.Mat3{}
	}

	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InverseInertiaLocal).Mul3(R.Transpose())
}

// Pose returns the current position and orientation
func (rb *RigidBody) Pose() (mgl64.Vec3, mgl64.Quat) {
	return rb.Transform.Position, rb.Transform.Rotation
}

// Velocities returns the current linear and angular velocities
func (rb *RigidBody) Velocities() (mgl64.Vec3, mgl64.Vec3) {
	return rb.Velocity, rb.AngularVelocity
}

func (rb *RigidBody) Kinematic() bool {
	return rb.IsKinematic
}

// SetPose teleports the body. The previous transform follows, so the next
// Update does not read the jump as velocity.
func (rb *RigidBody) SetPose(position mgl64.Vec3, rotation mgl64.Quat) {
	rb.Transform.Position = position
	rb.Transform.Rotation = rotation
	rb.Transform.InverseRotation = rotation.Inverse()
	rb.PreviousTransform = rb.Transform

	rb.Shape.ComputeAABB(rb.Transform)
	rb.Awake()
}

// SetKinematic switches the body between integrator-driven and pose-driven.
// Pending forces are dropped either way.
func (rb *RigidBody) SetKinematic(kinematic bool) {
	if rb.BodyType == BodyTypeStatic {
		return
	}

	rb.IsKinematic = kinematic
	rb.ClearForces()
	rb.Awake()
}

func (rb *RigidBody) SetVelocities(linear, angular mgl64.Vec3) {
	rb.Velocity = linear
	rb.AngularVelocity = angular
	if linear.Len() > 0 || angular.Len() > 0 {
		rb.Awake()
	}
}
