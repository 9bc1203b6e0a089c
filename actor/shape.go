package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeInterface is the volume a body occupies. It drives mass, inertia and
// the bounds used by ray picking.
type ShapeInterface interface {
	// ComputeAABB caches the axis-aligned bounding box at the given transform
	ComputeAABB(transform Transform)
	GetAABB() AABB
	ComputeMass(density float64) float64
	ComputeInertia(mass float64) mgl64.Mat3
}

// Box represents an oriented box, defined by its half-extents
type Box struct {
	HalfExtents mgl64.Vec3
	aabb        AABB
}

func (b *Box) ComputeAABB(transform Transform) {
	h := b.HalfExtents
	// |R| * h gives the world half-size of a rotated box
	R := transform.Rotation.Mat4().Mat3()
	var extent mgl64.Vec3
	for row := 0; row < 3; row++ {
		extent[row] = math.Abs(R.At(row, 0))*h.X() +
			math.Abs(R.At(row, 1))*h.Y() +
			math.Abs(R.At(row, 2))*h.Z()
	}

	b.aabb = AABB{
		Min: transform.Position.Sub(extent),
		Max: transform.Position.Add(extent),
	}
}

func (b *Box) GetAABB() AABB {
	return b.aabb
}

// ComputeMass: volume = 8 * hx * hy * hz
func (b *Box) ComputeMass(density float64) float64 {
	volume := 8.0 * b.HalfExtents.X() * b.HalfExtents.Y() * b.HalfExtents.Z()

	return density * volume
}

func (b *Box) ComputeInertia(mass float64) mgl64.Mat3 {
	x := b.HalfExtents.X() * 2
	y := b.HalfExtents.Y() * 2
	z := b.HalfExtents.Z() * 2

	// I = (m/12) * (d1² + d2²)
	factor := mass / 12.0
	ix := factor * (y*y + z*z)
	iy := factor * (x*x + z*z)
	iz := factor * (x*x + y*y)

	return mgl64.Mat3{
		ix, 0, 0,
		0, iy, 0,
		0, 0, iz,
	}
}

// Sphere represents a spherical shape
type Sphere struct {
	Radius float64
	aabb   AABB
}

// ComputeAABB: a sphere's bounds ignore rotation
func (s *Sphere) ComputeAABB(transform Transform) {
	radiusVec := mgl64.Vec3{s.Radius, s.Radius, s.Radius}

	s.aabb = AABB{
		Min: transform.Position.Sub(radiusVec),
		Max: transform.Position.Add(radiusVec),
	}
}

func (s *Sphere) GetAABB() AABB {
	return s.aabb
}

// ComputeMass: volume = (4/3) * π * r³
func (s *Sphere) ComputeMass(density float64) float64 {
	volume := (4.0 / 3.0) * math.Pi * math.Pow(s.Radius, 3)

	return density * volume
}

// ComputeInertia: I = (2/5) * m * r² on every axis
func (s *Sphere) ComputeInertia(mass float64) mgl64.Mat3 {
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius

	return mgl64.Mat3{
		i, 0, 0,
		0, i, 0,
		0, 0, i,
	}
}
