package looper

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Camera is the player's first-person view, used to aim and to rank bodies by
// how close to the crosshair they appear.
type Camera struct {
	Position mgl64.Vec3
	Forward  mgl64.Vec3
	Up       mgl64.Vec3
	// Vertical field of view, in degrees
	FovY float64

	Width, Height int
	Near, Far     float64
}

func NewCamera(position, forward mgl64.Vec3, width, height int) Camera {
	return Camera{
		Position: position,
		Forward:  forward,
		Up:       mgl64.Vec3{0, 1, 0},
		FovY:     60,
		Width:    width,
		Height:   height,
		Near:     0.1,
		Far:      1000,
	}
}

func (c Camera) forward() mgl64.Vec3 {
	if c.Forward.Len() == 0 {
		return mgl64.Vec3{0, 0, -1}
	}
	return c.Forward.Normalize()
}

func (c Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Position.Add(c.forward()), c.Up)
}

func (c Camera) Projection() mgl64.Mat4 {
	aspect := 1.0
	if c.Height > 0 {
		aspect = float64(c.Width) / float64(c.Height)
	}
	return mgl64.Perspective(mgl64.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// CenterRay is the ray through the middle of the screen
func (c Camera) CenterRay() (origin, direction mgl64.Vec3) {
	return c.Position, c.forward()
}

func (c Camera) ScreenCenter() mgl64.Vec2 {
	return mgl64.Vec2{float64(c.Width) / 2, float64(c.Height) / 2}
}

// WorldToScreen projects p to window coordinates (origin bottom-left).
// Points behind the camera have no projection.
func (c Camera) WorldToScreen(p mgl64.Vec3) (mgl64.Vec2, bool) {
	view := c.View()
	if view.Mul4x1(p.Vec4(1)).Z() >= 0 {
		return mgl64.Vec2{}, false
	}

	win := mgl64.Project(p, view, c.Projection(), 0, 0, c.Width, c.Height)
	return win.Vec2(), true
}
