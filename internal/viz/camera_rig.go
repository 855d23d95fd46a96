package viz

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

const (
	maxPitch = math.Pi/2 - 0.05
	minZoom  = 0.2
	maxZoom  = 8
)

// springAxis eases one camera parameter toward its target.
type springAxis struct {
	pos, vel, target float64
}

func (a *springAxis) step(s harmonica.Spring) {
	a.pos, a.vel = s.Update(a.pos, a.vel, a.target)
}

// CameraRig smooths user camera input with critically damped springs and
// writes the eased values into Camera on every Update.
type CameraRig struct {
	Camera *Camera

	spring   harmonica.Spring
	baseDist float32
	yaw      springAxis
	pitch    springAxis
	zoom     springAxis
}

func NewCameraRig(cam *Camera, fps int) *CameraRig {
	r := &CameraRig{
		Camera:   cam,
		spring:   harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		baseDist: cam.Distance,
	}
	r.yaw = springAxis{pos: float64(cam.Yaw), target: float64(cam.Yaw)}
	r.pitch = springAxis{pos: float64(cam.Pitch), target: float64(cam.Pitch)}
	r.zoom = springAxis{pos: 1, target: 1}
	return r
}

func (r *CameraRig) Rotate(dyaw, dpitch float64) {
	r.yaw.target += dyaw
	r.pitch.target = math.Max(-maxPitch, math.Min(maxPitch, r.pitch.target+dpitch))
}

// Zoom multiplies the magnification target; >1 moves closer.
func (r *CameraRig) Zoom(factor float64) {
	r.zoom.target = math.Max(minZoom, math.Min(maxZoom, r.zoom.target*factor))
}

// Reset eases back to the starting orientation.
func (r *CameraRig) Reset() {
	r.yaw.target, r.pitch.target, r.zoom.target = 0, 0, 1
}

func (r *CameraRig) Update() {
	r.yaw.step(r.spring)
	r.pitch.step(r.spring)
	r.zoom.step(r.spring)

	r.Camera.Yaw = float32(r.yaw.pos)
	r.Camera.Pitch = float32(r.pitch.pos)
	r.Camera.Distance = r.baseDist / float32(r.zoom.pos)
}

// Settled reports whether every axis is within eps of its target.
func (r *CameraRig) Settled(eps float64) bool {
	for _, a := range []springAxis{r.yaw, r.pitch, r.zoom} {
		if math.Abs(a.pos-a.target) > eps || math.Abs(a.vel) > eps {
			return false
		}
	}
	return true
}
