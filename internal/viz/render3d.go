package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/flocksim/internal/flock"
)

// Camera orbits Target at Distance. Yaw turns around the world Y axis and
// Pitch tilts toward it; both are radians.
type Camera struct {
	Target     mgl32.Vec3
	Yaw, Pitch float32
	Distance   float32
	FOV        float32
	Near, Far  float32
}

func NewCamera() *Camera {
	return &Camera{Distance: 50, FOV: mgl32.DegToRad(45), Near: 0.1, Far: 1000}
}

// Fit centers the camera on the bounds and backs off until the render
// extent fills the view.
func (c *Camera) Fit(b flock.Bounds) {
	c.Target = b.Center
	c.Distance = b.RenderExtent() / float32(math.Tan(float64(c.FOV)/2)) * 1.1
	c.Far = c.Distance + 4*b.RenderExtent()
}

// Eye is the camera position in world space.
func (c *Camera) Eye() mgl32.Vec3 {
	cp := float32(math.Cos(float64(c.Pitch)))
	dir := mgl32.Vec3{
		float32(math.Sin(float64(c.Yaw))) * cp,
		float32(math.Sin(float64(c.Pitch))),
		float32(math.Cos(float64(c.Yaw))) * cp,
	}
	return c.Target.Add(dir.Mul(c.Distance))
}

// Matrix is the combined projection * view transform for a w x h target.
func (c *Camera) Matrix(w, h int) mgl32.Mat4 {
	aspect := float32(w) / float32(max(h, 1))
	view := mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 1, 0})
	return mgl32.Perspective(c.FOV, aspect, c.Near, c.Far).Mul4(view)
}

// Project maps a world point onto a w x h dot grid, returning the dot
// coordinates, the view depth and whether the point is on screen.
func (c *Camera) Project(p mgl32.Vec3, w, h int) (int, int, float32, bool) {
	return project(c.Matrix(w, h), p, w, h, c.Near)
}

func project(m mgl32.Mat4, p mgl32.Vec3, w, h int, near float32) (int, int, float32, bool) {
	clip := m.Mul4x1(p.Vec4(1))
	if clip.W() < near {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	x := int((ndc.X() + 1) / 2 * float32(w-1))
	y := int((1 - ndc.Y()) / 2 * float32(h-1))
	return x, y, clip.W(), x >= 0 && x < w && y >= 0 && y < h
}

type Edge struct {
	Start, End mgl32.Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe { return &Wireframe{} }

func (w *Wireframe) AddEdge(s, e mgl32.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) AddPoint(p mgl32.Vec3)   { w.Edges = append(w.Edges, Edge{p, p}) }
func (w *Wireframe) Clear()                  { w.Edges = w.Edges[:0] }

// SphereWireframe traces the three great circles of the bounds sphere.
func SphereWireframe(b flock.Bounds, segments int) *Wireframe {
	w := NewWireframe()
	axes := [3][2]mgl32.Vec3{
		{{1, 0, 0}, {0, 1, 0}},
		{{0, 1, 0}, {0, 0, 1}},
		{{1, 0, 0}, {0, 0, 1}},
	}
	for _, ax := range axes {
		prev := b.Center.Add(ax[0].Mul(b.Radius))
		for i := 1; i <= segments; i++ {
			a := 2 * math.Pi * float64(i) / float64(segments)
			u := ax[0].Mul(float32(math.Cos(a)))
			v := ax[1].Mul(float32(math.Sin(a)))
			next := b.Center.Add(u.Add(v).Mul(b.Radius))
			w.AddEdge(prev, next)
			prev = next
		}
	}
	return w
}

// FieldMarkers draws a small three-axis cross at every field.
func FieldMarkers(fields []flock.Field, size float32) *Wireframe {
	w := NewWireframe()
	for _, f := range fields {
		for _, d := range []mgl32.Vec3{{size, 0, 0}, {0, size, 0}, {0, 0, size}} {
			w.AddEdge(f.Position.Sub(d), f.Position.Add(d))
		}
	}
	return w
}

// Render3D draws the wireframe edges with at least one visible endpoint.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	dw, dh := c.Dots()
	m := cam.Matrix(dw, dh)
	for _, e := range w.Edges {
		x1, y1, _, v1 := project(m, e.Start, dw, dh, cam.Near)
		x2, y2, _, v2 := project(m, e.End, dw, dh, cam.Near)
		if !v1 && !v2 {
			continue
		}
		if x1 == x2 && y1 == y2 {
			c.Set(x1, y1)
		} else {
			c.DrawLine(x1, y1, x2, y2)
		}
	}
}

// RenderBoids plots each boid as a dot plus a short heading tick of the
// given world length. A zero tail draws dots only.
func RenderBoids(c *Canvas, boids []flock.Boid, cam *Camera, tail float32) int {
	dw, dh := c.Dots()
	m := cam.Matrix(dw, dh)
	visible := 0
	for _, b := range boids {
		x, y, _, ok := project(m, b.Position, dw, dh, cam.Near)
		if !ok {
			continue
		}
		visible++
		c.Set(x, y)

		if tail <= 0 {
			continue
		}
		if l := b.Velocity.Len(); l > 0 {
			tip := b.Position.Sub(b.Velocity.Mul(tail / l))
			if tx, ty, _, tok := project(m, tip, dw, dh, cam.Near); tok {
				c.DrawLine(x, y, tx, ty)
			}
		}
	}
	return visible
}

// RenderFrame draws the bounds sphere, fields and boids of one frame.
func RenderFrame(c *Canvas, cam *Camera, f flock.Frame, bounds flock.Bounds, fields []flock.Field) int {
	c.Clear()
	Render3D(c, SphereWireframe(bounds, 48), cam)
	Render3D(c, FieldMarkers(fields, bounds.Radius*0.04), cam)
	return RenderBoids(c, f.Boids, cam, bounds.Radius*0.03)
}
