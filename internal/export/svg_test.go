package export

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/flocksim/internal/flock"
	"github.com/san-kum/flocksim/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(3, 2)
	c.Set(0, 0)
	c.Set(5, 7)

	svg := CanvasToSVG(c, 2)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("malformed svg: %q", svg)
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 circles, got %d", n)
	}
	if CanvasToSVG(nil, 1) != "" {
		t.Error("nil canvas should export nothing")
	}
}

func TestSnapshotToSVG(t *testing.T) {
	bounds := flock.Bounds{Radius: 10}
	cam := viz.NewCamera()
	cam.Fit(bounds)

	f := flock.Frame{Boids: []flock.Boid{
		{Position: mgl32.Vec3{1, 2, 3}, Velocity: mgl32.Vec3{0, 1, 0}},
		{Position: mgl32.Vec3{-4, 0, 1}},
	}}
	svg := SnapshotToSVG(cam, f, bounds, []flock.Field{{Position: mgl32.Vec3{2, 0, 0}, Force: 1}}, 400, 300)

	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 boid circles, got %d", n)
	}
	if !strings.Contains(svg, `stroke="#ff8fab"`) {
		t.Error("field markers missing")
	}
	if strings.Count(svg, "<line") < 96 {
		t.Error("bounds sphere outline missing")
	}
}

func TestSeriesToSVG(t *testing.T) {
	svg := SeriesToSVG([]float64{0, 1, 2}, []float64{0.1, 0.5, 0.9}, 200, 100, "#00ccff")
	if !strings.Contains(svg, "<polyline") || strings.Count(svg, ",") != 3 {
		t.Errorf("unexpected series svg: %q", svg)
	}
	if SeriesToSVG([]float64{0}, []float64{1}, 10, 10, "#fff") != "" {
		t.Error("single sample should export nothing")
	}
}
