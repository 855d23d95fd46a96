package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/flocksim/internal/flock"
	"github.com/san-kum/flocksim/internal/viz"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// CanvasToSVG draws every lit braille dot as a circle of the given pitch.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	dw, dh := canvas.Dots()
	w, h := int(float64(dw)*scale), int(float64(dh)*scale)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, w, h, w, h)
	sb.WriteString(`<g fill="#00ff00">` + "\n")
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, scale*0.4)
			}
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SnapshotToSVG projects a frame through cam at full resolution: the bounds
// sphere outline, a cross per field and a dot plus heading line per boid.
func SnapshotToSVG(cam *viz.Camera, f flock.Frame, bounds flock.Bounds, fields []flock.Field, width, height int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)

	sb.WriteString(`<g stroke="#444466" stroke-width="1" fill="none">` + "\n")
	writeEdges(&sb, cam, viz.SphereWireframe(bounds, 96), width, height)
	sb.WriteString("</g>\n")

	if len(fields) > 0 {
		sb.WriteString(`<g stroke="#ff8fab" stroke-width="2">` + "\n")
		writeEdges(&sb, cam, viz.FieldMarkers(fields, bounds.Radius*0.04), width, height)
		sb.WriteString("</g>\n")
	}

	tail := bounds.Radius * 0.03
	sb.WriteString(`<g fill="#ffd27f" stroke="#ffd27f" stroke-width="0.6">` + "\n")
	for _, b := range f.Boids {
		x, y, _, ok := cam.Project(b.Position, width, height)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, `<circle cx="%d" cy="%d" r="1.5"/>`+"\n", x, y)
		if l := b.Velocity.Len(); l > 0 {
			tx, ty, _, tok := cam.Project(b.Position.Sub(b.Velocity.Mul(tail/l)), width, height)
			if tok {
				fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d"/>`+"\n", x, y, tx, ty)
			}
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func writeEdges(sb *strings.Builder, cam *viz.Camera, w *viz.Wireframe, width, height int) {
	for _, e := range w.Edges {
		x1, y1, _, v1 := cam.Project(e.Start, width, height)
		x2, y2, _, v2 := cam.Project(e.End, width, height)
		if v1 && v2 {
			fmt.Fprintf(sb, `<line x1="%d" y1="%d" x2="%d" y2="%d"/>`+"\n", x1, y1, x2, y2)
		}
	}
}

// SeriesToSVG plots one metric series against time as a polyline.
func SeriesToSVG(times, values []float64, width, height int, strokeColor string) string {
	n := min(len(times), len(values))
	if n < 2 {
		return ""
	}

	minX, maxX := times[0], times[n-1]
	minY, maxY := values[0], values[0]
	for _, v := range values[:n] {
		minY, maxY = min(minY, v), max(maxY, v)
	}
	if maxX == minX {
		maxX = minX + 1
	}
	if maxY == minY {
		maxY = minY + 1
	}

	const pad = 20.0
	sx := (float64(width) - 2*pad) / (maxX - minX)
	sy := (float64(height) - 2*pad) / (maxY - minY)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	fmt.Fprintf(&sb, `<polyline fill="none" stroke="%s" stroke-width="1.5" points="`, strokeColor)
	for i := 0; i < n; i++ {
		x := pad + (times[i]-minX)*sx
		y := float64(height) - pad - (values[i]-minY)*sy
		fmt.Fprintf(&sb, "%.1f,%.1f ", x, y)
	}
	sb.WriteString(`"/>` + "\n</svg>")
	return sb.String()
}
