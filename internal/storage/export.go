package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/flocksim/internal/experiment"
	"github.com/san-kum/flocksim/internal/flock"
)

type ExportData struct {
	Backend string               `json:"backend"`
	Boids   int                  `json:"boids"`
	Dt      float64              `json:"dt"`
	Frames  int                  `json:"frames"`
	Times   []float64            `json:"times"`
	Series  map[string][]float64 `json:"series"`
	Metrics map[string]float64   `json:"metrics"`
	Final   []flock.Boid         `json:"final"`
}

// ExportJSON writes a run as a single JSON document.
func ExportJSON(w io.Writer, cfg experiment.Config, result *experiment.Result) error {
	data := ExportData{
		Backend: result.Backend,
		Boids:   len(result.Final.Boids),
		Dt:      float64(cfg.Dt),
		Frames:  result.Final.Index,
		Times:   result.Times,
		Series:  result.Series,
		Metrics: result.Metrics,
		Final:   result.Final.Boids,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportFrameCSV writes one row per boid: position, velocity, acceleration.
func ExportFrameCSV(w io.Writer, boids []flock.Boid) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"px", "py", "pz", "vx", "vy", "vz", "ax", "ay", "az"}); err != nil {
		return err
	}

	row := make([]string, 9)
	for _, b := range boids {
		for i := 0; i < 3; i++ {
			row[i] = strconv.FormatFloat(float64(b.Position[i]), 'g', -1, 32)
			row[3+i] = strconv.FormatFloat(float64(b.Velocity[i]), 'g', -1, 32)
			row[6+i] = strconv.FormatFloat(float64(b.Acceleration[i]), 'g', -1, 32)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
