package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/flocksim/internal/analysis"
	"github.com/san-kum/flocksim/internal/config"
	"github.com/san-kum/flocksim/internal/export"
	"github.com/san-kum/flocksim/internal/flock"
	"github.com/san-kum/flocksim/internal/storage"
	"github.com/san-kum/flocksim/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tBOIDS\tFRAMES\tDT\tBACKEND\tPOLARIZATION")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.4fs\t%s\t%.3f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Boids,
			run.Frames,
			run.Dt,
			run.Backend,
			run.Metrics["polarization"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, times, columns, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("boids: %d\n", meta.Boids)
	fmt.Printf("samples: %d\n\n", len(times))

	if svgDir != "" {
		if err := os.MkdirAll(svgDir, 0755); err != nil {
			return err
		}
	}

	for _, name := range columns {
		data := series[name]
		if len(data) == 0 {
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs frame"),
		)
		fmt.Println(graph)
		fmt.Println()

		if svgDir != "" {
			svg := export.SeriesToSVG(times, data, 800, 300, "#00ccff")
			if err := os.WriteFile(filepath.Join(svgDir, name+".svg"), []byte(svg), 0644); err != nil {
				return err
			}
		}
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, _, _, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	data := series[column]
	if len(data) < 4 {
		return fmt.Errorf("not enough %s samples to analyze", column)
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("series: %s\n\n", column)

	ps := analysis.PowerSpectrum(data)
	plotData := ps
	if len(ps) > 8 {
		plotData = ps[:len(ps)/2]
	}

	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum ("+column+")"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, power := analysis.DominantFrequency(data, meta.Dt)
	fmt.Printf("dominant frequency: %.3f hz (magnitude %.4f)\n", freq, power)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	series, _, _, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	xs, ok := series[xSeries]
	if !ok {
		return fmt.Errorf("unknown series: %s", xSeries)
	}
	ys, ok := series[ySeries]
	if !ok {
		return fmt.Errorf("unknown series: %s", ySeries)
	}

	fmt.Printf("phase plot: %s\n", runID)
	fmt.Printf("x: %s, y: %s\n\n", xSeries, ySeries)
	fmt.Print(analysis.NewPortrait(xSeries, xs, ySeries, ys).ASCII(80, 24))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	boids, err := st.LoadFrame(runID)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	return storage.ExportFrameCSV(w, boids)
}

func snapshotSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	boids, err := st.LoadFrame(runID)
	if err != nil {
		return err
	}

	bounds := flock.Bounds{Center: meta.Bounds.Center, Radius: meta.Bounds.Radius}
	cam := viz.NewCamera()
	cam.Fit(bounds)
	cam.Yaw, cam.Pitch = float32(camYaw), float32(camPitch)

	frame := flock.Frame{Index: meta.Frames, Boids: boids}
	var svg string
	if braille {
		canvas := viz.NewCanvas(svgW/8, svgH/16)
		viz.RenderFrame(canvas, cam, frame, bounds, meta.Fields)
		svg = export.CanvasToSVG(canvas, 4)
	} else {
		svg = export.SnapshotToSVG(cam, frame, bounds, meta.Fields, svgW, svgH)
	}

	path := outFile
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d boids)\n", path, len(boids))
	return nil
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println("presets:")
		for _, p := range config.ListPresets() {
			fmt.Printf("  %s\n", p)
		}
		return nil
	}

	cfg := config.GetPreset(args[0])
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
