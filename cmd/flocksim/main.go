package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/flocksim/internal/config"
)

var (
	dataDir string
	verbose bool

	// Simulation inputs shared by run, live, sweep, scan, sensitivity, montecarlo.
	configFile string
	preset     string
	boids      int
	seed       int64
	dt         float64
	frames     int
	backend    string
	radius     float64

	resumeID string
	jsonOut  string

	theme string

	benchBoids  []int
	benchFrames int

	sweepGrid     []string
	sweepMetric   string
	sweepMaximize bool

	scanParam     string
	scanFrom      float64
	scanTo        float64
	scanSteps     int
	scanTransient int
	scanRecord    int

	perturbation float64

	trials int

	column string
	svgDir string
	xSeries string
	ySeries string

	outFile  string
	svgW     int
	svgH     int
	camYaw   float64
	camPitch float64
	braille  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "flocksim",
		Short:         "3D boids flocking simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".flocksim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&resumeID, "resume", "", "start from the final frame of a stored run")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "also write the full result as JSON to this path")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with live terminal visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "dusk", "color theme")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure tick throughput for every backend",
		Args:  cobra.NoArgs,
		RunE:  benchBackends,
	}
	benchCmd.Flags().IntSliceVar(&benchBoids, "boids", []int{256, 1024, 2048}, "flock sizes")
	benchCmd.Flags().IntVar(&benchFrames, "frames", 20, "ticks per measurement")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search parameters for the best metric value",
		Args:  cobra.NoArgs,
		RunE:  sweepParams,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepGrid, "grid", nil, "parameter values, e.g. forces.cohesion=0.5,1,2 (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "polarization", "metric to optimize")
	sweepCmd.Flags().BoolVar(&sweepMaximize, "maximize", false, "keep the largest value instead of the smallest")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "settled polarization while one parameter sweeps",
		Args:  cobra.NoArgs,
		RunE:  scanParameter,
	}
	addSimFlags(scanCmd)
	scanCmd.Flags().StringVar(&scanParam, "param", "forces.alignment", "parameter to sweep")
	scanCmd.Flags().Float64Var(&scanFrom, "from", 0, "first value")
	scanCmd.Flags().Float64Var(&scanTo, "to", 3, "last value")
	scanCmd.Flags().IntVar(&scanSteps, "steps", 7, "number of values")
	scanCmd.Flags().IntVar(&scanTransient, "transient", 200, "frames to settle")
	scanCmd.Flags().IntVar(&scanRecord, "record", 50, "frames to record")

	sensitivityCmd := &cobra.Command{
		Use:   "sensitivity",
		Short: "divergence rate of two nearly identical flocks",
		Args:  cobra.NoArgs,
		RunE:  measureSensitivity,
	}
	addSimFlags(sensitivityCmd)
	sensitivityCmd.Flags().Float64Var(&perturbation, "perturbation", 1e-4, "initial position offset")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of simulations from YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "repeat a configuration under random spawn seeds",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addSimFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot per-frame metrics of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgDir, "svg", "", "also write one SVG chart per column into this directory")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a metric series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&column, "column", "polarization", "series to analyze")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "plot two metric series against each other",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xSeries, "x", "polarization", "series on the x axis")
	phaseCmd.Flags().StringVar(&ySeries, "y", "mean_speed", "series on the y axis")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the final frame of a run to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot-svg [run_id]",
		Short: "render the final frame of a run to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshotSVG,
	}
	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.svg)")
	snapshotCmd.Flags().IntVar(&svgW, "width", 800, "image width")
	snapshotCmd.Flags().IntVar(&svgH, "height", 600, "image height")
	snapshotCmd.Flags().Float64Var(&camYaw, "yaw", 0.6, "camera yaw (radians)")
	snapshotCmd.Flags().Float64Var(&camPitch, "pitch", 0.3, "camera pitch (radians)")
	snapshotCmd.Flags().BoolVar(&braille, "braille", false, "render through the terminal canvas instead")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, sweepCmd, scanCmd, sensitivityCmd,
		scenarioCmd, monteCarloCmd, listCmd, plotCmd, analyzeCmd, phaseCmd, exportCmd, exportCSVCmd, snapshotCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file (yaml, toml or json)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&boids, "boids", d.Boids, "number of boids")
	cmd.Flags().Int64Var(&seed, "seed", d.Seed, "random seed")
	cmd.Flags().Float64Var(&dt, "dt", d.Dt, "timestep")
	cmd.Flags().IntVar(&frames, "frames", d.Frames, "number of ticks")
	cmd.Flags().StringVar(&backend, "backend", d.Backend, "backend: auto, serial, cpu, grid")
	cmd.Flags().Float64Var(&radius, "radius", d.Bounds.Radius, "bounds radius")
}

// loadConfig layers preset, config file and explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("boids") {
		cfg.Boids = boids
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("backend") {
		cfg.Backend = backend
	}
	if flags.Changed("radius") {
		cfg.Bounds.Radius = radius
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	return zc.Build()
}
