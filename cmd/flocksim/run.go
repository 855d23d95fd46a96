package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/flocksim/internal/analysis"
	"github.com/san-kum/flocksim/internal/automation"
	"github.com/san-kum/flocksim/internal/compute"
	"github.com/san-kum/flocksim/internal/config"
	"github.com/san-kum/flocksim/internal/experiment"
	"github.com/san-kum/flocksim/internal/flock"
	"github.com/san-kum/flocksim/internal/metrics"
	"github.com/san-kum/flocksim/internal/optim"
	"github.com/san-kum/flocksim/internal/storage"
	"github.com/san-kum/flocksim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	be, err := registry.GetBackend(cfg.Backend)
	if err != nil {
		return err
	}

	fc, fields := cfg.ToFlock()
	ecfg := experiment.Config{
		Flock:   fc,
		Fields:  fields,
		Backend: cfg.Backend,
		Dt:      float32(cfg.Dt),
		Frames:  cfg.Frames,
	}
	if resumeID != "" {
		initial, err := st.LoadFrame(resumeID)
		if err != nil {
			return fmt.Errorf("resume %s: %w", resumeID, err)
		}
		ecfg.Initial = initial
		logger.Info("resuming", zap.String("run", resumeID), zap.Int("boids", len(initial)))
	}

	exp := experiment.New(ecfg, logger)
	if err := exp.Setup(be, registry.DefaultMetrics(fc.Bounds)); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d boids for %d frames on %s...\n", fc.Count, cfg.Frames, be.Name())
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(ecfg, result)
	if err != nil {
		return err
	}

	if jsonOut != "" {
		f, err := os.Create(jsonOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := storage.ExportJSON(f, ecfg, result); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", result.Final.Index)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	be, err := compute.ByName(cfg.Backend)
	if err != nil {
		return err
	}
	viz.SetTheme(theme)

	title := "flock"
	if preset != "" {
		title = preset
	}
	fc, fields := cfg.ToFlock()
	m, err := viz.NewModel(title, fc, fields, float32(cfg.Dt), flock.WithBackend(be))
	if err != nil {
		return err
	}
	return viz.Run(m)
}

func benchBackends(cmd *cobra.Command, args []string) error {
	names := []string{"serial", "cpu", "grid"}

	fmt.Printf("benchmarking %d frames per run\n\n", benchFrames)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tBOIDS\tGROUPS\tTIME\tFRAMES/SEC\tBOIDS/SEC")

	for _, n := range benchBoids {
		cfg := flock.DefaultConfig()
		cfg.Count = n
		for _, name := range names {
			be, err := compute.ByName(name)
			if err != nil {
				return err
			}
			s, err := flock.New(cfg, flock.WithBackend(be))
			if err != nil {
				return err
			}
			if err := s.Start(); err != nil {
				return err
			}

			start := time.Now()
			err = s.Run(context.Background(), benchFrames, float32(config.DefaultDt))
			elapsed := time.Since(start)
			s.Destroy()
			if err != nil {
				return err
			}

			fps := float64(benchFrames) / elapsed.Seconds()
			fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.1f\t%.0f\n",
				name, n, compute.DispatchGroups(n), elapsed.Round(time.Microsecond), fps, fps*float64(n))
		}
	}

	return w.Flush()
}

// parseGrid turns "name=v1,v2" entries into parallel name and value lists.
func parseGrid(entries []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(entries))
	ranges := make([][]float64, 0, len(entries))
	for _, e := range entries {
		name, list, ok := strings.Cut(e, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("bad grid entry %q, want name=v1,v2,...", e)
		}
		var values []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid %s: %w", name, err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func sweepParams(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(sweepGrid)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("at least one --grid entry is required")
	}

	registry := experiment.NewRegistry()
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		for name, v := range params {
			if err := cfg.SetParam(name, v); err != nil {
				return nil, err
			}
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		be, err := registry.GetBackend(cfg.Backend)
		if err != nil {
			return nil, err
		}
		fc, fields := cfg.ToFlock()
		m, err := registry.GetMetric(sweepMetric, fc.Bounds)
		if err != nil {
			return nil, err
		}
		exp := experiment.New(experiment.Config{Flock: fc, Fields: fields, Dt: float32(cfg.Dt), Frames: cfg.Frames}, nil)
		return exp, exp.Setup(be, []flock.Metric{m})
	}

	gs := optim.NewGridSearch(names, ranges)
	if sweepMaximize {
		gs.Maximize()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	best, val, err := gs.Search(ctx, build, sweepMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(sweepMetric))
	for _, s := range gs.Samples {
		row := make([]string, 0, len(names)+1)
		for _, n := range names {
			row = append(row, strconv.FormatFloat(s.Params[n], 'g', 4, 64))
		}
		row = append(row, fmt.Sprintf("%.6f", s.Value))
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest %s = %.6f at", sweepMetric, val)
	for _, n := range names {
		fmt.Printf(" %s=%g", n, best[n])
	}
	fmt.Println()
	return nil
}

func scanParameter(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	be, err := compute.ByName(base.Backend)
	if err != nil {
		return err
	}
	if err := base.Clone().SetParam(scanParam, scanFrom); err != nil {
		return err
	}

	build := func(v float64) (flock.Config, []flock.FieldSource, error) {
		cfg := base.Clone()
		if err := cfg.SetParam(scanParam, v); err != nil {
			return flock.Config{}, nil, err
		}
		fc, fields := cfg.ToFlock()
		return fc, fields, nil
	}
	probe := func(f flock.Frame) float64 { return metrics.PolarizationOf(f.Boids) }

	points := analysis.ParameterScan(be, build, optim.Linspace(scanFrom, scanTo, scanSteps),
		probe, scanTransient, scanRecord, float32(base.Dt))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMIN\tMAX\tDISTINCT\n", strings.ToUpper(scanParam))
	for _, p := range points {
		if len(p.Values) == 0 {
			continue
		}
		fmt.Fprintf(w, "%.4g\t%.3f\t%.3f\t%d\n", p.Param, p.Values[0], p.Values[len(p.Values)-1], len(p.Values))
	}
	return w.Flush()
}

func measureSensitivity(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	be, err := compute.ByName(cfg.Backend)
	if err != nil {
		return err
	}

	fc, fields := cfg.ToFlock()
	rate := analysis.Divergence(be, fc, fields, float32(perturbation), cfg.Frames, float32(cfg.Dt))

	fmt.Printf("divergence rate: %.4f 1/s over %d frames\n", rate, cfg.Frames)
	if rate > 0 {
		fmt.Println("nearby flocks separate: sensitive to initial conditions")
	} else {
		fmt.Println("nearby flocks converge")
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	results, err := automation.RunScenario(ctx, sc, st, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tBACKEND\tFRAMES\tPOLARIZATION\tMEAN SPEED\tRUN")
	for i, r := range results {
		name := r.Step.Name
		if name == "" {
			name = strconv.Itoa(i + 1)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.3f\t%.3f\t%s\n", name, r.Result.Backend, r.Result.Final.Index,
			r.Result.Metrics["polarization"], r.Result.Metrics["mean_speed"], r.RunID)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunMonteCarlo(ctx, automation.MonteCarloConfig{
		Base:   cfg,
		Trials: trials,
		Seed:   cfg.Seed,
	}, logger)
	if err != nil {
		return err
	}

	stable, unstable, mean := automation.MonteCarloStats(results)
	fmt.Printf("%d trials: %d contained, %d escaped\n", len(results), stable, unstable)
	fmt.Printf("mean polarization: %.3f\n", mean)
	return nil
}
