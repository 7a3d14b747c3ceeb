package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/golang/geo/r2"
	"github.com/guptarohit/asciigraph"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mrac/internal/analysis"
	"github.com/san-kum/mrac/internal/automation"
	"github.com/san-kum/mrac/internal/config"
	"github.com/san-kum/mrac/internal/control"
	"github.com/san-kum/mrac/internal/dynamo"
	"github.com/san-kum/mrac/internal/experiment"
	"github.com/san-kum/mrac/internal/export"
	"github.com/san-kum/mrac/internal/live"
	"github.com/san-kum/mrac/internal/logging"
	"github.com/san-kum/mrac/internal/optim"
	"github.com/san-kum/mrac/internal/sim"
	"github.com/san-kum/mrac/internal/storage"
	"github.com/san-kum/mrac/internal/tui"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string
	dt         float64
	duration   float64
	integrator string
	pdOnly     bool
	adapt      bool
	goal       []float64
	save       bool
	showLive   bool
	frameRate  int
	signalName string
	tuneMetric string
	tuneGrid   []string
	svgWidth   int
	svgHeight  int
	pngOut     string

	stateAddr    string
	waypointAddr string
	wrenchAddr   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mrac",
		Short: "adaptive station-keeping controller for surface vessels",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(config.DefaultConfig())
			if err != nil {
				return err
			}
			return tui.RunInteractive(logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mrac", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a closed-loop simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().Float64Var(&dt, "dt", 0.02, "timestep")
	runCmd.Flags().Float64Var(&duration, "time", 60.0, "duration")
	runCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	runCmd.Flags().BoolVar(&pdOnly, "pd-only", true, "disable feedforward compensation")
	runCmd.Flags().BoolVar(&adapt, "adapt", true, "run the parameter estimator")
	runCmd.Flags().Float64SliceVar(&goal, "goal", nil, "single waypoint x,y,heading_deg issued at t=0")
	runCmd.Flags().BoolVar(&save, "save", true, "store the run under the data directory")
	runCmd.Flags().BoolVar(&showLive, "live", false, "draw the run in the terminal")
	runCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate for --live")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same scenario",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addConfigFlags(compareCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, name := range config.ListPresets() {
				fmt.Fprintf(w, "%s\t%s\n", name, config.Presets[name].Description)
			}
			return w.Flush()
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
	addConfigFlags(configCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the controller against a vehicle over UDP",
		Args:  cobra.NoArgs,
		RunE:  runBridge,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().StringVar(&stateAddr, "state", "", "state listen address")
	liveCmd.Flags().StringVar(&waypointAddr, "waypoint", "", "waypoint listen address")
	liveCmd.Flags().StringVar(&wrenchAddr, "wrench", "", "wrench destination address")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a recorded signal",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&signalName, "signal", "tz", "tick column to analyze")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search controller gains on a scenario",
		Args:  cobra.NoArgs,
		RunE:  tuneGains,
	}
	addConfigFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "tracking_rms", "metric to minimize")
	tuneCmd.Flags().StringArrayVar(&tuneGrid, "grid", []string{"kp_scale=0.5,1,2", "kd_scale=0.5,1,2"}, "name=v1,v2,... (repeatable)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the run trajectory as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "export position tracking against time as PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVarP(&pngOut, "out", "o", "", "output file (default <run_id>.png)")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().BoolVar(&save, "save", true, "store each run under the data directory")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive scenario browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(config.DefaultConfig())
			if err != nil {
				return err
			}
			return tui.RunInteractive(logger)
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, exportPNGCmd, compareCmd, analyzeCmd, tuneCmd, batchCmd, presetsCmd, configCmd, liveCmd, tuiCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// loadConfig resolves defaults, then the preset, then the file, then any
// flag the user set explicitly. It also returns a scenario name for storage.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "default"

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		name = preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Sim.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Sim.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Sim.Integrator = integrator
	}
	if flags.Changed("pd-only") {
		cfg.Controller.PDOnly = pdOnly
	}
	if flags.Changed("adapt") {
		cfg.Controller.Adapt = adapt
	}
	if flags.Changed("goal") {
		if len(goal) != 3 {
			return nil, "", fmt.Errorf("--goal takes x,y,heading_deg, got %v", goal)
		}
		cfg.Sim.Waypoints = []sim.ScheduledWaypoint{{At: 0, Command: waypointCommand(goal)}}
	}
	if flags.Changed("state") {
		cfg.Live.StateAddr = stateAddr
	}
	if flags.Changed("waypoint") {
		cfg.Live.WaypointAddr = waypointAddr
	}
	if flags.Changed("wrench") {
		cfg.Live.WrenchAddr = wrenchAddr
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

func newLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	lc := cfg.Log
	if logLevel != "" {
		lc.Level = logLevel
	}
	return logging.NewLogger("mrac", lc)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, scenario, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	exp, err := experiment.New(cfg, logger)
	if err != nil {
		return err
	}

	if showLive {
		r := tui.NewLiveRenderer(scenario, frameRate)
		exp.GetSimulator().AddObserver(r)
		r.Start()
		defer r.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s scenario...\n", scenario)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("final: x=%.3f y=%.3f hdg=%.1f°  goal (%.2f, %.2f)\n",
		result.Final.Pose.Position.X, result.Final.Pose.Position.Y,
		result.Final.Pose.Heading()*180/math.Pi, result.Goal.X, result.Goal.Y)
	printMetrics(result.Metrics)

	if !save {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(scenario, cfg.Sim.Integrator, cfg.SimSettings(), result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func printMetrics(metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, metrics[name])
	}
}

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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tDT\tINTEG\tSTEPS\tGOAL_DIST")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\t%.3f\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Steps,
			run.Metrics["goal_distance"],
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

	ticks, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}

	if len(ticks) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(ticks))

	series := func(f func(storage.Tick) float64) []float64 {
		out := make([]float64, len(ticks))
		for i, t := range ticks {
			out[i] = f(t)
		}
		return out
	}

	fmt.Println(asciigraph.PlotMany(
		[][]float64{
			series(func(t storage.Tick) float64 { return t.X }),
			series(func(t storage.Tick) float64 { return t.RefX }),
		},
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.SeriesLegends("x", "ref x"),
		asciigraph.Caption("east position [m]"),
	))
	fmt.Println()

	plots := []struct {
		caption string
		value   func(storage.Tick) float64
	}{
		{"goal distance [m]", func(t storage.Tick) float64 { return t.GoalDistance }},
		{"heading [deg]", func(t storage.Tick) float64 { return t.Yaw * 180 / math.Pi }},
		{"surge force [N]", func(t storage.Tick) float64 { return t.Wrench[0] }},
		{"yaw torque [N·m]", func(t storage.Tick) float64 { return t.Wrench[2] }},
		{"surge disturbance estimate", func(t storage.Tick) float64 { return t.Disturbance[0] }},
	}
	for _, p := range plots {
		graph := asciigraph.Plot(series(p.value),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

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

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	ticks, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}

	cfg := sim.Config{Dt: meta.Dt, Duration: meta.Duration}
	return storage.ExportJSON(os.Stdout, storage.NewExportData(meta.Scenario, meta.Integrator, cfg, ticks, meta.Metrics))
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	ticks, err := st.LoadTicks(args[0])
	if err != nil {
		return err
	}

	if len(ticks) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteCSV(os.Stdout, ticks)
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, scenario, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators for %s (dt=%.4f, duration=%.1fs)\n\n", scenario, cfg.Sim.Dt, cfg.Sim.Duration)
	fmt.Printf("%-12s  %-12s  %-12s  %-12s  %-12s\n", "integrator", "goal_dist", "tracking_rms", "energy_drift", "time_ms")
	fmt.Println(strings.Repeat("-", 66))

	for _, name := range args {
		c := *cfg
		c.Sim.Integrator = name
		exp, err := experiment.New(&c, nil)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		start := time.Now()
		result, err := exp.Run(context.Background())
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		fmt.Printf("%-12s  %12.4f  %12.4f  %12.2e  %12.2f\n", name,
			result.Metrics["goal_distance"], result.Metrics["tracking_rms"],
			result.EnergyDrift, float64(elapsed.Microseconds())/1000)
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	col := -1
	for i, name := range storage.Columns {
		if name == signalName {
			col = i
		}
	}
	if col < 0 {
		return fmt.Errorf("unknown signal %q (columns: %v)", signalName, storage.Columns)
	}

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	ticks, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}
	if len(ticks) < 2 {
		return fmt.Errorf("no data")
	}

	data := make([]float64, len(ticks))
	for i, t := range ticks {
		data[i] = t.Values()[col]
	}
	spectrum, err := analysis.PowerSpectrum(data, ticks[1].Time-ticks[0].Time)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("signal: %s\n\n", signalName)

	plotData := spectrum.Amplitude[:len(spectrum.Amplitude)/4+1]
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("amplitude spectrum (%s), 0-%.2f hz", signalName, spectrum.Freq[len(plotData)-1])),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, amp := spectrum.Dominant()
	fmt.Printf("dominant frequency: %.3f hz (amplitude %.3f)\n", freq, amp)
	if period := spectrum.Period(); !math.IsInf(period, 1) {
		fmt.Printf("period: %.3f s\n", period)
	}

	return nil
}

func tuneGains(cmd *cobra.Command, args []string) error {
	cfg, scenario, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(tuneGrid))
	ranges := make([][]float64, 0, len(tuneGrid))
	for _, spec := range tuneGrid {
		name, values, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("grid entry %q is not name=v1,v2", spec)
		}
		var r []float64
		for _, v := range strings.Split(values, ",") {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("grid entry %q: %w", spec, err)
			}
			r = append(r, f)
		}
		names = append(names, name)
		ranges = append(ranges, r)
	}

	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("tuning %s over %d points (params: %v)\n\n", scenario, gs.Size(), optim.ListGainParams())
	best, val, trials, err := gs.Search(ctx, optim.GainBuilder(cfg, nil), tuneMetric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.Join(names, "\t"), strings.ToUpper(tuneMetric))
	for _, t := range trials {
		cols := make([]string, len(names))
		for i, n := range names {
			cols[i] = strconv.FormatFloat(t.Params[n], 'g', -1, 64)
		}
		result := strconv.FormatFloat(t.Value, 'f', 4, 64)
		if t.Err != nil {
			result = "error: " + t.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\n", strings.Join(cols, "\t"), result)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest %s = %.4f at %v\n", tuneMetric, val, best)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	ticks, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}

	goals := make([]r2.Point, len(meta.Waypoints))
	for i, wp := range meta.Waypoints {
		goals[i] = wp.Command.Position()
	}
	svg := export.TrajectorySVG(ticks, goals, svgWidth, svgHeight)
	if svg == "" {
		return fmt.Errorf("not enough data to draw")
	}
	_, err = fmt.Fprintln(os.Stdout, svg)
	return err
}

func exportPNG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	ticks, err := storage.New(dataDir).LoadTicks(runID)
	if err != nil {
		return err
	}
	p, err := export.TimeSeriesPlot(runID, ticks, export.TrackingSeries)
	if err != nil {
		return err
	}

	out := pngOut
	if out == "" {
		out = runID + ".png"
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := export.WritePNG(f, p, 8, 5); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	logger, err := newLogger(config.DefaultConfig())
	if err != nil {
		return err
	}
	defer logger.Sync()

	var st *storage.Store
	if save {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunScenario(ctx, scenario, st, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN\tGOAL_DIST\tTRACKING_RMS\tEFFORT")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%.3f\t%.3f\t%.1f\n", r.Name, r.RunID,
			r.Result.Metrics["goal_distance"], r.Result.Metrics["tracking_rms"], r.Result.Metrics["control_effort"])
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func runBridge(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctrl, err := control.NewController(cfg.ToControl(), logger.Named("control"))
	if err != nil {
		return err
	}

	wrench, err := live.NewSender(cfg.Live.WrenchAddr)
	if err != nil {
		return err
	}
	defer wrench.Close()
	reference, err := live.NewSender(cfg.Live.ReferenceAddr)
	if err != nil {
		return err
	}
	defer reference.Close()

	bridge := live.NewBridge(ctrl, live.Options{
		Wrench:     wrench,
		Reference:  reference,
		StaleAfter: time.Duration(cfg.Live.StaleAfter * float64(time.Second)),
		Logger:     logger.Named("live"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = bridge.Listen(ctx, cfg.Live.StateAddr, cfg.Live.WaypointAddr)
	ticks, rejected := bridge.Stats()
	logger.Infow("bridge stopped", "ticks", ticks, "rejected", rejected)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func waypointCommand(v []float64) dynamo.WaypointCommand {
	return dynamo.WaypointCommand{X: v[0], Y: v[1], HeadingDeg: v[2]}
}
