package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/pitchloop/internal/analysis"
	"github.com/san-kum/pitchloop/internal/automation"
	"github.com/san-kum/pitchloop/internal/config"
	"github.com/san-kum/pitchloop/internal/control"
	"github.com/san-kum/pitchloop/internal/dynamo"
	"github.com/san-kum/pitchloop/internal/export"
	"github.com/san-kum/pitchloop/internal/logging"
	"github.com/san-kum/pitchloop/internal/metrics"
	"github.com/san-kum/pitchloop/internal/optim"
	"github.com/san-kum/pitchloop/internal/rt"
	"github.com/san-kum/pitchloop/internal/sim"
	"github.com/san-kum/pitchloop/internal/storage"
	"github.com/san-kum/pitchloop/internal/tui"
)

var (
	dataDir    string
	debug      bool
	configFile string
	preset     string
	stepSize   float64
	stopTime   float64
	steps      int
	overrides  []string
	// realtime
	speedup   float64
	liveTUI   bool
	plain     bool
	frameRate int
	// plot / export / analyze
	plotColumns    []string
	analyzeColumns []string
	outFile        string
	svgFile        string
	band           float64
	// tune
	ranges      []string
	metricName  string
	parallelism int
	// bench
	benchSteps int
	// montecarlo
	trials       int
	perturbation float64
	bound        float64
	seed         int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "pitchloop",
		Short:         "fixed-step dual PID pitch loop",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pitchloop", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")

	addModelFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
		cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
		cmd.Flags().Float64Var(&stepSize, "step", config.DefaultStepSize, "fixed step size in seconds")
		cmd.Flags().Float64Var(&stopTime, "time", config.DefaultStopTime, "stop time in seconds, 0 runs until interrupted")
		cmd.Flags().StringArrayVar(&overrides, "set", nil, "parameter override name=value, e.g. a.integral_gain=-1")
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the loop free-running and save the trace",
		Args:  cobra.NoArgs,
		RunE:  runLoop,
	}
	addModelFlags(runCmd)
	runCmd.Flags().IntVar(&steps, "steps", 0, "number of ticks, overrides --time")

	realtimeCmd := &cobra.Command{
		Use:   "realtime",
		Short: "run the loop from a periodic clock",
		Args:  cobra.NoArgs,
		RunE:  runRealtime,
	}
	addModelFlags(realtimeCmd)
	realtimeCmd.Flags().Float64Var(&speedup, "speedup", 0, "wall-clock speedup, overrides the config")
	realtimeCmd.Flags().BoolVar(&liveTUI, "tui", false, "full-screen live monitor")
	realtimeCmd.Flags().BoolVar(&plain, "plain", false, "plain terminal bar view")
	realtimeCmd.Flags().IntVar(&frameRate, "fps", 10, "frame rate of the plain view")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&plotColumns, "columns",
		[]string{"integrator_a", "integrator_b", "filter_coefficient_a", "filter_coefficient_b"},
		"trace columns to plot, one of "+strings.Join(storage.Columns(), ", "))
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "also write the columns as an SVG chart to this file")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run and its trace as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file, stdout when empty")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "response and frequency analysis of trace columns",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringSliceVar(&analyzeColumns, "columns", []string{"integrator_a", "integrator_b", "output_a", "output_b"}, "trace columns to analyze")
	analyzeCmd.Flags().Float64Var(&band, "band", 0.02, "settling band relative to the total change")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCHANNEL A\tCHANNEL B")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%s\n", name,
					describe(cfg.Channels.A.Constants()), describe(cfg.Channels.B.Constants()))
			}
			return w.Flush()
		},
	}

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search channel constants",
		Args:  cobra.NoArgs,
		RunE:  tuneLoop,
	}
	addModelFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&ranges, "range", nil, "parameter range name=min:max:count")
	tuneCmd.Flags().StringVar(&metricName, "metric", "control_effort", "metric to minimize, one of "+strings.Join(metrics.Names(), ", "))
	tuneCmd.Flags().IntVar(&parallelism, "parallel", 0, "concurrent runs, 0 uses every CPU")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the step function",
		Args:  cobra.NoArgs,
		RunE:  benchLoop,
	}
	addModelFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchSteps, "n", 100000, "steps to time")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of configurations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb the initial state and count stable runs",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addModelFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 100, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturbation", 0.1, "maximum initial state offset")
	monteCarloCmd.Flags().Float64Var(&bound, "bound", 1e6, "final state magnitude counted as stable")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 seeds from the clock")
	monteCarloCmd.Flags().IntVar(&parallelism, "parallel", 0, "concurrent runs, 0 uses every CPU")

	rootCmd.AddCommand(runCmd, realtimeCmd, listCmd, plotCmd, exportCmd, analyzeCmd, presetsCmd, tuneCmd, benchCmd,
		scenarioCmd, monteCarloCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func describe(c control.ChannelConstants) string {
	return fmt.Sprintf("kd*e=%g ki*e=%g n=%g", c.DerivativeGain, c.IntegralGain, c.FilterCoefficient)
}

// loadConfig layers preset, config file and flags, later winning.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "reference"

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", errors.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg, name = p, preset
	}

	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, "", errors.Wrap(err, "failed to load config")
		}
		cfg = fileCfg
		name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	}

	if cmd.Flags().Changed("step") {
		cfg.StepSize = stepSize
	}
	if cmd.Flags().Changed("time") {
		cfg.StopTime = stopTime
	}
	for _, o := range overrides {
		param, vals, err := optim.ParseRange(o)
		if err != nil {
			return nil, "", err
		}
		if len(vals) != 1 {
			return nil, "", errors.Errorf("override %q must be a single value", o)
		}
		if err := cfg.SetParam(param, vals[0]); err != nil {
			return nil, "", err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

func newLogger() (*zap.SugaredLogger, error) {
	return logging.NewLogger("pitchloop", debug)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func defaultMetrics(cfg *config.Config) []sim.Metric {
	return []sim.Metric{
		metrics.NewControlEffort(),
		metrics.NewStability(cfg.Stability),
		metrics.NewPeakSignal(),
	}
}

func runMetadata(name string, cfg *config.Config) storage.RunMetadata {
	meta := storage.RunMetadata{
		Name:     name,
		StepSize: cfg.StepSize,
		StopTime: cfg.StopTime,
	}
	for _, ch := range dynamo.Channels {
		meta.Channels[ch] = cfg.Channel(ch).Constants()
	}
	return meta
}

func runLoop(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	m, err := cfg.NewModel()
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	maxSteps := cfg.Steps()
	if cmd.Flags().Changed("steps") {
		maxSteps = steps
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	result, runErr := sim.Run(ctx, m, sim.RunOptions{
		MaxSteps: maxSteps,
		Record:   true,
		Metrics:  defaultMetrics(cfg),
		Logger:   logger,
	})
	if result == nil {
		return runErr
	}
	elapsed := time.Since(start)

	runID, err := st.Save(runMetadata(name, cfg), result)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("steps: %d  t=%.4fs  elapsed: %v\n", result.StepsTaken, m.Time(), elapsed)
	x := m.State()
	sig := m.Signals()
	for _, ch := range dynamo.Channels {
		filter, integrator := x.Channel(ch)
		fmt.Printf("channel %s: filter=%.6f integrator=%.6f fc=%.6f u=%.6f\n",
			ch, filter, integrator, sig.FilterCoefficient[ch], sig.Output[ch])
	}
	for _, k := range metrics.Names() {
		fmt.Printf("%s: %.6f\n", k, result.Metrics[k])
	}

	if runErr != nil {
		return errors.Wrapf(runErr, "run %s", runID)
	}
	return nil
}

func runRealtime(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("speedup") {
		cfg.Realtime.Period = 0
		cfg.Realtime.Speedup = speedup
	}
	period, err := cfg.TickPeriod()
	if err != nil {
		return err
	}

	var logger *zap.SugaredLogger
	if liveTUI || plain {
		logger, err = logging.NewQuietLogger("pitchloop")
	} else {
		logger, err = newLogger()
	}
	if err != nil {
		return err
	}
	defer logger.Sync()

	m, err := cfg.NewModel()
	if err != nil {
		return err
	}

	var trace sim.Result
	trace.Metrics = map[string]float64{}
	runMetrics := defaultMetrics(cfg)
	m.AddObserver(sim.ObserverFunc(func(t float64, x dynamo.State, sig control.Signals) {
		trace.Times = append(trace.Times, t)
		trace.States = append(trace.States, x)
		trace.Signals = append(trace.Signals, sig)
		trace.StepsTaken++
		for _, mt := range runMetrics {
			mt.Observe(t, x, sig)
		}
		if cfg.StopTime > 0 && t >= cfg.StopTime-cfg.StepSize/2 {
			m.RequestStop()
		}
	}))

	ctx, cancel := signalContext()
	defer cancel()

	sched, err := rt.NewScheduler(m, period, logger)
	if err != nil {
		return err
	}

	var feed *tui.Feed
	var renderer *tui.LiveRenderer
	switch {
	case liveTUI:
		feed = tui.NewFeed(64)
		m.AddObserver(feed)
	case plain:
		renderer = tui.NewLiveRenderer(os.Stdout, frameRate)
		m.AddObserver(renderer)
		renderer.Start()
		defer renderer.Stop()
	}

	if err := sched.Start(ctx); err != nil {
		return err
	}

	if feed != nil {
		go func() { feed.Finish(sched.Wait()) }()
		mon := tui.NewMonitor(feed, fmt.Sprintf("pitch loop  %s  period %v", name, period), sched.Stop)
		if _, err := tea.NewProgram(mon, tea.WithAltScreen()).Run(); err != nil {
			sched.Stop()
			return err
		}
		sched.Stop()
	}

	runErr := sched.Wait()
	if renderer != nil {
		renderer.Stop()
	}
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	trace.Err = runErr
	for _, mt := range runMetrics {
		trace.Metrics[mt.Name()] = mt.Value()
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(runMetadata(name, cfg), &trace)
	if err != nil {
		return err
	}
	logger.Infow("realtime run saved", "run", runID, "ticks", sched.Ticks(), "t", m.Time())
	fmt.Printf("run: %s  ticks: %d  t=%.4fs\n", runID, sched.Ticks(), m.Time())

	if runErr != nil {
		return errors.Wrapf(runErr, "run %s", runID)
	}
	return nil
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSTEPS\tSTEP\tFINAL T\tFAULT")

	for _, run := range runs {
		fault := run.Fault
		if fault == "" {
			fault = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%.4fs\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.StepSize,
			run.FinalTime,
			fault,
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

	tr, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	if len(tr.Times) == 0 {
		return errors.New("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(tr.Times))

	var series []export.Series
	for _, col := range plotColumns {
		data, err := tr.Series(col)
		if err != nil {
			return err
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(strings.ReplaceAll(col, "_", " ")+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
		series = append(series, export.Series{Name: col, Values: data})
	}

	if svgFile == "" {
		return nil
	}
	svg, err := export.SeriesToSVG(tr.Times, series, 900, 400)
	if err != nil {
		return err
	}
	if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgFile)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tr, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	if outFile == "" {
		return storage.ExportJSON(os.Stdout, meta, tr)
	}
	if err := storage.ExportJSONFile(outFile, meta, tr); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", runID, outFile)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tr, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(tr.Times) < 2 {
		return errors.New("not enough samples to analyze")
	}

	fmt.Printf("run: %s  samples: %d  step: %gs\n\n", meta.ID, len(tr.Times), meta.StepSize)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COLUMN\tINITIAL\tFINAL\tPEAK\tOVERSHOOT\tSETTLING\tDOMINANT HZ")
	for _, col := range analyzeColumns {
		data, err := tr.Series(col)
		if err != nil {
			return err
		}
		r, err := analysis.AnalyzeResponse(tr.Times, data, band)
		if err != nil {
			return err
		}
		freqs, amps, err := analysis.Spectrum(data, meta.StepSize)
		if err != nil {
			return err
		}
		dom, _ := analysis.DominantFrequency(freqs, amps)

		settling := "-"
		if r.Settled {
			settling = fmt.Sprintf("%.2fs", r.SettlingTime)
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.1f%%\t%s\t%.4f\n",
			col, r.Initial, r.Final, r.Peak, 100*r.Overshoot, settling, dom)
	}
	return w.Flush()
}

func tuneLoop(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(ranges) == 0 {
		return errors.New("at least one --range is required")
	}
	threshold := cfg.Stability
	if _, ok := metrics.Lookup(metricName, threshold); !ok {
		return errors.Errorf("unknown metric %q (available: %v)", metricName, metrics.Names())
	}

	names := make([]string, 0, len(ranges))
	values := make([][]float64, 0, len(ranges))
	for _, r := range ranges {
		name, vals, err := optim.ParseRange(r)
		if err != nil {
			return err
		}
		names = append(names, name)
		values = append(values, vals)
	}

	gs, err := optim.NewGridSearch(names, values, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	opts := sim.RunOptions{MaxSteps: cfg.Steps()}
	newMetrics := func() []sim.Metric {
		mt, _ := metrics.Lookup(metricName, threshold)
		return []sim.Metric{mt}
	}
	gs.SetParallelism(parallelism)
	best, trials, err := gs.Search(ctx, cfg, metricName, opts, newMetrics)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "PARAMS\t%s\tSTATUS\n", strings.ToUpper(metricName))
	for _, tr := range trials {
		status := "ok"
		val := fmt.Sprintf("%.6f", tr.Value)
		if tr.Err != nil {
			status = tr.Err.Error()
			val = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", optim.FormatParams(tr.Params), val, status)
	}
	if flushErr := w.Flush(); flushErr != nil {
		return flushErr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest: %s  %s=%.6f\n", optim.FormatParams(best.Params), metricName, best.Value)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, runErr := automation.RunScenario(ctx, sc, logger)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN\tSTEPS\tSTATUS")
	for i, r := range results {
		name := r.Step.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", sc.Name, i+1)
		}
		runID := "-"
		if r.Step.SaveAs != "" {
			runID, err = st.Save(runMetadata(r.Step.SaveAs, r.Config), r.Result)
			if err != nil {
				return err
			}
		}
		status := "ok"
		if r.Result.Err != nil {
			status = r.Result.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", name, runID, r.Result.StepsTaken, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturbation,
		NumTrials:    trials,
		Bound:        bound,
		Seed:         seed,
		Parallelism:  parallelism,
	}, logger)
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("trials: %d  stable: %d  unstable: %d\n", len(results), stable, unstable)
	for _, r := range results {
		if r.Err != nil {
			logger.Debugw("trial faulted", "trial", r.TrialID, "init", r.InitState, "error", r.Err)
		}
	}
	return nil
}

func benchLoop(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if benchSteps <= 0 {
		return errors.Errorf("-n must be positive, got %d", benchSteps)
	}
	m, err := cfg.NewModel()
	if err != nil {
		return err
	}

	start := time.Now()
	n := 0
	for ; n < benchSteps && m.ErrorStatus() == nil; n++ {
		m.Step()
	}
	elapsed := time.Since(start)

	fmt.Printf("steps: %d\n", n)
	fmt.Printf("elapsed: %v\n", elapsed)
	if n > 0 {
		perStep := elapsed / time.Duration(n)
		fmt.Printf("per step: %v\n", perStep)
		fmt.Printf("budget used at h=%gs: %.6f%%\n", cfg.StepSize, 100*perStep.Seconds()/cfg.StepSize)
	}
	if err := m.ErrorStatus(); err != nil {
		return errors.Wrap(err, "bench stopped")
	}
	return nil
}
