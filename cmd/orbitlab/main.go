package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/maren-k/orbitlab/internal/export"
	"github.com/maren-k/orbitlab/internal/metrics"
	"github.com/maren-k/orbitlab/internal/scenario"
	"github.com/maren-k/orbitlab/internal/store"
	"github.com/maren-k/orbitlab/internal/trajectory"
	"github.com/maren-k/orbitlab/internal/vec"
	"github.com/maren-k/orbitlab/internal/viz"
)

var (
	dataDir    string
	configFile string
	dt         float64
	duration   float64
	sampleEach int
	bodyName   string
	horizon    float64
	format     string
	outFile    string
	frameRate  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "orbitlab",
		Short: "orbital mechanics simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".orbitlab", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scenario and store the results",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "scenario file path (yaml)")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "timestep override")
	runCmd.Flags().Float64Var(&duration, "time", 0, "duration override")
	runCmd.Flags().IntVar(&sampleEach, "sample", 10, "record every Nth tick")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body distances over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run samples",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "csv", "output format: csv, json or svg")
	exportCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout, required for svg)")

	trajCmd := &cobra.Command{
		Use:   "trajectory [preset]",
		Short: "precompute a body's trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  precomputeTrajectory,
	}
	trajCmd.Flags().StringVar(&configFile, "config", "", "scenario file path (yaml)")
	trajCmd.Flags().StringVar(&bodyName, "body", "", "body name (required)")
	trajCmd.Flags().Float64Var(&horizon, "horizon", 0, "lookahead seconds (default scenario duration)")
	trajCmd.Flags().Float64Var(&dt, "dt", 0, "timestep override")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a scenario with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "scenario file path (yaml)")
	liveCmd.Flags().Float64Var(&dt, "dt", 0, "timestep override")
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range scenario.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "benchmark tick throughput",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScenario,
	}
	benchCmd.Flags().StringVar(&configFile, "config", "", "scenario file path (yaml)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, trajCmd, liveCmd, presetsCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadScenario resolves the scenario from a preset name, a config file,
// or both (the file wins), then applies flag overrides.
func loadScenario(cmd *cobra.Command, args []string) (*scenario.Scenario, error) {
	var sc *scenario.Scenario
	var err error

	switch {
	case configFile != "":
		sc, err = scenario.Load(configFile)
	case len(args) > 0:
		sc, err = scenario.GetPreset(args[0])
	default:
		return nil, fmt.Errorf("need a preset name or --config (try: orbitlab presets)")
	}
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("dt") && dt > 0 {
		sc.Dt = dt
	}
	if cmd.Flags().Changed("time") && duration > 0 {
		sc.Duration = duration
	}
	return sc, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	u, err := sc.Build()
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	observers := []metrics.Observer{
		metrics.NewEnergyDrift(),
		metrics.NewAngularMomentumDrift(),
	}

	if sampleEach < 1 {
		sampleEach = 1
	}

	fmt.Printf("running %s...\n", sc.Name)
	start := time.Now()

	ids := u.Bodies()
	var samples []store.Sample
	record := func(t float64) {
		for _, id := range ids {
			if u.Fault(id) != nil {
				continue
			}
			info, err := u.Info(id)
			if err != nil {
				continue
			}
			bst, err := u.State(id)
			if err != nil {
				continue
			}
			p := bst.CurrentPosition
			samples = append(samples, store.Sample{Time: t, Body: info.DisplayName(), X: p.X, Y: p.Y, Z: p.Z})
		}
	}

	steps := int(math.Round(sc.Duration / sc.Dt))
	if steps < 1 {
		steps = 1
	}

	if err := u.Prime(0); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	for _, obs := range observers {
		obs.Observe(u, 0)
	}
	record(0)

	faulted := make(map[string]bool)
	t := 0.0
	for i := 1; i <= steps; i++ {
		next := float64(i) * sc.Dt
		if err := u.Advance(t, next-t); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		t = next

		for _, obs := range observers {
			obs.Observe(u, t)
		}
		if i%sampleEach == 0 || i == steps {
			record(t)
		}
		for _, id := range ids {
			if u.Fault(id) != nil {
				info, _ := u.Info(id)
				faulted[info.DisplayName()] = true
			}
		}
	}
	elapsed := time.Since(start)

	meta := store.RunMetadata{
		Scenario: sc.Name,
		G:        sc.G,
		Dt:       sc.Dt,
		Duration: sc.Duration,
		Metrics:  make(map[string]float64),
	}
	for _, id := range ids {
		info, err := u.Info(id)
		if err == nil {
			meta.Bodies = append(meta.Bodies, info.DisplayName())
		}
	}
	for _, obs := range observers {
		meta.Metrics[obs.Name()] = obs.Value()
	}

	runID, err := st.Save(meta, samples)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d, samples: %d\n", steps, len(samples))
	if len(faulted) > 0 {
		names := make([]string, 0, len(faulted))
		for name := range faulted {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("faulted bodies: %v\n", names)
	}
	fmt.Println("\nmetrics:")
	for _, obs := range observers {
		fmt.Printf("  %s: %.6e\n", obs.Name(), obs.Value())
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tDT\tBODIES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0fs\t%.2fs\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			len(run.Bodies),
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(samples))

	byBody := make(map[string][]float64)
	for _, sm := range samples {
		r := math.Sqrt(sm.X*sm.X + sm.Y*sm.Y + sm.Z*sm.Z)
		byBody[sm.Body] = append(byBody[sm.Body], r)
	}
	names := make([]string, 0, len(byBody))
	for name := range byBody {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		graph := asciigraph.Plot(byBody[name],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s distance from origin", name)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to export")
	}

	switch format {
	case "csv":
		out := os.Stdout
		if outFile != "" {
			f, err := os.Create(outFile)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		w := csv.NewWriter(out)
		defer w.Flush()
		if err := w.Write([]string{"time", "body", "x", "y", "z"}); err != nil {
			return err
		}
		for _, sm := range samples {
			row := []string{
				strconv.FormatFloat(sm.Time, 'g', 17, 64),
				sm.Body,
				strconv.FormatFloat(sm.X, 'g', 17, 64),
				strconv.FormatFloat(sm.Y, 'g', 17, 64),
				strconv.FormatFloat(sm.Z, 'g', 17, 64),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil

	case "json":
		if outFile != "" {
			return export.SamplesToJSON(outFile, samples)
		}
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Meta    *store.RunMetadata `json:"meta"`
			Samples []store.Sample     `json:"samples"`
		}{meta, samples})

	case "svg":
		if outFile == "" {
			return fmt.Errorf("svg export needs --out")
		}
		svg := export.TrajectoriesToSVG(samples, 800, 800)
		if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
		return nil
	}
	return fmt.Errorf("unknown format: %s", format)
}

func precomputeTrajectory(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	if bodyName == "" {
		return fmt.Errorf("--body is required")
	}

	u, err := sc.Build()
	if err != nil {
		return err
	}
	id, ok := u.ByName(bodyName)
	if !ok {
		return fmt.Errorf("unknown body: %s", bodyName)
	}

	h := horizon
	if h <= 0 {
		h = sc.Duration
	}

	start := time.Now()
	tm, err := trajectory.Precompute(u, id, 0, h, trajectory.DefaultOptions(sc.Dt))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("body: %s\n", bodyName)
	fmt.Printf("horizon: %.0fs, samples: %d, computed in %v\n\n", h, tm.Len(), elapsed)

	radii := make([]float64, 0, tm.Len())
	tm.Each(func(t float64, p vec.Vec3) bool {
		radii = append(radii, p.Norm())
		return true
	})
	if len(radii) > 1 {
		graph := asciigraph.Plot(radii,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("distance from origin over lookahead"),
		)
		fmt.Println(graph)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	u, err := sc.Build()
	if err != nil {
		return err
	}
	return viz.Run(u, sc.Dt, frameRate)
}

func benchScenario(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	durations := []float64{sc.Duration / 10, sc.Duration}
	dts := []float64{sc.Dt, sc.Dt * 10}

	fmt.Printf("benchmarking %s\n\n", sc.Name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, dur := range durations {
		for _, step := range dts {
			u, err := sc.Build()
			if err != nil {
				return err
			}

			steps := int(math.Round(dur / step))
			if steps < 1 {
				steps = 1
			}

			start := time.Now()
			t := 0.0
			for i := 1; i <= steps; i++ {
				next := float64(i) * step
				u.Advance(t, next-t)
				t = next
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%.0fs\t%.2fs\t%d\t%v\t%.0f\n",
				dur, step, steps, elapsed, float64(steps)/elapsed.Seconds())
		}
	}

	return w.Flush()
}
