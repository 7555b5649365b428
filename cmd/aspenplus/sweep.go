package aspenplus

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/distillab/aspenplus/pkg/distill"
	"github.com/distillab/aspenplus/pkg/flowsheet"
	"github.com/distillab/aspenplus/pkg/flowsheet/apwn"
	"github.com/distillab/aspenplus/pkg/metrics"
	"github.com/distillab/aspenplus/pkg/sim"
	"github.com/distillab/aspenplus/pkg/sink"
	"github.com/distillab/aspenplus/pkg/sweep"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	// Register built-in connectors
	_ "github.com/distillab/aspenplus/pkg/sink/clickhouse"
	_ "github.com/distillab/aspenplus/pkg/sink/debug"
	_ "github.com/distillab/aspenplus/pkg/sink/kafka"
	_ "github.com/distillab/aspenplus/pkg/sink/mqtt"
	_ "github.com/distillab/aspenplus/pkg/sink/nats"
	_ "github.com/distillab/aspenplus/pkg/sink/pg"
)

var (
	sweepCase    string
	sweepOut     string
	sweepBackend string
	sweepRunName string

	prometheusEnabled bool
	prometheusAddr    string
)

var sweepCmd = &cobra.Command{
	Use:     "sweep",
	Aliases: []string{"s"},
	Short:   "Run a parameter sweep over a column case",
	Long:    `Solves the case once per grid point, varying the configured axes, and writes one CSV row per point. Results can additionally be published to the configured sinks.`,
	RunE:    runSweep,
}

func runSweep(cmd *cobra.Command, args []string) error {
	if cfg == nil {
		log.Fatal("Configuration not loaded")
	}
	logger := newLogger()
	defer logger.Sync()

	backend := cmp.Or(sweepBackend, cfg.Engine.Backend)
	casePath := cmp.Or(sweepCase, cfg.Engine.Case)
	outPath := cmp.Or(sweepOut, cfg.Sweep.Out)

	// A live session cannot start without its flowsheet; catch that before
	// touching the engine.
	if backend == sim.BackendCOM {
		if casePath == "" {
			fmt.Fprintln(os.Stderr, "no flowsheet: set engine.case or --case")
			os.Exit(2)
		}
		if _, err := os.Stat(casePath); err != nil {
			fmt.Fprintln(os.Stderr, "flowsheet not found:", casePath)
			os.Exit(2)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("Received signal, finishing current point", zap.String("signal", sig.String()))
		cancel()
	}()

	var wg sync.WaitGroup
	if prometheusEnabled {
		addr := cmp.Or(prometheusAddr, cfg.Metrics.ListenAddr)
		go metrics.StartPrometheusServer(ctx, &wg, &metrics.PromServerOpts{Addr: addr, Path: cfg.Metrics.Path})
	}

	var eng flowsheet.Engine
	switch backend {
	case sim.BackendMock:
		eng = flowsheet.DemoColumnCase(cfg.Sweep.Column.NStages)
	case sim.BackendCOM:
		var err error
		eng, err = apwn.New(apwn.Options{
			ProgID:          cfg.Engine.ProgID,
			Visible:         cfg.Engine.Visible,
			SuppressDialogs: cfg.Engine.SuppressDialogs,
		})
		if err != nil {
			return fmt.Errorf("failed to start automation session: %w", err)
		}
	default:
		return fmt.Errorf("unknown backend %q: choose %q or %q", backend, sim.BackendCOM, sim.BackendMock)
	}

	f := distill.NewFacade(eng, cfg.Layout, logger)
	if err := f.Connect(); err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("Closing engine", zap.Error(err))
		}
	}()
	if err := f.LoadCase(cmp.Or(casePath, "demo.bkp")); err != nil {
		return err
	}

	var sinks *sink.Manager
	if len(cfg.Sinks) > 0 {
		sinks = sink.NewManager()
		if err := sinks.Init(cfg.Sinks); err != nil {
			return fmt.Errorf("failed to initialize sinks: %w", err)
		}
		defer func() {
			if err := sinks.CloseAll(); err != nil {
				logger.Warn("Closing sinks", zap.Error(err))
			}
		}()
	}

	runner, err := sweep.NewRunner(f, sweep.Options{
		Feed:    cfg.Sweep.Feed,
		Column:  cfg.Sweep.Column,
		Axes:    cfg.Sweep.Axes,
		RunName: sweepRunName,
		Logger:  logger,
		Sinks:   sinks,
	})
	if err != nil {
		return err
	}

	rows, runErr := runner.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	if err := writeRows(outPath, rows); err != nil {
		return err
	}
	fmt.Printf("Finished sweep %s, wrote %d rows to %s\n", runner.RunName(), len(rows), outPath)

	cancel()
	waitWithTimeout(&wg, 10*time.Second)
	return nil
}

func writeRows(path string, rows []sweep.Row) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := sweep.WriteCSV(out, rows); err != nil {
		out.Close()
		return fmt.Errorf("failed to write results: %w", err)
	}
	return out.Close()
}

// waitWithTimeout lets background servers drain without holding the process
// hostage.
func waitWithTimeout(wg *sync.WaitGroup, d time.Duration) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		log.Printf("Shutdown timed out after %s", d)
	}
}

func init() {
	f := sweepCmd.Flags()
	f.StringVarP(&sweepCase, "case", "c", "", "flowsheet case file, e.g. column.bkp")
	f.StringVarP(&sweepOut, "out", "o", "", "CSV output path")
	f.StringVarP(&sweepBackend, "backend", "b", "", `engine backend ("com" or "mock")`)
	f.StringVar(&sweepRunName, "run-name", "", "name for this run (generated when empty)")
	f.BoolVar(&prometheusEnabled, "metrics", true, "Enable Prometheus metrics server")
	f.StringVar(&prometheusAddr, "metrics-addr", "", "Prometheus metrics server address (default from config)")

	err := viper.BindPFlag("metrics.enabled", f.Lookup("metrics"))
	if err != nil {
		log.Fatalf("Error binding flag 'metrics.enabled': %v", err)
	}

	err = viper.BindPFlag("metrics.listenAddr", f.Lookup("metrics-addr"))
	if err != nil {
		log.Fatalf("Error binding flag 'metrics.listenAddr': %v", err)
	}

	rootCmd.AddCommand(sweepCmd)
}
