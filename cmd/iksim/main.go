// Package main is the entry point for the stance-ik simulator.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/stance-ik/internal/config"
	"github.com/Faultbox/stance-ik/internal/game"
	"github.com/Faultbox/stance-ik/internal/logger"
	"github.com/Faultbox/stance-ik/internal/network"
	"github.com/Faultbox/stance-ik/internal/trace"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== stance-ik simulator ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("simulation failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("simulation finished normally")
}

func run(ctx context.Context, cfg *config.Config) error {
	g, err := game.New(cfg, logger.Named("game"))
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	hello := g.Hello()

	// Trace recording
	var (
		store    *trace.Store
		recorder *trace.Recorder
	)
	if cfg.Trace.Path != "" {
		store, err = trace.OpenStore(cfg.Trace.Path)
		if err != nil {
			return fmt.Errorf("open trace: %w", err)
		}
		defer store.Close()

		recorder, err = store.StartRun(ctx, trace.RunMeta{
			World:      hello.World,
			TickRateHz: hello.TickRateHz,
			Tuning:     hello.Tuning,
		}, logger.Named("trace"))
		if err != nil {
			return fmt.Errorf("start trace run: %w", err)
		}
		defer recorder.Close()
		g.AddSink(recorder)
		logger.Info("recording trace",
			zap.String("path", cfg.Trace.Path),
			zap.Int64("run", recorder.RunID()))
	}

	// Live telemetry. Bind before the loop so a busy address fails the run.
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	var server *network.Server
	serveErr := make(chan error, 1)
	if cfg.Telemetry.Addr != "" {
		server = network.NewServer(logger.Named("telemetry"))
		if err := server.SetHello(hello); err != nil {
			return err
		}
		ln, err := server.Listen(cfg.Telemetry.Addr)
		if err != nil {
			return err
		}
		g.AddSink(server)

		go func() {
			if err := server.Serve(runCtx, ln); err != nil {
				serveErr <- err
				cancelRun()
			}
		}()
	}

	if err := g.Run(runCtx); err != nil {
		return err
	}

	select {
	case err := <-serveErr:
		return err
	default:
	}

	st := g.Stats()
	fields := []zap.Field{
		zap.Uint64("ticks", st.Ticks),
		zap.Uint64("active_frames", st.ActiveFrames),
		zap.Uint64("suspended_frames", st.SuspendedFrames),
		zap.Uint64("phase_changes", st.PhaseChanges),
		zap.Uint64("probe_misses", st.ProbeMisses),
	}
	if server != nil {
		fields = append(fields, zap.Uint64("telemetry_dropped", server.Dropped()))
	}
	logger.Info("run summary", fields...)

	if recorder == nil {
		return nil
	}
	if err := recorder.Close(); err != nil {
		return err
	}
	if cfg.Trace.Export != "" {
		return export(store, recorder.RunID(), cfg.Trace.Export)
	}
	return nil
}

// export writes the finished run next to the database. It runs after the
// simulation context may have been cancelled, so it uses its own.
func export(store *trace.Store, runID int64, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	n, err := store.ExportJSONLZstd(context.Background(), runID, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	logger.Info("trace exported", zap.String("path", path), zap.Int("frames", n))
	return nil
}
