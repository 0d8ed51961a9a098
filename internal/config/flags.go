package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagTicks     = flag.Int("ticks", -1, "Number of ticks to run (0 = until interrupted)")
	flagTrace     = flag.String("trace", "", "SQLite trace database path")
	flagTelemetry = flag.String("telemetry", "", "Telemetry listen address, e.g. :8088")
	flagTerrain   = flag.String("terrain", "", "Terrain kind: flat, slope or heights")
	flagHeadless  = flag.Bool("headless", false, "Run ticks as fast as possible")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagTicks >= 0 {
		cfg.Sim.Ticks = *flagTicks
	}
	if *flagTrace != "" {
		cfg.Trace.Path = *flagTrace
	}
	if *flagTelemetry != "" {
		cfg.Telemetry.Addr = *flagTelemetry
	}
	if *flagTerrain != "" {
		cfg.Terrain.Kind = *flagTerrain
	}
	if *flagHeadless {
		cfg.Sim.Realtime = false
	}
}
