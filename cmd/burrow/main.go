package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/launcher"
	"github.com/cuemby/burrow/pkg/lifecycle"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/spf13/cobra"
)

func main() {
	// The re-exec'd child path never goes through cobra: argv[1] is the
	// hidden init marker, not a subcommand, and cobra would reject it.
	if len(os.Args) > 1 && os.Args[1] == launcher.InitMarker {
		if err := launcher.RunInit(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "init: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "burrow",
	Short: "burrow - a minimal Linux container runtime",
	Long: `burrow launches processes in isolated kernel namespaces, places
them under resource-limited cgroups, and manages their lifecycle:
run, list, status, freeze, thaw, stop, start, and rm.`,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", true, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("config", "", "Path to a burrow config file")
	rootCmd.PersistentFlags().String("metrics-addr", "", "Address to serve /metrics, /health, /live on (disabled if empty)")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(freezeCmd)
	rootCmd.AddCommand(thawCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(rmCmd)
}

func initLogging() {
	flags := rootCmd.PersistentFlags()
	configPath, _ := flags.GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		cfg = config.Default()
	}
	logLevel, logJSON := cfg.LogLevel, cfg.LogJSON
	if flags.Changed("log-level") {
		logLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-json") {
		logJSON, _ = flags.GetBool("log-json")
	}

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

// newManager loads config from --config (overlaid on defaults) and
// constructs a lifecycle.Manager, optionally serving Prometheus
// metrics and health endpoints if --metrics-addr is set.
func newManager(cmd *cobra.Command) (*lifecycle.Manager, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	m, err := lifecycle.NewManager(cfg)
	if err != nil {
		return nil, fmt.Errorf("create lifecycle manager: %w", err)
	}
	metrics.RegisterComponent("state", true, "")
	metrics.RegisterComponent("cgroup", true, "")

	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	if metricsAddr == "" {
		metricsAddr = cfg.MetricsAddr
	}
	if metricsAddr != "" {
		collector := metrics.NewCollector(m.Store, m.Paths)
		collector.Start()

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", metrics.HealthHandler())
		mux.Handle("/live", metrics.LivenessHandler())
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				log.Errorf("metrics server: %v", err)
			}
		}()
	}

	return m, nil
}
