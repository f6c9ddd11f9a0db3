package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	lithotop "github.com/jondoveston/lithotop/internal"
	"github.com/jondoveston/lithotop/internal/fixture"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lithotop [api-url]",
	Short: "Terminal dashboard for lithography machine telemetry",
	Long: `lithotop lists lithography machines, shows recent telemetry and stats
for the selected machine, and charts LUSU uniformity and intensity with
interactive filters.

Examples:
  lithotop http://litho-srv:8000
  lithotop --api-url http://litho-srv:8000 --export-dir ~/exports
  LITHOTOP_API_URL=http://litho-srv:8000 lithotop
  lithotop serve-fixture --listen :8000`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

var serveFixtureCmd = &cobra.Command{
	Use:   "serve-fixture",
	Short: "Serve the telemetry API from a YAML fixture",
	Args:  cobra.NoArgs,
	RunE:  serveFixture,
}

func init() {
	cobra.OnInitialize(readConfig)

	// Define flags
	rootCmd.PersistentFlags().String("config", "", "config file (default ./lithotop.yaml)")
	rootCmd.Flags().String("api-url", "", "telemetry API base URL")
	rootCmd.Flags().Duration("refresh-interval", lithotop.RefreshDuration(), "automatic reload interval")
	rootCmd.Flags().Duration("request-timeout", lithotop.RequestTimeout(), "per-request timeout")
	rootCmd.Flags().Int("metrics-limit", lithotop.METRICS_LIMIT, "recent metric records to load")
	rootCmd.Flags().String("export-dir", ".", "directory CSV exports are written to")
	rootCmd.Flags().String("log-file", "lithotop.log", "log file while the dashboard runs")
	rootCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address")
	rootCmd.Flags().String("metrics-dump", "", "write Prometheus metrics to this file on exit")
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")

	serveFixtureCmd.Flags().String("listen", ":8000", "listen address")
	serveFixtureCmd.Flags().String("fixture", "", "fixture YAML file (default: built-in)")
	rootCmd.AddCommand(serveFixtureCmd)

	// Bind flags to Viper keys (note: dashes in flags become underscores in viper)
	for _, key := range []string{"api-url", "refresh-interval", "request-timeout", "metrics-limit", "export-dir", "log-file", "metrics-addr", "metrics-dump"} {
		if err := viper.BindPFlag(flagKey(key), rootCmd.Flags().Lookup(key)); err != nil {
			log.Fatalf("failed to bind %s: %v", key, err)
		}
	}
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("listen", serveFixtureCmd.Flags().Lookup("listen"))
	viper.BindPFlag("fixture", serveFixtureCmd.Flags().Lookup("fixture"))

	// Configure Viper for environment variables
	viper.SetEnvPrefix("lithotop")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("api_url", "http://localhost:8000")
}

func flagKey(flag string) string {
	out := []byte(flag)
	for i, c := range out {
		if c == '-' {
			out[i] = '_'
		}
	}
	return string(out)
}

func readConfig() {
	if path := viper.GetString("config"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("lithotop")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Printf("Failed to read config: %v", err)
		}
		return
	}
	log.Printf("Using config file %s", viper.ConfigFileUsed())
}

func run(cmd *cobra.Command, args []string) error {
	// Handle --version flag first
	versionFlag, _ := cmd.Flags().GetBool("version")
	if versionFlag {
		fmt.Printf("lithotop version %s\n", version)
		return nil
	}

	// Set up logging
	log.SetOutput(os.Stderr)
	log.Printf("Starting lithotop %s", version)

	// Positional argument only if api_url not set by env var or flag
	if len(args) == 1 && !cmd.Flags().Changed("api-url") && os.Getenv("LITHOTOP_API_URL") == "" {
		viper.Set("api_url", args[0])
	}

	timeout := viper.GetDuration("request_timeout")
	baseURL, err := lithotop.ResolveBaseURL(cmd.Context(), viper.GetString("api_url"), timeout)
	if err != nil {
		// keep going: the dashboard shows the load failure in the machine list
		log.Printf("Warning: %v", err)
		baseURL, err = url.Parse(viper.GetString("api_url"))
		if err != nil {
			return fmt.Errorf("invalid api url: %w", err)
		}
	}

	telemetry := lithotop.NewTelemetry()
	if addr := viper.GetString("metrics_addr"); addr != "" {
		go serveMetrics(addr, telemetry)
	}

	ctrl := lithotop.NewController(
		lithotop.NewAPIClient(baseURL, timeout, telemetry),
		lithotop.NewExporter(viper.GetString("export_dir")),
		lithotop.NewNotifications(lithotop.NotificationTTL()),
		telemetry,
		viper.GetInt("metrics_limit"),
	)

	// Log to a file while the dashboard owns the terminal
	logFile, err := tea.LogToFile(viper.GetString("log_file"), "lithotop")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	err = lithotop.Dashboard(ctrl, viper.GetDuration("refresh_interval"))

	if totals, totalsErr := telemetry.Totals(); totalsErr == nil {
		log.Printf("Session: %.0f API requests, %.0f reloads, %.0f stale responses dropped",
			totals["lithotop_api_requests_total"], totals["lithotop_reloads_total"], totals["lithotop_stale_responses_total"])
	}

	if path := viper.GetString("metrics_dump"); path != "" {
		if dumpErr := dumpMetrics(path, telemetry); dumpErr != nil {
			log.Printf("Failed to dump metrics: %v", dumpErr)
		}
	}
	return err
}

func serveMetrics(addr string, telemetry *lithotop.Telemetry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler())
	log.Printf("Serving metrics on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("Metrics server stopped: %v", err)
	}
}

func dumpMetrics(path string, telemetry *lithotop.Telemetry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return telemetry.WriteText(f)
}

func serveFixture(cmd *cobra.Command, args []string) error {
	log.SetOutput(os.Stderr)

	f, err := fixture.Load(viper.GetString("fixture"))
	if err != nil {
		return err
	}
	e := fixture.New(f)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	addr := viper.GetString("listen")
	go func() {
		log.Printf("Serving fixture API on %s (%d machines)", addr, len(f.Machines))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Fixture server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
