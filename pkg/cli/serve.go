package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/apistub/apistub/pkg/airtable"
	"github.com/apistub/apistub/pkg/config"
	"github.com/apistub/apistub/pkg/engine"
	"github.com/apistub/apistub/pkg/logging"
)

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	configPath string
	host       string
	port       int
	authToken  string
	logLevel   string
	logFormat  string
	printURL   bool
}

// serveFlagVals is the package-level instance bound to cobra flags.
var serveFlagVals serveFlags

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simulated Airtable API server",
	Long: `Start an HTTP server emulating the Airtable REST API against a freshly
seeded in-memory store. The server runs in the foreground until SIGTERM or
SIGINT.`,
	Example: `  # Serve on the default port
  apistub serve

  # Require a bearer token and auto-assign a port
  apistub serve --auth-token secret --port 0 --print-url

  # Load settings from a config file
  apistub serve --config apistub.yaml`,
	RunE: runServe,
}

func init() {
	f := &serveFlagVals

	serveCmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Path to a config file (YAML or JSON)")
	serveCmd.Flags().StringVar(&f.host, "host", "", "Bind address (overrides config)")
	serveCmd.Flags().IntVarP(&f.port, "port", "p", -1, "Listen port, 0 = OS auto-assign (overrides config)")
	serveCmd.Flags().StringVar(&f.authToken, "auth-token", "", "Required bearer token (overrides config)")
	serveCmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	serveCmd.Flags().StringVar(&f.logFormat, "log-format", "", "Log format: text, json")
	serveCmd.Flags().BoolVar(&f.printURL, "print-url", false, "Print the server URL to stdout on startup")
}

// loadServeConfig resolves the effective configuration: file first, then
// flag overrides.
func loadServeConfig(f *serveFlags) (*config.ServerConfig, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.LoadFromFile(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if f.host != "" {
		cfg.Host = f.host
	}
	if f.port >= 0 {
		cfg.Port = f.port
	}
	if f.authToken != "" {
		cfg.AuthToken = f.authToken
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.logFormat != "" {
		cfg.LogFormat = f.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeConfig(&serveFlagVals)
	if err != nil {
		return err
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
	})

	svc := airtable.New(nil, log)
	srv := engine.NewServer(engine.Config{
		Addr:      cfg.Addr(),
		AuthToken: cfg.AuthToken,
	}, svc, log)

	if err := srv.Start(cmd.Context()); err != nil {
		return err
	}

	if serveFlagVals.printURL {
		fmt.Fprintf(os.Stdout, "http://%s\n", srv.Addr())
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
