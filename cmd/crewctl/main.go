// Command crewctl is the terminal client for the techcrew API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"techcrew/internal/config"
	"techcrew/internal/gateway"
	"techcrew/internal/logger"
)

var (
	flagURL     string
	flagAPIKey  string
	flagToken   string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "crewctl",
	Short: "Terminal client for the techcrew production tracker",
	Long: `crewctl talks to a techcrew server over its REST API.

Connection settings come from TECHCREW_URL, TECHCREW_API_KEY and
TECHCREW_TOKEN (or a .env file) and can be overridden with flags.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "server base URL (default $TECHCREW_URL)")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "public API key (default $TECHCREW_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "bearer token (default $TECHCREW_TOKEN)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(tuiCmd, listCmd, tokenCmd, auditCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func clientConfig() config.ClientConfig {
	cfg := config.LoadClient()
	if flagURL != "" {
		cfg.URL = flagURL
	}
	if flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}
	if flagToken != "" {
		cfg.Token = flagToken
	}
	return cfg
}

// newLogger writes to stderr, or only to the log directory when the
// terminal belongs to the full-screen UI.
func newLogger(fullscreen bool) (*logger.Logger, error) {
	opts := logger.Options{Terminal: os.Stderr, MinLevel: logger.WARN, Name: "crewctl"}
	if flagVerbose {
		opts.MinLevel = logger.DEBUG
	}
	if fullscreen {
		opts.Terminal = io.Discard
		opts.Dir = os.Getenv("LOG_DIR")
	}
	return logger.New(opts)
}

func newClient(fullscreen bool) (*gateway.Client, *logger.Logger, error) {
	log, err := newLogger(fullscreen)
	if err != nil {
		return nil, nil, err
	}
	cfg := clientConfig()
	if cfg.Token == "" {
		log.Close()
		return nil, nil, fmt.Errorf("no token: set TECHCREW_TOKEN or pass --token (see 'crewctl token')")
	}
	return gateway.New(cfg, log), log, nil
}
