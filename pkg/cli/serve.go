package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nna-wms/wmsconsole/pkg/config"
	"github.com/nna-wms/wmsconsole/pkg/console"
	"github.com/nna-wms/wmsconsole/pkg/logging"
	"github.com/nna-wms/wmsconsole/pkg/menu"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	listen    string
	apiURL    string
	menuFile  string
	logLevel  string
	logFormat string
	logFile   string
	idleTTL   time.Duration
}

// serveFlagVals is the package-level instance bound to cobra flags.
var serveFlagVals serveFlags

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the console HTTP server",
	Long: `Run the console HTTP server in the foreground until SIGINT/SIGTERM.

Users sign in with an access token issued by the WMS API. Their pages come
from the menu tree carried in the token; tokens without one get the tree from
--menu-file.`,
	Example: `  # Serve against a local API
  wmsconsole serve --api-url http://localhost:3000/api

  # Use a config file and a fallback menu
  wmsconsole serve -c wms.yaml --menu-file menus.yaml

  # JSON logs, with a copy kept on disk
  wmsconsole serve --log-format json --log-file /var/log/wmsconsole.log`,
	RunE: runServe,
}

func init() {
	f := &serveFlagVals

	serveCmd.Flags().StringVarP(&f.listen, "listen", "l", config.DefaultListen, "HTTP listen address")
	serveCmd.Flags().StringVar(&f.apiURL, "api-url", config.DefaultBaseURL, "WMS API base URL")
	serveCmd.Flags().StringVar(&f.menuFile, "menu-file", "", "Fallback menu tree (YAML or JSON)")
	serveCmd.Flags().StringVar(&f.logLevel, "log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&f.logFormat, "log-format", config.DefaultLogFormat, "Log format (text, json)")
	serveCmd.Flags().StringVar(&f.logFile, "log-file", "", "Also write JSON logs to this file")
	serveCmd.Flags().DurationVar(&f.idleTTL, "idle-ttl", console.DefaultWorkspaceTTL, "How long an idle user's data is kept")

	rootCmd.AddCommand(serveCmd)
}

// applyServeFlags layers explicitly set flags over cfg.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	f := &serveFlagVals
	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.SetListen(f.listen)
	}
	if flags.Changed("api-url") {
		cfg.SetBaseURL(f.apiURL)
	}
	if flags.Changed("menu-file") {
		cfg.SetMenuFile(f.menuFile)
	}
	if flags.Changed("log-level") {
		cfg.SetLogLevel(f.logLevel)
	}
	if flags.Changed("log-format") {
		cfg.SetLogFormat(f.logFormat)
	}
	if flags.Changed("log-file") {
		cfg.SetLogFile(f.logFile)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyServeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Validate has already rejected unknown levels.
	level, _ := logging.ParseLevel(cfg.Log.Level)
	logCfg := logging.Config{
		Level:  level,
		Format: logging.Format(cfg.Log.Format),
		Output: os.Stderr,
	}
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logCfg.Mirror = f
	}
	log := logging.New(logCfg)

	var fallback []menu.Node
	if cfg.Menu.File != "" {
		fallback, err = menu.LoadFile(cfg.Menu.File)
		if err != nil {
			return fmt.Errorf("failed to load menu file: %w", err)
		}
		log.Info("loaded fallback menu", "file", cfg.Menu.File, "paths", len(menu.Paths(fallback)))
	}

	srv, err := console.New(console.Options{
		Config:       cfg,
		Logger:       log,
		Fallback:     fallback,
		WorkspaceTTL: serveFlagVals.idleTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		return srv.SweepWorkspaces(gctx, sweepInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down console")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
