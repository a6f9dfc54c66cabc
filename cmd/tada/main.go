package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/app"
	"github.com/idilsaglam/tada/internal/cli"
	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/session"
	"github.com/idilsaglam/tada/internal/tui"
	"github.com/idilsaglam/tada/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Root flags (apply to every subcommand)
	fs := flag.NewFlagSet("tada", flag.ContinueOnError)
	cfg, err := config.Load(fs, os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 2
	}

	ui.SetTheme(cfg.Theme)
	logger := logging.New(os.Stderr, logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Prefix: "tada",
	})
	logger.Debug("config loaded", "api", cfg.APIURL, "state_dir", cfg.StateDir, "files", cfg.Files)

	sess, err := session.Open(session.NewFileStore(cfg.StateDir), session.WithOverride(cfg.Token))
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 1
	}

	client, err := newClient(cfg, logger)
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pres := cli.NewPresenter(os.Stdout, os.Stderr)
	ctrl := app.New(client, sess, pres, logger.WithPrefix("app"))
	runner := cli.New(ctrl, pres, cli.Options{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		APIURL: client.BaseURL(),
		Interactive: func(ctx context.Context) error {
			return interactive(ctx, cfg, sess)
		},
	})

	code := runner.Run(ctx, fs.Args())
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	return code
}

func newClient(cfg *config.Config, logger *log.Logger) (*api.Client, error) {
	opts := []api.Option{api.WithLogger(logger.WithPrefix("api"))}
	if d := cfg.RequestTimeout(); d > 0 {
		opts = append(opts, api.WithTimeout(d))
	}
	return api.New(cfg.APIURL, opts...)
}

// interactive runs the full-screen UI. Its log goes to a file in the state
// directory because stderr shares the screen.
func interactive(ctx context.Context, cfg *config.Config, sess *session.Session) error {
	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(cfg.StateDir, "tui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open ui log: %w", err)
	}
	defer f.Close()

	logger := logging.New(f, logging.Options{
		Level:           cfg.LogLevel,
		Format:          cfg.LogFormat,
		ReportTimestamp: true,
		Prefix:          "tada ui",
	})
	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	return tui.Run(ctx, tui.Options{
		Backend: client,
		Session: sess,
		Logger:  logger,
	})
}
