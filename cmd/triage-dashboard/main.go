// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

// triage-dashboard is the terminal UI for the clinic's WhatsApp
// triage queue. It connects to the triage service's REST API for
// conversation data and mutations, and to its websocket channel for
// realtime refresh. Configuration comes from a YAML file (TRIAGE_CONFIG
// or --config) with flag overrides for the common knobs; a .env file
// in the working directory is loaded first, matching the service's
// own convention.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/user"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nassif-clinic/triage/lib/channel"
	"github.com/nassif-clinic/triage/lib/config"
	"github.com/nassif-clinic/triage/lib/convsync"
	"github.com/nassif-clinic/triage/lib/dashboard"
	"github.com/nassif-clinic/triage/lib/triageui"
	"github.com/nassif-clinic/triage/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var apiURL string
	var channelURL string
	var noChannel bool
	var operator string
	var logOutput string

	flagSet := pflag.NewFlagSet("triage-dashboard", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to triage.yaml (default: $TRIAGE_CONFIG)")
	flagSet.StringVar(&apiURL, "api-url", "", "triage service base URL (overrides config)")
	flagSet.StringVar(&channelURL, "ws-url", "", "websocket endpoint (overrides config)")
	flagSet.BoolVar(&noChannel, "no-channel", false, "disable the realtime channel; manual refresh only")
	flagSet.StringVar(&operator, "operator", "", "operator name attached to notes and reviews")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file (in addition to TUI display)")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("triage-dashboard %s\n", version.Info())
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if channelURL != "" {
		cfg.Channel.URL = channelURL
	}
	if noChannel {
		cfg.Channel.Disabled = true
	}
	if operator == "" {
		operator = cfg.Operator.Name
	}
	if operator == "" {
		if current, err := user.Current(); err == nil {
			operator = current.Username
		}
	}

	return runDashboard(cfg, operator, logOutput)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// runDashboard wires the session together: REST client, websocket
// manager, sync controller, and the bubbletea program.
//
// Background logging (from the channel reconnect loop and failed
// fetches) routes through a triageui.LogHandler that displays warnings
// and errors in the status bar instead of writing to stderr, which
// would corrupt the alt-screen display. An optional file handler
// captures all records as JSON for post-mortem debugging.
func runDashboard(cfg *config.Config, operator, logOutput string) error {
	tuiHandler := triageui.NewLogHandler(logLevel(cfg.Logging.Level))

	var logger *slog.Logger
	if logOutput == "" {
		logOutput = cfg.Logging.File
	}
	if logOutput != "" {
		fileHandler, closeFile, err := openFileLogHandler(logOutput)
		if err != nil {
			return fmt.Errorf("cannot open log file %s: %w", logOutput, err)
		}
		defer closeFile()
		logger = slog.New(fanoutHandler{tuiHandler, fileHandler})
	} else {
		logger = slog.New(tuiHandler)
	}

	client, err := dashboard.NewClient(dashboard.ClientConfig{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout()},
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer client.CloseIdleConnections()

	var manager *channel.Manager
	if !cfg.Channel.Disabled {
		manager, err = channel.NewManager(channel.Config{
			Endpoint: func() (string, error) { return cfg.ChannelURL(), nil },
			Logger:   logger,
		})
		if err != nil {
			return err
		}
	}

	controller := convsync.NewController(client, manager, logger)
	if err := controller.Start(); err != nil {
		return err
	}
	defer controller.Stop()

	model := triageui.NewModel(controller, client)
	model.SetOperator(operator)

	program := tea.NewProgram(model, tea.WithAltScreen())
	tuiHandler.SetProgram(program)

	_, err = program.Run()
	return err
}

func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openFileLogHandler creates a slog.JSONHandler writing to the given
// path. The file is created or truncated.
func openFileLogHandler(path string) (slog.Handler, func(), error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return handler, func() { file.Close() }, nil
}

// fanoutHandler is a slog.Handler that sends each record to multiple
// underlying handlers. A record is enabled if any sub-handler is
// enabled for that level.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Painel de triagem — interactive terminal UI for the clinic's
WhatsApp triage queue.

Connects to the triage service over REST for conversation data and
mutations, and over websocket for realtime refresh. Without a config
file, defaults target a local development service on port 8000.

Usage:
  triage-dashboard [flags]

Examples:
  # Local development service
  triage-dashboard

  # Explicit config file
  triage-dashboard --config /etc/triage/triage.yaml

  # Point at another service, channel disabled
  triage-dashboard --api-url https://api.clinicanassif.com.br --no-channel

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
