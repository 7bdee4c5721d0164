package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"stylebook/internal/adapters/editor"
	"stylebook/internal/adapters/opener"
	"stylebook/internal/adapters/tasks"
	"stylebook/internal/adapters/tui"
	"stylebook/internal/config"
	"stylebook/internal/logging"
	"stylebook/internal/setup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	dbFlag := flag.String("db", "", "path to the settings database (default from config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *dbFlag != "" {
		cfg.Database = *dbFlag
	}

	logCtx, logFile, err := logging.File(context.Background(), cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx, cancel := context.WithCancel(logCtx)
	defer cancel()

	env, err := setup.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer env.Close()

	runner := tasks.NewManager()
	defer runner.CancelAll()

	app := tui.NewApp(ctx, env.App, runner, opener.NewOpener(), editor.New(cfg.Editor))
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	tui.Watch(env.App, p)

	_, err = p.Run()
	return err
}
