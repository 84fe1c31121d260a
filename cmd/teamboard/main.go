package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/teamboard/internal/api"
	"github.com/tgienger/teamboard/internal/config"
	"github.com/tgienger/teamboard/internal/logger"
	"github.com/tgienger/teamboard/internal/service"
	"github.com/tgienger/teamboard/internal/store"
	"github.com/tgienger/teamboard/internal/ui"
	"github.com/tgienger/teamboard/internal/ui/views"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("teamboard %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Output: cfg.Log.Output,
		File:   cfg.Log.File,
	}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	kv, err := store.Open(store.Options{
		Backend:    cfg.Store.Backend,
		SQLitePath: cfg.Store.SQLitePath,
		RedisURL:   cfg.Store.RedisURL,
		Namespace:  cfg.Store.Namespace,
	})
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	defer kv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := api.NewSession(ctx, kv)
	if cfg.API.Token != "" && !session.Authenticated() {
		session.SetToken(ctx, cfg.API.Token)
	}
	client := api.NewClient(cfg.API.BaseURL, session, api.WithTimeout(cfg.API.Timeout))

	svc := views.Services{
		Auth:     service.NewAuthService(client, session),
		Teams:    service.NewTeamService(ctx, client, store.NewOverrides(kv)),
		Projects: service.NewProjectService(client),
		Tasks:    service.NewTaskService(client),
		Comments: service.NewCommentService(client),
	}
	logger.Info("teamboard %s starting against %s (store: %s)", version, cfg.API.BaseURL, cfg.Store.Backend)

	app := ui.NewApp(ctx, svc, client, kv)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run application: %w", err)
	}
	return nil
}
