package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/c-hri-sw-u/PalPal/internal/config"
	"github.com/c-hri-sw-u/PalPal/internal/database"
	"github.com/c-hri-sw-u/PalPal/internal/database/repository"
	"github.com/c-hri-sw-u/PalPal/internal/llm"
	"github.com/c-hri-sw-u/PalPal/internal/secrets"
	"github.com/c-hri-sw-u/PalPal/internal/service"
	"github.com/c-hri-sw-u/PalPal/internal/supabase"
	"github.com/c-hri-sw-u/PalPal/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	if err := database.RunMigrations(cfg.Database.Path, "internal/database/migrations"); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	stateRepo := repository.NewStateRepo(db)
	palCache := repository.NewPalCacheRepo(db)

	client := supabase.New(cfg.Supabase.URL, cfg.Supabase.AnonKey, logger)
	go func() {
		if err := client.Health(ctx); err != nil {
			logger.Warn("platform health probe failed", zap.Error(err))
		}
	}()
	provider := llm.NewOpenRouterProvider(resolveAPIKey(cfg), cfg.AI.Model, cfg.AI.BaseURL, logger)

	profile := &service.ProfileService{Provider: provider, Logger: logger}
	pals := &service.PalService{Records: client, Cache: palCache, State: stateRepo, Logger: logger}
	photos := &service.PhotoService{Store: client, Logger: logger}
	services := tui.Services{
		Auth:       &service.AuthService{Client: client, State: stateRepo, Logger: logger},
		Profile:    profile,
		Pals:       pals,
		Onboarding: &service.OnboardingService{Photos: photos, Pals: pals},
		Chat:       &service.ChatService{Records: client, Provider: provider},
		Feed:       &service.FeedService{Records: client},
	}

	p := tea.NewProgram(tui.New(ctx, cfg, services), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

// newLogger stays silent by default; a TUI owns the terminal. PALPAL_DEBUG
// turns on development logging to stderr.
func newLogger() *zap.Logger {
	if os.Getenv("PALPAL_DEBUG") == "" {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func resolveAPIKey(cfg config.Config) string {
	env := strings.TrimSpace(cfg.AI.APIKeyEnv)
	if env == "" {
		env = "OPENROUTER_API_KEY"
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	if k, err := secrets.FetchAPIKey(); err == nil {
		return k
	}
	return strings.TrimSpace(cfg.AI.APIKey)
}
