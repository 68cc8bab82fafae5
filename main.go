// main.go
//
// Entry point for the kotonoha wordle backend and terminal client.
//
//	kotonoha-wordle [serve]   start the HTTP/WebSocket server (default)
//	kotonoha-wordle play      play in the terminal with an emulated flick keypad
//
// Both modes read the same environment (see internal/config).

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mizukendesu/kotonoha-wordle/internal/config"
	"github.com/mizukendesu/kotonoha-wordle/internal/discord"
	"github.com/mizukendesu/kotonoha-wordle/internal/flick"
	"github.com/mizukendesu/kotonoha-wordle/internal/game"
	"github.com/mizukendesu/kotonoha-wordle/internal/httpserver"
	"github.com/mizukendesu/kotonoha-wordle/internal/session"
	"github.com/mizukendesu/kotonoha-wordle/internal/store"
	"github.com/mizukendesu/kotonoha-wordle/internal/terminal"
	"github.com/mizukendesu/kotonoha-wordle/internal/words"
)

func main() {
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	mode := "serve"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	engine, layout := mustEngine(cfg)

	switch mode {
	case "serve":
		serve(cfg, engine, layout)
	case "play":
		// Logs would tear the board; keep only errors on stderr.
		if zerolog.GlobalLevel() < zerolog.ErrorLevel {
			zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := terminal.Play(ctx, engine, layout, os.Stdout, terminal.UseColor(os.Stdout)); err != nil {
			log.Fatal().Err(err).Msg("terminal game failed")
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (want serve or play)\n", mode)
		os.Exit(2)
	}
}

// mustEngine resolves the target word and keypad layout and builds the engine.
func mustEngine(cfg *config.Config) (*game.Engine, flick.Layout) {
	target, err := words.Resolve(cfg.TargetWord, cfg.WordLength)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid target word")
	}
	layout, err := flick.LoadLayout(cfg.LayoutFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.LayoutFile).Msg("failed to load keypad layout")
	}
	engine, err := game.NewEngine(game.Config{
		WordLength:  cfg.WordLength,
		MaxAttempts: cfg.MaxAttempts,
		Target:      target,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid game configuration")
	}
	return engine, layout
}

func serve(cfg *config.Config, engine *game.Engine, layout flick.Layout) {
	mem := store.NewMemoryStore()
	games := session.NewManager(engine, mem, session.WallClock)
	go games.RunJanitor(context.Background(), cfg.SessionTTL/4, cfg.SessionTTL)

	dc := discord.NewClient(cfg.DiscordClientID, cfg.DiscordClientSecret, cfg.DiscordTokenURL)
	if !dc.Configured() {
		log.Warn().Msg("DISCORD_CLIENT_ID/SECRET unset; /api/token will fail")
	}

	srv := httpserver.New(games, layout, dc, httpserver.Options{
		ClientOrigin: cfg.ClientOrigin,
		JWTSecret:    cfg.JWTSecret,
		SessionTTL:   cfg.SessionTTL,
		Production:   cfg.Production,
	})
	log.Info().
		Str("port", cfg.Port).
		Int("wordLength", engine.WordLength()).
		Int("maxAttempts", engine.MaxAttempts()).
		Msg("starting kotonoha-wordle server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
