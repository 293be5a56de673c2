package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pippoche/svbot/internal/application/catalog"
	"github.com/pippoche/svbot/internal/application/flow"
	"github.com/pippoche/svbot/internal/infrastructure/sheets"
	"github.com/pippoche/svbot/internal/infrastructure/telegram"
	"github.com/pippoche/svbot/internal/interfaces/ops"
	"github.com/pippoche/svbot/pkg/config"
	"github.com/pippoche/svbot/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := sheets.NewClient(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.ServiceAccountFile, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Google Sheets")
	}

	cache := catalog.New(store, store, time.Duration(cfg.Cache.TTLMinutes)*time.Minute, log)

	// El espejo en disco arranca el bot con el último catálogo conocido
	// aunque el almacén no responda; el refresco inicial lo actualiza.
	if cfg.Cache.File != "" {
		if snap, err := catalog.LoadMirror(cfg.Cache.File); err != nil {
			log.Warn().Err(err).Str("file", cfg.Cache.File).Msg("espejo de caché no disponible")
		} else {
			cache.Seed(snap)
			log.Info().Time("last_updated", snap.LastUpdated).Msg("espejo de caché cargado")
		}
	}
	if err := cache.Refresh(ctx, true); err != nil {
		log.Error().Err(err).Msg("refresco inicial del catálogo fallido, se sigue con el espejo")
	} else {
		saveMirror(cfg.Cache.File, cache, log)
	}

	scheduler := catalog.NewScheduler(cache, cfg.Cache.DailyRefreshHour, log)
	go scheduler.Run(ctx)

	engine := flow.NewEngine(flow.Deps{
		Catalog: cache,
		Ledger:  store,
		Custody: store,
		Issues:  store,
		Log:     log,
		Now:     time.Now,
	})

	bot, err := telegram.New(cfg.Bot.Token, engine, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Telegram")
	}
	go func() {
		if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("bucle del bot finalizado")
		}
	}()

	srv := ops.New(cfg.App.Name, cache, log)
	go func() {
		if err := srv.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando...")
	cancel()

	if err := srv.Shutdown(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("apagado del servidor HTTP")
	}
	saveMirror(cfg.Cache.File, cache, log)

	log.Info().Msg("aplicación detenida")
}

func saveMirror(path string, cache *catalog.Cache, log *logger.Logger) {
	if path == "" {
		return
	}
	if err := catalog.SaveMirror(path, cache.Snapshot()); err != nil {
		log.Error().Err(err).Str("file", path).Msg("no se pudo guardar el espejo de caché")
	}
}
