package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vjdeck/internal/deck"
	"vjdeck/internal/mixer"
	"vjdeck/internal/platform/config"
	"vjdeck/internal/platform/logger"
	"vjdeck/internal/platform/metrics"
	"vjdeck/internal/thumb"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

// countedProvider wraps an illustration provider with a metrics counter.
// Only cache misses reach the provider, so the counter tracks real work.
type countedProvider struct {
	inner   thumb.Provider
	metrics *metrics.Metrics
}

func (p *countedProvider) Generate(ctx context.Context, title string) ([]byte, error) {
	p.metrics.IncIllustrationsGenerated()
	return p.inner.Generate(ctx, title)
}

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	mediaRoot := config.GetEnv("MEDIA_ROOT", "")
	publicURL := config.GetEnv("PUBLIC_URL", "")
	masterVolume := config.GetEnvFloat("MASTER_VOLUME", 1)
	ffmpegPath := config.GetEnv("FFMPEG_PATH", "ffmpeg")
	ffprobePath := config.GetEnv("FFPROBE_PATH", "ffprobe")
	fontPath := config.GetEnv("ILLUSTRATION_FONT", "")
	providerTimeout := config.GetEnvInt("ILLUSTRATION_TIMEOUT_SECONDS", 30)
	cacheSize := config.GetEnvInt("THUMB_CACHE_SIZE", thumb.DefaultCacheSize)
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")

	log := logger.New(logLevel, logFormat)
	met := metrics.New()

	store := deck.NewStore()
	store.SetMasterVolume(masterVolume)

	provider := &countedProvider{inner: &thumb.CardProvider{FontPath: fontPath}, metrics: met}
	resolver := thumb.NewResolver(
		&thumb.FrameCapturer{FFmpegPath: ffmpegPath},
		provider,
		thumb.NewCache(cacheSize),
		log,
	)
	resolver.ProviderTimeout = time.Duration(providerTimeout) * time.Second

	svc := mixer.NewService(store, resolver, log, ffprobePath)
	defer svc.Close()

	if mediaRoot != "" {
		if _, err := svc.LoadFolder(mediaRoot); err != nil {
			log.Error("initial library load failed", "path", mediaRoot, "error", err)
		}
	}

	h := mixer.NewHandler(svc, log, met)
	h.PublicURL = publicURL

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() { met.SetDeckItems(svc.DeckSize()) }).ServeHTTP(w, r)
	})
	h.Routes(r)

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"media_root", mediaRoot,
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
