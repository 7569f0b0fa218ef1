package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maps-directions/directions"
	"maps-directions/entities"
	"maps-directions/mapview"
	"maps-directions/orchestrator"
	"maps-directions/places"
	"maps-directions/server"
	"maps-directions/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	maps "googlemaps.github.io/maps"
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := utils.NewLogger(cfg.AppEnv, "maps-directions")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	client, err := maps.NewClient(maps.WithAPIKey(cfg.APIKey))
	if err != nil {
		log.Fatal("maps.NewClient", zap.Error(err))
	}

	mode, err := directions.ParseMode(cfg.TravelMode)
	if err != nil {
		log.Fatal("invalid travel mode", zap.Error(err))
	}
	policy, err := orchestrator.ParseStalePolicy(cfg.StalePolicy)
	if err != nil {
		log.Fatal("invalid stale policy", zap.Error(err))
	}

	style := mapview.Style{StrokeColor: cfg.RouteStrokeColor, LineWidth: cfg.RouteLineWidth}
	region := mapview.Region{
		Center:  entities.Coordinates{Lat: cfg.MapCenterLat, Lng: cfg.MapCenterLng},
		LatSpan: cfg.MapSpan,
		LngSpan: cfg.MapSpan,
	}

	dirs := directions.NewGoogle(client, directions.Options{
		Mode:         mode,
		Alternatives: cfg.RouteAlternatives,
		StreetNames:  cfg.StreetNames,
	}, log.Named("directions"))

	picker := places.NewPicker(client, log.Named("places"))
	picker.Bias = &region.Center
	picker.Radius = 20000

	notifier := utils.NewNotifier(cfg, log.Named("notify"))

	recorder := mapview.NewRecorder(style, region)
	hub := mapview.NewHub(recorder, style, region, log.Named("hub"))

	orch := orchestrator.New(dirs,
		orchestrator.MultiRenderer{recorder, hub},
		log.Named("orchestrator"),
		orchestrator.WithStalePolicy(policy),
		orchestrator.WithRequestTimeout(cfg.RequestTimeout),
		orchestrator.WithStepSink(orchestrator.MultiStepSink{recorder, hub}),
		orchestrator.WithFailureReporter(notifier),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	handler := server.NewHandler(orch, picker, dirs, recorder, hub, notifier, log.Named("http"))
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(handler, log)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down maps-directions...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}
	orch.Close()
	cancel()

	log.Info("maps-directions stopped")
}
