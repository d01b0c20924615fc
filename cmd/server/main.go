// voiceorder server: voice-driven pizza ordering service.
// Serves the browser client and relays conversations to the realtime API.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sliceline/voiceorder/internal/config"
	"github.com/sliceline/voiceorder/internal/log"
	"github.com/sliceline/voiceorder/pkg/menu"
	"github.com/sliceline/voiceorder/pkg/web"
)

var (
	version   = "1.0.0"
	port      = flag.String("port", config.DefaultPort, "HTTP server port")
	staticDir = flag.String("static", "./client", "Browser client directory")
	voice     = flag.String("voice", "alloy", "Realtime voice name")
	menuPath  = flag.String("menu", "", "Menu catalog JSON file (built-in catalog when empty)")
	debug     = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	level := config.LogLevel()
	if *debug {
		level = "debug"
	}
	log.Init(level)

	apiKey := config.OpenAIKeyRequired()

	listenPort := config.Port(*port)

	catalogPath := *menuPath
	if catalogPath == "" {
		catalogPath = config.MenuPath()
	}

	catalog := menu.Default()
	if catalogPath != "" {
		loaded, err := menu.LoadFile(catalogPath)
		if err != nil {
			log.Error("menu load failed, using built-in catalog", "path", catalogPath, "error", err)
		} else {
			catalog = loaded
		}
	}

	log.Info("voiceorder starting",
		"version", version,
		"port", listenPort,
		"restaurant", catalog.Name,
		"items", len(catalog.Items))

	srv := web.NewServer(web.Options{
		Port:      listenPort,
		APIKey:    apiKey,
		Catalog:   catalog,
		StaticDir: *staticDir,
		Voice:     *voice,
		Debug:     *debug,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("goodbye")
}
