package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ayusman/isyarat/internal/app"
	"github.com/ayusman/isyarat/internal/capture"
	"github.com/ayusman/isyarat/internal/config"
	"github.com/ayusman/isyarat/internal/plugin"
	"github.com/ayusman/isyarat/internal/server"
	"github.com/ayusman/isyarat/internal/speech"
	"github.com/ayusman/isyarat/internal/store"
)

func main() {
	cfg := config.FromEnv()

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flag.IntVar(&cfg.CameraID, "camera", cfg.CameraID, "local camera device id, negative to disable")
	withTray := flag.Bool("tray", false, "show a system tray menu")
	flag.Parse()

	closer := config.SetupLogging(cfg.Debug, cfg.LogFile)
	defer closer.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println("Isyarat - Gesture and Expression Responder")

	journal, err := store.New(cfg.Journal)
	if err != nil {
		log.Fatalf("Failed to initialize journal: %v", err)
	}
	defer journal.Close()

	plugins := plugin.NewManager(cfg.PluginDir)
	if err := plugins.Discover(); err != nil {
		log.Printf("Failed to discover plugins in %s: %v", cfg.PluginDir, err)
	}

	voice := speech.NewDispatcher(cfg.SpeechCooldown, cfg.SpeechLang, speech.LogSink)
	if _, err := plugins.Get(cfg.SpeechPlugin); err == nil {
		voice.AddSink(plugin.NewSpeaker(plugins, plugin.NewExecutor(10*time.Second), cfg.SpeechPlugin))
		log.Printf("Speaking through plugin %q", cfg.SpeechPlugin)
	} else {
		log.Printf("Speech plugin %q not installed, responses are logged only", cfg.SpeechPlugin)
	}

	appCfg := app.Config{
		Journal:         journal,
		Speech:          voice,
		Sensitivity:     cfg.Sensitivity,
		GestureCooldown: cfg.GestureCooldown,
		FaceCooldown:    cfg.FaceCooldown,
		MotionThreshold: cfg.MotionThreshold,
		DataDir:         cfg.DataDir,
	}
	if cfg.CameraID >= 0 {
		appCfg.Camera = capture.NewCamera(cfg.CameraID)
	}
	engine := app.New(appCfg)

	if engine.HasCamera() {
		if err := engine.Start(); err != nil {
			log.Printf("Camera %d unavailable, waiting for browser perception clients: %v", cfg.CameraID, err)
		}
	}

	webDir := cfg.FindWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{StaticDir: webDir, App: engine}).HTTPServer(cfg.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if *withTray {
		// The tray owns the main thread until it quits.
		runTray(ctx, engine, cfg.Addr, stop)
	} else {
		<-ctx.Done()
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	engine.Stop()
	voice.Wait()
}
