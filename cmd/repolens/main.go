package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/repolens/repolens/internal/chat"
	"github.com/repolens/repolens/internal/config"
	"github.com/repolens/repolens/internal/ingest"
	"github.com/repolens/repolens/internal/server"
	"github.com/repolens/repolens/internal/store"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("repolens", version)
		os.Exit(0)
	}

	cfg := config.Load(*configPath)

	var st *store.Store
	var err error
	if cfg.DatabasePath != "" {
		st, err = store.OpenPath(cfg.DatabasePath)
	} else {
		st, err = store.Open()
	}
	if err != nil {
		log.Fatalf("store open err=%v", err)
	}
	defer st.Close()

	ing := ingest.New(cfg.WorkspaceDir)
	if err := ing.StartJanitor(cfg.JanitorSpec); err != nil {
		log.Fatalf("janitor err=%v", err)
	}
	defer ing.StopJanitor()

	var chatClient *chat.Client
	if cfg.Chat.APIKey != "" {
		chatClient, err = chat.New(cfg.Chat.APIKey, cfg.Chat.BaseURL, cfg.Chat.Model)
		if err != nil {
			log.Fatalf("chat client err=%v", err)
		}
	} else {
		slog.Warn("chat disabled", "reason", "no API key configured")
	}

	srv, err := server.New(cfg, st, ing, chatClient)
	if err != nil {
		log.Fatalf("server err=%v", err)
	}

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Router(),
	}

	go func() {
		slog.Info("server.listen", "addr", cfg.Addr, "version", version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("server.shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Warn("server.shutdown_failed", "err", err)
	}
}
