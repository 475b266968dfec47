// Command edenpdf-server serves dossier and invoice PDFs over HTTP.
//
//	edenpdf-server -config /etc/edenpdf/config.json
//
// See package httpapi for the routes and package config for the file
// layout.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edentir/edenpdf/config"
	"github.com/edentir/edenpdf/httpapi"
	"github.com/edentir/edenpdf/internal/app"
)

func main() {
	path := flag.String("config", "config/edenpdf.json", "configuration file")
	flag.Parse()

	if err := run(*path); err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

func run(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}

	s := &httpapi.Server{
		Renderer:   a.Renderer,
		Templates:  a.Templates,
		Letterhead: cfg.Letterhead,
		Invoices:   a.Invoices,
		Sink:       a.Sink,
		Cache:      a.Cache,
		Origins:    cfg.CORSOrigins,
		Secret:     []byte(cfg.JWTSecret),
		Workers:    cfg.Workers,
	}
	if cfg.JWTSecret == "" {
		log.Println("[WARN] no jwt_secret: requests are not authenticated")
	}
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	cleanup := func() {
		if err := a.Close(); err != nil {
			log.Printf("[ERROR] closing resources: %v", err)
		}
	}
	return httpapi.Run(ctx, srv, cfg.AppName, cleanup, time.Duration(cfg.ShutdownTimeout))
}
