// Command edenpdf-mcp exposes edenpdf to AI assistants as an MCP server on
// stdio.
//
// # Available Tools
//
//   - render_dossier: render a dossier cover sheet from its record
//   - render_invoice: render an invoice, inline or by id, on the letterhead
//   - merge_background: paint a PDF page over a background page
//   - read_pdf_text: extract text from PDFs
//   - pdf_info: page count, sizes and document information
//
// # Available Resources
//
//   - pdf://text?path=... : text content
//   - pdf://pages?path=... : page information
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/edentir/edenpdf/config"
	"github.com/edentir/edenpdf/internal/app"
	"github.com/edentir/edenpdf/mcp"
)

func main() {
	path := flag.String("config", "", "configuration file; defaults apply when empty")
	flag.Parse()

	// stdout carries the protocol.
	log.SetOutput(os.Stderr)

	if err := run(*path); err != nil {
		log.Printf("[ERROR] edenpdf-mcp: %v", err)
		os.Exit(1)
	}
}

func run(path string) error {
	cfg, err := load(path)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	server := mcp.NewServer()
	tb := &mcp.Toolbox{
		Renderer:   a.Renderer,
		Templates:  a.Templates,
		Letterhead: cfg.Letterhead,
		Invoices:   a.Invoices,
	}
	tb.Register(server)
	return server.Run(ctx)
}

func load(path string) (*config.Config, error) {
	if path == "" {
		return config.Parse([]byte("{}"))
	}
	return config.Load(path)
}
