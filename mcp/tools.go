package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/edentir/edenpdf/pageops"
	"github.com/edentir/edenpdf/reader"
	"github.com/edentir/edenpdf/record"
	"github.com/edentir/edenpdf/render"
	"github.com/edentir/edenpdf/source"
	"github.com/edentir/edenpdf/templates"
)

// Toolbox holds what the tools render with. Invoices is optional; without
// it render_invoice needs an inline record.
type Toolbox struct {
	Renderer   *render.Renderer
	Templates  templates.Store
	Letterhead string
	Invoices   source.Invoices
}

// Register adds the tools and resources to s.
func (tb *Toolbox) Register(s *Server) {
	s.AddTool(tb.renderDossierTool())
	s.AddTool(tb.renderInvoiceTool())
	s.AddTool(mergeBackgroundTool())
	s.AddTool(readPDFTextTool())
	s.AddTool(pdfInfoTool())
	RegisterResources(s)
}

func schema(required []string, props map[string]any) map[string]any {
	return map[string]any{"type": "object", "properties": props, "required": required}
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

var outputPathProp = prop("string", "Optional file path to save the PDF. If omitted, the PDF is returned as base64.")

func decodeArgs(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// deliver saves data to outputPath, or returns it inline.
func deliver(what string, data []byte, outputPath string) (ToolResult, error) {
	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return ToolResult{}, fmt.Errorf("writing file: %w", err)
		}
		return textResult("%s written to %s (%d bytes)", what, outputPath, len(data)), nil
	}
	return ToolResult{Content: []ContentBlock{
		{Type: "text", Text: fmt.Sprintf("%s rendered (%d bytes)", what, len(data))},
		{Type: "resource", MIMEType: "application/pdf", Data: base64.StdEncoding.EncodeToString(data)},
	}}, nil
}

func (tb *Toolbox) renderDossierTool() Tool {
	return Tool{
		Name:        "render_dossier",
		Description: "Render a customs dossier cover sheet from its JSON record (dossier_no, mode, nature_chargement, expediteur, destinataire, marchandise and the transport and customs fields).",
		InputSchema: schema([]string{"record"}, map[string]any{
			"record":     prop("object", "Dossier record"),
			"outputPath": outputPathProp,
		}),
		Handler: tb.renderDossier,
	}
}

func (tb *Toolbox) renderDossier(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	var args struct {
		Record     json.RawMessage `json:"record"`
		OutputPath string          `json:"outputPath"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return ToolResult{}, err
	}
	if len(args.Record) == 0 {
		return ToolResult{}, errors.New("missing 'record' argument")
	}
	d, err := record.DecodeDossier(args.Record)
	if err != nil {
		return ToolResult{}, err
	}
	a, err := tb.Renderer.Dossier(d)
	if err != nil {
		return ToolResult{}, err
	}
	return deliver(a.Filename, a.Data, args.OutputPath)
}

func (tb *Toolbox) renderInvoiceTool() Tool {
	return Tool{
		Name:        "render_invoice",
		Description: "Render an invoice on the company letterhead. Pass either the invoice JSON record or the id of a stored invoice.",
		InputSchema: schema(nil, map[string]any{
			"record":     prop("object", "Invoice record with client, facture, lignes and totaux"),
			"id":         prop("number", "Id of a stored invoice"),
			"background": prop("string", "Optional path of a background PDF replacing the configured letterhead"),
			"outputPath": outputPathProp,
		}),
		Handler: tb.renderInvoice,
	}
}

func (tb *Toolbox) renderInvoice(ctx context.Context, raw json.RawMessage) (ToolResult, error) {
	var args struct {
		Record     json.RawMessage `json:"record"`
		ID         int64           `json:"id"`
		Background string          `json:"background"`
		OutputPath string          `json:"outputPath"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return ToolResult{}, err
	}

	var inv *record.Invoice
	var err error
	switch {
	case len(args.Record) > 0 && args.ID != 0:
		return ToolResult{}, errors.New("pass either 'record' or 'id', not both")
	case len(args.Record) > 0:
		inv, err = record.DecodeInvoice(args.Record)
	case args.ID != 0:
		if tb.Invoices == nil {
			return ToolResult{}, errors.New("no invoice source configured")
		}
		inv, err = tb.Invoices.Invoice(ctx, args.ID)
	default:
		return ToolResult{}, errors.New("missing 'record' or 'id' argument")
	}
	if err != nil {
		return ToolResult{}, err
	}

	var bg []byte
	if args.Background != "" {
		bg, err = os.ReadFile(args.Background)
	} else {
		bg, err = tb.Templates.Open(tb.Letterhead)
	}
	if err != nil {
		return ToolResult{}, fmt.Errorf("loading background: %w", err)
	}
	a, err := tb.Renderer.Invoice(inv, bg)
	if err != nil {
		return ToolResult{}, err
	}
	return deliver(a.Filename, a.Data, args.OutputPath)
}

func mergeBackgroundTool() Tool {
	return Tool{
		Name:        "merge_background",
		Description: "Paint page 1 of a content PDF over page 1 of a background PDF. The result has the background's page size.",
		InputSchema: schema([]string{"content", "background"}, map[string]any{
			"content":    prop("string", "Path of the content PDF"),
			"background": prop("string", "Path of the background PDF"),
			"outputPath": outputPathProp,
		}),
		Handler: mergeBackground,
	}
}

func mergeBackground(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	var args struct {
		Content    string `json:"content"`
		Background string `json:"background"`
		OutputPath string `json:"outputPath"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return ToolResult{}, err
	}
	if args.Content == "" || args.Background == "" {
		return ToolResult{}, errors.New("missing 'content' or 'background' argument")
	}
	content, err := os.ReadFile(args.Content)
	if err != nil {
		return ToolResult{}, fmt.Errorf("reading content: %w", err)
	}
	data, err := pageops.MergeFile(content, args.Background)
	if err != nil {
		return ToolResult{}, err
	}
	return deliver("merged PDF", data, args.OutputPath)
}

func readPDFTextTool() Tool {
	return Tool{
		Name:        "read_pdf_text",
		Description: "Extract the text of a PDF file, page by page.",
		InputSchema: schema([]string{"path"}, map[string]any{
			"path": prop("string", "Path to the PDF file"),
			"pages": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "number"},
				"description": "Page numbers to extract (1-based). Omit for all pages.",
			},
		}),
		Handler: readPDFText,
	}
}

func readPDFText(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	var args struct {
		Path  string `json:"path"`
		Pages []int  `json:"pages"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return ToolResult{}, err
	}
	if args.Path == "" {
		return ToolResult{}, errors.New("missing 'path' argument")
	}
	doc, err := reader.Open(args.Path)
	if err != nil {
		return ToolResult{}, fmt.Errorf("opening PDF: %w", err)
	}
	return textResult("%s", pagesText(doc, args.Pages)), nil
}

// pagesText renders the text of the listed pages, or of all pages.
func pagesText(doc *reader.Document, pages []int) string {
	if len(pages) == 0 {
		for n := 1; n <= doc.NumPages(); n++ {
			pages = append(pages, n)
		}
	}
	var b strings.Builder
	for _, n := range pages {
		p, err := doc.Page(n)
		if err != nil {
			fmt.Fprintf(&b, "--- Page %d (error: %v) ---\n", n, err)
			continue
		}
		text, err := p.Text()
		if err != nil {
			fmt.Fprintf(&b, "--- Page %d (error: %v) ---\n", n, err)
			continue
		}
		fmt.Fprintf(&b, "--- Page %d ---\n%s\n\n", n, text)
	}
	return b.String()
}

func pdfInfoTool() Tool {
	return Tool{
		Name:        "pdf_info",
		Description: "Describe a PDF file: version, page count, document information and page sizes in points.",
		InputSchema: schema([]string{"path"}, map[string]any{
			"path": prop("string", "Path to the PDF file"),
		}),
		Handler: pdfInfo,
	}
}

type pageInfo struct {
	Page   int     `json:"page"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Rotate int     `json:"rotate"`
}

func pageInfos(doc *reader.Document) []pageInfo {
	out := make([]pageInfo, 0, doc.NumPages())
	for n := 1; n <= doc.NumPages(); n++ {
		p, err := doc.Page(n)
		if err != nil {
			continue
		}
		out = append(out, pageInfo{Page: n, Width: p.MediaBox.Width(), Height: p.MediaBox.Height(), Rotate: p.Rotate})
	}
	return out
}

func pdfInfo(_ context.Context, raw json.RawMessage) (ToolResult, error) {
	var args struct {
		Path string `json:"path"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return ToolResult{}, err
	}
	if args.Path == "" {
		return ToolResult{}, errors.New("missing 'path' argument")
	}
	doc, err := reader.Open(args.Path)
	if err != nil {
		return ToolResult{}, fmt.Errorf("opening PDF: %w", err)
	}
	info := map[string]any{
		"version":  doc.Version,
		"numPages": doc.NumPages(),
		"metadata": doc.Info(),
		"pages":    pageInfos(doc),
	}
	data, _ := json.MarshalIndent(info, "", "  ")
	return textResult("%s", data), nil
}
