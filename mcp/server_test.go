package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/edentir/edenpdf"
	"github.com/edentir/edenpdf/reader"
	"github.com/edentir/edenpdf/render"
	"github.com/edentir/edenpdf/source"
	"github.com/edentir/edenpdf/templates"
	"github.com/jung-kurt/gofpdf"
)

const invoiceJSON = `{"client": {"nom": "Atlas"}, "facture": {"numero": "F-5", "date": "2024-02-01"},
	"lignes": {"transit": [{"label": "Honoraires", "montant": 50}]},
	"totaux": {"total_final": 50}}`

func letterhead(t *testing.T) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "B", 20)
	pdf.AddPage()
	pdf.Text(20, 25, "EDEN TRANSIT")
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newServer(t *testing.T) *Server {
	t.Helper()
	r, err := render.New(edenpdf.NewConfig(
		edenpdf.WithWrapPolicy(edenpdf.WrapFixed),
		edenpdf.WithCreationDate(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
	))
	if err != nil {
		t.Fatal(err)
	}
	s := NewServerWithIO(nil, nil)
	tb := &Toolbox{
		Renderer:   r,
		Templates:  templates.Memory{"Entete EDEN.pdf": letterhead(t)},
		Letterhead: "Entete EDEN.pdf",
		Invoices:   source.Static{5: []byte(invoiceJSON)},
	}
	tb.Register(s)
	return s
}

func sendRequest(t *testing.T, s *Server, method string, id int, params any) response {
	t.Helper()
	req := map[string]any{"jsonrpc": "2.0", "id": id, "method": method}
	if params != nil {
		req["params"] = params
	}
	reqBytes, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	var output bytes.Buffer
	s.input = bytes.NewReader(append(reqBytes, '\n'))
	s.output = &output
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	var resp response
	if err := json.Unmarshal(output.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response %q: %v", output.String(), err)
	}
	return resp
}

// callTool runs a tool and decodes its result.
func callTool(t *testing.T, s *Server, name string, args any) ToolResult {
	t.Helper()
	resp := sendRequest(t, s, "tools/call", 9, map[string]any{"name": name, "arguments": args})
	if resp.Error != nil {
		t.Fatalf("%s: rpc error %s", name, resp.Error.Message)
	}
	data, _ := json.Marshal(resp.Result)
	var res ToolResult
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatal(err)
	}
	return res
}

func inlinePDF(t *testing.T, res ToolResult) []byte {
	t.Helper()
	if res.IsError {
		t.Fatalf("tool error: %s", res.Content[0].Text)
	}
	for _, c := range res.Content {
		if c.MIMEType == "application/pdf" {
			data, err := base64.StdEncoding.DecodeString(c.Data)
			if err != nil {
				t.Fatal(err)
			}
			return data
		}
	}
	t.Fatalf("no PDF in result %+v", res)
	return nil
}

func firstPageText(t *testing.T, data []byte) string {
	t.Helper()
	doc, err := reader.Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	p, err := doc.Page(1)
	if err != nil {
		t.Fatal(err)
	}
	s, err := p.Text()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestServerInitialize(t *testing.T) {
	resp := sendRequest(t, newServer(t), "initialize", 1, map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "test", "version": "1.0"},
	})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
	result := resp.Result.(map[string]any)
	if result["protocolVersion"] != ProtocolVersion {
		t.Errorf("protocol version = %v", result["protocolVersion"])
	}
	if info := result["serverInfo"].(map[string]any); info["name"] != "edenpdf-mcp" {
		t.Errorf("server name = %v", info["name"])
	}
}

func TestServerLists(t *testing.T) {
	s := newServer(t)

	resp := sendRequest(t, s, "tools/list", 2, nil)
	var names []string
	for _, tool := range resp.Result.(map[string]any)["tools"].([]any) {
		names = append(names, tool.(map[string]any)["name"].(string))
	}
	want := "merge_background,pdf_info,read_pdf_text,render_dossier,render_invoice"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("tools = %s, want %s", got, want)
	}

	resp = sendRequest(t, s, "resources/list", 3, nil)
	if n := len(resp.Result.(map[string]any)["resources"].([]any)); n != 2 {
		t.Errorf("resources = %d, want 2", n)
	}
}

func TestServerErrors(t *testing.T) {
	s := newServer(t)
	if resp := sendRequest(t, s, "nonexistent/method", 5, nil); resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Errorf("unknown method: %+v", resp.Error)
	}
	if resp := sendRequest(t, s, "tools/call", 6, map[string]any{"name": "nope"}); resp.Error == nil {
		t.Error("unknown tool accepted")
	}
	if resp := sendRequest(t, s, "resources/read", 7, map[string]any{"uri": "pdf://fonts"}); resp.Error == nil {
		t.Error("unknown resource accepted")
	}

	var out bytes.Buffer
	s.input = strings.NewReader("{not json\n")
	s.output = &out
	s.Run(context.Background())
	var resp response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil || resp.Error == nil || resp.Error.Code != codeParse {
		t.Errorf("parse error response = %s", out.String())
	}
}

func TestRenderDossierTool(t *testing.T) {
	s := newServer(t)
	res := callTool(t, s, "render_dossier", map[string]any{
		"record": map[string]any{"dossier_no": "D-77", "mode": "export", "navire": "ELYSSA"},
	})
	got := firstPageText(t, inlinePDF(t, res))
	if !strings.Contains(got, "D-77") || !strings.Contains(got, "ELYSSA") {
		t.Errorf("dossier text:\n%s", got)
	}

	if res := callTool(t, s, "render_dossier", map[string]any{}); !res.IsError {
		t.Error("missing record accepted")
	}
}

func TestRenderInvoiceTool(t *testing.T) {
	s := newServer(t)
	out := filepath.Join(t.TempDir(), "f.pdf")

	res := callTool(t, s, "render_invoice", map[string]any{"id": 5, "outputPath": out})
	if res.IsError {
		t.Fatalf("tool error: %s", res.Content[0].Text)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := firstPageText(t, data); !strings.HasPrefix(got, "EDEN TRANSIT\n") || !strings.Contains(got, "F-5") {
		t.Errorf("invoice text:\n%s", got)
	}

	var inline map[string]any
	json.Unmarshal([]byte(invoiceJSON), &inline)
	if got := firstPageText(t, inlinePDF(t, callTool(t, s, "render_invoice", map[string]any{"record": inline}))); !strings.Contains(got, "50.000") {
		t.Errorf("inline invoice text:\n%s", got)
	}

	for _, args := range []map[string]any{
		{},
		{"id": 6},
		{"id": 5, "record": inline},
		{"id": 5, "background": filepath.Join(t.TempDir(), "none.pdf")},
	} {
		if res := callTool(t, s, "render_invoice", args); !res.IsError {
			t.Errorf("render_invoice %v succeeded", args)
		}
	}
}

func TestMergeAndInspect(t *testing.T) {
	s := newServer(t)
	dir := t.TempDir()
	bg := filepath.Join(dir, "bg.pdf")
	content := filepath.Join(dir, "content.pdf")
	merged := filepath.Join(dir, "merged.pdf")
	os.WriteFile(bg, letterhead(t), 0o644)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPage()
	pdf.Text(20, 60, "Facture n : F-9")
	if err := pdf.OutputFileAndClose(content); err != nil {
		t.Fatal(err)
	}

	if res := callTool(t, s, "merge_background", map[string]any{
		"content": content, "background": bg, "outputPath": merged,
	}); res.IsError {
		t.Fatalf("merge: %s", res.Content[0].Text)
	}

	res := callTool(t, s, "read_pdf_text", map[string]any{"path": merged})
	if got := res.Content[0].Text; !strings.Contains(got, "--- Page 1 ---\nEDEN TRANSIT\nFacture n : F-9") {
		t.Errorf("read_pdf_text = %q", got)
	}

	res = callTool(t, s, "pdf_info", map[string]any{"path": merged})
	var info struct {
		NumPages int        `json:"numPages"`
		Pages    []pageInfo `json:"pages"`
	}
	if err := json.Unmarshal([]byte(res.Content[0].Text), &info); err != nil {
		t.Fatalf("pdf_info output: %v", err)
	}
	if info.NumPages != 1 || len(info.Pages) != 1 || int(info.Pages[0].Width) != 595 {
		t.Errorf("info = %+v", info)
	}

	resp := sendRequest(t, s, "resources/read", 8, map[string]any{"uri": "pdf://pages?path=" + merged})
	if resp.Error != nil {
		t.Fatalf("pdf://pages: %s", resp.Error.Message)
	}
	resp = sendRequest(t, s, "resources/read", 9, map[string]any{"uri": "pdf://text?path=" + merged})
	if resp.Error != nil || !strings.Contains(mustJSON(resp.Result), "EDEN TRANSIT") {
		t.Errorf("pdf://text = %+v", resp)
	}
	if resp := sendRequest(t, s, "resources/read", 10, map[string]any{"uri": "pdf://text"}); resp.Error == nil {
		t.Error("resource without path accepted")
	}
}

func mustJSON(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}

func TestAddTool(t *testing.T) {
	s := NewServerWithIO(nil, nil)
	s.AddTool(Tool{
		Name:        "custom_tool",
		InputSchema: schema(nil, map[string]any{}),
		Handler: func(context.Context, json.RawMessage) (ToolResult, error) {
			return textResult("custom result"), nil
		},
	})
	if res := callTool(t, s, "custom_tool", nil); res.Content[0].Text != "custom result" {
		t.Errorf("result = %+v", res)
	}
}
