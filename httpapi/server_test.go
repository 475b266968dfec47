package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/edentir/edenpdf"
	"github.com/edentir/edenpdf/artifact"
	"github.com/edentir/edenpdf/reader"
	"github.com/edentir/edenpdf/render"
	"github.com/edentir/edenpdf/source"
	"github.com/edentir/edenpdf/templates"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jung-kurt/gofpdf"
)

const (
	dossierJSON = `{"dossier_no": "D-2024-31", "mode": "Import", "nature_chargement": "complet",
		"expediteur": "Atlas SARL", "navire": "CARTHAGE"}`
	invoiceJSON = `{"client": {"code_client": 7, "nom": "Atlas"},
		"facture": {"numero": "F-88", "date": "2024-06-01T08:00:00Z"},
		"lignes": {"transit": [{"label": "Honoraires", "montant": 120}]},
		"totaux": {"total_non_taxable": 0, "total_taxable": 120, "tva_19": 22.8, "timbre": 1, "total_final": 143.8}}`
)

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

// spyCache counts cache hits.
type spyCache struct {
	artifact.Memory
	hits int
}

func (c *spyCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.Memory.Get(ctx, key)
	if err == nil {
		c.hits++
	}
	return data, err
}

func newServer(t *testing.T) *Server {
	t.Helper()
	r, err := render.New(edenpdf.NewConfig(
		edenpdf.WithWrapPolicy(edenpdf.WrapAdaptive),
		edenpdf.WithCreationDate(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
	))
	if err != nil {
		t.Fatal(err)
	}
	return &Server{
		Renderer:   r,
		Templates:  templates.Memory{"Entete EDEN.pdf": letterhead(t)},
		Letterhead: "Entete EDEN.pdf",
		Invoices:   source.Static{88: []byte(invoiceJSON)},
		Sink:       artifact.Dir{Root: t.TempDir()},
		Cache:      &spyCache{},
		Origins:    []string{"https://eden-tir.vercel.app"},
	}
}

func do(h http.Handler, method, target, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func pageText(t *testing.T, data []byte, n int) string {
	t.Helper()
	doc, err := reader.Parse(data)
	if err != nil {
		t.Fatalf("reading response: %v", err)
	}
	p, err := doc.Page(n)
	if err != nil {
		t.Fatal(err)
	}
	s, err := p.Text()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestGenerateDossier(t *testing.T) {
	h := newServer(t).Handler()
	rec := do(h, http.MethodPost, "/generate-pdf", dossierJSON, "Content-Type", "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("content type = %s", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="Dossier_D-2024-31.pdf"` {
		t.Errorf("disposition = %s", got)
	}
	if got := pageText(t, rec.Body.Bytes(), 1); !strings.Contains(got, "D-2024-31") || !strings.Contains(got, "CARTHAGE") {
		t.Errorf("dossier text:\n%s", got)
	}
}

func TestGenerateDossierErrors(t *testing.T) {
	h := newServer(t).Handler()
	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"empty body", http.MethodPost, "", http.StatusBadRequest},
		{"null body", http.MethodPost, "null", http.StatusBadRequest},
		{"not json", http.MethodPost, "{dossier", http.StatusBadRequest},
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, tt.method, "/generate-pdf", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
			if tt.want == http.StatusBadRequest {
				var m Message
				if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil || m.Type != "error" {
					t.Errorf("body = %s", rec.Body)
				}
			}
		})
	}
}

func TestInvoice(t *testing.T) {
	s := newServer(t)
	h := s.Handler()

	rec := do(h, http.MethodGet, "/facture/88", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="Facture_F-88.pdf"` {
		t.Errorf("disposition = %s", got)
	}
	got := pageText(t, rec.Body.Bytes(), 1)
	if !strings.HasPrefix(got, "EDEN TRANSIT\n") || !strings.Contains(got, "143.800") {
		t.Errorf("invoice text:\n%s", got)
	}

	again := do(h, http.MethodGet, "/facture/88", "")
	if again.Code != http.StatusOK || !bytes.Equal(again.Body.Bytes(), rec.Body.Bytes()) {
		t.Errorf("cached response differs, status %d", again.Code)
	}
	if hits := s.Cache.(*spyCache).hits; hits != 1 {
		t.Errorf("cache hits = %d, want 1", hits)
	}

	for target, want := range map[string]int{
		"/facture/1":   http.StatusNotFound,
		"/facture/abc": http.StatusBadRequest,
		"/facture/-3":  http.StatusBadRequest,
	} {
		if rec := do(h, http.MethodGet, target, ""); rec.Code != want {
			t.Errorf("GET %s = %d, want %d", target, rec.Code, want)
		}
	}
}

func TestInvoiceWithoutLetterhead(t *testing.T) {
	s := newServer(t)
	s.Templates = templates.Memory{}
	s.Cache = nil
	rec := do(s.Handler(), http.MethodGet, "/facture/88", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "Entete") {
		t.Errorf("server detail leaked: %s", rec.Body)
	}
}

func TestLetterheadErrorKind(t *testing.T) {
	s := newServer(t)
	s.Templates = templates.Memory{}
	_, err := s.letterhead()
	if !errors.Is(err, edenpdf.ErrTemplateMissing) {
		t.Fatalf("err = %v, want ErrTemplateMissing", err)
	}

	s.Templates = templates.Dir{Root: t.TempDir()}
	s.Letterhead = "../Entete EDEN.pdf"
	_, err = s.letterhead()
	if !errors.Is(err, edenpdf.ErrTemplateMissing) || statusOf(err) != http.StatusInternalServerError {
		t.Errorf("bad letterhead name: err = %v, status %d", err, statusOf(err))
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", edenpdf.ErrMalformedRecord), http.StatusBadRequest},
		{fmt.Errorf("x: %w", edenpdf.ErrInvalidParam), http.StatusBadRequest},
		{fmt.Errorf("x: %w", source.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("x: %w", edenpdf.ErrTemplateMissing), http.StatusInternalServerError},
		{fmt.Errorf("%w: %w", edenpdf.ErrTemplateMissing, edenpdf.ErrInvalidParam), http.StatusInternalServerError},
		{edenpdf.ErrMergeFailure, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusOf(tt.err); got != tt.want {
			t.Errorf("statusOf(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestInvoiceWithoutSource(t *testing.T) {
	s := newServer(t)
	s.Invoices = nil
	if rec := do(s.Handler(), http.MethodGet, "/facture/88", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestBundle(t *testing.T) {
	h := newServer(t).Handler()
	body := `{"dossiers": [` + dossierJSON + `, {"dossier_no": "D-2"}], "factures": [88]}`
	rec := do(h, http.MethodPost, "/generate-pdf/bundle", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	doc, err := reader.Parse(rec.Body.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if doc.NumPages() != 3 {
		t.Fatalf("pages = %d, want 3", doc.NumPages())
	}
	if got := pageText(t, rec.Body.Bytes(), 2); !strings.Contains(got, "D-2") {
		t.Errorf("page 2:\n%s", got)
	}
	if got := pageText(t, rec.Body.Bytes(), 3); !strings.Contains(got, "F-88") {
		t.Errorf("page 3:\n%s", got)
	}

	for _, bad := range []string{`{}`, `{"factures": [404]}`, `[1]`} {
		if rec := do(h, http.MethodPost, "/generate-pdf/bundle", bad); rec.Code < 400 {
			t.Errorf("bundle %s accepted", bad)
		}
	}
}

func TestCORS(t *testing.T) {
	h := newServer(t).Handler()

	pre := do(h, http.MethodOptions, "/generate-pdf", "",
		"Origin", "https://eden-tir.vercel.app",
		"Access-Control-Request-Method", "POST")
	if pre.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", pre.Code)
	}
	if got := pre.Header().Get("Access-Control-Allow-Origin"); got != "https://eden-tir.vercel.app" {
		t.Errorf("allow origin = %q", got)
	}
	if got := pre.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("allow credentials = %q", got)
	}

	other := do(h, http.MethodGet, "/healthz", "", "Origin", "https://evil.example")
	if got := other.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin allowed: %q", got)
	}
}

func TestAuth(t *testing.T) {
	s := newServer(t)
	s.Secret = []byte("0123456789abcdef")
	h := s.Handler()

	sign := func(method jwt.SigningMethod, key any, exp time.Time) string {
		tok, err := jwt.NewWithClaims(method, jwt.MapClaims{"sub": "agent", "exp": exp.Unix()}).SignedString(key)
		if err != nil {
			t.Fatal(err)
		}
		return tok
	}
	valid := sign(jwt.SigningMethodHS256, s.Secret, time.Now().Add(time.Hour))

	if rec := do(h, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz behind auth: %d", rec.Code)
	}
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"none", "", http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusOK},
		{"lowercase scheme", "bearer " + valid, http.StatusOK},
		{"expired", "Bearer " + sign(jwt.SigningMethodHS256, s.Secret, time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"wrong key", "Bearer " + sign(jwt.SigningMethodHS256, []byte("other"), time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"HS512", "Bearer " + sign(jwt.SigningMethodHS512, s.Secret, time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/generate-pdf", dossierJSON, "Authorization", tt.header)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	if rec := do(h, http.MethodGet, "/", ""); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestRunShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: newServer(t).Handler()}
	cleaned := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv, "test", func() { close(cleaned) }, time.Second) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	select {
	case <-cleaned:
	default:
		t.Error("cleanup not called")
	}
}
