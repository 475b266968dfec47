package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/edentir/edenpdf"
	"github.com/edentir/edenpdf/source"
)

// Message is the body of every non-PDF response.
type Message struct {
	Type    string `json:"type"` // "error" or "ok"
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[ERROR] writing JSON to response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Message{Type: "error", Message: msg})
}

// writePDF sends data as a download named filename.
func writePDF(w http.ResponseWriter, filename string, data []byte) {
	h := w.Header()
	h.Set("Content-Type", "application/pdf")
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	h.Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("[ERROR] writing PDF to response: %v", err)
	}
}

// statusOf maps an error to the status reported to the client.
func statusOf(err error) int {
	switch {
	case errors.Is(err, edenpdf.ErrTemplateMissing):
		return http.StatusInternalServerError
	case errors.Is(err, edenpdf.ErrMalformedRecord), errors.Is(err, edenpdf.ErrInvalidParam):
		return http.StatusBadRequest
	case errors.Is(err, source.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err and answers with its status. Server-side failures do not
// leak their detail.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= 500 {
		log.Printf("[ERROR] %s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, status, http.StatusText(status))
		return
	}
	log.Printf("[WARN] %s %s: %v", r.Method, r.URL.Path, err)
	writeError(w, status, err.Error())
}
