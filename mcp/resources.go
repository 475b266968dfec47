package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/edentir/edenpdf/reader"
)

// RegisterResources adds the pdf:// resources to s. Both take the file as
// a query parameter, e.g. pdf://text?path=/tmp/Facture_F-1.pdf.
func RegisterResources(s *Server) {
	s.AddResource(Resource{
		URI:         "pdf://text",
		Name:        "PDF Text Content",
		Description: "Text of every page of a PDF file: pdf://text?path=/path/to/file.pdf",
		MIMEType:    "text/plain",
		Handler:     textResource,
	})
	s.AddResource(Resource{
		URI:         "pdf://pages",
		Name:        "PDF Page Info",
		Description: "Page count and sizes of a PDF file: pdf://pages?path=/path/to/file.pdf",
		MIMEType:    "application/json",
		Handler:     pagesResource,
	})
}

// pathFromURI returns the path query parameter of uri.
func pathFromURI(uri string) (string, error) {
	_, query, ok := strings.Cut(uri, "?")
	if !ok {
		return "", fmt.Errorf("missing 'path' parameter in URI")
	}
	v, err := url.ParseQuery(query)
	if err != nil {
		return "", fmt.Errorf("bad query in URI: %w", err)
	}
	path := v.Get("path")
	if path == "" {
		return "", fmt.Errorf("missing 'path' parameter in URI")
	}
	return path, nil
}

func textResource(_ context.Context, uri string) ([]ResourceContent, error) {
	path, err := pathFromURI(uri)
	if err != nil {
		return nil, err
	}
	doc, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	return []ResourceContent{{URI: uri, MIMEType: "text/plain", Text: pagesText(doc, nil)}}, nil
}

func pagesResource(_ context.Context, uri string) ([]ResourceContent, error) {
	path, err := pathFromURI(uri)
	if err != nil {
		return nil, err
	}
	doc, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	data, _ := json.MarshalIndent(map[string]any{
		"numPages": doc.NumPages(),
		"pages":    pageInfos(doc),
	}, "", "  ")
	return []ResourceContent{{URI: uri, MIMEType: "application/json", Text: string(data)}}, nil
}
