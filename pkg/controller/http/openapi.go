package http

import (
	"context"
	_ "embed"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/msgbox/pkg/utils/logging"
)

//go:embed openapi.yaml
var apiDocumentYAML []byte

// loadAPIDocument parses and validates the embedded OpenAPI document and
// returns it rendered as JSON
func loadAPIDocument(ctx context.Context) ([]byte, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(apiDocumentYAML)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load OpenAPI document")
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, goerr.Wrap(err, "invalid OpenAPI document")
	}

	data, err := doc.MarshalJSON()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode OpenAPI document")
	}
	return data, nil
}

func handleAPIDocument(doc []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(doc); err != nil {
			logging.From(r.Context()).Error("Failed to write OpenAPI document", "error", err)
		}
	}
}
