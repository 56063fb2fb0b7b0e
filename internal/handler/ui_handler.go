package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/boddenberg/recruit-assist-go/internal/ui"

	"go.uber.org/zap"
)

const maxRenderBody = 1 << 20

type renderRequest struct {
	Components []json.RawMessage `json:"components"`
	Segues     []json.RawMessage `json:"segues"`
}

// renderHandler: POST /api/ui/render
//
// Renders the components and segues of a rich response as an HTML
// fragment. Invalid entries are dropped; their count is reported in the
// X-Rejected-Components header.
func renderHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "POST /api/ui/render")
		defer span.End()

		var req renderRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRenderBody)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		components, rejected := ui.ParseAll(req.Components, ui.Parse)
		segues, rejectedSegues := ui.ParseAll(req.Segues, ui.ParseSegue)
		rejected = append(rejected, rejectedSegues...)

		var buf bytes.Buffer
		if err := ui.RenderAll(&buf, components); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if err := ui.RenderAll(&buf, segues); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if len(rejected) > 0 {
			logger.Debug("render: dropped invalid components", zap.Strings("reasons", rejected))
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("X-Rejected-Components", strconv.Itoa(len(rejected)))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}
