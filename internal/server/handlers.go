package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/matzehuels/harnessviz/pkg/bom"
	"github.com/matzehuels/harnessviz/pkg/document"
	"github.com/matzehuels/harnessviz/pkg/errors"
	"github.com/matzehuels/harnessviz/pkg/harness"
	"github.com/matzehuels/harnessviz/pkg/pipeline"
)

// contentTypes maps output formats to response media types.
var contentTypes = map[string]string{
	pipeline.FormatGV:   "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatTSV:  "text/tab-separated-values; charset=utf-8",
	pipeline.FormatCSV:  "text/csv; charset=utf-8",
}

// =============================================================================
// Response Bodies
// =============================================================================

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Harness string `json:"harness,omitempty"`
	Row     *int   `json:"row,omitempty"`
	Entity  string `json:"entity,omitempty"`
}

type statsBody struct {
	Connectors int `json:"connectors"`
	Cables     int `json:"cables"`
	Links      int `json:"links"`
	BOMEntries int `json:"bom_entries"`
}

type harnessBody struct {
	Name  string         `json:"name"`
	DOT   string         `json:"dot,omitempty"`
	BOM   []bom.Entry    `json:"bom,omitempty"`
	Links []harness.Link `json:"links,omitempty"`
	Stats *statsBody     `json:"stats,omitempty"`
	Error *errorBody     `json:"error,omitempty"`
}

type buildBody struct {
	Harnesses []harnessBody     `json:"harnesses"`
	SharedBOM []bom.SharedEntry `json:"shared_bom,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleBuild builds every harness in the body. Failing harnesses carry an
// error object; the others are unaffected.
func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r, pipeline.FormatGV)
	if err != nil {
		s.writeError(w, err)
		return
	}
	docs, ok := s.readDocuments(w, r)
	if !ok {
		return
	}

	batch, err := s.runner.BuildAll(r.Context(), docs, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	body := buildBody{Harnesses: make([]harnessBody, 0, len(batch.Results))}
	for _, res := range batch.Results {
		if res.Err != nil {
			body.Harnesses = append(body.Harnesses, harnessBody{Name: res.Name, Error: toErrorBody(res.Err)})
			continue
		}
		body.Harnesses = append(body.Harnesses, harnessBody{
			Name:  res.Name,
			DOT:   res.DOT,
			BOM:   res.BOM,
			Links: res.Harness.Links(),
			Stats: &statsBody{
				Connectors: res.Stats.Connectors,
				Cables:     res.Stats.Cables,
				Links:      res.Stats.Links,
				BOMEntries: res.Stats.BOMEntries,
			},
		})
	}
	if len(batch.Results) > 1 {
		body.SharedBOM = batch.Shared
	}
	writeJSON(w, http.StatusOK, body)
}

// handleRender renders one harness, the first or the one named by
// ?harness=, in ?format= (default svg).
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}
	opts, err := s.options(r, format)
	if err != nil {
		s.writeError(w, err)
		return
	}

	docs, ok := s.readDocuments(w, r)
	if !ok {
		return
	}
	doc := docs[0]
	if name := r.URL.Query().Get("harness"); name != "" {
		doc = nil
		for _, d := range docs {
			if d.Name == name {
				doc = d
				break
			}
		}
		if doc == nil {
			s.writeError(w, errors.New(errors.ErrCodeFileNotFound, "no harness named %q", name))
			return
		}
	}

	res, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	if res.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "HIT")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(res.Artifacts[format])
}

// =============================================================================
// Helpers
// =============================================================================

// readDocuments parses the request body. It writes the error response and
// returns false on failure.
func (s *Server) readDocuments(w http.ResponseWriter, r *http.Request) ([]*document.Document, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{
				Code:    string(errors.ErrCodeInvalidInput),
				Message: "request body too large",
			})
			return nil, false
		}
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return nil, false
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "harness"
	}
	docs, err := document.Parse(data, name)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return docs, true
}

// options builds pipeline options from the server config and the query.
// Invalid overrides are rejected before any harness is built.
func (s *Server) options(r *http.Request, format string) (pipeline.Options, error) {
	q := r.URL.Query()
	overrides := document.Options{
		GaugeMatching: q.Get("gauge_matching"),
		LengthUnit:    q.Get("length_unit"),
		BOMLengthMode: q.Get("bom_length_mode"),
		ColorMode:     q.Get("color_mode"),
	}
	if _, err := s.cfg.WithDocument(overrides); err != nil {
		return pipeline.Options{}, err
	}
	cfg := s.cfg
	return pipeline.Options{
		Config:    &cfg,
		Overrides: overrides,
		Formats:   []string{format},
		Refresh:   q.Get("refresh") == "true",
		Logger:    s.logger,
	}, nil
}

// statusOf maps an error code to an HTTP status.
func statusOf(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeSchema, errors.ErrCodeUnit, errors.ErrCodeColorCode,
		errors.ErrCodeResolution, errors.ErrCodeAggregatorState, errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func toErrorBody(err error) *errorBody {
	b := &errorBody{Code: string(errors.GetCode(err)), Message: errors.UserMessage(err)}
	if b.Code == "" {
		b.Code = string(errors.ErrCodeInternal)
	}
	b.Entity = errors.EntityOf(err)
	if row := errors.RowOf(err); row != errors.NoRow {
		b.Row = &row
	}
	var e *errors.Error
	if stderrors.As(err, &e) {
		b.Harness = e.Harness
	}
	return b
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, toErrorBody(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
