package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/plotmap/pkg/buildinfo"
	"github.com/matzehuels/plotmap/pkg/core/layout"
	"github.com/matzehuels/plotmap/pkg/core/parcel"
	"github.com/matzehuels/plotmap/pkg/core/view"
	"github.com/matzehuels/plotmap/pkg/engine"
	perrors "github.com/matzehuels/plotmap/pkg/errors"
	"github.com/matzehuels/plotmap/pkg/pipeline"
)

// contentTypes maps export formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatYAML: "application/yaml",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := perrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody(err))
}

func writeArtifact(w http.ResponseWriter, format string, data []byte, cached bool) {
	w.Header().Set("Content-Type", contentTypes[format])
	if cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// =============================================================================
// Static plan
// =============================================================================

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Sessions int    `json:"sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Version:  buildinfo.Version,
		Sessions: s.SessionCount(),
	})
}

type parcelsResponse struct {
	Parcels []parcel.Parcel       `json:"parcels"`
	Counts  map[parcel.Status]int `json:"counts"`
}

func (s *Server) handleParcels(w http.ResponseWriter, r *http.Request) {
	reg := s.runner.Plan.Registry
	resp := parcelsResponse{Counts: make(map[parcel.Status]int)}
	for _, st := range parcel.Statuses {
		resp.Counts[st] = reg.Count(st)
	}

	if q := r.URL.Query().Get("status"); q != "" {
		st, err := parcel.ParseStatus(q)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Parcels = reg.Filter(st)
	} else {
		resp.Parcels = reg.All()
	}
	writeJSON(w, http.StatusOK, resp)
}

type parcelResponse struct {
	Parcel    parcel.Parcel    `json:"parcel"`
	Cell      layout.Cell      `json:"cell"`
	Placement layout.Placement `json:"placement"`
	Card      engine.Card      `json:"card"`
}

func (s *Server) handleParcel(w http.ResponseWriter, r *http.Request) {
	id, err := perrors.ParseParcelID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	plan := s.runner.Plan
	p, err := plan.Registry.Get(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cell, err := plan.Resolver.Resolve(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	place, _ := plan.Resolver.Placement(id)
	writeJSON(w, http.StatusOK, parcelResponse{
		Parcel:    p,
		Cell:      cell,
		Placement: place,
		Card:      engine.NewCard(p),
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	detailed := r.URL.Query().Get("detailed") == "true"
	data, cached, err := s.runner.ExportLayout(r.Context(), format, detailed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, format, data, cached)
}

func (s *Server) handleSite(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.runner.Plan.Resolver.Site())
}

// =============================================================================
// Sessions
// =============================================================================

type createSessionRequest struct {
	Viewport *view.Size `json:"viewport,omitempty"`
}

type sessionResponse struct {
	ID       string          `json:"id"`
	Snapshot engine.Snapshot `json:"snapshot"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxEventBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, r, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "malformed session request"))
		return
	}
	viewport := pipeline.DefaultViewport
	if req.Viewport != nil {
		if req.Viewport.W <= 0 || req.Viewport.H <= 0 {
			s.writeError(w, r, perrors.New(perrors.ErrCodeInvalidInput,
				"viewport must be positive, got %gx%g", req.Viewport.W, req.Viewport.H))
			return
		}
		viewport = *req.Viewport
	}

	sess, err := s.OpenSession(r.Context(), viewport)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := sess.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID, Snapshot: snap})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Session(chi.URLParam(r, "sid"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := sess.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, Snapshot: snap})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.CloseSession(chi.URLParam(r, "sid"), ReasonDeleted); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlanSVG(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Session(chi.URLParam(r, "sid"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := sess.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	opts := pipeline.Options{
		Formats:    []string{pipeline.FormatSVG},
		Projection: q.Get("projection") == "true",
		NoLegend:   q.Get("legend") == "false",
		Logger:     s.logger,
	}
	artifacts, cached, err := s.runner.RenderSnapshot(r.Context(), snap, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, pipeline.FormatSVG, artifacts[pipeline.FormatSVG], cached)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Session(chi.URLParam(r, "sid"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes+1))
	if err != nil {
		s.writeError(w, r, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "read event"))
		return
	}
	ev, err := ParseEvent(data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := sess.Dispatch(r.Context(), ev)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, Snapshot: snap})
}
