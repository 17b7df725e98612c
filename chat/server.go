// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/placesbot/export"
	"github.com/jcodagnone/placesbot/places"
)

// Server exposes one session over HTTP. Requests are serialized so the
// session keeps a single logical actor.
type Server struct {
	mu      sync.Mutex
	session *Session
}

// NewServer wraps a session.
func NewServer(session *Session) *Server {
	return &Server{session: session}
}

// Handler returns the gin engine with all routes registered.
func (s *Server) Handler() *gin.Engine {
	r := gin.Default()

	r.GET("/", s.mapView)
	r.POST("/api/ask", s.ask)
	r.GET("/api/locations", s.listLocations)
	r.GET("/api/export/kml", s.exportKML)
	r.GET("/api/export/geojson", s.exportGeoJSON)

	return r
}

// Run listens on addr, e.g. "localhost:8080".
func (s *Server) Run(addr string) error {
	return s.Handler().Run(addr)
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

type unresolvedResponse struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Error   string `json:"error"`
}

type askResponse struct {
	SessionID  string               `json:"session_id"`
	Limit      int                  `json:"limit"`
	Answer     string               `json:"answer"`
	Candidates []places.Candidate   `json:"candidates"`
	Added      []places.Place       `json:"added"`
	Duplicates []places.Candidate   `json:"duplicates"`
	Unresolved []unresolvedResponse `json:"unresolved"`
	Error      string               `json:"error,omitempty"`
}

func (s *Server) ask(ctx *gin.Context) {
	var req askRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	turn, err := s.session.Ask(ctx.Request.Context(), req.Question)
	if turn == nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})

		return
	}

	resp := askResponse{
		SessionID:  s.session.ID,
		Limit:      turn.Limit,
		Answer:     turn.Answer,
		Candidates: turn.Candidates,
	}

	if err != nil {
		resp.Error = err.Error()
	}

	if r := turn.Report; r != nil {
		resp.Added = r.Added
		resp.Duplicates = r.Duplicates

		for _, u := range r.Unresolved {
			resp.Unresolved = append(resp.Unresolved, unresolvedResponse{
				Name:    u.Candidate.Name,
				Address: u.Candidate.Address,
				Error:   u.Err.Error(),
			})
		}
	}

	ctx.JSON(http.StatusOK, resp)
}

func (s *Server) listLocations(ctx *gin.Context) {
	s.mu.Lock()
	ps := s.session.Places()
	s.mu.Unlock()

	ctx.JSON(http.StatusOK, ps)
}

func (s *Server) mapView(ctx *gin.Context) {
	s.mu.Lock()
	ps := s.session.Places()
	s.mu.Unlock()

	if len(ps) == 0 {
		ctx.Data(http.StatusOK, "text/html; charset=utf-8",
			[]byte("<!DOCTYPE html><p>No locations on map yet. POST a question to /api/ask first.</p>"))

		return
	}

	s.render(ctx, "text/html; charset=utf-8", "", ps, export.WriteMap)
}

func (s *Server) exportKML(ctx *gin.Context) {
	s.mu.Lock()
	ps := s.session.Places()
	s.mu.Unlock()

	s.render(ctx, "application/vnd.google-earth.kml+xml", export.DefaultKMLFile, ps, export.WriteKML)
}

func (s *Server) exportGeoJSON(ctx *gin.Context) {
	s.mu.Lock()
	ps := s.session.Places()
	s.mu.Unlock()

	s.render(ctx, "application/geo+json", export.DefaultGeoJSONFile, ps, export.WriteGeoJSON)
}

func (s *Server) render(ctx *gin.Context, contentType, filename string, ps []places.Place,
	write func(io.Writer, []places.Place) error,
) {
	var buf bytes.Buffer
	if err := write(&buf, ps); err != nil {
		if errors.Is(err, export.ErrNoPlaces) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}

		return
	}

	if filename != "" {
		ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	}

	ctx.Data(http.StatusOK, contentType, buf.Bytes())
}
