// Package server exposes a switch matrix over HTTP so test harnesses on
// other hosts can drive it.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/OpenTraceLab/relaymatrix/pkg/expander"
	"github.com/OpenTraceLab/relaymatrix/pkg/matrix"
)

type initRequest struct {
	USBPath string `json:"usbpath"`
}

type linkRequest struct {
	Spec            string `json:"spec"`
	IgnoreExclusive bool   `json:"ignore_exclusive"`
}

type indicatorRequest struct {
	On bool `json:"on"`
}

type connection struct {
	A    string `json:"a"`
	B    string `json:"b"`
	Line string `json:"line"`
}

type nodesResponse struct {
	Board       string       `json:"board"`
	Leaves      []string     `json:"leaves"`
	Buses       []string     `json:"buses"`
	Connections []connection `json:"connections"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler returns the HTTP API of s.
func NewHandler(s *Session) http.Handler {
	r := chi.NewRouter()

	r.Post("/init", s.handleInit)
	r.Post("/link", s.handleLink)
	r.Post("/reset", s.handleReset)
	r.Put("/indicators/{index}", s.handleIndicator)
	r.Delete("/indicators/{index}", s.handleIndicator)
	r.Get("/state", s.handleState)
	r.Get("/nodes", s.handleNodes)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	return r
}

func (s *Session) handleInit(w http.ResponseWriter, r *http.Request) {
	var body initRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.Init(body.USBPath); err != nil {
		s.fail(w, "init", err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.State())
}

func (s *Session) handleLink(w http.ResponseWriter, r *http.Request) {
	var body linkRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.Link(body.Spec, body.IgnoreExclusive); err != nil {
		s.fail(w, "link", err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.State())
}

func (s *Session) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.Reset(); err != nil {
		s.fail(w, "reset", err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.State())
}

func (s *Session) handleIndicator(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	on := false
	if r.Method == http.MethodPut {
		var body indicatorRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		on = body.On
	}

	if err := s.SetIndicator(idx, on); err != nil {
		s.fail(w, "indicator", err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.State())
}

func (s *Session) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.State())
}

func (s *Session) handleNodes(w http.ResponseWriter, r *http.Request) {
	table, err := s.board.Table()
	if err != nil {
		s.fail(w, "nodes", err)
		return
	}

	resp := nodesResponse{
		Board:  s.board.Name,
		Leaves: table.Leaves(),
		Buses:  table.Buses(),
	}
	for _, c := range table.Connections() {
		resp.Connections = append(resp.Connections, connection{A: c.A, B: c.B, Line: c.Line.String()})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Session) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error(op+" failed", "error", err)
	} else {
		s.log.Warn(op+" rejected", "error", err)
	}
	s.writeError(w, status, err)
}

func statusFor(err error) int {
	switch {
	case matrix.IsValidation(err), errors.Is(err, matrix.ErrExclusive):
		return http.StatusUnprocessableEntity
	case errors.Is(err, matrix.ErrUncertainState),
		errors.Is(err, ErrNotInitialized),
		errors.Is(err, ErrAlreadyInitialized),
		errors.Is(err, expander.ErrAlreadyBound):
		return http.StatusConflict
	case errors.Is(err, expander.ErrAdapterNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func (s *Session) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Session) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("response encode failed", "error", err)
	}
}
