// Package server exposes the analysis pipeline over HTTP: JSON endpoints for
// one-shot requests and a websocket that streams batch progress.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/sahaj-english/sahaj/analysis"
	"github.com/sahaj-english/sahaj/provider"
	"github.com/sahaj-english/sahaj/reconcile"
)

// maxBodyBytes caps request bodies. Passages are a page or two of text.
const maxBodyBytes = 1 << 20

// RequestIDHeader carries the request ID in and out.
const RequestIDHeader = "X-Request-ID"

// Server holds the handlers' shared state.
type Server struct {
	svc      *analysis.Service
	logger   *zerolog.Logger
	upgrader websocket.Upgrader
}

// NewRouter returns the HTTP handler for svc. allowedOrigins restricts
// websocket origins; none means any origin is accepted.
func NewRouter(svc *analysis.Service, logger *zerolog.Logger, allowedOrigins ...string) http.Handler {
	s := &Server{svc: svc, logger: logger}
	s.upgrader = websocket.Upgrader{
		CheckOrigin:     originChecker(allowedOrigins),
		ReadBufferSize:  1024 * 16,
		WriteBufferSize: 1024 * 16,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/translate", s.handleTranslate)
	mux.HandleFunc("GET /api/lookup", s.handleLookup)
	mux.HandleFunc("GET /ws/analyze", s.handleWS)
	return mux
}

func (s *Server) log() *zerolog.Logger {
	if s.logger != nil {
		return s.logger
	}
	nop := zerolog.Nop()
	return &nop
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(o, "/")] = true
	}
	return func(r *http.Request) bool {
		return set[r.Header.Get("Origin")]
	}
}

// ---------------------------------------------------------------------------
// Wire types
// ---------------------------------------------------------------------------

// apiRequest is the body of /api/analyze, /api/translate and websocket
// analyze messages. Both "passage" and "text", and both "provider" and
// "aiProvider", are accepted.
type apiRequest struct {
	Type       string      `json:"type,omitempty"`
	Passage    string      `json:"passage,omitempty"`
	Text       string      `json:"text,omitempty"`
	Provider   provider.ID `json:"provider,omitempty"`
	AIProvider provider.ID `json:"aiProvider,omitempty"`
	APIKey     string      `json:"apiKey,omitempty"`
	Mode       string      `json:"mode,omitempty"`
}

func (r apiRequest) request(defaultMode provider.Mode) (analysis.Request, error) {
	req := analysis.Request{
		Text:       r.Passage,
		Provider:   r.Provider,
		Credential: r.APIKey,
		Mode:       defaultMode,
	}
	if req.Text == "" {
		req.Text = r.Text
	}
	if req.Provider == "" {
		req.Provider = r.AIProvider
	}
	if r.Mode != "" {
		m, err := provider.ParseMode(r.Mode)
		if err != nil {
			return req, err
		}
		req.Mode = m
	}
	return req, nil
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
	// Kind is "invalid", "transport", "decode", "cancelled" or "internal".
	Kind     string      `json:"kind"`
	Provider provider.ID `json:"provider,omitempty"`
	// UpstreamStatus is the provider's HTTP status, if it answered.
	UpstreamStatus int    `json:"upstreamStatus,omitempty"`
	RequestID      string `json:"requestId,omitempty"`
}

// classify maps err to an HTTP status and error body.
func classify(err error) (int, ErrorResponse) {
	body := ErrorResponse{Error: err.Error(), Kind: "internal"}

	var he *provider.HTTPError
	var te *provider.TransportError
	var ee *provider.EmptyResponseError
	switch {
	case analysis.IsInvalidRequest(err):
		body.Kind = "invalid"
		return http.StatusBadRequest, body
	case errors.As(err, &he):
		body.Kind, body.Provider, body.UpstreamStatus = "transport", he.Provider, he.Status
		return http.StatusBadGateway, body
	case errors.As(err, &te):
		body.Kind, body.Provider = "transport", te.Provider
		return http.StatusBadGateway, body
	case errors.Is(err, analysis.ErrNothingTranslated):
		body.Kind, body.Provider = "transport", provider.GoogleTranslate
		return http.StatusBadGateway, body
	case errors.As(err, &ee):
		body.Kind, body.Provider = "decode", ee.Provider
		return http.StatusBadGateway, body
	case analysis.IsDecode(err):
		body.Kind = "decode"
		return http.StatusBadGateway, body
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		body.Kind = "cancelled"
		return http.StatusServiceUnavailable, body
	}
	return http.StatusInternalServerError, body
}

// TranslateResponse is the body of /api/translate.
type TranslateResponse struct {
	Lines     []reconcile.Line  `json:"lines"`
	Vocab     map[string]string `json:"vocab"`
	Raw       string            `json:"raw"`
	RequestID string            `json:"requestId"`
}

// ---------------------------------------------------------------------------
// HTTP handlers
// ---------------------------------------------------------------------------

func requestID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(RequestIDHeader)); id != "" {
		return id
	}
	return uuid.NewString()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, id string, err error) {
	status, body := classify(err)
	body.RequestID = id
	ev := s.log().Warn()
	if status >= 500 {
		ev = s.log().Error()
	}
	ev.Err(err).Str("request_id", id).Int("status", status).Str("kind", body.Kind).Msg("request failed")
	writeJSON(w, status, body)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (apiRequest, error) {
	var body apiRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		return body, err
	}
	return body, nil
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	id := requestID(r)
	w.Header().Set(RequestIDHeader, id)

	body, err := s.decode(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body: " + err.Error(), Kind: "invalid", RequestID: id})
		return
	}
	req, err := body.request(provider.ModeAnalysis)
	if err != nil {
		s.writeError(w, id, err)
		return
	}

	out, err := s.svc.Run(r.Context(), req)
	if err != nil {
		s.writeError(w, id, err)
		return
	}
	s.log().Info().Str("request_id", id).Str("provider", string(out.Provider)).Str("mode", string(out.Mode)).Msg("analysis done")
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	id := requestID(r)
	w.Header().Set(RequestIDHeader, id)

	body, err := s.decode(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body: " + err.Error(), Kind: "invalid", RequestID: id})
		return
	}
	req, err := body.request(provider.ModeTranslation)
	if err != nil {
		s.writeError(w, id, err)
		return
	}

	res, err := s.svc.Stable(r.Context(), req)
	if err != nil {
		s.writeError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, TranslateResponse{Lines: res.Lines, Vocab: res.Vocab, Raw: res.Raw, RequestID: id})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	id := requestID(r)
	w.Header().Set(RequestIDHeader, id)

	word := strings.TrimSpace(r.URL.Query().Get("word"))
	if word == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing word", Kind: "invalid", RequestID: id})
		return
	}
	meaning, ok := s.svc.Lookup(r.Context(), word)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"word": word, "found": false, "requestId": id})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"word": word, "meaning": meaning, "found": true, "requestId": id})
}
