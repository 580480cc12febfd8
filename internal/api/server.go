// Package api is the HTTP surface of the gateway: the MCP JSON-RPC endpoint,
// the OAuth-suppression well-known handlers, and the AI chat endpoints with
// their SSE stream.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/chartdb/chartdb-gateway/internal/assistant"
	"github.com/chartdb/chartdb-gateway/internal/config"
	"github.com/chartdb/chartdb-gateway/internal/domain"
	"github.com/chartdb/chartdb-gateway/internal/mcp"
)

// Server routes all gateway HTTP traffic.
type Server struct {
	router    *mcp.Router
	catalog   *mcp.Catalog
	assistant *assistant.Service
	relay     *assistant.Relay
	tokens    map[string]config.Principal
	docsURL   string
	log       zerolog.Logger
	mux       *http.ServeMux
}

func NewServer(router *mcp.Router, catalog *mcp.Catalog, svc *assistant.Service, relay *assistant.Relay, cfg *config.Config, log zerolog.Logger) *Server {
	s := &Server{
		router:    router,
		catalog:   catalog,
		assistant: svc,
		relay:     relay,
		tokens:    cfg.APITokens,
		docsURL:   cfg.DocsURL,
		log:       log.With().Str("component", "api").Logger(),
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/mcp", s.handleMCPDiscovery)
	s.mux.HandleFunc("POST /api/mcp", s.handleJSONRPC)
	s.mux.HandleFunc("/api/mcp", s.handleMCPOtherVerbs)
	s.mux.HandleFunc("GET /api/mcp/.well-known/mcp.json", s.handleManifest)

	// OAuth discovery suppression
	s.mux.HandleFunc("GET /.well-known/oauth-protected-resource", s.handleProtectedResource)
	s.mux.HandleFunc("GET /.well-known/oauth-authorization-server", s.handleNotFound)
	s.mux.HandleFunc("GET /.well-known/openid-configuration", s.handleNotFound)
	s.mux.HandleFunc("/authorize", s.handleNotFound)
	s.mux.HandleFunc("/token", s.handleNotFound)
	s.mux.HandleFunc("/register", s.handleNotFound)

	// AI chat
	s.mux.HandleFunc("POST /api/ai/chat/sessions", s.handleStartSession)
	s.mux.HandleFunc("GET /api/ai/chat/sessions/diagram/{diagramId}", s.handleActiveSessions)
	s.mux.HandleFunc("POST /api/ai/chat/sessions/{sessionId}/messages", s.handleSendMessage)
	s.mux.HandleFunc("GET /api/ai/chat/sessions/{sessionId}/history", s.handleHistory)
	s.mux.HandleFunc("DELETE /api/ai/chat/sessions/{sessionId}", s.handleEndSession)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// authenticate resolves the bearer token to a principal, or nil when the
// request carries none or an unknown one. It never writes a response: the
// MCP endpoint turns missing auth into a JSON-RPC error and the chat
// endpoints into 404, never into HTTP 401.
func (s *Server) authenticate(r *http.Request) *domain.Principal {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil
	}
	p, ok := s.tokens[token]
	if !ok {
		return nil
	}
	return &domain.Principal{ID: p.UserID, Email: p.Email}
}

// requirePrincipal authenticates or ends the request with a bare 404.
// Returning 401 here would advertise OAuth support to MCP clients.
func (s *Server) requirePrincipal(w http.ResponseWriter, r *http.Request) *domain.Principal {
	user := s.authenticate(r)
	if user == nil {
		http.NotFound(w, r)
	}
	return user
}

func (s *Server) handleMCPDiscovery(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":     mcp.ServerName,
		"version":  mcp.ServerVersion,
		"protocol": "MCP JSON-RPC 2.0 over Streamable HTTP",
		"endpoint": "POST /api/mcp",
	})
}

func (s *Server) handleMCPOtherVerbs(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}

func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var req mcp.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp := mcp.NewErrorResponse(nil, mcp.CodeParseError, "Parse error")
		writeJSON(w, http.StatusOK, resp)
		return
	}

	resp := s.router.Handle(&req, s.authenticate(r))
	if resp == nil {
		// Notification: acknowledge with no body.
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mcp.BuildManifest(s.catalog))
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	user := s.requirePrincipal(w, r)
	if user == nil {
		return
	}

	var body struct {
		DiagramID   string                 `json:"diagramId"`
		AgentConfig map[string]interface{} `json:"agentConfig"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.DiagramID == "" {
		writeError(w, http.StatusBadRequest, "diagramId is required")
		return
	}

	sess, err := s.assistant.StartSession(r.Context(), user.ID, body.DiagramID, body.AgentConfig)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "Chat session started", Data: sess})
}

func (s *Server) handleActiveSessions(w http.ResponseWriter, r *http.Request) {
	user := s.requirePrincipal(w, r)
	if user == nil {
		return
	}

	sessions, err := s.assistant.ActiveSessions(r.PathValue("diagramId"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: sessions})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	user := s.requirePrincipal(w, r)
	if user == nil {
		return
	}
	sessionID := r.PathValue("sessionId")

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	sink, err := newSSESink(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	runErr := s.relay.Run(r.Context(), sink, func(ctx context.Context, onChunk func(string)) (interface{}, error) {
		msg, err := s.assistant.SendMessageStreaming(ctx, sessionID, user.ID, body.Message, onChunk)
		if err != nil {
			return nil, err
		}
		return envelope{Success: true, Data: msg}, nil
	})
	if runErr != nil {
		s.log.Error().Err(runErr).Str("session_id", sessionID).Msg("SSE stream failed")
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	user := s.requirePrincipal(w, r)
	if user == nil {
		return
	}

	history, err := s.assistant.History(r.PathValue("sessionId"), user.ID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: history})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	user := s.requirePrincipal(w, r)
	if user == nil {
		return
	}

	if err := s.assistant.EndSession(r.PathValue("sessionId"), user.ID); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Chat session ended"})
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, assistant.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, assistant.ErrSessionInactive),
		errors.Is(err, assistant.ErrConfigMissing),
		errors.Is(err, assistant.ErrConfigIncomplete):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error().Err(err).Msg("chat endpoint failure")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// envelope is the response wrapper shared by the chat endpoints.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}
