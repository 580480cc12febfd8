package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chartdb/chartdb-gateway/internal/domain"
)

// Server identity reported by initialize and the discovery endpoints.
const (
	ServerName      = "ChartDB MCP Server"
	ServerVersion   = "1.20.2"
	ProtocolVersion = "2024-11-05"
)

type methodHandler func(user *domain.Principal, params json.RawMessage) (interface{}, error)

type method struct {
	handler      methodHandler
	requiresAuth bool
}

// Router is the JSON-RPC request/response state machine. The method table
// is fixed at construction; unknown methods fall through to -32601.
type Router struct {
	catalog    *Catalog
	dispatcher *Dispatcher
	methods    map[string]method
	log        zerolog.Logger
}

// NewRouter builds a router over the catalog and dispatcher.
func NewRouter(catalog *Catalog, dispatcher *Dispatcher, log zerolog.Logger) *Router {
	r := &Router{
		catalog:    catalog,
		dispatcher: dispatcher,
		log:        log.With().Str("component", "mcp-router").Logger(),
	}
	r.methods = map[string]method{
		"initialize":     {handler: r.handleInitialize},
		"ping":           {handler: r.handlePing},
		"tools/list":     {handler: r.handleToolsList},
		"prompts/list":   {handler: r.handlePromptsList},
		"resources/list": {handler: r.handleResourcesList},
		"prompts/get":    {handler: r.handlePromptsGet},
		"tools/call":     {handler: r.handleToolsCall, requiresAuth: true},
		"resources/read": {handler: r.handleResourcesRead, requiresAuth: true},
	}
	return r
}

// Handle processes one decoded request. It returns nil for notifications:
// no response body is ever sent for them, even on error.
func (r *Router) Handle(req *Request, user *domain.Principal) *Response {
	r.log.Info().
		Str("method", req.Method).
		Interface("id", req.ID).
		Bool("authenticated", user != nil).
		Msg("MCP JSON-RPC request")

	if req.IsNotification() {
		return nil
	}

	m, ok := r.methods[req.Method]
	if !ok {
		resp := NewErrorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("Unknown method: %s", req.Method))
		return &resp
	}

	if m.requiresAuth && user == nil {
		r.log.Warn().Str("method", req.Method).Msg("MCP auth required but no valid token provided")
		resp := NewErrorResponse(req.ID, CodeInvalidRequest, ErrAuthRequired.Error())
		return &resp
	}

	result, err := m.handler(user, req.Params)
	if err != nil {
		resp := r.errorResponse(req.ID, req.Method, err)
		return &resp
	}

	resp := NewResponse(req.ID, result)
	return &resp
}

func (r *Router) errorResponse(id interface{}, methodName string, err error) Response {
	if IsValidation(err) {
		return NewErrorResponse(id, CodeMethodNotFound, err.Error())
	}
	r.log.Error().Err(err).Str("method", methodName).Msg("MCP JSON-RPC error")
	return NewErrorResponse(id, CodeInternalError, err.Error())
}

func (r *Router) handleInitialize(_ *domain.Principal, _ json.RawMessage) (interface{}, error) {
	return map[string]interface{}{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]interface{}{
			"tools":     map[string]interface{}{"listChanged": false},
			"resources": map[string]interface{}{"listChanged": false},
			"prompts":   map[string]interface{}{"listChanged": false},
		},
		"serverInfo": map[string]string{
			"name":    ServerName,
			"version": ServerVersion,
		},
	}, nil
}

func (r *Router) handlePing(_ *domain.Principal, _ json.RawMessage) (interface{}, error) {
	return map[string]interface{}{}, nil
}

func (r *Router) handleToolsList(_ *domain.Principal, _ json.RawMessage) (interface{}, error) {
	return toolsListResult(r.catalog), nil
}

func (r *Router) handleResourcesList(_ *domain.Principal, _ json.RawMessage) (interface{}, error) {
	return resourcesListResult(r.catalog), nil
}

func (r *Router) handlePromptsList(_ *domain.Principal, _ json.RawMessage) (interface{}, error) {
	return promptsListResult(r.catalog), nil
}

func (r *Router) handleToolsCall(user *domain.Principal, params json.RawMessage) (interface{}, error) {
	var call ToolCall
	if len(params) > 0 {
		if err := json.Unmarshal(params, &call); err != nil {
			return nil, Validationf("Invalid params for tools/call: %v", err)
		}
	}

	result, err := r.dispatcher.Dispatch(user, call)
	if err != nil {
		return nil, err
	}

	// Wrap in MCP content format
	text, merr := json.Marshal(result)
	if merr != nil {
		text = []byte(fmt.Sprintf("%v", result))
	}
	return map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": string(text)},
		},
		"isError": false,
	}, nil
}

func (r *Router) handleResourcesRead(user *domain.Principal, params json.RawMessage) (interface{}, error) {
	var p struct {
		URI string `json:"uri"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, Validationf("Invalid params for resources/read: %v", err)
		}
	}
	if p.URI == "" {
		return nil, Validationf("Missing required argument: uri")
	}

	data, err := r.dispatcher.ReadResource(user, p.URI)
	if err != nil {
		return nil, err
	}

	text, merr := json.Marshal(data)
	if merr != nil {
		text = []byte(fmt.Sprintf("%v", data))
	}
	return map[string]interface{}{
		"contents": []map[string]interface{}{
			{"uri": p.URI, "mimeType": "application/json", "text": string(text)},
		},
	}, nil
}

func (r *Router) handlePromptsGet(_ *domain.Principal, params json.RawMessage) (interface{}, error) {
	var p struct {
		Name string `json:"name"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, Validationf("Invalid params for prompts/get: %v", err)
		}
	}
	return map[string]interface{}{
		"description": "Prompt: " + p.Name,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": map[string]interface{}{"type": "text", "text": "Execute prompt: " + p.Name},
			},
		},
	}, nil
}
