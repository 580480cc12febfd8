package api

import "net/http"

// OAuth discovery suppression. MCP clients treat an HTTP 401 (or discovery
// metadata naming an authorization server) as "OAuth is available" and start
// a flow this server cannot complete. So the authorization-server endpoints
// are hard 404s, and the protected-resource metadata deliberately omits
// authorization_servers: Bearer tokens are pre-provisioned, not negotiated.

func (s *Server) handleProtectedResource(w http.ResponseWriter, r *http.Request) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"resource":                 scheme + "://" + r.Host + "/api/mcp",
		"bearer_methods_supported": []string{"header"},
		"resource_documentation":   s.docsURL,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	http.NotFound(w, r)
}
