package mcp

import (
	"strings"

	"github.com/chartdb/chartdb-gateway/internal/domain"
)

const resourceScheme = "chartdb://"

// ReadResource resolves a resource URI of the form
// chartdb://diagram/{id}[/schema|tables|relationships] against the domain
// collaborators.
func (d *Dispatcher) ReadResource(user *domain.Principal, uri string) (interface{}, error) {
	path := strings.TrimPrefix(uri, resourceScheme)
	parts := strings.Split(path, "/")

	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, Validationf("Invalid resource URI: %s", uri)
	}

	resourceType := parts[0]
	diagramID := parts[1]
	subResource := ""
	if len(parts) > 2 {
		subResource = parts[2]
	}

	switch resourceType {
	case "diagram":
		switch subResource {
		case "schema":
			return d.services.Diagrams.GetFullDiagram(diagramID, user.ID)
		case "tables":
			return d.services.Tables.ListTables(diagramID, user.ID)
		case "relationships":
			return d.services.Relationships.ListRelationships(diagramID, user.ID)
		default:
			return d.services.Diagrams.GetDiagram(diagramID, user.ID)
		}
	default:
		return nil, Validationf("Unknown resource type: %s", resourceType)
	}
}
