// Package domain declares the external collaborators the gateway dispatches
// to. Persistence, encryption and SQL execution live behind these interfaces;
// the gateway only knows the operations they expose. Results are opaque
// JSON-serializable values.
package domain

// Principal is an authenticated caller. A nil *Principal means the request
// carried no valid credentials.
type Principal struct {
	ID    string
	Email string
}

// Args is a tool-call argument map as decoded from JSON.
type Args = map[string]interface{}

type DiagramService interface {
	GetDiagram(diagramID, userID string) (interface{}, error)
	GetFullDiagram(diagramID, userID string) (interface{}, error)
	CreateDiagram(userID string, args Args) (interface{}, error)
	UpdateDiagram(diagramID, userID string, args Args) (interface{}, error)
	DeleteDiagram(diagramID, userID string) error
	ListRecentDiagrams(userID string, limit int) (interface{}, error)
}

type TableService interface {
	CreateTable(diagramID, userID string, args Args) (interface{}, error)
	UpdateTable(tableID, userID string, args Args) (interface{}, error)
	DeleteTable(tableID, userID string) error
	MoveTable(tableID, userID string, x, y float64) (interface{}, error)
	ListTables(diagramID, userID string) (interface{}, error)
}

type ColumnService interface {
	CreateColumn(tableID, userID string, args Args) (interface{}, error)
	UpdateColumn(columnID, userID string, args Args) (interface{}, error)
	DeleteColumn(columnID, userID string) error
	ReorderColumns(tableID, userID string, columnIDs []string) error
}

type RelationshipService interface {
	CreateRelationship(diagramID, userID string, args Args) (interface{}, error)
	UpdateRelationship(relationshipID, userID string, args Args) (interface{}, error)
	DeleteRelationship(relationshipID, userID string) error
	ListRelationships(diagramID, userID string) (interface{}, error)
}

type ExportService interface {
	ExportSQL(diagramID, dialect, userID string) (string, error)
	ExportJSON(diagramID, userID string) (string, error)
}

type ConnectionService interface {
	CreateConnection(userID string, args Args) (interface{}, error)
	TestConnection(args Args) (interface{}, error)
	ListConnections(diagramID, userID string) (interface{}, error)
}

type QueryService interface {
	ExecuteQuery(connectionID, userID, query string) (interface{}, error)
	QueryHistory(userID string, limit int) (interface{}, error)
}

// Services bundles every collaborator the tool dispatcher needs.
type Services struct {
	Diagrams      DiagramService
	Tables        TableService
	Columns       ColumnService
	Relationships RelationshipService
	Export        ExportService
	Connections   ConnectionService
	Queries       QueryService
}
