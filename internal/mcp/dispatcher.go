package mcp

import (
	"strconv"

	"github.com/chartdb/chartdb-gateway/internal/domain"
)

// ToolCall is the input to Dispatch.
type ToolCall struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

type toolHandler func(user *domain.Principal, args domain.Args) (interface{}, error)

// Dispatcher maps tool names to handlers over the domain collaborators.
// The handler table is built once at construction; the unknown-name path is
// the single fallthrough in Dispatch.
type Dispatcher struct {
	services domain.Services
	handlers map[string]toolHandler
}

// NewDispatcher builds the dispatcher with its full handler table.
func NewDispatcher(services domain.Services) *Dispatcher {
	d := &Dispatcher{services: services}
	d.handlers = map[string]toolHandler{
		// Diagram tools
		"chartdb_get-diagram":      d.getDiagram,
		"chartdb_get-diagram-full": d.getDiagramFull,
		"chartdb_create-diagram":   d.createDiagram,
		"chartdb_update-diagram":   d.updateDiagram,
		"chartdb_delete-diagram":   d.deleteDiagram,
		"chartdb_list-diagrams":    d.listDiagrams,

		// Table tools
		"chartdb_create-table": d.createTable,
		"chartdb_update-table": d.updateTable,
		"chartdb_delete-table": d.deleteTable,
		"chartdb_move-table":   d.moveTable,
		"chartdb_list-tables":  d.listTables,

		// Column tools
		"chartdb_create-column":   d.createColumn,
		"chartdb_update-column":   d.updateColumn,
		"chartdb_delete-column":   d.deleteColumn,
		"chartdb_reorder-columns": d.reorderColumns,

		// Relationship tools
		"chartdb_create-relationship": d.createRelationship,
		"chartdb_update-relationship": d.updateRelationship,
		"chartdb_delete-relationship": d.deleteRelationship,
		"chartdb_list-relationships":  d.listRelationships,

		// Export tools
		"chartdb_export-sql":  d.exportSQL,
		"chartdb_export-json": d.exportJSON,

		// Database connection tools
		"chartdb_create-connection": d.createConnection,
		"chartdb_test-connection":   d.testConnection,
		"chartdb_list-connections":  d.listConnections,

		// Query tools
		"chartdb_execute-query":     d.executeQuery,
		"chartdb_get-query-history": d.queryHistory,
	}
	return d
}

// Dispatch executes a tool call on behalf of user and returns its
// JSON-serializable result.
func (d *Dispatcher) Dispatch(user *domain.Principal, call ToolCall) (interface{}, error) {
	handler, ok := d.handlers[call.Name]
	if !ok {
		return nil, Validationf("Unknown tool: %s", call.Name)
	}
	args := call.Arguments
	if args == nil {
		args = domain.Args{}
	}
	return handler(user, args)
}

// stringArg extracts a required string-ish argument.
func stringArg(args domain.Args, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", Validationf("Missing required argument: %s", name)
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(s), nil
	default:
		return "", Validationf("Argument %s must be a string", name)
	}
}

// numberArg extracts a required numeric argument.
func numberArg(args domain.Args, name string) (float64, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return 0, Validationf("Missing required argument: %s", name)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, Validationf("Argument %s must be a number", name)
		}
		return f, nil
	default:
		return 0, Validationf("Argument %s must be a number", name)
	}
}

// intArg extracts an optional integer argument with a default.
func intArg(args domain.Args, name string, def int) int {
	v, ok := args[name]
	if !ok || v == nil {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}

// optString extracts an optional string argument with a default.
func optString(args domain.Args, name, def string) string {
	if v, ok := args[name]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// stringSliceArg extracts a required array-of-strings argument.
func stringSliceArg(args domain.Args, name string) ([]string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, Validationf("Missing required argument: %s", name)
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, Validationf("Argument %s must be an array", name)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, Validationf("Argument %s must be an array of strings", name)
		}
		out = append(out, s)
	}
	return out, nil
}

func ack(message string) map[string]interface{} {
	return map[string]interface{}{"success": true, "message": message}
}

// Diagram operations

func (d *Dispatcher) getDiagram(user *domain.Principal, args domain.Args) (interface{}, error) {
	diagramID, err := stringArg(args, "diagramId")
	if err != nil {
		return nil, err
	}
	return d.services.Diagrams.GetDiagram(diagramID, user.ID)
}

func (d *Dispatcher) getDiagramFull(user *domain.Principal, args domain.Args) (interface{}, error) {
	diagramID, err := stringArg(args, "diagramId")
	if err != nil {
		return nil, err
	}
	return d.services.Diagrams.GetFullDiagram(diagramID, user.ID)
}

func (d *Dispatcher) createDiagram(user *domain.Principal, args domain.Args) (interface{}, error) {
	if _, err := stringArg(args, "name"); err != nil {
		return nil, err
	}
	return d.services.Diagrams.CreateDiagram(user.ID, args)
}

func (d *Dispatcher) updateDiagram(user *domain.Principal, args domain.Args) (interface{}, error) {
	diagramID, err := stringArg(args, "diagramId")
	if err != nil {
		return nil, err
	}
	return d.services.Diagrams.UpdateDiagram(diagramID, user.ID, args)
}

func (d *Dispatcher) deleteDiagram(user *domain.Principal, args domain.Args) (interface{}, error) {
	diagramID, err := stringArg(args, "diagramId")
	if err != nil {
		return nil, err
	}
	if err := d.services.Diagrams.DeleteDiagram(diagramID, user.ID); err != nil {
		return nil, err
	}
	return ack("Diagram deleted"), nil
}

func (d *Dispatcher) listDiagrams(user *domain.Principal, args domain.Args) (interface{}, error) {
	return d.services.Diagrams.ListRecentDiagrams(user.ID, intArg(args, "limit", 10))
}

// Table operations

func (d *Dispatcher) createTable(user *domain.Principal, args domain.Args) (interface{}, error) {
	diagramID, err := stringArg(args, "diagramId")
	if err != nil {
		return nil, err
	}
	if _, err := stringArg(args, "name"); err != nil {
		return nil, err
	}
	return d.services.Tables.CreateTable(diagramID, user.ID, args)
}

func (d *Dispatcher) updateTable(user *domain.Principal, args domain.Args) (interface{}, error) {
	tableID, err := stringArg(args, "tableId")
	if err != nil {
		return nil, err
	}
	return d.services.Tables.UpdateTable(tableID, user.ID, args)
}

func (d *Dispatcher) deleteTable(user *domain.Principal, args domain.Args) (interface{}, error) {
	tableID, err := stringArg(args, "tableId")
	if err != nil {
		return nil, err
	}
	if err := d.services.Tables.DeleteTable(tableID, user.ID); err != nil {
		return nil, err
	}
	return ack("Table deleted"), nil
}

func (d *Dispatcher) moveTable(user *domain.Principal, args domain.Args) (interface{}, error) {
	tableID, err := stringArg(args, "tableId")
	if err != nil {
		return nil, err
	}
	x, err := numberArg(args, "x")
	if err != nil {
		return nil, err
	}
	y, err := numberArg(args, "y")
	if err != nil {
		return nil, err
	}
	return d.services.Tables.MoveTable(tableID, user.ID, x, y)
}

func (d *Dispatcher) listTables(user *domain.Principal, args domain.Args) (interface{}, error) {
	diagramID, err := stringArg(args, "diagramId")
	if err != nil {
		return nil, err
	}
	return d.services.Tables.ListTables(diagramID, user.ID)
}

// Column operations

func (d *Dispatcher) createColumn(user *domain.Principal, args domain.Args) (interface{}, error) {
	tableID, err := stringArg(args, "tableId")
	if err != nil {
		return nil, err
	}
	if _, err := stringArg(args, "name"); err != nil {
		return nil, err
	}
	if _, err := stringArg(args, "type"); err != nil {
		return nil, err
	}
	return d.services.Columns.CreateColumn(tableID, user.ID, args)
}

func (d *Dispatcher) updateColumn(user *domain.Principal, args domain.Args) (interface{}, error) {
	columnID, err := stringArg(args, "columnId")
	if err != nil {
		return nil, err
	}
	return d.services.Columns.UpdateColumn(columnID, user.ID, args)
}

func (d *Dispatcher) deleteColumn(user *domain.Principal, args domain.Args) (interface{}, error) {
	columnID, err := stringArg(args, "columnId")
	if err != nil {
		return nil, err
	}
	if err := d.services.Columns.DeleteColumn(columnID, user.ID); err != nil {
		return nil, err
	}
	return ack("Column deleted"), nil
}

func (d *Dispatcher) reorderColumns(user *domain.Principal, args domain.Args) (interface{}, error) {
	tableID, err := stringArg(args, "tableId")
	if err != nil {
		return nil, err
	}
	columnIDs, err := stringSliceArg(args, "columnIds")
	if err != nil {
		return nil, err
	}
	if err := d.services.Columns.ReorderColumns(tableID, user.ID, columnIDs); err != nil {
		return nil, err
	}
	return ack("Columns reordered"), nil
}

// Relationship operations

func (d *Dispatcher) createRelationship(user *domain.Principal, args domain.Args) (interface{}, error) {
	diagramID, err := stringArg(args, "diagramId")
	if err != nil {
		return nil, err
	}
	for _, name := range []string{"sourceTableId", "targetTableId", "sourceColumnId", "targetColumnId", "type"} {
		if _, err := stringArg(args, name); err != nil {
			return nil, err
		}
	}
	return d.services.Relationships.CreateRelationship(diagramID, user.ID, args)
}

func (d *Dispatcher) updateRelationship(user *domain.Principal, args domain.Args) (interface{}, error) {
	relationshipID, err := stringArg(args, "relationshipId")
	if err != nil {
		return nil, err
	}
	return d.services.Relationships.UpdateRelationship(relationshipID, user.ID, args)
}

func (d *Dispatcher) deleteRelationship(user *domain.Principal, args domain.Args) (interface{}, error) {
	relationshipID, err := stringArg(args, "relationshipId")
	if err != nil {
		return nil, err
	}
	if err := d.services.Relationships.DeleteRelationship(relationshipID, user.ID); err != nil {
		return nil, err
	}
	return ack("Relationship deleted"), nil
}

func (d *Dispatcher) listRelationships(user *domain.Principal, args domain.Args) (interface{}, error) {
	diagramID, err := stringArg(args, "diagramId")
	if err != nil {
		return nil, err
	}
	return d.services.Relationships.ListRelationships(diagramID, user.ID)
}

// Export operations

func (d *Dispatcher) exportSQL(user *domain.Principal, args domain.Args) (interface{}, error) {
	diagramID, err := stringArg(args, "diagramId")
	if err != nil {
		return nil, err
	}
	return d.services.Export.ExportSQL(diagramID, optString(args, "dialect", "postgresql"), user.ID)
}

func (d *Dispatcher) exportJSON(user *domain.Principal, args domain.Args) (interface{}, error) {
	diagramID, err := stringArg(args, "diagramId")
	if err != nil {
		return nil, err
	}
	return d.services.Export.ExportJSON(diagramID, user.ID)
}

// Database connection operations

func (d *Dispatcher) createConnection(user *domain.Principal, args domain.Args) (interface{}, error) {
	for _, name := range []string{"diagramId", "name", "type", "host", "port", "database", "username", "password"} {
		if _, ok := args[name]; !ok {
			return nil, Validationf("Missing required argument: %s", name)
		}
	}
	return d.services.Connections.CreateConnection(user.ID, args)
}

func (d *Dispatcher) testConnection(user *domain.Principal, args domain.Args) (interface{}, error) {
	for _, name := range []string{"host", "port", "database", "username", "password"} {
		if _, ok := args[name]; !ok {
			return nil, Validationf("Missing required argument: %s", name)
		}
	}
	return d.services.Connections.TestConnection(args)
}

func (d *Dispatcher) listConnections(user *domain.Principal, args domain.Args) (interface{}, error) {
	diagramID, err := stringArg(args, "diagramId")
	if err != nil {
		return nil, err
	}
	return d.services.Connections.ListConnections(diagramID, user.ID)
}

// Query operations

func (d *Dispatcher) executeQuery(user *domain.Principal, args domain.Args) (interface{}, error) {
	connectionID, err := stringArg(args, "connectionId")
	if err != nil {
		return nil, err
	}
	query, err := stringArg(args, "query")
	if err != nil {
		return nil, err
	}
	return d.services.Queries.ExecuteQuery(connectionID, user.ID, query)
}

func (d *Dispatcher) queryHistory(user *domain.Principal, args domain.Args) (interface{}, error) {
	return d.services.Queries.QueryHistory(user.ID, 20)
}
