package mcp

// Parameter describes a single tool or prompt parameter.
type Parameter struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description"`
	Required    bool                   `json:"required"`
	Items       map[string]interface{} `json:"items,omitempty"`
}

// RequiredParam builds a required parameter.
func RequiredParam(typ, description string) Parameter {
	return Parameter{Type: typ, Description: description, Required: true}
}

// OptionalParam builds an optional parameter.
func OptionalParam(typ, description string) Parameter {
	return Parameter{Type: typ, Description: description, Required: false}
}

// RequiredArray builds a required array parameter with an item schema.
func RequiredArray(description string, items map[string]interface{}) Parameter {
	return Parameter{Type: "array", Description: description, Required: true, Items: items}
}

// OptionalArray builds an optional array parameter with an item schema.
func OptionalArray(description string, items map[string]interface{}) Parameter {
	return Parameter{Type: "array", Description: description, Required: false, Items: items}
}

// Tool is a tool descriptor exposed via tools/list.
type Tool struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Parameters  map[string]Parameter `json:"parameters"`
}

// Resource is a resource descriptor exposed via resources/list.
type Resource struct {
	URI         string `json:"uri"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

// Prompt is a prompt descriptor exposed via prompts/list.
type Prompt struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Parameters  map[string]Parameter `json:"parameters"`
}

// Catalog is the static set of tools, resources and prompts this gateway
// exposes. It is built once at startup and read-only afterwards, so
// unsynchronized concurrent reads are safe.
type Catalog struct {
	tools     []Tool
	resources []Resource
	prompts   []Prompt
}

// NewCatalog builds the full ChartDB catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		tools:     chartDBTools(),
		resources: chartDBResources(),
		prompts:   chartDBPrompts(),
	}
}

// Tools returns the tool descriptors in declaration order.
func (c *Catalog) Tools() []Tool { return c.tools }

// Resources returns the resource descriptors.
func (c *Catalog) Resources() []Resource { return c.resources }

// Prompts returns the prompt descriptors.
func (c *Catalog) Prompts() []Prompt { return c.prompts }

func tool(name, description string, params map[string]Parameter) Tool {
	if params == nil {
		params = map[string]Parameter{}
	}
	return Tool{Name: name, Description: description, Parameters: params}
}

func chartDBTools() []Tool {
	columnItemSchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name":       map[string]interface{}{"type": "string", "description": "Column name"},
			"type":       map[string]interface{}{"type": "string", "description": "Data type (e.g. varchar, integer, boolean)"},
			"nullable":   map[string]interface{}{"type": "boolean", "description": "Is nullable"},
			"primaryKey": map[string]interface{}{"type": "boolean", "description": "Is primary key"},
			"unique":     map[string]interface{}{"type": "boolean", "description": "Is unique"},
		},
		"required": []string{"name", "type"},
	}

	return []Tool{
		// Diagram tools
		tool("chartdb_get-diagram", "Get diagram by ID", map[string]Parameter{
			"diagramId": RequiredParam("string", "Diagram ID"),
		}),
		tool("chartdb_get-diagram-full", "Get full diagram with all tables, columns, and relationships", map[string]Parameter{
			"diagramId": RequiredParam("string", "Diagram ID"),
		}),
		tool("chartdb_create-diagram", "Create a new diagram", map[string]Parameter{
			"name":         RequiredParam("string", "Diagram name"),
			"databaseType": OptionalParam("string", "Database type (postgresql, mysql, etc.)"),
		}),
		tool("chartdb_update-diagram", "Update diagram properties", map[string]Parameter{
			"diagramId": RequiredParam("string", "Diagram ID"),
			"name":      OptionalParam("string", "New name"),
		}),
		tool("chartdb_delete-diagram", "Delete a diagram", map[string]Parameter{
			"diagramId": RequiredParam("string", "Diagram ID"),
		}),
		tool("chartdb_list-diagrams", "List user's diagrams", map[string]Parameter{
			"limit": OptionalParam("number", "Maximum number of diagrams to return"),
		}),

		// Table tools
		tool("chartdb_create-table", "Create a new table in diagram", map[string]Parameter{
			"diagramId": RequiredParam("string", "Diagram ID"),
			"name":      RequiredParam("string", "Table name"),
			"schema":    OptionalParam("string", "Schema name"),
			"columns":   OptionalArray("Array of column definitions", columnItemSchema),
		}),
		tool("chartdb_update-table", "Update table properties", map[string]Parameter{
			"tableId": RequiredParam("string", "Table ID"),
			"name":    OptionalParam("string", "New table name"),
			"color":   OptionalParam("string", "Table color"),
		}),
		tool("chartdb_delete-table", "Delete a table", map[string]Parameter{
			"tableId": RequiredParam("string", "Table ID"),
		}),
		tool("chartdb_move-table", "Move table position", map[string]Parameter{
			"tableId": RequiredParam("string", "Table ID"),
			"x":       RequiredParam("number", "X coordinate"),
			"y":       RequiredParam("number", "Y coordinate"),
		}),
		tool("chartdb_list-tables", "List all tables in diagram", map[string]Parameter{
			"diagramId": RequiredParam("string", "Diagram ID"),
		}),

		// Column tools
		tool("chartdb_create-column", "Add column to table", map[string]Parameter{
			"tableId":    RequiredParam("string", "Table ID"),
			"name":       RequiredParam("string", "Column name"),
			"type":       RequiredParam("string", "Data type"),
			"nullable":   OptionalParam("boolean", "Is nullable"),
			"primaryKey": OptionalParam("boolean", "Is primary key"),
			"unique":     OptionalParam("boolean", "Is unique"),
		}),
		tool("chartdb_update-column", "Update column properties", map[string]Parameter{
			"columnId": RequiredParam("string", "Column ID"),
			"name":     OptionalParam("string", "New column name"),
			"type":     OptionalParam("string", "New data type"),
		}),
		tool("chartdb_delete-column", "Delete a column", map[string]Parameter{
			"columnId": RequiredParam("string", "Column ID"),
		}),
		tool("chartdb_reorder-columns", "Reorder columns in table", map[string]Parameter{
			"tableId":   RequiredParam("string", "Table ID"),
			"columnIds": RequiredArray("Array of column IDs in new order", map[string]interface{}{"type": "string"}),
		}),

		// Relationship tools
		tool("chartdb_create-relationship", "Create relationship between tables", map[string]Parameter{
			"diagramId":      RequiredParam("string", "Diagram ID"),
			"sourceTableId":  RequiredParam("string", "Source table ID"),
			"targetTableId":  RequiredParam("string", "Target table ID"),
			"sourceColumnId": RequiredParam("string", "Source column ID (FK source - typically the PK column)"),
			"targetColumnId": RequiredParam("string", "Target column ID (FK target - the foreign key column)"),
			"type":           RequiredParam("string", "Relationship type (one-to-one, one-to-many, many-to-many)"),
		}),
		tool("chartdb_update-relationship", "Update relationship", map[string]Parameter{
			"relationshipId": RequiredParam("string", "Relationship ID"),
			"type":           OptionalParam("string", "New relationship type"),
		}),
		tool("chartdb_delete-relationship", "Delete a relationship", map[string]Parameter{
			"relationshipId": RequiredParam("string", "Relationship ID"),
		}),
		tool("chartdb_list-relationships", "List all relationships in diagram", map[string]Parameter{
			"diagramId": RequiredParam("string", "Diagram ID"),
		}),

		// Export tools
		tool("chartdb_export-sql", "Export diagram as SQL DDL", map[string]Parameter{
			"diagramId": RequiredParam("string", "Diagram ID"),
			"dialect":   OptionalParam("string", "SQL dialect (postgresql, mysql, sqlite, etc.)"),
		}),
		tool("chartdb_export-json", "Export diagram as JSON", map[string]Parameter{
			"diagramId": RequiredParam("string", "Diagram ID"),
		}),

		// Database connection tools
		tool("chartdb_create-connection", "Create database connection", map[string]Parameter{
			"diagramId": RequiredParam("string", "Diagram ID"),
			"name":      RequiredParam("string", "Connection name"),
			"type":      RequiredParam("string", "Database type"),
			"host":      RequiredParam("string", "Database host"),
			"port":      RequiredParam("number", "Database port"),
			"database":  RequiredParam("string", "Database name"),
			"username":  RequiredParam("string", "Username"),
			"password":  RequiredParam("string", "Password"),
		}),
		tool("chartdb_test-connection", "Test database connection", map[string]Parameter{
			"host":     RequiredParam("string", "Database host"),
			"port":     RequiredParam("number", "Database port"),
			"database": RequiredParam("string", "Database name"),
			"username": RequiredParam("string", "Username"),
			"password": RequiredParam("string", "Password"),
		}),
		tool("chartdb_list-connections", "List database connections for diagram", map[string]Parameter{
			"diagramId": RequiredParam("string", "Diagram ID"),
		}),

		// Query tools
		tool("chartdb_execute-query", "Execute SQL query", map[string]Parameter{
			"connectionId": RequiredParam("string", "Connection ID"),
			"query":        RequiredParam("string", "SQL query to execute"),
		}),
		tool("chartdb_get-query-history", "Get query execution history", nil),
	}
}

func chartDBResources() []Resource {
	return []Resource{
		{URI: "chartdb://diagram/{id}", Description: "Diagram resource", MimeType: "application/json"},
		{URI: "chartdb://diagram/{id}/schema", Description: "Full diagram schema", MimeType: "application/json"},
		{URI: "chartdb://diagram/{id}/tables", Description: "Diagram tables", MimeType: "application/json"},
		{URI: "chartdb://diagram/{id}/relationships", Description: "Diagram relationships", MimeType: "application/json"},
	}
}

func chartDBPrompts() []Prompt {
	return []Prompt{
		{Name: "analyze-schema", Description: "Analyze diagram schema and suggest improvements", Parameters: map[string]Parameter{
			"diagramId": RequiredParam("string", "Diagram ID"),
		}},
		{Name: "generate-migration", Description: "Generate migration script from schema changes", Parameters: map[string]Parameter{
			"diagramId":     RequiredParam("string", "Diagram ID"),
			"targetDialect": OptionalParam("string", "Target SQL dialect"),
		}},
		{Name: "suggest-indexes", Description: "Suggest database indexes based on relationships", Parameters: map[string]Parameter{
			"diagramId": RequiredParam("string", "Diagram ID"),
		}},
		{Name: "normalize-schema", Description: "Suggest schema normalization improvements", Parameters: map[string]Parameter{
			"diagramId": RequiredParam("string", "Diagram ID"),
		}},
	}
}
