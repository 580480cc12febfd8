package ai

// DiagramTools returns the function definitions offered to the model so it
// can propose diagram edits. Calls it emits are recorded for review, never
// executed directly.
func DiagramTools() []Tool {
	return []Tool{
		{
			Name:        "create_table",
			Description: "Creates a new table in the diagram with specified columns",
			Parameters: objectSchema(map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the table",
				},
				"columns": map[string]interface{}{
					"type":        "array",
					"description": "Array of column definitions",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"name":       map[string]interface{}{"type": "string"},
							"dataType":   map[string]interface{}{"type": "string"},
							"nullable":   map[string]interface{}{"type": "boolean"},
							"primaryKey": map[string]interface{}{"type": "boolean"},
							"unique":     map[string]interface{}{"type": "boolean"},
						},
					},
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Optional description of the table",
				},
			}, "name", "columns"),
		},
		{
			Name:        "add_column",
			Description: "Adds a new column to an existing table",
			Parameters: objectSchema(map[string]interface{}{
				"tableName": map[string]interface{}{
					"type":        "string",
					"description": "Name of the table to add column to",
				},
				"columnName": map[string]interface{}{
					"type":        "string",
					"description": "Name of the new column",
				},
				"dataType": map[string]interface{}{
					"type":        "string",
					"description": "Data type (e.g., VARCHAR, INT, TIMESTAMP)",
				},
				"nullable": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the column can be null",
				},
				"primaryKey": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether this is a primary key",
				},
				"unique": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether values must be unique",
				},
			}, "tableName", "columnName", "dataType"),
		},
		{
			Name:        "modify_column",
			Description: "Modifies an existing column's properties",
			Parameters: objectSchema(map[string]interface{}{
				"tableName": map[string]interface{}{
					"type":        "string",
					"description": "Name of the table",
				},
				"columnName": map[string]interface{}{
					"type":        "string",
					"description": "Name of the column to modify",
				},
				"newDataType": map[string]interface{}{
					"type":        "string",
					"description": "New data type (optional)",
				},
				"newName": map[string]interface{}{
					"type":        "string",
					"description": "New column name (optional)",
				},
				"nullable": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the column can be null",
				},
			}, "tableName", "columnName"),
		},
		{
			Name:        "delete_table",
			Description: "Deletes a table from the diagram",
			Parameters: objectSchema(map[string]interface{}{
				"tableName": map[string]interface{}{
					"type":        "string",
					"description": "Name of the table to delete",
				},
			}, "tableName"),
		},
		{
			Name:        "delete_column",
			Description: "Deletes a column from a table",
			Parameters: objectSchema(map[string]interface{}{
				"tableName": map[string]interface{}{
					"type":        "string",
					"description": "Name of the table",
				},
				"columnName": map[string]interface{}{
					"type":        "string",
					"description": "Name of the column to delete",
				},
			}, "tableName", "columnName"),
		},
		{
			Name:        "create_relationship",
			Description: "Creates a relationship between two tables",
			Parameters: objectSchema(map[string]interface{}{
				"sourceTable": map[string]interface{}{
					"type":        "string",
					"description": "Name of the source table",
				},
				"sourceColumn": map[string]interface{}{
					"type":        "string",
					"description": "Name of the source column",
				},
				"targetTable": map[string]interface{}{
					"type":        "string",
					"description": "Name of the target table",
				},
				"targetColumn": map[string]interface{}{
					"type":        "string",
					"description": "Name of the target column",
				},
				"relationshipType": map[string]interface{}{
					"type":        "string",
					"description": "Type: ONE_TO_ONE, ONE_TO_MANY, MANY_TO_ONE, MANY_TO_MANY",
					"enum":        []string{"ONE_TO_ONE", "ONE_TO_MANY", "MANY_TO_ONE", "MANY_TO_MANY"},
				},
			}, "sourceTable", "targetTable", "relationshipType"),
		},
		{
			Name:        "delete_relationship",
			Description: "Deletes a relationship between tables",
			Parameters: objectSchema(map[string]interface{}{
				"sourceTable": map[string]interface{}{
					"type":        "string",
					"description": "Name of the source table",
				},
				"targetTable": map[string]interface{}{
					"type":        "string",
					"description": "Name of the target table",
				},
			}, "sourceTable", "targetTable"),
		},
		{
			Name:        "add_index",
			Description: "Adds an index to a table",
			Parameters: objectSchema(map[string]interface{}{
				"tableName": map[string]interface{}{
					"type":        "string",
					"description": "Name of the table",
				},
				"indexName": map[string]interface{}{
					"type":        "string",
					"description": "Name of the index",
				},
				"columns": map[string]interface{}{
					"type":        "array",
					"description": "List of column names to index",
					"items":       map[string]interface{}{"type": "string"},
				},
				"unique": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the index should enforce uniqueness",
				},
			}, "tableName", "indexName", "columns"),
		},
	}
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}
