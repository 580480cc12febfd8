package mcp

// InputSchema converts a tool descriptor to the JSON-Schema shape that
// tools/list clients expect.
func (t Tool) InputSchema() map[string]interface{} {
	properties := make(map[string]interface{}, len(t.Parameters))
	var required []string

	for name, param := range t.Parameters {
		prop := map[string]interface{}{
			"type":        param.Type,
			"description": param.Description,
		}
		// JSON Schema requires "items" for array types
		if param.Type == "array" {
			if param.Items != nil {
				prop["items"] = param.Items
			} else {
				prop["items"] = map[string]interface{}{"type": "string"}
			}
		}
		properties[name] = prop
		if param.Required {
			required = append(required, name)
		}
	}

	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// toolsListResult shapes the catalog for the tools/list method.
func toolsListResult(c *Catalog) map[string]interface{} {
	tools := make([]map[string]interface{}, 0, len(c.Tools()))
	for _, t := range c.Tools() {
		tools = append(tools, map[string]interface{}{
			"name":        t.Name,
			"description": t.Description,
			"inputSchema": t.InputSchema(),
		})
	}
	return map[string]interface{}{"tools": tools}
}

// resourcesListResult shapes the catalog for the resources/list method.
func resourcesListResult(c *Catalog) map[string]interface{} {
	resources := make([]map[string]interface{}, 0, len(c.Resources()))
	for _, r := range c.Resources() {
		resources = append(resources, map[string]interface{}{
			"uri":      r.URI,
			"name":     r.Description,
			"mimeType": r.MimeType,
		})
	}
	return map[string]interface{}{"resources": resources}
}

// promptsListResult shapes the catalog for the prompts/list method.
func promptsListResult(c *Catalog) map[string]interface{} {
	prompts := make([]map[string]interface{}, 0, len(c.Prompts()))
	for _, p := range c.Prompts() {
		args := make([]map[string]interface{}, 0, len(p.Parameters))
		for name, param := range p.Parameters {
			args = append(args, map[string]interface{}{
				"name":        name,
				"description": param.Description,
				"required":    param.Required,
			})
		}
		prompts = append(prompts, map[string]interface{}{
			"name":        p.Name,
			"description": p.Description,
			"arguments":   args,
		})
	}
	return map[string]interface{}{"prompts": prompts}
}
