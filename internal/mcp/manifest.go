package mcp

// Capabilities advertises which catalog surfaces the server exposes.
type Capabilities struct {
	Tools     bool `json:"tools"`
	Resources bool `json:"resources"`
	Prompts   bool `json:"prompts"`
}

// Manifest is the discovery document served at .well-known/mcp.json.
type Manifest struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Description  string       `json:"description"`
	Capabilities Capabilities `json:"capabilities"`
	Tools        []Tool       `json:"tools"`
	Resources    []Resource   `json:"resources"`
	Prompts      []Prompt     `json:"prompts"`
}

// BuildManifest assembles the manifest from the catalog.
func BuildManifest(c *Catalog) Manifest {
	return Manifest{
		Name:        ServerName,
		Version:     ServerVersion,
		Description: "Model Context Protocol server for ChartDB - Database diagram and schema management",
		Capabilities: Capabilities{
			Tools:     true,
			Resources: true,
			Prompts:   true,
		},
		Tools:     c.Tools(),
		Resources: c.Resources(),
		Prompts:   c.Prompts(),
	}
}
