package mcp

import (
	"fmt"
	"regexp"
	"strings"
)

// CheckError is a single catalog defect.
type CheckError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e CheckError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CheckResult holds the outcome of validating a catalog.
type CheckResult struct {
	Valid    bool         `json:"valid"`
	Errors   []CheckError `json:"errors,omitempty"`
	Warnings []CheckError `json:"warnings,omitempty"`
}

func (r *CheckResult) addError(field, format string, args ...interface{}) {
	r.Errors = append(r.Errors, CheckError{Field: field, Message: fmt.Sprintf(format, args...)})
	r.Valid = false
}

func (r *CheckResult) addWarning(field, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, CheckError{Field: field, Message: fmt.Sprintf(format, args...)})
}

var toolNamePattern = regexp.MustCompile(`^chartdb_[a-z][a-z0-9-]*$`)

// ValidateCatalog checks the catalog's structural invariants: unique tool
// names in the chartdb_* namespace, array parameters carrying an item
// schema, and resources staying in the chartdb:// scheme.
func ValidateCatalog(c *Catalog) *CheckResult {
	result := &CheckResult{Valid: true}

	seenTools := make(map[string]bool)
	for _, tool := range c.Tools() {
		field := "tools." + tool.Name
		if seenTools[tool.Name] {
			result.addError(field, "duplicate tool name")
		}
		seenTools[tool.Name] = true

		if !toolNamePattern.MatchString(tool.Name) {
			result.addError(field, "name must match %s", toolNamePattern.String())
		}
		if tool.Description == "" {
			result.addWarning(field, "missing description")
		}
		for name, param := range tool.Parameters {
			if param.Type == "array" && param.Items == nil {
				result.addError(field+"."+name, "array parameter has no item schema")
			}
			if param.Description == "" {
				result.addWarning(field+"."+name, "missing parameter description")
			}
		}
	}

	seenResources := make(map[string]bool)
	for _, res := range c.Resources() {
		field := "resources." + res.URI
		if seenResources[res.URI] {
			result.addError(field, "duplicate resource URI")
		}
		seenResources[res.URI] = true
		if !strings.HasPrefix(res.URI, "chartdb://") {
			result.addError(field, "URI must use the chartdb:// scheme")
		}
	}

	seenPrompts := make(map[string]bool)
	for _, prompt := range c.Prompts() {
		field := "prompts." + prompt.Name
		if seenPrompts[prompt.Name] {
			result.addError(field, "duplicate prompt name")
		}
		seenPrompts[prompt.Name] = true
		if prompt.Description == "" {
			result.addWarning(field, "missing description")
		}
	}

	return result
}
