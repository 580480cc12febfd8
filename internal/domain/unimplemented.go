package domain

import "errors"

// ErrNotConfigured is returned by every operation of the placeholder
// services. The gateway runs without a diagram backend; tool calls fail
// cleanly instead of panicking on a nil collaborator.
var ErrNotConfigured = errors.New("no diagram backend configured")

type unimplemented struct{}

// UnimplementedServices returns a Services bundle whose every operation
// fails with ErrNotConfigured.
func UnimplementedServices() Services {
	u := unimplemented{}
	return Services{
		Diagrams:      u,
		Tables:        u,
		Columns:       u,
		Relationships: u,
		Export:        u,
		Connections:   u,
		Queries:       u,
	}
}

func (unimplemented) GetDiagram(string, string) (interface{}, error)       { return nil, ErrNotConfigured }
func (unimplemented) GetFullDiagram(string, string) (interface{}, error)   { return nil, ErrNotConfigured }
func (unimplemented) CreateDiagram(string, Args) (interface{}, error)      { return nil, ErrNotConfigured }
func (unimplemented) UpdateDiagram(string, string, Args) (interface{}, error) {
	return nil, ErrNotConfigured
}
func (unimplemented) DeleteDiagram(string, string) error { return ErrNotConfigured }
func (unimplemented) ListRecentDiagrams(string, int) (interface{}, error) {
	return nil, ErrNotConfigured
}

func (unimplemented) CreateTable(string, string, Args) (interface{}, error) {
	return nil, ErrNotConfigured
}
func (unimplemented) UpdateTable(string, string, Args) (interface{}, error) {
	return nil, ErrNotConfigured
}
func (unimplemented) DeleteTable(string, string) error { return ErrNotConfigured }
func (unimplemented) MoveTable(string, string, float64, float64) (interface{}, error) {
	return nil, ErrNotConfigured
}
func (unimplemented) ListTables(string, string) (interface{}, error) { return nil, ErrNotConfigured }

func (unimplemented) CreateColumn(string, string, Args) (interface{}, error) {
	return nil, ErrNotConfigured
}
func (unimplemented) UpdateColumn(string, string, Args) (interface{}, error) {
	return nil, ErrNotConfigured
}
func (unimplemented) DeleteColumn(string, string) error           { return ErrNotConfigured }
func (unimplemented) ReorderColumns(string, string, []string) error { return ErrNotConfigured }

func (unimplemented) CreateRelationship(string, string, Args) (interface{}, error) {
	return nil, ErrNotConfigured
}
func (unimplemented) UpdateRelationship(string, string, Args) (interface{}, error) {
	return nil, ErrNotConfigured
}
func (unimplemented) DeleteRelationship(string, string) error { return ErrNotConfigured }
func (unimplemented) ListRelationships(string, string) (interface{}, error) {
	return nil, ErrNotConfigured
}

func (unimplemented) ExportSQL(string, string, string) (string, error) { return "", ErrNotConfigured }
func (unimplemented) ExportJSON(string, string) (string, error)        { return "", ErrNotConfigured }

func (unimplemented) CreateConnection(string, Args) (interface{}, error) {
	return nil, ErrNotConfigured
}
func (unimplemented) TestConnection(Args) (interface{}, error) { return nil, ErrNotConfigured }
func (unimplemented) ListConnections(string, string) (interface{}, error) {
	return nil, ErrNotConfigured
}

func (unimplemented) ExecuteQuery(string, string, string) (interface{}, error) {
	return nil, ErrNotConfigured
}
func (unimplemented) QueryHistory(string, int) (interface{}, error) { return nil, ErrNotConfigured }
