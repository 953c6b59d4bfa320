package store

import "github.com/google/uuid"

// Generation is one recorded header generation run.
type Generation struct {
	ID               string      `json:"id"`
	Seq              int64       `json:"seq"`
	LibraryHash      string      `json:"library_hash"`
	ConfigHash       string      `json:"config_hash"`
	OutputHash       string      `json:"output_hash"`
	OutputPath       string      `json:"output_path,omitempty"`
	GeneratorVersion string      `json:"generator_version"`
	IRVersion        string      `json:"ir_version"`
	FunctionCount    int         `json:"function_count"`
	ConstantCount    int         `json:"constant_count"`
	Types            []TypeEntry `json:"types,omitempty"`
}

// TypeEntry is one emitted type declaration, in emission order.
type TypeEntry struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// NewRunID returns a time-ordered identifier for a generation run.
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}
