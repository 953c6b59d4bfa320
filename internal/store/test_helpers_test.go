package store

import (
	"fmt"
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestGeneration creates a generation with minimal required fields.
func createTestGeneration(id, libraryHash, configHash string) Generation {
	return Generation{
		ID:               id,
		LibraryHash:      libraryHash,
		ConfigHash:       configHash,
		OutputHash:       "out-" + id,
		OutputPath:       "include/" + id + ".h",
		GeneratorVersion: "0.1.0",
		IRVersion:        "1",
		FunctionCount:    2,
		ConstantCount:    1,
	}
}

// verifyPragma checks that a pragma is set to the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
