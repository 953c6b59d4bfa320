package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const generationColumns = `
	seq, id, library_hash, config_hash, output_hash, output_path,
	generator_version, ir_version, function_count, constant_count`

// ReadGenerations returns recorded runs ordered by seq ascending.
// A positive limit keeps only the most recent runs.
//
// Returns an empty slice (not nil) if nothing has been recorded. Type
// orders are not loaded; use ReadGeneration for a single run.
func (s *Store) ReadGenerations(ctx context.Context, limit int) ([]Generation, error) {
	query := `SELECT ` + generationColumns + ` FROM generations ORDER BY seq ASC, id COLLATE BINARY ASC`
	var args []any
	if limit > 0 {
		query = `SELECT * FROM (SELECT ` + generationColumns + ` FROM generations
			ORDER BY seq DESC LIMIT ?) ORDER BY seq ASC, id COLLATE BINARY ASC`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	generations := []Generation{}
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		generations = append(generations, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generations: %w", err)
	}

	return generations, nil
}

// ReadGeneration returns one run, including its type order.
// Returns sql.ErrNoRows (wrapped) if the id is unknown.
func (s *Store) ReadGeneration(ctx context.Context, id string) (Generation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+generationColumns+` FROM generations WHERE id = ?`, id)
	g, err := scanGeneration(row)
	if err != nil {
		return Generation{}, err
	}

	g.Types, err = s.readGeneratedTypes(ctx, id)
	if err != nil {
		return Generation{}, err
	}
	return g, nil
}

// LatestForInputs returns the most recent run generated from the same
// library and configuration fingerprints. The boolean is false if no such
// run exists.
func (s *Store) LatestForInputs(ctx context.Context, libraryHash, configHash string) (Generation, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+generationColumns+`
		FROM generations
		WHERE library_hash = ? AND config_hash = ?
		ORDER BY seq DESC
		LIMIT 1
	`, libraryHash, configHash)

	g, err := scanGeneration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Generation{}, false, nil
	}
	if err != nil {
		return Generation{}, false, err
	}
	return g, true, nil
}

func (s *Store) readGeneratedTypes(ctx context.Context, id string) ([]TypeEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, kind
		FROM generated_types
		WHERE generation_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query generated types: %w", err)
	}
	defer rows.Close()

	entries := []TypeEntry{}
	for rows.Next() {
		var e TypeEntry
		if err := rows.Scan(&e.Name, &e.Kind); err != nil {
			return nil, fmt.Errorf("scan generated type: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generated types: %w", err)
	}
	return entries, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row scanner) (Generation, error) {
	var g Generation
	err := row.Scan(
		&g.Seq,
		&g.ID,
		&g.LibraryHash,
		&g.ConfigHash,
		&g.OutputHash,
		&g.OutputPath,
		&g.GeneratorVersion,
		&g.IRVersion,
		&g.FunctionCount,
		&g.ConstantCount,
	)
	if err != nil {
		return Generation{}, fmt.Errorf("scan generation: %w", err)
	}
	return g, nil
}
