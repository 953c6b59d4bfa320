package store

import (
	"context"
	"fmt"
)

// WriteGeneration records a generation run together with its type order.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - writing the same run
// twice is silently ignored. Seq is assigned by the store.
func (s *Store) WriteGeneration(ctx context.Context, g Generation) error {
	if g.ID == "" {
		return fmt.Errorf("write generation: id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write generation: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO generations
		(id, library_hash, config_hash, output_hash, output_path, generator_version, ir_version, function_count, constant_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		g.ID,
		g.LibraryHash,
		g.ConfigHash,
		g.OutputHash,
		g.OutputPath,
		g.GeneratorVersion,
		g.IRVersion,
		g.FunctionCount,
		g.ConstantCount,
	)
	if err != nil {
		return fmt.Errorf("write generation: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write generation: %w", err)
	}
	if inserted == 0 {
		return nil
	}

	for i, entry := range g.Types {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO generated_types (generation_id, position, name, kind)
			VALUES (?, ?, ?, ?)
		`, g.ID, i, entry.Name, entry.Kind)
		if err != nil {
			return fmt.Errorf("write generated type %q: %w", entry.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write generation: %w", err)
	}
	return nil
}
