package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Artifact kinds.
const (
	KindManifest      = "manifest"
	KindRegistrations = "registrations"
)

// Artifact is one generated file recorded in the cache.
type Artifact struct {
	Path             string
	Kind             string
	Function         string
	FunctionID       string
	Digest           string
	GeneratorVersion string
	// Seq orders writes. It is assigned by Put.
	Seq int64
}

// Put records a generated artifact, replacing any earlier record for the
// same path. Seq is assigned from a logical counter, never wall time.
func (s *Store) Put(ctx context.Context, a Artifact) error {
	if a.Path == "" {
		return fmt.Errorf("put artifact: path is required")
	}
	if a.Digest == "" {
		return fmt.Errorf("put artifact %s: digest is required", a.Path)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts
		(path, kind, function, function_id, digest, generator_version, seq)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM artifacts))
		ON CONFLICT(path) DO UPDATE SET
			kind = excluded.kind,
			function = excluded.function,
			function_id = excluded.function_id,
			digest = excluded.digest,
			generator_version = excluded.generator_version,
			seq = excluded.seq
	`,
		a.Path,
		a.Kind,
		a.Function,
		a.FunctionID,
		a.Digest,
		a.GeneratorVersion,
	)
	if err != nil {
		return fmt.Errorf("put artifact %s: %w", a.Path, err)
	}

	s.logger.Debug("cached artifact",
		zap.String("path", a.Path),
		zap.String("kind", a.Kind),
		zap.String("digest", a.Digest),
	)
	return nil
}

// Prune deletes the records of every artifact whose path is not in keep,
// returning how many were removed. Functions that disappeared from the
// sources are dropped this way.
func (s *Store) Prune(ctx context.Context, keep []string) (int64, error) {
	query := "DELETE FROM artifacts"
	args := make([]any, len(keep))
	if len(keep) > 0 {
		query += " WHERE path NOT IN (?" + strings.Repeat(", ?", len(keep)-1) + ")"
		for i, p := range keep {
			args[i] = p
		}
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("prune artifacts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune artifacts: %w", err)
	}
	if n > 0 {
		s.logger.Debug("pruned artifacts", zap.Int64("count", n))
	}
	return n, nil
}
