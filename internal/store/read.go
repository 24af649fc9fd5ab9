package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Get returns the record for path. The boolean is false if the path was
// never cached.
func (s *Store) Get(ctx context.Context, path string) (Artifact, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT path, kind, function, function_id, digest, generator_version, seq
		FROM artifacts
		WHERE path = ?
	`, path)

	a, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Artifact{}, false, nil
	}
	if err != nil {
		return Artifact{}, false, err
	}
	return a, true, nil
}

// Fresh reports whether path was last generated from content with the given
// digest by the given generator version.
func (s *Store) Fresh(ctx context.Context, path, digest, version string) (bool, error) {
	a, ok, err := s.Get(ctx, path)
	if err != nil || !ok {
		return false, err
	}
	return a.Digest == digest && a.GeneratorVersion == version, nil
}

// List returns every cached artifact in write order.
//
// Returns an empty slice (not nil) if the cache is empty.
func (s *Store) List(ctx context.Context) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, kind, function, function_id, digest, generator_version, seq
		FROM artifacts
		ORDER BY seq ASC, path COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query artifacts: %w", err)
	}
	defer rows.Close()

	artifacts := []Artifact{}
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}
	return artifacts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row scanner) (Artifact, error) {
	var a Artifact
	err := row.Scan(&a.Path, &a.Kind, &a.Function, &a.FunctionID, &a.Digest, &a.GeneratorVersion, &a.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return Artifact{}, err
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("scan artifact: %w", err)
	}
	return a, nil
}
