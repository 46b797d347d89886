package store

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/sentinel/internal/mapping"
)

// Store is a Postgres-backed mapping source. The assignment table is expected
// to carry pid, designer_name and merch_name columns.
type Store struct {
	pool  *pgxpool.Pool
	table string
}

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

func New(ctx context.Context, databaseURL, table string) (*Store, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid mapping table name %q", table)
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool, table: table}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Name() string { return "postgres:" + s.table }

// Load reads the assignment rows into mapping entries. PID cells go through
// the same standalone 6-digit extraction as the CSV loader, so both sources
// enforce one rule.
func (s *Store) Load(ctx context.Context) ([]mapping.Entry, error) {
	query := fmt.Sprintf(`SELECT pid, COALESCE(designer_name, ''), COALESCE(merch_name, '') FROM %s`, s.table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query mapping: %w", err)
	}
	defer rows.Close()

	var entries []mapping.Entry
	seen := make(map[string]bool)
	for rows.Next() {
		var cell, designer, merch string
		if err := rows.Scan(&cell, &designer, &merch); err != nil {
			return nil, fmt.Errorf("scan mapping row: %w", err)
		}
		pid := mapping.ExtractPID(cell)
		if pid == "" || seen[pid] {
			continue
		}
		seen[pid] = true
		entries = append(entries, mapping.Entry{PID: pid, Designer: designer, Merch: merch})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read mapping rows: %w", err)
	}
	return entries, nil
}
