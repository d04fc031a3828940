package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"sxfs/internal/identifier"
)

// PostgresLinkStore implements LinkStore on top of the links table.
type PostgresLinkStore struct {
	db *DB
}

func NewPostgresLinkStore(db *DB) *PostgresLinkStore {
	return &PostgresLinkStore{db: db}
}

func (s *PostgresLinkStore) Save(ctx context.Context, link Link) error {
	query, args, err := s.db.sb.
		Insert("links").
		Columns("id", "uri", "created_at", "hits").
		Values(link.ID.Bytes(), link.URI, link.CreatedAt, 0).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := s.db.pool.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("insert link %s: %w", link.ID, ErrConflict)
		}
		return fmt.Errorf("insert link %s: %w", link.ID, err)
	}

	return nil
}

func (s *PostgresLinkStore) Get(ctx context.Context, id identifier.ID) (LinkListing, error) {
	query, args, err := s.db.sb.
		Select("id", "uri", "created_at", "hits").
		From("links").
		Where(squirrel.Eq{"id": id.Bytes()}).
		ToSql()
	if err != nil {
		return LinkListing{}, fmt.Errorf("build query: %w", err)
	}

	listing, err := scanLinkListing(s.db.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LinkListing{}, fmt.Errorf("link %s: %w", id, ErrNotFound)
		}
		return LinkListing{}, fmt.Errorf("query link %s: %w", id, err)
	}

	return listing, nil
}

func (s *PostgresLinkStore) ListAll(ctx context.Context) ([]LinkListing, error) {
	query, args, err := s.db.sb.
		Select("id", "uri", "created_at", "hits").
		From("links").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	var links []LinkListing
	for rows.Next() {
		listing, err := scanLinkListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan link row: %w", err)
		}
		links = append(links, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return links, nil
}

// Hit is a single-statement read-modify-write so concurrent followers never
// lose an increment.
func (s *PostgresLinkStore) Hit(ctx context.Context, id identifier.ID) error {
	query, args, err := s.db.sb.
		Update("links").
		Set("hits", squirrel.Expr("hits + 1")).
		Where(squirrel.Eq{"id": id.Bytes()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := s.db.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("increment hits %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("link %s: %w", id, ErrNotFound)
	}

	return nil
}

func (s *PostgresLinkStore) Delete(ctx context.Context, id identifier.ID) error {
	query, args, err := s.db.sb.
		Delete("links").
		Where(squirrel.Eq{"id": id.Bytes()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := s.db.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete link %s: %w", id, err)
	}

	return nil
}

func scanLinkListing(row pgx.Row) (LinkListing, error) {
	var (
		listing LinkListing
		raw     []byte
	)
	if err := row.Scan(&raw, &listing.URI, &listing.CreatedAt, &listing.Hits); err != nil {
		return LinkListing{}, err
	}

	id, err := identifier.FromBytes(raw)
	if err != nil {
		return LinkListing{}, err
	}
	listing.ID = id

	return listing, nil
}
