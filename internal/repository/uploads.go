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

// PostgresUploadStore implements UploadStore on top of the uploads table.
type PostgresUploadStore struct {
	db *DB
}

func NewPostgresUploadStore(db *DB) *PostgresUploadStore {
	return &PostgresUploadStore{db: db}
}

func (s *PostgresUploadStore) Save(ctx context.Context, meta UploadMetadata, content []byte) error {
	query, args, err := s.db.sb.
		Insert("uploads").
		Columns("id", "filename", "size", "created_at", "content").
		Values(meta.ID.Bytes(), meta.Filename, meta.Size, meta.CreatedAt, content).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := s.db.pool.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("insert upload %s: %w", meta.ID, ErrConflict)
		}
		return fmt.Errorf("insert upload %s: %w", meta.ID, err)
	}

	return nil
}

func (s *PostgresUploadStore) GetMetadata(ctx context.Context, id identifier.ID) (UploadMetadata, error) {
	query, args, err := s.db.sb.
		Select("id", "filename", "size", "created_at").
		From("uploads").
		Where(squirrel.Eq{"id": id.Bytes()}).
		ToSql()
	if err != nil {
		return UploadMetadata{}, fmt.Errorf("build query: %w", err)
	}

	meta, err := scanUploadMetadata(s.db.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UploadMetadata{}, fmt.Errorf("upload %s: %w", id, ErrNotFound)
		}
		return UploadMetadata{}, fmt.Errorf("query upload %s: %w", id, err)
	}

	return meta, nil
}

func (s *PostgresUploadStore) GetContent(ctx context.Context, id identifier.ID) ([]byte, error) {
	query, args, err := s.db.sb.
		Select("content").
		From("uploads").
		Where(squirrel.Eq{"id": id.Bytes()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var content []byte
	if err := s.db.pool.QueryRow(ctx, query, args...).Scan(&content); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("upload %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("query upload content %s: %w", id, err)
	}

	return content, nil
}

func (s *PostgresUploadStore) ListAll(ctx context.Context) ([]UploadMetadata, error) {
	query, args, err := s.db.sb.
		Select("id", "filename", "size", "created_at").
		From("uploads").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()

	var uploads []UploadMetadata
	for rows.Next() {
		meta, err := scanUploadMetadata(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upload row: %w", err)
		}
		uploads = append(uploads, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return uploads, nil
}

func (s *PostgresUploadStore) Delete(ctx context.Context, id identifier.ID) error {
	query, args, err := s.db.sb.
		Delete("uploads").
		Where(squirrel.Eq{"id": id.Bytes()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := s.db.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete upload %s: %w", id, err)
	}

	return nil
}

func scanUploadMetadata(row pgx.Row) (UploadMetadata, error) {
	var (
		meta UploadMetadata
		raw  []byte
	)
	if err := row.Scan(&raw, &meta.Filename, &meta.Size, &meta.CreatedAt); err != nil {
		return UploadMetadata{}, err
	}

	id, err := identifier.FromBytes(raw)
	if err != nil {
		return UploadMetadata{}, err
	}
	meta.ID = id

	return meta, nil
}
