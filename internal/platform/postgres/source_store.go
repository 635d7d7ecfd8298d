package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"cardforge/internal/domain"
	"cardforge/internal/platform/logger"
	"cardforge/internal/store"
)

// PostgreSQL error codes.
const (
	pgUniqueViolationCode     = "23505"
	pgForeignKeyViolationCode = "23503"
)

// SourceStore implements store.SourceStore using PostgreSQL.
type SourceStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSourceStore creates a PostgreSQL implementation of store.SourceStore.
// A nil logger falls back to slog.Default.
func NewSourceStore(db store.DBTX, logger *slog.Logger) *SourceStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SourceStore{
		db:     db,
		logger: logger.With(slog.String("component", "source_store")),
	}
}

var _ store.SourceStore = (*SourceStore)(nil)

// Create implements store.SourceStore.Create.
func (s *SourceStore) Create(ctx context.Context, source *domain.Source) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := source.Validate(); err != nil {
		log.Warn("source validation failed during create",
			slog.String("error", err.Error()),
			slog.String("source_id", source.ID.String()))
		return err
	}

	query := `
		INSERT INTO sources (id, title, format, language, text, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		source.ID,
		source.Title,
		source.Format,
		source.Language,
		source.Text,
		source.Status,
		source.CreatedAt,
		source.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return store.ErrDuplicate
		}

		log.Error("failed to create source",
			slog.String("error", err.Error()),
			slog.String("source_id", source.ID.String()))
		return err
	}

	log.Info("source created",
		slog.String("source_id", source.ID.String()),
		slog.String("format", string(source.Format)),
		slog.Int("text_length", len(source.Text)))
	return nil
}

// GetByID implements store.SourceStore.GetByID.
func (s *SourceStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Source, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, title, format, language, text, status, created_at, updated_at
		FROM sources
		WHERE id = $1
	`

	var source domain.Source
	var format, status string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&source.ID,
		&source.Title,
		&format,
		&source.Language,
		&source.Text,
		&status,
		&source.CreatedAt,
		&source.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSourceNotFound
		}
		log.Error("failed to get source by ID",
			slog.String("error", err.Error()),
			slog.String("source_id", id.String()))
		return nil, err
	}

	source.Format = domain.SourceFormat(format)
	source.Status = domain.SourceStatus(status)
	return &source, nil
}

// UpdateStatus implements store.SourceStore.UpdateStatus.
func (s *SourceStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SourceStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE sources
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update source status",
			slog.String("error", err.Error()),
			slog.String("source_id", id.String()),
			slog.String("status", string(status)))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrSourceNotFound
	}

	log.Info("source status updated",
		slog.String("source_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// FindByStatus implements store.SourceStore.FindByStatus.
func (s *SourceStore) FindByStatus(
	ctx context.Context,
	status domain.SourceStatus,
	limit, offset int,
) ([]*domain.Source, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, title, format, language, text, status, created_at, updated_at
		FROM sources
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		log.Error("failed to query sources by status",
			slog.String("error", err.Error()),
			slog.String("status", string(status)))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	sources := []*domain.Source{}
	for rows.Next() {
		var source domain.Source
		var format, statusStr string

		err := rows.Scan(
			&source.ID,
			&source.Title,
			&format,
			&source.Language,
			&source.Text,
			&statusStr,
			&source.CreatedAt,
			&source.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		source.Format = domain.SourceFormat(format)
		source.Status = domain.SourceStatus(statusStr)
		sources = append(sources, &source)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sources, nil
}

// WithTx implements store.SourceStore.WithTx.
func (s *SourceStore) WithTx(tx *sql.Tx) store.SourceStore {
	return &SourceStore{db: tx, logger: s.logger}
}
