package planstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"

	"github.com/cheatday/planner/pkg/database"
	"github.com/cheatday/planner/pkg/models"
	"github.com/cheatday/planner/pkg/tracing"
)

// planDocumentID keys the single row the planner persists. The table allows
// more rows so a future multi-user deployment can reuse the schema.
const planDocumentID = "default"

type planDocumentRow struct {
	ID       string                         `db:"id"`
	Document database.JSONB[models.PlanSet] `db:"document"`
}

// PostgresStore keeps the plan document as a jsonb column in a single row.
type PostgresStore struct {
	db     *sqlx.DB
	logger ectologger.Logger
}

// NewPostgresStore returns a postgres-backed store.
func NewPostgresStore(db *sqlx.DB, logger ectologger.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// Load fetches the document, returning (nil, nil) when no row exists.
func (s *PostgresStore) Load(ctx context.Context) (*models.PlanSet, error) {
	ctx, span := tracing.StartSpan(ctx, "PostgresStore.Load")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "document").From("plan_documents")
	sb.Where(sb.Equal("id", planDocumentID))
	query, args := sb.Build()

	var row planDocumentRow
	err := s.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("failed to load plan document")
		return nil, &StorageError{Op: "load", Err: err}
	}

	set := row.Document.Data
	return &set, nil
}

// Save upserts the document row.
func (s *PostgresStore) Save(ctx context.Context, set models.PlanSet) error {
	ctx, span := tracing.StartSpan(ctx, "PostgresStore.Save")
	defer span.End()

	doc := database.JSONB[models.PlanSet]{Data: set}

	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("plan_documents")
	ib.Cols("id", "document")
	ib.Values(planDocumentID, doc)
	ib.SQL("ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()")
	query, args := ib.Build()

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("failed to save plan document")
		return &StorageError{Op: "save", Err: err}
	}
	return nil
}
