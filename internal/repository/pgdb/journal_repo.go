package pgdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DRSN-tech/gym-ledger/internal/domain"
	"github.com/DRSN-tech/gym-ledger/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// MovementsChannel — канал NOTIFY, который слушает outbox-воркер.
const MovementsChannel = "movements_pending"

const reconciliationColumns = `id, operation, purchase_id, product_id, completed, failed, cause, status, note, created_at, resolved_at`

type JournalRepo struct {
	pool    *pgxpool.Pool
	movConv converter.MovementConverter
	recConv converter.ReconciliationConverter
}

func NewJournalRepo(pool *pgxpool.Pool, movConv converter.MovementConverter, recConv converter.ReconciliationConverter) *JournalRepo {
	return &JournalRepo{
		pool:    pool,
		movConv: movConv,
		recConv: recConv,
	}
}

// AppendMovements пишет движения в журнал со статусом pending и будит воркер.
func (j *JournalRepo) AppendMovements(ctx context.Context, movements []domain.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	q := conn(ctx, j.pool)
	query := `
		INSERT INTO movements (
			id,
			product_id,
			purchase_id,
			kind,
			delta,
			qty_before,
			qty_after,
			status,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for i := range movements {
		model := j.movConv.ToModel(&movements[i])
		if _, err := q.Exec(ctx, query,
			model.ID,
			model.ProductID,
			model.PurchaseID,
			model.Kind,
			model.Delta,
			model.QtyBefore,
			model.QtyAfter,
			model.Status,
			model.CreatedAt,
		); err != nil {
			if postgresDuplicate(err) {
				return fmt.Errorf("%s: movement with id %s already exists", whereami.WhereAmI(), model.ID)
			}
			return fmt.Errorf("%s: failed to insert movement: %w", whereami.WhereAmI(), err)
		}
	}

	if _, err := q.Exec(ctx, "NOTIFY "+MovementsChannel); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (j *JournalRepo) CreateReconciliation(ctx context.Context, rec *domain.Reconciliation) error {
	model := j.recConv.ToModel(rec)
	query := `
		INSERT INTO reconciliations (
			id,
			operation,
			purchase_id,
			product_id,
			completed,
			failed,
			cause,
			status,
			note,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if _, err := conn(ctx, j.pool).Exec(ctx, query,
		model.ID,
		model.Operation,
		model.PurchaseID,
		model.ProductID,
		model.Completed,
		model.Failed,
		model.Cause,
		model.Status,
		model.Note,
		model.CreatedAt,
	); err != nil {
		return fmt.Errorf("%s: failed to insert reconciliation: %w", whereami.WhereAmI(), err)
	}

	return nil
}

// ListReconciliations возвращает записи сверки, новые первыми. Пустой статус отдаёт все записи.
func (j *JournalRepo) ListReconciliations(ctx context.Context, status domain.ReconciliationStatus) ([]domain.Reconciliation, error) {
	query := `
		SELECT ` + reconciliationColumns + `
		FROM reconciliations
		WHERE $1 = '' OR status = $1
		ORDER BY created_at DESC
	`

	rows, err := conn(ctx, j.pool).Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query reconciliations: %w", whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var models []converter.ReconciliationModel
	for rows.Next() {
		model, err := scanReconciliation(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan reconciliation: %w", whereami.WhereAmI(), err)
		}
		models = append(models, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iterator error: %w", whereami.WhereAmI(), err)
	}

	return j.recConv.ToArrEntity(models), nil
}

// ResolveReconciliation закрывает открытую запись. Уже закрытая запись даёт ErrConflict.
func (j *JournalRepo) ResolveReconciliation(ctx context.Context, id, note string) (*domain.Reconciliation, error) {
	q := conn(ctx, j.pool)
	query := `
		UPDATE reconciliations
		SET status = $1, note = $2, resolved_at = $3
		WHERE id = $4 AND status = $5
		RETURNING ` + reconciliationColumns

	model, err := scanReconciliation(q.QueryRow(ctx, query,
		domain.ReconciliationResolved,
		note,
		time.Now().UTC(),
		id,
		domain.ReconciliationOpen,
	))
	if err == nil {
		return j.recConv.ToEntity(model), nil
	}
	if postgresBadUUID(err) {
		return nil, fmt.Errorf("%s: reconciliation %s: %w", whereami.WhereAmI(), id, e.ErrNotFound)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: failed to resolve reconciliation %s: %w", whereami.WhereAmI(), id, err)
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reconciliations WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if exists {
		return nil, fmt.Errorf("%s: reconciliation %s already resolved: %w", whereami.WhereAmI(), id, e.ErrConflict)
	}

	return nil, fmt.Errorf("%s: reconciliation %s: %w", whereami.WhereAmI(), id, e.ErrNotFound)
}

func scanReconciliation(row pgx.Row) (*converter.ReconciliationModel, error) {
	var model converter.ReconciliationModel
	if err := row.Scan(
		&model.ID,
		&model.Operation,
		&model.PurchaseID,
		&model.ProductID,
		&model.Completed,
		&model.Failed,
		&model.Cause,
		&model.Status,
		&model.Note,
		&model.CreatedAt,
		&model.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &model, nil
}
