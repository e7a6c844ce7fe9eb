package pgdb

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/gym-ledger/internal/domain"
	"github.com/DRSN-tech/gym-ledger/internal/repository/pgdb/converter"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// OutboxRepo отдаёт воркеру движения из журнала, ещё не опубликованные в Kafka.
type OutboxRepo struct {
	pool *pgxpool.Pool
	conv converter.MovementConverter
}

func NewOutboxRepo(pool *pgxpool.Pool, conv converter.MovementConverter) *OutboxRepo {
	return &OutboxRepo{
		pool: pool,
		conv: conv,
	}
}

// GetAndMarkAsProcessing забирает до limit движений. Параллельные воркеры не получат одни и те же строки.
// Движения, зависшие в processing дольше пяти минут, забираются повторно.
func (o *OutboxRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) (_ []domain.Movement, err error) {
	tx, err := o.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", whereami.WhereAmI(), err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	query := `
		UPDATE movements
		SET status = $1, processing_started_at = now()
		WHERE id IN (
			SELECT id FROM movements
			WHERE status = $2
			   OR (status = $1 AND processing_started_at < now() - interval '5 minutes')
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, product_id, purchase_id, kind, delta, qty_before, qty_after, status, created_at, published_at
	`

	rows, err := tx.Query(ctx, query, converter.Processing, converter.Pending, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query pending movements: %w", whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var models []converter.MovementModel
	for rows.Next() {
		var model converter.MovementModel
		if err = rows.Scan(
			&model.ID,
			&model.ProductID,
			&model.PurchaseID,
			&model.Kind,
			&model.Delta,
			&model.QtyBefore,
			&model.QtyAfter,
			&model.Status,
			&model.CreatedAt,
			&model.PublishedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: failed to scan movement: %w", whereami.WhereAmI(), err)
		}
		models = append(models, model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iterator error: %w", whereami.WhereAmI(), err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", whereami.WhereAmI(), err)
	}

	return o.conv.ToArrEntity(models), nil
}

func (o *OutboxRepo) MarkAsProcessed(ctx context.Context, id string) error {
	query := `
		UPDATE movements
		SET status = $1, published_at = now()
		WHERE id = $2 AND status = $3
	`

	// Ноль затронутых строк: движение уже опубликовано другим воркером
	if _, err := o.pool.Exec(ctx, query, converter.Processed, id, converter.Processing); err != nil {
		return fmt.Errorf("%s: failed to mark movement %s as processed: %w", whereami.WhereAmI(), id, err)
	}

	return nil
}

// MarkAsPending возвращает движение в очередь после неудачной публикации.
func (o *OutboxRepo) MarkAsPending(ctx context.Context, id string) error {
	query := `
		UPDATE movements
		SET status = $1, processing_started_at = NULL
		WHERE id = $2 AND status = $3
	`

	if _, err := o.pool.Exec(ctx, query, converter.Pending, id, converter.Processing); err != nil {
		return fmt.Errorf("%s: failed to return movement %s to pending: %w", whereami.WhereAmI(), id, err)
	}

	return nil
}
