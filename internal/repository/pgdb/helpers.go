package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/gym-ledger/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation      = "23505"
	pgInvalidTextRepresent = "22P02"
)

// querier — общее подмножество pgx.Tx и *pgxpool.Pool.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// conn возвращает транзакцию из контекста, а без неё пул.
func conn(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx, err := tr.TxFromCtx(ctx); err == nil {
		return tx
	}
	return pool
}

func postgresDuplicate(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

// postgresBadUUID — строка не разбирается как uuid.
func postgresBadUUID(err error) bool {
	return pgCode(err) == pgInvalidTextRepresent
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
