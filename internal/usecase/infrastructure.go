package usecase

import (
	"context"

	"github.com/DRSN-tech/gym-ledger/internal/domain"
)

// Lock — удерживаемая блокировка.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker выдаёт блокировку по ключу. Если получить её не удалось, возвращает e.ErrConflict.
type Locker interface {
	Obtain(ctx context.Context, key string) (Lock, error)
}

type LedgerMetrics interface {
	ObserveOperation(op string, err error)
	IncPartialFailure(op string)
}

type MessageProducer interface {
	WriteMovement(ctx context.Context, movement *domain.Movement) error
}

type ReportRenderer interface {
	RenderPurchases(purchases []domain.Purchase) ([]byte, error)
}

// TxManager выполняет функцию в транзакции журнала.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
