package usecase

import (
	"context"

	"github.com/DRSN-tech/gym-ledger/internal/domain"
)

// ProductRepository — товары и услуги в удалённом хранилище.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	// Update меняет карточку товара, не трогая остаток.
	Update(ctx context.Context, product *domain.Product) error
	SetQuantity(ctx context.Context, id string, quantity int64) error
}

type PurchaseRepository interface {
	List(ctx context.Context) ([]domain.Purchase, error)
	GetByID(ctx context.Context, id string) (*domain.Purchase, error)
	Create(ctx context.Context, purchase *domain.Purchase) (*domain.Purchase, error)
	Update(ctx context.Context, purchase *domain.Purchase) error
	Delete(ctx context.Context, id string) error
}

type SupplierRepository interface {
	List(ctx context.Context) ([]domain.Supplier, error)
	Create(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error)
	Update(ctx context.Context, supplier *domain.Supplier) error
	Delete(ctx context.Context, id string) error
}

type ClientRepository interface {
	List(ctx context.Context) ([]domain.Client, error)
	Create(ctx context.Context, client *domain.Client) (*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id string) error
}

// PurchaseCacheRepository кэширует список закупок. Любая мутация обязана его инвалидировать.
type PurchaseCacheRepository interface {
	GetPurchases(ctx context.Context) ([]domain.Purchase, bool, error)
	SetPurchases(ctx context.Context, purchases []domain.Purchase) error
	DeletePurchases(ctx context.Context) error
}

// JournalRepository хранит журнал движений остатков и записи для ручной сверки.
type JournalRepository interface {
	AppendMovements(ctx context.Context, movements []domain.Movement) error
	CreateReconciliation(ctx context.Context, rec *domain.Reconciliation) error
	ListReconciliations(ctx context.Context, status domain.ReconciliationStatus) ([]domain.Reconciliation, error)
	ResolveReconciliation(ctx context.Context, id, note string) (*domain.Reconciliation, error)
}

// OutboxRepository отдаёт неопубликованные движения воркеру.
type OutboxRepository interface {
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]domain.Movement, error)
	MarkAsProcessed(ctx context.Context, id string) error
	MarkAsPending(ctx context.Context, id string) error
}

type ReportRepository interface {
	Upload(ctx context.Context, report *domain.Report) (string, error)
}
