package usecase

import (
	"context"

	"github.com/DRSN-tech/gym-ledger/internal/domain"
)

type LedgerUC interface {
	RecordPurchase(ctx context.Context, draft *PurchaseDraft) (*domain.Purchase, error)
	AmendPurchase(ctx context.Context, id string, draft *PurchaseDraft) (*domain.Purchase, error)
	VoidPurchase(ctx context.Context, id string) (*domain.Purchase, error)
	DeletePurchase(ctx context.Context, id string) error
	ListPurchases(ctx context.Context, req *ListReq) (*PurchasePage, error)
	ListReconciliations(ctx context.Context, status string) ([]domain.Reconciliation, error)
	ResolveReconciliation(ctx context.Context, id, note string) (*domain.Reconciliation, error)
}

type CatalogUC interface {
	ListProducts(ctx context.Context, req *ListReq) (*ProductPage, error)
	CreateProduct(ctx context.Context, in *ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in *ProductInput) (*domain.Product, error)

	ListSuppliers(ctx context.Context, req *ListReq) (*SupplierPage, error)
	CreateSupplier(ctx context.Context, in *SupplierInput) (*domain.Supplier, error)
	UpdateSupplier(ctx context.Context, id string, in *SupplierInput) (*domain.Supplier, error)
	DeleteSupplier(ctx context.Context, id string) error

	ListClients(ctx context.Context, req *ListReq) (*ClientPage, error)
	CreateClient(ctx context.Context, in *ClientInput) (*domain.Client, error)
	UpdateClient(ctx context.Context, id string, in *ClientInput) (*domain.Client, error)
	DeleteClient(ctx context.Context, id string) error
}

type ReportUC interface {
	ExportPurchases(ctx context.Context, query string) (*ExportRes, error)
	ArchivePurchases(ctx context.Context, query string) (*ArchiveRes, error)
}

// PurchaseSearcher отдаёт все закупки, подходящие под строку поиска.
type PurchaseSearcher interface {
	SearchPurchases(ctx context.Context, query string) ([]domain.Purchase, error)
}
