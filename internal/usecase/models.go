package usecase

import (
	"time"

	"github.com/DRSN-tech/gym-ledger/internal/domain"
	"github.com/DRSN-tech/gym-ledger/pkg/paginate"
	"github.com/shopspring/decimal"
)

// PurchaseDraft — данные для записи или правки закупки.
// Поставщик задаётся по id или по имени, хотя бы одно из полей обязательно.
type PurchaseDraft struct {
	ProductID    string          `json:"product_id" validate:"required"`
	SupplierID   string          `json:"supplier_id" validate:"required_without=SupplierName"`
	SupplierName string          `json:"supplier_name" validate:"required_without=SupplierID"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int64           `json:"quantity" validate:"gt=0"`
	Date         time.Time       `json:"date"`
}

// ListReq — строка поиска и страница. Нумерация страниц с 1.
type ListReq struct {
	Query    string
	Page     int
	PageSize int
}

type (
	PurchasePage = paginate.Page[domain.Purchase]
	ProductPage  = paginate.Page[domain.Product]
	SupplierPage = paginate.Page[domain.Supplier]
	ClientPage   = paginate.Page[domain.Client]
)

type ProductInput struct {
	Name        string             `json:"name" validate:"required"`
	Description string             `json:"description" validate:"required"`
	Price       decimal.Decimal    `json:"price"`
	Quantity    int64              `json:"quantity" validate:"gte=0"`
	Kind        domain.ProductKind `json:"kind" validate:"required,oneof=Producto Servicio"`
}

type SupplierInput struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,len=10,numeric"`
	Address   string `json:"address" validate:"required"`
}

type ClientInput struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,len=10,numeric"`
}

type ExportRes struct {
	FileName    string
	ContentType string
	Data        []byte
	Rows        int
}

type ArchiveRes struct {
	Bucket    string
	ObjectKey string
	Rows      int
}
