package domain

import "github.com/shopspring/decimal"

// ProductKind — тип позиции каталога
type ProductKind string

const (
	ProductKindProduct ProductKind = "Producto"
	ProductKindService ProductKind = "Servicio"
)

// Valid сообщает, является ли значение известным типом позиции.
func (k ProductKind) Valid() bool {
	return k == ProductKindProduct || k == ProductKindService
}

// Product описывает товар или услугу зала
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int64 // остаток на складе, меняется только через учёт закупок
	Kind        ProductKind
}

// Stockable сообщает, ведётся ли по позиции складской остаток. Услуги остаток не копят.
func (p *Product) Stockable() bool {
	return p.Kind != ProductKindService
}

func NewProduct(name, description string, price decimal.Decimal, quantity int64, kind ProductKind) *Product {
	return &Product{
		Name:        name,
		Description: description,
		Price:       price,
		Quantity:    quantity,
		Kind:        kind,
	}
}
