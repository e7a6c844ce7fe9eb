package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase описывает закупку позиции у поставщика.
// Сумма не хранится отдельно и всегда вычисляется как цена × количество.
type Purchase struct {
	ID           string
	ProductID    string
	ProductName  string
	SupplierID   string
	SupplierName string
	UnitPrice    decimal.Decimal
	Quantity     int64
	Date         time.Time
	Voided       bool
}

// Total возвращает сумму закупки.
func (p *Purchase) Total() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(p.Quantity))
}

// Void переводит закупку в аннулированное состояние. Обратного перехода нет.
func (p *Purchase) Void() {
	p.Voided = true
}

// Contribution — вклад закупки в остаток товара.
func (p *Purchase) Contribution() int64 {
	if p.Voided {
		return 0
	}
	return p.Quantity
}

func NewPurchase(
	productID, productName, supplierID, supplierName string,
	unitPrice decimal.Decimal,
	quantity int64,
	date time.Time,
) *Purchase {
	return &Purchase{
		ProductID:    productID,
		ProductName:  productName,
		SupplierID:   supplierID,
		SupplierName: supplierName,
		UnitPrice:    unitPrice,
		Quantity:     quantity,
		Date:         date,
	}
}
