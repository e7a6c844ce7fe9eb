package converter

import (
	"fmt"

	"github.com/DRSN-tech/gym-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type PurchaseConverter interface {
	ToArrRedisModel(entities []domain.Purchase) []PurchaseRedisModel
	ToArrEntity(models []PurchaseRedisModel) ([]domain.Purchase, error)
}

type purchaseConverter struct{}

func NewPurchaseConverter() PurchaseConverter {
	return purchaseConverter{}
}

func (purchaseConverter) ToArrRedisModel(entities []domain.Purchase) []PurchaseRedisModel {
	models := make([]PurchaseRedisModel, 0, len(entities))
	for _, p := range entities {
		models = append(models, PurchaseRedisModel{
			ID:           p.ID,
			ProductID:    p.ProductID,
			ProductName:  p.ProductName,
			SupplierID:   p.SupplierID,
			SupplierName: p.SupplierName,
			UnitPrice:    p.UnitPrice.String(),
			Quantity:     p.Quantity,
			Date:         p.Date,
			Voided:       p.Voided,
		})
	}
	return models
}

// ToArrEntity возвращает ошибку, если цена в кэше не разбирается. Такой кэш считается испорченным.
func (purchaseConverter) ToArrEntity(models []PurchaseRedisModel) ([]domain.Purchase, error) {
	entities := make([]domain.Purchase, 0, len(models))
	for _, m := range models {
		price, err := decimal.NewFromString(m.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("purchase %s: bad cached price %q: %w", m.ID, m.UnitPrice, err)
		}
		entities = append(entities, domain.Purchase{
			ID:           m.ID,
			ProductID:    m.ProductID,
			ProductName:  m.ProductName,
			SupplierID:   m.SupplierID,
			SupplierName: m.SupplierName,
			UnitPrice:    price,
			Quantity:     m.Quantity,
			Date:         m.Date,
			Voided:       m.Voided,
		})
	}
	return entities, nil
}
