package converter

import (
	"github.com/DRSN-tech/gym-ledger/internal/domain"
)

// ProductConverter преобразует товары между domain и документами хранилища.
type ProductConverter interface {
	ToModel(entity *domain.Product) *ProductModel
	ToPatchModel(entity *domain.Product) *ProductPatchModel
	ToEntity(model *ProductModel) *domain.Product
	ToArrEntity(models []ProductModel) []domain.Product
}

// PurchaseConverter преобразует закупки между domain и документами хранилища.
type PurchaseConverter interface {
	ToModel(entity *domain.Purchase) *PurchaseModel
	ToEntity(model *PurchaseModel) *domain.Purchase
	ToArrEntity(models []PurchaseModel) []domain.Purchase
}

type SupplierConverter interface {
	ToModel(entity *domain.Supplier) *SupplierModel
	ToEntity(model *SupplierModel) *domain.Supplier
	ToArrEntity(models []SupplierModel) []domain.Supplier
}

type ClientConverter interface {
	ToModel(entity *domain.Client) *ClientModel
	ToEntity(model *ClientModel) *domain.Client
	ToArrEntity(models []ClientModel) []domain.Client
}

type productConverter struct{}

func NewProductConverter() ProductConverter { return productConverter{} }

func (productConverter) ToModel(entity *domain.Product) *ProductModel {
	return &ProductModel{
		ID:          entity.ID,
		Nombre:      entity.Name,
		Descripcion: entity.Description,
		Precio:      Amount{entity.Price},
		Cantidad:    Count(entity.Quantity),
		Tipo:        string(entity.Kind),
	}
}

func (productConverter) ToPatchModel(entity *domain.Product) *ProductPatchModel {
	return &ProductPatchModel{
		Nombre:      entity.Name,
		Descripcion: entity.Description,
		Precio:      Amount{entity.Price},
		Tipo:        string(entity.Kind),
	}
}

func (productConverter) ToEntity(model *ProductModel) *domain.Product {
	kind := domain.ProductKind(model.Tipo)
	// Документы без типа заведены как товары
	if !kind.Valid() {
		kind = domain.ProductKindProduct
	}
	return &domain.Product{
		ID:          model.ID,
		Name:        model.Nombre,
		Description: model.Descripcion,
		Price:       model.Precio.Decimal,
		Quantity:    int64(model.Cantidad),
		Kind:        kind,
	}
}

func (c productConverter) ToArrEntity(models []ProductModel) []domain.Product {
	out := make([]domain.Product, 0, len(models))
	for i := range models {
		out = append(out, *c.ToEntity(&models[i]))
	}
	return out
}

type purchaseConverter struct{}

func NewPurchaseConverter() PurchaseConverter { return purchaseConverter{} }

// ToModel пишет total как цену × количество, чтобы хранилище не расходилось с доменом.
func (purchaseConverter) ToModel(entity *domain.Purchase) *PurchaseModel {
	return &PurchaseModel{
		ID:          entity.ID,
		Producto:    entity.ProductName,
		ProductoID:  entity.ProductID,
		Precio:      Amount{entity.UnitPrice},
		Cantidad:    Count(entity.Quantity),
		Proveedor:   entity.SupplierName,
		ProveedorID: entity.SupplierID,
		Fecha:       Date{entity.Date},
		Total:       Amount{entity.Total()},
		Anulado:     entity.Voided,
	}
}

func (purchaseConverter) ToEntity(model *PurchaseModel) *domain.Purchase {
	return &domain.Purchase{
		ID:           model.ID,
		ProductID:    model.ProductoID,
		ProductName:  model.Producto,
		SupplierID:   model.ProveedorID,
		SupplierName: model.Proveedor,
		UnitPrice:    model.Precio.Decimal,
		Quantity:     int64(model.Cantidad),
		Date:         model.Fecha.Time,
		Voided:       model.Anulado,
	}
}

func (c purchaseConverter) ToArrEntity(models []PurchaseModel) []domain.Purchase {
	out := make([]domain.Purchase, 0, len(models))
	for i := range models {
		out = append(out, *c.ToEntity(&models[i]))
	}
	return out
}

type supplierConverter struct{}

func NewSupplierConverter() SupplierConverter { return supplierConverter{} }

func (supplierConverter) ToModel(entity *domain.Supplier) *SupplierModel {
	return &SupplierModel{
		ID:        entity.ID,
		Nombre:    entity.FirstName,
		Apellido:  entity.LastName,
		Correo:    entity.Email,
		Telefono:  entity.Phone,
		Direccion: entity.Address,
	}
}

func (supplierConverter) ToEntity(model *SupplierModel) *domain.Supplier {
	return &domain.Supplier{
		ID:        model.ID,
		FirstName: model.Nombre,
		LastName:  model.Apellido,
		Email:     model.Correo,
		Phone:     model.Telefono,
		Address:   model.Direccion,
	}
}

func (c supplierConverter) ToArrEntity(models []SupplierModel) []domain.Supplier {
	out := make([]domain.Supplier, 0, len(models))
	for i := range models {
		out = append(out, *c.ToEntity(&models[i]))
	}
	return out
}

type clientConverter struct{}

func NewClientConverter() ClientConverter { return clientConverter{} }

func (clientConverter) ToModel(entity *domain.Client) *ClientModel {
	return &ClientModel{
		ID:       entity.ID,
		Nombre:   entity.FirstName,
		Apellido: entity.LastName,
		Correo:   entity.Email,
		Telefono: entity.Phone,
	}
}

func (clientConverter) ToEntity(model *ClientModel) *domain.Client {
	return &domain.Client{
		ID:        model.ID,
		FirstName: model.Nombre,
		LastName:  model.Apellido,
		Email:     model.Correo,
		Phone:     model.Telefono,
	}
}

func (c clientConverter) ToArrEntity(models []ClientModel) []domain.Client {
	out := make([]domain.Client, 0, len(models))
	for i := range models {
		out = append(out, *c.ToEntity(&models[i]))
	}
	return out
}
