package remote

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/gym-ledger/internal/domain"
	"github.com/DRSN-tech/gym-ledger/internal/repository/remote/converter"
	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/DRSN-tech/gym-ledger/pkg/remotestore"
	"github.com/jimlawless/whereami"
)

// ProductRepo реализует репозиторий товаров поверх коллекции productos.
type ProductRepo struct {
	client *remotestore.Client
	conv   converter.ProductConverter
}

func NewProductRepo(client *remotestore.Client, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		client: client,
		conv:   conv,
	}
}

func (p *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	var models []converter.ProductModel
	if err := p.client.List(ctx, converter.ProductsCollection, &models); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToArrEntity(models), nil
}

// GetByID читает товар заново из хранилища. Точечного GET у хранилища нет, поэтому читается вся коллекция.
func (p *ProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var models []converter.ProductModel
	if err := p.client.List(ctx, converter.ProductsCollection, &models); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	for i := range models {
		if models[i].ID == id {
			return p.conv.ToEntity(&models[i]), nil
		}
	}

	return nil, fmt.Errorf("%s: product %s: %w", whereami.WhereAmI(), id, e.ErrNotFound)
}

func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	var created converter.ProductModel
	if err := p.client.Create(ctx, converter.ProductsCollection, p.conv.ToModel(product), &created); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if created.ID == "" {
		return nil, fmt.Errorf("%s: created product has no _id: %w", whereami.WhereAmI(), e.ErrRemote)
	}

	return p.conv.ToEntity(&created), nil
}

// Update отправляет карточку товара без поля cantidad.
func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) error {
	if err := p.client.Update(ctx, converter.ProductsCollection, product.ID, p.conv.ToPatchModel(product), nil); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// SetQuantity пишет абсолютное значение остатка.
func (p *ProductRepo) SetQuantity(ctx context.Context, id string, quantity int64) error {
	patch := &converter.QuantityPatchModel{Cantidad: converter.Count(quantity)}
	if err := p.client.Update(ctx, converter.ProductsCollection, id, patch, nil); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
