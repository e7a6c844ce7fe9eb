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

// PurchaseRepo реализует репозиторий закупок поверх коллекции compras.
type PurchaseRepo struct {
	client *remotestore.Client
	conv   converter.PurchaseConverter
}

func NewPurchaseRepo(client *remotestore.Client, conv converter.PurchaseConverter) *PurchaseRepo {
	return &PurchaseRepo{
		client: client,
		conv:   conv,
	}
}

func (p *PurchaseRepo) List(ctx context.Context) ([]domain.Purchase, error) {
	var models []converter.PurchaseModel
	if err := p.client.List(ctx, converter.PurchasesCollection, &models); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToArrEntity(models), nil
}

func (p *PurchaseRepo) GetByID(ctx context.Context, id string) (*domain.Purchase, error) {
	var models []converter.PurchaseModel
	if err := p.client.List(ctx, converter.PurchasesCollection, &models); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	for i := range models {
		if models[i].ID == id {
			return p.conv.ToEntity(&models[i]), nil
		}
	}

	return nil, fmt.Errorf("%s: purchase %s: %w", whereami.WhereAmI(), id, e.ErrNotFound)
}

func (p *PurchaseRepo) Create(ctx context.Context, purchase *domain.Purchase) (*domain.Purchase, error) {
	var created converter.PurchaseModel
	if err := p.client.Create(ctx, converter.PurchasesCollection, p.conv.ToModel(purchase), &created); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if created.ID == "" {
		return nil, fmt.Errorf("%s: created purchase has no _id: %w", whereami.WhereAmI(), e.ErrRemote)
	}

	return p.conv.ToEntity(&created), nil
}

// Update перезаписывает документ закупки целиком, включая пересчитанный total.
func (p *PurchaseRepo) Update(ctx context.Context, purchase *domain.Purchase) error {
	model := p.conv.ToModel(purchase)
	model.ID = ""

	if err := p.client.Update(ctx, converter.PurchasesCollection, purchase.ID, model, nil); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (p *PurchaseRepo) Delete(ctx context.Context, id string) error {
	if err := p.client.Delete(ctx, converter.PurchasesCollection, id); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
