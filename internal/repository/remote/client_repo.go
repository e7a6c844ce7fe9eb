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

type ClientRepo struct {
	client *remotestore.Client
	conv   converter.ClientConverter
}

func NewClientRepo(client *remotestore.Client, conv converter.ClientConverter) *ClientRepo {
	return &ClientRepo{
		client: client,
		conv:   conv,
	}
}

func (c *ClientRepo) List(ctx context.Context) ([]domain.Client, error) {
	var models []converter.ClientModel
	if err := c.client.List(ctx, converter.ClientsCollection, &models); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToArrEntity(models), nil
}

func (c *ClientRepo) Create(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	var created converter.ClientModel
	if err := c.client.Create(ctx, converter.ClientsCollection, c.conv.ToModel(client), &created); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if created.ID == "" {
		return nil, fmt.Errorf("%s: created client has no _id: %w", whereami.WhereAmI(), e.ErrRemote)
	}

	return c.conv.ToEntity(&created), nil
}

func (c *ClientRepo) Update(ctx context.Context, client *domain.Client) error {
	model := c.conv.ToModel(client)
	model.ID = ""

	if err := c.client.Update(ctx, converter.ClientsCollection, client.ID, model, nil); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *ClientRepo) Delete(ctx context.Context, id string) error {
	if err := c.client.Delete(ctx, converter.ClientsCollection, id); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
