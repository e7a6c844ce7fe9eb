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

type SupplierRepo struct {
	client *remotestore.Client
	conv   converter.SupplierConverter
}

func NewSupplierRepo(client *remotestore.Client, conv converter.SupplierConverter) *SupplierRepo {
	return &SupplierRepo{
		client: client,
		conv:   conv,
	}
}

func (s *SupplierRepo) List(ctx context.Context) ([]domain.Supplier, error) {
	var models []converter.SupplierModel
	if err := s.client.List(ctx, converter.SuppliersCollection, &models); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return s.conv.ToArrEntity(models), nil
}

func (s *SupplierRepo) Create(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error) {
	var created converter.SupplierModel
	if err := s.client.Create(ctx, converter.SuppliersCollection, s.conv.ToModel(supplier), &created); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if created.ID == "" {
		return nil, fmt.Errorf("%s: created supplier has no _id: %w", whereami.WhereAmI(), e.ErrRemote)
	}

	return s.conv.ToEntity(&created), nil
}

func (s *SupplierRepo) Update(ctx context.Context, supplier *domain.Supplier) error {
	model := s.conv.ToModel(supplier)
	model.ID = ""

	if err := s.client.Update(ctx, converter.SuppliersCollection, supplier.ID, model, nil); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (s *SupplierRepo) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, converter.SuppliersCollection, id); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
